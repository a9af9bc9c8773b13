package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadToken reports a token that failed signature, shape, or expiry checks.
var ErrBadToken = errors.New("invalid token")

// Claims is the signed payload carried by access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager for the given signing secret and token
// lifetime. A nil now falls back to time.Now.
func NewTokenManager(secret string, ttl time.Duration, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: now}
}

// Mint issues a signed token for the identified user.
func (m *TokenManager) Mint(userID, email, role string) (string, error) {
	issued := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies a raw token string and returns its claims.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Join(ErrBadToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrBadToken
	}
	return claims, nil
}

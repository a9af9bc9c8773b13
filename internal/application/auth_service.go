package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// TokenMinter issues a signed access token for an authenticated user.
type TokenMinter interface {
	Mint(userID, email, role string) (string, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService handles self-service registration and login.
type AuthService struct {
	users          persistence.UserRepository
	tokens         TokenMinter
	verifyPassword PasswordVerifier
	hashPassword   PasswordHasher
	tokenTTL       time.Duration
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication flows.
func NewAuthService(users persistence.UserRepository, tokens TokenMinter, tokenTTL time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:          users,
		tokens:         tokens,
		verifyPassword: VerifyPassword,
		hashPassword:   HashPassword,
		tokenTTL:       tokenTTL,
		idGenerator:    idGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates a self-service account with the USER role.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Register")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "registration succeeded")
	}()

	normalized := normalizeUserInput(UserInput{
		Email:       params.Email,
		DisplayName: params.DisplayName,
		Password:    params.Password,
		Role:        RoleUser,
	})
	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(normalized.Password)
	if err != nil {
		return
	}

	createdAt := s.now()
	record := persistence.User{
		ID:           s.idGenerator(),
		Email:        normalized.Email,
		DisplayName:  normalized.DisplayName,
		PasswordHash: hash,
		Role:         string(RoleUser),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err = mapRepoError(s.users.CreateUser(ctx, record)); err != nil {
		return
	}

	user = userFromRecord(record)
	return
}

// Login verifies credentials and issues an access token. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.tokens == nil {
		err = fmt.Errorf("auth service dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	email := normalizeUserInput(UserInput{Email: params.Email}).Email
	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var record persistence.User
	record, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		return
	}

	if err = s.verifyPassword(record.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var token string
	token, err = s.tokens.Mint(record.ID, record.Email, record.Role)
	if err != nil {
		return
	}

	result = LoginResult{
		User:      userFromRecord(record),
		Token:     token,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	return
}

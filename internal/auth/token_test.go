package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManager_MintAndParse(t *testing.T) {
	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	manager := NewTokenManager("test-secret", time.Hour, func() time.Time { return base })

	raw, err := manager.Mint("user-1", "alice@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	claims, err := manager.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return base }

	minted, err := NewTokenManager("secret-a", time.Hour, now).Mint("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour, now).Parse(minted); !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	manager := NewTokenManager("test-secret", time.Minute, func() time.Time { return base })

	raw, err := manager.Mint("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	later := NewTokenManager("test-secret", time.Minute, func() time.Time { return base.Add(2 * time.Minute) })
	if _, err := later.Parse(raw); !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken for expired token, got %v", err)
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour, nil)
	if _, err := manager.Parse("not.a.token"); !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

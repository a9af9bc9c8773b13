package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"RESERVATION_HTTP_PORT",
			"RESERVATION_SQLITE_DSN",
			"RESERVATION_TOKEN_TTL",
			"RESERVATION_AUTH_RATE_LIMIT",
			"RESERVATION_AUTH_RATE_BURST",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("RESERVATION_JWT_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:reservations.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.JWTSecret != secret {
			t.Fatalf("expected JWT secret to be %q, got %q", secret, cfg.JWTSecret)
		}
		if cfg.TokenTTL != 24*time.Hour {
			t.Fatalf("expected default token TTL 24h, got %s", cfg.TokenTTL)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"RESERVATION_JWT_SECRET",
			"RESERVATION_HTTP_PORT",
			"RESERVATION_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: RESERVATION_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("RESERVATION_JWT_SECRET", "secret-value")
		t.Setenv("RESERVATION_HTTP_PORT", "9090")
		t.Setenv("RESERVATION_SQLITE_DSN", "file:/tmp/reservations.db")
		t.Setenv("RESERVATION_TOKEN_TTL", "12h")
		t.Setenv("RESERVATION_AUTH_RATE_LIMIT", "5")
		t.Setenv("RESERVATION_AUTH_RATE_BURST", "10")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.TokenTTL != 12*time.Hour {
			t.Fatalf("expected token TTL 12h, got %s", cfg.TokenTTL)
		}
		if cfg.AuthRateLimit != 5 || cfg.AuthRateBurst != 10 {
			t.Fatalf("unexpected rate limit settings: %v/%d", cfg.AuthRateLimit, cfg.AuthRateBurst)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/reservations.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("RESERVATION_JWT_SECRET", "secret-value")
		t.Setenv("RESERVATION_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed port")
		}
		expected := "invalid environment variable values: RESERVATION_HTTP_PORT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

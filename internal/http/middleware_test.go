package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/auth"
)

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	tokens := auth.NewTokenManager("middleware-secret", time.Hour, nil)

	var seen application.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAuth(tokens, nil)(next)

	t.Run("valid token attaches the principal", func(t *testing.T) {
		token, err := tokens.Mint("u1", "u1@example.com", "ADMIN")
		if err != nil {
			t.Fatalf("mint: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		want := application.Principal{UserID: "u1", Email: "u1@example.com", Role: application.RoleAdmin}
		if seen != want {
			t.Fatalf("principal = %+v, want %+v", seen, want)
		}
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
		expired := auth.NewTokenManager("middleware-secret", time.Hour, past)
		token, err := expired.Mint("u1", "u1@example.com", "USER")
		if err != nil {
			t.Fatalf("mint: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("token signed with another secret is unauthorized", func(t *testing.T) {
		other := auth.NewTokenManager("another-secret", time.Hour, nil)
		token, err := other.Mint("u1", "u1@example.com", "USER")
		if err != nil {
			t.Fatalf("mint: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "standard", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "scheme only", header: "Bearer", want: ""},
		{name: "padded token", header: "Bearer   abc  ", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Fatalf("extractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

type rejectingParser struct{}

func (rejectingParser) Parse(string) (*auth.Claims, error) {
	return nil, errors.New("nope")
}

func TestRequireAuthErrorBody(t *testing.T) {
	t.Parallel()
	handler := RequireAuth(rejectingParser{}, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp struct {
		ErrorCode string `json:"error_code"`
	}
	decodeBody(t, rec, &resp)
	if resp.ErrorCode != "AUTH_INVALID_TOKEN" {
		t.Fatalf("expected AUTH_INVALID_TOKEN, got %q", resp.ErrorCode)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(1, 2)
	handler := RateLimit(rl, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:4000"); code != http.StatusOK {
			t.Fatalf("request %d within burst: expected 200, got %d", i+1, code)
		}
	}
	if code := send("10.0.0.1:4000"); code != http.StatusTooManyRequests {
		t.Fatalf("request over burst: expected 429, got %d", code)
	}

	// Limits are tracked per client address.
	if code := send("10.0.0.2:4000"); code != http.StatusOK {
		t.Fatalf("other client: expected 200, got %d", code)
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("request logger missing from context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected wrapped status to pass through, got %d", rec.Code)
	}
}

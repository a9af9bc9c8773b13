package http

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/auth"
)

// TokenParser verifies a raw bearer token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// RequireAuth verifies the Authorization bearer token and attaches the
// resulting principal to the request context.
func RequireAuth(parser TokenParser, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
				return
			}

			claims, err := parser.Parse(token)
			if err != nil {
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
					ErrorCode: "AUTH_INVALID_TOKEN",
					Message:   "The access token is invalid or expired. Log in again.",
				})
				return
			}

			principal := application.Principal{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   application.Role(claims.Role),
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type rateLimitClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter tracks a token bucket per client address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	r       rate.Limit
	burst   int
}

// NewRateLimiter builds a limiter allowing rps requests per second with the
// given burst per client. Stale clients are evicted in the background.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*rateLimitClient),
		r:       rate.Limit(rps),
		burst:   burst,
	}
	// cleanup stale entries every minute
	go func() {
		for {
			time.Sleep(time.Minute)
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.seen) > 3*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if c, ok := rl.clients[ip]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[ip] = &rateLimitClient{lim: l, seen: time.Now()}
	return l
}

// RateLimit refuses requests from clients that exceed their bucket with
// 429 Too Many Requests.
func RateLimit(rl *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !rl.get(ip).Allow() {
				responder.writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{
					Message: statusMessage(http.StatusTooManyRequests),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches a request scoped logger to the context and logs
// request boundaries.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

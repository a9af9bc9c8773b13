package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the reservation
// service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	JWTSecret     string
	TokenTTL      time.Duration
	AuthRateLimit float64
	AuthRateBurst int
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; required values are validated and
// reported together so the operator sees every problem at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:reservations.db",
		TokenTTL:      24 * time.Hour,
		AuthRateLimit: 2,
		AuthRateBurst: 4,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVATION_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "RESERVATION_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("RESERVATION_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("RESERVATION_JWT_SECRET")); secret == "" {
		missing = append(missing, "RESERVATION_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("RESERVATION_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "RESERVATION_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("RESERVATION_AUTH_RATE_LIMIT")); rateValue != "" {
		rate, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || rate <= 0 {
			invalid = append(invalid, "RESERVATION_AUTH_RATE_LIMIT")
		} else {
			cfg.AuthRateLimit = rate
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("RESERVATION_AUTH_RATE_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "RESERVATION_AUTH_RATE_BURST")
		} else {
			cfg.AuthRateBurst = burst
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

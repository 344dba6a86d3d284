// Package config reads process configuration from GYM_* environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultDBPath is used when GYM_DB_PATH is unset.
const DefaultDBPath = "gymportal.db"

// Config holds every setting the server and CLI read from the environment.
type Config struct {
	Env                string
	Addr               string
	DBPath             string
	CSRFKey            []byte // 32 bytes; random per process when unset outside production
	SessionTTL         time.Duration
	RateLimitPerSecond int
	SlowRequest        time.Duration
	SlowQuery          time.Duration
	LogLevel           slog.Level
	AdminEmail         string
	AdminPassword      string
	ResendKey          string
	EmailFrom          string
	ReplyTo            string
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// LoadDotEnv loads variables from the given files (default .env) without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// DBPath returns the database location without validating anything else,
// for tools that only need the store.
func DBPath() string {
	return envOrDefault("GYM_DB_PATH", DefaultDBPath)
}

// Load parses configuration from the current process environment.
// All invalid or missing variables are reported together.
func Load() (Config, error) {
	cfg := Config{
		Env:                envOrDefault("GYM_ENV", EnvDevelopment),
		Addr:               envOrDefault("GYM_ADDR", ":8080"),
		DBPath:             DBPath(),
		SessionTTL:         24 * time.Hour,
		RateLimitPerSecond: 20,
		SlowRequest:        500 * time.Millisecond,
		SlowQuery:          50 * time.Millisecond,
		LogLevel:           slog.LevelInfo,
		AdminEmail:         envOrDefault("GYM_ADMIN_EMAIL", "admin@gymportal.local"),
		AdminPassword:      envOrDefault("GYM_ADMIN_PASSWORD", "change-me-please"),
		ResendKey:          strings.TrimSpace(os.Getenv("GYM_RESEND_KEY")),
		EmailFrom:          envOrDefault("GYM_EMAIL_FROM", "Gym Portal <noreply@gymportal.local>"),
		ReplyTo:            envOrDefault("GYM_REPLY_TO", "frontdesk@gymportal.local"),
	}

	var missing, invalid []string

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		invalid = append(invalid, "GYM_ENV")
	}

	if raw := strings.TrimSpace(os.Getenv("GYM_CSRF_KEY")); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			invalid = append(invalid, "GYM_CSRF_KEY")
		} else {
			cfg.CSRFKey = key
		}
	} else if cfg.IsProduction() {
		missing = append(missing, "GYM_CSRF_KEY")
	}

	if raw := strings.TrimSpace(os.Getenv("GYM_SESSION_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "GYM_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if raw := strings.TrimSpace(os.Getenv("GYM_RATE_LIMIT")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			invalid = append(invalid, "GYM_RATE_LIMIT")
		} else {
			cfg.RateLimitPerSecond = n
		}
	}

	if raw := strings.TrimSpace(os.Getenv("GYM_SLOW_REQUEST_MS")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			invalid = append(invalid, "GYM_SLOW_REQUEST_MS")
		} else {
			cfg.SlowRequest = time.Duration(ms) * time.Millisecond
		}
	}

	if raw := strings.TrimSpace(os.Getenv("GYM_SLOW_QUERY_MS")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			invalid = append(invalid, "GYM_SLOW_QUERY_MS")
		} else {
			cfg.SlowQuery = time.Duration(ms) * time.Millisecond
		}
	}

	if raw := strings.TrimSpace(os.Getenv("GYM_LOG_LEVEL")); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			invalid = append(invalid, "GYM_LOG_LEVEL")
		}
	}

	if cfg.IsProduction() && os.Getenv("GYM_ADMIN_PASSWORD") == "" {
		missing = append(missing, "GYM_ADMIN_PASSWORD")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

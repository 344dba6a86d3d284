package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"GYM_ENV", "GYM_ADDR", "GYM_DB_PATH", "GYM_CSRF_KEY", "GYM_SESSION_TTL",
	"GYM_RATE_LIMIT", "GYM_SLOW_REQUEST_MS", "GYM_SLOW_QUERY_MS", "GYM_LOG_LEVEL", "GYM_ADMIN_EMAIL",
	"GYM_ADMIN_PASSWORD", "GYM_RESEND_KEY", "GYM_EMAIL_FROM", "GYM_REPLY_TO",
}

// clearEnv blanks every GYM_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

const validKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Env != EnvDevelopment || cfg.IsProduction() {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "gymportal.db" {
		t.Errorf("Addr/DBPath = %q %q", cfg.Addr, cfg.DBPath)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.RateLimitPerSecond != 20 || cfg.SlowRequest != 500*time.Millisecond {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.SlowQuery != 50*time.Millisecond {
		t.Errorf("SlowQuery = %v", cfg.SlowQuery)
	}
	if cfg.CSRFKey != nil {
		t.Error("CSRFKey should be unset in development without GYM_CSRF_KEY")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GYM_ADDR", ":9000")
	t.Setenv("GYM_CSRF_KEY", validKey)
	t.Setenv("GYM_SESSION_TTL", "2h")
	t.Setenv("GYM_RATE_LIMIT", "5")
	t.Setenv("GYM_SLOW_REQUEST_MS", "0")
	t.Setenv("GYM_SLOW_QUERY_MS", "5")
	t.Setenv("GYM_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" || len(cfg.CSRFKey) != 32 || cfg.SessionTTL != 2*time.Hour ||
		cfg.RateLimitPerSecond != 5 || cfg.SlowRequest != 0 || cfg.SlowQuery != 5*time.Millisecond || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("cfg = %+v", cfg)
	}
}

// TestLoad_CollectsInvalid checks every bad variable is named in one error.
func TestLoad_CollectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("GYM_CSRF_KEY", "not-hex")
	t.Setenv("GYM_SESSION_TTL", "-1s")
	t.Setenv("GYM_RATE_LIMIT", "zero")
	t.Setenv("GYM_SLOW_QUERY_MS", "0")
	t.Setenv("GYM_LOG_LEVEL", "loud")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"GYM_CSRF_KEY", "GYM_SESSION_TTL", "GYM_RATE_LIMIT", "GYM_SLOW_QUERY_MS", "GYM_LOG_LEVEL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("GYM_ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "required environment variables not set: GYM_CSRF_KEY, GYM_ADMIN_PASSWORD"
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err, want)
	}

	t.Setenv("GYM_CSRF_KEY", validKey)
	t.Setenv("GYM_ADMIN_PASSWORD", "a-real-password")
	if _, err := Load(); err != nil {
		t.Errorf("Load with secrets: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GYM_ADDR", ":7000")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("GYM_DB_PATH=from-file.db\nGYM_ADDR=:1111\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides a variable that is set, even to "".
	os.Unsetenv("GYM_DB_PATH")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "from-file.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("existing variable overridden: Addr = %q", cfg.Addr)
	}
}

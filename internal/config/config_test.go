package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	for _, k := range []string{
		"MAFIA_HTTP_ADDR", "DATABASE_URL", "MIGRATIONS_DIR", "MAFIA_TOKEN_SECRET",
		"MAFIA_RATE_LIMIT", "MAFIA_RATE_WINDOW", "MAFIA_LOG_LEVEL", "MAFIA_CORS_ORIGINS",
		"MAFIA_DB_MAX_CONNS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.MigrationsDir != "migrations" || cfg.DBMaxConns != 4 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.RateLimit != 20 || cfg.RateWindow != time.Minute {
		t.Errorf("rate limit defaults %d/%s", cfg.RateLimit, cfg.RateWindow)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("cors default %v", cfg.CORSOrigins)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without DATABASE_URL")
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("MAFIA_HTTP_ADDR", ":9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/mafia")
	t.Setenv("MAFIA_RATE_LIMIT", "5")
	t.Setenv("MAFIA_RATE_WINDOW", "30s")
	t.Setenv("MAFIA_LOG_LEVEL", "debug")
	t.Setenv("MAFIA_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || !cfg.ArchiveEnabled() {
		t.Errorf("unexpected %+v", cfg)
	}
	if cfg.RateLimit != 5 || cfg.RateWindow != 30*time.Second {
		t.Errorf("rate %d/%s", cfg.RateLimit, cfg.RateWindow)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("origins %v", cfg.CORSOrigins)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Errorf("level %v", lvl)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"MAFIA_RATE_LIMIT", "lots"},
		{"MAFIA_RATE_LIMIT", "-1"},
		{"MAFIA_RATE_WINDOW", "0s"},
		{"MAFIA_DB_MAX_CONNS", "0"},
		{"MAFIA_LOG_LEVEL", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Parse(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

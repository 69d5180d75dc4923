// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vntrieu/mafia/internal/logging"
)

// Config holds the server settings.
type Config struct {
	HTTPAddr      string `env:"MAFIA_HTTP_ADDR" envDefault:":8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	DBMaxConns    int32  `env:"MAFIA_DB_MAX_CONNS" envDefault:"4"`
	// TokenSecret signs host tokens. When empty a random secret is generated
	// at start-up and tokens do not survive a restart.
	TokenSecret string        `env:"MAFIA_TOKEN_SECRET"`
	RateLimit   int           `env:"MAFIA_RATE_LIMIT" envDefault:"20"`
	RateWindow  time.Duration `env:"MAFIA_RATE_WINDOW" envDefault:"1m"`
	LogLevel    string        `env:"MAFIA_LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string      `env:"MAFIA_CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file from the working directory, then parses
// the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimit < 0 {
		return Config{}, fmt.Errorf("MAFIA_RATE_LIMIT must not be negative, got %d", cfg.RateLimit)
	}
	if cfg.DBMaxConns < 1 {
		return Config{}, fmt.Errorf("MAFIA_DB_MAX_CONNS must be at least 1, got %d", cfg.DBMaxConns)
	}
	if cfg.RateWindow <= 0 {
		return Config{}, fmt.Errorf("MAFIA_RATE_WINDOW must be positive, got %s", cfg.RateWindow)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	return logging.ParseLevel(c.LogLevel)
}

// ArchiveEnabled reports whether a database is configured.
func (c Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

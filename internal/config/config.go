// Package config loads server settings from environment variables.
//
// Every setting has a default except JWT_SECRET. Starting without a secret
// would mean every token is signed with a guessable key, so Load fails
// instead.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the server.
type Config struct {
	Port       int           `env:"PORT"        envDefault:"8080"`
	DBPath     string        `env:"DB_PATH"     envDefault:"data/devconnector.db"`
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"1h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`
	LogLevel   string        `env:"LOG_LEVEL"   envDefault:"info"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT out of range: %d", cfg.Port)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog.Level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

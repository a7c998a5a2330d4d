// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration. Every field maps to an ARCADE_*
// variable; a .env file in the working directory is read first when present.
type Config struct {
	HTTPHost string `env:"ARCADE_HTTP_HOST" envDefault:""`
	HTTPPort int    `env:"ARCADE_HTTP_PORT" envDefault:"8080"`

	LogLevel string `env:"ARCADE_LOG_LEVEL" envDefault:"info"`

	// StorageType is one of memory, redis, sqlite, postgres
	StorageType string `env:"ARCADE_STORAGE" envDefault:"memory"`
	RedisURL    string `env:"ARCADE_REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath  string `env:"ARCADE_SQLITE_PATH" envDefault:"data/arcade.db"`
	PostgresDSN string `env:"ARCADE_POSTGRES_DSN"`

	TelegramToken string `env:"ARCADE_TELEGRAM_TOKEN"`
	// TelegramPollTimeout is the long-poll timeout in seconds
	TelegramPollTimeout int    `env:"ARCADE_TELEGRAM_POLL_TIMEOUT" envDefault:"60"`
	WebAppURL           string `env:"ARCADE_WEBAPP_URL" envDefault:"http://localhost:8080/"`

	HandoffTokenTTL    time.Duration `env:"ARCADE_HANDOFF_TTL" envDefault:"10m"`
	TokenSweepInterval time.Duration `env:"ARCADE_TOKEN_SWEEP_INTERVAL" envDefault:"5m"`
	NotifyTimeout      time.Duration `env:"ARCADE_NOTIFY_TIMEOUT" envDefault:"10s"`

	AchievementsFile string `env:"ARCADE_ACHIEVEMENTS_FILE"`
	DefaultAvatarURL string `env:"ARCADE_DEFAULT_AVATAR_URL" envDefault:"https://picsum.photos/seed/user/200/200"`

	// AdminSecret signs admin bearer tokens; admin routes are off when empty
	AdminSecret string `env:"ARCADE_ADMIN_SECRET"`

	OTelEndpoint string `env:"ARCADE_OTEL_ENDPOINT"`
}

// Load reads .env (if any) and then the process environment
func Load() (Config, error) {
	// a missing .env file is normal outside development
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses an explicit environment, ignoring the process one
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	var errs []error
	switch c.StorageType {
	case "memory", "redis", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("ARCADE_POSTGRES_DSN is required when ARCADE_STORAGE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("ARCADE_STORAGE must be memory, redis, sqlite or postgres, got %q", c.StorageType))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("ARCADE_HTTP_PORT out of range: %d", c.HTTPPort))
	}
	if c.HandoffTokenTTL <= 0 {
		errs = append(errs, errors.New("ARCADE_HANDOFF_TTL must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("ARCADE_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// TelegramEnabled reports whether the chat front end should run
func (c Config) TelegramEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != ""
}

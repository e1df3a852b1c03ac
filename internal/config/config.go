// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the API server reads at startup.
type Config struct {
	Addr       string        `env:"TIMETRACK_ADDR" envDefault:":8080"`
	PGDSN      string        `env:"TIMETRACK_PG_DSN"`
	JWTSecret  string        `env:"TIMETRACK_JWT_SECRET"`
	AccessTTL  time.Duration `env:"TIMETRACK_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"TIMETRACK_REFRESH_TTL" envDefault:"168h"`

	// Rate limiting and request body cap for the HTTP boundary.
	RateLimitRPS   float64 `env:"TIMETRACK_RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"TIMETRACK_RATE_LIMIT_BURST" envDefault:"100"`
	MaxBodyBytes   int64   `env:"TIMETRACK_MAX_BODY_BYTES" envDefault:"1048576"`

	ShutdownTimeout time.Duration `env:"TIMETRACK_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment and validates required settings.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants that env parsing alone cannot express.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: TIMETRACK_JWT_SECRET is required")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.AccessTTL >= c.RefreshTTL {
		return errors.New("config: access TTL must be shorter than refresh TTL")
	}
	return nil
}

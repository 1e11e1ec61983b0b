// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, session manager) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the MeatTrack API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"15"`
	DatabaseMinConns int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// MigrationPath overrides the embedded migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value Store (Redis): browser sessions, CSRF tokens, login throttle
	RedisURL      string `env:"REDIS_URL,required,notEmpty"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// SessionSecret signs one-time links such as email verification.
	SessionSecret string `env:"SESSION_SECRET,required,notEmpty"`

	// Cookies
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`

	// Session lifetimes
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"24h"`
	RememberTTL       time.Duration `env:"REMEMBER_TTL"        envDefault:"720h"`
	BrowserSessionTTL time.Duration `env:"BROWSER_SESSION_TTL" envDefault:"24h"`

	// Failed-login throttle. LoginMaxFailures of 0 disables it.
	LoginMaxFailures   int           `env:"LOGIN_MAX_FAILURES"   envDefault:"5"`
	LoginFailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW" envDefault:"15m"`

	// SessionSweepSchedule is a cron expression; empty disables the sweeper.
	SessionSweepSchedule string `env:"SESSION_SWEEP_SCHEDULE"`

	// SeedUsersPath points to an optional YAML file of bootstrap accounts.
	SeedUsersPath string `env:"SEED_USERS_PATH"`

	// PublicBaseURL is used to build links sent to users.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Fails if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least 32 bytes")
	}

	if cfg.DatabaseMaxConns < 1 || cfg.DatabaseMinConns < 0 || cfg.RedisPoolSize < 1 {
		return nil, fmt.Errorf("config: pool sizes must be positive")
	}

	if cfg.SessionTTL <= 0 || cfg.RememberTTL <= 0 || cfg.BrowserSessionTTL <= 0 {
		return nil, fmt.Errorf("config: session lifetimes must be positive")
	}

	if cfg.IsProduction() && !cfg.CookieSecure {
		return nil, fmt.Errorf("config: COOKIE_SECURE must be true in production")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meattrack")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
}

/*
TestLoad_Defaults checks the documented session lifetimes and throttle defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RememberTTL)
	assert.Equal(t, 24*time.Hour, cfg.BrowserSessionTTL)
	assert.Equal(t, 5, cfg.LoginMaxFailures)
	assert.Equal(t, 15*time.Minute, cfg.LoginFailureWindow)
	assert.Empty(t, cfg.SessionSweepSchedule)
	assert.Equal(t, int32(15), cfg.DatabaseMaxConns)
	assert.Equal(t, int32(2), cfg.DatabaseMinConns)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_Rejects covers missing required values and a weak secret.
*/
func TestLoad_Rejects(t *testing.T) {
	t.Run("missing_database", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		require.NoError(t, os.Unsetenv("DATABASE_URL"))
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("short_secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_SECRET", "short")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("empty_pool", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_MAX_CONNS", "0")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("zero_ttl", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_TTL", "0s")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("insecure_cookie_in_production", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ENVIRONMENT", "production")

		_, err := config.Load()
		assert.Error(t, err)

		t.Setenv("COOKIE_SECURE", "true")
		cfg, err := config.Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

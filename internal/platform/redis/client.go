// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

MeatTrack keeps browser sessions (the CSRF token and the login marker), one-time
verification link nonces and failed-login counters in Redis. Every key carries a TTL;
nothing here is the system of record for a login session.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout     = 3 * time.Second
	commandTimeout  = 2 * time.Second
	pingTimeout     = 2 * time.Second
	defaultPoolSize = 10
)

// Settings describes how to reach Redis and how large the pool may grow.
type Settings struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// PoolSize caps open connections. Zero selects the default of 10.
	PoolSize int
}

// Options turns settings into go-redis client options without connecting.
func (settings Settings) Options() (*redis.Options, error) {
	options, err := redis.ParseURL(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("redis_url_invalid: %w", err)
	}

	options.PoolSize = settings.PoolSize
	if options.PoolSize <= 0 {
		options.PoolSize = defaultPoolSize
	}
	// Keep a fifth of the pool warm for the per-request session lookups.
	options.MinIdleConns = max(1, options.PoolSize/5)
	options.MaxIdleConns = max(options.MinIdleConns, options.PoolSize/2)

	options.DialTimeout = dialTimeout
	options.ReadTimeout = commandTimeout
	options.WriteTimeout = commandTimeout

	return options, nil
}

// NewClient connects to Redis and verifies the connection with a ping.
//
// # Parameters
//   - context: Context for the initial ping.
//   - settings: Connection URL and pool size.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, settings Settings, logger *slog.Logger) (*redis.Client, error) {
	options, err := settings.Options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping checks that Redis answers within a short deadline. It backs the
// readiness probe.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}

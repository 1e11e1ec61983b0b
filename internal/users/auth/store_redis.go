// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
)

// # Browser Session Store

// RedisBrowserSessionStore implements [BrowserSessionStore] with one JSON value per sid.
type RedisBrowserSessionStore struct {
	client *redis.Client
}

// NewBrowserSessionStore creates a new Redis-backed [BrowserSessionStore].
func NewBrowserSessionStore(client *redis.Client) *RedisBrowserSessionStore {
	return &RedisBrowserSessionStore{client: client}
}

/*
Get loads a browser session.

Parameters:
  - context: context.Context
  - id: string (the sid cookie value)

Returns:
  - *BrowserSession: The record with ID populated
  - error: apperr.NotFound if absent or expired, or connectivity errors
*/
func (store *RedisBrowserSessionStore) Get(context context.Context, id string) (*BrowserSession, error) {
	raw, err := store.client.Get(context, constants.RedisPrefixBrowserSession+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Browser session")
		}
		return nil, fmt.Errorf("redis_browser_session_get_failed: %w", err)
	}

	browser := &BrowserSession{}
	if err := json.Unmarshal(raw, browser); err != nil {
		return nil, fmt.Errorf("redis_browser_session_decode_failed: %w", err)
	}
	browser.ID = id

	return browser, nil
}

// Save implements [BrowserSessionStore].
func (store *RedisBrowserSessionStore) Save(context context.Context, browser *BrowserSession, ttl time.Duration) error {
	raw, err := json.Marshal(browser)
	if err != nil {
		return fmt.Errorf("redis_browser_session_encode_failed: %w", err)
	}

	if err := store.client.Set(context, constants.RedisPrefixBrowserSession+browser.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis_browser_session_set_failed: %w", err)
	}
	return nil
}

// Delete implements [BrowserSessionStore].
func (store *RedisBrowserSessionStore) Delete(context context.Context, id string) error {
	if err := store.client.Del(context, constants.RedisPrefixBrowserSession+id).Err(); err != nil {
		return fmt.Errorf("redis_browser_session_delete_failed: %w", err)
	}
	return nil
}

// # Nonce Store

// RedisNonceStore implements [NonceStore].
type RedisNonceStore struct {
	client *redis.Client
}

// NewNonceStore creates a new Redis-backed [NonceStore].
func NewNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client}
}

// Put implements [NonceStore].
func (store *RedisNonceStore) Put(context context.Context, nonce, subject string, ttl time.Duration) error {
	if err := store.client.Set(context, constants.RedisPrefixVerifyJTI+nonce, subject, ttl).Err(); err != nil {
		return fmt.Errorf("redis_nonce_set_failed: %w", err)
	}
	return nil
}

// Consume implements [NonceStore] with GETDEL, so two concurrent redemptions
// cannot both succeed.
func (store *RedisNonceStore) Consume(context context.Context, nonce string) (string, error) {
	subject, err := store.client.GetDel(context, constants.RedisPrefixVerifyJTI+nonce).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Verification link")
		}
		return "", fmt.Errorf("redis_nonce_consume_failed: %w", err)
	}
	return subject, nil
}

// # Login Throttle

// RedisLoginThrottle implements [LoginThrottle] with a fixed window per key.
type RedisLoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a new Redis-backed [LoginThrottle].
func NewLoginThrottle(client *redis.Client) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client}
}

// Failures implements [LoginThrottle].
func (throttle *RedisLoginThrottle) Failures(context context.Context, key string) (int, error) {
	count, err := throttle.client.Get(context, constants.RedisPrefixLoginFailure+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}
	return count, nil
}

// RecordFailure implements [LoginThrottle]. The window starts at the first failure
// and is not extended by later ones.
func (throttle *RedisLoginThrottle) RecordFailure(context context.Context, key string, window time.Duration) (int, error) {
	redisKey := constants.RedisPrefixLoginFailure + key

	count, err := throttle.client.Incr(context, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}

	if count == 1 {
		if err := throttle.client.Expire(context, redisKey, window).Err(); err != nil {
			return 0, fmt.Errorf("redis_login_throttle_expire_failed: %w", err)
		}
	}

	return int(count), nil
}

// Reset implements [LoginThrottle].
func (throttle *RedisLoginThrottle) Reset(context context.Context, key string) error {
	if err := throttle.client.Del(context, constants.RedisPrefixLoginFailure+key).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_reset_failed: %w", err)
	}
	return nil
}

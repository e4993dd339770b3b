// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides a small byte cache with in-memory and Redis
// backends, used to keep resolved users (and their permission sets) off
// the per-request database path.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a TTL'd byte cache.
type Store interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL enables the Redis backend when non-empty.
	RedisURL string
	// Prefix is prepended to every key (Redis backend).
	Prefix string
	// MaxEntries bounds the memory backend; 0 uses a default.
	MaxEntries int
}

// New creates a cache store: Redis when a URL is configured, in-process
// memory otherwise.
func New(opts Options) (Store, error) {
	if opts.RedisURL == "" {
		return NewMemory(opts.MaxEntries), nil
	}

	redisOpts, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(redisOpts), opts.Prefix), nil
}

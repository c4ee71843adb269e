// Package cache defines the port interfaces for caching and atomic counters.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Counter is an atomic integer counter. Incr must be a single atomic
// operation at the backend: concurrent callers never lose an update.
type Counter interface {
	// Incr adds one to key and returns the new value. A missing key starts
	// at zero. ttl is (re)applied together with the increment.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Value returns the current value of key, or zero when absent.
	Value(ctx context.Context, key string) (int64, error)
}

// Store combines Cache and Counter; every backend adapter implements both.
type Store interface {
	Cache
	Counter
}

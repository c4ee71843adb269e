// Package redis implements the cache port on Redis. It is the authoritative
// backend for quota counters shared by every gateway instance.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Addr          string
	Password      string
	DB            int
	PoolSize      int
	MinIdleConns  int
	MaxRetries    int
	RetryInterval time.Duration
}

// Cache wraps a go-redis client.
type Cache struct {
	client goredis.UniversalClient
}

// New wraps an existing client.
func New(client goredis.UniversalClient) *Cache {
	return &Cache{client: client}
}

// Connect dials Redis and pings it, retrying up to cfg.MaxRetries times.
func Connect(ctx context.Context, cfg Config) (*Cache, error) {
	var lastErr error
	for i := 0; i <= cfg.MaxRetries; i++ {
		client := goredis.NewClient(&goredis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			lastErr = fmt.Errorf("ping redis: %w", err)
			_ = client.Close()
			if i < cfg.MaxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(cfg.RetryInterval):
				}
			}
			continue
		}
		return &Cache{client: client}, nil
	}
	return nil, fmt.Errorf("connect redis after %d retries: %w", cfg.MaxRetries, lastErr)
}

// Get retrieves a value.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Set stores a value with the given TTL. A zero TTL means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Incr atomically increments key and refreshes its expiry in one MULTI/EXEC.
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	tx := c.client.TxPipeline()
	incr := tx.Incr(ctx, key)
	if ttl > 0 {
		tx.Expire(ctx, key, ttl)
	}
	if _, err := tx.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Value returns the counter stored at key, or zero when absent.
func (c *Cache) Value(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

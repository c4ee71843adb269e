package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/HeadlineForge/internal/port/cache"
)

// LoadFunc fetches a value from the source of truth. found=false means the
// value does not exist; it is never cached.
type LoadFunc[T any] func(ctx context.Context) (value T, found bool, err error)

// ReadThrough is a JSON-encoding read-through cache. Cache failures are
// logged and degrade to a miss; source failures propagate.
type ReadThrough[T any] struct {
	cache cache.Cache
	ttl   time.Duration
	name  string
}

// NewReadThrough creates a read-through cache. name only labels log lines.
func NewReadThrough[T any](c cache.Cache, ttl time.Duration, name string) *ReadThrough[T] {
	return &ReadThrough[T]{cache: c, ttl: ttl, name: name}
}

// Load returns the cached value for key, falling back to load on a miss and
// populating the cache with found values. Concurrent misses may each call
// load and write the same value.
func (r *ReadThrough[T]) Load(ctx context.Context, key string, load LoadFunc[T]) (T, bool, error) {
	var zero T

	raw, ok, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "cache get failed, treating as miss", "cache", r.name, "error", err)
	case ok:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, true, nil
		}
		slog.WarnContext(ctx, "cache entry undecodable, treating as miss", "cache", r.name)
	}

	v, found, err := load(ctx)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", "cache", r.name, "error", err)
		return v, true, nil
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		slog.WarnContext(ctx, "cache set failed", "cache", r.name, "error", err)
	}
	return v, true, nil
}

// Invalidate drops key from the cache. Failures are logged only.
func (r *ReadThrough[T]) Invalidate(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "cache delete failed", "cache", r.name, "error", err)
	}
}

// Package natskv implements the cache port using NATS JetStream KV as a
// remote L2 shared between gateway instances.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// maxCASAttempts bounds the compare-and-swap loop in Incr.
const maxCASAttempts = 32

// casBackoff caps the jittered pause between lost compare-and-swap rounds.
const casBackoff = 20 * time.Millisecond

// Cache wraps a NATS JetStream KeyValue store as an L2 cache.
type Cache struct {
	kv jetstream.KeyValue
}

// New creates a NATS KV-backed cache.
func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv}
}

// Open creates or updates the bucket and wraps it. ttl is the bucket-wide
// expiry; JetStream KV has no per-key TTL.
func Open(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*Cache, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("kv bucket %s: %w", bucket, err)
	}
	return New(kv), nil
}

// KV keys may not contain ':'; the cache key scheme uses it as separator.
func kvKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

// Get retrieves a value from the NATS KV store.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	entry, err := c.kv.Get(ctx, kvKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value(), true, nil
}

// Set stores a value in the NATS KV store. TTL is managed at bucket level.
func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Put(ctx, kvKey(key), value)
	return err
}

// Delete removes a value from the NATS KV store.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, kvKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Incr increments the counter at key with optimistic concurrency: Create for
// a fresh key, Update against the last revision otherwise. TTL is managed at
// bucket level.
func (c *Cache) Incr(ctx context.Context, key string, _ time.Duration) (int64, error) {
	k := kvKey(key)
	for attempt := range maxCASAttempts {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return 0, err
			}
		}
		entry, err := c.kv.Get(ctx, k)
		switch {
		case errors.Is(err, jetstream.ErrKeyNotFound):
			if _, err := c.kv.Create(ctx, k, []byte("1")); err == nil {
				return 1, nil
			} else if !errors.Is(err, jetstream.ErrKeyExists) {
				return 0, err
			}
			continue
		case err != nil:
			return 0, err
		}

		n, err := strconv.ParseInt(string(entry.Value()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("counter %s: %w", key, err)
		}
		n++
		if _, err := c.kv.Update(ctx, k, []byte(strconv.FormatInt(n, 10)), entry.Revision()); err == nil {
			return n, nil
		} else if !isWrongSequence(err) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("counter %s: too much contention", key)
}

// Value returns the counter at key, or zero when absent.
func (c *Cache) Value(ctx context.Context, key string) (int64, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	return strconv.ParseInt(string(data), 10, 64)
}

// backoff sleeps a random duration that grows with attempt, up to casBackoff.
func backoff(ctx context.Context, attempt int) error {
	ceiling := min(time.Duration(attempt)*time.Millisecond, casBackoff)
	t := time.NewTimer(rand.N(ceiling) + time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isWrongSequence(err error) bool {
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}
	return errors.Is(err, jetstream.ErrKeyExists)
}

// Package memory implements the cache port with a process-local map. It backs
// single-instance deployments and tests; counters are not shared between
// processes.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache is a mutex-guarded map with per-key expiry.
type Cache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{data: make(map[string]entry), now: time.Now}
}

// WithClock overrides the time source; used in tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) lookup(key string) (entry, bool) {
	e, ok := c.data[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(c.now()) {
		delete(c.data, key)
		return entry{}, false
	}
	return e, true
}

func (c *Cache) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// Get retrieves a value.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a value with the given TTL. A zero TTL means no expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{value: append([]byte(nil), value...), expiresAt: c.deadline(ttl)}
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Incr increments the decimal counter at key and refreshes its expiry.
func (c *Cache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if e, ok := c.lookup(key); ok {
		v, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, err
		}
		n = v
	}
	n++
	c.data[key] = entry{value: []byte(strconv.FormatInt(n, 10)), expiresAt: c.deadline(ttl)}
	return n, nil
}

// Value returns the counter at key, or zero when absent.
func (c *Cache) Value(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(string(e.value), 10, 64)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hfhttp "github.com/Strob0t/HeadlineForge/internal/adapter/http"
	"github.com/Strob0t/HeadlineForge/internal/adapter/gemini"
	"github.com/Strob0t/HeadlineForge/internal/adapter/litellm"
	"github.com/Strob0t/HeadlineForge/internal/adapter/memory"
	hfnats "github.com/Strob0t/HeadlineForge/internal/adapter/nats"
	"github.com/Strob0t/HeadlineForge/internal/adapter/natskv"
	"github.com/Strob0t/HeadlineForge/internal/adapter/redis"
	"github.com/Strob0t/HeadlineForge/internal/adapter/ristretto"
	"github.com/Strob0t/HeadlineForge/internal/adapter/tiered"
	"github.com/Strob0t/HeadlineForge/internal/config"
	"github.com/Strob0t/HeadlineForge/internal/port/cache"
	"github.com/Strob0t/HeadlineForge/internal/port/generator"
	"github.com/Strob0t/HeadlineForge/internal/resilience"
)

// longestPeriod bounds a calendar month; counter buckets must outlive it.
const longestPeriod = 31 * 24 * time.Hour

// infra holds the shared cache, counter and queue connections.
type infra struct {
	// Lookup caches plan limits, optionally behind an in-process L1.
	Lookup cache.Cache
	// Auth caches key resolutions. Entries must expire within
	// quota.auth_cache_ttl on every backend.
	Auth cache.Cache
	// Counter holds quota counters. It is never tiered: every instance must
	// increment the same value.
	Counter cache.Counter
	// Queue is nil unless nats.url is set.
	Queue   *hfnats.Queue
	Pingers map[string]hfhttp.Pinger

	closers []func()
}

func (i *infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

// openInfra connects the configured cache backend and, when a NATS URL is
// set, the message queue.
func openInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	in := &infra{Pingers: make(map[string]hfhttp.Pinger)}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	if cfg.NATS.URL != "" && (cfg.Cache.Backend == "nats" || cfg.Webhook.Async) {
		q, err := hfnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return nil, fmt.Errorf("nats: %w", err)
		}
		in.Queue = q
		in.Pingers["nats"] = q
		in.closers = append(in.closers, func() { _ = q.Close() })
		slog.Info("nats connected", "stream", cfg.NATS.Stream)
	}

	var shared cache.Store
	var sharedAuth cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := redis.Connect(ctx, redis.Config{
			Addr:          cfg.Redis.Addr,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			MaxRetries:    cfg.Redis.MaxRetries,
			RetryInterval: cfg.Redis.RetryInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		shared = rc
		in.Counter = rc
		in.Pingers["redis"] = rc
		in.closers = append(in.closers, func() { _ = rc.Close() })

	case "nats":
		plan := natsBuckets(cfg)
		lookups, err := natskv.Open(ctx, in.Queue.JetStream(), plan.lookups.name, plan.lookups.ttl)
		if err != nil {
			return nil, fmt.Errorf("nats kv: %w", err)
		}
		auth, err := natskv.Open(ctx, in.Queue.JetStream(), plan.auth.name, plan.auth.ttl)
		if err != nil {
			return nil, fmt.Errorf("nats kv auth: %w", err)
		}
		counters, err := natskv.Open(ctx, in.Queue.JetStream(), plan.counters.name, plan.counters.ttl)
		if err != nil {
			return nil, fmt.Errorf("nats kv counters: %w", err)
		}
		shared = lookups
		sharedAuth = auth
		in.Counter = counters

	default:
		mc := memory.New()
		shared = mc
		in.Counter = mc
		slog.Warn("memory cache backend: quota counters are local to this instance")
	}
	if sharedAuth == nil {
		// redis and memory honour per-key TTLs.
		sharedAuth = shared
	}
	in.Lookup = shared
	in.Auth = sharedAuth

	if cfg.Cache.L1Enabled && cfg.Cache.Backend != "memory" {
		l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
		if err != nil {
			return nil, fmt.Errorf("l1 cache: %w", err)
		}
		in.closers = append(in.closers, l1.Close)
		in.Lookup = tiered.New(l1, shared, cfg.Cache.L1TTL)
		in.Auth = tiered.New(l1, sharedAuth, cfg.Cache.L1TTL)
	}

	slog.Info("cache ready", "backend", cfg.Cache.Backend, "l1", cfg.Cache.L1Enabled)
	ok = true
	return in, nil
}

type kvBucket struct {
	name string
	ttl  time.Duration
}

// kvBuckets lists the KV buckets of the nats backend.
type kvBuckets struct {
	lookups  kvBucket
	auth     kvBucket
	counters kvBucket
}

// natsBuckets derives bucket names and TTLs. KV expiry is per bucket, so
// auth resolutions get a bucket bounded by quota.auth_cache_ttl and
// counters one that outlives a whole period plus grace.
func natsBuckets(cfg *config.Config) kvBuckets {
	return kvBuckets{
		lookups:  kvBucket{name: cfg.Cache.L2Bucket, ttl: cfg.Cache.L2TTL},
		auth:     kvBucket{name: cfg.Cache.L2Bucket + "_AUTH", ttl: cfg.Quota.AuthCacheTTL},
		counters: kvBucket{name: cfg.Cache.L2Bucket + "_COUNTERS", ttl: longestPeriod + cfg.Quota.CounterGrace},
	}
}

// newGenerator builds the configured text generator behind a circuit breaker.
func newGenerator(ctx context.Context, cfg *config.Config) (generator.Generator, func(), error) {
	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)

	switch cfg.Generator.Provider {
	case "litellm":
		c := litellm.NewClient(cfg.Generator.URL, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.Timeout)
		c.SetBreaker(breaker)
		if healthy, err := c.Health(ctx); !healthy {
			slog.Warn("litellm not healthy at startup", "url", cfg.Generator.URL, "error", err)
		}
		return c, func() {}, nil
	default:
		g, err := gemini.New(ctx, cfg.Generator.APIKey, cfg.Generator.Model)
		if err != nil {
			return nil, nil, err
		}
		g.SetBreaker(breaker)
		return g, func() { _ = g.Close() }, nil
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "headlineforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("HF_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "HF_PORT")
	setString(&cfg.Server.CORSOrigin, "HF_CORS_ORIGIN")
	setDuration(&cfg.Server.ShutdownTimeout, "HF_SHUTDOWN_TIMEOUT")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "HF_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "HF_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "HF_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "HF_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "HF_PG_HEALTH_CHECK")

	setString(&cfg.Redis.Addr, "REDIS_URL")
	setString(&cfg.Redis.Password, "HF_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HF_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "HF_REDIS_POOL_SIZE")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Stream, "HF_NATS_STREAM")

	// Cache
	setString(&cfg.Cache.Backend, "HF_CACHE_BACKEND")
	setBool(&cfg.Cache.L1Enabled, "HF_CACHE_L1_ENABLED")
	setInt64(&cfg.Cache.L1MaxSizeMB, "HF_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.L1TTL, "HF_CACHE_L1_TTL")
	setString(&cfg.Cache.L2Bucket, "HF_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "HF_CACHE_L2_TTL")

	// Quota
	setString(&cfg.Quota.AuthCacheVersion, "HF_AUTH_CACHE_VERSION")
	setDuration(&cfg.Quota.AuthCacheTTL, "HF_AUTH_CACHE_TTL")
	setDuration(&cfg.Quota.LimitCacheTTL, "HF_LIMIT_CACHE_TTL")
	setInt64(&cfg.Quota.DefaultLimit, "HF_DEFAULT_LIMIT")
	setDuration(&cfg.Quota.CounterGrace, "HF_COUNTER_GRACE")
	setDuration(&cfg.Quota.MeterSync, "HF_METER_SYNC_INTERVAL")

	// Generator
	setString(&cfg.Generator.Provider, "HF_GENERATOR")
	setString(&cfg.Generator.Model, "HF_GENERATOR_MODEL")
	setString(&cfg.Generator.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Generator.URL, "LITELLM_URL")
	setDuration(&cfg.Generator.Timeout, "HF_GENERATOR_TIMEOUT")

	// Webhook
	setDuration(&cfg.Webhook.Timeout, "HF_WEBHOOK_TIMEOUT")
	setInt(&cfg.Webhook.Concurrency, "HF_WEBHOOK_CONCURRENCY")
	setBool(&cfg.Webhook.Async, "HF_WEBHOOK_ASYNC")

	setBool(&cfg.Rate.Enabled, "HF_RATE_ENABLED")
	setFloat64(&cfg.Rate.RequestsPerSecond, "HF_RATE_RPS")
	setInt(&cfg.Rate.Burst, "HF_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "HF_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "HF_RATE_MAX_IDLE_TIME")

	setInt(&cfg.Breaker.MaxFailures, "HF_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "HF_BREAKER_TIMEOUT")

	setString(&cfg.Logging.Level, "HF_LOG_LEVEL")
	setString(&cfg.Logging.Service, "HF_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "HF_LOG_ASYNC")

	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTEL.Insecure, "HF_OTEL_INSECURE")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
	setFloat64(&cfg.OTEL.SampleRate, "HF_OTEL_SAMPLE_RATE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	switch cfg.Cache.Backend {
	case "redis":
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is required for cache.backend=redis")
		}
	case "nats":
		if cfg.NATS.URL == "" {
			return errors.New("nats.url is required for cache.backend=nats")
		}
	case "memory":
	default:
		return fmt.Errorf("cache.backend %q must be redis, nats or memory", cfg.Cache.Backend)
	}
	if cfg.Webhook.Async && cfg.NATS.URL == "" {
		return errors.New("nats.url is required when webhook.async is set")
	}
	if cfg.Quota.AuthCacheVersion == "" {
		return errors.New("quota.auth_cache_version is required")
	}
	if cfg.Quota.AuthCacheTTL <= 0 {
		return errors.New("quota.auth_cache_ttl must be > 0")
	}
	if cfg.Quota.DefaultLimit < 1 {
		return errors.New("quota.default_limit must be >= 1")
	}
	switch cfg.Generator.Provider {
	case "gemini", "litellm":
	default:
		return fmt.Errorf("generator.provider %q must be gemini or litellm", cfg.Generator.Provider)
	}
	if cfg.Webhook.Concurrency < 1 {
		return errors.New("webhook.concurrency must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Enabled && cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

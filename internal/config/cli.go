package config

import (
	"flag"
	"fmt"
)

// CLIFlags holds command-line overrides. Nil fields were not set and leave
// the config untouched.
type CLIFlags struct {
	ConfigPath *string
	Port       *string
	LogLevel   *string
	DSN        *string
	RedisAddr  *string
	NatsURL    *string
}

// ParseFlags parses serve flags. Precedence: defaults < YAML < ENV < CLI.
func ParseFlags(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var (
		configPath, port, logLevel, dsn, redisAddr, natsURL string
	)
	fs.StringVar(&configPath, "config", "", "path to YAML config")
	fs.StringVar(&configPath, "c", "", "shorthand for --config")
	fs.StringVar(&port, "port", "", "HTTP listen port")
	fs.StringVar(&port, "p", "", "shorthand for --port")
	fs.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN")
	fs.StringVar(&redisAddr, "redis", "", "Redis address")
	fs.StringVar(&natsURL, "nats", "", "NATS URL")
	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, fmt.Errorf("parse flags: %w", err)
	}

	var f CLIFlags
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "config", "c":
			f.ConfigPath = &configPath
		case "port", "p":
			f.Port = &port
		case "log-level":
			f.LogLevel = &logLevel
		case "dsn":
			f.DSN = &dsn
		case "redis":
			f.RedisAddr = &redisAddr
		case "nats":
			f.NatsURL = &natsURL
		}
	})
	return f, nil
}

// LoadWithCLI loads the config hierarchy and applies CLI overrides last.
// It returns the YAML path that was consulted.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	path := DefaultConfigFile
	if flags.ConfigPath != nil {
		path = *flags.ConfigPath
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, path); err != nil {
		return nil, path, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, path, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, path, nil
}

func applyCLI(cfg *Config, f CLIFlags) {
	if f.Port != nil {
		cfg.Server.Port = *f.Port
	}
	if f.LogLevel != nil {
		cfg.Logging.Level = *f.LogLevel
	}
	if f.DSN != nil {
		cfg.Postgres.DSN = *f.DSN
	}
	if f.RedisAddr != nil {
		cfg.Redis.Addr = *f.RedisAddr
	}
	if f.NatsURL != nil {
		cfg.NATS.URL = *f.NatsURL
	}
}

// Package config provides configuration parsing for the planner.
//
// Flags take precedence over environment variables, which take precedence
// over defaults. Scenario source settings may also be given through
// SOURCE_* variables: SOURCE_URL, SOURCE_PATH, SOURCE_HEADERS and so on are
// passed to the scenario source as url, path, headers.
//
// Example usage:
//
//	cfg := config.ParseFlags()
//	src, err := scenario.New(cfg.Source, cfg.SourceConfig)
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all planner configuration.
type Config struct {
	Listen     string
	GRPCListen string
	LogFormat  string
	LogLevel   string

	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// Source is the startup scenario source kind: default, file or http.
	Source       string
	SourceConfig map[string]string

	// Scenario is a shortcut for the startup source: a file path or an
	// http(s) URL. It overrides Source when set.
	Scenario string

	Parallel        bool
	StaleAfter      time.Duration
	SimulateTimeout time.Duration
	MaxBodyBytes    int64
}

// ParseFlags parses os.Args and the environment, exiting on error.
func ParseFlags() *Config {
	cfg, err := ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	return cfg
}

// ParseArgs parses args with environment fallbacks and validates the result.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)

	fs.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8082"), "HTTP listen address")
	fs.StringVar(&cfg.GRPCListen, "grpc-listen", getEnv("GRPC_LISTEN", ":50052"), "gRPC health listen address (empty disables)")

	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	fs.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "Storage backend: memory or redis")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis server address")
	fs.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	fs.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 30*time.Minute), "Report TTL for both storage backends")

	fs.StringVar(&cfg.Source, "source", getEnv("SOURCE", "default"), "Startup scenario source: default, file, or http")
	fs.StringVar(&cfg.Scenario, "scenario", getEnv("SCENARIO", ""), "Startup scenario file path or URL")

	fs.BoolVar(&cfg.Parallel, "parallel", getEnvBool("PARALLEL", false), "Run strategies concurrently")
	fs.DurationVar(&cfg.StaleAfter, "stale-after", getEnvDuration("STALE_AFTER", time.Hour), "Age after which stored reports are marked stale")
	fs.DurationVar(&cfg.SimulateTimeout, "simulate-timeout", getEnvDuration("SIMULATE_TIMEOUT", 2*time.Minute), "Timeout for POST /simulate")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", int64(getEnvInt("MAX_BODY_BYTES", 1<<20)), "Maximum POST /simulate body size")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.SourceConfig = parseSourceConfig()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Storage {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid storage %q (must be memory or redis)", c.Storage)
	}
	if c.Storage == "redis" && c.RedisAddr == "" {
		return errors.New("redis-addr is required when storage=redis")
	}

	switch c.Source {
	case "default", "file", "http":
	default:
		return fmt.Errorf("invalid source %q (must be default, file, or http)", c.Source)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format %q (must be text or json)", c.LogFormat)
	}

	if c.Listen == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.RedisTTL <= 0 {
		return errors.New("redis-ttl must be > 0")
	}
	if c.StaleAfter <= 0 {
		return errors.New("stale-after must be > 0")
	}
	if c.SimulateTimeout <= 0 {
		return errors.New("simulate-timeout must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max-body-bytes must be > 0")
	}
	return nil
}

// parseSourceConfig collects SOURCE_* environment variables into a map with
// lowerCamelCase keys (SOURCE_ROOT_PATH becomes rootPath). SOURCE itself is
// the kind flag and is skipped.
func parseSourceConfig() map[string]string {
	const prefix = "SOURCE_"
	config := make(map[string]string)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		config[toLowerCamelCase(key[len(prefix):])] = value
	}

	return config
}

func toLowerCamelCase(s string) string {
	parts := strings.Split(strings.ToLower(s), "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString(strings.ToUpper(p[:1]))
			b.WriteString(p[1:])
			continue
		}
		b.WriteString(p)
	}
	return b.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// Package config resolves the fetcher configuration from defaults,
// environment variables, and an optional YAML file, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/courtsync/courtsync/pkg/client"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v2"
)

// Config is the resolved fetcher configuration.
type Config struct {
	BaseURL       string
	Token         string
	UserAgent     string
	MaxRetries    int
	Timeout       time.Duration
	BackoffFactor time.Duration
	RedisURL      string
	CacheTTL      time.Duration
	DataDir       string
}

// fileConfig is the YAML shape. Durations are strings so the file accepts
// the same "90s" or bare-seconds forms the environment does.
type fileConfig struct {
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	UserAgent     string `yaml:"user_agent"`
	MaxRetries    int    `yaml:"max_retries"`
	Timeout       string `yaml:"timeout"`
	BackoffFactor string `yaml:"backoff_factor"`
	RedisURL      string `yaml:"redis_url"`
	CacheTTL      string `yaml:"cache_ttl"`
	DataDir       string `yaml:"data_dir"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		BaseURL:       client.DefaultBaseURL,
		UserAgent:     client.DefaultUserAgent,
		MaxRetries:    client.DefaultMaxRetries,
		Timeout:       client.DefaultRequestTimeout,
		BackoffFactor: client.DefaultBackoffFactor,
		DataDir:       "data",
	}
}

// Load resolves the configuration: defaults, then environment variables,
// then the optional YAML file at path.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// ApplyEnv overlays set environment variables onto the configuration.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("COURTLISTENER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("COURTLISTENER_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("COURTLISTENER_UA"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("COURTLISTENER_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse COURTLISTENER_MAX_RETRIES %q: %w", v, err)
		}
		c.MaxRetries = n
	}
	if v := os.Getenv("COURTLISTENER_TIMEOUT"); v != "" {
		d, err := ParseSeconds(v)
		if err != nil {
			return fmt.Errorf("parse COURTLISTENER_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("COURTLISTENER_BACKOFF_FACTOR"); v != "" {
		d, err := ParseSeconds(v)
		if err != nil {
			return fmt.Errorf("parse COURTLISTENER_BACKOFF_FACTOR %q: %w", v, err)
		}
		c.BackoffFactor = d
	}
	if v := os.Getenv("COURTLISTENER_CACHE_TTL"); v != "" {
		d, err := ParseSeconds(v)
		if err != nil {
			return fmt.Errorf("parse COURTLISTENER_CACHE_TTL %q: %w", v, err)
		}
		c.CacheTTL = d
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	return nil
}

// ApplyFile overlays a YAML file onto the configuration. Environment
// references like ${COURTLISTENER_TOKEN} inside the file are expanded
// before parsing.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.Token != "" {
		c.Token = fc.Token
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.MaxRetries != 0 {
		c.MaxRetries = fc.MaxRetries
	}
	if fc.Timeout != "" {
		d, err := ParseSeconds(fc.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout in %s: %w", path, err)
		}
		c.Timeout = d
	}
	if fc.BackoffFactor != "" {
		d, err := ParseSeconds(fc.BackoffFactor)
		if err != nil {
			return fmt.Errorf("parse backoff_factor in %s: %w", path, err)
		}
		c.BackoffFactor = d
	}
	if fc.CacheTTL != "" {
		d, err := ParseSeconds(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("parse cache_ttl in %s: %w", path, err)
		}
		c.CacheTTL = d
	}
	if fc.RedisURL != "" {
		c.RedisURL = fc.RedisURL
	}
	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}

	return nil
}

// ParseSeconds parses a duration given either as a Go duration ("90s",
// "1.5s") or as bare seconds ("60", "1.5").
func ParseSeconds(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a duration nor seconds", s)
	}
	return time.Duration(f * float64(time.Second)), nil
}

// ClientConfig converts to the client package's configuration. The Redis
// handle is attached by the caller.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:        c.BaseURL,
		UserAgent:      c.UserAgent,
		AuthToken:      c.Token,
		MaxRetries:     c.MaxRetries,
		RequestTimeout: c.Timeout,
		Backoff:        client.BackoffPolicy{Factor: c.BackoffFactor},
		CacheTTL:       c.CacheTTL,
	}
}

// RedisClient builds a Redis client from RedisURL, accepting both plain
// "host:port" addresses and redis:// URLs. Returns nil when unset.
func (c Config) RedisClient() (*redis.Client, error) {
	if c.RedisURL == "" {
		return nil, nil
	}

	if strings.Contains(c.RedisURL, "://") {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{Addr: c.RedisURL}), nil
}

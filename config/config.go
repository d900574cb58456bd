// Package config loads the lookup configuration surface from environment
// variables, with optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the complete tuning surface for lookups.
type Config struct {
	// Timeout is the per-resolve deadline.
	Timeout time.Duration

	// Retries is the attempt budget per adapter, including the first call.
	Retries int

	// RetryBase is the exponential backoff base delay.
	RetryBase time.Duration

	// MaxRetryDelay caps the pre-jitter backoff delay.
	MaxRetryDelay time.Duration

	// RateLimitDelay is the default minimum inter-call spacing for
	// adapters without a provider-specific interval.
	RateLimitDelay time.Duration

	// CacheEnabled memoizes won races in-process.
	CacheEnabled bool

	// CacheCapacity bounds the result cache entry count.
	CacheCapacity int

	// CacheTTL expires cached results. Zero disables expiry.
	CacheTTL time.Duration

	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		Retries:       3,
		RetryBase:     200 * time.Millisecond,
		MaxRetryDelay: 10 * time.Second,
		CacheEnabled:  true,
		CacheCapacity: 1024,
		CacheTTL:      time.Hour,
		LogLevel:      "info",
	}
}

// New loads configuration from the environment on top of the defaults.
func New() (*Config, error) {
	// Load .env when present; real environment variables win.
	_ = godotenv.Load(".env")

	def := Default()
	cfg := &Config{
		Timeout:        getEnvAsDuration("LOOKUP_TIMEOUT", def.Timeout),
		Retries:        getEnvAsInt("LOOKUP_RETRIES", def.Retries),
		RetryBase:      getEnvAsDuration("LOOKUP_RETRY_BASE", def.RetryBase),
		MaxRetryDelay:  getEnvAsDuration("LOOKUP_MAX_RETRY_DELAY", def.MaxRetryDelay),
		RateLimitDelay: getEnvAsDuration("LOOKUP_RATE_LIMIT_DELAY", def.RateLimitDelay),
		CacheEnabled:   getEnvAsBool("LOOKUP_CACHE_ENABLED", def.CacheEnabled),
		CacheCapacity:  getEnvAsInt("LOOKUP_CACHE_CAPACITY", def.CacheCapacity),
		CacheTTL:       getEnvAsDuration("LOOKUP_CACHE_TTL", def.CacheTTL),
		LogLevel:       getEnv("LOOKUP_LOG_LEVEL", def.LogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.RetryBase < 0 {
		return fmt.Errorf("retry base must not be negative, got %v", c.RetryBase)
	}
	if c.MaxRetryDelay > 0 && c.MaxRetryDelay < c.RetryBase {
		return fmt.Errorf("max retry delay %v is below the retry base %v", c.MaxRetryDelay, c.RetryBase)
	}
	if c.RateLimitDelay < 0 {
		return fmt.Errorf("rate limit delay must not be negative, got %v", c.RateLimitDelay)
	}
	if c.CacheEnabled && c.CacheCapacity < 1 {
		return fmt.Errorf("cache capacity must be at least 1 when the cache is enabled, got %d", c.CacheCapacity)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

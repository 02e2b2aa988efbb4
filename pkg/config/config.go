// ABOUTME: Configuration management for the reader with environment variable support
// ABOUTME: Defines configuration structures for storage, cache, HTTP, logging and search

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	// Store contains post database configuration
	Store StoreConfig

	// Cache contains feed cache configuration
	Cache CacheConfig

	// HTTP contains feed fetching configuration
	HTTP HTTPConfig

	// Log contains log file configuration
	Log LogConfig

	// Search contains search screen configuration
	Search SearchConfig

	// Refresh contains background feed refresh configuration
	Refresh RefreshConfig
}

// StoreConfig holds SQLite configuration
type StoreConfig struct {
	// Path is the SQLite database file
	Path string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (memory/redis/none)
	Type string

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix namespaces every key written by the reader
	KeyPrefix string
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// DefaultExpiration is the default TTL for cache entries in seconds
	DefaultExpiration int

	// CleanupInterval is how often expired entries are purged, in seconds
	CleanupInterval int
}

// HTTPConfig holds feed fetching configuration
type HTTPConfig struct {
	// Timeout is the per-request timeout in seconds
	Timeout int

	// MaxRetries is how many attempts a request makes before giving up
	MaxRetries int

	// RateLimit is the sustained requests per second across all hosts
	RateLimit float64

	// RateBurst is the number of requests allowed above RateLimit at once
	RateBurst int

	// BreakerFailureRatio opens the circuit breaker once this share of requests fail
	BreakerFailureRatio float64

	// UserAgent is sent with every request
	UserAgent string
}

// LogConfig holds log file configuration
type LogConfig struct {
	// File is the log file path. The terminal UI owns stdout, so logs always go to a file.
	File string

	// Level is the minimum level written (debug/info/warn/error)
	Level string

	// MaxSizeMB rotates the file once it reaches this size
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept
	MaxBackups int
}

// SearchConfig holds search configuration
type SearchConfig struct {
	// ResultLimit caps the posts returned for one query
	ResultLimit int

	// DebounceMillis is the delay between the last keystroke and the search
	DebounceMillis int
}

// RefreshDisabled turns background refresh off when used as the schedule
const RefreshDisabled = "off"

// RefreshConfig holds background refresh configuration
type RefreshConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 30m", or "off"
	Schedule string

	// TimeoutSeconds bounds one refresh of all feeds
	TimeoutSeconds int
}

// Enabled reports whether background refresh should run
func (r RefreshConfig) Enabled() bool {
	return r.Schedule != RefreshDisabled
}

// Timeout returns the refresh timeout as a duration
func (r RefreshConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Debounce returns the search debounce as a duration
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

// RequestTimeout returns the HTTP timeout as a duration
func (h HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(h.Timeout) * time.Second
}

// ScheduleParser accepts five-field cron expressions and descriptors like "@every 1h"
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Path: getEnvOrDefault("READER_DB_PATH", "reader.db"),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:   getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:        getEnvAsIntOrDefault("REDIS_DB", 0),
				KeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", "reader:"),
			},
			Memory: MemoryConfig{
				DefaultExpiration: getEnvAsIntOrDefault("MEMORY_CACHE_EXPIRATION", 3600),
				CleanupInterval:   getEnvAsIntOrDefault("MEMORY_CACHE_CLEANUP", 600),
			},
		},
		HTTP: HTTPConfig{
			Timeout:             getEnvAsIntOrDefault("HTTP_TIMEOUT", 30),
			MaxRetries:          getEnvAsIntOrDefault("HTTP_MAX_RETRIES", 3),
			RateLimit:           getEnvAsFloatOrDefault("HTTP_RATE_LIMIT", 5),
			RateBurst:           getEnvAsIntOrDefault("HTTP_RATE_BURST", 10),
			BreakerFailureRatio: getEnvAsFloatOrDefault("HTTP_BREAKER_FAILURE_RATIO", 0.6),
			UserAgent:           getEnvOrDefault("HTTP_USER_AGENT", "rss-reader/1.0"),
		},
		Log: LogConfig{
			File:       getEnvOrDefault("READER_LOG_FILE", "reader.log"),
			Level:      getEnvOrDefault("READER_LOG_LEVEL", "info"),
			MaxSizeMB:  getEnvAsIntOrDefault("READER_LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsIntOrDefault("READER_LOG_MAX_BACKUPS", 3),
		},
		Search: SearchConfig{
			ResultLimit:    getEnvAsIntOrDefault("SEARCH_RESULT_LIMIT", 100),
			DebounceMillis: getEnvAsIntOrDefault("SEARCH_DEBOUNCE_MS", 300),
		},
		Refresh: RefreshConfig{
			Schedule:       getEnvOrDefault("REFRESH_SCHEDULE", "@every 30m"),
			TimeoutSeconds: getEnvAsIntOrDefault("REFRESH_TIMEOUT", 120),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("database path cannot be empty")
	}

	switch c.Cache.Type {
	case "memory", "redis", "none":
	default:
		return errors.New("cache type must be 'memory', 'redis' or 'none'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	if c.HTTP.Timeout < 1 {
		return errors.New("http timeout must be at least 1 second")
	}

	if c.HTTP.MaxRetries < 0 {
		return errors.New("http max retries cannot be negative")
	}

	if c.HTTP.RateLimit <= 0 || c.HTTP.RateBurst < 1 {
		return errors.New("http rate limit and burst must be positive")
	}

	if c.HTTP.BreakerFailureRatio <= 0 || c.HTTP.BreakerFailureRatio > 1 {
		return errors.New("breaker failure ratio must be in (0, 1]")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("log level must be one of debug, info, warn, error")
	}

	if c.Log.File == "" {
		return errors.New("log file cannot be empty")
	}

	if c.Search.ResultLimit < 1 {
		return errors.New("search result limit must be at least 1")
	}

	if c.Search.DebounceMillis < 0 {
		return errors.New("search debounce cannot be negative")
	}

	if c.Refresh.Enabled() {
		if _, err := ScheduleParser.Parse(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", c.Refresh.Schedule, err)
		}
		if c.Refresh.TimeoutSeconds < 1 {
			return errors.New("refresh timeout must be at least 1 second")
		}
	}

	return nil
}

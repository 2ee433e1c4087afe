// Package config provides application configuration management from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	APIPort  string
	APIHost  string
	LogLevel string

	// DatabaseURL and RedisURL are optional. Without either, analytics stay in memory.
	DatabaseURL string
	RedisURL    string

	DataDir  string
	FeedFile string

	BaseURL          string
	MediaBaseURL     string
	PlaceholderImage string

	MinQueryLength     int
	MaxQueryLength     int
	SuggestRateLimit   float64
	AnalyticsQueueSize int

	SyncInterval  time.Duration
	SyncBatchSize int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:          getEnv("API_PORT", "8080"),
		APIHost:          getEnv("API_HOST", "0.0.0.0"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		DataDir:          getEnv("DATA_DIR", "./data"),
		FeedFile:         getEnv("FEED_FILE", ""),
		BaseURL:          getEnv("BASE_URL", "/"),
		MediaBaseURL:     getEnv("MEDIA_BASE_URL", "/media/catalog/product"),
		PlaceholderImage: getEnv("PLACEHOLDER_IMAGE", "/static/images/placeholder/thumbnail.jpg"),
	}

	var err error
	if cfg.MinQueryLength, err = getEnvInt("MIN_QUERY_LENGTH", 3); err != nil {
		return nil, err
	}
	if cfg.MaxQueryLength, err = getEnvInt("MAX_QUERY_LENGTH", 128); err != nil {
		return nil, err
	}
	if cfg.AnalyticsQueueSize, err = getEnvInt("ANALYTICS_QUEUE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.SyncBatchSize, err = getEnvInt("SYNC_BATCH_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.SuggestRateLimit, err = getEnvFloat("SUGGEST_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = getEnvDuration("SYNC_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.MaxQueryLength <= 0 {
		return nil, fmt.Errorf("MAX_QUERY_LENGTH must be positive")
	}
	if cfg.MinQueryLength < 0 {
		return nil, fmt.Errorf("MIN_QUERY_LENGTH must not be negative")
	}
	if cfg.SyncInterval <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must be positive")
	}

	return cfg, nil
}

// Addr returns the API listen address
func (c *Config) Addr() string {
	return c.APIHost + ":" + c.APIPort
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

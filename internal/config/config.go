package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Session   SessionConfig
	PriceFeed PriceFeedConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "console" or "json"
}

// SessionConfig holds session token configuration.
// Key is a base64 fernet key; an empty key means one is generated at startup
// and sessions do not survive a restart.
type SessionConfig struct {
	Key string
	TTL time.Duration
}

// PriceFeedConfig holds configuration for the external price service
type PriceFeedConfig struct {
	Provider        string // "stockprices" or "yahoo"
	BaseURL         string
	Timeout         time.Duration
	CacheTTL        time.Duration
	Concurrency     int
	RefreshSchedule string // cron spec; empty disables the refresher
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getEnvDuration("PRICE_TIMEOUT", 8*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("PRICE_CACHE_TTL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getEnvDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("PRICE_FETCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stock_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Session: SessionConfig{
			Key: os.Getenv("SESSION_KEY"),
			TTL: sessionTTL,
		},
		PriceFeed: PriceFeedConfig{
			Provider:        getEnv("PRICE_PROVIDER", "stockprices"),
			BaseURL:         os.Getenv("PRICE_BASE_URL"),
			Timeout:         timeout,
			CacheTTL:        cacheTTL,
			Concurrency:     concurrency,
			RefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "@every 5m"),
		},
	}

	if config.PriceFeed.Concurrency < 1 {
		return nil, fmt.Errorf("PRICE_FETCH_CONCURRENCY must be at least 1, got %d", config.PriceFeed.Concurrency)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Package config loads process configuration from the environment (with an
// optional .env file) and tunables from an optional YAML policy file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// HTTP
	Port string

	// Logging
	LogLevel  string
	LogFormat string

	// Cache: redis, memory or none
	CacheBackend  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Storage: sqlite, postgres or memory
	StorageDriver string
	SQLitePath    string
	PostgresDSN   string

	// Providers
	ProviderTimeout    time.Duration
	ProviderMaxRetries int
	StaticProviders    bool
	StaticMinLatency   time.Duration
	StaticMaxLatency   time.Duration
	StaticFailureRate  float64

	AmadeusBaseURL      string
	AmadeusClientID     string
	AmadeusClientSecret string

	// Collector
	CollectorSchedule string

	PolicyPath string
	Policy     Policy
}

// Load reads configuration from environment variables with fallback to .env.
// Priority order: environment > .env file > defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/fareradar.db"),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),

		ProviderTimeout:    getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ProviderMaxRetries: getEnvInt("PROVIDER_MAX_RETRIES", 2),
		StaticProviders:    getEnvBool("STATIC_PROVIDERS", true),
		StaticMinLatency:   getEnvDuration("STATIC_MIN_LATENCY", 50*time.Millisecond),
		StaticMaxLatency:   getEnvDuration("STATIC_MAX_LATENCY", 250*time.Millisecond),
		StaticFailureRate:  getEnvFloat("STATIC_FAILURE_RATE", 0),

		AmadeusBaseURL:      getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusClientID:     getEnv("AMADEUS_CLIENT_ID", ""),
		AmadeusClientSecret: getEnv("AMADEUS_CLIENT_SECRET", ""),

		CollectorSchedule: getEnv("COLLECTOR_SCHEDULE", "@every 6h"),

		PolicyPath: getEnv("POLICY_FILE", ""),
	}

	policy, err := LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("CACHE_BACKEND must be redis, memory or none, got %q", c.CacheBackend)
	}

	switch c.StorageDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be sqlite, postgres or memory, got %q", c.StorageDriver)
	}

	if c.StaticFailureRate < 0 || c.StaticFailureRate > 1 {
		return fmt.Errorf("STATIC_FAILURE_RATE must be between 0 and 1")
	}
	if c.StaticMaxLatency < c.StaticMinLatency {
		return fmt.Errorf("STATIC_MAX_LATENCY must not be below STATIC_MIN_LATENCY")
	}
	if !c.StaticProviders && !c.AmadeusEnabled() {
		return fmt.Errorf("no providers configured: enable STATIC_PROVIDERS or set Amadeus credentials")
	}

	return c.Policy.Validate()
}

func (c *Config) AmadeusEnabled() bool {
	return c.AmadeusClientID != "" && c.AmadeusClientSecret != ""
}

// MaskedAmadeusSecret returns the client secret with most characters hidden for logging.
func (c *Config) MaskedAmadeusSecret() string {
	return maskSecret(c.AmadeusClientSecret)
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

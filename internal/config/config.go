package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service configuration read from the environment.
// cmd/* load .env through godotenv before calling Load.
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	LogFile     string
	CORSOrigins []string

	Database  DatabaseConfig
	Redis     RedisConfig
	Search    SearchConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Auth      AuthConfig
	Feed      FeedConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// SearchConfig points at the Elasticsearch cluster holding the tag index.
type SearchConfig struct {
	URL string
}

// Enabled reports whether an Elasticsearch URL was configured.
func (s SearchConfig) Enabled() bool {
	return s.URL != ""
}

type StorageConfig struct {
	Bucket  string
	Region  string
	BaseURL string
	// PresignTTL applies when no public BaseURL is configured.
	PresignTTL time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SamplingRate float64
}

type AuthConfig struct {
	JWTSecret       string
	TrustUserHeader bool
}

// FeedConfig carries the tunable feed policy.
type FeedConfig struct {
	BatchSize              int
	MaxBatchSize           int
	OverfetchMultiplier    int
	PersonalizedMultiplier int
	TrendingEvery          int
	QueryExclude           int
	MaxSessionExclude      int
	SessionTTL             time.Duration
	LockTTL                time.Duration
	ViewWorkers            int
	ViewQueueSize          int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Port:        getEnvOrDefault("PORT", "8787"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "clipfeed.log"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		Database: DatabaseConfig{
			Driver:   getEnvOrDefault("DB_DRIVER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvOrDefault("DB_NAME", "clipfeed"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Search: SearchConfig{
			URL: os.Getenv("ELASTICSEARCH_URL"),
		},
		Storage: StorageConfig{
			Bucket:     os.Getenv("S3_BUCKET"),
			Region:     getEnvOrDefault("AWS_REGION", "us-east-1"),
			BaseURL:    os.Getenv("CDN_BASE_URL"),
			PresignTTL: getDurationOrDefault("S3_PRESIGN_TTL", time.Hour),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolOrDefault("OTEL_ENABLED", false),
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "clipfeed"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SamplingRate: getFloatOrDefault("OTEL_SAMPLING_RATE", 1.0),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TrustUserHeader: getBoolOrDefault("TRUST_USER_HEADER", false),
		},
		Feed: FeedConfig{
			BatchSize:              getIntOrDefault("FEED_BATCH_SIZE", 3),
			MaxBatchSize:           getIntOrDefault("FEED_MAX_BATCH_SIZE", 20),
			OverfetchMultiplier:    getIntOrDefault("FEED_OVERFETCH_MULTIPLIER", 6),
			PersonalizedMultiplier: getIntOrDefault("FEED_PERSONALIZED_MULTIPLIER", 2),
			TrendingEvery:          getIntOrDefault("FEED_TRENDING_EVERY", 4),
			QueryExclude:           getIntOrDefault("FEED_QUERY_EXCLUDE", 1000),
			MaxSessionExclude:      getIntOrDefault("FEED_MAX_SESSION_EXCLUDE", 20000),
			SessionTTL:             getDurationOrDefault("FEED_SESSION_TTL", 30*time.Minute),
			LockTTL:                getDurationOrDefault("FEED_LOCK_TTL", 10*time.Second),
			ViewWorkers:            getIntOrDefault("VIEW_WORKERS", 4),
			ViewQueueSize:          getIntOrDefault("VIEW_QUEUE_SIZE", 1024),
		},
		RateLimit: RateLimitConfig{
			Requests: getIntOrDefault("RATE_LIMIT_REQUESTS", 120),
			Window:   getDurationOrDefault("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the feed cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}

	f := c.Feed
	if f.BatchSize < 1 || f.MaxBatchSize < f.BatchSize {
		return fmt.Errorf("FEED_BATCH_SIZE must be between 1 and FEED_MAX_BATCH_SIZE")
	}
	if f.OverfetchMultiplier < 1 || f.PersonalizedMultiplier < 1 {
		return fmt.Errorf("feed multipliers must be at least 1")
	}
	if f.TrendingEvery < 0 {
		return fmt.Errorf("FEED_TRENDING_EVERY must not be negative")
	}
	if f.QueryExclude < 0 || f.MaxSessionExclude < 0 {
		return fmt.Errorf("FEED_QUERY_EXCLUDE and FEED_MAX_SESSION_EXCLUDE must not be negative")
	}
	if f.ViewWorkers < 1 || f.ViewQueueSize < 1 {
		return fmt.Errorf("VIEW_WORKERS and VIEW_QUEUE_SIZE must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

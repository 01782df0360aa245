package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nflstats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nflstats"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
	DatabaseSchema   string `envconfig:"DATABASE_SCHEMA" default:"nfl"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"25"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Feeds
	FeedsFile     string        `envconfig:"FEEDS_FILE" default:"configs/feeds.yaml"`
	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT" default:"2m"`
	FetchRetries  int           `envconfig:"FETCH_RETRIES" default:"3"`
	DownloadDir   string        `envconfig:"DOWNLOAD_DIR" default:""`
	FetchParallel int           `envconfig:"FETCH_PARALLEL" default:"4"`

	// Ingestion
	IngestFamilies []string      `envconfig:"INGEST_FAMILIES" default:""`
	IngestWorkers  int           `envconfig:"INGEST_WORKERS" default:"0"`
	AutoMigrate    bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	RunLockTTL     time.Duration `envconfig:"RUN_LOCK_TTL" default:"2h"`

	// Scheduler
	EnableScheduler     bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled  bool          `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	IngestCron          string        `envconfig:"INGEST_CRON" default:"0 6 * * *"`
	PoolMetricsInterval time.Duration `envconfig:"POOL_METRICS_INTERVAL" default:"15s"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be at least 1")
	}

	if c.IngestWorkers < 0 {
		return fmt.Errorf("INGEST_WORKERS must not be negative")
	}

	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative")
	}

	if c.FetchParallel < 1 {
		return fmt.Errorf("FETCH_PARALLEL must be at least 1")
	}

	if c.EnableScheduler && strings.TrimSpace(c.IngestCron) == "" {
		return fmt.Errorf("INGEST_CRON is required when the scheduler is enabled")
	}

	return nil
}

// Workers returns the row worker pool size. It defaults to the database
// pool size so workers never queue on connections.
func (c *Config) Workers() int {
	if c.IngestWorkers > 0 {
		return c.IngestWorkers
	}
	return int(c.DatabaseMaxConns)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

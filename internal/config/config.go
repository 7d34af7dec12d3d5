// Package config provides server configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	// LogLevel is the logging level ("debug", "info", "warn", "error").
	LogLevel string
	// LogFormat selects the slog handler, "text" or "json".
	LogFormat string

	// CacheMaxEntries bounds the result cache.
	CacheMaxEntries int
	// CacheTTL is how long computed results stay cached.
	CacheTTL time.Duration

	// BatchConcurrency caps parallel validations in a batch request.
	BatchConcurrency int
	// MaxBatchSize is the largest accepted batch.
	MaxBatchSize int

	// HTTPAddr enables the streamable HTTP transport when non-empty.
	HTTPAddr string
	// RateLimit is the per-client request budget per minute in HTTP mode, 0 disables it.
	RateLimit int
	// MaxBodySize caps HTTP request bodies in bytes.
	MaxBodySize int64

	// TracingEnabled turns on OpenTelemetry tracing.
	TracingEnabled bool
	// OTLPEndpoint sends spans over OTLP HTTP when set; stdout is used otherwise.
	OTLPEndpoint string
	// TracingSampleRate is the fraction of traces kept.
	TracingSampleRate float64
	// Environment is reported as the deployment.environment resource attribute.
	Environment string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		// Logging
		LogLevel:  strings.ToLower(env.GetString("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(env.GetString("LOG_FORMAT", "text")),

		// Cache
		CacheMaxEntries: env.GetInt("CACHE_MAX_ENTRIES", 1000),
		CacheTTL:        env.GetDuration("CACHE_TTL_SECONDS", 600, time.Second),

		// Batch validation
		BatchConcurrency: env.GetInt("BATCH_CONCURRENCY", 8),
		MaxBatchSize:     env.GetInt("MAX_BATCH_SIZE", 500),

		// HTTP transport
		HTTPAddr:    env.GetString("HTTP_ADDR", ""),
		RateLimit:   env.GetInt("RATE_LIMIT_PER_MINUTE", 120),
		MaxBodySize: int64(env.GetInt("MAX_BODY_SIZE", 1<<20)),

		// Tracing
		TracingEnabled:    env.GetBool("OTEL_TRACING_ENABLED", false),
		OTLPEndpoint:      env.GetString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TracingSampleRate: env.GetFloat64("OTEL_TRACES_SAMPLER_ARG", 1.0),
		Environment:       env.GetString("OTEL_ENVIRONMENT", "development"),
	}
}

// loadDotEnv searches for a .env file from the current directory up to the
// root and loads the first one found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

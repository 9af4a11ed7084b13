package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Poller    PollerConfig
	Store     StoreConfig
	Webhook   WebhookConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BackendConfig controls how the gateway reaches the scraping backend.
type BackendConfig struct {
	// BaseURL is the backend API base, e.g. "http://localhost:8000".
	BaseURL string

	// RequestTimeout is the deadline for a single proxied or job call.
	RequestTimeout time.Duration // default: 30s
}

// PollerConfig controls job progress polling.
type PollerConfig struct {
	// Interval between progress fetches.
	Interval time.Duration // default: 500ms

	// MaxConsecutiveFailures is how many back-to-back failed progress
	// fetches are tolerated before the job is reported unreachable.
	// A single failed tick is swallowed; only the backend's own
	// "failed" phase or this ceiling ends polling with a failure.
	MaxConsecutiveFailures int // default: 30

	// MaxPollDuration caps total polling time for one job.
	MaxPollDuration time.Duration // default: 15m
}

// StoreConfig controls the finished-job store.
type StoreConfig struct {
	// MaxEntries is the maximum number of retained finished jobs.
	MaxEntries int // default: 1000
}

// WebhookConfig controls downstream push on job completion.
// Delivery is disabled when URL is empty.
type WebhookConfig struct {
	URL    string
	Secret string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per session/IP.
	RequestsPerSecond float64 // default: 10

	// Burst is the maximum burst size per session/IP.
	Burst int // default: 20
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCRAPPY_HOST", "0.0.0.0"),
			Port: envIntOr("SCRAPPY_PORT", 8080),
			Mode: envOr("SCRAPPY_MODE", "release"),
		},
		Backend: BackendConfig{
			BaseURL:        envOr("SCRAPPY_BACKEND_URL", "http://localhost:8000"),
			RequestTimeout: envDurationOr("SCRAPPY_BACKEND_TIMEOUT", 30*time.Second),
		},
		Poller: PollerConfig{
			Interval:               envDurationOr("SCRAPPY_POLL_INTERVAL", 500*time.Millisecond),
			MaxConsecutiveFailures: envIntOr("SCRAPPY_POLL_MAX_FAILURES", 30),
			MaxPollDuration:        envDurationOr("SCRAPPY_POLL_MAX_DURATION", 15*time.Minute),
		},
		Store: StoreConfig{
			MaxEntries: envIntOr("SCRAPPY_STORE_MAX_ENTRIES", 1000),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("SCRAPPY_WEBHOOK_URL"),
			Secret: os.Getenv("SCRAPPY_WEBHOOK_SECRET"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCRAPPY_RATE_RPS", 10.0),
			Burst:             envIntOr("SCRAPPY_RATE_BURST", 20),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPPY_LOG_LEVEL", "info"),
			Format: envOr("SCRAPPY_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

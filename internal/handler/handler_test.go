package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shortlink/shortlink/internal/cache"
	"github.com/shortlink/shortlink/internal/clickqueue"
	"github.com/shortlink/shortlink/internal/handler/dto"
	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/middleware"
	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/service"
	"github.com/shortlink/shortlink/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

// testEnv wires a full router backed entirely by in-memory stores, a
// null cache, and a running click queue, mirroring what cmd/api wires
// against Postgres and Redis in production.
type testEnv struct {
	router  http.Handler
	domains *service.DomainService
	links   *service.LinkService
	auth    *service.AuthService
	domain  *model.Domain
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	domainStore := memory.NewDomainStore()
	linkStore := memory.NewLinkStore()
	clickStore := memory.NewClickStore()
	tokenStore := memory.NewTokenStore()

	m := metrics.New()
	q := clickqueue.New(clickqueue.DefaultConfig(), clickStore, testLogger(), m)
	q.Start(context.Background())
	t.Cleanup(func() { _ = q.Drain(context.Background()) })

	domainSvc := service.NewDomainService(domainStore)
	linkSvc := service.NewLinkService(linkStore, domainStore, cache.NewNull(), q, m, service.Config{})
	statsSvc := service.NewStatsService(linkStore, clickStore)
	authSvc := service.NewAuthService(tokenStore, "test-signing-secret", testLogger())

	domain, err := domainSvc.Create(context.Background(), "example.com", true, "")
	if err != nil {
		t.Fatalf("create default domain: %v", err)
	}

	router := NewRouter(Deps{
		Links:       linkSvc,
		Domains:     domainSvc,
		Stats:       statsSvc,
		Auth:        authSvc,
		Metrics:     m,
		StorePinger: noopPinger{},
		CachePinger: noopPinger{},
		Logger:      testLogger(),
		Scheme:      "https",
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
		RateLimit:   middleware.RateLimitConfig{Enabled: false},
	})

	return &testEnv{router: router, domains: domainSvc, links: linkSvc, auth: authSvc, domain: domain}
}

func (e *testEnv) issueToken(t *testing.T) string {
	t.Helper()
	raw, _, err := e.auth.Issue(context.Background(), "test-token")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

func (e *testEnv) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth_Healthy(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMetrics_Exposed(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRedirect_UnknownCodeNotFound(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/some-code", nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown code", rec.Code)
	}
}

func TestRedirect_UnknownHostGone(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/some-code", nil)
	req.Host = "unregistered.example"
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410 for an unregistered host", rec.Code)
	}
}

func TestShorten_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/shorten", `{"items":[{"url":"https://example.org"}]}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestShortenAndRedirect_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	rec := env.do(t, http.MethodPost, "/api/shorten", `{"items":[{"url":"https://example.org/path"}]}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	var created dto.CreateLinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if len(created.Results) != 1 || created.Results[0].Error != nil {
		t.Fatalf("unexpected create result: %+v", created.Results)
	}
	code := created.Results[0].Code

	redirectReq := httptest.NewRequest(http.MethodGet, "/"+code, nil)
	redirectReq.Host = "example.com"
	redirectRec := httptest.NewRecorder()
	env.router.ServeHTTP(redirectRec, redirectReq)

	if redirectRec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("redirect status = %d, want 307", redirectRec.Code)
	}
	if loc := redirectRec.Header().Get("Location"); loc != "https://example.org/path" {
		t.Fatalf("Location = %q, want https://example.org/path", loc)
	}

	statsRec := env.do(t, http.MethodGet, "/api/stats/"+code, "", token)
	if statsRec.Code != http.StatusOK {
		t.Fatalf("stats status = %d: %s", statsRec.Code, statsRec.Body.String())
	}
}

func TestPatchLink_NotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)
	rec := env.do(t, http.MethodPatch, "/api/links/does-not-exist", `{"permanent":true}`, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDomainsList_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/domains", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestDomainsList_ReturnsDefaultDomain(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)
	rec := env.do(t, http.MethodGet, "/api/domains", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp dto.DomainListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "example.com" {
		t.Fatalf("unexpected domains: %+v", resp.Data)
	}
}

func TestCreateDomain_DuplicateNameConflict(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	first := env.do(t, http.MethodPost, "/api/domains", `{"name":"other.example"}`, token)
	if first.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", first.Code, first.Body.String())
	}

	second := env.do(t, http.MethodPost, "/api/domains", `{"name":"other.example"}`, token)
	if second.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", second.Code)
	}
}

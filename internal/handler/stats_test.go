package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatsSummary_InvalidPageRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats?page=0", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStatsSummary_InvalidPageSizeRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats?page_size=10000", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStatsHistory_UnknownCodeNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	rec := env.do(t, http.MethodGet, "/api/stats/does-not-exist", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitIP_Disabled(t *testing.T) {
	mw := RateLimitIP(RateLimitConfig{Enabled: false, Logger: testLogger()})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 while disabled", i, rec.Code)
		}
	}
}

func TestRateLimitIP_RejectsBurstOverflow(t *testing.T) {
	mw := RateLimitIP(RateLimitConfig{Enabled: true, RPS: 1, Burst: 2, Logger: testLogger()})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("final request status = %d, want 429 after exceeding burst", lastCode)
	}
}

func TestRateLimitIP_SeparateIPsTrackedIndependently(t *testing.T) {
	mw := RateLimitIP(RateLimitConfig{Enabled: true, RPS: 1, Burst: 1, Logger: testLogger()})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/abc", nil)
	req1.RemoteAddr = "10.0.0.3:1111"
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)

	req2 := httptest.NewRequest(http.MethodGet, "/abc", nil)
	req2.RemoteAddr = "10.0.0.4:2222"
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)

	if rec1.Code != http.StatusOK || rec2.Code != http.StatusOK {
		t.Fatalf("expected both distinct IPs' first request to pass, got %d and %d", rec1.Code, rec2.Code)
	}
}

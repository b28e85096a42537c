package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/auth"
	"github.com/shortlink/shortlink/internal/model"
)

type fakeAuthenticator struct {
	token *model.ApiToken
	err   error
}

func (f *fakeAuthenticator) Authenticate(context.Context, string) (*model.ApiToken, error) {
	return f.token, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth_MissingHeaderRejected(t *testing.T) {
	mw := Auth(&fakeAuthenticator{}, testLogger())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_InvalidTokenRejected(t *testing.T) {
	mw := Auth(&fakeAuthenticator{err: apperr.ErrUnauthorized}, testLogger())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_ValidTokenAttachesContext(t *testing.T) {
	token := &model.ApiToken{ID: "tok-1", Name: "ci-bot"}
	mw := Auth(&fakeAuthenticator{token: token}, testLogger())

	var gotToken *model.ApiToken
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = auth.TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.Header.Set("Authorization", "Bearer a-valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotToken == nil || gotToken.ID != "tok-1" {
		t.Fatalf("expected token tok-1 in context, got %+v", gotToken)
	}
}

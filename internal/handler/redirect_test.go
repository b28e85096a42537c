package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shortlink/shortlink/internal/handler/dto"
)

func TestRedirect_PermanentLinkReturns301(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	rec := env.do(t, http.MethodPost, "/api/shorten",
		`{"items":[{"url":"https://example.org/perm","permanent":true}]}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created dto.CreateLinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	code := created.Results[0].Code

	req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
	req.Host = "example.com"
	redirectRec := httptest.NewRecorder()
	env.router.ServeHTTP(redirectRec, req)

	if redirectRec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", redirectRec.Code)
	}
}

func TestRedirect_DeletedLinkReturns410(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t)

	rec := env.do(t, http.MethodPost, "/api/shorten", `{"items":[{"url":"https://example.org/gone"}]}`, token)
	var created dto.CreateLinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	code := created.Results[0].Code

	del := env.do(t, http.MethodDelete, "/api/links/"+code, "", token)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", del.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
	req.Host = "example.com"
	redirectRec := httptest.NewRecorder()
	env.router.ServeHTTP(redirectRec, req)

	if redirectRec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", redirectRec.Code)
	}
}

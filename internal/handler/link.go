package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/handler/dto"
	"github.com/shortlink/shortlink/internal/service"
)

// LinkHandler serves the link mutation routes: POST /api/shorten,
// PATCH /api/links/{code}, DELETE /api/links/{code}.
type LinkHandler struct {
	links   *service.LinkService
	domains *service.DomainService
	logger  *slog.Logger
	scheme  string
}

func NewLinkHandler(links *service.LinkService, domains *service.DomainService, logger *slog.Logger, scheme string) *LinkHandler {
	return &LinkHandler{links: links, domains: domains, logger: logger, scheme: scheme}
}

// Create handles POST /api/shorten. Each item in the batch succeeds or
// fails independently; once a non-empty batch is decoded the response
// is 200 with a per-item result, per spec §4.3. A malformed body or an
// empty items list is rejected with 400.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.New(apperr.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Items) == 0 {
		writeError(w, apperr.New(apperr.CodeBadRequest, "items must not be empty"))
		return
	}

	items := make([]service.CreateItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateItem{
			URL:        it.URL,
			Domain:     it.Domain,
			CustomCode: it.CustomCode,
			ExpiresAt:  it.ExpiresAt,
			Permanent:  it.Permanent,
		}
	}

	results := h.links.CreateBatch(r.Context(), items, h.scheme)
	resp := dto.CreateLinkResponse{Results: make([]dto.CreateLinkResult, len(results))}
	for i, r := range results {
		resp.Results[i] = dto.ToCreateLinkResult(r)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Patch handles PATCH /api/links/{code}. The link's domain defaults to
// the current default domain; an explicit ?domain= query parameter
// scopes the lookup to a different one.
func (h *LinkHandler) Patch(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	domain, err := h.domains.ResolveName(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.PatchLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.New(apperr.CodeBadRequest, "invalid request body"))
		return
	}

	link, err := h.links.Patch(r.Context(), domain.ID, code, service.PatchInput{
		URL:            req.URL,
		ExpiresAt:      req.ExpiresAt,
		ClearExpiresAt: req.ClearExpiresAt,
		Permanent:      req.Permanent,
		Restore:        req.Restore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link))
}

// Delete handles DELETE /api/links/{code}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	domain, err := h.domains.ResolveName(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.links.Delete(r.Context(), domain.ID, code); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

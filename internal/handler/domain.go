package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/handler/dto"
	"github.com/shortlink/shortlink/internal/service"
)

// DomainHandler serves the /api/domains routes.
type DomainHandler struct {
	domains *service.DomainService
}

func NewDomainHandler(domains *service.DomainService) *DomainHandler {
	return &DomainHandler{domains: domains}
}

// List handles GET /api/domains.
func (h *DomainHandler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domains.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := dto.DomainListResponse{Data: make([]dto.DomainResponse, len(domains))}
	for i, d := range domains {
		resp.Data[i] = dto.ToDomainResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/domains.
func (h *DomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDomainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.New(apperr.CodeBadRequest, "invalid request body"))
		return
	}

	domain, err := h.domains.Create(r.Context(), req.Name, req.IsDefault, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToDomainResponse(domain))
}

// Patch handles PATCH /api/domains/{id}.
func (h *DomainHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.PatchDomainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.New(apperr.CodeBadRequest, "invalid request body"))
		return
	}

	domain, err := h.domains.Patch(r.Context(), id, service.PatchDomainInput{
		Name:             req.Name,
		IsActive:         req.IsActive,
		IsDefault:        req.IsDefault,
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToDomainResponse(domain))
}

// Delete handles DELETE /api/domains/{id}.
func (h *DomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.domains.SoftDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeBadRequest, "invalid domain id")
	}
	return id, nil
}

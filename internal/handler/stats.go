package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/handler/dto"
	"github.com/shortlink/shortlink/internal/service"
	"github.com/shortlink/shortlink/internal/store"
)

const (
	defaultPageSize = 25
	maxPageSize     = 1000
)

// StatsHandler serves GET /api/stats and GET /api/stats/{code}.
type StatsHandler struct {
	stats   *service.StatsService
	domains *service.DomainService
}

func NewStatsHandler(stats *service.StatsService, domains *service.DomainService) *StatsHandler {
	return &StatsHandler{stats: stats, domains: domains}
}

// Summary handles GET /api/stats.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePaging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	createdAfter, createdBefore, err := parseTimeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filter := store.LinkFilter{Page: page, PageSize: pageSize, CreatedAfter: createdAfter, CreatedBefore: createdBefore}
	if name := r.URL.Query().Get("domain"); name != "" {
		domain, err := h.domains.ResolveName(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.DomainID = &domain.ID
	}

	stats, total, err := h.stats.Summary(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := dto.StatsListResponse{Data: make([]dto.LinkStatsResponse, len(stats)), Total: total, Page: page}
	for i, s := range stats {
		resp.Data[i] = dto.ToLinkStatsResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/stats/{code}.
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	domain, err := h.domains.ResolveName(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, err)
		return
	}

	page, pageSize, err := parsePaging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, to, err := parseTimeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	clicks, total, err := h.stats.History(r.Context(), domain.ID, code, store.ClickFilter{Page: page, PageSize: pageSize, From: from, To: to})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := dto.ClickHistoryResponse{Data: make([]dto.ClickResponse, len(clicks)), Total: total, Page: page}
	for i, c := range clicks {
		resp.Data[i] = dto.ToClickResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func parsePaging(r *http.Request) (page, pageSize int, err error) {
	page = 1
	pageSize = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, apperr.New(apperr.CodeBadRequest, "page must be a positive integer")
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		pageSize, err = strconv.Atoi(v)
		if err != nil || pageSize < 1 || pageSize > maxPageSize {
			return 0, 0, apperr.New(apperr.CodeBadRequest, "page_size must be between 1 and 1000")
		}
	}
	return page, pageSize, nil
}

func parseTimeRange(r *http.Request) (from, to *time.Time, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, apperr.New(apperr.CodeBadRequest, "from must be RFC3339")
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, apperr.New(apperr.CodeBadRequest, "to must be RFC3339")
		}
		to = &t
	}
	return from, to, nil
}

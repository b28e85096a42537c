package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shortlink/shortlink/internal/store"
)

// HealthHandler serves the single aggregate GET /health endpoint: 200
// when every dependency answers, 503 otherwise.
type HealthHandler struct {
	store store.Pinger
	cache store.Pinger
}

func NewHealthHandler(db, cache store.Pinger) *HealthHandler {
	return &HealthHandler{store: db, cache: cache}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, 2)
	healthy := true

	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	resp := healthResponse{Status: "healthy", Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}

package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shortlink/shortlink/internal/metrics"
)

// NewMetricsHandler returns the GET /metrics handler, a thin wrapper
// around the Prometheus exposition format for m's registry.
func NewMetricsHandler(m *metrics.Metrics) http.Handler {
	return promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})
}

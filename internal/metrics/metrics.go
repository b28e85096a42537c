// Package metrics exposes Prometheus-compatible counters, gauges, and
// histograms for the redirect hot path, the click pipeline, and the
// store/cache layers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the service registers. It's passed
// by pointer to every component that needs to record something; a nil
// *Metrics is never passed around — callers get a real instance from
// New, which always registers against its own dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	RedirectRequests *prometheus.CounterVec
	RedirectDuration prometheus.Histogram
	CacheOutcomes    *prometheus.CounterVec
	DatabaseErrors   *prometheus.CounterVec

	ClickReceived   prometheus.Counter
	ClickProcessed  prometheus.Counter
	ClickFailed     prometheus.Counter
	ClickRetried    prometheus.Counter
	ClickDropped    prometheus.Counter
	ClickQueueDepth prometheus.Gauge
}

// New creates a fresh registry and registers every collector against
// it. Using a dedicated registry (rather than prometheus's global
// default) keeps repeated construction in tests collision-free.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RedirectRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_redirect_requests_total",
			Help: "Redirect lookups by outcome (hit, hit_gone, hit_missing, miss).",
		}, []string{"outcome"}),
		RedirectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shortlink_redirect_duration_seconds",
			Help:    "Latency of the redirect resolution hot path.",
			Buckets: prometheus.DefBuckets,
		}),
		CacheOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_cache_outcomes_total",
			Help: "Cache lookups by outcome (hit, hit_gone, hit_missing, miss).",
		}, []string{"outcome"}),
		DatabaseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Store errors by operation type.",
		}, []string{"type"}),
		ClickReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "click_worker_received_total",
			Help: "Click events enqueued for async processing.",
		}),
		ClickProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "click_worker_processed_total",
			Help: "Click events successfully persisted.",
		}),
		ClickFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "click_worker_failed_total",
			Help: "Click events dropped after a non-retryable store error or after exhausting retries.",
		}),
		ClickRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "click_worker_retried_total",
			Help: "Click event processing attempts that failed and were retried.",
		}),
		ClickDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "click_worker_dropped_total",
			Help: "Click events dropped because the queue was full.",
		}),
		ClickQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "click_worker_queue_depth",
			Help: "Current number of buffered click events awaiting a worker.",
		}),
	}

	reg.MustRegister(
		m.RedirectRequests, m.RedirectDuration, m.CacheOutcomes, m.DatabaseErrors,
		m.ClickReceived, m.ClickProcessed, m.ClickFailed, m.ClickRetried,
		m.ClickDropped, m.ClickQueueDepth,
	)

	return m
}

// Registry returns the registry collectors were registered against,
// for wiring into promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRedirect records a redirect lookup outcome and its latency.
func (m *Metrics) ObserveRedirect(outcome string, d time.Duration) {
	m.RedirectRequests.WithLabelValues(outcome).Inc()
	m.RedirectDuration.Observe(d.Seconds())
}

// ObserveCache records a cache lookup outcome.
func (m *Metrics) ObserveCache(outcome string) {
	m.CacheOutcomes.WithLabelValues(outcome).Inc()
}

// IncDatabaseError records a store-layer failure by operation type.
func (m *Metrics) IncDatabaseError(opType string) {
	m.DatabaseErrors.WithLabelValues(opType).Inc()
}

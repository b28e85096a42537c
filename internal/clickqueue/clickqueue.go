// Package clickqueue implements the bounded in-process click recording
// pipeline (C8). Click events are enqueued from the redirect hot path
// over a buffered channel and drained by a fixed pool of workers that
// persist them to the store with bounded exponential-backoff retry.
//
// This supersedes the Redis-Streams consumer-group pipeline such
// systems often use for the same purpose: a single-process deployment
// has no need for a durable cross-process queue, and an in-process
// channel removes an entire network hop and operational dependency
// from the hot path's write-behind story. The retry/backoff/metrics
// shape below is carried over from that style of pipeline; only the
// transport changed.
package clickqueue

import (
	"context"
	"crypto/rand"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/model"
)

// Recorder is the persistence dependency a worker needs. It is
// satisfied by store.ClickStore, kept as a narrow local interface so
// this package doesn't import internal/store.
type Recorder interface {
	Insert(ctx context.Context, click *model.Click) error
}

// Config controls queue capacity, worker count, and retry behavior.
type Config struct {
	Capacity         int
	Workers          int
	MaxAttempts      int
	RetryBaseDelay   time.Duration
	MaxRetryDelay    time.Duration
	ShutdownDeadline time.Duration
}

// DefaultConfig mirrors the defaults config.Load falls back to when the
// corresponding env vars are unset.
func DefaultConfig() Config {
	return Config{
		Capacity:         10000,
		Workers:          4,
		MaxAttempts:      5,
		RetryBaseDelay:   100 * time.Millisecond,
		MaxRetryDelay:    5 * time.Second,
		ShutdownDeadline: 30 * time.Second,
	}
}

// Queue is the bounded click-recording pipeline.
type Queue struct {
	cfg     Config
	store   Recorder
	logger  *slog.Logger
	metrics *metrics.Metrics

	ch chan *model.ClickEvent
	wg sync.WaitGroup

	closeOnce sync.Once
}

// New constructs a Queue. Start must be called to spin up workers.
func New(cfg Config, store Recorder, logger *slog.Logger, m *metrics.Metrics) *Queue {
	return &Queue{
		cfg:     cfg,
		store:   store,
		logger:  logger.With("component", "clickqueue"),
		metrics: m,
		ch:      make(chan *model.ClickEvent, cfg.Capacity),
	}
}

// Start launches the worker pool. Workers run until Drain closes the
// channel and the buffer is empty; cancelling ctx cuts short the
// current event's insert and retry wait but does not stop a worker.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.runWorker(ctx, i)
	}
}

// Enqueue submits a click event without blocking. If the channel is
// full the event is dropped and counted — the redirect response never
// waits on click recording.
func (q *Queue) Enqueue(event *model.ClickEvent) {
	q.metrics.ClickReceived.Inc()
	select {
	case q.ch <- event:
		q.metrics.ClickQueueDepth.Set(float64(len(q.ch)))
	default:
		q.metrics.ClickDropped.Inc()
		q.logger.Warn("click queue full, dropping event", "link_id", event.LinkID)
	}
}

// Drain closes the enqueue channel and waits for workers to finish
// whatever is already buffered, bounded by the configured shutdown
// deadline or ctx, whichever elapses first.
func (q *Queue) Drain(ctx context.Context) error {
	q.closeOnce.Do(func() { close(q.ch) })

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	deadline := q.cfg.ShutdownDeadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) runWorker(ctx context.Context, id int) {
	defer q.wg.Done()
	for event := range q.ch {
		q.metrics.ClickQueueDepth.Set(float64(len(q.ch)))
		q.processWithRetry(ctx, event)
	}
}

func (q *Queue) processWithRetry(ctx context.Context, event *model.ClickEvent) {
	maxAttempts := q.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	click := &model.Click{
		ID:        newClickID(event.ClickedAt),
		LinkID:    event.LinkID,
		ClickedAt: event.ClickedAt,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Referer:   event.Referer,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := q.store.Insert(ctx, click)
		if err == nil {
			q.metrics.ClickProcessed.Inc()
			return
		}

		event.AttemptCount = attempt
		q.metrics.IncDatabaseError("click_insert")

		// A non-retryable error (constraint violation: the link was
		// hard-deleted, the click row is malformed) will fail the same
		// way on every attempt. Drop it immediately instead of burning
		// the retry budget and sleeping through the backoff.
		if apperr.Permanent(err) {
			q.metrics.ClickFailed.Inc()
			q.logger.Error("click event dropped: non-retryable store error",
				"link_id", event.LinkID, "attempt", attempt, "error", err)
			return
		}

		if attempt == maxAttempts {
			q.metrics.ClickFailed.Inc()
			q.logger.Error("click event dropped after exhausting retries",
				"link_id", event.LinkID, "attempts", attempt, "error", err)
			return
		}

		q.metrics.ClickRetried.Inc()
		delay := backoff(q.cfg.RetryBaseDelay, q.cfg.MaxRetryDelay, attempt)
		q.logger.Warn("click insert failed, retrying",
			"link_id", event.LinkID, "attempt", attempt, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// backoff computes d = base * 2^(attempt-1), capped at max, and returns
// a random duration in [d/2, d], so the result never exceeds max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << uint(attempt-1)
	if max > 0 && d > max {
		d = max
	}
	jitter := time.Duration(mathrand.Int63n(int64(d)/2 + 1))
	return d/2 + jitter
}

// newClickID mints a ULID seeded from t, giving click IDs that sort by
// time like every other entity ID in the store.
func newClickID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

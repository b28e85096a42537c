package clickqueue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shortlink/shortlink/internal/metrics"
	"github.com/shortlink/shortlink/internal/model"
)

type fakeRecorder struct {
	mu        sync.Mutex
	inserted  []*model.Click
	failUntil int
	calls     int
}

func (f *fakeRecorder) Insert(_ context.Context, click *model.Click) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failUntil {
		return errors.New("transient store failure")
	}
	f.inserted = append(f.inserted, click)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueue_EnqueueAndDrain_ProcessesEvent(t *testing.T) {
	rec := &fakeRecorder{}
	cfg := DefaultConfig()
	cfg.Capacity = 10
	cfg.Workers = 2
	q := New(cfg, rec, testLogger(), metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Enqueue(&model.ClickEvent{LinkID: "link-1", ClickedAt: time.Now()})

	if err := q.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.inserted) != 1 {
		t.Fatalf("expected 1 inserted click, got %d", len(rec.inserted))
	}
	if rec.inserted[0].LinkID != "link-1" {
		t.Fatalf("unexpected link id %q", rec.inserted[0].LinkID)
	}
}

func TestQueue_DropsOnFullCapacity(t *testing.T) {
	rec := &fakeRecorder{failUntil: 1000} // never called: no worker runs in this test
	cfg := DefaultConfig()
	cfg.Capacity = 1
	cfg.Workers = 0 // no workers draining, so the single slot fills immediately
	q := New(cfg, rec, testLogger(), metrics.New())

	q.Enqueue(&model.ClickEvent{LinkID: "a"})
	q.Enqueue(&model.ClickEvent{LinkID: "b"})
	q.Enqueue(&model.ClickEvent{LinkID: "c"})

	dropped := testutil.ToFloat64(q.metrics.ClickDropped)
	if dropped < 2 {
		t.Fatalf("expected at least 2 drops, got %v", dropped)
	}
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	rec := &fakeRecorder{failUntil: 2}
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.MaxAttempts = 5
	cfg.RetryBaseDelay = time.Millisecond
	cfg.MaxRetryDelay = 5 * time.Millisecond
	q := New(cfg, rec, testLogger(), metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Enqueue(&model.ClickEvent{LinkID: "retry-me", ClickedAt: time.Now()})

	if err := q.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.inserted) != 1 {
		t.Fatalf("expected eventual success, got %d inserted, %d calls", len(rec.inserted), rec.calls)
	}
}

func TestBackoff_NeverExceedsMax(t *testing.T) {
	max := 50 * time.Millisecond
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoff(10*time.Millisecond, max, attempt)
		if d > max {
			t.Fatalf("attempt %d: backoff %v exceeded max %v", attempt, d, max)
		}
	}
}

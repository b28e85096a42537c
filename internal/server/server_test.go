package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_OnShutdown_RunsInLIFOOrder(t *testing.T) {
	srv := New(http.NotFoundHandler(), "127.0.0.1:0", time.Second, time.Second, 2*time.Second, testLogger())

	var order []string
	srv.OnShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	srv.OnShutdown("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	if err := srv.gracefulShutdown(); err != nil {
		t.Fatalf("gracefulShutdown: %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("expected LIFO order [second first], got %v", order)
	}
}

func TestServer_GracefulShutdown_ReturnsUncleanOnComponentError(t *testing.T) {
	srv := New(http.NotFoundHandler(), "127.0.0.1:0", time.Second, time.Second, 2*time.Second, testLogger())

	srv.OnShutdown("flaky", func(context.Context) error {
		return errors.New("boom")
	})

	err := srv.gracefulShutdown()
	if !errors.Is(err, ErrUncleanShutdown) {
		t.Fatalf("expected ErrUncleanShutdown, got %v", err)
	}
}

// Package logging builds the application's log/slog logger from
// config, grounded on the teacher's cmd/api/main.go initLogger/
// parseLogLevel helpers, extracted into their own package so cmd/api
// and cmd/shortlinkctl share one setup path.
package logging

import (
	"log/slog"
	"os"
)

// New builds a slog.Logger writing to stdout in the given format
// ("json" or anything else for text) at the given level
// ("debug"/"info"/"warn"/"error", default info).
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

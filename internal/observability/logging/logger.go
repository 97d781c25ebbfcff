// Package logging builds the shared slog logger used by the api, worker and
// batch entrypoints.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger writes JSON records to stdout and tags every record with the
// emitting service name so the three binaries can share one log stream.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

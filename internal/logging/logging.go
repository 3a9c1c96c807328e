// Package logging builds the process-wide structured logger. Components get
// their own child via logger.With("component", name).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a text-format slog.Logger writing to stdout. Unrecognized
// level strings fall back to info, matching the configuration default.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestNewLoggerEnabled(t *testing.T) {
	t.Parallel()

	logger := New("warn")
	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("info must be suppressed at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("warn must be enabled at warn level")
	}
}

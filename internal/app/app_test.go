package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootstrapLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("LOG_LEVEL", "warn")

	BootstrapLogger()

	h := slog.Default().Handler()
	assert.IsType(t, &slog.JSONHandler{}, h)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestSetupLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level string
		min   slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tests {
		SetupLogger(tc.level)
		h := slog.Default().Handler()
		assert.True(t, h.Enabled(context.Background(), tc.min), tc.level)
		assert.False(t, h.Enabled(context.Background(), tc.min-1), tc.level)
	}
}

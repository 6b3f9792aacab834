package logging

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_WritesEntityLine(t *testing.T) {
	// Setup
	dir := t.TempDir()
	logger := New(dir, slog.LevelInfo)
	logger.now = func() time.Time { return time.Date(2025, 12, 30, 9, 32, 51, 0, time.UTC) }
	defer func() { _ = logger.Close() }()

	// Execute
	logger.Info("3f2a9c1e-0000-4000-8000-000000000000", "command", "do Mark completed")
	logger.Warn("", "event", "observer failed")

	// Assert
	content, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2025-12-30 09:32:51] [INFO] [3f2a9c1e] [command] do Mark completed", lines[0])
	assert.Equal(t, "[2025-12-30 09:32:51] [WARN] [global] [event] observer failed", lines[1])
}

func TestLogger_LevelFiltering(t *testing.T) {
	// Setup
	dir := t.TempDir()
	logger := New(dir, slog.LevelWarn)
	defer func() { _ = logger.Close() }()

	// Execute
	logger.Debug("", "test", "debug message")
	logger.Info("", "test", "info message")
	logger.Error("", "test", "error message")

	// Assert
	content, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "debug message")
	assert.NotContains(t, string(content), "info message")
	assert.Contains(t, string(content), "error message")
}

func TestLogger_SetLevel(t *testing.T) {
	dir := t.TempDir()
	logger := New(dir, slog.LevelError)
	defer func() { _ = logger.Close() }()

	logger.SetLevel(slog.LevelDebug)
	logger.Debug("", "test", "now visible")

	content, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "now visible")
}

func TestLogger_Disabled(t *testing.T) {
	logger := New("", slog.LevelDebug)

	logger.Info("", "test", "nowhere")

	assert.NoError(t, logger.Close())
}

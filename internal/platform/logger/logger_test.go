package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "debug", Output: &buf})

	logger.Info("batch started", "tasks", 8)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "batch started", record["msg"])
	assert.Equal(t, float64(8), record["tasks"])
	assert.Equal(t, "INFO", record["level"])
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "warn", Output: &buf})

	logger.Info("should be filtered")
	assert.Zero(t, buf.Len())

	logger.Warn("should pass")
	assert.NotZero(t, buf.Len())
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "verbose", Output: &buf})

	logger.Debug("filtered at info")
	assert.Zero(t, buf.Len())

	logger.Info("passes at info")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", slog.LevelInfo, true},
		{"fatal", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		level, known := parseLevel(tc.name)
		assert.Equal(t, tc.want, level, "level for %q", tc.name)
		assert.Equal(t, tc.known, known, "known for %q", tc.name)
	}
}

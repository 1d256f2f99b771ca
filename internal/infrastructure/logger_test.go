package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-loop1/partial-week-converter/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLogger_FileOutput(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(defaultLogger)
		_ = CloseLogFile()
	})

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Same(t, logger, slog.Default())
}

func TestInitializeLogger_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "app.log")})
	assert.Error(t, err)
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "info", Format: "json"})

	ctx := WithTraceID(context.Background(), "req-123")
	logger.InfoContext(ctx, "with trace")
	logger.Info("without trace")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestTraceIDInjection_KeptThroughWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "info"}).With(slog.String("component", "test"))

	logger.InfoContext(WithTraceID(context.Background(), "abc"), "hello")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])
	assert.Equal(t, "test", entries[0]["component"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantLines int
	}{
		{level: "debug", wantLines: 4},
		{level: "info", wantLines: 3},
		{level: "WARN", wantLines: 2},
		{level: "error", wantLines: 1},
		{level: "unknown", wantLines: 3},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, config.LoggingConfig{Level: tt.level, Format: "json"})

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			assert.Len(t, decodeLines(t, &buf), tt.wantLines)
		})
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, config.LoggingConfig{Level: "info", Format: "text"}).Info("plain", "k", "v")

	assert.Contains(t, buf.String(), "msg=plain")
	assert.Contains(t, buf.String(), "k=v")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace ID is kept")
}

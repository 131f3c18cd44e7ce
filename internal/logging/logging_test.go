package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeeHandler_LevelsPerSink(t *testing.T) {
	var console, file bytes.Buffer
	h := teeHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	logger := slog.New(h)

	logger.Debug("detail")
	logger.Info("headline")

	assert.NotContains(t, console.String(), "detail")
	assert.Contains(t, console.String(), "headline")
	assert.Contains(t, file.String(), "detail")
	assert.Contains(t, file.String(), "headline")
}

func TestTeeHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := teeHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&buf, nil),
	}}
	logger := slog.New(h).With("run_id", "r1")

	logger.Info("msg")
	assert.Contains(t, buf.String(), "run_id=r1")
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	logger := NewWithFile(slog.LevelInfo, f)
	logger.Debug("wire detail")
	require.NoError(t, f.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Debug reaches the file even though the console level is Info.
	assert.Contains(t, string(data), "wire detail")
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	// Must not panic and must not write anywhere visible.
	logger.Info("ignored", "k", strings.Repeat("v", 3))
	logger.Error("ignored too")
}

// Package logging builds the application loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a configured application logger writing to Stderr (to keep
// Stdout free for the run summary). Common keys are standardized
// ("error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewWithFile tees the logger into a debug log file: the file captures
// everything at Debug while the console stays at the given level. The
// caller owns closing the file.
func NewWithFile(level slog.Level, f *os.File) *slog.Logger {
	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(teeHandler{handlers: []slog.Handler{console, fileHandler}})
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
)

func init() {
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Logger returns the process-wide structured logger.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger overrides the global logger (useful for tests or custom sinks).
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// Configure installs a JSON logger at the given level ("debug", "info",
// "warn", "error"; anything else falls back to info) writing to w.
func Configure(level string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	SetLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})))
}

// DiscardLogging routes logs to /dev/null while preserving structured handler semantics.
func DiscardLogging() {
	SetLogger(slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

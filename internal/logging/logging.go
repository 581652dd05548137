// Package logging provides a minimal slog-based file logger.
//
// Log lines go to a file under the config directory, never to the
// terminal: while a live display owns the screen, any stray write would
// corrupt the frame.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewTextHandler(io.Discard, nil))
	file *os.File
)

// Init opens the log file and installs a handler at the given level
// ("debug", "info", "warn", "error"). An empty path keeps logging
// discarded.
func Init(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("logging: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("logging: open log file: %w", err)
	}
	if file != nil {
		file.Close()
	}
	file = f
	base = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(level)}))
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	base = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Error(msg, args...)
}

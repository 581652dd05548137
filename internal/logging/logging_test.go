package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	if err := Init(path, "debug"); err != nil {
		t.Fatal(err)
	}
	defer Close()

	Debug("debug line", "k", "v")
	Info("info line")
	Warn("warn line")
	Error("error line", "code", 42)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"debug line", "info line", "warn line", "error line", "code=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestInitLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	if err := Init(path, "error"); err != nil {
		t.Fatal(err)
	}
	defer Close()

	Info("quiet line")
	Error("loud line")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "quiet line") {
		t.Error("info line should be filtered at error level")
	}
	if !strings.Contains(string(data), "loud line") {
		t.Error("error line should be written")
	}
}

func TestInitEmptyPathDiscards(t *testing.T) {
	if err := Init("", "info"); err != nil {
		t.Fatal(err)
	}
	// Must not panic with no file installed.
	Info("dropped")
}

func TestCloseResetsToDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := Init(path, "info"); err != nil {
		t.Fatal(err)
	}
	Close()

	// Logging after Close must not panic or write.
	Info("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "after close") {
		t.Error("nothing should be written after Close")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

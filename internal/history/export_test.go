package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func exportFixture(t *testing.T) (*Store, *Conversation) {
	t.Helper()
	s := newTestStore(t)
	conv, err := s.CreateConversation("test-model")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	s.AddMessage(conv.ID, "user", "what is a mutex?", 0)
	s.AddMessage(conv.ID, "assistant", "a mutual exclusion lock", 2*time.Second)
	return s, conv
}

func TestExportToMarkdown(t *testing.T) {
	s, conv := exportFixture(t)

	out, err := s.ExportToMarkdown(conv.ID)
	if err != nil {
		t.Fatalf("ExportToMarkdown: %v", err)
	}

	for _, want := range []string{
		"# what is a mutex?",
		"**Model:** test-model",
		"## User",
		"## Assistant",
		"a mutual exclusion lock",
		"2.0s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown export missing %q:\n%s", want, out)
		}
	}
}

func TestExportToJSON(t *testing.T) {
	s, conv := exportFixture(t)

	out, err := s.ExportToJSON(conv.ID)
	if err != nil {
		t.Fatalf("ExportToJSON: %v", err)
	}

	var round Conversation
	if err := json.Unmarshal([]byte(out), &round); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if round.ID != conv.ID || len(round.Messages) != 2 {
		t.Errorf("JSON export lost data: %+v", round)
	}
}

func TestExportMissingConversation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ExportToMarkdown("nope"); err == nil {
		t.Error("expected error for missing conversation")
	}
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ExportFormat
	}{
		{".json", ExportFormatJSON},
		{"json", ExportFormatJSON},
		{".md", ExportFormatMarkdown},
		{"markdown", ExportFormatMarkdown},
		{"", ExportFormatMarkdown},
	}
	for _, tt := range tests {
		if got := ParseExportFormat(tt.in); got != tt.want {
			t.Errorf("ParseExportFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportToFilePicksFormatFromExtension(t *testing.T) {
	s, conv := exportFixture(t)
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "out.md")
	if err := s.ExportToFile(conv.ID, mdPath); err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	md, _ := os.ReadFile(mdPath)
	if !strings.HasPrefix(string(md), "# ") {
		t.Errorf("markdown file should start with a heading")
	}

	jsonPath := filepath.Join(dir, "out.json")
	if err := s.ExportToFile(conv.ID, jsonPath); err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	raw, _ := os.ReadFile(jsonPath)
	var round Conversation
	if err := json.Unmarshal(raw, &round); err != nil {
		t.Errorf("json file invalid: %v", err)
	}
}

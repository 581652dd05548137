package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportFormat selects the output format for an exported conversation.
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat maps a file extension or format name to an
// ExportFormat, defaulting to markdown.
func ParseExportFormat(s string) ExportFormat {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return ExportFormatJSON
	default:
		return ExportFormatMarkdown
	}
}

// Export renders a conversation in the given format.
func (s *Store) Export(id string, format ExportFormat) (string, error) {
	switch format {
	case ExportFormatJSON:
		return s.ExportToJSON(id)
	default:
		return s.ExportToMarkdown(id)
	}
}

// ExportToFile writes an exported conversation to path, picking the
// format from the file extension.
func (s *Store) ExportToFile(id, path string) error {
	out, err := s.Export(id, ParseExportFormat(filepath.Ext(path)))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportToMarkdown renders a conversation as a Markdown document.
func (s *Store) ExportToMarkdown(id string) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	sb.WriteString("**Model:** ")
	sb.WriteString(conv.Model)
	sb.WriteString("\n**Created:** ")
	sb.WriteString(conv.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n**Updated:** ")
	sb.WriteString(conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n**Messages:** ")
	sb.WriteString(fmt.Sprintf("%d", len(conv.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range conv.Messages {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		if msg.Duration > 0 {
			sb.WriteString(fmt.Sprintf(" · %.1fs", msg.Duration.Seconds()))
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// ExportToJSON renders a conversation as pretty-printed JSON.
func (s *Store) ExportToJSON(id string) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return string(data), nil
}

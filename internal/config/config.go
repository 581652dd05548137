// Package config handles configuration for easycli.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Display mode names accepted by Config.DisplayMode.
const (
	DisplayLive        = "live"
	DisplayApp         = "app"
	DisplayTraditional = "traditional"
)

// Input mode names accepted by Config.InputMode.
const (
	InputFooter = "footer"
	InputInline = "inline"
	InputPrompt = "prompt"
)

// InputOptions configures the footer input box. Every field has a stated
// default; ReservedInputRows is the only one mutated during a session (it
// grows to fit wrapped input while a read is active, then resets).
type InputOptions struct {
	LeftLabel         string `json:"left_label"`          // bottom-left mode label
	TipsText          string `json:"tips_text"`           // bottom-right hint text
	PlaceholderText   string `json:"placeholder_text"`    // shown muted when input is empty and inactive
	FooterOffsetRows  int    `json:"footer_offset_rows"`  // rows up from the bottom to the editable input row
	ReservedInputRows int    `json:"reserved_input_rows"` // rows reserved for wrapped input while editing
}

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	DefaultModel string `json:"default_model"`
	// BaseURL overrides the provider endpoint (for proxies and
	// OpenAI-compatible gateways). Empty means the Anthropic API.
	BaseURL   string `json:"base_url,omitempty"`
	MaxTokens int    `json:"max_tokens"`
	// DisplayMode selects the chat surface: live (fixed footer, default),
	// app (full-screen bubbletea UI), or traditional (scrolling output).
	DisplayMode string `json:"display_mode"`
	InputMode   string `json:"input_mode"` // footer | inline | prompt
	// AltScreen runs the live display on the alternate screen, keeping
	// scrollback untouched at the cost of losing the transcript on exit.
	AltScreen bool              `json:"alt_screen"`
	Input     InputOptions      `json:"input"`
	Markdown  MarkdownConfig    `json:"markdown"`
	Aliases   map[string]string `json:"aliases,omitempty"` // slash-command aliases
	LogLevel  string            `json:"log_level"`
}

// DefaultInputOptions returns the default footer input configuration.
func DefaultInputOptions() InputOptions {
	return InputOptions{
		LeftLabel:         "chat",
		TipsText:          "Type / for commands",
		PlaceholderText:   "Type your message...",
		FooterOffsetRows:  2,
		ReservedInputRows: 2,
	}
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultModel: "claude-sonnet-4-20250514",
		MaxTokens:    4096,
		DisplayMode:  DisplayLive,
		InputMode:    InputFooter,
		AltScreen:    false,
		Input:        DefaultInputOptions(),
		Markdown:     DefaultMarkdownConfig(),
		LogLevel:     "info",
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".easycli"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk, filling defaults for anything
// missing. A missing file yields the defaults without error.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// normalize clamps loaded values back into their supported ranges.
func (c *Config) normalize() {
	switch c.DisplayMode {
	case DisplayLive, DisplayApp, DisplayTraditional:
	default:
		c.DisplayMode = DisplayLive
	}
	switch c.InputMode {
	case InputFooter, InputInline, InputPrompt:
	default:
		c.InputMode = InputFooter
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	if c.Input.FooterOffsetRows < 1 {
		c.Input.FooterOffsetRows = DefaultInputOptions().FooterOffsetRows
	}
	if c.Input.ReservedInputRows < 1 {
		c.Input.ReservedInputRows = DefaultInputOptions().ReservedInputRows
	}
	if c.Input.PlaceholderText == "" {
		c.Input.PlaceholderText = DefaultInputOptions().PlaceholderText
	}
}

// LogPath returns the path of the application log file.
func LogPath() string {
	dir, err := GetConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "app.log")
}

package commands

import (
	"testing"

	"github.com/silanhu/easycli/internal/config"
)

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(config.Config) bool
	}{
		{"model", "claude-opus-4-20250514", func(c config.Config) bool { return c.DefaultModel == "claude-opus-4-20250514" }},
		{"max_tokens", "2048", func(c config.Config) bool { return c.MaxTokens == 2048 }},
		{"display", "app", func(c config.Config) bool { return c.DisplayMode == config.DisplayApp }},
		{"input_mode", "prompt", func(c config.Config) bool { return c.InputMode == config.InputPrompt }},
		{"alt_screen", "true", func(c config.Config) bool { return c.AltScreen }},
		{"md_style", "dracula", func(c config.Config) bool { return c.Markdown.Style == "dracula" }},
		{"log_level", "debug", func(c config.Config) bool { return c.LogLevel == "debug" }},
		{"base_url", "https://proxy.example", func(c config.Config) bool { return c.BaseURL == "https://proxy.example" }},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		if err := setConfigValue(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("set %s=%s: %v", tt.key, tt.value, err)
			continue
		}
		if !tt.check(cfg) {
			t.Errorf("set %s=%s did not apply", tt.key, tt.value)
		}
	}
}

func TestSetConfigValueRejectsBadInput(t *testing.T) {
	tests := []struct{ key, value string }{
		{"max_tokens", "zero"},
		{"max_tokens", "-5"},
		{"display", "holographic"},
		{"input_mode", "telepathy"},
		{"alt_screen", "maybe"},
		{"no_such_key", "x"},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		if err := setConfigValue(&cfg, tt.key, tt.value); err == nil {
			t.Errorf("set %s=%s should fail", tt.key, tt.value)
		}
	}
}

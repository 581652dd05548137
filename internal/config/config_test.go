package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DisplayMode != DisplayLive {
		t.Errorf("default display mode = %q, want live", cfg.DisplayMode)
	}
	if cfg.InputMode != InputFooter {
		t.Errorf("default input mode = %q, want footer", cfg.InputMode)
	}
	if cfg.Input.FooterOffsetRows != 2 || cfg.Input.ReservedInputRows != 2 {
		t.Errorf("unexpected input defaults: %+v", cfg.Input)
	}
	if cfg.Input.PlaceholderText == "" || cfg.Input.TipsText == "" {
		t.Error("placeholder and tips must have defaults")
	}
	if cfg.MaxTokens <= 0 {
		t.Error("max tokens must default positive")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DisplayMode != DisplayLive {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.DefaultModel = "test-model"
	cfg.DisplayMode = DisplayApp
	cfg.Input.LeftLabel = "work"
	cfg.Aliases = map[string]string{"h": "/help"}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DefaultModel != "test-model" {
		t.Errorf("model = %q", loaded.DefaultModel)
	}
	if loaded.DisplayMode != DisplayApp {
		t.Errorf("display mode = %q", loaded.DisplayMode)
	}
	if loaded.Input.LeftLabel != "work" {
		t.Errorf("left label = %q", loaded.Input.LeftLabel)
	}
	if loaded.Aliases["h"] != "/help" {
		t.Errorf("aliases = %v", loaded.Aliases)
	}
}

func TestLoadNormalizesBadValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".easycli")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	raw := `{"display_mode":"bogus","input_mode":"bogus","max_tokens":-1,
		"input":{"footer_offset_rows":0,"reserved_input_rows":-3}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DisplayMode != DisplayLive {
		t.Errorf("display mode not normalized: %q", cfg.DisplayMode)
	}
	if cfg.InputMode != InputFooter {
		t.Errorf("input mode not normalized: %q", cfg.InputMode)
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("max tokens not normalized: %d", cfg.MaxTokens)
	}
	if cfg.Input.FooterOffsetRows != 2 || cfg.Input.ReservedInputRows != 2 {
		t.Errorf("input rows not normalized: %+v", cfg.Input)
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".easycli")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg.DisplayMode != DisplayLive {
		t.Error("corrupt config must fall back to defaults")
	}
}

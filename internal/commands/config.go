package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silanhu/easycli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long:  `Show the current configuration, or set a value with "config set".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		path, _ := config.GetConfigPath()

		fmt.Printf("Config file: %s\n\n", path)
		fmt.Printf("model:        %s\n", cfg.DefaultModel)
		fmt.Printf("max_tokens:   %d\n", cfg.MaxTokens)
		fmt.Printf("display:      %s\n", cfg.DisplayMode)
		fmt.Printf("input_mode:   %s\n", cfg.InputMode)
		fmt.Printf("alt_screen:   %t\n", cfg.AltScreen)
		fmt.Printf("md_style:     %s\n", cfg.Markdown.Style)
		fmt.Printf("log_level:    %s\n", cfg.LogLevel)
		if cfg.BaseURL != "" {
			fmt.Printf("base_url:     %s\n", cfg.BaseURL)
		}
		if len(cfg.Aliases) > 0 {
			fmt.Println("\naliases:")
			for name, expansion := range cfg.Aliases {
				fmt.Printf("  /%s → /%s\n", name, expansion)
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys: model, max_tokens, display, input_mode, alt_screen, md_style, log_level, base_url`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		key, value := args[0], args[1]
		if err := setConfigValue(&cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "model":
		cfg.DefaultModel = value
	case "max_tokens":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("max_tokens must be a positive integer")
		}
		cfg.MaxTokens = n
	case "display":
		switch value {
		case config.DisplayLive, config.DisplayApp, config.DisplayTraditional:
			cfg.DisplayMode = value
		default:
			return fmt.Errorf("display must be live, app, or traditional")
		}
	case "input_mode":
		switch value {
		case config.InputFooter, config.InputInline, config.InputPrompt:
			cfg.InputMode = value
		default:
			return fmt.Errorf("input_mode must be footer, inline, or prompt")
		}
	case "alt_screen":
		switch value {
		case "true":
			cfg.AltScreen = true
		case "false":
			cfg.AltScreen = false
		default:
			return fmt.Errorf("alt_screen must be true or false")
		}
	case "md_style":
		cfg.Markdown.Style = value
	case "log_level":
		cfg.LogLevel = value
	case "base_url":
		cfg.BaseURL = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

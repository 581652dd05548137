// Package commands provides the easycli command-line interface.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/silanhu/easycli/internal/config"
	"github.com/silanhu/easycli/internal/logging"
)

var (
	// Global flags
	modelFlag       string
	displayFlag     string
	inputModeFlag   string
	apiKeyFlag      string
	baseURLFlag     string
	altScreenFlag   bool
	outputFlag      string
	fileFlag        string
	inputLabelFlag  string
	inputTipsFlag   string
	footerOffset    int
	reservedRows    int

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "easycli [prompt]",
	Short: "Streaming chat in your terminal",
	Long: `easycli is a terminal chat client with a live-updating display:
streamed responses, markdown rendering, and a fixed footer input box.

Examples:
  easycli                               Start interactive chat
  easycli chat --display app            Full-screen chat UI
  easycli "What is Go?"                 Send a single query
  easycli -f prompt.md                  Read prompt from file
  cat prompt.md | easycli               Read prompt from stdin
  easycli "Hello" -o response.md        Save response to file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("easycli %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data), !isStdoutTTY())
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), !isStdoutTTY())
		}

		if len(args) > 0 {
			return runQuery(args[0], !isStdoutTTY())
		}

		// No prompt: drop into interactive chat.
		return runChat()
	},
}

// Execute runs the root command
func Execute() {
	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., claude-sonnet-4-20250514)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "API key (defaults to $EASYCLI_API_KEY or $ANTHROPIC_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "API base URL override")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("easycli %s (built %s)\n", Version, BuildTime)
	},
}

// loadConfig loads the user config and wires up file logging. A corrupt
// or missing file still yields usable defaults.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	logging.Init(config.LogPath(), cfg.LogLevel)
	return cfg
}

// getModel returns the model to use (flag wins over config).
func getModel(cfg config.Config) string {
	if modelFlag != "" {
		return modelFlag
	}
	return cfg.DefaultModel
}

// getAPIKey resolves the API key: flag, then environment.
func getAPIKey() string {
	if apiKeyFlag != "" {
		return apiKeyFlag
	}
	if key := os.Getenv("EASYCLI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

// getBaseURL resolves the API base URL: flag, then environment, then config.
func getBaseURL(cfg config.Config) string {
	if baseURLFlag != "" {
		return baseURLFlag
	}
	if url := os.Getenv("EASYCLI_BASE_URL"); url != "" {
		return url
	}
	return cfg.BaseURL
}

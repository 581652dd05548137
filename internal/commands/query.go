package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/silanhu/easycli/internal/config"
	apierrors "github.com/silanhu/easycli/internal/errors"
	"github.com/silanhu/easycli/internal/provider"
	"github.com/silanhu/easycli/internal/render"
)

var assistantLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7aa2f7")).
	Bold(true)

// runQuery executes a single prompt and prints the response. rawOutput
// streams tokens straight to stdout with no decoration (piped usage).
func runQuery(prompt string, rawOutput bool) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg := loadConfig()

	client, err := provider.NewAnthropic(getAPIKey(), getBaseURL(cfg), getModel(cfg))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	req := provider.Request{
		Messages:  []provider.Message{{Role: provider.RoleUser, Content: prompt}},
		MaxTokens: cfg.MaxTokens,
	}

	// Raw mode: stream tokens as they arrive.
	if rawOutput && outputFlag == "" {
		if err := client.Stream(ctx, req, func(text string) {
			fmt.Print(text)
		}); err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		fmt.Println()
		return nil
	}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner("Thinking")
		spin.start()
	}

	var sb strings.Builder
	if err := client.Stream(ctx, req, func(text string) {
		sb.WriteString(text)
	}); err != nil {
		if !rawOutput {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Generation failed"))
		}
		return fmt.Errorf("generation failed: %w", err)
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}

	text := sb.String()

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !rawOutput {
			msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Response saved to %s", outputFlag))
			fmt.Fprintln(os.Stderr, msg)
		}
		return nil
	}

	if rawOutput {
		fmt.Print(text)
		return nil
	}

	// Decorated output: assistant label plus rendered markdown.
	fmt.Fprintln(os.Stderr)
	fmt.Println(assistantLabelStyle.Render("✦ assistant"))

	width := getTerminalWidth() - 2
	if width > 120 {
		width = 120
	}
	opts := markdownOptions(cfg, width)
	rendered := render.MarkdownBlock(text).Render(width, opts)
	fmt.Println(strings.TrimRight(rendered, "\n"))

	return nil
}

// markdownOptions maps the user's markdown config to renderer options.
func markdownOptions(cfg config.Config, width int) render.Options {
	return render.Options{
		Width:            width,
		Style:            cfg.Markdown.Style,
		EnableEmoji:      cfg.Markdown.EnableEmoji,
		PreserveNewLines: cfg.Markdown.PreserveNewLines,
	}
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with a hint based on its category
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	switch {
	case apierrors.IsTransportError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and try again"))
	case apierrors.IsProviderError(err):
		var pe *apierrors.ProviderError
		if errors.As(err, &pe) {
			switch pe.Code {
			case "authentication_error":
				sb.WriteString(dimStyle.Render("\n  Hint: Check your API key ($EASYCLI_API_KEY)"))
			case "overloaded_error", "rate_limit_error":
				sb.WriteString(dimStyle.Render("\n  Hint: The service is busy. Try again shortly"))
			}
		}
	}

	return sb.String()
}

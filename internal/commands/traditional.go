package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/config"
	"github.com/silanhu/easycli/internal/history"
	"github.com/silanhu/easycli/internal/logging"
	"github.com/silanhu/easycli/internal/provider"
	"github.com/silanhu/easycli/internal/render"
	"github.com/silanhu/easycli/internal/ui"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)
	promptHintStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// runTraditionalChat is the plain scrolling chat loop: prompt, echo the
// user line, stream the reply, then replace the raw stream with its
// markdown rendering.
func runTraditionalChat(client provider.Provider, cfg config.Config) error {
	s := &chatSession{
		plainLog: chat.NewLog(),
		client:   client,
		cfg:      cfg,
		model:    client.Model(),
	}
	s.registry = newSlashRegistry()

	if store, err := history.DefaultStore(); err == nil {
		s.store = store
	} else {
		logging.Warn("history store unavailable", "error", err)
	}

	fmt.Printf("easycli %s %s\n", s.model, promptHintStyle.Render("(type /help for commands, /exit to quit)"))

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("\n%s ", userLabelStyle.Render("❯"))
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF ends the session cleanly.
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if err := s.registry.dispatch(s, line); err != nil {
				if errors.Is(err, errExitChat) {
					return nil
				}
				s.notify(err.Error(), ui.SeverityError)
			}
			continue
		}

		s.sendTraditional(line)
	}
}

// sendTraditional streams one turn to stdout. The raw token stream is
// erased once complete and replaced with the markdown rendering, the
// scrolling-mode equivalent of the live transcript's finalize step.
func (s *chatSession) sendTraditional(line string) {
	s.log().AddUser(line)
	s.log().StartAssistant()

	fmt.Println()
	fmt.Println(assistantLabelStyle.Render("✦ assistant"))

	width := getTerminalWidth()
	var raw strings.Builder

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := s.client.Stream(ctx, provider.Request{
		Model:     s.model,
		Messages:  providerMessages(s.log()),
		MaxTokens: s.cfg.MaxTokens,
	}, func(text string) {
		raw.WriteString(text)
		s.log().AppendChunk(text)
		fmt.Print(text)
	})
	cancel()

	if err != nil {
		s.log().DiscardStreaming()
		fmt.Println()
		if errors.Is(err, context.Canceled) {
			fmt.Println(promptHintStyle.Render("Response interrupted"))
			return
		}
		logging.Error("streaming turn failed", "error", err)
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Generation failed"))
		return
	}

	msg, ok := s.log().FinishAssistant()
	if !ok {
		fmt.Println(promptHintStyle.Render("(empty response)"))
		return
	}

	eraseStreamedText(raw.String(), width)
	opts := markdownOptions(s.cfg, width-2)
	fmt.Println(strings.TrimRight(render.MarkdownBlock(msg.Content).Render(width-2, opts), "\n"))

	s.autosave(line, msg)
}

// wrappedLineCount reports how many terminal rows text occupies after
// soft-wrapping at width columns.
func wrappedLineCount(text string, width int) int {
	lines := 0
	for _, seg := range strings.Split(text, "\n") {
		n := 1
		if w := runewidth.StringWidth(seg); w > 0 {
			n = (w + width - 1) / width
		}
		lines += n
	}
	return lines
}

// eraseStreamedText moves the cursor back over the raw streamed block and
// clears it, accounting for terminal soft-wrapping.
func eraseStreamedText(text string, width int) {
	if width < 1 {
		width = 80
	}
	lines := wrappedLineCount(text, width)
	if lines > 1 {
		fmt.Printf("\x1b[%dF", lines-1)
	} else {
		fmt.Print("\r")
	}
	fmt.Print("\x1b[J")
}

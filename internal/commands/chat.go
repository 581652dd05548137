package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/config"
	apierrors "github.com/silanhu/easycli/internal/errors"
	"github.com/silanhu/easycli/internal/history"
	"github.com/silanhu/easycli/internal/logging"
	"github.com/silanhu/easycli/internal/provider"
	"github.com/silanhu/easycli/internal/tui"
	"github.com/silanhu/easycli/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

The chat maintains conversation context across messages.
Type /help for commands, /exit or Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().StringVar(&displayFlag, "display", "", "Display mode: live, app, or traditional")
	chatCmd.Flags().StringVar(&inputModeFlag, "input-mode", "", "Input strategy: footer, inline, or prompt")
	chatCmd.Flags().BoolVar(&altScreenFlag, "alt-screen", false, "Run on the alternate screen")
	chatCmd.Flags().StringVar(&inputLabelFlag, "input-label", "", "Footer label text")
	chatCmd.Flags().StringVar(&inputTipsFlag, "input-tips", "", "Footer tips text")
	chatCmd.Flags().IntVar(&footerOffset, "footer-offset", 0, "Rows from the bottom to the input row")
	chatCmd.Flags().IntVar(&reservedRows, "input-reserve", 0, "Rows reserved for wrapped input")
}

// chatConfig applies chat overrides on top of the loaded config.
// Precedence: flag > environment > config file.
func chatConfig() config.Config {
	cfg := loadConfig()
	if v := os.Getenv("EASYCLI_DISPLAY"); v != "" {
		cfg.DisplayMode = v
	}
	if v := os.Getenv("EASYCLI_INPUT_MODE"); v != "" {
		cfg.InputMode = v
	}
	if v := os.Getenv("EASYCLI_FOOTER_OFFSET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Input.FooterOffsetRows = n
		}
	}
	if displayFlag != "" {
		cfg.DisplayMode = displayFlag
	}
	if inputModeFlag != "" {
		cfg.InputMode = inputModeFlag
	}
	if altScreenFlag {
		cfg.AltScreen = true
	}
	if inputLabelFlag != "" {
		cfg.Input.LeftLabel = inputLabelFlag
	}
	if inputTipsFlag != "" {
		cfg.Input.TipsText = inputTipsFlag
	}
	if footerOffset > 0 {
		cfg.Input.FooterOffsetRows = footerOffset
	}
	if reservedRows > 0 {
		cfg.Input.ReservedInputRows = reservedRows
	}
	return cfg
}

func runChat() error {
	cfg := chatConfig()

	client, err := provider.NewAnthropic(getAPIKey(), getBaseURL(cfg), getModel(cfg))
	if err != nil {
		if errors.Is(err, apierrors.ErrMissingAPIKey) {
			return fmt.Errorf("%w: set $EASYCLI_API_KEY or pass --api-key", err)
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	switch cfg.DisplayMode {
	case config.DisplayApp:
		return tui.RunChat(client, cfg)
	case config.DisplayTraditional:
		return runTraditionalChat(client, cfg)
	default:
		return runLiveChat(client, cfg)
	}
}

// errExitChat signals a clean, user-requested end of the session.
var errExitChat = errors.New("exit chat")

// chatSession holds the state shared by the chat loop and slash-command
// handlers. display is nil in traditional mode; helpers below route
// output accordingly.
type chatSession struct {
	display  *ui.Display
	plainLog *chat.Log // used instead of display.Log() in traditional mode
	client   provider.Provider
	cfg      config.Config
	store    *history.Store
	convID   string
	model    string
	registry *slashRegistry
}

func (s *chatSession) log() *chat.Log {
	if s.display != nil {
		return s.display.Log()
	}
	return s.plainLog
}

// pause yields the terminal to fn (a no-op wrapper in traditional mode).
func (s *chatSession) pause(fn func()) {
	if s.display != nil {
		s.display.Pause(fn)
		return
	}
	fn()
}

func (s *chatSession) notify(msg string, sev ui.Severity) {
	if s.display != nil {
		s.display.Notify(msg, sev)
		return
	}
	switch sev {
	case ui.SeverityError:
		fmt.Fprintln(os.Stderr, formatErrorMessage(errors.New(msg), "Error"))
	default:
		fmt.Println(msg)
	}
}

func runLiveChat(client provider.Provider, cfg config.Config) error {
	s := &chatSession{
		client: client,
		cfg:    cfg,
		model:  client.Model(),
	}
	s.registry = newSlashRegistry()

	// History persistence is best effort; chat works without it.
	if store, err := history.DefaultStore(); err == nil {
		s.store = store
	} else {
		logging.Warn("history store unavailable", "error", err)
	}

	display := ui.NewDisplay(ui.DisplayConfig{
		Title:    "easycli",
		Subtitle: s.model,
		Input:    cfg.Input,
		Markdown: markdownOptions(cfg, 0),
	})
	s.display = display

	if err := display.Start(cfg.AltScreen); err != nil {
		return fmt.Errorf("failed to start display: %w", err)
	}
	defer display.Stop()

	mode := ui.ParseReadMode(cfg.InputMode)

	for {
		line, err := display.ReadInput(mode)
		if err != nil {
			if apierrors.IsInterrupted(err) {
				display.Notify("Interrupted. Type /exit to quit", ui.SeverityInfo)
				continue
			}
			return err
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if err := s.registry.dispatch(s, line); err != nil {
				if errors.Is(err, errExitChat) {
					return nil
				}
				display.ShowError(err.Error())
			}
			continue
		}

		s.sendMessage(line)
	}
}

// sendMessage runs one full streaming turn: record the user line, stream
// the assistant reply into the display, finalize, and autosave.
func (s *chatSession) sendMessage(line string) {
	s.display.AddUserMessage(line)

	req := provider.Request{
		Model:     s.model,
		Messages:  providerMessages(s.log()),
		MaxTokens: s.cfg.MaxTokens,
	}

	s.display.StartAssistantMessage()

	// Ctrl+C during streaming cancels the request instead of killing the
	// process.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := s.client.Stream(ctx, req, s.display.AppendStreamingChunk)
	cancel()

	if err != nil {
		s.display.AbortAssistantMessage()
		if errors.Is(err, context.Canceled) {
			s.display.Notify("Response interrupted", ui.SeverityInfo)
			return
		}
		logging.Error("streaming turn failed", "error", err)
		s.display.ShowError(err.Error())
		return
	}

	msg, ok := s.display.FinishAssistantMessage()
	if !ok {
		s.display.Notify("Empty response", ui.SeverityInfo)
		return
	}
	s.autosave(line, msg)
}

// providerMessages converts the session log to request context. An active
// streaming message is excluded; only finalized turns travel.
func providerMessages(log *chat.Log) []provider.Message {
	msgs := log.Messages()
	out := make([]provider.Message, 0, len(msgs))
	for _, m := range msgs {
		role := provider.RoleUser
		if m.Role == chat.RoleAssistant {
			role = provider.RoleAssistant
		}
		out = append(out, provider.Message{Role: role, Content: m.Content})
	}
	return out
}

// autosave persists a completed turn. Failures are logged, never surfaced
// as chat errors.
func (s *chatSession) autosave(userLine string, msg chat.Message) {
	if s.store == nil {
		return
	}
	if s.convID == "" {
		conv, err := s.store.CreateConversation(s.model)
		if err != nil {
			logging.Warn("failed to create conversation", "error", err)
			return
		}
		s.convID = conv.ID
	}
	if err := s.store.AddMessage(s.convID, "user", userLine, 0); err != nil {
		logging.Warn("failed to save user message", "error", err)
		return
	}
	if err := s.store.AddMessage(s.convID, "assistant", msg.Content, msg.Duration); err != nil {
		logging.Warn("failed to save assistant message", "error", err)
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/config"
	"github.com/silanhu/easycli/internal/history"
	"github.com/silanhu/easycli/internal/logging"
	"github.com/silanhu/easycli/internal/provider"
	"github.com/silanhu/easycli/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Stream event messages delivered by the pump command
type (
	chunkMsg      string
	streamDoneMsg struct{}
	errMsg        struct {
		err error
	}
)

// Model represents the TUI state
type Model struct {
	client provider.Provider
	cfg    config.Config

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Conversation state
	log    *chat.Log
	store  *history.Store
	convID string

	// Streaming state
	loading bool
	events  chan tea.Msg
	cancel  context.CancelFunc

	// Transient UI state
	ready          bool
	err            error
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model. store may be nil when
// history persistence is unavailable.
func NewChatModel(client provider.Provider, cfg config.Config, store *history.Store) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		client:   client,
		cfg:      cfg,
		textarea: ta,
		spinner:  s,
		log:      chat.NewLog(),
		store:    store,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// waitForEvent reads the next stream event from the pump channel.
func waitForEvent(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.interrupt()
			return m, tea.Quit

		case "esc":
			if m.loading {
				// Abort the in-flight request, keep the session alive.
				m.interrupt()
			} else {
				return m, tea.Quit
			}

		case "enter":
			if !m.loading && strings.TrimSpace(m.textarea.Value()) != "" {
				input := strings.TrimSpace(m.textarea.Value())
				m.textarea.Reset()
				m.notice = ""

				if handled, model, cmd := m.handleCommand(input); handled {
					return model, cmd
				}

				m.log.AddUser(input)
				m.saveMessage(provider.RoleUser, input, 0)
				m.updateViewport()
				m.viewport.GotoBottom()

				m.loading = true
				m.err = nil
				m.animationFrame = 0

				cmd = m.startStream()
				return m, tea.Batch(
					cmd,
					m.spinner.Tick,
					animationTick(),
				)
			}
		}

	case chunkMsg:
		m.log.AppendChunk(string(msg))
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, waitForEvent(m.events)

	case streamDoneMsg:
		m.loading = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if done, ok := m.log.FinishAssistant(); ok {
			m.saveMessage(provider.RoleAssistant, done.Content, done.Duration)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case errMsg:
		m.loading = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.log.DiscardStreaming()
		if errors.Is(msg.err, context.Canceled) {
			m.notice = "Response interrupted"
		} else {
			m.err = msg.err
		}
		m.updateViewport()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleCommand intercepts slash commands typed into the textarea.
// It returns handled=false for ordinary prompts.
func (m Model) handleCommand(input string) (bool, tea.Model, tea.Cmd) {
	name := strings.ToLower(input)
	switch name {
	case "exit", "quit", "/exit", "/quit":
		return true, m, tea.Quit

	case "/new", "/clear":
		m.log.Clear()
		m.convID = ""
		m.err = nil
		m.notice = ""
		m.updateViewport()
		return true, m, nil

	case "/copy":
		msgs := m.log.Messages()
		for i := len(msgs) - 1; i >= 0; i-- {
			if msgs[i].Role == chat.RoleAssistant {
				if err := clipboard.WriteAll(msgs[i].Content); err != nil {
					m.err = fmt.Errorf("copy to clipboard: %w", err)
				} else {
					m.notice = "Copied last reply to clipboard"
				}
				return true, m, nil
			}
		}
		m.err = fmt.Errorf("no assistant reply to copy")
		return true, m, nil
	}

	if strings.HasPrefix(input, "/") {
		m.err = fmt.Errorf("unknown command %s", input)
		return true, m, nil
	}
	return false, m, nil
}

// interrupt cancels the in-flight stream, if any.
func (m *Model) interrupt() {
	if m.cancel != nil {
		m.cancel()
	}
}

// startStream launches the streaming request and returns the first
// pump command. Chunks arrive as chunkMsg, completion as streamDoneMsg.
func (m *Model) startStream() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	ch := make(chan tea.Msg, 64)
	m.events = ch

	m.log.StartAssistant()

	req := provider.Request{
		Model:     m.client.Model(),
		Messages:  providerMessages(m.log),
		MaxTokens: m.cfg.MaxTokens,
	}

	go func() {
		err := m.client.Stream(ctx, req, func(text string) {
			ch <- chunkMsg(text)
		})
		if err != nil {
			ch <- errMsg{err: err}
		} else {
			ch <- streamDoneMsg{}
		}
		close(ch)
	}()

	return waitForEvent(ch)
}

// providerMessages converts the finalized chat log into request context.
func providerMessages(log *chat.Log) []provider.Message {
	msgs := log.Messages()
	out := make([]provider.Message, 0, len(msgs))
	for _, msg := range msgs {
		role := provider.RoleUser
		if msg.Role == chat.RoleAssistant {
			role = provider.RoleAssistant
		}
		out = append(out, provider.Message{Role: role, Content: msg.Content})
	}
	return out
}

// saveMessage persists one message to the history store. Failures are
// logged and otherwise ignored so the chat keeps working without disk.
func (m *Model) saveMessage(role, content string, duration time.Duration) {
	if m.store == nil {
		return
	}
	if m.convID == "" {
		conv, err := m.store.CreateConversation(m.client.Model())
		if err != nil {
			logging.Warn("create conversation failed", "error", err)
			return
		}
		m.convID = conv.ID
	}
	if err := m.store.AddMessage(m.convID, role, content, duration); err != nil {
		logging.Warn("save message failed", "error", err)
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{
		titleStyle.Render("✦ easycli"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.client.Model()),
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	header := headerStyle.Width(contentWidth).Render(headerContent)
	sections = append(sections, header)

	var messagesContent string
	if m.log.Len() == 0 {
		if _, streaming := m.log.StreamingState(); streaming {
			messagesContent = m.viewport.View()
		} else {
			messagesContent = m.renderWelcome()
		}
	} else {
		messagesContent = m.viewport.View()
	}

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}

	inputPanel := inputPanelStyle.Width(contentWidth).Render(inputContent)
	sections = append(sections, inputPanel)

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render("• "+m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Align(lipgloss.Center).Render("✦")
	title := welcomeTitleStyle.Width(width).Align(lipgloss.Center).Render("Welcome to EasyCli")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	// Center vertically
	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)

		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	dots := ""
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots += lipgloss.NewStyle().Foreground(dotColor).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextMute).Render("○")
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" assistant is thinking ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}
	if m.loading {
		shortcuts[1].desc = "Interrupt"
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.log.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == chat.RoleUser {
			label := userLabelStyle.Render("❯ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ assistant")
			content.WriteString(label + "\n")
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(m.renderMarkdown(msg.Content, bubbleWidth-4))
			content.WriteString(bubble)
		}
		content.WriteString("\n")
	}

	// Streaming text is shown raw with a cursor; markdown waits for the
	// finished message.
	if s, ok := m.log.StreamingState(); ok {
		if m.log.Len() > 0 {
			content.WriteString("\n")
		}
		label := assistantLabelStyle.Render("✦ assistant")
		bubble := assistantBubbleStyle.Width(bubbleWidth).Render(s.Text + "▌")
		content.WriteString(label + "\n" + bubble + "\n")
	}

	m.viewport.SetContent(content.String())
}

// renderMarkdown renders assistant markdown for the viewport, falling
// back to plain text when glamour fails.
func (m Model) renderMarkdown(text string, width int) string {
	opts := render.Options{
		Width:            width,
		Style:            m.cfg.Markdown.Style,
		EnableEmoji:      m.cfg.Markdown.EnableEmoji,
		PreserveNewLines: m.cfg.Markdown.PreserveNewLines,
	}
	rendered, err := render.Markdown(text, opts)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// RunChat starts the full-screen chat TUI
func RunChat(client provider.Provider, cfg config.Config) error {
	store, err := history.DefaultStore()
	if err != nil {
		logging.Warn("history unavailable", "error", err)
		store = nil
	}

	m := NewChatModel(client, cfg, store)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/render"
)

// streamingCueFrames is the animated liveness indicator shown next to an
// in-progress assistant message. The frame advances on wall-clock time so
// repeated renders inside one repaint tick are stable.
var streamingCueFrames = []string{"●○○", "○●○", "○○●"}

const streamingCuePeriod = 300 * time.Millisecond

// streamingCursor trails the streamed text.
const streamingCursor = "▌"

// userMarker prefixes user messages in the transcript.
const userMarker = "❯"

// renderedBlock is one message measured at a specific width.
type renderedBlock struct {
	lines []string
}

func (b renderedBlock) height() int { return len(b.lines) }

// RenderTranscript renders the visible slice of the log, bottom-aligned
// within a width×height chat region. now drives the liveness cue.
func RenderTranscript(log *chat.Log, width, height int, now time.Time, opts render.Options) string {
	if width < 1 || height < 1 {
		return ""
	}

	msgs := log.Messages()
	streaming, active := log.StreamingState()

	if len(msgs) == 0 && !active {
		return renderWelcome(width, height)
	}

	var sp *chat.Streaming
	if active {
		sp = &streaming
	}
	blocks := visibleBlocks(msgs, sp, width, height, now, opts)

	var lines []string
	for i, b := range blocks {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, b.lines...)
	}

	// Bottom-align: blank space goes above, never below.
	if pad := height - len(lines); pad > 0 {
		lines = append(make([]string, pad), lines...)
	}
	return strings.Join(lines, "\n")
}

// visibleBlocks runs the bottom-up greedy fit: newest content first, each
// message included whole or not at all, one blank separator row between
// consecutive blocks. The returned slice is in chronological order and its
// total height (blocks + separators) never exceeds height.
func visibleBlocks(msgs []chat.Message, streaming *chat.Streaming, width, height int, now time.Time, opts render.Options) []renderedBlock {
	var vis []renderedBlock
	used := 0

	if streaming != nil {
		b := renderStreaming(*streaming, width, now)
		if b.height() <= height {
			vis = append(vis, b)
			used = b.height()
		}
	}

	for i := len(msgs) - 1; i >= 0; i-- {
		b := renderMessage(msgs[i], width, opts)
		cost := b.height()
		if used > 0 {
			cost++ // separator row
		}
		if used+cost > height {
			break
		}
		used += cost
		vis = append([]renderedBlock{b}, vis...)
	}

	return vis
}

// renderMessage renders one finalized message at the given width.
func renderMessage(m chat.Message, width int, opts render.Options) renderedBlock {
	if m.Role == chat.RoleUser {
		return renderUser(m, width)
	}
	return renderAssistant(m, width, opts)
}

func renderUser(m chat.Message, width int) renderedBlock {
	marker := userMarkerStyle.Render(userMarker) + " "
	wrapped := wordwrap.String(m.Content, max(1, width-2))
	var lines []string
	for i, l := range strings.Split(wrapped, "\n") {
		if i == 0 {
			lines = append(lines, marker+userTextStyle.Render(l))
		} else {
			lines = append(lines, "  "+userTextStyle.Render(l))
		}
	}
	return renderedBlock{lines: lines}
}

func renderAssistant(m chat.Message, width int, opts render.Options) renderedBlock {
	header := assistantHeaderStyle.Render("✦ assistant") +
		assistantMetaStyle.Render(" · "+m.CreatedAt.Format("15:04:05"))
	if m.Duration > 0 {
		header += assistantMetaStyle.Render(fmt.Sprintf(" · %.1fs", m.Duration.Seconds()))
	}

	body := render.MarkdownBlock(m.Content).Render(width, opts)
	lines := append([]string{header}, strings.Split(body, "\n")...)
	return renderedBlock{lines: lines}
}

// renderStreaming renders the in-progress message: metadata header with
// elapsed seconds and the animated cue, then the raw text with a trailing
// cursor glyph. Streamed text stays plain until finalized; markdown only
// runs on the complete message.
func renderStreaming(s chat.Streaming, width int, now time.Time) renderedBlock {
	frame := streamingCueFrames[int(now.UnixMilli()/streamingCuePeriod.Milliseconds())%len(streamingCueFrames)]
	elapsed := now.Sub(s.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	header := assistantHeaderStyle.Render("✦ assistant") +
		assistantMetaStyle.Render(" · "+s.StartedAt.Format("15:04:05")) +
		assistantMetaStyle.Render(fmt.Sprintf(" · %.0fs ", elapsed)) +
		streamingCueStyle.Render(frame)

	body := wordwrap.String(s.Text+streamingCursor, max(1, width))
	body = strings.TrimSuffix(body, streamingCursor) + streamingCursorStyle.Render(streamingCursor)
	lines := append([]string{header}, strings.Split(body, "\n")...)
	return renderedBlock{lines: lines}
}

// renderWelcome fills the chat region with a static welcome block,
// vertically centered.
func renderWelcome(width, height int) string {
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}
	content := []string{
		center(welcomeIconStyle.Render("✦")),
		"",
		center(welcomeTitleStyle.Render("Welcome to EasyCli")),
		"",
		center(welcomeBodyStyle.Render("Type a message to start chatting")),
		center(welcomeBodyStyle.Render("Type /help to see all commands")),
	}

	topPad := (height - len(content)) / 2
	if topPad < 0 {
		topPad = 0
	}
	lines := append(make([]string, topPad), content...)
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

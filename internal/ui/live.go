package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/config"
	"github.com/silanhu/easycli/internal/logging"
	"github.com/silanhu/easycli/internal/render"
)

// Display lifecycle states.
type displayState int

const (
	stateStopped displayState = iota
	stateRunning
	statePaused
)

// repaintInterval is the fixed repaint rate of the live display (10 Hz).
const repaintInterval = 100 * time.Millisecond

// DisplayConfig configures a live display.
type DisplayConfig struct {
	// Title is shown in the header region.
	Title string
	// Subtitle is shown dimmed next to the title (model name).
	Subtitle string
	// Input configures the footer input box.
	Input config.InputOptions
	// Markdown configures assistant message rendering.
	Markdown render.Options

	// Out defaults to os.Stdout.
	Out io.Writer
	// Size defaults to the real terminal size; injectable for tests.
	Size func() (width, height int, err error)
}

// Display owns the live region layout and the periodic repaint loop. It is
// the single mutation point for the message log during a live session;
// callers never touch the log directly, and all terminal output flows
// through it (or through its Pause scope).
type Display struct {
	mu sync.Mutex

	log      *chat.Log
	status   Status
	layout   *Layout
	inputBox *InputBox
	cfg      DisplayConfig

	state       displayState
	altScreen   bool
	inputText   string
	inputActive bool
	lastLines   int

	stop chan struct{}
	out  io.Writer
	term *termenv.Output
	now  func() time.Time
}

// NewDisplay creates a live display. Nothing is written until Start.
func NewDisplay(cfg DisplayConfig) *Display {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Size == nil {
		cfg.Size = func() (int, int, error) {
			return term.GetSize(int(os.Stdout.Fd()))
		}
	}
	d := &Display{
		log:      chat.NewLog(),
		status:   Ready(),
		inputBox: NewInputBox(cfg.Input),
		cfg:      cfg,
		out:      cfg.Out,
		term:     termenv.NewOutput(cfg.Out),
		now:      time.Now,
	}
	d.layout = NewLayout(
		Region{Name: "header", Fixed: 2},
		Region{Name: "chat"},
		Region{Name: "footer", Fixed: d.inputBox.Height(false)},
	)
	return d
}

// Log exposes the message log for read-only inspection (history saving).
func (d *Display) Log() *chat.Log {
	return d.log
}

// Start transitions Stopped -> Running and begins the periodic repaint.
// The alternate-screen preference is captured for pause/resume symmetry.
func (d *Display) Start(altScreen bool) error {
	d.mu.Lock()
	if d.state != stateStopped {
		d.mu.Unlock()
		return nil
	}
	d.altScreen = altScreen
	d.state = stateRunning
	d.stop = make(chan struct{})
	d.enterScreen()
	d.mu.Unlock()

	d.Repaint()

	go d.tickLoop(d.stop)
	return nil
}

// Stop halts the repaint loop and leaves the terminal in normal scroll
// mode so prior output stays visible. Idempotent.
func (d *Display) Stop() {
	d.mu.Lock()
	if d.state == stateStopped {
		d.mu.Unlock()
		return
	}
	close(d.stop)
	d.state = stateStopped
	d.leaveScreen()
	d.lastLines = 0
	d.mu.Unlock()
}

// Pause stops repainting, yields the terminal to fn, and resumes
// afterwards — including when fn panics. Entered from Running it always
// returns to Running; from any other state fn runs bare.
func (d *Display) Pause(fn func()) {
	d.mu.Lock()
	if d.state != stateRunning {
		d.mu.Unlock()
		fn()
		return
	}
	d.state = statePaused
	d.term.ShowCursor()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.state = stateRunning
		d.inputActive = false
		d.inputText = ""
		d.term.HideCursor()
		d.mu.Unlock()
		d.Repaint()
	}()
	fn()
}

func (d *Display) enterScreen() {
	if d.altScreen {
		d.term.AltScreen()
		d.term.ClearScreen()
	}
	d.term.HideCursor()
}

func (d *Display) leaveScreen() {
	d.term.ShowCursor()
	if d.altScreen {
		d.term.ExitAltScreen()
	} else {
		io.WriteString(d.out, "\r\n")
	}
}

func (d *Display) tickLoop(stop chan struct{}) {
	t := time.NewTicker(repaintInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			d.Repaint()
		}
	}
}

// Repaint composes and writes one frame. A no-op unless Running; the
// paused-read protocol is what keeps external output from interleaving
// with frames.
func (d *Display) Repaint() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateRunning {
		return
	}

	w, h, err := d.cfg.Size()
	if err != nil || w < 1 || h < 1 {
		w, h = 80, 24
	}

	d.layout.SetFixed("footer", d.inputBox.Height(d.inputActive))
	d.layout.Update("header", d.renderHeader(w))
	chatH := d.layout.SlotHeight("chat", h)
	d.layout.Update("chat", RenderTranscript(d.log, w, chatH, d.now(), d.cfg.Markdown))
	d.layout.Update("footer", d.inputBox.Render(d.status, d.inputText, d.inputActive, w))

	frame := d.layout.Frame(w, h)
	d.writeFrame(frame)
}

// writeFrame rewrites the frame in place: cursor back to the frame's first
// line, then each line clears its row before printing. One Write per
// frame keeps the repaint tear-free. Rows are separated by CRLF, not bare
// LF: during an inline read the terminal is raw (OPOST off), so LF alone
// would move down without returning to column 0 and stair-step the frame.
func (d *Display) writeFrame(frame string) {
	lines := strings.Split(frame, "\n")
	var b strings.Builder
	if d.lastLines > 1 {
		fmt.Fprintf(&b, "\x1b[%dF", d.lastLines-1)
	} else {
		b.WriteString("\r")
	}
	for i, line := range lines {
		b.WriteString("\x1b[2K")
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString("\r\n")
		}
	}
	io.WriteString(d.out, b.String())
	d.lastLines = len(lines)
}

func (d *Display) renderHeader(width int) string {
	title := headerStyle.Render(d.cfg.Title)
	if d.cfg.Subtitle != "" {
		title += headerHintStyle.Render("  ·  " + d.cfg.Subtitle)
	}
	return crop(title, width) + "\n" + ruleStyle.Render(strings.Repeat("─", width))
}

// AddUserMessage appends a user message and requests a repaint.
func (d *Display) AddUserMessage(text string) {
	d.mu.Lock()
	d.log.AddUser(text)
	d.status = Ready()
	d.mu.Unlock()
	d.Repaint()
}

// AddAssistantMessage appends a completed assistant message without a
// streaming phase (restoring a saved conversation).
func (d *Display) AddAssistantMessage(content string, createdAt time.Time, duration time.Duration) {
	d.mu.Lock()
	d.log.AddAssistant(content, createdAt, duration)
	d.mu.Unlock()
	d.Repaint()
}

// StartAssistantMessage begins a streaming assistant turn and flips the
// footer status to Typing.
func (d *Display) StartAssistantMessage() {
	d.mu.Lock()
	d.log.StartAssistant()
	d.status = Typing()
	d.mu.Unlock()
	d.Repaint()
}

// AppendStreamingChunk adds streamed text to the in-progress message. It
// deliberately does not force a repaint: the 10 Hz tick picks the change
// up, which keeps fast token arrival from turning into a repaint storm.
func (d *Display) AppendStreamingChunk(text string) {
	d.mu.Lock()
	d.log.AppendChunk(text)
	d.mu.Unlock()
}

// FinishAssistantMessage finalizes the streaming turn and returns the
// completed message when one was recorded.
func (d *Display) FinishAssistantMessage() (chat.Message, bool) {
	d.mu.Lock()
	msg, ok := d.log.FinishAssistant()
	d.status = Ready()
	d.mu.Unlock()
	d.Repaint()
	return msg, ok
}

// AbortAssistantMessage discards a half-finished stream (token-source
// failure) so it is never finalized as a successful turn.
func (d *Display) AbortAssistantMessage() {
	d.mu.Lock()
	d.log.DiscardStreaming()
	d.mu.Unlock()
	d.Repaint()
}

// Clear empties the transcript; the next repaint shows the welcome block.
func (d *Display) Clear() {
	d.mu.Lock()
	d.log.Clear()
	d.status = Ready()
	d.mu.Unlock()
	d.Repaint()
}

// Notify routes a transient message to the footer status line.
func (d *Display) Notify(msg string, sev Severity) {
	switch sev {
	case SeverityError:
		d.ShowError(msg)
	case SeveritySuccess:
		d.ShowSuccess(msg)
	default:
		d.setStatus(CustomStatus(msg))
	}
}

// ShowError displays an error in the footer status line.
func (d *Display) ShowError(msg string) {
	logging.Error("display error", "message", msg)
	d.setStatus(ErrorStatus(msg))
}

// ShowSuccess displays a success note in the footer status line.
func (d *Display) ShowSuccess(msg string) {
	d.setStatus(SuccessStatus(msg))
}

func (d *Display) setStatus(st Status) {
	d.mu.Lock()
	d.status = st
	d.mu.Unlock()
	d.Repaint()
}

// ReadInput acquires one line of input using the given strategy, growing
// the footer's input area while the user types and resetting it after.
func (d *Display) ReadInput(mode ReadMode) (string, error) {
	d.mu.Lock()
	d.inputActive = mode == ReadInline
	d.inputText = ""
	maxRows := 0
	if _, h, err := d.cfg.Size(); err == nil {
		maxRows = h / 2
	}
	d.mu.Unlock()

	onChange := func(buf string) {
		d.mu.Lock()
		d.inputText = buf
		if w, _, err := d.cfg.Size(); err == nil {
			d.inputBox.growFor(buf, w, maxRows)
		}
		d.mu.Unlock()
		d.Repaint()
	}

	line, err := d.inputBox.Read(mode, d, onChange)

	d.mu.Lock()
	d.inputActive = false
	d.inputText = ""
	d.inputBox.resetReserved()
	d.mu.Unlock()
	d.Repaint()

	return line, err
}

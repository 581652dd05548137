package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/silanhu/easycli/internal/config"
	apierrors "github.com/silanhu/easycli/internal/errors"
	"github.com/silanhu/easycli/internal/logging"
)

// ReadMode selects an input-acquisition strategy.
type ReadMode int

const (
	// ReadFooter pauses the repaint loop and performs a cooked line read
	// on the footer's input row. The terminal driver handles line editing
	// and IME composition, which makes this the default.
	ReadFooter ReadMode = iota
	// ReadInline reads raw characters one at a time, repainting the
	// footer after every keystroke.
	ReadInline
	// ReadPrompt pauses the display and prompts below the UI. Most
	// compatible fallback.
	ReadPrompt
)

// ParseReadMode maps a config/flag string to a ReadMode.
func ParseReadMode(s string) ReadMode {
	switch s {
	case config.InputInline:
		return ReadInline
	case config.InputPrompt:
		return ReadPrompt
	default:
		return ReadFooter
	}
}

func (m ReadMode) String() string {
	switch m {
	case ReadInline:
		return config.InputInline
	case ReadPrompt:
		return config.InputPrompt
	default:
		return config.InputFooter
	}
}

// InputBox renders the fixed footer (status / rule / input / rule /
// label+tips) and acquires user input.
type InputBox struct {
	opts     config.InputOptions
	reserved int // rows currently reserved for the input line

	in      io.Reader
	out     io.Writer
	makeRaw func() (restore func(), err error)

	// One buffered reader for the life of the box. A fresh bufio.Reader
	// per read could buffer past the returned line and drop type-ahead
	// between successive reads.
	rd    *bufio.Reader
	rdSrc io.Reader
}

// NewInputBox creates an input box with the given options.
func NewInputBox(opts config.InputOptions) *InputBox {
	if opts.FooterOffsetRows < 1 {
		opts.FooterOffsetRows = 1
	}
	if opts.ReservedInputRows < 1 {
		opts.ReservedInputRows = 1
	}
	return &InputBox{
		opts:     opts,
		reserved: opts.ReservedInputRows,
		in:       os.Stdin,
		out:      os.Stdout,
		makeRaw:  defaultMakeRaw,
	}
}

// Height reports the footer height in rows for the given input state.
func (b *InputBox) Height(active bool) int {
	if active {
		return 4 + b.reserved
	}
	return 5
}

// growFor widens the reserved input area to fit text wrapped at width,
// capped at maxRows. resetReserved undoes it after a read completes.
func (b *InputBox) growFor(text string, width, maxRows int) {
	need := len(strings.Split(wordwrap.String("> "+text, max(1, width)), "\n"))
	if need < b.opts.ReservedInputRows {
		need = b.opts.ReservedInputRows
	}
	if maxRows > 0 && need > maxRows {
		need = maxRows
	}
	b.reserved = need
}

func (b *InputBox) resetReserved() {
	b.reserved = b.opts.ReservedInputRows
}

// Render produces the footer block: status, rule, input (or placeholder),
// rule, and the label+tips row. Inactive renders are exactly 5 logical
// rows; an active read may grow the input row to the reserved count.
func (b *InputBox) Render(st Status, current string, active bool, width int) string {
	if width < 1 {
		width = 1
	}

	rows := []string{
		b.renderStatus(st, width),
		ruleStyle.Render(strings.Repeat("─", width)),
	}
	rows = append(rows, b.renderInput(current, active, width)...)
	rows = append(rows,
		ruleStyle.Render(strings.Repeat("─", width)),
		b.renderModeTips(width),
	)
	return strings.Join(rows, "\n")
}

func (b *InputBox) renderStatus(st Status, width int) string {
	var line string
	switch st.Kind {
	case StatusTyping:
		line = statusTypingStyle.Render("Typing...")
	case StatusError:
		line = statusErrorStyle.Render("✗ " + crop(st.Text, width-2))
	case StatusSuccess:
		line = statusSuccessStyle.Render("✓ " + crop(st.Text, width-2))
	case StatusCustom:
		line = crop(st.Text, width)
	default:
		line = statusReadyStyle.Render("Ready")
	}
	return line
}

func (b *InputBox) renderInput(current string, active bool, width int) []string {
	if !active {
		if current == "" {
			return []string{placeholderStyle.Render(crop("> "+b.opts.PlaceholderText, width))}
		}
		return []string{inputPromptStyle.Render(crop("> "+current, width))}
	}

	// Active: wrap across the reserved rows instead of cropping. When the
	// text outgrows the reservation the earliest rows scroll off.
	wrapped := strings.Split(wordwrap.String("> "+current, width), "\n")
	if len(wrapped) > b.reserved {
		wrapped = wrapped[len(wrapped)-b.reserved:]
	}
	rows := make([]string, 0, b.reserved)
	for _, l := range wrapped {
		rows = append(rows, inputPromptStyle.Render(l))
	}
	for len(rows) < b.reserved {
		rows = append(rows, "")
	}
	return rows
}

func (b *InputBox) renderModeTips(width int) string {
	left := b.opts.LeftLabel
	right := b.opts.TipsText

	lw := runewidth.StringWidth(left)
	rw := runewidth.StringWidth(right)
	gap := width - lw - rw
	if gap < 1 {
		right = crop(right, max(0, width-lw-1))
		gap = max(1, width-lw-runewidth.StringWidth(right))
	}
	return footerLabelStyle.Render(left) +
		strings.Repeat(" ", gap) +
		footerTipsStyle.Render(right)
}

// crop truncates s to the given display width.
func crop(s string, width int) string {
	if width < 1 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}

// Read acquires one line of input using the selected strategy. onChange is
// invoked with the in-progress buffer after each keystroke (inline mode
// only). The returned string is trimmed; read failures degrade to the
// buffer collected so far rather than propagating, except for a keyboard
// interrupt which surfaces errors.ErrInterrupted.
func (b *InputBox) Read(mode ReadMode, d *Display, onChange func(string)) (string, error) {
	switch mode {
	case ReadFooter:
		return b.readFooter(d)
	case ReadInline:
		return b.readInline(d, onChange)
	default:
		return b.readPrompt(d)
	}
}

// readPrompt delegates to a standard line prompt printed below the UI.
func (b *InputBox) readPrompt(d *Display) (string, error) {
	var line string
	pausedDo(d, func() {
		fmt.Fprint(b.out, "\n> ")
		line = b.readCookedLine()
	})
	return strings.TrimSpace(line), nil
}

// readFooter repositions the cursor onto the footer's input row and does a
// single cooked read there, so the terminal's own line editing (and IME
// composition) applies.
func (b *InputBox) readFooter(d *Display) (string, error) {
	var line string
	pausedDo(d, func() {
		// Up to the input row, then past the "> " prompt.
		fmt.Fprintf(b.out, "\x1b[%dA\r\x1b[2C", b.opts.FooterOffsetRows)
		line = b.readCookedLine()
		// Back to the bottom of the footer.
		fmt.Fprintf(b.out, "\x1b[%dB\r", b.opts.FooterOffsetRows)
	})
	return strings.TrimSpace(line), nil
}

func (b *InputBox) reader() *bufio.Reader {
	if b.rd == nil || b.rdSrc != b.in {
		b.rd = bufio.NewReader(b.in)
		b.rdSrc = b.in
	}
	return b.rd
}

func (b *InputBox) readCookedLine() string {
	line, err := b.reader().ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return line
}

// readInline reads raw characters, invoking onChange after every
// keystroke so the caller can repaint the footer live. The terminal mode
// is restored on every exit path. Raw-mode setup failure falls back to the
// prompt strategy.
func (b *InputBox) readInline(d *Display, onChange func(string)) (string, error) {
	restore, err := b.makeRaw()
	if err != nil {
		logging.Warn("inline input unavailable, falling back to prompt",
			"error", apierrors.NewInputError("inline", err))
		return b.readPrompt(d)
	}
	defer restore()

	var buf []rune
	notify := func() {
		if onChange != nil {
			onChange(string(buf))
		}
	}
	notify()

	r := b.reader()
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			// Best effort: hand back whatever was collected.
			return strings.TrimSpace(string(buf)), nil
		}

		switch {
		case ch == '\r' || ch == '\n':
			notify()
			return strings.TrimSpace(string(buf)), nil
		case ch == 0x08 || ch == 0x7f: // backspace / delete
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		case ch == 0x03: // Ctrl-C
			return "", apierrors.ErrInterrupted
		case ch == 0x1b: // swallow escape sequences (arrows etc.)
			for i := 0; i < 2 && r.Buffered() > 0; i++ {
				r.ReadByte()
			}
		case ch >= ' ':
			buf = append(buf, ch)
		}
		notify()
	}
}

// pausedDo runs fn under the display's pause scope, or directly when no
// display is attached (traditional mode, tests).
func pausedDo(d *Display, fn func()) {
	if d == nil {
		fn()
		return
	}
	d.Pause(fn)
}

func defaultMakeRaw() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, apierrors.ErrRawModeFailed
	}
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrRawModeFailed, err)
	}
	return func() { term.Restore(fd, st) }, nil
}

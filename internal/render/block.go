package render

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/silanhu/easycli/internal/logging"
)

// BlockKind tags the content variant carried by a Block.
type BlockKind int

const (
	// KindPlain renders the text verbatim, word-wrapped to width.
	KindPlain BlockKind = iota
	// KindMarkdown renders through glamour, falling back to plain.
	KindMarkdown
)

// Block is a renderable piece of message content. It replaces the loose
// "render anything" union of text vs markup: the variant is chosen once and
// the fallback order (Markdown -> Plain) is fixed.
type Block struct {
	Kind BlockKind
	Text string
}

// Plain creates a plain-text block.
func Plain(text string) Block {
	return Block{Kind: KindPlain, Text: text}
}

// MarkdownBlock creates a markdown block.
func MarkdownBlock(text string) Block {
	return Block{Kind: KindMarkdown, Text: text}
}

// Render produces terminal output wrapped to width. A markdown block whose
// render fails degrades to the plain rendering of the same text, so a bad
// document can never block a repaint.
func (b Block) Render(width int, opts Options) string {
	if width < 1 {
		width = 1
	}
	if b.Kind == KindMarkdown {
		out, err := Markdown(b.Text, opts.WithWidth(width))
		if err == nil {
			return strings.Trim(out, "\n")
		}
		logging.Debug("markdown render failed, using plain text", "error", err)
	}
	return wordwrap.String(b.Text, width)
}

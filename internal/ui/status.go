// Package ui implements the live chat display: the region layout, the
// transcript renderer, the footer input box, and the display driver that
// ties them together.
package ui

// StatusKind enumerates footer status-line states.
type StatusKind int

const (
	StatusReady StatusKind = iota
	StatusTyping
	StatusError
	StatusSuccess
	StatusCustom
)

// Status drives the footer status line.
type Status struct {
	Kind StatusKind
	Text string
}

// Ready is the idle status.
func Ready() Status { return Status{Kind: StatusReady} }

// Typing indicates an assistant response is streaming.
func Typing() Status { return Status{Kind: StatusTyping} }

// ErrorStatus shows an error message in the footer.
func ErrorStatus(text string) Status { return Status{Kind: StatusError, Text: text} }

// SuccessStatus shows a success message in the footer.
func SuccessStatus(text string) Status { return Status{Kind: StatusSuccess, Text: text} }

// CustomStatus shows arbitrary text in the footer.
func CustomStatus(text string) Status { return Status{Kind: StatusCustom, Text: text} }

// Severity classifies notifications routed through Display.Notify.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

package ui

import "github.com/charmbracelet/lipgloss"

// Base colors
var (
	colorPrimary  = lipgloss.Color("6")  // cyan
	colorAccent   = lipgloss.Color("3")  // yellow
	colorSuccess  = lipgloss.Color("2")  // green
	colorError    = lipgloss.Color("1")  // red
	colorText     = lipgloss.Color("7")  // light gray
	colorTextDim  = lipgloss.Color("8")  // dark gray
	colorUserMark = lipgloss.Color("4")  // blue
)

// Header styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	headerHintStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Transcript styles
var (
	// User messages: marker glyph + highlighted text
	userMarkerStyle = lipgloss.NewStyle().
			Foreground(colorUserMark).
			Bold(true)

	userTextStyle = lipgloss.NewStyle().
			Reverse(true)

	// Assistant metadata header line (role, time, duration)
	assistantHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	assistantMetaStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	// Streaming liveness indicator
	streamingCueStyle = lipgloss.NewStyle().
				Foreground(colorAccent)

	streamingCursorStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Blink(true)

	// Welcome block
	welcomeIconStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	welcomeTitleStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)

	welcomeBodyStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)
)

// Footer styles
var (
	statusReadyStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	statusTypingStyle = lipgloss.NewStyle().
				Foreground(colorSuccess)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	statusSuccessStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	ruleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	footerLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary)

	footerTipsStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

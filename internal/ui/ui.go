// Package ui provides terminal styling for rendered feature output. The
// renderer talks to it through the Styler function type only, so tests and
// batch file output can swap in Plain.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Kind selects a style: one of the step statuses, or tag/comment.
type Kind string

const (
	Passed    Kind = "passed"
	Failed    Kind = "failed"
	Skipped   Kind = "skipped"
	Undefined Kind = "undefined"
	Pending   Kind = "pending"
	Tag       Kind = "tag"
	Comment   Kind = "comment"
)

// Styler maps text to styled text for a given kind. Non-interactive output
// uses Plain, which returns the text unchanged.
type Styler func(text string, kind Kind) string

var (
	passedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	undefinedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	commentStyle   = lipgloss.NewStyle().Faint(true)
)

// Plain returns text unchanged.
func Plain(text string, _ Kind) string { return text }

// Colored styles text with the lipgloss style for kind.
func Colored(text string, kind Kind) string {
	switch kind {
	case Passed:
		return passedStyle.Render(text)
	case Failed:
		return failedStyle.Render(text)
	case Skipped:
		return skippedStyle.Render(text)
	case Undefined:
		return undefinedStyle.Render(text)
	case Pending:
		return pendingStyle.Render(text)
	case Tag:
		return tagStyle.Render(text)
	case Comment:
		return commentStyle.Render(text)
	}
	return text
}

// Mode determines when colored output is used.
type Mode int

const (
	Auto Mode = iota
	Always
	Never
)

// ParseMode converts a --color flag value. Unknown values fall back to Auto.
func ParseMode(s string) Mode {
	switch s {
	case "always":
		return Always
	case "never":
		return Never
	}
	return Auto
}

// Detect picks a Styler for w. Auto colors only when w is a terminal and
// NO_COLOR is unset; Always forces at least ANSI colors even when the
// environment reports no color support.
func Detect(w io.Writer, mode Mode) Styler {
	if os.Getenv("NO_COLOR") != "" && mode == Auto {
		mode = Never
	}
	switch mode {
	case Never:
		return Plain
	case Always:
		if termenv.ColorProfile() == termenv.Ascii {
			lipgloss.DefaultRenderer().SetColorProfile(termenv.ANSI)
		}
		return Colored
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return Colored
	}
	return Plain
}

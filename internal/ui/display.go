package ui

import (
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
)

const (
	// DefaultTermWidth is used when stdout is not a terminal.
	DefaultTermWidth = 120

	ellipsis = "..."

	// minFitWidth is the narrowest room Fit will fill.
	minFitWidth = 10
)

// DisplayContext describes the terminal results are printed to.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext inspects stdout.
func NewDisplayContext() *DisplayContext {
	fd := os.Stdout.Fd()
	d := &DisplayContext{TermWidth: DefaultTermWidth, IsTTY: term.IsTerminal(fd)}
	if d.IsTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			d.TermWidth = w
		}
	}
	return d
}

// NewDisplayContextWithWidth returns a non-TTY context of a fixed width.
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width}
}

// Fit truncates s to the columns left on a line that already holds prefix.
// It reports false when fewer than minFitWidth columns are left.
func (d *DisplayContext) Fit(prefix, s string) (string, bool) {
	room := d.TermWidth - ansi.StringWidth(prefix)
	if room < minFitWidth {
		return "", false
	}
	return Truncate(s, room), true
}

// Truncate shortens s to at most width display columns, ending the cut with
// "...". Escape sequences do not count towards the width.
func Truncate(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case ansi.StringWidth(s) <= width:
		return s
	case width <= len(ellipsis):
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, ellipsis)
}

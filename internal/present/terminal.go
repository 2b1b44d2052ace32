package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/aidanlsb/loclink/internal/search"
	"github.com/aidanlsb/loclink/internal/ui"
)

// LinkFunc builds a hyperlink target for a match, or "" for none.
type LinkFunc func(m search.Match) string

// Terminal prints search results, one "label" or "label:position" per line.
type Terminal struct {
	*Regions

	out     io.Writer
	display *ui.DisplayContext
	link    LinkFunc

	// Quiet suppresses the header line.
	Quiet bool
}

// NewTerminal creates a terminal presenter writing to out. link may be nil.
func NewTerminal(out io.Writer, display *ui.DisplayContext, link LinkFunc) *Terminal {
	if display == nil {
		display = ui.NewDisplayContext()
	}
	return &Terminal{
		Regions: NewRegions(),
		out:     out,
		display: display,
		link:    link,
	}
}

// Display prints the matches.
func (t *Terminal) Display(query string, matches []search.Match) {
	if !t.Quiet {
		if len(matches) == 0 {
			fmt.Fprintf(t.out, "No matches for %s\n", query)
			return
		}
		fmt.Fprintf(t.out, "%s %s\n", ui.Header(query), ui.Hint(ui.Count(len(matches), "match", "matches")))
	}

	for _, m := range matches {
		fmt.Fprintln(t.out, t.FormatLine(m))
	}
}

// Warn reports a partial search failure.
func (t *Terminal) Warn(query string, err error) {
	fmt.Fprintln(t.out, ui.Warningf("filesystem results for %s may be incomplete: %v", query, err))
}

// FormatLine renders a single match. Plain output (non-TTY) is exactly
// Match.String so that it can be consumed by other tools.
func (t *Terminal) FormatLine(m search.Match) string {
	if !t.display.IsTTY {
		return m.String()
	}

	line := ui.Label(m.Label)
	if pos, ok := m.Position(); ok {
		line += ui.Position(pos)
	}
	if t.link != nil {
		if target := t.link(m); target != "" {
			line = hyperlink(target, line)
		}
	}

	excerpt := strings.TrimSpace(m.Text)
	if excerpt != "" {
		if fitted, ok := t.display.Fit(m.String()+"  ", excerpt); ok {
			line += "  " + ui.Hint(fitted)
		}
	}
	return line
}

// hyperlink wraps text in an OSC 8 terminal hyperlink.
func hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x07" + text + "\x1b]8;;\x07"
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/loclink/internal/config"
	"github.com/aidanlsb/loclink/internal/search"
)

// hyperlinkEnabled caches the hyperlink decision for this run. Links go to
// terminals only, never to JSON output or pipes.
var hyperlinkEnabled *bool

// hyperlinksDisabled forces hyperlinks off for the current run (e.g. --no-links).
var hyperlinksDisabled bool

func setHyperlinksDisabled(disabled bool) {
	hyperlinksDisabled = disabled
	// Reset cached decision so changes take effect immediately.
	hyperlinkEnabled = nil
}

// shouldEmitHyperlinks reports whether OSC 8 hyperlinks are written.
func shouldEmitHyperlinks() bool {
	if hyperlinkEnabled != nil {
		return *hyperlinkEnabled
	}

	enabled := !jsonOutput && isatty.IsTerminal(os.Stdout.Fd()) && !hyperlinksDisabled
	hyperlinkEnabled = &enabled
	return enabled
}

// editorScheme is a URL scheme an editor registers for opening a file at a
// line. names are matched against the lowercased editor command.
type editorScheme struct {
	names  []string
	format func(absPath string, line int) string
}

var editorSchemes = []editorScheme{
	{names: []string{"cursor"}, format: func(p string, n int) string {
		return fmt.Sprintf("cursor://file%s:%d:1", p, n)
	}},
	{names: []string{"code", "vscode"}, format: func(p string, n int) string {
		return fmt.Sprintf("vscode://file%s:%d:1", p, n)
	}},
	{names: []string{"subl", "sublime"}, format: func(p string, n int) string {
		return fmt.Sprintf("subl://open?url=file://%s&line=%d", p, n)
	}},
	{names: []string{"idea", "goland", "webstorm", "pycharm", "phpstorm", "rider", "rubymine", "clion"}, format: func(p string, n int) string {
		return fmt.Sprintf("idea://open?file=%s&line=%d", p, n)
	}},
	{names: []string{"zed"}, format: func(p string, n int) string {
		return fmt.Sprintf("zed://file%s:%d", p, n)
	}},
}

// buildEditorURL builds a URL that opens absPath at line in the configured
// editor. Terminal editors and unknown ones get a plain file:// URL.
func buildEditorURL(cfg *config.Config, absPath string, line int) string {
	var editor string
	if cfg != nil {
		editor = strings.ToLower(cfg.GetEditor())
	}
	for _, scheme := range editorSchemes {
		for _, name := range scheme.names {
			if strings.Contains(editor, name) {
				return scheme.format(absPath, line)
			}
		}
	}
	return "file://" + absPath
}

// osc8 wraps text in a terminal hyperlink to url.
func osc8(url, text string) string {
	return "\x1b]8;;" + url + "\x07" + text + "\x1b]8;;\x07"
}

// locationLink renders "path:line" through render, wrapped in a hyperlink
// to the configured editor when hyperlinks are enabled. render may be nil.
func locationLink(path string, line int, render func(string) string) string {
	if render == nil {
		render = func(s string) string { return s }
	}
	location := fmt.Sprintf("%s:%d", path, line)
	if !shouldEmitHyperlinks() {
		return render(location)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return render(location)
	}
	return render(osc8(buildEditorURL(getConfig(), absPath, line), location))
}

// matchLinker returns a hyperlink builder for search results. Document
// matches are resolved to a line through docs.
func matchLinker(cfg *config.Config, docs staticDocuments) func(m search.Match) string {
	if !shouldEmitHyperlinks() {
		return nil
	}
	return func(m search.Match) string {
		line, ok := matchLine(m, docs)
		if !ok {
			return ""
		}
		return buildEditorURL(cfg, m.Label, line)
	}
}

// matchLine returns the 1-based line of a match.
func matchLine(m search.Match, docs staticDocuments) (int, bool) {
	if !m.HasPosition {
		return 0, false
	}
	if m.Source == search.SourceFile {
		return m.Line, true
	}
	text, ok := docs.text(m.Label)
	if !ok {
		return 0, false
	}
	return lineOf(text, m.Offset), true
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/editor"
	"github.com/aidanlsb/loclink/internal/search"
	"github.com/aidanlsb/loclink/internal/ui"
)

var (
	jumpKind  string
	jumpFirst bool
)

var jumpCmd = &cobra.Command{
	Use:   "jump <uuid>",
	Short: "Open the marker for a UUID in your editor",
	Long: `Search for the markers carrying a UUID and open one in your editor.

By default jump looks for the location marker, which is where a reference
points. With a single match the editor opens directly; with several, an fzf
picker is shown when fzf is installed and the terminal is interactive.

Examples:
  # Follow a reference to its location
  loclink jump 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb

  # Pick one of the references to a location
  loclink jump --kind ref 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb`,
	Args: cobra.ExactArgs(1),
	RunE: runJump,
}

func init() {
	jumpCmd.Flags().StringVar(&jumpKind, "kind", "loc", "Kind of marker to open (loc|ref)")
	jumpCmd.Flags().BoolVar(&jumpFirst, "first", false, "Open the first match without asking")
	rootCmd.AddCommand(jumpCmd)
}

// newLauncher is replaced in tests.
var newLauncher = func() (*editor.Launcher, error) {
	return editor.New(getConfig(), nil)
}

func runJump(cmd *cobra.Command, args []string) error {
	run, _, err := searchUUID(args[0], jumpKind, nil)
	if err != nil || run == nil {
		return err
	}
	if run.warning != nil && !isJSONOutput() {
		fmt.Println(ui.Warningf("filesystem results may be incomplete: %v", run.warning))
	}

	targets := jumpTargets(run.matches)
	if len(targets) == 0 {
		return handleErrorMsg(ErrNoMatches, fmt.Sprintf("no matches for %s", run.query), "Check search.root with 'loclink config show'")
	}

	chosen, ok, err := chooseTarget(run.query, targets)
	if err != nil {
		return handleError(ErrInternalError, err, "")
	}
	if !ok {
		if len(targets) > 1 && !canUseFZFInteractive() {
			details := make([]string, len(targets))
			for i, m := range targets {
				details[i] = m.String()
			}
			return handleErrorWithDetails(ErrAmbiguousMatch,
				fmt.Sprintf("%d matches for %s", len(targets), run.query),
				interactivePickerMissingArgSuggestion("jump", "loclink jump --first <uuid>"),
				details)
		}
		// Picker cancelled.
		return nil
	}

	launcher, err := newLauncher()
	if err != nil {
		return handleError(errorCode(err), err, suggestionFor(err))
	}
	if err := launcher.OpenAt(chosen.Label, chosen.Line); err != nil {
		return handleError(ErrEditorUnavailable, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"path":   chosen.Label,
			"line":   chosen.Line,
			"editor": launcher.Name(),
		}, &Meta{Count: len(targets)})
	}
	return nil
}

// jumpTargets keeps the matches an editor can open: files with a line.
func jumpTargets(matches []search.Match) []search.Match {
	var out []search.Match
	for _, m := range matches {
		if m.Source == search.SourceFile {
			out = append(out, m)
		}
	}
	return out
}

// chooseTarget picks one target. ok is false when the choice needs a picker
// that is unavailable, or the user cancelled the picker.
func chooseTarget(query string, targets []search.Match) (search.Match, bool, error) {
	if len(targets) == 1 || jumpFirst {
		return targets[0], true, nil
	}
	if !canUseFZFInteractive() {
		return search.Match{}, false, nil
	}

	lines := make([]string, len(targets))
	for i, m := range targets {
		// Fields: index, label, excerpt, then the path and line for the preview.
		lines[i] = fmt.Sprintf("%d\t%s\t%s\t%s\t%d", i, relPath(m.Label)+lineSuffix(m), strings.TrimSpace(m.Text), m.Label, m.Line)
	}
	accent, _ := ui.AccentColor()
	selected, ok, err := runFZFPicker(lines, fzfPickerOptions{
		Prompt:        "jump> ",
		Header:        query,
		Delimiter:     "\t",
		WithNth:       "2,3",
		Preview:       "cat {4}",
		PreviewWindow: "down,40%,+{5}-/2",
		Accent:        accent,
	})
	if err != nil || !ok {
		return search.Match{}, false, err
	}
	return pickedTarget(selected, targets)
}

// pickedTarget maps a picker line back to its target.
func pickedTarget(selected string, targets []search.Match) (search.Match, bool, error) {
	idx, _, _ := strings.Cut(selected, "\t")
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(targets) {
		return search.Match{}, false, fmt.Errorf("unexpected picker selection %q", selected)
	}
	return targets[i], true, nil
}

func lineSuffix(m search.Match) string {
	if !m.HasPosition {
		return ""
	}
	return ":" + strconv.Itoa(m.Line)
}

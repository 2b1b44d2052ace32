package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/present"
	"github.com/aidanlsb/loclink/internal/search"
	"github.com/aidanlsb/loclink/internal/ui"
)

var (
	searchKind  string
	searchOpen  []string
	searchQuiet bool
)

var searchCmd = &cobra.Command{
	Use:   "search <uuid>",
	Short: "Find the markers carrying a UUID",
	Long: `Search for location and reference markers carrying a UUID.

Files passed with --open are treated as open documents and searched first,
in memory; then the configured search tool (default ripgrep) searches
search.root on disk. Results are printed one per line as path:line (or
path:offset for open documents).

Examples:
  # Every marker for a UUID under search.root
  loclink search 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb

  # Only the location, also looking in two unsaved drafts
  loclink search --kind loc --open draft.md --open todo.md 2f402556-...

  # Plain output for scripts
  loclink search -q 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb | cut -d: -f1`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Only find markers of this kind (loc|ref)")
	searchCmd.Flags().StringArrayVar(&searchOpen, "open", nil, "Treat a file as an open document (repeatable)")
	searchCmd.Flags().BoolVarP(&searchQuiet, "quiet", "q", false, "Print matches only, without a header")
	rootCmd.AddCommand(searchCmd)
}

// matchResult is the JSON shape of one match.
type matchResult struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Line   int    `json:"line,omitempty"`
	Offset *int   `json:"offset,omitempty"`
	Text   string `json:"text,omitempty"`
}

// searchRun holds the outcome of one UUID search.
type searchRun struct {
	query   string
	pattern string
	docs    staticDocuments
	matches []search.Match
	warning error // partial failure of the filesystem search
	elapsed time.Duration
}

func runSearch(cmd *cobra.Command, args []string) error {
	run, warnings, err := searchUUID(args[0], searchKind, searchOpen)
	if err != nil || run == nil {
		return err
	}

	if isJSONOutput() {
		if run.warning != nil {
			warnings = append(warnings, Warning{Code: errorCode(run.warning), Message: run.warning.Error()})
		}
		outputSuccessWithWarnings(map[string]interface{}{
			"query":   run.query,
			"pattern": run.pattern,
			"matches": matchResults(run.matches, run.docs),
		}, warnings, &Meta{Count: len(run.matches), SearchTimeMs: run.elapsed.Milliseconds()})
		return nil
	}

	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, ui.Warning(w.Message))
	}
	term := present.NewTerminal(os.Stdout, ui.NewDisplayContext(), matchLinker(getConfig(), run.docs))
	term.Quiet = searchQuiet
	term.Display(run.query, run.matches)
	if run.warning != nil {
		term.Warn(run.query, run.warning)
	}
	return nil
}

// searchUUID validates the arguments and runs the search. A failing
// filesystem search is not an error: its matches are dropped and the failure
// is reported in searchRun.warning. In JSON mode errors are written to stdout
// and a nil run is returned with a nil error.
func searchUUID(uuid, kind string, open []string) (*searchRun, []Warning, error) {
	if !marker.IsUUID(uuid) {
		return nil, nil, handleErrorMsg(ErrInvalidInput, fmt.Sprintf("not a UUID: %q", uuid), "Markers look like (loc 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb)")
	}
	kinds, err := parseKinds(kind)
	if err != nil {
		return nil, nil, handleError(ErrInvalidInput, err, "")
	}

	c := getConfig()
	docs, warnings, err := loadDocuments(open, newFilter(c))
	if err != nil {
		return nil, nil, handleError(errorCode(err), err, "")
	}
	agg, err := newAggregator(c, docs)
	if err != nil {
		return nil, nil, handleSearchError(err)
	}

	run := &searchRun{query: uuid, pattern: patternFor(uuid, kinds), docs: docs}
	if len(kinds) == 1 {
		run.query = kinds[0].Literal(uuid)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var spinner *ui.Spinner
	if !isJSONOutput() {
		spinner = ui.NewSpinner(fmt.Sprintf("Searching %s...", agg.Root()))
		spinner.Start()
	}
	start := time.Now()
	run.matches, err = agg.Search(ctx, run.pattern)
	run.elapsed = time.Since(start)
	if spinner != nil {
		spinner.Stop()
	}

	if err != nil {
		var toolErr *search.ExternalToolError
		switch {
		case errors.Is(err, context.Canceled):
			return nil, nil, handleErrorMsg(ErrInternalError, "search cancelled", "")
		case errors.As(err, &toolErr):
			run.warning = err
		default:
			return nil, nil, handleSearchError(err)
		}
	}
	return run, warnings, nil
}

func matchResults(matches []search.Match, docs staticDocuments) []matchResult {
	out := make([]matchResult, 0, len(matches))
	for _, m := range matches {
		r := matchResult{Source: m.Source.String(), Path: m.Label, Text: m.Text}
		if line, ok := matchLine(m, docs); ok {
			r.Line = line
		}
		if m.Source == search.SourceDocument && m.HasPosition {
			offset := m.Offset
			r.Offset = &offset
		}
		out = append(out, r)
	}
	return out
}

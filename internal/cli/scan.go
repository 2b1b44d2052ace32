package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/ui"
)

var scanKind string

var scanCmd = &cobra.Command{
	Use:   "scan <file>...",
	Short: "List the markers in files",
	Long: `Extract and print every location and reference marker in the given files.

Each marker is printed as path:line, followed by its kind and UUID. Files
that are not text-like (see 'extensions' in the config file) are skipped.

Examples:
  loclink scan notes/*.md
  loclink scan --kind ref journal.md
  loclink scan --json notes/index.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanKind, "kind", "", "Only list markers of this kind (loc|ref)")
	rootCmd.AddCommand(scanCmd)
}

// scannedMarker is the JSON shape of one marker.
type scannedMarker struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	UUID  string `json:"uuid"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
}

func runScan(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(scanKind)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	docs, warnings, err := loadDocuments(args, newFilter(getConfig()))
	if err != nil {
		return handleError(errorCode(err), err, "")
	}

	results := scanDocuments(docs, kinds)

	if isJSONOutput() {
		outputSuccessWithWarnings(map[string]interface{}{
			"markers": results,
		}, warnings, &Meta{Count: len(results)})
		return nil
	}

	for _, w := range warnings {
		fmt.Println(ui.Warning(w.Message))
	}
	if len(results) == 0 {
		fmt.Println(ui.Hint("No markers found."))
		return nil
	}

	display := ui.NewDisplayContext()
	for _, r := range results {
		loc := locationLink(r.Path, r.Line, ui.Label)
		line := fmt.Sprintf("%s  %-9s %s", loc, r.Kind, r.UUID)
		if display.IsTTY {
			line = fmt.Sprintf("%s  %s %s", loc, ui.MarkerKind(r.Kind), ui.Bold.Render(r.UUID))
		}
		fmt.Println(line)
	}
	return nil
}

// scanDocuments extracts markers of kinds from docs, ordered by document and
// then by position within it.
func scanDocuments(docs []document.Document, kinds []marker.Kind) []scannedMarker {
	want := make(map[marker.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	var out []scannedMarker
	for _, doc := range docs {
		ex := marker.Extract(doc)
		ms := append(append([]marker.Marker{}, ex.Locations...), ex.References...)
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Interval.Start() < ms[j].Interval.Start() })

		text := doc.Text()
		path := relPath(string(doc.ID()))
		for _, m := range ms {
			if !want[m.Kind] {
				continue
			}
			out = append(out, scannedMarker{
				Path:  path,
				Kind:  m.Kind.String(),
				UUID:  m.UUID,
				Start: m.Interval.Start(),
				End:   m.Interval.End(),
				Line:  lineOf(text, m.Interval.Start()),
				Text:  m.Interval.Text(),
			})
		}
	}
	return out
}

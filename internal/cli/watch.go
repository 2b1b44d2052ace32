package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/config"
	"github.com/aidanlsb/loclink/internal/index"
	"github.com/aidanlsb/loclink/internal/registry"
	"github.com/aidanlsb/loclink/internal/search"
	"github.com/aidanlsb/loclink/internal/ui"
	"github.com/aidanlsb/loclink/internal/watcher"
)

var watchCheck bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and reindex markers as files change",
	Long: `Watch a directory for file changes and keep a marker index of every
text-like file under it.

This runs in the foreground and reports every reindex. Each eligible file is
treated as an open document:
- New files are indexed immediately
- Edits are debounced (see 'debounce' in the config file)
- Removed files are forgotten
- Directories named in ignore_dirs (default .git, node_modules, ...) are skipped

With --check, references whose location is not in any watched file are
reported after each reindex.

Examples:
  # Watch the current directory
  loclink watch

  # Watch a notes tree and report dangling references
  loclink watch ~/notes --check

  # Machine-readable event stream
  loclink watch --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchCheck, "check", false, "Report references with no location in the watched tree")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if err := applyProjectConfig(getConfigUnlayered(), dir); err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	c := getConfig()
	log := getLogger()

	delay, err := c.DebounceDelay()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	w, err := watcher.New(watcher.Config{
		Root:       dir,
		Filter:     newFilter(c),
		IgnoreDirs: c.IgnoreDirs,
		Logger:     log,
	})
	if err != nil {
		return handleError(ErrFileNotFound, err, "")
	}

	out := &watchReporter{out: os.Stdout, json: isJSONOutput()}
	reg, err := registry.New(registry.Config{
		Host:   w,
		Delay:  delay,
		Logger: log,
		OnReindex: func(ix *index.Index) {
			out.reindexed(ix, relPath(string(ix.Document)))
		},
	})
	if err != nil {
		return handleError(ErrInternalError, err, "")
	}

	var check *search.Aggregator
	if watchCheck {
		// Only the watched tree is searched.
		check, err = search.NewAggregator(reg, nil, search.Options{Root: w.Root(), Logger: log})
		if err != nil {
			return handleError(ErrInternalError, err, "")
		}
	}

	loaded, err := w.Load()
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}

	ctx, cancel := signalContext()
	defer cancel()

	reg.Init()
	defer reg.Close()
	out.ready(w.Root(), loaded, reg.Indexes(), check)

	// Start watching
	if err := w.Start(ctx, reg); err != nil {
		return handleError(ErrInternalError, err, "")
	}
	if !out.json {
		fmt.Fprintln(os.Stdout, "\nStopped watching.")
	}
	return nil
}

// getConfigUnlayered returns the global config without any project layer, so
// that watch can apply the project file of the watched tree instead of the
// working directory's.
func getConfigUnlayered() *config.Config {
	if globalCfg == nil {
		return getConfig()
	}
	return globalCfg
}

// Event names of watch --json output, one JSON object per line.
const (
	watchEventReady     = "ready"
	watchEventReindexed = "reindexed"
	watchEventDangling  = "dangling"
)

type watchEvent struct {
	Event      string   `json:"event"`
	Path       string   `json:"path"`
	Version    int      `json:"version,omitempty"`
	Files      int      `json:"files,omitempty"`
	Locations  int      `json:"locations"`
	References int      `json:"references"`
	Dangling   []string `json:"dangling,omitempty"`
}

// watchReporter prints reindex events. It is called from timer goroutines.
// Reindexes during the initial load are summarized rather than printed.
type watchReporter struct {
	mu      sync.Mutex
	out     io.Writer
	json    bool
	started bool
	check   *search.Aggregator
}

// ready prints the initial summary and enables per-event output.
func (r *watchReporter) ready(root string, files int, indexes []*index.Index, check *search.Aggregator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.check = check
	r.started = true

	locations, references := 0, 0
	for _, ix := range indexes {
		locations += len(ix.Locations)
		references += len(ix.References)
	}

	if r.json {
		r.emit(watchEvent{Event: watchEventReady, Path: root, Files: files, Locations: locations, References: references})
	} else {
		fmt.Fprintf(r.out, "Watching %s (%s: %s, %s)\n", root,
			ui.Count(files, "file", "files"),
			ui.Count(locations, "location", "locations"),
			ui.Count(references, "reference", "references"),
		)
		fmt.Fprintln(r.out, ui.Hint("Press Ctrl+C to stop"))
	}

	if r.check == nil {
		return
	}
	for _, ix := range indexes {
		if dangling := r.dangling(ix); len(dangling) > 0 {
			r.print(watchEvent{Event: watchEventDangling, Path: relPath(string(ix.Document)), Dangling: dangling})
		}
	}
}

func (r *watchReporter) reindexed(ix *index.Index, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}

	ev := watchEvent{
		Event:      watchEventReindexed,
		Path:       path,
		Version:    ix.Version,
		Locations:  len(ix.Locations),
		References: len(ix.References),
	}
	if r.check != nil {
		ev.Dangling = r.dangling(ix)
	}
	r.print(ev)
}

func (r *watchReporter) print(ev watchEvent) {
	if r.json {
		r.emit(ev)
		return
	}
	if ev.Event == watchEventReindexed {
		fmt.Fprintf(r.out, "%s %s  %s, %s\n",
			ui.SymbolSuccess,
			ui.Label(ev.Path),
			ui.Count(ev.Locations, "location", "locations"),
			ui.Count(ev.References, "reference", "references"),
		)
	} else {
		fmt.Fprintf(r.out, "%s %s\n", ui.SymbolWarning, ui.Label(ev.Path))
	}
	for _, uuid := range ev.Dangling {
		fmt.Fprintf(r.out, "  %s\n", ui.Warningf("no location for (ref %s)", uuid))
	}
}

func (r *watchReporter) emit(ev watchEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintln(r.out, string(data))
}

// dangling lists the UUIDs of references in ix whose location is not in any
// open document, in first-match order without duplicates.
func (r *watchReporter) dangling(ix *index.Index) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range ix.References {
		if seen[m.UUID] {
			continue
		}
		seen[m.UUID] = true
		matches, err := r.check.SearchDocuments(m.PartnerPattern())
		if err == nil && len(matches) == 0 {
			out = append(out, m.UUID)
		}
	}
	return out
}

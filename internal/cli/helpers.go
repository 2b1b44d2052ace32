package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/aidanlsb/loclink/internal/config"
	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/search"
)

// staticDocuments is a fixed set of open documents, used by the one-shot
// commands that treat named files as open.
type staticDocuments []document.Document

func (s staticDocuments) Documents() []document.Document { return s }

// text returns the text of the document with the given ID.
func (s staticDocuments) text(id string) (string, bool) {
	for _, d := range s {
		if string(d.ID()) == id {
			return d.Text(), true
		}
	}
	return "", false
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newFilter(c *config.Config) *document.Filter {
	return document.NewFilter(c.Extensions, c.LanguageIDs)
}

// newFileSearcher checks the configured tool is installed and returns a
// ripgrep searcher for it.
func newFileSearcher(c *config.Config) (*search.Ripgrep, error) {
	tool := c.SearchTool()
	if err := search.RequireTool(tool); err != nil {
		return nil, err
	}
	return search.NewRipgrep(tool, c.Search.Args, getLogger()), nil
}

func searchOptions(c *config.Config) (search.Options, error) {
	root, err := c.SearchRoot()
	if err != nil {
		return search.Options{}, err
	}
	timeout, err := c.SearchTimeout()
	if err != nil {
		return search.Options{}, err
	}
	return search.Options{Root: root, Timeout: timeout, Logger: getLogger()}, nil
}

// newAggregator wires the configured filesystem search to docs.
func newAggregator(c *config.Config, docs search.DocumentSource) (*search.Aggregator, error) {
	files, err := newFileSearcher(c)
	if err != nil {
		return nil, err
	}
	opts, err := searchOptions(c)
	if err != nil {
		return nil, err
	}
	return search.NewAggregator(docs, files, opts)
}

// loadDocuments reads paths into buffers keyed by absolute path. Ineligible
// files are skipped with a warning; unreadable files are an error.
func loadDocuments(paths []string, filter *document.Filter) (staticDocuments, []Warning, error) {
	var docs staticDocuments
	var warnings []Warning
	seen := make(map[string]bool)

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		id := document.ID(abs)
		if err := filter.Classify(id, ""); err != nil {
			warnings = append(warnings, Warning{Code: ErrFileIneligible, Message: err.Error(), Path: p})
			continue
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		docs = append(docs, document.NewBuffer(id, "", string(data), 1))
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	return docs, warnings, nil
}

// lineOf returns the 1-based line holding the byte offset.
func lineOf(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}

// parseKinds parses a --kind value. Empty selects every kind.
func parseKinds(raw string) ([]marker.Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return marker.Kinds(), nil
	}
	k, err := marker.ParseKind(raw)
	if err != nil {
		return nil, err
	}
	return []marker.Kind{k}, nil
}

// patternFor builds one search pattern matching uuid as any of kinds.
func patternFor(uuid string, kinds []marker.Kind) string {
	patterns := make([]string, len(kinds))
	for i, k := range kinds {
		patterns[i] = k.PatternFor(uuid)
	}
	return strings.Join(patterns, "|")
}

func relPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
)

// DefaultTimeout bounds a single filesystem search.
const DefaultTimeout = 30 * time.Second

const defaultCacheSize = 128

// DocumentSource lists the documents currently open and tracked.
type DocumentSource interface {
	Documents() []document.Document
}

// Options configures an Aggregator.
type Options struct {
	// Root is the directory searched on disk. Defaults to the user's home directory.
	Root string
	// Timeout bounds the filesystem search. Zero disables the bound.
	Timeout time.Duration
	// CacheSize is the number of compiled patterns kept. Defaults to 128.
	CacheSize int
	Logger    *slog.Logger
}

// Aggregator merges matches from open documents and from the filesystem.
type Aggregator struct {
	docs    DocumentSource
	files   FileSearcher
	root    string
	timeout time.Duration
	cache   *lru.Cache[string, *regexp.Regexp]
	logger  *slog.Logger
}

// NewAggregator creates an aggregator. files may be nil, in which case only
// open documents are searched.
func NewAggregator(docs DocumentSource, files FileSearcher, opts Options) (*Aggregator, error) {
	root := opts.Root
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search root: %w", err)
		}
		root = home
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		docs:    docs,
		files:   files,
		root:    root,
		timeout: opts.Timeout,
		cache:   cache,
		logger:  logger,
	}, nil
}

// Root returns the filesystem search root.
func (a *Aggregator) Root() string {
	return a.root
}

// Search returns every match for pattern: open documents first (in the
// source's order, then by position), then filesystem matches in the order the
// tool emitted them. There is no ranking, deduplication or limit.
//
// If the filesystem search fails, the document matches are returned together
// with an *ExternalToolError.
func (a *Aggregator) Search(ctx context.Context, pattern string) ([]Match, error) {
	re, err := a.compile(pattern)
	if err != nil {
		return nil, err
	}

	var (
		inMemory []Match
		onDisk   []Match
		diskErr  error
		g        errgroup.Group
	)

	g.Go(func() error {
		inMemory = a.searchDocuments(re)
		return nil
	})
	if a.files != nil {
		g.Go(func() error {
			onDisk, diskErr = a.searchFiles(ctx, pattern)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]Match, 0, len(inMemory)+len(onDisk))
	results = append(results, inMemory...)
	results = append(results, onDisk...)

	a.logger.Debug("search complete",
		"pattern", pattern,
		"documents", len(inMemory),
		"files", len(onDisk),
	)

	return results, diskErr
}

// SearchComplement searches for the partners of m and returns the pattern used.
func (a *Aggregator) SearchComplement(ctx context.Context, m marker.Marker) (string, []Match, error) {
	pattern := m.PartnerPattern()
	matches, err := a.Search(ctx, pattern)
	return pattern, matches, err
}

// SearchDocuments scans only the open documents.
func (a *Aggregator) SearchDocuments(pattern string) ([]Match, error) {
	re, err := a.compile(pattern)
	if err != nil {
		return nil, err
	}
	return a.searchDocuments(re), nil
}

func (a *Aggregator) searchDocuments(re *regexp.Regexp) []Match {
	if a.docs == nil {
		return nil
	}

	var matches []Match
	for _, doc := range a.docs.Documents() {
		text := doc.Text()
		for _, loc := range re.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{
				Source:      SourceDocument,
				Label:       string(doc.ID()),
				Offset:      loc[0],
				HasPosition: true,
				Text:        text[loc[0]:loc[1]],
			})
		}
	}
	return matches
}

func (a *Aggregator) searchFiles(ctx context.Context, pattern string) ([]Match, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	matches, err := a.files.Search(ctx, pattern, a.root)
	if err != nil {
		a.logger.Warn("filesystem search failed",
			"pattern", pattern,
			"root", a.root,
			"error", err,
		)
		return nil, err
	}
	a.logger.Debug("filesystem search",
		"root", a.root,
		"matches", len(matches),
		"elapsed", time.Since(start),
	)
	return matches, nil
}

func (a *Aggregator) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := a.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	a.cache.Add(pattern, re)
	return re, nil
}

// Package watcher keeps the registry in sync with text files on disk.
//
// It is the host behind `loclink watch`: every eligible file under the root
// is treated as an open document, and filesystem events are reported to the
// registry as creations and mutations.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/registry"
)

// DefaultIgnoreDirs are directory names that are never watched.
var DefaultIgnoreDirs = []string{".git", ".hg", ".svn", ".trash", "node_modules"}

// DefaultMaxFileSize is the largest file loaded into memory.
const DefaultMaxFileSize = 4 << 20

// Observer receives document events. *registry.Registry implements it.
type Observer interface {
	Observe(kind registry.EventKind, doc document.Document)
	Forget(id document.ID)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Root        string
	Filter      *document.Filter // Default: document.NewFilter(nil, nil)
	IgnoreDirs  []string         // Default: DefaultIgnoreDirs
	MaxFileSize int64            // Default: DefaultMaxFileSize
	Logger      *slog.Logger
}

// Watcher monitors a directory tree and serves its files as documents.
type Watcher struct {
	root        string
	filter      *document.Filter
	ignore      map[string]bool
	maxFileSize int64
	logger      *slog.Logger

	fsWatcher *fsnotify.Watcher

	mu    sync.RWMutex
	files map[string]*document.Buffer
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	filter := cfg.Filter
	if filter == nil {
		filter = document.NewFilter(nil, nil)
	}
	dirs := cfg.IgnoreDirs
	if len(dirs) == 0 {
		dirs = DefaultIgnoreDirs
	}
	ignore := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		ignore[d] = true
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		root:        root,
		filter:      filter,
		ignore:      ignore,
		maxFileSize: maxSize,
		logger:      logger.With("component", "watcher"),
		files:       make(map[string]*document.Buffer),
	}, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Load reads every eligible file under the root. It returns the number of
// files loaded.
func (w *Watcher) Load() (int, error) {
	n := 0
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if d.IsDir() {
			if path != w.root && w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := w.load(path); err == nil {
			n++
		}
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to walk %s: %w", w.root, err)
	}
	return n, nil
}

// Classify implements registry.Host.
func (w *Watcher) Classify(doc document.Document) error {
	return w.filter.Classify(doc.ID(), "")
}

// Live implements registry.Host.
func (w *Watcher) Live(doc document.Document) bool {
	buf, ok := doc.(*document.Buffer)
	if !ok || buf.Closed() {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[string(buf.ID())] == buf
}

// Open implements registry.Host. Documents are ordered by path.
func (w *Watcher) Open() []document.Document {
	w.mu.RLock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	docs := make([]document.Document, len(paths))
	for i, path := range paths {
		docs[i] = w.files[path]
	}
	w.mu.RUnlock()
	return docs
}

// Start begins watching the root for file changes and reports them to obs.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context, obs Observer) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	w.logger.Debug("watching", "root", w.root)

	// Event loop
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, obs)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event, obs Observer) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}

	w.logger.Debug("event", "op", event.Op.String(), "path", path)

	switch {
	case event.Op&fsnotify.Create != 0:
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.addDirectory(path, obs)
			return
		}
		w.created(path, obs)
	case event.Op&fsnotify.Write != 0:
		w.written(path, obs)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.removed(path, obs)
	}
}

func (w *Watcher) created(path string, obs Observer) {
	buf, err := w.load(path)
	if err != nil {
		if !errors.Is(err, document.ErrIneligible) {
			w.logger.Debug("skipping file", "path", path, "error", err)
		}
		return
	}
	obs.Observe(registry.Created, buf)
}

func (w *Watcher) written(path string, obs Observer) {
	w.mu.RLock()
	buf, ok := w.files[path]
	w.mu.RUnlock()
	if !ok {
		w.created(path, obs)
		return
	}

	content, err := w.read(path)
	if err != nil {
		w.logger.Debug("failed to reload file", "path", path, "error", err)
		return
	}
	buf.SetText(content, buf.Version()+1)
	obs.Observe(registry.Mutated, buf)
}

// removed forgets path, or every file under it if it was a directory.
func (w *Watcher) removed(path string, obs Observer) {
	prefix := path + string(filepath.Separator)

	w.mu.Lock()
	var gone []*document.Buffer
	for p, buf := range w.files {
		if p == path || strings.HasPrefix(p, prefix) {
			gone = append(gone, buf)
			delete(w.files, p)
		}
	}
	w.mu.Unlock()

	for _, buf := range gone {
		buf.Close()
		obs.Forget(buf.ID())
	}
}

// addDirectory watches a new directory and reports the files already in it.
func (w *Watcher) addDirectory(dir string, obs Observer) {
	if w.shouldIgnoreDir(dir) {
		return
	}
	if w.fsWatcher != nil {
		if err := w.addWatchRecursive(dir); err != nil {
			w.logger.Debug("failed to watch directory", "path", dir, "error", err)
		}
	}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		w.created(path, obs)
		return nil
	})
}

// load reads an eligible file into a fresh buffer, replacing any previous one.
func (w *Watcher) load(path string) (*document.Buffer, error) {
	id := document.ID(path)
	if err := w.filter.Classify(id, ""); err != nil {
		return nil, err
	}
	content, err := w.read(path)
	if err != nil {
		return nil, err
	}

	buf := document.NewBuffer(id, "", content, 1)
	w.mu.Lock()
	if prev, ok := w.files[path]; ok {
		prev.Close()
	}
	w.files[path] = buf
	w.mu.Unlock()
	return buf, nil
}

func (w *Watcher) read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", path)
	}
	if info.Size() > w.maxFileSize {
		return "", fmt.Errorf("file too large (%d bytes): %s", info.Size(), path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if d.IsDir() {
			if path != w.root && w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Debug("failed to watch", "path", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnore returns true if any path component below the root is ignored.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}

	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignore[part] {
			return true
		}
	}
	return false
}

// shouldIgnoreDir returns true if the directory should not be watched.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	return w.ignore[filepath.Base(path)]
}

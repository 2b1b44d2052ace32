// Package registry tracks every open document and keeps its marker index fresh.
//
// Hosts report document events through Observe. A created document is
// reindexed immediately; a mutated document is reindexed once it has been
// idle for the debounce delay. Each document has at most one pending reindex.
package registry

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aidanlsb/loclink/internal/debounce"
	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/index"
	"github.com/aidanlsb/loclink/internal/present"
)

// DefaultDelay is the quiescence delay before a mutated document is reindexed.
const DefaultDelay = time.Second

// EventKind is the kind of host notification.
type EventKind int

const (
	Created EventKind = iota
	Mutated
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Mutated:
		return "mutated"
	default:
		return "unknown"
	}
}

// Host is the host editor (or watcher) the registry serves.
type Host interface {
	// Classify returns nil for text-like documents, or an error wrapping
	// document.ErrIneligible.
	Classify(doc document.Document) error
	// Live reports whether the handle still refers to an open document.
	Live(doc document.Document) bool
	// Open lists every currently open document.
	Open() []document.Document
}

// Config holds construction options for a Registry.
type Config struct {
	Host      Host
	Presenter present.Presenter // Default: present.Discard
	Activate  present.Activator // Bound to each marker's region; may be set later via SetActivator
	Delay     time.Duration     // Default: DefaultDelay
	Logger    *slog.Logger

	// OnReindex is called after every reindex, outside the registry lock.
	OnReindex func(ix *index.Index)
}

type entry struct {
	doc      document.Document
	eligible bool
	index    *index.Index
	// gen is bumped whenever a reindex is scheduled or run. A deferred
	// reindex carries the gen it was scheduled with and is dropped if it
	// no longer matches.
	gen uint64
}

// Registry owns all per-document state. It is safe for concurrent use; all
// reindexing is serialized by a single mutex.
type Registry struct {
	host      Host
	presenter present.Presenter
	logger    *slog.Logger
	onReindex func(ix *index.Index)

	mu       sync.Mutex
	activate present.Activator
	entries  map[document.ID]*entry
	timers   *debounce.Scheduler[document.ID]
	seq      uint64
	closed   bool
}

// New creates a Registry.
func New(cfg Config) (*Registry, error) {
	if cfg.Host == nil {
		return nil, errors.New("host is required")
	}

	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	p := cfg.Presenter
	if p == nil {
		p = present.Discard{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		host:      cfg.Host,
		presenter: p,
		logger:    logger,
		onReindex: cfg.OnReindex,
		activate:  cfg.Activate,
		entries:   make(map[document.ID]*entry),
		timers:    debounce.New[document.ID](delay),
	}, nil
}

// SetActivator binds the activation callback used by later reindexes.
// The Search Aggregator depends on the Registry, so hosts usually build the
// Registry first and bind the activator once the aggregator exists.
func (r *Registry) SetActivator(activate present.Activator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activate = activate
}

// Delay returns the debounce delay.
func (r *Registry) Delay() time.Duration {
	return r.timers.Delay()
}

// Init treats every currently open document as created.
func (r *Registry) Init() {
	for _, doc := range r.host.Open() {
		r.Observe(Created, doc)
	}
}

// Observe handles a host notification. Ineligible documents are skipped silently.
func (r *Registry) Observe(kind EventKind, doc document.Document) {
	if doc == nil {
		return
	}
	if err := r.host.Classify(doc); err != nil {
		if !errors.Is(err, document.ErrIneligible) {
			r.logger.Warn("failed to classify document", "document", doc.ID(), "error", err)
		}
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	e := r.entryLocked(doc)

	switch kind {
	case Created:
		r.timers.Cancel(e.doc.ID())
		r.bumpLocked(e)
		ix := r.reindexLocked(e)
		r.mu.Unlock()
		r.notify(ix)
		return
	case Mutated:
		id, gen := e.doc.ID(), r.bumpLocked(e)
		r.timers.Schedule(id, func() { r.fire(id, gen) })
		r.logger.Debug("reindex scheduled", "document", id, "delay", r.timers.Delay())
	default:
		r.logger.Warn("unknown document event", "kind", int(kind), "document", doc.ID())
	}
	r.mu.Unlock()
}

// Forget drops a document's entry and any pending reindex, and clears its
// activatable regions. Hosts call it when a document is closed.
func (r *Registry) Forget(id document.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timers.Cancel(id)
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	r.presenter.Reset(id)
	r.logger.Debug("document forgotten", "document", id)
}

// Close cancels every pending reindex. Indexes are kept; later events are ignored.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.timers.Stop()
}

// Index returns the current index for a document, or nil if it is not tracked.
func (r *Registry) Index(id document.ID) *index.Index {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		return e.index
	}
	return nil
}

// Tracked reports whether a document has an entry.
func (r *Registry) Tracked(id document.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Pending reports whether a deferred reindex is pending for a document.
func (r *Registry) Pending(id document.ID) bool {
	return r.timers.Pending(id)
}

// Documents returns the tracked documents that are still live, ordered by ID.
func (r *Registry) Documents() []document.Document {
	r.mu.Lock()
	docs := make([]document.Document, 0, len(r.entries))
	for _, e := range r.entries {
		docs = append(docs, e.doc)
	}
	r.mu.Unlock()

	live := docs[:0]
	for _, doc := range docs {
		if r.host.Live(doc) {
			live = append(live, doc)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID() < live[j].ID() })
	return live
}

// Indexes returns the current index of every tracked document, ordered by document ID.
func (r *Registry) Indexes() []*index.Index {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*index.Index, 0, len(r.entries))
	for _, e := range r.entries {
		if e.index != nil {
			out = append(out, e.index)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Document < out[j].Document })
	return out
}

func (r *Registry) entryLocked(doc document.Document) *entry {
	e, ok := r.entries[doc.ID()]
	if !ok {
		e = &entry{eligible: true}
		r.entries[doc.ID()] = e
	}
	// The host may hand us a fresh handle for the same identity.
	e.doc = doc
	return e
}

// bumpLocked gives e a generation no earlier deferred reindex carries.
func (r *Registry) bumpLocked(e *entry) uint64 {
	r.seq++
	e.gen = r.seq
	return e.gen
}

// fire runs a deferred reindex scheduled at gen. A timer that expired while
// a created event reindexed the document finds a newer gen and does nothing.
func (r *Registry) fire(id document.ID, gen uint64) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || r.closed || e.gen != gen {
		r.mu.Unlock()
		return
	}
	if !r.host.Live(e.doc) {
		r.mu.Unlock()
		r.logger.Debug("skipping reindex of closed document", "document", id)
		return
	}
	ix := r.reindexLocked(e)
	r.mu.Unlock()
	r.notify(ix)
}

func (r *Registry) reindexLocked(e *entry) *index.Index {
	start := time.Now()
	ix := index.Rebuild(e.doc, r.presenter, r.activate)
	e.index = ix
	r.logger.Debug("reindexed",
		"document", ix.Document,
		"locations", len(ix.Locations),
		"references", len(ix.References),
		"elapsed", time.Since(start),
	)
	return ix
}

func (r *Registry) notify(ix *index.Index) {
	if r.onReindex != nil && ix != nil {
		r.onReindex(ix)
	}
}

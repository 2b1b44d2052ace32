// Package present connects markers to whatever renders them.
//
// Hosts implement Presenter: the LSP server turns activatable regions into
// go-to-definition targets, the CLI prints results to the terminal.
package present

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/search"
)

// Presenter renders activatable markers and search results.
type Presenter interface {
	// Reset discards every region previously installed for the document.
	Reset(id document.ID)
	// MakeActivatable installs a region over iv that runs onActivate.
	MakeActivatable(iv marker.Interval, onActivate func())
	// Display renders the results of a search.
	Display(query string, matches []search.Match)
}

// Warner is optionally implemented by presenters that can surface a
// non-fatal search failure (such as an external tool error) to the user.
type Warner interface {
	Warn(query string, err error)
}

// Activator is invoked when a marker's region is activated.
type Activator func(m marker.Marker)

// Bind returns an Activator that searches for the marker's partners and
// hands the results to p.
func Bind(ctx context.Context, agg *search.Aggregator, p Presenter, logger *slog.Logger) Activator {
	if logger == nil {
		logger = slog.Default()
	}
	return func(m marker.Marker) {
		query, matches, err := agg.SearchComplement(ctx, m)
		if err != nil {
			logger.Warn("partner search incomplete", "uuid", m.UUID, "error", err)
			if w, ok := p.(Warner); ok {
				w.Warn(query, err)
			}
		}
		p.Display(query, matches)
	}
}

// Region is an activatable range of a document.
type Region struct {
	Interval marker.Interval
	activate func()
}

// Activate runs the region's callback.
func (r Region) Activate() {
	if r.activate != nil {
		r.activate()
	}
}

// Regions is a per-document table of activatable regions. It implements the
// region half of Presenter and is safe for concurrent use.
type Regions struct {
	mu    sync.RWMutex
	byDoc map[document.ID][]Region
}

// NewRegions creates an empty region table.
func NewRegions() *Regions {
	return &Regions{byDoc: make(map[document.ID][]Region)}
}

// Reset drops every region for the document.
func (r *Regions) Reset(id document.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byDoc, id)
}

// MakeActivatable installs a region.
func (r *Regions) MakeActivatable(iv marker.Interval, onActivate func()) {
	doc := iv.Document()
	if doc == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byDoc[doc.ID()] = append(r.byDoc[doc.ID()], Region{Interval: iv, activate: onActivate})
}

// List returns the document's regions ordered by start offset.
func (r *Regions) List(id document.ID) []Region {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Region, len(r.byDoc[id]))
	copy(out, r.byDoc[id])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interval.Start() < out[j].Interval.Start()
	})
	return out
}

// At returns the region containing offset. A cursor sitting just after a
// marker's closing paren counts as inside it, unless another region
// contains offset outright.
func (r *Regions) At(id document.ID, offset int) (Region, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		adjacent Region
		found    bool
	)
	for _, region := range r.byDoc[id] {
		iv := region.Interval
		if iv.Contains(offset) {
			return region, true
		}
		if !found && offset == iv.End() && iv.Len() > 0 {
			adjacent, found = region, true
		}
	}
	return adjacent, found
}

// Activate runs the region at offset, if any.
func (r *Regions) Activate(id document.ID, offset int) bool {
	region, ok := r.At(id, offset)
	if !ok {
		return false
	}
	region.Activate()
	return true
}

// Discard is a Presenter that installs nothing and displays nothing.
type Discard struct{}

func (Discard) Reset(document.ID)                      {}
func (Discard) MakeActivatable(marker.Interval, func()) {}
func (Discard) Display(string, []search.Match)         {}

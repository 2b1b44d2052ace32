// Package index holds the per-document marker index.
//
// An Index is never updated in place: every reindex extracts the document's
// full current text and produces a fresh Index that replaces the old one.
package index

import (
	"time"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/present"
)

// Index is the set of markers believed to exist in one document.
type Index struct {
	Document   document.ID
	Version    int // host version at rebuild time, if the document reports one
	Locations  []marker.Marker
	References []marker.Marker
	BuiltAt    time.Time
}

// versioned is implemented by documents that track a host version.
type versioned interface {
	Version() int
}

// Rebuild extracts doc's markers and installs an activatable region for each
// one. Regions from any earlier rebuild of doc are reset first. activate may
// be nil, in which case regions do nothing when activated.
func Rebuild(doc document.Document, p present.Presenter, activate present.Activator) *Index {
	ex := marker.Extract(doc)

	ix := &Index{
		Document:   doc.ID(),
		Locations:  ex.Locations,
		References: ex.References,
		BuiltAt:    time.Now(),
	}
	if v, ok := doc.(versioned); ok {
		ix.Version = v.Version()
	}

	if p == nil {
		return ix
	}
	p.Reset(doc.ID())
	for _, m := range ix.Markers() {
		m := m
		p.MakeActivatable(m.Interval, func() {
			if activate != nil {
				activate(m)
			}
		})
	}
	return ix
}

// Len returns the number of markers.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Locations) + len(ix.References)
}

// Markers returns locations and references merged in textual order.
func (ix *Index) Markers() []marker.Marker {
	if ix == nil {
		return nil
	}
	out := make([]marker.Marker, 0, ix.Len())
	i, j := 0, 0
	for i < len(ix.Locations) || j < len(ix.References) {
		switch {
		case j >= len(ix.References):
			out = append(out, ix.Locations[i])
			i++
		case i >= len(ix.Locations):
			out = append(out, ix.References[j])
			j++
		case ix.Locations[i].Interval.Start() <= ix.References[j].Interval.Start():
			out = append(out, ix.Locations[i])
			i++
		default:
			out = append(out, ix.References[j])
			j++
		}
	}
	return out
}

// At returns the marker whose range contains offset.
func (ix *Index) At(offset int) (marker.Marker, bool) {
	for _, m := range ix.Markers() {
		if m.Interval.Contains(offset) {
			return m, true
		}
	}
	return marker.Marker{}, false
}

// ByUUID returns every marker carrying uuid, in textual order.
func (ix *Index) ByUUID(uuid string) []marker.Marker {
	var out []marker.Marker
	for _, m := range ix.Markers() {
		if m.UUID == uuid {
			out = append(out, m)
		}
	}
	return out
}

// Equal reports whether two indexes hold the same markers in the same order.
func (ix *Index) Equal(other *Index) bool {
	if ix == nil || other == nil {
		return ix == other
	}
	if ix.Document != other.Document {
		return false
	}
	return sameMarkers(ix.Locations, other.Locations) && sameMarkers(ix.References, other.References)
}

func sameMarkers(a, b []marker.Marker) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

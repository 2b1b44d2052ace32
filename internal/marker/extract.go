package marker

import (
	"github.com/aidanlsb/loclink/internal/document"
)

// Span is a raw grammar match: the byte range of the whole marker and the UUID it carries.
type Span struct {
	Start int
	End   int
	UUID  string
}

// FindAll scans text left to right for non-overlapping markers of kind.
func FindAll(kind Kind, text string) []Span {
	var out []Span
	for _, m := range kind.Regexp().FindAllStringSubmatchIndex(text, -1) {
		if len(m) < 4 {
			continue
		}
		out = append(out, Span{Start: m[0], End: m[1], UUID: text[m[2]:m[3]]})
	}
	return out
}

// Extraction holds markers in first-match order, one slice per kind.
type Extraction struct {
	Locations  []Marker
	References []Marker
}

// Len returns the total number of markers.
func (e Extraction) Len() int {
	return len(e.Locations) + len(e.References)
}

// Extract scans the document's full current text for locations and references.
// Each kind is scanned independently; overlap between kinds is not checked.
func Extract(doc document.Document) Extraction {
	text := doc.Text()
	return Extraction{
		Locations:  extractKind(doc, Location, text),
		References: extractKind(doc, Reference, text),
	}
}

func extractKind(doc document.Document, kind Kind, text string) []Marker {
	var markers []Marker
	for _, span := range FindAll(kind, text) {
		iv, err := NewInterval(doc, span.Start, span.End)
		if err != nil {
			continue // Document changed under us
		}
		m, err := New(kind, iv)
		if err != nil {
			continue
		}
		markers = append(markers, m)
	}
	return markers
}

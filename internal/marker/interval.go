package marker

import (
	"fmt"

	"github.com/aidanlsb/loclink/internal/document"
)

// Interval is a half-open byte range [Start, End) within a document.
//
// Bounds are validated against the document's content when the Interval is
// made. The Interval is a snapshot: the document may change afterwards, and
// Text always reads the document's current content.
type Interval struct {
	doc   document.Document
	start int
	end   int
}

// NewInterval validates 0 <= start <= end <= len(text) against the document's
// current content.
func NewInterval(doc document.Document, start, end int) (Interval, error) {
	limit := len(doc.Text())
	if start < 0 || start > end || end > limit {
		return Interval{}, &ValidationError{
			Err:    ErrOutOfRange,
			Start:  start,
			End:    end,
			Detail: fmt.Sprintf("document %s has length %d", doc.ID(), limit),
		}
	}
	return Interval{doc: doc, start: start, end: end}, nil
}

// Document returns the owning document.
func (iv Interval) Document() document.Document {
	return iv.doc
}

// Start returns the inclusive start offset.
func (iv Interval) Start() int {
	return iv.start
}

// End returns the exclusive end offset.
func (iv Interval) End() int {
	return iv.end
}

// Len returns End - Start.
func (iv Interval) Len() int {
	return iv.end - iv.start
}

// Contains reports whether offset falls inside the interval.
func (iv Interval) Contains(offset int) bool {
	return offset >= iv.start && offset < iv.end
}

// Text returns the document's current content between Start and End.
// If the document has shrunk since construction, the range is clamped.
func (iv Interval) Text() string {
	if iv.doc == nil {
		return ""
	}
	text := iv.doc.Text()
	start, end := iv.start, iv.end
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	return text[start:end]
}

func (iv Interval) String() string {
	if iv.doc == nil {
		return fmt.Sprintf("[%d,%d)", iv.start, iv.end)
	}
	return fmt.Sprintf("%s[%d,%d)", iv.doc.ID(), iv.start, iv.end)
}

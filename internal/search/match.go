// Package search finds the partners of a marker across open documents and
// the filesystem.
package search

import (
	"fmt"
	"strconv"
)

// SourceKind says where a match came from, and therefore what its position means.
type SourceKind int

const (
	// SourceDocument matches come from an open document; the position is a byte offset.
	SourceDocument SourceKind = iota
	// SourceFile matches come from the filesystem search; the position is a 1-based line number.
	SourceFile
)

func (k SourceKind) String() string {
	switch k {
	case SourceDocument:
		return "document"
	case SourceFile:
		return "file"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Match is a single search hit.
type Match struct {
	Source SourceKind
	// Label is a document identity (SourceDocument) or a filesystem path (SourceFile).
	Label string
	// Offset is set for SourceDocument matches.
	Offset int
	// Line is set for SourceFile matches.
	Line int
	// HasPosition is false when the source reported no usable position.
	HasPosition bool
	// Text is the matched text (documents) or the remainder of the output line (files).
	Text string
}

// Position returns the offset or line number, depending on the source.
func (m Match) Position() (int, bool) {
	if !m.HasPosition {
		return 0, false
	}
	if m.Source == SourceFile {
		return m.Line, true
	}
	return m.Offset, true
}

// String renders the match as "label" or "label:position".
func (m Match) String() string {
	pos, ok := m.Position()
	if !ok {
		return m.Label
	}
	return m.Label + ":" + strconv.Itoa(pos)
}

// Package document defines the document handles that loclink indexes.
//
// A document is anything with a stable identity and a current text: an
// editor buffer reported over LSP, or a file loaded from disk by the watcher.
package document

import (
	"errors"
	"sync"
)

// ErrIneligible is returned when a document is not a text-like document
// that should be tracked.
var ErrIneligible = errors.New("document is not text-like")

// ID is an opaque, stable document identity (an LSP URI or an absolute path).
type ID string

// Document is a handle to a live document.
type Document interface {
	// ID returns the document's stable identity.
	ID() ID
	// Text returns the document's current full content.
	Text() string
}

// Buffer is an in-memory document whose content is replaced wholesale.
// It is safe for concurrent use.
type Buffer struct {
	mu         sync.RWMutex
	id         ID
	languageID string
	text       string
	version    int
	closed     bool
}

// NewBuffer creates a buffer with the given identity and initial content.
func NewBuffer(id ID, languageID, text string, version int) *Buffer {
	return &Buffer{
		id:         id,
		languageID: languageID,
		text:       text,
		version:    version,
	}
}

// ID returns the buffer's identity.
func (b *Buffer) ID() ID {
	return b.id
}

// LanguageID returns the language identifier reported by the host, if any.
func (b *Buffer) LanguageID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.languageID
}

// Text returns the current content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Version returns the version of the current content.
func (b *Buffer) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// SetText replaces the content (full sync).
func (b *Buffer) SetText(text string, version int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.version = version
}

// Close marks the buffer as no longer open in the host.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Closed reports whether the buffer has been closed.
func (b *Buffer) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

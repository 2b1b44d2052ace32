package lsp

import (
	"sort"
	"sync"

	"github.com/aidanlsb/loclink/internal/document"
)

// DocumentManager tracks open documents and their content. It is the
// registry's view of the editor.
type DocumentManager struct {
	filter *document.Filter

	mu        sync.RWMutex
	documents map[string]*document.Buffer
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager(filter *document.Filter) *DocumentManager {
	if filter == nil {
		filter = document.NewFilter(nil, nil)
	}
	return &DocumentManager{
		filter:    filter,
		documents: make(map[string]*document.Buffer),
	}
}

// Open registers a newly opened document. Reopening a URI closes the
// previous buffer so stale handles are no longer live.
func (dm *DocumentManager) Open(uri, languageID, content string, version int) *document.Buffer {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if prev, ok := dm.documents[uri]; ok {
		prev.Close()
	}
	buf := document.NewBuffer(document.ID(uri), languageID, content, version)
	dm.documents[uri] = buf
	return buf
}

// Update replaces a document's content. We only support full document sync.
func (dm *DocumentManager) Update(uri, content string, version int) *document.Buffer {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	buf, ok := dm.documents[uri]
	if !ok {
		return nil
	}
	buf.SetText(content, version)
	return buf
}

// Close removes a document from tracking and marks its buffer closed.
func (dm *DocumentManager) Close(uri string) *document.Buffer {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	buf, ok := dm.documents[uri]
	if !ok {
		return nil
	}
	buf.Close()
	delete(dm.documents, uri)
	return buf
}

// Get retrieves a document by URI.
func (dm *DocumentManager) Get(uri string) *document.Buffer {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	return dm.documents[uri]
}

// All returns all open documents ordered by URI.
func (dm *DocumentManager) All() []*document.Buffer {
	dm.mu.RLock()
	docs := make([]*document.Buffer, 0, len(dm.documents))
	for _, doc := range dm.documents {
		docs = append(docs, doc)
	}
	dm.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	return docs
}

// editorHost adapts a DocumentManager to registry.Host.
type editorHost struct {
	dm *DocumentManager
}

// Classify uses the client's language ID, falling back to the URI's extension.
func (h editorHost) Classify(doc document.Document) error {
	languageID := ""
	if buf, ok := doc.(*document.Buffer); ok {
		languageID = buf.LanguageID()
	}
	return h.dm.filter.Classify(doc.ID(), languageID)
}

// Live reports whether doc is still the current, unclosed buffer for its URI.
func (h editorHost) Live(doc document.Document) bool {
	buf, ok := doc.(*document.Buffer)
	if !ok || buf.Closed() {
		return false
	}
	return h.dm.Get(string(buf.ID())) == buf
}

func (h editorHost) Open() []document.Document {
	all := h.dm.All()
	out := make([]document.Document, len(all))
	for i, buf := range all {
		out[i] = buf
	}
	return out
}

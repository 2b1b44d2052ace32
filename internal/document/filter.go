package document

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultExtensions are the file extensions treated as text-like.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".org", ".rst", ".adoc", ".tex"}

// DefaultLanguageIDs are the LSP language identifiers treated as text-like.
var DefaultLanguageIDs = []string{"markdown", "plaintext", "org", "restructuredtext", "asciidoc", "latex"}

// Filter decides whether a document is text-like.
// A document is eligible if its language ID or its extension is recognized.
type Filter struct {
	extensions  map[string]bool
	languageIDs map[string]bool
}

// NewFilter creates a filter. Empty lists fall back to the defaults.
func NewFilter(extensions, languageIDs []string) *Filter {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(languageIDs) == 0 {
		languageIDs = DefaultLanguageIDs
	}

	f := &Filter{
		extensions:  make(map[string]bool, len(extensions)),
		languageIDs: make(map[string]bool, len(languageIDs)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = true
	}
	for _, id := range languageIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" {
			f.languageIDs[id] = true
		}
	}
	return f
}

// Classify returns nil if the document is eligible, or an error wrapping
// ErrIneligible otherwise.
func (f *Filter) Classify(id ID, languageID string) error {
	if languageID != "" && f.languageIDs[strings.ToLower(languageID)] {
		return nil
	}
	ext := Extension(id)
	if ext != "" && f.extensions[ext] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrIneligible, id)
}

// Extension returns the lower-cased extension of a document identity,
// which may be a file:// URI or a plain path.
func Extension(id ID) string {
	p := string(id)
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

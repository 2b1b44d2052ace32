package document

import (
	"errors"
	"testing"
)

func TestBufferSetText(t *testing.T) {
	b := NewBuffer("file:///notes/a.md", "markdown", "one", 1)
	b.SetText("two", 2)

	if b.Text() != "two" {
		t.Fatalf("Text()=%q, want %q", b.Text(), "two")
	}
	if b.Version() != 2 {
		t.Fatalf("Version()=%d, want 2", b.Version())
	}
	if b.Closed() {
		t.Fatalf("new buffer should not be closed")
	}
	b.Close()
	if !b.Closed() {
		t.Fatalf("expected buffer to be closed")
	}
}

func TestFilterClassify(t *testing.T) {
	f := NewFilter(nil, nil)

	tests := []struct {
		name       string
		id         ID
		languageID string
		eligible   bool
	}{
		{name: "markdown uri", id: "file:///home/me/notes.md", eligible: true},
		{name: "plain path", id: "/home/me/todo.txt", eligible: true},
		{name: "upper-case extension", id: "/home/me/README.MD", eligible: true},
		{name: "language id wins", id: "untitled:Untitled-1", languageID: "markdown", eligible: true},
		{name: "source file", id: "file:///src/main.go", languageID: "go", eligible: false},
		{name: "no extension", id: "/home/me/Makefile", eligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Classify(tt.id, tt.languageID)
			if tt.eligible && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.eligible && !errors.Is(err, ErrIneligible) {
				t.Fatalf("expected ErrIneligible, got %v", err)
			}
		})
	}
}

func TestFilterCustomExtensions(t *testing.T) {
	f := NewFilter([]string{"note", ".LOG"}, []string{"plaintext"})

	if err := f.Classify("/tmp/a.note", ""); err != nil {
		t.Fatalf("expected .note to be eligible: %v", err)
	}
	if err := f.Classify("/tmp/a.log", ""); err != nil {
		t.Fatalf("expected .log to be eligible: %v", err)
	}
	if err := f.Classify("/tmp/a.md", ""); err == nil {
		t.Fatalf("expected .md to be ineligible with custom extensions")
	}
}

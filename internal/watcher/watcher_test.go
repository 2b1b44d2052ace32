package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/registry"
)

const uuid = "2f402556-e55b-4a2a-8e4d-fbda29f6c5fb"

type event struct {
	kind   string
	id     document.ID
	text   string
	closed bool
}

type recorder struct {
	mu     sync.Mutex
	events []event
	ch     chan event
}

func newRecorder() *recorder { return &recorder{ch: make(chan event, 64)} }

func (r *recorder) Observe(kind registry.EventKind, doc document.Document) {
	r.add(event{kind: kind.String(), id: doc.ID(), text: doc.Text()})
}

func (r *recorder) Forget(id document.ID) {
	r.add(event{kind: "forget", id: id})
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.ch <- e
}

func (r *recorder) all() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(Config{Root: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestNewValidatesRoot(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty root")
	}
	file := writeFile(t, t.TempDir(), "a.md", "")
	if _, err := New(Config{Root: file}); err == nil {
		t.Fatalf("expected error for a file root")
	}
}

func TestLoadSkipsIneligibleAndIgnored(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "notes/a.md", "(loc "+uuid+")")
	b := writeFile(t, root, "b.txt", "(ref "+uuid+")")
	writeFile(t, root, "main.go", "// (ref "+uuid+")")
	writeFile(t, root, ".git/notes.md", "(ref "+uuid+")")
	writeFile(t, root, "node_modules/pkg/README.md", "(ref "+uuid+")")

	w := newWatcher(t, root)
	n, err := w.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 2 {
		t.Fatalf("loaded %d files, want 2", n)
	}

	docs := w.Open()
	if len(docs) != 2 || string(docs[0].ID()) != b || string(docs[1].ID()) != a {
		t.Fatalf("unexpected documents %v", docs)
	}
	if docs[1].Text() != "(loc "+uuid+")" {
		t.Fatalf("unexpected text %q", docs[1].Text())
	}
}

func TestLoadSkipsLargeFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.md", string(make([]byte, 2048)))
	writeFile(t, root, "small.md", "x")

	w, err := New(Config{Root: root, MaxFileSize: 1024})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n, _ := w.Load(); n != 1 {
		t.Fatalf("loaded %d files, want 1", n)
	}
}

func TestHandleEvents(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, root)
	rec := newRecorder()

	path := writeFile(t, root, "a.md", "one")
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create}, rec)

	writeFile(t, root, "a.md", "two")
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write}, rec)

	docs := w.Open()
	if len(docs) != 1 || docs[0].Text() != "two" {
		t.Fatalf("expected reloaded text, got %v", docs)
	}
	if v := docs[0].(*document.Buffer).Version(); v != 2 {
		t.Fatalf("version=%d, want 2", v)
	}

	ignored := writeFile(t, root, "main.go", "x")
	w.handleEvent(fsnotify.Event{Name: ignored, Op: fsnotify.Create}, rec)

	buf := docs[0].(*document.Buffer)
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Remove}, rec)
	if !buf.Closed() || w.Live(buf) {
		t.Fatalf("removed file should be closed")
	}

	got := rec.all()
	want := []event{
		{kind: "created", id: document.ID(path), text: "one"},
		{kind: "mutated", id: document.ID(path), text: "two"},
		{kind: "forget", id: document.ID(path)},
	}
	if len(got) != len(want) {
		t.Fatalf("events=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d=%v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteToUnknownFileCreates(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, root)
	rec := newRecorder()

	path := writeFile(t, root, "late.md", "(ref "+uuid+")")
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write}, rec)

	if got := rec.all(); len(got) != 1 || got[0].kind != "created" {
		t.Fatalf("expected a creation, got %v", got)
	}
}

func TestRemoveDirectoryForgetsFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/a.md", "a")
	writeFile(t, root, "sub/deeper/b.md", "b")
	keep := writeFile(t, root, "subway.md", "c")

	w := newWatcher(t, root)
	if _, err := w.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := newRecorder()
	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "sub"), Op: fsnotify.Remove}, rec)

	if got := rec.all(); len(got) != 2 {
		t.Fatalf("expected 2 forgets, got %v", got)
	}
	docs := w.Open()
	if len(docs) != 1 || string(docs[0].ID()) != keep {
		t.Fatalf("unexpected remaining documents %v", docs)
	}
}

func TestShouldIgnore(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, root)

	tests := []struct {
		rel  string
		want bool
	}{
		{"a.md", false},
		{"notes/a.md", false},
		{".git/config", true},
		{"pkg/node_modules/x.md", true},
		{".gitignore", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(filepath.Join(root, tt.rel)); got != tt.want {
			t.Errorf("shouldIgnore(%q)=%v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestStartReportsWrites(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.md", "")

	w := newWatcher(t, root)
	if _, err := w.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := newRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, rec) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "a.md", "(loc "+uuid+")")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-rec.ch:
			if e.id == document.ID(path) && e.text == "(loc "+uuid+")" {
				return
			}
		case <-deadline:
			t.Fatalf("no event for write; got %v", rec.all())
		}
	}
}

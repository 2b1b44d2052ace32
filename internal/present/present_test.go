package present

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/search"
	"github.com/aidanlsb/loclink/internal/ui"
)

const uuid = "2f402556-e55b-4a2a-8e4d-fbda29f6c5fb"

type recorder struct {
	*Regions
	queries []string
	shown   [][]search.Match
	warned  []error
}

func newRecorder() *recorder { return &recorder{Regions: NewRegions()} }

func (r *recorder) Display(query string, matches []search.Match) {
	r.queries = append(r.queries, query)
	r.shown = append(r.shown, matches)
}

func (r *recorder) Warn(query string, err error) { r.warned = append(r.warned, err) }

type docs []document.Document

func (d docs) Documents() []document.Document { return d }

type failingFiles struct{}

func (failingFiles) Search(context.Context, string, string) ([]search.Match, error) {
	return nil, &search.ExternalToolError{Tool: "rg", Err: errors.New("boom")}
}

func interval(t *testing.T, d document.Document, start, end int) marker.Interval {
	t.Helper()
	iv, err := marker.NewInterval(d, start, end)
	if err != nil {
		t.Fatalf("NewInterval: %v", err)
	}
	return iv
}

func TestRegionsAdjacentPrefersContaining(t *testing.T) {
	d := document.NewBuffer("file:///a.md", "markdown", "0123456789", 1)
	r := NewRegions()

	var hits []string
	r.MakeActivatable(interval(t, d, 0, 4), func() { hits = append(hits, "left") })
	r.MakeActivatable(interval(t, d, 4, 8), func() { hits = append(hits, "right") })

	r.Activate(d.ID(), 4)
	r.Activate(d.ID(), 8)
	if strings.Join(hits, ",") != "right,right" {
		t.Fatalf("hits=%v, want the region starting at 4 and then the one ending at 8", hits)
	}
}

func TestRegionsResetReplaces(t *testing.T) {
	d := document.NewBuffer("file:///a.md", "markdown", "0123456789", 1)
	r := NewRegions()

	var hits []string
	r.MakeActivatable(interval(t, d, 5, 8), func() { hits = append(hits, "second") })
	r.MakeActivatable(interval(t, d, 0, 3), func() { hits = append(hits, "first") })

	list := r.List(d.ID())
	if len(list) != 2 || list[0].Interval.Start() != 0 {
		t.Fatalf("expected regions sorted by start, got %#v", list)
	}

	if !r.Activate(d.ID(), 1) || !r.Activate(d.ID(), 8) {
		t.Fatalf("expected activation inside and at end of region")
	}
	if r.Activate(d.ID(), 4) {
		t.Fatalf("offset 4 is between regions")
	}
	if strings.Join(hits, ",") != "first,second" {
		t.Fatalf("hits=%v", hits)
	}

	r.Reset(d.ID())
	if len(r.List(d.ID())) != 0 {
		t.Fatalf("expected Reset to drop regions")
	}
	if r.Activate(d.ID(), 1) {
		t.Fatalf("stale region activated after Reset")
	}
}

func TestBindDisplaysPartners(t *testing.T) {
	loc := document.NewBuffer("file:///loc.md", "markdown", "(loc "+uuid+")", 1)
	ref := document.NewBuffer("file:///ref.md", "markdown", "x (ref "+uuid+")", 1)

	agg, err := search.NewAggregator(docs{loc, ref}, nil, search.Options{Root: "/tmp"})
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	rec := newRecorder()
	activate := Bind(context.Background(), agg, rec, nil)

	activate(marker.Extract(ref).References[0])

	if len(rec.shown) != 1 {
		t.Fatalf("expected one Display call, got %d", len(rec.shown))
	}
	if rec.queries[0] != marker.Location.PatternFor(uuid) {
		t.Fatalf("query=%q", rec.queries[0])
	}
	if len(rec.shown[0]) != 1 || rec.shown[0][0].Label != "file:///loc.md" {
		t.Fatalf("unexpected matches: %#v", rec.shown[0])
	}
}

func TestBindWarnsOnToolFailure(t *testing.T) {
	ref := document.NewBuffer("file:///ref.md", "markdown", "(ref "+uuid+")", 1)
	agg, err := search.NewAggregator(docs{ref}, failingFiles{}, search.Options{Root: "/tmp"})
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	rec := newRecorder()

	Bind(context.Background(), agg, rec, nil)(marker.Extract(ref).References[0])

	if len(rec.warned) != 1 || !errors.Is(rec.warned[0], search.ErrExternalTool) {
		t.Fatalf("expected an external tool warning, got %v", rec.warned)
	}
	if len(rec.shown) != 1 {
		t.Fatalf("results must still be displayed")
	}
}

func TestTerminalPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, ui.NewDisplayContextWithWidth(80), nil)

	term.Display("q", []search.Match{
		{Source: search.SourceDocument, Label: "file:///a.md", Offset: 12, HasPosition: true},
		{Source: search.SourceFile, Label: "/home/me/b.md", Line: 4, HasPosition: true, Text: "ignored in plain mode"},
		{Source: search.SourceFile, Label: "/home/me/c.md"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 lines, got %q", buf.String())
	}
	want := []string{"file:///a.md:12", "/home/me/b.md:4", "/home/me/c.md"}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("line %d=%q, want %q", i+1, lines[i+1], w)
		}
	}
}

func TestTerminalNoMatches(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, ui.NewDisplayContextWithWidth(80), nil)
	term.Display("q", nil)
	if !strings.Contains(buf.String(), "No matches for q") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestDiscardIsPresenter(t *testing.T) {
	var p Presenter = Discard{}
	p.Reset("x")
	p.Display("q", nil)
}

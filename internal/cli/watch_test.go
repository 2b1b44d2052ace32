package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/index"
	"github.com/aidanlsb/loclink/internal/search"
)

type openDocs []document.Document

func (d openDocs) Documents() []document.Document { return d }

func TestWatchReporterJSONEvents(t *testing.T) {
	loc := document.NewBuffer("/w/a.md", "", "(loc "+testUUID+")", 1)
	ref := document.NewBuffer("/w/b.md", "", "(ref "+testUUID+") (ref "+otherUUID+")", 1)

	check, err := search.NewAggregator(openDocs{loc, ref}, nil, search.Options{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	locIx, refIx := index.Rebuild(loc, nil, nil), index.Rebuild(ref, nil, nil)

	var out bytes.Buffer
	r := &watchReporter{out: &out, json: true}
	r.reindexed(refIx, "b.md")
	r.ready("/w", 2, []*index.Index{locIx, refIx}, check)
	r.reindexed(refIx, "b.md")

	var events []watchEvent
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var ev watchEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		events = append(events, ev)
	}

	want := []string{"ready", "dangling", "reindexed"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, ev := range events {
		if ev.Event != want[i] {
			t.Fatalf("event %d = %q, want %q", i, ev.Event, want[i])
		}
	}
	if events[0].Files != 2 || events[0].Locations != 1 || events[0].References != 2 {
		t.Fatalf("unexpected ready summary %+v", events[0])
	}
	for _, ev := range events[1:] {
		if len(ev.Dangling) != 1 || ev.Dangling[0] != otherUUID {
			t.Fatalf("expected %s to dangle, got %+v", otherUUID, ev)
		}
	}
	if events[2].References != 2 || events[2].Path != "b.md" {
		t.Fatalf("unexpected reindex event %+v", events[2])
	}
}

package marker

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/aidanlsb/loclink/internal/document"
)

const (
	uuidA = "2f402556-e55b-4a2a-8e4d-fbda29f6c5fb"
	uuidB = "11111111-1111-1111-1111-111111111111"
	uuidC = "ABCDEF01-2345-6789-abcd-EF0123456789"
)

func doc(text string) *document.Buffer {
	return document.NewBuffer("file:///notes/test.md", "markdown", text, 1)
}

func TestExtractSingleReference(t *testing.T) {
	text := "see (ref " + uuidA + ") here"
	got := Extract(doc(text))

	if len(got.Locations) != 0 {
		t.Fatalf("expected 0 locations, got %d", len(got.Locations))
	}
	if len(got.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(got.References))
	}
	ref := got.References[0]
	if ref.Kind != Reference {
		t.Fatalf("kind=%v, want reference", ref.Kind)
	}
	if ref.UUID != uuidA {
		t.Fatalf("uuid=%q, want %q", ref.UUID, uuidA)
	}
	if ref.Interval.Text() != "(ref "+uuidA+")" {
		t.Fatalf("interval text=%q", ref.Interval.Text())
	}
	if ref.Interval.Start() != 4 || ref.Interval.End() != 4+len("(ref "+uuidA+")") {
		t.Fatalf("interval=[%d,%d)", ref.Interval.Start(), ref.Interval.End())
	}
}

func TestExtractOrderAndCounts(t *testing.T) {
	text := strings.Join([]string{
		"(loc " + uuidA + ")",
		"intro (ref " + uuidB + ") and (ref " + uuidA + ")",
		"(loc\t" + uuidB + ")",
		"(loc \n " + uuidC + ")",
		"(ref " + uuidC + ")(ref " + uuidC + ")",
	}, "\n")

	got := Extract(doc(text))

	wantLocs := []string{uuidA, uuidB, uuidC}
	wantRefs := []string{uuidB, uuidA, uuidC, uuidC}

	if len(got.Locations) != len(wantLocs) {
		t.Fatalf("expected %d locations, got %d", len(wantLocs), len(got.Locations))
	}
	if len(got.References) != len(wantRefs) {
		t.Fatalf("expected %d references, got %d", len(wantRefs), len(got.References))
	}
	for i, want := range wantLocs {
		if got.Locations[i].UUID != want {
			t.Errorf("location %d uuid=%q, want %q", i, got.Locations[i].UUID, want)
		}
	}
	for i, want := range wantRefs {
		if got.References[i].UUID != want {
			t.Errorf("reference %d uuid=%q, want %q", i, got.References[i].UUID, want)
		}
	}
	for i := 1; i < len(got.References); i++ {
		if got.References[i].Interval.Start() < got.References[i-1].Interval.End() {
			t.Fatalf("references out of order or overlapping at %d", i)
		}
	}
	if got.Len() != 7 {
		t.Fatalf("Len()=%d, want 7", got.Len())
	}
}

func TestExtractPreservesCase(t *testing.T) {
	got := Extract(doc("(loc " + uuidC + ")"))
	if len(got.Locations) != 1 || got.Locations[0].UUID != uuidC {
		t.Fatalf("expected uuid exactly as written, got %#v", got.Locations)
	}
}

func TestExtractRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "seven hex digits in first group", text: "(ref 2f40255-e55b-4a2a-8e4d-fbda29f6c5fb)"},
		{name: "nine hex digits in first group", text: "(ref 12f402556-e55b-4a2a-8e4d-fbda29f6c5fb)"},
		{name: "bare uuid", text: "id " + uuidA + " only"},
		{name: "missing closing paren", text: "(ref " + uuidA},
		{name: "missing opening paren", text: "ref " + uuidA + ")"},
		{name: "no whitespace", text: "(ref" + uuidA + ")"},
		{name: "non-hex digit", text: "(loc 2f402556-e55b-4a2a-8e4d-fbda29f6c5fg)"},
		{name: "wrong token", text: "(see " + uuidA + ")"},
		{name: "trailing text inside parens", text: "(loc " + uuidA + " x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(doc(tt.text))
			if got.Len() != 0 {
				t.Fatalf("expected no markers, got %d", got.Len())
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	d := doc("(loc " + uuidA + ") (ref " + uuidB + ")")
	first := Extract(d)
	second := Extract(d)

	if len(first.Locations) != len(second.Locations) || len(first.References) != len(second.References) {
		t.Fatalf("extractions differ in size")
	}
	for i := range first.Locations {
		if !first.Locations[i].Equal(second.Locations[i]) {
			t.Fatalf("location %d differs", i)
		}
	}
	for i := range first.References {
		if !first.References[i].Equal(second.References[i]) {
			t.Fatalf("reference %d differs", i)
		}
	}
}

func TestNewIntervalBounds(t *testing.T) {
	d := doc("0123456789")

	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{name: "whole document", start: 0, end: 10},
		{name: "empty at end", start: 10, end: 10},
		{name: "negative start", start: -1, end: 3, wantErr: true},
		{name: "start after end", start: 5, end: 4, wantErr: true},
		{name: "end past document", start: 0, end: 11, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := NewInterval(d, tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if iv.Len() != tt.end-tt.start {
				t.Fatalf("Len()=%d", iv.Len())
			}
		})
	}
}

func TestIntervalTextIsLive(t *testing.T) {
	d := doc("hello world")
	iv, err := NewInterval(d, 6, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Text() != "world" {
		t.Fatalf("Text()=%q, want %q", iv.Text(), "world")
	}

	d.SetText("hello there", 2)
	if iv.Text() != "there" {
		t.Fatalf("Text() after edit=%q, want %q", iv.Text(), "there")
	}

	d.SetText("hi", 3)
	if iv.Text() != "" {
		t.Fatalf("Text() after shrink=%q, want empty", iv.Text())
	}
}

func TestNewRevalidates(t *testing.T) {
	d := doc("xx (loc " + uuidA + ") yy")
	iv, err := NewInterval(d, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(Location, iv); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}

	iv, err = NewInterval(d, 3, 3+len("(loc "+uuidA+")"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewReference(iv); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("a location interval must not build a reference, got %v", err)
	}
	m, err := NewLocation(iv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UUID != uuidA {
		t.Fatalf("uuid=%q", m.UUID)
	}
}

func TestKindComplement(t *testing.T) {
	if Location.Complement() != Reference || Reference.Complement() != Location {
		t.Fatalf("complements are not symmetric")
	}
	for _, k := range Kinds() {
		if k.Complement().Complement() != k {
			t.Fatalf("%v: complement of complement differs", k)
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"loc": Location, "Location": Location, "ref": Reference, " reference ": Reference} {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q)=%v, want %v", in, got, want)
		}
	}
	if _, err := ParseKind("anchor"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestPartnerPattern(t *testing.T) {
	d := doc("(loc " + uuidA + ")")
	m := Extract(d).Locations[0]

	pattern := m.PartnerPattern()
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("pattern %q does not compile: %v", pattern, err)
	}
	if !re.MatchString("text (ref  " + uuidA + ") more") {
		t.Fatalf("pattern should match a reference with the same uuid")
	}
	if re.MatchString("(loc " + uuidA + ")") {
		t.Fatalf("pattern must not match the location itself")
	}
	if re.MatchString("(ref " + uuidB + ")") {
		t.Fatalf("pattern must not match a different uuid")
	}
}

func TestWhitespaceClassIsShared(t *testing.T) {
	tests := []struct {
		name string
		sep  string
		want bool
	}{
		{"space", " ", true},
		{"tab", "\t", true},
		{"vertical tab", "\v", true},
		{"form feed", "\f", true},
		{"newline", " \n ", true},
		{"no-break space", "\u00a0", false},
		{"em space", "\u2003", false},
	}
	pattern := regexp.MustCompile(Reference.PatternFor(uuidA))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "(ref" + tt.sep + uuidA + ")"
			extracted := len(Extract(doc(text)).References) == 1
			if extracted != tt.want {
				t.Fatalf("extracted=%v, want %v", extracted, tt.want)
			}
			if pattern.MatchString(text) != extracted {
				t.Fatalf("search pattern and extractor disagree on %q", text)
			}
		})
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID(uuidA) || !IsUUID(uuidC) {
		t.Fatalf("expected valid uuids")
	}
	for _, s := range []string{"", "2f40255-e55b-4a2a-8e4d-fbda29f6c5fb", uuidA + "0", "(ref " + uuidA + ")"} {
		if IsUUID(s) {
			t.Fatalf("IsUUID(%q) should be false", s)
		}
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	lit := Reference.Literal(uuidB)
	got := Extract(doc(lit))
	if len(got.References) != 1 || got.References[0].Literal() != lit {
		t.Fatalf("literal %q did not extract as itself", lit)
	}
}

package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "short", width: 10, want: "short"},
		{in: "exactly10!", width: 10, want: "exactly10!"},
		{in: "a longer line of text", width: 10, want: "a longe..."},
		{in: "héllo wörld", width: 8, want: "héllo..."},
		{in: "日本語テキスト", width: 7, want: "日本..."},
		{in: "abc", width: 2, want: "ab"},
		{in: "abc", width: 0, want: ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d)=%q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestFit(t *testing.T) {
	d := NewDisplayContextWithWidth(30)

	got, ok := d.Fit("notes/a.md:12  ", "see (ref 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb)")
	if !ok || got != "see (ref 2f4..." {
		t.Fatalf("Fit() = %q, %v", got, ok)
	}
	if _, ok := d.Fit("a/very/long/path/to/some/notes.md:1  ", "text"); ok {
		t.Fatal("expected no room on a full line")
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "match", "matches"); got != "(1 match)" {
		t.Fatalf("got %q", got)
	}
	if got := Count(0, "match", "matches"); got != "(0 matches)" {
		t.Fatalf("got %q", got)
	}
}

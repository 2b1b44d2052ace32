package cli

import (
	"testing"

	"github.com/aidanlsb/loclink/internal/config"
	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/search"
)

func TestBuildEditorURL(t *testing.T) {
	tests := []struct {
		name     string
		editor   string
		absPath  string
		line     int
		wantURL  string
	}{
		{
			name:    "cursor editor",
			editor:  "cursor",
			absPath: "/Users/test/notes/file.md",
			line:    42,
			wantURL: "cursor://file/Users/test/notes/file.md:42:1",
		},
		{
			name:    "cursor via open command",
			editor:  "open -a Cursor",
			absPath: "/Users/test/notes/file.md",
			line:    10,
			wantURL: "cursor://file/Users/test/notes/file.md:10:1",
		},
		{
			name:    "vscode",
			editor:  "code",
			absPath: "/Users/test/notes/file.md",
			line:    5,
			wantURL: "vscode://file/Users/test/notes/file.md:5:1",
		},
		{
			name:    "sublime text",
			editor:  "subl",
			absPath: "/Users/test/notes/file.md",
			line:    15,
			wantURL: "subl://open?url=file:///Users/test/notes/file.md&line=15",
		},
		{
			name:    "jetbrains idea",
			editor:  "idea",
			absPath: "/Users/test/notes/file.md",
			line:    20,
			wantURL: "idea://open?file=/Users/test/notes/file.md&line=20",
		},
		{
			name:    "goland",
			editor:  "goland",
			absPath: "/Users/test/notes/file.md",
			line:    25,
			wantURL: "idea://open?file=/Users/test/notes/file.md&line=25",
		},
		{
			name:    "zed",
			editor:  "zed",
			absPath: "/Users/test/notes/file.md",
			line:    30,
			wantURL: "zed://file/Users/test/notes/file.md:30",
		},
		{
			name:    "vim fallback to file://",
			editor:  "vim",
			absPath: "/Users/test/notes/file.md",
			line:    1,
			wantURL: "file:///Users/test/notes/file.md",
		},
		{
			name:    "unknown editor fallback",
			editor:  "nano",
			absPath: "/Users/test/notes/file.md",
			line:    1,
			wantURL: "file:///Users/test/notes/file.md",
		},
		{
			name:    "no editor configured",
			editor:  "",
			absPath: "/Users/test/notes/file.md",
			line:    1,
			wantURL: "file:///Users/test/notes/file.md",
		},
	}

	t.Setenv("EDITOR", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Editor: tt.editor}
			gotURL := buildEditorURL(cfg, tt.absPath, tt.line)
			if gotURL != tt.wantURL {
				t.Errorf("buildEditorURL() = %q, want %q", gotURL, tt.wantURL)
			}
		})
	}
}

func TestBuildEditorURLNilConfig(t *testing.T) {
	t.Setenv("EDITOR", "")
	// Should not panic with nil config
	url := buildEditorURL(nil, "/path/to/file.md", 10)
	if url != "file:///path/to/file.md" {
		t.Errorf("buildEditorURL(nil) = %q, want file URL", url)
	}
}

func TestMatchLine(t *testing.T) {
	docs := staticDocuments{document.NewBuffer("/n/a.md", "", "one\ntwo (loc x)\nthree", 1)}

	tests := []struct {
		name     string
		match    search.Match
		wantLine int
		wantOK   bool
	}{
		{name: "file match", match: search.Match{Source: search.SourceFile, Label: "/n/b.md", Line: 9, HasPosition: true}, wantLine: 9, wantOK: true},
		{name: "document offset", match: search.Match{Source: search.SourceDocument, Label: "/n/a.md", Offset: 8, HasPosition: true}, wantLine: 2, wantOK: true},
		{name: "unknown document", match: search.Match{Source: search.SourceDocument, Label: "/n/c.md", Offset: 1, HasPosition: true}},
		{name: "no position", match: search.Match{Source: search.SourceFile, Label: "/n/b.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := matchLine(tt.match, docs)
			if line != tt.wantLine || ok != tt.wantOK {
				t.Fatalf("matchLine() = %d, %v; want %d, %v", line, ok, tt.wantLine, tt.wantOK)
			}
		})
	}
}

func TestLocationLink(t *testing.T) {
	t.Setenv("EDITOR", "")
	prevEnabled, prevCfg := hyperlinkEnabled, cfg
	t.Cleanup(func() { hyperlinkEnabled, cfg = prevEnabled, prevCfg })
	cfg = &config.Config{}

	off := false
	hyperlinkEnabled = &off
	if got := locationLink("/n/a.md", 3, nil); got != "/n/a.md:3" {
		t.Fatalf("plain link = %q", got)
	}

	on := true
	hyperlinkEnabled = &on
	want := "\x1b]8;;file:///n/a.md\x07/n/a.md:3\x1b]8;;\x07"
	if got := locationLink("/n/a.md", 3, nil); got != want {
		t.Fatalf("hyperlink = %q, want %q", got, want)
	}
}

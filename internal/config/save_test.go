package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loclink", "config.toml")

	cfg := &Config{
		Debounce:   "2s",
		IgnoreDirs: []string{".git", "vendor"},
		Editor:     "  nvim  ",
		EditorMode: "terminal",
		Search: SearchConfig{
			Tool: "rg",
			Args: []string{"--hidden"},
		},
		UI: UIConfig{Accent: "#ff8800"},
	}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if loaded.Debounce != "2s" || loaded.Editor != "nvim" || loaded.EditorMode != "terminal" {
		t.Fatalf("unexpected loaded config %#v", loaded)
	}
	if len(loaded.IgnoreDirs) != 2 || loaded.Search.Args[0] != "--hidden" || loaded.UI.Accent != "#ff8800" {
		t.Fatalf("unexpected loaded config %#v", loaded)
	}
}

func TestSaveToOmitsEmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTo(path, &Config{Editor: "code"}); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "[search]") || strings.Contains(out, "[ui]") {
		t.Fatalf("empty sections should be omitted:\n%s", out)
	}
	if !strings.Contains(out, `editor = "code"`) {
		t.Fatalf("missing editor:\n%s", out)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo(" ", &Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

// Package testutil provides helpers for loclink integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Workspace is a temporary notes tree with its own global config file.
type Workspace struct {
	Path       string
	ConfigPath string

	t       *testing.T
	config  string
	project string
	files   map[string]string
}

// NewWorkspace creates a workspace builder. Call Build to write it to disk.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{t: t, files: make(map[string]string)}
}

// WithFile adds a file relative to the workspace root.
func (w *Workspace) WithFile(path, content string) *Workspace {
	w.files[path] = content
	return w
}

// WithConfig sets the config.toml content. Without it an empty config is
// written so the user's own config never leaks into a test.
func (w *Workspace) WithConfig(toml string) *Workspace {
	w.config = toml
	return w
}

// WithProject sets the .loclink.yaml content at the workspace root.
func (w *Workspace) WithProject(yaml string) *Workspace {
	w.project = yaml
	return w
}

// Build creates the workspace directory and its files.
func (w *Workspace) Build() *Workspace {
	w.t.Helper()

	w.Path = w.t.TempDir()
	w.ConfigPath = filepath.Join(w.t.TempDir(), "config.toml")
	if err := os.WriteFile(w.ConfigPath, []byte(w.config), 0o644); err != nil {
		w.t.Fatalf("failed to write config: %v", err)
	}
	if w.project != "" {
		w.writeFile(".loclink.yaml", w.project)
	}
	for path, content := range w.files {
		w.writeFile(path, content)
	}
	return w
}

func (w *Workspace) writeFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		w.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// Abs returns the absolute path of a workspace file.
func (w *Workspace) Abs(relPath string) string {
	return filepath.Join(w.Path, relPath)
}

// ReadFile reads a workspace file.
func (w *Workspace) ReadFile(relPath string) string {
	w.t.Helper()
	content, err := os.ReadFile(w.Abs(relPath))
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

package testutil

import (
	"strings"
	"testing"
)

// AssertFileContains fails the test if the file does not contain substr.
func (w *Workspace) AssertFileContains(relPath, substr string) {
	w.t.Helper()
	content := w.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		w.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertMarkerCount scans files and checks the number of markers found.
func (w *Workspace) AssertMarkerCount(expected int, relPaths ...string) {
	w.t.Helper()
	args := []string{"scan"}
	for _, p := range relPaths {
		args = append(args, w.Abs(p))
	}
	result := w.RunCLI(args...)
	result.MustSucceed(w.t)
	if got := len(result.DataList("markers")); got != expected {
		w.t.Errorf("expected %d markers in %v, got %d\nRaw: %s", expected, relPaths, got, result.RawJSON)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertResultCount checks the length of a list in Data.
func (r *CLIResult) AssertResultCount(t *testing.T, key string, expected int) {
	t.Helper()
	if got := len(r.DataList(key)); got != expected {
		t.Errorf("expected %d %s, got %d\nRaw: %s", expected, key, got, r.RawJSON)
	}
}

package cli

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestHandleErrorTextModeKeepsCause(t *testing.T) {
	prev := jsonOutput
	t.Cleanup(func() { jsonOutput = prev })
	jsonOutput = false

	err := handleError(ErrFileNotFound, &os.PathError{Op: "open", Path: "a.md", Err: os.ErrNotExist}, "Check the path")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the cause to be kept, got %v", err)
	}
	if want := "open a.md: file does not exist\nHint: Check the path"; err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHandleErrorWithDetailsTextMode(t *testing.T) {
	prev := jsonOutput
	t.Cleanup(func() { jsonOutput = prev })
	jsonOutput = false

	err := handleErrorWithDetails(ErrAmbiguousMatch, "2 matches", "", []string{"/a.md:1", "/b.md:9"})
	if want := "2 matches\n  /a.md:1\n  /b.md:9"; err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHandleErrorJSONMode(t *testing.T) {
	prev := jsonOutput
	t.Cleanup(func() { jsonOutput = prev })
	jsonOutput = true

	var err error
	out := captureStdout(t, func() {
		err = handleErrorMsg(ErrInvalidInput, "not a UUID", "Use 36 hex digits")
	})
	if err != nil {
		t.Fatalf("JSON mode must not return an error, got %v", err)
	}

	var resp Response
	if jsonErr := json.Unmarshal([]byte(out), &resp); jsonErr != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", jsonErr, out)
	}
	if resp.OK || resp.Error == nil || resp.Error.Code != ErrInvalidInput || resp.Error.Suggestion != "Use 36 hex digits" {
		t.Fatalf("unexpected envelope %s", out)
	}
	if strings.Contains(out, `"data"`) {
		t.Fatalf("error envelope should omit data: %s", out)
	}
}

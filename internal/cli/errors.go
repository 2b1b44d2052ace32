package cli

import (
	"errors"
	"os"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/editor"
	"github.com/aidanlsb/loclink/internal/search"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	ErrConfigInvalid = "CONFIG_INVALID"

	// File errors
	ErrFileNotFound   = "FILE_NOT_FOUND"
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"
	ErrFileIneligible = "FILE_INELIGIBLE"

	// Validation errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// Search errors
	ErrNoMatches         = "NO_MATCHES"
	ErrAmbiguousMatch    = "MATCH_AMBIGUOUS"
	ErrMissingDependency = "MISSING_DEPENDENCY"
	ErrExternalTool      = "EXTERNAL_TOOL"
	ErrEditorUnavailable = "EDITOR_UNAVAILABLE"

	// General errors
	ErrInternalError = "INTERNAL_ERROR"
)

// errorCode maps a Go error to its stable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, search.ErrMissingDependency):
		return ErrMissingDependency
	case errors.Is(err, search.ErrExternalTool):
		return ErrExternalTool
	case errors.Is(err, document.ErrIneligible):
		return ErrFileIneligible
	case errors.Is(err, editor.ErrNoEditor):
		return ErrEditorUnavailable
	case errors.Is(err, os.ErrNotExist):
		return ErrFileNotFound
	default:
		return ErrInternalError
	}
}

// suggestionFor returns a remediation hint for well-known errors.
func suggestionFor(err error) string {
	var missing *search.MissingDependencyError
	switch {
	case errors.As(err, &missing):
		return "Install " + missing.Tool + " or set search.tool in the config file"
	case errors.Is(err, editor.ErrNoEditor):
		return "Set 'editor' with 'loclink config set --editor <cmd>' or export $EDITOR"
	default:
		return ""
	}
}

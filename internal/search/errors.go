package search

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDependency means the external search tool is not installed.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrExternalTool means the external search tool failed or timed out.
	ErrExternalTool = errors.New("external search failed")
)

// MissingDependencyError is returned by RequireTool when the tool cannot be found.
type MissingDependencyError struct {
	Tool string
	Err  error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%v: %s not found in PATH (install ripgrep or set search.tool in config)", ErrMissingDependency, e.Tool)
}

func (e *MissingDependencyError) Unwrap() []error {
	return []error{ErrMissingDependency, e.Err}
}

// ExternalToolError wraps a failed filesystem search. Matches from open
// documents are still returned alongside it.
type ExternalToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%v: %s: %v", ErrExternalTool, e.Tool, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExternalToolError) Unwrap() []error {
	return []error{ErrExternalTool, e.Err}
}

package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultTool is the external search tool used for the filesystem side.
const DefaultTool = "rg"

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// RequireTool checks that the external search tool is installed.
func RequireTool(tool string) error {
	if tool == "" {
		tool = DefaultTool
	}
	if _, err := lookPath(tool); err != nil {
		return &MissingDependencyError{Tool: tool, Err: err}
	}
	return nil
}

// FileSearcher searches files under root for pattern.
type FileSearcher interface {
	Search(ctx context.Context, pattern, root string) ([]Match, error)
}

// CommandExecutor abstracts command execution for testing.
type CommandExecutor interface {
	// Run executes a command and returns its stdout and stderr. Output is
	// returned even when the command exits with a non-zero status.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// DefaultExecutor executes commands using os/exec.
type DefaultExecutor struct{}

// Run executes a command and captures its output.
func (e *DefaultExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// exitCoder is implemented by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// Ripgrep runs ripgrep (or a compatible tool) over a directory tree.
type Ripgrep struct {
	tool     string
	args     []string
	executor CommandExecutor
	logger   *slog.Logger
}

// NewRipgrep creates a searcher for tool with extra command-line arguments.
func NewRipgrep(tool string, extraArgs []string, logger *slog.Logger) *Ripgrep {
	return NewRipgrepWithExecutor(tool, extraArgs, logger, &DefaultExecutor{})
}

// NewRipgrepWithExecutor creates a searcher with a custom executor (for testing).
func NewRipgrepWithExecutor(tool string, extraArgs []string, logger *slog.Logger, executor CommandExecutor) *Ripgrep {
	if tool == "" {
		tool = DefaultTool
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ripgrep{
		tool:     tool,
		args:     extraArgs,
		executor: executor,
		logger:   logger,
	}
}

// Tool returns the configured executable.
func (r *Ripgrep) Tool() string {
	return r.tool
}

// Args returns the full argument list for a search.
func (r *Ripgrep) Args(pattern, root string) []string {
	args := []string{"--with-filename", "--line-number", "--no-heading", "--color", "never"}
	args = append(args, r.args...)
	return append(args, "--regexp", pattern, "--", root)
}

// Search runs the tool and parses its output in the order it was emitted.
//
// Exit status 1 means no matches. Exit status 2 with output means some paths
// could not be read (common when searching a home directory); the matches
// found are kept.
func (r *Ripgrep) Search(ctx context.Context, pattern, root string) ([]Match, error) {
	stdout, stderr, err := r.executor.Run(ctx, r.tool, r.Args(pattern, root)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ExternalToolError{Tool: r.tool, Err: ctxErr}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &MissingDependencyError{Tool: r.tool, Err: err}
		}
		var ec exitCoder
		if errors.As(err, &ec) {
			switch code := ec.ExitCode(); {
			case code == 1:
				return nil, nil
			case code == 2 && len(stdout) > 0:
				r.logger.Debug("partial filesystem search",
					"tool", r.tool,
					"stderr", firstLine(stderr),
				)
				return ParseGrepOutput(stdout), nil
			}
		}
		return nil, &ExternalToolError{Tool: r.tool, Stderr: firstLine(stderr), Err: err}
	}
	return ParseGrepOutput(stdout), nil
}

// ParseGrepOutput parses "path:line:text" lines. Only the first two
// colon-separated fields are used for the position; a line whose second field
// is not a number yields a match without a position.
func ParseGrepOutput(out []byte) []Match {
	var matches []Match

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, ":", 3)
		m := Match{Source: SourceFile, Label: fields[0]}
		if len(fields) >= 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				m.Line = n
				m.HasPosition = true
			}
		}
		if len(fields) == 3 {
			m.Text = fields[2]
		}
		matches = append(matches, m)
	}
	return matches
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

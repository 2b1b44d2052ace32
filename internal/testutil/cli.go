package testutil

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	// binaryPath caches the built loclink binary across tests.
	binaryPath string
	buildMu    sync.Mutex
	buildErr   error
)

// CLIResult is the parsed JSON envelope of one CLI run.
type CLIResult struct {
	OK       bool
	Data     map[string]interface{}
	Error    *CLIError
	Warnings []CLIWarning
	Meta     *CLIMeta
	RawJSON  string
	ExitCode int
}

// CLIError is a structured error from the CLI.
type CLIError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// CLIWarning is a warning from the CLI.
type CLIWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// CLIMeta is the metadata of a response.
type CLIMeta struct {
	Count        int   `json:"count,omitempty"`
	SearchTimeMs int64 `json:"search_time_ms,omitempty"`
}

// BuildCLI builds the loclink binary once per test process and returns its
// path.
func BuildCLI(t *testing.T) string {
	t.Helper()

	buildMu.Lock()
	defer buildMu.Unlock()

	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err == nil {
			return binaryPath
		}
		// Temp cleanup removed it.
		binaryPath = ""
		buildErr = nil
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		buildErr = err
	} else {
		tmpDir, err := os.MkdirTemp("", "loclink-cli-bin-*")
		if err != nil {
			buildErr = err
		} else {
			binName := "loclink"
			if runtime.GOOS == "windows" {
				binName = "loclink.exe"
			}

			binaryPath = filepath.Join(tmpDir, binName)
			cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/loclink")
			cmd.Dir = projectRoot
			output, err := cmd.CombinedOutput()
			if err != nil {
				buildErr = &BuildError{Output: string(output), Err: err}
				binaryPath = ""
			}
		}
	}

	if buildErr != nil {
		t.Fatalf("failed to build CLI: %v", buildErr)
	}
	return binaryPath
}

// BuildError reports a failed go build with its output.
type BuildError struct {
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return e.Err.Error() + "\n" + e.Output
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs loclink in the workspace with --json and the workspace config.
func (w *Workspace) RunCLI(args ...string) *CLIResult {
	w.t.Helper()
	return w.run("", args)
}

// RunCLIWithStdin is RunCLI with stdin attached.
func (w *Workspace) RunCLIWithStdin(stdin string, args ...string) *CLIResult {
	w.t.Helper()
	return w.run(stdin, args)
}

func (w *Workspace) run(stdin string, args []string) *CLIResult {
	w.t.Helper()
	binary := BuildCLI(w.t)

	cmdArgs := append([]string{"--config", w.ConfigPath, "--json", "--no-links"}, args...)
	cmd := exec.Command(binary, cmdArgs...)
	cmd.Dir = w.Path
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	output, err := cmd.Output()

	result := &CLIResult{RawJSON: string(output)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	var resp struct {
		OK       bool                   `json:"ok"`
		Data     map[string]interface{} `json:"data,omitempty"`
		Error    *CLIError              `json:"error,omitempty"`
		Warnings []CLIWarning           `json:"warnings,omitempty"`
		Meta     *CLIMeta               `json:"meta,omitempty"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		result.Error = &CLIError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse JSON output: " + err.Error(),
			Details: map[string]interface{}{"raw": string(output)},
		}
		return result
	}

	result.OK = resp.OK
	result.Data = resp.Data
	result.Error = resp.Error
	result.Warnings = resp.Warnings
	result.Meta = resp.Meta
	return result
}

// MustSucceed fails the test if the command did not succeed.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK {
		errMsg := "unknown error"
		if r.Error != nil {
			errMsg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected command to succeed, got error: %s\nRaw output: %s", errMsg, r.RawJSON)
	}
	return r
}

// MustFail fails the test unless the command failed with expectedCode.
func (r *CLIResult) MustFail(t *testing.T, expectedCode string) *CLIResult {
	t.Helper()
	if r.OK {
		t.Fatalf("expected command to fail with code %s, but it succeeded\nRaw output: %s", expectedCode, r.RawJSON)
	}
	if r.Error == nil {
		t.Fatalf("expected error with code %s, but error is nil\nRaw output: %s", expectedCode, r.RawJSON)
	}
	if r.Error.Code != expectedCode {
		t.Fatalf("expected error code %s, got %s: %s\nRaw output: %s", expectedCode, r.Error.Code, r.Error.Message, r.RawJSON)
	}
	return r
}

// DataList extracts a list from Data.
func (r *CLIResult) DataList(key string) []interface{} {
	if r.Data == nil {
		return nil
	}
	if list, ok := r.Data[key].([]interface{}); ok {
		return list
	}
	return nil
}

// DataString extracts a string from Data.
func (r *CLIResult) DataString(key string) string {
	if r.Data == nil {
		return ""
	}
	if s, ok := r.Data[key].(string); ok {
		return s
	}
	return ""
}

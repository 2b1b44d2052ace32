package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	fzfLookPath         = exec.LookPath
	fzfStdinIsTerminal  = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }
	fzfStdoutIsTerminal = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
)

// fzfPickerOptions are passed through to fzf as flags.
type fzfPickerOptions struct {
	Prompt    string
	Header    string
	Delimiter string
	WithNth   string
	// Preview is a shell command run by fzf for the highlighted line.
	Preview       string
	PreviewWindow string
	// Accent colors the prompt and pointer.
	Accent string
}

// args returns the fzf command line. A single candidate is chosen without
// showing the picker, and an empty list exits at once.
func (o fzfPickerOptions) args() []string {
	args := []string{"--layout=reverse", "--height=80%", "--border", "--select-1", "--exit-0"}
	for _, f := range []struct{ flag, value string }{
		{"--prompt", o.Prompt},
		{"--header", o.Header},
		{"--delimiter", o.Delimiter},
		{"--with-nth", o.WithNth},
		{"--preview", o.Preview},
		{"--preview-window", o.PreviewWindow},
		{"--color", accentColors(o.Accent)},
	} {
		if strings.TrimSpace(f.value) != "" {
			args = append(args, f.flag, f.value)
		}
	}
	return args
}

func hasFZFInstalled() bool {
	_, err := fzfLookPath("fzf")
	return err == nil
}

func canUseFZFInteractive() bool {
	if isJSONOutput() {
		return false
	}
	if !fzfStdinIsTerminal() || !fzfStdoutIsTerminal() {
		return false
	}
	return hasFZFInstalled()
}

func accentColors(accent string) string {
	if accent == "" {
		return ""
	}
	return "prompt:" + accent + ",pointer:" + accent
}

// runFZFPicker shows lines in fzf and returns the chosen one. selected is
// false when the user cancels or there is nothing to choose from.
func runFZFPicker(lines []string, opts fzfPickerOptions) (string, bool, error) {
	if len(lines) == 0 {
		return "", false, nil
	}

	cmd := exec.Command("fzf", opts.args()...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code == 1 || code == 130 {
				return "", false, nil
			}
		}
		return "", false, fmt.Errorf("run fzf selector: %w", err)
	}

	selection := strings.TrimSpace(stdout.String())
	if selection == "" {
		return "", false, nil
	}
	return selection, true, nil
}

// interactivePickerMissingArgSuggestion explains how to get past a choice
// that needs the picker.
func interactivePickerMissingArgSuggestion(commandName, usage string) string {
	if hasFZFInstalled() {
		return fmt.Sprintf("Run '%s' or run 'loclink %s' in an interactive terminal", usage, commandName)
	}
	return fmt.Sprintf("Install fzf to choose interactively with 'loclink %s', or run '%s'", commandName, usage)
}

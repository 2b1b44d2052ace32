package cli

import (
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/aidanlsb/loclink/internal/search"
)

func TestInteractivePickerMissingArgSuggestion(t *testing.T) {
	prevLookPath := fzfLookPath
	t.Cleanup(func() {
		fzfLookPath = prevLookPath
	})

	t.Run("includes install hint when fzf missing", func(t *testing.T) {
		fzfLookPath = func(string) (string, error) {
			return "", exec.ErrNotFound
		}

		suggestion := interactivePickerMissingArgSuggestion("jump", "loclink jump --first <uuid>")
		if !strings.Contains(suggestion, "Install fzf") {
			t.Fatalf("expected install hint, got %q", suggestion)
		}
		if !strings.Contains(suggestion, "loclink jump --first <uuid>") {
			t.Fatalf("expected fallback usage, got %q", suggestion)
		}
	})

	t.Run("uses direct usage hint when fzf installed", func(t *testing.T) {
		fzfLookPath = func(string) (string, error) {
			return "/usr/local/bin/fzf", nil
		}

		suggestion := interactivePickerMissingArgSuggestion("jump", "loclink jump --first <uuid>")
		if strings.Contains(suggestion, "Install fzf") {
			t.Fatalf("did not expect install hint when fzf is available, got %q", suggestion)
		}
		if !strings.Contains(suggestion, "loclink jump --first <uuid>") {
			t.Fatalf("expected fallback usage, got %q", suggestion)
		}
	})
}

func TestCanUseFZFInteractive(t *testing.T) {
	prevLookPath, prevStdin, prevStdout, prevJSON := fzfLookPath, fzfStdinIsTerminal, fzfStdoutIsTerminal, jsonOutput
	t.Cleanup(func() {
		fzfLookPath, fzfStdinIsTerminal, fzfStdoutIsTerminal, jsonOutput = prevLookPath, prevStdin, prevStdout, prevJSON
	})

	installed := func(string) (string, error) { return "/usr/bin/fzf", nil }
	yes := func() bool { return true }
	no := func() bool { return false }

	tests := []struct {
		name   string
		json   bool
		stdin  func() bool
		stdout func() bool
		want   bool
	}{
		{name: "interactive terminal", stdin: yes, stdout: yes, want: true},
		{name: "json output", json: true, stdin: yes, stdout: yes},
		{name: "piped stdout", stdin: yes, stdout: no},
		{name: "piped stdin", stdin: no, stdout: yes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fzfLookPath = installed
			fzfStdinIsTerminal = tt.stdin
			fzfStdoutIsTerminal = tt.stdout
			jsonOutput = tt.json
			if got := canUseFZFInteractive(); got != tt.want {
				t.Fatalf("canUseFZFInteractive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPickedTarget(t *testing.T) {
	targets := []search.Match{
		{Source: search.SourceFile, Label: "/n/a.md", Line: 1, HasPosition: true},
		{Source: search.SourceFile, Label: "/n/b.md", Line: 7, HasPosition: true},
	}

	got, ok, err := pickedTarget("1\tb.md:7\t(loc x)", targets)
	if err != nil || !ok {
		t.Fatalf("pickedTarget: %v %v", ok, err)
	}
	if got.Label != "/n/b.md" || got.Line != 7 {
		t.Fatalf("picked %v", got)
	}

	for _, bad := range []string{"", "x\tb.md", "2\tc.md", "-1\t"} {
		if _, _, err := pickedTarget(bad, targets); err == nil {
			t.Errorf("pickedTarget(%q) should fail", bad)
		}
	}
}

func TestRunFZFPickerEmpty(t *testing.T) {
	selected, ok, err := runFZFPicker(nil, fzfPickerOptions{})
	if err != nil || ok || selected != "" {
		t.Fatalf("runFZFPicker(nil) = %q, %v, %v", selected, ok, err)
	}
}

func TestFZFPickerArgs(t *testing.T) {
	got := fzfPickerOptions{Prompt: "jump> ", Delimiter: "\t", Preview: "cat {4}"}.args()
	want := []string{
		"--layout=reverse", "--height=80%", "--border", "--select-1", "--exit-0",
		"--prompt", "jump> ",
		"--delimiter", "\t",
		"--preview", "cat {4}",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args() = %q, want %q", got, want)
	}

	colored := fzfPickerOptions{Accent: "39"}.args()
	if last := colored[len(colored)-2:]; last[0] != "--color" || last[1] != "prompt:39,pointer:39" {
		t.Fatalf("expected accent colors, got %q", colored)
	}
}

// Package editor launches the user's configured editor at a file and line.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aidanlsb/loclink/internal/config"
	"github.com/aidanlsb/loclink/internal/shellquote"
)

// ErrNoEditor is returned when neither the config nor $EDITOR names an editor.
var ErrNoEditor = errors.New("no editor configured")

type mode int

const (
	modeAuto mode = iota
	modeTerminal
	modeGUI
)

var terminalEditors = map[string]bool{
	"vi": true, "vim": true, "nvim": true, "nano": true, "emacs": true,
	"hx": true, "helix": true, "micro": true, "kak": true,
}

// Runner starts a command. Tests replace it to capture invocations.
type Runner func(cmd *exec.Cmd, foreground bool) error

// Exec is the default Runner.
func Exec(cmd *exec.Cmd, foreground bool) error {
	if foreground {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	return cmd.Start()
}

// Launcher opens files in an editor.
type Launcher struct {
	editor string
	mode   mode
	run    Runner
}

// New builds a launcher from cfg. A nil run uses Exec.
func New(cfg *config.Config, run Runner) (*Launcher, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	editor := strings.TrimSpace(cfg.GetEditor())
	if editor == "" {
		return nil, ErrNoEditor
	}
	if run == nil {
		run = Exec
	}
	return &Launcher{editor: editor, mode: parseMode(cfg.EditorMode), run: run}, nil
}

// Name is the editor executable without arguments or directory.
func (l *Launcher) Name() string { return commandName(l.editor) }

// OpenAt opens path at a 1-based line. line <= 0 opens the file without a position.
// Terminal editors run in the foreground with the TTY attached.
func (l *Launcher) OpenAt(path string, line int) error {
	args := lineArgs(l.Name(), path, line)

	var cmd *exec.Cmd
	if strings.ContainsAny(l.editor, " \t") {
		// Compound commands like "open -a Cursor" go through the shell.
		cmd = exec.Command("sh", "-c", l.editor+" "+shellquote.Join(args...))
	} else {
		cmd = exec.Command(l.editor, args...)
	}

	if err := l.run(cmd, l.foreground()); err != nil {
		return fmt.Errorf("failed to open editor '%s': %w", l.editor, err)
	}
	return nil
}

func (l *Launcher) foreground() bool {
	switch l.mode {
	case modeTerminal:
		return true
	case modeGUI:
		return false
	default:
		return isTerminalEditor(l.editor)
	}
}

func parseMode(raw string) mode {
	normalized, _ := config.NormalizeEditorMode(raw)
	switch normalized {
	case "terminal":
		return modeTerminal
	case "gui":
		return modeGUI
	default:
		return modeAuto
	}
}

// commandName extracts the executable name from an editor command line.
func commandName(editor string) string {
	editor = strings.TrimSpace(editor)
	if editor == "" {
		return ""
	}
	var first string
	if editor[0] == '"' || editor[0] == '\'' {
		if end := strings.IndexByte(editor[1:], editor[0]); end >= 0 {
			first = editor[1 : end+1]
		} else {
			first = editor[1:]
		}
	} else {
		first = strings.Fields(editor)[0]
	}
	return filepath.Base(first)
}

func isTerminalEditor(editor string) bool {
	return terminalEditors[commandName(editor)]
}

// lineArgs builds the arguments that open path at line for a known editor.
func lineArgs(name, path string, line int) []string {
	if line <= 0 {
		return []string{path}
	}
	n := strconv.Itoa(line)
	switch name {
	case "vi", "vim", "nvim", "nano", "emacs", "emacsclient", "micro", "kak":
		return []string{"+" + n, path}
	case "hx", "helix", "subl", "zed":
		return []string{path + ":" + n}
	case "code", "code-insiders", "cursor", "codium", "windsurf":
		return []string{"--goto", path + ":" + n}
	default:
		return []string{path}
	}
}

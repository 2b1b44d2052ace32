package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/atomicfile"
	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/ui"
)

var (
	newUUID   string
	newInsert string
	newPair   bool
)

var newCmd = &cobra.Command{
	Use:   "new [loc|ref]",
	Short: "Create a marker with a fresh UUID",
	Long: `Print a new location (default) or reference marker with a random UUID.

With --insert the marker is written into a file instead: at the end of the
given line, or on a new last line when no line is given. The file is
replaced atomically.

Examples:
  # Print a new location marker
  loclink new

  # Print a location and the reference that points at it
  loclink new --pair

  # Add a reference to a known location at the end of line 12
  loclink new ref --uuid 2f402556-e55b-4a2a-8e4d-fbda29f6c5fb --insert notes/todo.md:12`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"loc", "ref"},
	RunE:      runNew,
}

func init() {
	newCmd.Flags().StringVar(&newUUID, "uuid", "", "Use this UUID instead of a random one")
	newCmd.Flags().StringVar(&newInsert, "insert", "", "Write the marker into file[:line]")
	newCmd.Flags().BoolVar(&newPair, "pair", false, "Also print the partner marker")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	kind := marker.Location
	if len(args) == 1 {
		k, err := marker.ParseKind(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		kind = k
	}

	id := strings.TrimSpace(newUUID)
	if id == "" {
		id = uuid.NewString()
	} else if !marker.IsUUID(id) {
		return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("not a UUID: %q", id), "")
	}

	literal := kind.Literal(id)
	data := map[string]interface{}{
		"uuid":   id,
		"kind":   kind.String(),
		"marker": literal,
	}
	partner := kind.Complement().Literal(id)
	if newPair {
		data["partner"] = partner
	}

	if newInsert != "" {
		path, line, err := parseInsertTarget(newInsert)
		if err != nil {
			return handleError(ErrInvalidInput, err, "Use --insert file or --insert file:line")
		}
		if err := newFilter(getConfig()).Classify(document.ID(path), ""); err != nil {
			return handleError(ErrFileIneligible, err, "Add the extension to 'extensions' in the config file")
		}
		written, err := insertMarker(path, line, literal)
		if err != nil {
			return handleError(errorCode(err), err, "")
		}
		data["path"] = path
		data["line"] = written

		if isJSONOutput() {
			outputSuccess(data, nil)
			return nil
		}
		fmt.Println(ui.Successf("Inserted %s at %s", literal, locationLink(path, written, nil)))
		if newPair {
			fmt.Println(partner)
		}
		return nil
	}

	if isJSONOutput() {
		outputSuccess(data, nil)
		return nil
	}
	fmt.Println(literal)
	if newPair {
		fmt.Println(partner)
	}
	return nil
}

// parseInsertTarget splits "file[:line]". A suffix that is not a number is
// part of the path.
func parseInsertTarget(raw string) (string, int, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndexByte(raw, ':'); i > 0 {
		if n, err := strconv.Atoi(raw[i+1:]); err == nil {
			if n < 1 {
				return "", 0, fmt.Errorf("line must be at least 1, got %d", n)
			}
			return raw[:i], n, nil
		}
	}
	if raw == "" {
		return "", 0, fmt.Errorf("file is required")
	}
	return raw, 0, nil
}

// insertMarker writes literal at the end of the 1-based line, or on a new
// last line when line is 0. It returns the line the marker ended up on.
func insertMarker(path string, line int, literal string) (int, error) {
	var written int
	err := atomicfile.Update(path, func(old []byte) ([]byte, error) {
		text, n, err := insertAt(string(old), line, literal)
		if err != nil {
			return nil, err
		}
		written = n
		return []byte(text), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", path, err)
	}
	return written, nil
}

func insertAt(text string, line int, literal string) (string, int, error) {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if line == 0 {
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text + literal + "\n", len(lines) + 1, nil
	}
	if line > len(lines) {
		return "", 0, fmt.Errorf("line %d is past the end of the file (%d lines)", line, len(lines))
	}

	target := lines[line-1]
	body := strings.TrimRight(target, "\r\n")
	ending := target[len(body):]
	if body != "" && !strings.HasSuffix(body, " ") && !strings.HasSuffix(body, "\t") {
		body += " "
	}
	lines[line-1] = body + literal + ending
	return strings.Join(lines, ""), line, nil
}

package ui

import "fmt"

// Status symbols. Status lines carry no color, only the symbol.
const (
	SymbolSuccess = "✓"
	SymbolWarning = "⚠"
)

// Success prefixes msg with the success symbol.
func Success(msg string) string { return SymbolSuccess + " " + msg }

// Successf is Success with formatting.
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Warning prefixes msg with the warning symbol.
func Warning(msg string) string { return SymbolWarning + " " + msg }

// Warningf is Warning with formatting.
func Warningf(format string, args ...interface{}) string {
	return Warning(fmt.Sprintf(format, args...))
}

// Header renders a result section header.
func Header(msg string) string { return Bold.Render(msg) }

// Label renders a document label or file path.
func Label(label string) string { return Accent.Render(label) }

// Position renders the ":N" suffix of a match.
func Position(n int) string { return Muted.Render(fmt.Sprintf(":%d", n)) }

// Hint renders secondary text.
func Hint(msg string) string { return Muted.Render(msg) }

// MarkerKind renders a marker kind name, padded to a fixed column.
func MarkerKind(name string) string {
	padded := fmt.Sprintf("%-9s", name)
	if name == "reference" {
		return Reference.Render(padded)
	}
	return Accent.Render(padded)
}

// Count renders "(n noun)", choosing the singular or plural noun.
func Count(n int, singular, plural string) string {
	noun := plural
	if n == 1 {
		noun = singular
	}
	return fmt.Sprintf("(%d %s)", n, noun)
}

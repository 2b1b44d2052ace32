package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Markers and matches carry byte offsets; LSP positions count UTF-16 code
// units within a line.

// PositionAt converts a byte offset in text into an LSP position.
func PositionAt(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:      strings.Count(before, "\n"),
		Character: utf16Len(before[lineStart:]),
	}
}

// OffsetAt converts an LSP position into a byte offset in text. Positions
// past the end of a line clamp to the line end; lines past the end of the
// text clamp to len(text).
func OffsetAt(text string, pos Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return len(text)
		}
		offset += i + 1
	}

	end := len(text)
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		end = offset + i
	}

	units := 0
	for i, r := range text[offset:end] {
		if units >= pos.Character {
			return offset + i
		}
		units += runeUnits(r)
	}
	return end
}

// RangeOf converts a byte span into an LSP range.
func RangeOf(text string, start, end int) Range {
	return Range{Start: PositionAt(text, start), End: PositionAt(text, end)}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Labels, paths, marker kinds
// - Muted (gray): Offsets, line numbers, hints
// - No colored success/error/warning - use unicode symbols only

const defaultAccent = "#A78BFA"

var (
	// Accent style for file paths, document labels, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info, hints, positions
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// Reference style for reference markers; locations use Accent
	Reference = lipgloss.NewStyle().Italic(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)

	// accentColor is the configured accent, empty when disabled.
	accentColor = defaultAccent
)

// ConfigureTheme applies the accent color from config. Empty or "default"
// keeps the built-in accent; "none", "off" or an invalid value turn it off.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		color = ""
	}
	setAccent(color)
}

func setAccent(color string) {
	accentColor = color
	if color == "" {
		Accent = lipgloss.NewStyle()
		AccentBold = lipgloss.NewStyle().Bold(true)
		return
	}
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = Accent.Bold(true)
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

// normalizeAccentColor accepts ANSI codes 0-255 and #RGB / #RRGGBB hex colors.
// The bool is false when the accent should be disabled.
func normalizeAccentColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "default":
		return defaultAccent, true
	case "none", "off":
		return "", false
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return "", false
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", false
		}
		return "#" + hex, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return "", false
	}
	return strconv.Itoa(n), true
}

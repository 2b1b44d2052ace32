// Package config handles global loclink configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultDebounce is the reindex delay used when none is configured.
	DefaultDebounce = time.Second
	// DefaultSearchTimeout bounds a filesystem search when none is configured.
	DefaultSearchTimeout = 30 * time.Second
	// DefaultSearchTool is the external search tool.
	DefaultSearchTool = "rg"
)

// Config represents the global loclink configuration.
type Config struct {
	// Debounce is the quiet period before an edited document is reindexed (e.g. "1s", "250ms").
	Debounce string `toml:"debounce"`

	// Extensions and LanguageIDs select text-like documents. Empty means the built-in defaults.
	Extensions  []string `toml:"extensions"`
	LanguageIDs []string `toml:"language_ids"`

	// IgnoreDirs are directory names skipped by `loclink watch`.
	IgnoreDirs []string `toml:"ignore_dirs"`

	// Editor is the editor to use for opening files (defaults to $EDITOR).
	Editor string `toml:"editor"`

	// EditorMode controls how the editor is launched: auto, terminal, or gui.
	EditorMode string `toml:"editor_mode"`

	// LogLevel is one of debug, info, warn, error. Default: warn.
	LogLevel string `toml:"log_level"`

	Search SearchConfig `toml:"search"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// SearchConfig configures the filesystem side of a partner search.
type SearchConfig struct {
	// Root is the directory searched on disk. Default: the home directory.
	Root string `toml:"root"`
	// Tool is the ripgrep-compatible executable. Default: "rg".
	Tool string `toml:"tool"`
	// Args are extra arguments passed to the tool (e.g. ["--hidden"]).
	Args []string `toml:"args"`
	// Timeout bounds a single search. "0" disables the bound. Default: "30s".
	Timeout string `toml:"timeout"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// DebounceDelay returns the configured reindex delay.
func (c *Config) DebounceDelay() (time.Duration, error) {
	return parseDuration("debounce", c.Debounce, DefaultDebounce, false)
}

// SearchTimeout returns the configured search timeout. Zero means unbounded.
func (c *Config) SearchTimeout() (time.Duration, error) {
	return parseDuration("search.timeout", c.Search.Timeout, DefaultSearchTimeout, true)
}

// SearchTool returns the configured search tool.
func (c *Config) SearchTool() string {
	if tool := strings.TrimSpace(c.Search.Tool); tool != "" {
		return tool
	}
	return DefaultSearchTool
}

// SearchRoot returns the absolute filesystem search root, expanding a
// leading "~". An empty root resolves to the home directory.
func (c *Config) SearchRoot() (string, error) {
	root := strings.TrimSpace(c.Search.Root)
	if root == "" || root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		if root == "" || root == "~" {
			return home, nil
		}
		root = filepath.Join(home, root[2:])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve search.root %q: %w", root, err)
	}
	return abs, nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if _, err := c.DebounceDelay(); err != nil {
		return err
	}
	if _, err := c.SearchTimeout(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if mode := strings.TrimSpace(c.EditorMode); mode != "" {
		if _, ok := NormalizeEditorMode(mode); !ok {
			return fmt.Errorf("invalid editor_mode %q (want auto, terminal or gui)", mode)
		}
	}
	return nil
}

// NormalizeEditorMode lower-cases and validates an editor mode.
func NormalizeEditorMode(raw string) (string, bool) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "auto", "terminal", "gui":
		return mode, true
	default:
		return "", false
	}
}

func parseDuration(key, raw string, fallback time.Duration, allowZero bool) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	if raw == "0" && allowZero {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads and validates the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// LoadAllowMissing loads the config at path (or the default path when path is
// empty). A missing file yields an empty config and exists=false.
func LoadAllowMissing(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved = ResolveConfigPath(path)
	if _, statErr := os.Stat(resolved); os.IsNotExist(statErr) {
		return &Config{}, resolved, false, nil
	}
	cfg, err = LoadFrom(resolved)
	if err != nil {
		return nil, resolved, true, err
	}
	return cfg, resolved, true, nil
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/loclink/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	// Prefer XDG-style ~/.config/loclink/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "loclink", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	// Fall back to XDG config dir or OS-specific location
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "loclink", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

const defaultConfig = `# loclink configuration

# Quiet period before an edited document is reindexed.
# debounce = "1s"

# Text-like documents (empty = built-in defaults).
# extensions = [".md", ".txt", ".org"]
# language_ids = ["markdown", "plaintext"]

# Directory names skipped by 'loclink watch'.
# ignore_dirs = [".git", "node_modules"]

# Editor for opening files (defaults to $EDITOR)
# editor = "code"
#
# How to launch the editor:
#   auto     - detect common terminal editors
#   terminal - always run in the foreground with TTY attached
#   gui      - always run in the background (non-blocking)
# editor_mode = "auto"

# log_level = "warn"

# [search]
# root = "~"
# tool = "rg"
# args = ["--hidden"]
# timeout = "30s"   # "0" disables the bound

# Optional UI accent color for headers/links in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
`

// CreateDefaultAt creates a default config file at path if it doesn't exist.
func CreateDefaultAt(configPath string) (string, error) {
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// GetEditor returns the editor to use, falling back to $EDITOR.
func (c *Config) GetEditor() string {
	if c.Editor != "" {
		return c.Editor
	}
	return os.Getenv("EDITOR")
}

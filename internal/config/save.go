package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/loclink/internal/atomicfile"
)

type persistedConfig struct {
	Debounce    *string                  `toml:"debounce,omitempty"`
	Extensions  []string                 `toml:"extensions,omitempty"`
	LanguageIDs []string                 `toml:"language_ids,omitempty"`
	IgnoreDirs  []string                 `toml:"ignore_dirs,omitempty"`
	Editor      *string                  `toml:"editor,omitempty"`
	EditorMode  *string                  `toml:"editor_mode,omitempty"`
	LogLevel    *string                  `toml:"log_level,omitempty"`
	Search      *persistedSearchSettings `toml:"search,omitempty"`
	UI          *persistedUISettings     `toml:"ui,omitempty"`
}

type persistedSearchSettings struct {
	Root    *string  `toml:"root,omitempty"`
	Tool    *string  `toml:"tool,omitempty"`
	Args    []string `toml:"args,omitempty"`
	Timeout *string  `toml:"timeout,omitempty"`
}

type persistedUISettings struct {
	Accent *string `toml:"accent,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the global config to a specific path atomically. Empty
// fields are omitted so the file stays minimal.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		Debounce:    nonEmptyPtr(cfg.Debounce),
		Extensions:  cfg.Extensions,
		LanguageIDs: cfg.LanguageIDs,
		IgnoreDirs:  cfg.IgnoreDirs,
		Editor:      nonEmptyPtr(cfg.Editor),
		EditorMode:  nonEmptyPtr(cfg.EditorMode),
		LogLevel:    nonEmptyPtr(cfg.LogLevel),
	}

	search := persistedSearchSettings{
		Root:    nonEmptyPtr(cfg.Search.Root),
		Tool:    nonEmptyPtr(cfg.Search.Tool),
		Args:    cfg.Search.Args,
		Timeout: nonEmptyPtr(cfg.Search.Timeout),
	}
	if search.Root != nil || search.Tool != nil || len(search.Args) > 0 || search.Timeout != nil {
		out.Search = &search
	}

	if accent := nonEmptyPtr(cfg.UI.Accent); accent != nil {
		out.UI = &persistedUISettings{Accent: accent}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}

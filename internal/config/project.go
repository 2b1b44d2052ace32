package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the name of the per-tree configuration file.
const ProjectFile = ".loclink.yaml"

// ProjectConfig holds per-tree overrides read from .loclink.yaml.
type ProjectConfig struct {
	// Path is the file the config was read from. Empty when none was found.
	Path string `yaml:"-"`

	Extensions []string `yaml:"extensions,omitempty"`
	IgnoreDirs []string `yaml:"ignore_dirs,omitempty"`

	Search ProjectSearchConfig `yaml:"search,omitempty"`
}

// ProjectSearchConfig overrides the global search settings for a tree.
type ProjectSearchConfig struct {
	// Root is resolved relative to the directory holding .loclink.yaml.
	Root string   `yaml:"root,omitempty"`
	Args []string `yaml:"args,omitempty"`
}

// FindProject looks for .loclink.yaml in dir and each of its parents.
// Returns an empty config if none exists.
func FindProject(dir string) (*ProjectConfig, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		candidate := filepath.Join(abs, ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return LoadProject(candidate)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return &ProjectConfig{}, nil
		}
		abs = parent
	}
}

// LoadProject loads a project config file.
func LoadProject(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config %s: %w", path, err)
	}

	var pc ProjectConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("failed to parse project config %s: %w", path, err)
	}
	pc.Path = path

	if pc.Search.Root != "" && !filepath.IsAbs(pc.Search.Root) && pc.Search.Root[0] != '~' {
		pc.Search.Root = filepath.Join(filepath.Dir(path), pc.Search.Root)
	}
	return &pc, nil
}

// Apply returns a copy of cfg with the project's overrides applied.
func (pc *ProjectConfig) Apply(cfg *Config) *Config {
	out := *cfg
	if pc == nil {
		return &out
	}
	if len(pc.Extensions) > 0 {
		out.Extensions = pc.Extensions
	}
	if len(pc.IgnoreDirs) > 0 {
		out.IgnoreDirs = pc.IgnoreDirs
	}
	if pc.Search.Root != "" {
		out.Search.Root = pc.Search.Root
	}
	if len(pc.Search.Args) > 0 {
		out.Search.Args = pc.Search.Args
	}
	return &out
}

// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/config"
	"github.com/aidanlsb/loclink/internal/ui"
)

var (
	// Global flags
	configPath string
	debugFlag  bool
	noLinks    bool

	// Resolved values
	resolvedConfigPath string
	globalCfg          *config.Config // as loaded, before any project file
	cfg                *config.Config
	logger             *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "loclink",
	Short: "loclink - UUID links between plain-text documents",
	Long: `loclink connects plain-text documents through UUID markers.

A location marker "(loc <uuid>)" names a place; a reference marker
"(ref <uuid>)" points at it. loclink indexes markers in open documents,
finds the partners of a marker in memory and on disk, and serves them to
editors over LSP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setHyperlinksDisabled(noLinks)

		// Commands that manage or describe the config load it themselves.
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		loaded, resolved, err := loadGlobalConfigWithPath()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		resolvedConfigPath = resolved
		globalCfg = loaded

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		if err := applyProjectConfig(loaded, cwd); err != nil {
			return fmt.Errorf("failed to load project config: %w", err)
		}

		ui.ConfigureTheme(cfg.UI.Accent)
		return setupLogger(cfg)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&noLinks, "no-links", false, "Disable terminal hyperlinks")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// getLogger returns the CLI logger.
func getLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}

// applyProjectConfig layers the nearest .loclink.yaml above dir onto the
// global config and stores the result.
func applyProjectConfig(global *config.Config, dir string) error {
	project, err := config.FindProject(dir)
	if err != nil {
		return err
	}
	cfg = project.Apply(global)
	return nil
}

// setupLogger installs a text logger on stderr. --debug wins over log_level.
func setupLogger(c *config.Config) error {
	level, err := c.Level()
	if err != nil {
		return err
	}
	if debugFlag {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/config"
)

type globalConfigContext struct {
	cfg          *config.Config
	configPath   string
	configExists bool
}

// configField is one scalar setting managed by 'config set' and 'config unset'.
type configField struct {
	key   string // config.toml key
	flag  string
	usage string
	get   func(c *config.Config) *string
	value string // bound to the set flag
	unset bool   // bound to the unset flag
}

var configFields = []*configField{
	{key: "debounce", flag: "debounce", usage: "reindex delay (e.g. 1s, 250ms)",
		get: func(c *config.Config) *string { return &c.Debounce }},
	{key: "editor", flag: "editor", usage: "editor command",
		get: func(c *config.Config) *string { return &c.Editor }},
	{key: "editor_mode", flag: "editor-mode", usage: "editor mode (auto|terminal|gui)",
		get: func(c *config.Config) *string { return &c.EditorMode }},
	{key: "log_level", flag: "log-level", usage: "log level (debug|info|warn|error)",
		get: func(c *config.Config) *string { return &c.LogLevel }},
	{key: "search.root", flag: "search-root", usage: "directory searched on disk",
		get: func(c *config.Config) *string { return &c.Search.Root }},
	{key: "search.tool", flag: "search-tool", usage: "ripgrep-compatible search tool",
		get: func(c *config.Config) *string { return &c.Search.Tool }},
	{key: "search.timeout", flag: "search-timeout", usage: `search timeout ("0" disables)`,
		get: func(c *config.Config) *string { return &c.Search.Timeout }},
	{key: "ui.accent", flag: "ui-accent", usage: "UI accent color (ANSI 0-255 or #RRGGBB)",
		get: func(c *config.Config) *string { return &c.UI.Accent }},
}

func loadGlobalConfigContextAllowMissing() (*globalConfigContext, error) {
	loadedCfg, resolvedConfigPath, exists, err := config.LoadAllowMissing(configPath)
	if err != nil {
		return nil, err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return &globalConfigContext{
		cfg:          loadedCfg,
		configPath:   resolvedConfigPath,
		configExists: exists,
	}, nil
}

func configData(ctx *globalConfigContext) map[string]interface{} {
	c := ctx.cfg
	return map[string]interface{}{
		"config_path":  ctx.configPath,
		"exists":       ctx.configExists,
		"debounce":     strings.TrimSpace(c.Debounce),
		"extensions":   c.Extensions,
		"language_ids": c.LanguageIDs,
		"ignore_dirs":  c.IgnoreDirs,
		"editor":       strings.TrimSpace(c.Editor),
		"editor_mode":  strings.TrimSpace(c.EditorMode),
		"log_level":    strings.TrimSpace(c.LogLevel),
		"search": map[string]interface{}{
			"root":    strings.TrimSpace(c.Search.Root),
			"tool":    strings.TrimSpace(c.Search.Tool),
			"args":    c.Search.Args,
			"timeout": strings.TrimSpace(c.Search.Timeout),
		},
		"ui": map[string]interface{}{
			"accent": strings.TrimSpace(c.UI.Accent),
		},
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ctx, err := loadGlobalConfigContextAllowMissing()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	if isJSONOutput() {
		outputSuccess(configData(ctx), nil)
		return nil
	}

	if !ctx.configExists {
		fmt.Printf("Config file does not exist: %s\n", ctx.configPath)
		fmt.Println("Run 'loclink config init' to create it.")
		return nil
	}

	fmt.Printf("config: %s\n", ctx.configPath)
	for _, f := range configFields {
		if v := strings.TrimSpace(*f.get(ctx.cfg)); v != "" {
			fmt.Printf("%s: %s\n", f.key, v)
		}
	}
	printList := func(key string, values []string) {
		if len(values) > 0 {
			fmt.Printf("%s: %s\n", key, strings.Join(values, ", "))
		}
	}
	printList("extensions", ctx.cfg.Extensions)
	printList("language_ids", ctx.cfg.LanguageIDs)
	printList("ignore_dirs", ctx.cfg.IgnoreDirs)
	printList("search.args", ctx.cfg.Search.Args)

	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global loclink config.toml settings",
	Long: `Manage global loclink config.toml settings.

Use this to initialize, inspect, and edit machine-level configuration.
List settings (extensions, ignore_dirs, search.args) are edited in the file.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default global config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := config.ResolveConfigPath(configPath)
		_, statErr := os.Stat(targetPath)
		existed := statErr == nil
		if statErr != nil && !os.IsNotExist(statErr) {
			return handleError(ErrFileReadError, statErr, "")
		}

		createdPath, err := config.CreateDefaultAt(targetPath)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": createdPath,
				"created":     !existed,
			}, nil)
			return nil
		}

		if existed {
			fmt.Printf("Config already exists: %s\n", createdPath)
		} else {
			fmt.Printf("Created config: %s\n", createdPath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set one or more global config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContextAllowMissing()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		changed := make([]string, 0, len(configFields))
		for _, f := range configFields {
			if !cmd.Flags().Changed(f.flag) {
				continue
			}
			value := strings.TrimSpace(f.value)
			if value == "" {
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("%s cannot be empty; use 'loclink config unset --%s' to clear it", f.flag, f.flag), "")
			}
			if f.key == "editor_mode" {
				mode, ok := config.NormalizeEditorMode(value)
				if !ok {
					return handleErrorMsg(ErrInvalidInput, "editor-mode must be one of: auto, terminal, gui", "")
				}
				value = mode
			}
			*f.get(ctx.cfg) = value
			changed = append(changed, f.key)
		}

		if len(changed) == 0 {
			return handleErrorMsg(ErrMissingArgument, "no fields provided; set at least one of "+configFlagList(), "")
		}
		if err := ctx.cfg.Validate(); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		ctx.configExists = true
		if isJSONOutput() {
			data := configData(ctx)
			data["changed"] = changed
			outputSuccess(data, nil)
			return nil
		}

		fmt.Printf("Updated config: %s\n", ctx.configPath)
		fmt.Printf("changed: %s\n", strings.Join(changed, ", "))
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Clear one or more global config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContextAllowMissing()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if !ctx.configExists {
			return handleErrorMsg(ErrFileNotFound, fmt.Sprintf("config file not found: %s", ctx.configPath), "Run 'loclink config init' first")
		}

		changed := make([]string, 0, len(configFields))
		for _, f := range configFields {
			if f.unset {
				*f.get(ctx.cfg) = ""
				changed = append(changed, f.key)
			}
		}

		if len(changed) == 0 {
			return handleErrorMsg(ErrMissingArgument, "no fields selected; pass one or more unset flags", "")
		}

		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			data := configData(ctx)
			data["changed"] = changed
			outputSuccess(data, nil)
			return nil
		}

		fmt.Printf("Updated config: %s\n", ctx.configPath)
		fmt.Printf("cleared: %s\n", strings.Join(changed, ", "))
		return nil
	},
}

func configFlagList() string {
	flags := make([]string, len(configFields))
	for i, f := range configFields {
		flags[i] = "--" + f.flag
	}
	return strings.Join(flags, "/")
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current global config.toml values",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	for _, f := range configFields {
		configSetCmd.Flags().StringVar(&f.value, f.flag, "", "Set "+f.usage)
		configUnsetCmd.Flags().BoolVar(&f.unset, f.flag, false, "Clear "+f.key)
	}

	rootCmd.AddCommand(configCmd)
}

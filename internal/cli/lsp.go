package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Language Server Protocol server",
	Long: `Start a Language Server Protocol (LSP) server for loclink.

This enables editor features like:
- Go-to-definition from a reference to its location
- Find-references from a location to every reference
- Hover information with partner counts
- Clickable document links over every marker

Open documents are reindexed after edits settle (see 'debounce' in the
config file). Partners are searched in open documents and, through the
configured search tool, on disk under search.root.

The server communicates over stdin/stdout using JSON-RPC.

Examples:
  # Start LSP server (for editor integration)
  loclink lsp

  # Start with debug logging to stderr
  loclink lsp --debug`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
	c := getConfig()
	log := getLogger()

	files, err := newFileSearcher(c)
	if err != nil {
		return err
	}
	opts, err := searchOptions(c)
	if err != nil {
		return err
	}
	delay, err := c.DebounceDelay()
	if err != nil {
		return err
	}
	log.Debug("starting lsp", "config", resolvedConfigPath, "root", opts.Root, "tool", files.Tool(), "debounce", delay)

	server, err := lsp.NewServer(lsp.Options{
		Logger:      log,
		Delay:       delay,
		Files:       files,
		Root:        opts.Root,
		Timeout:     opts.Timeout,
		Extensions:  c.Extensions,
		LanguageIDs: c.LanguageIDs,
	})
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, cancel := signalContext()
	defer cancel()

	return server.Run(ctx)
}

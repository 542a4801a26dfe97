// Package cli implements the supportly command line: the HTTP and MCP
// servers plus commands that manage one namespace's entries directly.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/all-black-493/supportly/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	configDir string
	dataDir   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "supportly",
	Short: "Multi-tenant knowledge base for support teams",
	Long: `supportly stores uploaded documents per organisation, skips content it
already holds, and answers semantic queries over the indexed text.

Run "supportly serve" for the HTTP API or "supportly mcp serve" to expose
one organisation's knowledge base to an AI assistant.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.supportly)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory, overrides storage.data_dir")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

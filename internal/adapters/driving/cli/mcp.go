package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/all-black-493/supportly/internal/adapters/driving/mcp"
)

var (
	mcpNamespace string
	mcpPort      int
	mcpReadOnly  bool
	mcpEphemeral bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server acts for a single organisation, chosen with --namespace. It offers
the tools search_knowledge, list_entries, add_document and delete_entry
(the last three are left out with --read-only).

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode
  supportly mcp serve --namespace org_123

  # HTTP mode (for MCP Inspector, remote access)
  supportly mcp serve --namespace org_123 --port 8090

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "supportly": {
        "command": "/path/to/supportly",
        "args": ["mcp", "serve", "--namespace", "org_123"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVarP(&mcpNamespace, "namespace", "n", "", "organisation namespace to serve (required)")
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpReadOnly, "read-only", false, "only offer search_knowledge")
	mcpServeCmd.Flags().BoolVar(&mcpEphemeral, "ephemeral", false, "keep all data in memory")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	tenant, err := cliTenant(mcpNamespace)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, mcpEphemeral)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	ports := &mcp.Ports{
		Retrieval: a.retrieval,
		Tenant:    tenant,
	}
	if !mcpReadOnly {
		ports.Ingestion = a.ingestion
		ports.Lifecycle = a.lifecycle
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

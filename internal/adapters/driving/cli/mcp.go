package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphmail/internal/adapters/driving/mcp"
	"github.com/custodia-labs/graphmail/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can send,
list and delete mail as the configured sender.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  graphmail mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  graphmail mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "graphmail": {
        "command": "/path/to/graphmail",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if err := ensureServices(); err != nil {
		return err
	}

	ports := &mcp.Ports{
		Mail:   mailService,
		Auth:   authService,
		Config: clientConfig,
	}

	server, err := mcp.NewServer(ports,
		mcp.WithVersion(version),
		mcp.WithLogger(logger.Default().With("component", "mcp")),
	)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/taskboard/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can read and
edit the task list.

Transports:
  stdio  Standard input/output (default)
  http   HTTP with JSON-RPC on /mcp
  ws     WebSocket on /mcp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		inframcp.Version = Version
		inframcp.BuildCommit = Commit
		inframcp.BuildDate = Date

		srv, err := inframcp.NewServer(app.List, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
		if err := srv.Serve(cmd.Context(), mcpTransport, mcpAddr); err != nil {
			return MapError(err)
		}
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", inframcp.TransportStdio, "Transport type: stdio, http, ws")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8090", "Listen address for http and ws transports")
	RootCmd.AddCommand(mcpCmd)
}

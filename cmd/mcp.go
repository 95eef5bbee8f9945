package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marketloom/graphgate/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the graphgate MCP server",
	Long:  `Launch an MCP server that allows AI agents to inspect capacity and run cleanup sweeps via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Suppress the normal header logs when running in MCP mode
		// to avoid polluting stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, store, engine)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

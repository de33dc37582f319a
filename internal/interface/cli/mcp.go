package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/buildtracker/cmd/buildtracker/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server exposing build history",
	Long: `Start an MCP (Model Context Protocol) server on stdio with read-only
tools over the build history: list_builds, get_stats and generate_report.

Configure in your MCP client:
  {
    "mcpServers": {
      "buildtracker": {
        "command": "buildtracker",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	if err := mcp.StartServer(e.tracker, versionInfo); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

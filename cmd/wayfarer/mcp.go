package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpAdapter "github.com/wayfarerhq/wayfarer/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the interpreter as an MCP server",
	Long: `Serves journey runs as MCP tools (start_run, tool_call,
dispatch_event, handoff, get_screen, get_state) over stdio or SSE.`,
	Run: func(cmd *cobra.Command, args []string) {
		itp, err := newInterpreter(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer itp.Shutdown()

		srv := mcpAdapter.NewServer(itp)

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			err = srv.ServeStdio()
		case "sse":
			port, _ := cmd.Flags().GetInt("port")
			err = srv.ServeSSE(cmd.Context(), port)
		default:
			err = fmt.Errorf("unknown transport %q (stdio or sse)", transport)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8090, "Port for SSE transport")
}

// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"context"

	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/pkg/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP stdio server",
	Long: `Run archcanvas as an MCP server communicating via stdin/stdout.
Allows archcanvas to be run as a sub-process by an MCP tool.
The 'web' command also serves MCP over HTTP at ` + mcp.StreamablePath + `.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b, cfg := newBackend()
		server := mcp.NewServer(b, cfg.Engine())
		server.Theme = cfg.Theme()
		log.Info("MCP server starting on stdio.")
		must.Must(server.ServeStdio(context.Background()))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

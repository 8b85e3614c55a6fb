package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/tablewatch/internal/cli"
	"github.com/aretw0/tablewatch/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the sensor and the unit catalog as MCP tools (tick, get_status, list_units,
materialize_unit) and the tablewatch://units resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		schedule, _ := cmd.Flags().GetBool("schedule")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if schedule {
			go func() {
				if err := app.Scheduler.Run(sigCtx); err != nil {
					app.Logger.Error("Scheduler failed", "error", err)
				}
			}()
		}

		srv := mcp.NewServer(app.Defs, app.Scheduler, app.Logger)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			app.Logger.Info("Starting tablewatch MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			baseURL, _ := cmd.Flags().GetString("base-url")
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			return srv.ServeSSE(sigCtx, addr, baseURL)
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8090", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL advertised to SSE clients")
	mcpCmd.Flags().Bool("schedule", false, "Also tick the sensor every poll interval in the background")
}

package main

import (
	"context"
	"os"

	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/internal/cli"
	"github.com/aretw0/tablewatch/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the manifest and serve the status API",
	Long: `Ticks the reload sensor every poll interval and serves the status API
(health, status, units, manual tick, metrics and an SSE event stream) until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		quiet, _ := cmd.Flags().GetBool("quiet")
		listen := app.Config.ListenAddr
		if cmd.Flags().Changed("listen") {
			listen, _ = cmd.Flags().GetString("listen")
		}

		opts := cli.ServeOptions{ListenAddr: listen}
		if !quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, tablewatch.Version)
			opts.Out = os.Stdout
		}
		if !quiet {
			cli.PrintSystemMessage(os.Stdout, "Watching '%s' every %s (location '%s' at %s:%d).",
				app.Config.ManifestPath, app.Config.PollInterval(),
				app.Config.LocationName, app.Config.Host, app.Config.Port)
			if listen != "" {
				cli.PrintSystemMessage(os.Stdout, "Status API on %s.", listen)
			}
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		err = cli.RunService(sigCtx, app, opts)
		if !quiet && sigCtx.Signal() != nil {
			cli.PrintSystemMessage(os.Stdout, "Stopped by %s.", sigCtx.Signal())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("listen", "", "Status API address (overrides listen_addr; empty disables)")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and tick output")
}

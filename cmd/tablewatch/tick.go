package main

import (
	"os"

	"github.com/aretw0/tablewatch/internal/cli"
	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one sensor evaluation and print its status",
	Long: `Checks the manifest once, reloads the code location if it changed since the stored
watermark and prints the resulting status. A failed reload is reported, not returned as an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		eval, err := app.Scheduler.TickNow(cmd.Context())
		if err != nil {
			return err
		}
		return cli.PrintEvaluation(os.Stdout, eval, jsonOutput(cmd))
	},
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tablewatch/internal/cli"
	"github.com/spf13/cobra"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the units generated from the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.PrintUnits(os.Stdout, app.Defs.Units(), app.Defs.External(), jsonOutput(cmd))
	},
}

var materializeCmd = &cobra.Command{
	Use:   "materialize <unit>",
	Short: "Run one unit and print its output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out, err := app.Defs.Materialize(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return cli.PrintJSON(os.Stdout, map[string]string{"unit": args[0], "output": out})
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(materializeCmd)
}

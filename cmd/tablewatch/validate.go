package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config and the manifest",
	Long:  `Loads the configuration and the manifest and builds every unit without contacting the orchestrator.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer app.Close()

		fmt.Fprintf(os.Stdout, "Manifest %s is valid: %d units.\n", app.Config.ManifestPath, len(app.Defs.Units()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tablewatch"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tablewatch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tablewatch version %s\n", strings.TrimSpace(tablewatch.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/tablewatch/internal/cli"
	"github.com/aretw0/tablewatch/pkg/sensor"
	"github.com/spf13/cobra"
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Inspect or reset the stored watermark",
}

var cursorShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last observed manifest modification time",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		s := app.Defs.Sensor()
		mtime, err := s.Watermark(cmd.Context())
		if err != nil {
			return err
		}

		observed := ""
		if mtime > 0 {
			sec := int64(mtime)
			observed = time.Unix(sec, int64((mtime-float64(sec))*1e9)).UTC().Format(time.RFC3339Nano)
		}
		if jsonOutput(cmd) {
			return cli.PrintJSON(os.Stdout, map[string]any{
				"sensor":   s.Name(),
				"cursor":   sensor.EncodeWatermark(mtime),
				"observed": observed,
			})
		}
		if mtime == 0 {
			fmt.Fprintf(os.Stdout, "%s: no watermark stored\n", s.Name())
			return nil
		}
		fmt.Fprintf(os.Stdout, "%s: %s (%s)\n", s.Name(), sensor.EncodeWatermark(mtime), observed)
		return nil
	},
}

var cursorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the watermark so the next tick reloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Defs.Sensor().Reset(cmd.Context()); err != nil {
			return err
		}
		cli.PrintSystemMessage(os.Stdout, "Cursor '%s' reset.", app.Defs.Sensor().Name())
		return nil
	},
}

func init() {
	cursorCmd.AddCommand(cursorShowCmd)
	cursorCmd.AddCommand(cursorResetCmd)
	rootCmd.AddCommand(cursorCmd)
}

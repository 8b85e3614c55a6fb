package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tablewatch/internal/cli"
	"github.com/aretw0/tablewatch/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tablewatch",
	Short: "tablewatch turns a JSON manifest into processing units and reloads them on change",
	Long: `tablewatch reads a manifest of {name, source_table} rows, generates one processing unit
per row and watches the manifest file. When the file changes it asks the orchestrator to
reload its code location over GraphQL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file (yaml, json or toml); defaults to ./tablewatch.{yaml,yml,json,toml} when present")
	pf.Bool("debug", false, "Enable debug logging")
	pf.Bool("json", false, "Print command output as JSON")
	pf.StringP("manifest", "m", "", "Manifest path (overrides manifest_path)")
	pf.String("host", "", "Orchestrator host (overrides host)")
	pf.Int("port", 0, "Orchestrator port (overrides port)")
	pf.String("location", "", "Code location to reload (overrides location_name)")
	pf.String("cursor-backend", "", "Cursor backend: memory, file or redis (overrides cursor.backend)")
	pf.String("cursor-dir", "", "Cursor directory for the file backend (overrides cursor.dir)")
	pf.String("redis-addr", "", "Redis address for the redis backend (overrides cursor.redis_addr)")
}

var configCandidates = []string{"tablewatch.yaml", "tablewatch.yml", "tablewatch.json", "tablewatch.toml"}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	if path == "" {
		for _, candidate := range configCandidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("manifest") {
		cfg.ManifestPath, _ = flags.GetString("manifest")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("location") {
		cfg.LocationName, _ = flags.GetString("location")
	}
	if flags.Changed("cursor-backend") {
		cfg.Cursor.Backend, _ = flags.GetString("cursor-backend")
	}
	if flags.Changed("cursor-dir") {
		cfg.Cursor.Dir, _ = flags.GetString("cursor-dir")
	}
	if flags.Changed("redis-addr") {
		cfg.Cursor.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp loads the config and wires the application for one command.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, logger, nil)
}

// newLogger writes to stderr so stdout stays free for command output and MCP JSON-RPC.
func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.NewLogger(os.Stderr, cfg, debug)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

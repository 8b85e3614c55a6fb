package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "assets.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`[{"name":"a","source_table":"t1"}]`), 0644))
	cfgPath := filepath.Join(dir, "tablewatch.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("port = 3100\n[cursor]\nbackend = \"memory\"\n"), 0644))

	rootCmd.SetArgs([]string{"validate", "--config", cfgPath, "--manifest", manifest, "--host", "orchestrator"})
	require.NoError(t, rootCmd.Execute())

	cfg, err := loadConfig(validateCmd)
	require.NoError(t, err)
	assert.Equal(t, manifest, cfg.ManifestPath)
	assert.Equal(t, "orchestrator", cfg.Host)
	assert.Equal(t, 3100, cfg.Port)
	assert.Equal(t, "memory", cfg.Cursor.Backend)

	rootCmd.SetArgs([]string{"validate", "--config", cfgPath, "--manifest", filepath.Join(dir, "missing.json")})
	assert.Error(t, rootCmd.Execute())
}

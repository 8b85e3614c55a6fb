package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WriteManifest writes content to assets.json in a fresh temp dir and returns its path.
// A positive mtime pins the file's modification time to that many seconds since the epoch.
// It fails the test immediately on error.
func WriteManifest(t *testing.T, content string, mtime int64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Failed to write manifest")

	if mtime > 0 {
		ts := time.Unix(mtime, 0)
		require.NoError(t, os.Chtimes(path, ts, ts), "Failed to set manifest mtime")
	}
	return path
}

package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tablewatch/pkg/adapters/file"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements CursorStore
var _ ports.CursorStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunCursorStoreContract(t, store)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cursors")
	store := file.New(dir)

	require.NoError(t, store.Save(context.Background(), "sensor", "12.5"))

	_, err := os.Stat(filepath.Join(dir, "sensor.json"))
	assert.NoError(t, err)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for _, c := range []string{"1", "2", "3"} {
		require.NoError(t, store.Save(ctx, "sensor", c))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor"}, keys)
}

func TestFileStore_RejectsInvalidKeys(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, store.Save(ctx, key, "1"), "key %q", key)
		_, err := store.Load(ctx, key)
		assert.Error(t, err, "key %q", key)
		assert.NotErrorIs(t, err, domain.ErrCursorNotFound)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sensor.json"), []byte("{not json"), 0644))

	_, err := file.New(dir).Load(context.Background(), "sensor")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCursorNotFound)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

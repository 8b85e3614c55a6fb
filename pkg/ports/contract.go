package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCursorStoreContract runs a suite of tests to verify that a CursorStore implementation
// adheres to the defined interface contract.
func RunCursorStoreContract(t *testing.T, store CursorStore) {
	ctx := context.Background()
	key := "contract-sensor-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, key, "1700000000.25")
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "1700000000.25", loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, "1"))
		require.NoError(t, store.Save(ctx, key, "2"))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "2", loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrCursorNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, "42"))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCursorNotFound, "Load after Delete should return ErrCursorNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		require.NoError(t, store.Save(ctx, id1, "1"))
		require.NoError(t, store.Save(ctx, id2, "2"))

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)

		_ = store.Delete(ctx, id1)
		_ = store.Delete(ctx, id2)
	})
}

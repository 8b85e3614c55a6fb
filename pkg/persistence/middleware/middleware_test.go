package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/adapters/memory"
	"github.com/aretw0/tablewatch/pkg/persistence/middleware"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(), middleware.NewLoggingMiddleware(logging.NewNop()))
	ports.RunCursorStoreContract(t, store)
}

func TestNamespaceMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(), middleware.NewNamespaceMiddleware("staging"))
	ports.RunCursorStoreContract(t, store)
}

func TestNamespaceMiddleware_Isolation(t *testing.T) {
	ctx := context.Background()
	shared := memory.NewStore()
	staging := middleware.NewNamespaceMiddleware("staging")(shared)
	prod := middleware.NewNamespaceMiddleware("prod")(shared)

	require.NoError(t, staging.Save(ctx, "sensor", "100"))
	require.NoError(t, prod.Save(ctx, "sensor", "200"))

	v, err := staging.Load(ctx, "sensor")
	require.NoError(t, err)
	assert.Equal(t, "100", v)

	keys, err := prod.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor"}, keys)

	all, err := shared.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"prod.sensor", "staging.sensor"}, all)
}

func TestNamespaceMiddleware_Empty(t *testing.T) {
	store := memory.NewStore()
	assert.Same(t, store, middleware.NewNamespaceMiddleware("")(store))
}

type brokenStore struct{ ports.CursorStore }

func (brokenStore) Save(context.Context, string, string) error { return errors.New("disk full") }

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithFormat(&buf, slog.LevelInfo, logging.FormatText)
	store := middleware.Chain(brokenStore{memory.NewStore()}, middleware.NewLoggingMiddleware(logger))
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "k", "1"))
	assert.Contains(t, buf.String(), "Cursor store call failed")
	assert.Contains(t, buf.String(), "disk full")

	// A missing cursor is not a failure and debug lines are filtered at info level.
	buf.Reset()
	_, err := store.Load(ctx, "missing")
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

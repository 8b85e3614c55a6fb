package unit_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	u := unit.Build(domain.ManifestEntry{Name: "orders", SourceTable: "raw.orders"})

	assert.Equal(t, "orders", u.Name)
	assert.Equal(t, "raw.orders", u.SourceTable)
	assert.Equal(t, []string{"raw_transactions"}, u.Deps)
	assert.Equal(t, []string{"s3"}, u.Kinds)
	require.NotNil(t, u.Body)

	out, err := u.Body(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Data from raw.orders", out)
}

func TestBuild_LogsSourceTable(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithFormat(&buf, slog.LevelInfo, logging.FormatText))

	u := unit.Build(domain.ManifestEntry{Name: "a", SourceTable: "t1"})
	_, err := u.Body(ctx)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "msg=Processing")
	assert.Contains(t, buf.String(), "source_table=t1")
}

func TestBuild_Options(t *testing.T) {
	u := unit.Build(domain.ManifestEntry{Name: "a", SourceTable: "t"},
		unit.WithDeps("upstream_a", "upstream_b"),
		unit.WithKinds(),
	)

	assert.Equal(t, []string{"upstream_a", "upstream_b"}, u.Deps)
	assert.Empty(t, u.Kinds)
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := unit.Build(domain.ManifestEntry{Name: "a", SourceTable: "t"}).Body(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Deterministic(t *testing.T) {
	entry := domain.ManifestEntry{Name: "a", SourceTable: "t"}
	u1, u2 := unit.Build(entry), unit.Build(entry)

	out1, _ := u1.Body(context.Background())
	out2, _ := u2.Body(context.Background())
	assert.Equal(t, out1, out2)

	// Units do not share slices.
	u1.Deps[0] = "changed"
	assert.Equal(t, "raw_transactions", u2.Deps[0])
	assert.Equal(t, "raw_transactions", unit.DefaultDeps[0])
}

func TestBuildAll(t *testing.T) {
	units := unit.BuildAll([]domain.ManifestEntry{
		{Name: "a", SourceTable: "t1"},
		{Name: "b", SourceTable: "t2"},
	})

	require.Len(t, units, 2)
	assert.Equal(t, "a", units[0].Name)
	assert.Equal(t, "b", units[1].Name)
}

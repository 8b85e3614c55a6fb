package manifest_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeManifest(t, `[
		{"name": "orders", "source_table": "raw.orders"},
		{"name": "customers", "source_table": "raw.customers", "owner": "ignored"}
	]`)

	entries, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ManifestEntry{
		{Name: "orders", SourceTable: "raw.orders"},
		{Name: "customers", SourceTable: "raw.customers"},
	}, entries)
}

func TestLoad_EmptyArray(t *testing.T) {
	entries, err := manifest.Load(writeManifest(t, `[]`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	_, err := manifest.Load(path)

	var me *domain.ManifestError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, path, me.Path)
	assert.Equal(t, -1, me.Index)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		index   int
		msg     string
	}{
		{"invalid json", `[{"name": "a"`, -1, "invalid JSON"},
		{"not an array", `{"name": "a", "source_table": "t"}`, -1, "expected a JSON array, got object"},
		{"row not object", `[{"name": "a", "source_table": "t"}, "b"]`, 1, "expected an object, got string"},
		{"missing name", `[{"source_table": "t"}]`, 0, `"name"`},
		{"empty source", `[{"name": "a", "source_table": ""}]`, 0, `"source_table"`},
		{"wrong type", `[{"name": 3, "source_table": "t"}]`, 0, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)

			_, err := manifest.Load(path)

			var me *domain.ManifestError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, path, me.Path)
			assert.Equal(t, tt.index, me.Index)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_NoPath(t *testing.T) {
	entries, err := manifest.Parse([]byte(`[{"name":"a","source_table":"t1"}]`))
	require.NoError(t, err)
	assert.Equal(t, []domain.ManifestEntry{{Name: "a", SourceTable: "t1"}}, entries)
}

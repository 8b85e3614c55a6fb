package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/internal/testutils"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/aretw0/tablewatch/pkg/registry"
	"github.com/aretw0/tablewatch/pkg/scheduler"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	path := testutils.WriteManifest(t, `[{"name":"a","source_table":"t1"}]`, 0)

	reloader := ports.ReloaderFunc(func(ctx context.Context, location string) domain.ReloadOutcome {
		return domain.ReloadOutcome{Kind: domain.OutcomeSuccess}
	})
	defs, err := tablewatch.Build(path, tablewatch.WithReloader(reloader))
	require.NoError(t, err)

	return NewServer(defs, scheduler.New(defs.Sensor(), time.Minute), nil)
}

func TestTickAndStatus(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	status, err := s.handleStatus(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Zero(t, status.Ticks)
	assert.Nil(t, status.Last)

	eval, err := s.handleTick(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.True(t, eval.Reloaded)

	status, err = s.handleStatus(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Ticks)
	require.NotNil(t, status.Last)
	assert.Equal(t, eval.Status, status.Last.Status)
}

func TestListUnits(t *testing.T) {
	s := newServer(t)

	resp, err := s.handleListUnits(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Units, 1)
	assert.Equal(t, "t1", resp.Units[0].SourceTable)
	assert.Equal(t, "raw_transactions", resp.External[0].Name)
}

func TestMaterialize(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	resp, err := s.handleMaterialize(ctx, mcp.CallToolRequest{}, materializeArgs{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, "Data from t1", resp.Output)

	_, err = s.handleMaterialize(ctx, mcp.CallToolRequest{}, materializeArgs{Name: "missing"})
	assert.True(t, errors.Is(err, registry.ErrUnitNotFound))

	_, err = s.handleMaterialize(ctx, mcp.CallToolRequest{}, materializeArgs{})
	assert.Error(t, err)
}

func call(t *testing.T, s *Server, method string, params any) map[string]any {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Nil(t, out["error"], "unexpected error: %s", raw)
	return out["result"].(map[string]any)
}

func TestToolsRegistered(t *testing.T) {
	s := newServer(t)

	result := call(t, s, "tools/list", map[string]any{})
	var names []string
	for _, tool := range result["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"tick", "get_status", "list_units", "materialize_unit"}, names)
}

func TestUnitsResource(t *testing.T) {
	s := newServer(t)

	result := call(t, s, "resources/read", map[string]any{"uri": UnitsURI})
	contents := result["contents"].([]any)
	require.Len(t, contents, 1)

	text := contents[0].(map[string]any)["text"].(string)
	var units UnitsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &units))
	assert.Equal(t, "a", units.Units[0].Name)
}

package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"codegraph/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(filepath.Join(t.TempDir(), "graph.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Close() })
	return s
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestNewServerInitializesFreshDatabase(t *testing.T) {
	s := newTestServer(t)

	assert.False(t, s.store.IsEmpty(context.Background()))
	assert.False(t, s.store.IsIncompatible(context.Background()))
}

func TestGraphStatsTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	a, err := s.store.AddNode(ctx, int(types.NodeClass), "Widget", int(types.DefinitionExplicit))
	require.NoError(t, err)
	b, err := s.store.AddNode(ctx, int(types.NodeMethod), "Widget::draw", int(types.DefinitionExplicit))
	require.NoError(t, err)
	_, err = s.store.AddEdge(ctx, int(types.EdgeMember), a, b)
	require.NoError(t, err)

	result, err := s.handleGraphStats(ctx, callRequest("graph_stats", nil))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, float64(2), payload["nodes"])
	assert.Equal(t, float64(1), payload["edges"])
	assert.Equal(t, float64(0), payload["files"])
}

func TestSearchTextTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "a.c")
	require.NoError(t, os.WriteFile(path, []byte("abc\ndefgh\nij"), 0644))
	_, err := s.store.AddFile(ctx, path, path, fileModTime(t, path))
	require.NoError(t, err)

	result, err := s.handleSearchText(ctx, callRequest("search_text", map[string]interface{}{
		"term": "fgh",
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, float64(1), payload["count"])
	matches := payload["matches"].([]interface{})
	require.Len(t, matches, 1)
	match := matches[0].(map[string]interface{})
	assert.Equal(t, float64(2), match["start_line"])
	assert.Equal(t, float64(4), match["start_column"])
	assert.Equal(t, float64(6), match["end_column"])
}

func TestSearchTextToolRequiresTerm(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchText(context.Background(), callRequest("search_text", map[string]interface{}{}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestSearchNodesTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.store.AddNode(ctx, int(types.NodeClass), "Widget", int(types.DefinitionExplicit))
	require.NoError(t, err)

	result, err := s.handleSearchNodes(ctx, callRequest("search_nodes", map[string]interface{}{
		"query": "Widget",
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, float64(1), payload["count"])
	results := payload["results"].([]interface{})
	hit := results[0].(map[string]interface{})
	assert.Equal(t, "Widget", hit["name"])
	assert.Equal(t, "class", hit["kind"])
}

func TestSearchNodesToolRejectsBadLimit(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchNodes(context.Background(), callRequest("search_nodes", map[string]interface{}{
		"query": "x",
		"limit": float64(500),
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGetNodeTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	a, err := s.store.AddNode(ctx, int(types.NodeClass), "Widget", int(types.DefinitionExplicit))
	require.NoError(t, err)
	b, err := s.store.AddNode(ctx, int(types.NodeMethod), "Widget::draw", int(types.DefinitionExplicit))
	require.NoError(t, err)
	_, err = s.store.AddEdge(ctx, int(types.EdgeMember), a, b)
	require.NoError(t, err)

	result, err := s.handleGetNode(ctx, callRequest("get_node", map[string]interface{}{
		"name": "Widget",
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, true, payload["found"])
	assert.Equal(t, "Widget", payload["name"])
	outgoing := payload["outgoing_edges"].([]interface{})
	require.Len(t, outgoing, 1)
	edge := outgoing[0].(map[string]interface{})
	assert.Equal(t, "member", edge["kind"])

	result, err = s.handleGetNode(ctx, callRequest("get_node", map[string]interface{}{
		"id": float64(a),
	}))
	require.NoError(t, err)
	payload = resultJSON(t, result)
	assert.Equal(t, true, payload["found"])
}

func TestGetNodeToolUnknownNode(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetNode(context.Background(), callRequest("get_node", map[string]interface{}{
		"name": "nope",
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, false, payload["found"])
}

func TestGetNodeToolRequiresSelector(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleGetNode(context.Background(), callRequest("get_node", map[string]interface{}{}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func fileModTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"codegraph/internal/storage"
	"codegraph/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleGraphStats handles the graph_stats tool invocation
func (s *Server) handleGraphStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts := map[string]func(context.Context) (int, error){
		"nodes":            s.store.NodeCount,
		"edges":            s.store.EdgeCount,
		"files":            s.store.FileCount,
		"lines_of_code":    s.store.FileLOCCount,
		"source_locations": s.store.SourceLocationCount,
		"errors":           s.store.ErrorCount,
	}

	response := map[string]interface{}{
		"database": s.store.DBFilePath(),
	}
	for key, count := range counts {
		n, err := count(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to count "+key, map[string]interface{}{
				"error": err.Error(),
			})
		}
		response[key] = n
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchText handles the search_text tool invocation
func (s *Server) handleSearchText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	term, ok := args["term"].(string)
	if !ok || term == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "term parameter is required and cannot be empty", map[string]interface{}{
			"param":  "term",
			"reason": "missing or empty",
		})
	}

	spans := s.store.SearchFullText(ctx, term)
	matches := make([]map[string]interface{}, 0, len(spans))
	for _, span := range spans {
		matches = append(matches, map[string]interface{}{
			"file_id":      span.FileID,
			"path":         span.FilePath,
			"start_line":   span.Start.Line,
			"start_column": span.Start.Column,
			"end_line":     span.End.Line,
			"end_column":   span.End.Column,
		})
	}

	response := map[string]interface{}{
		"term":    term,
		"count":   len(matches),
		"matches": matches,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchNodes handles the search_nodes tool invocation
func (s *Server) handleSearchNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 25)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	nodes := s.store.SearchNodes(ctx, query, limit)
	results := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		results = append(results, nodeResponse(n))
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetNode handles the get_node tool invocation
func (s *Server) handleGetNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	var node *storage.Node
	var err error
	switch {
	case args["id"] != nil:
		id := int64(getIntDefault(args, "id", 0))
		node, err = s.store.GetNodeByID(ctx, id)
	case args["name"] != nil:
		name := getStringDefault(args, "name", "")
		node, err = s.store.GetNodeBySerializedName(ctx, name)
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "either id or name is required", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to look up node", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if node == nil {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"found": false,
		})), nil
	}

	outgoing, err := s.store.GetEdgesBySourceID(ctx, node.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load edges", map[string]interface{}{
			"error": err.Error(),
		})
	}
	incoming, err := s.store.GetEdgesByTargetID(ctx, node.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load edges", map[string]interface{}{
			"error": err.Error(),
		})
	}
	locations, err := s.store.GetSourceLocationsForElement(ctx, node.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load locations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	locs := make([]map[string]interface{}, 0, len(locations))
	for _, l := range locations {
		locs = append(locs, map[string]interface{}{
			"file_node_id": l.FileNodeID,
			"start_line":   l.StartLine,
			"start_column": l.StartColumn,
			"end_line":     l.EndLine,
			"end_column":   l.EndColumn,
			"kind":         types.LocationKind(l.Kind).String(),
		})
	}

	response := nodeResponse(*node)
	response["found"] = true
	response["outgoing_edges"] = edgeResponses(outgoing)
	response["incoming_edges"] = edgeResponses(incoming)
	response["locations"] = locs
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

func nodeResponse(n storage.Node) map[string]interface{} {
	return map[string]interface{}{
		"id":   n.ID,
		"kind": types.NodeKind(n.Kind).String(),
		"name": n.SerializedName,
	}
}

func edgeResponses(edges []storage.Edge) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]interface{}{
			"id":     e.ID,
			"kind":   types.EdgeKind(e.Kind).String(),
			"source": e.SourceNodeID,
			"target": e.TargetNodeID,
		})
	}
	return out
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

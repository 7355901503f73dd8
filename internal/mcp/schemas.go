package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// graphStatsTool returns the tool definition for graph_stats
func graphStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "graph_stats",
		Description: "Report node, edge, file and diagnostic counts for the indexed code graph",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// searchTextTool returns the tool definition for search_text
func searchTextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_text",
		Description: "Find every occurrence of a text fragment in indexed file contents, with line and column spans",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Text fragment to search for (case-insensitive substring match)",
				},
			},
			Required: []string{"term"},
		},
	}
}

// searchNodesTool returns the tool definition for search_nodes
func searchNodesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_nodes",
		Description: "Search symbol names in the code graph using a full-text match expression",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Full-text match expression against symbol names",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     25,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getNodeTool returns the tool definition for get_node
func getNodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_node",
		Description: "Fetch a graph node by identifier or serialized name, with its edges and source locations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Node identifier",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Serialized node name, used when id is absent",
				},
			},
		},
	}
}

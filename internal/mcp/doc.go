// Package mcp implements the Model Context Protocol (MCP) server for the
// code graph database.
//
// The server exposes four tools to MCP clients:
//   - graph_stats: Report node, edge, file and diagnostic counts
//   - search_text: Full-text search over indexed file contents
//   - search_nodes: Match expressions against symbol names
//   - get_node: Fetch a node with its edges and source locations
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	codegraph serve
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: search_text
//
// Find every occurrence of a text fragment in indexed files:
//
//	Request:
//	{
//	  "name": "search_text",
//	  "arguments": {
//	    "term": "virtual void"
//	  }
//	}
//
//	Response:
//	{
//	  "term": "virtual void",
//	  "count": 2,
//	  "matches": [
//	    {
//	      "path": "/src/widget.h",
//	      "start_line": 12, "start_column": 3,
//	      "end_line": 12, "end_column": 14
//	    },
//	    ...
//	  ]
//	}
//
// # Tool: get_node
//
// Fetch a node by identifier or serialized name:
//
//	Request:
//	{
//	  "name": "get_node",
//	  "arguments": {
//	    "name": "Widget::draw"
//	  }
//	}
//
// The response carries the node's kind and name plus its incoming and
// outgoing edges and every recorded source location. An unknown node
// yields {"found": false} rather than a protocol error.
//
// # Error Handling
//
// Parameter problems are reported as JSON-RPC errors with the standard
// -32602 invalid-params code; an empty search term or query uses -32004.
// Storage failures surface as -32603 internal errors.
package mcp

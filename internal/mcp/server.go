package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"codegraph/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "codegraph"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.codegraph/graph.db"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp   *server.MCPServer
	store *storage.Store
	log   *zap.Logger
}

// NewServer opens the graph database at dbPath and prepares the MCP server.
// An empty or version-incompatible database is rebuilt before serving.
func NewServer(dbPath string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".codegraph", "graph.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.Open(dbPath, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	ctx := context.Background()
	if store.IsEmpty(ctx) {
		if err := store.Setup(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to set up storage: %w", err)
		}
		if err := store.SetVersion(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to stamp storage: %w", err)
		}
	} else if store.IsIncompatible(ctx) {
		logger.Warn("rebuilding incompatible database", zap.String("path", store.DBFilePath()))
		if err := store.Clear(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to rebuild storage: %w", err)
		}
		if err := store.SetVersion(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to stamp storage: %w", err)
		}
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:   mcpServer,
		store: store,
		log:   logger,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(graphStatsTool(), s.handleGraphStats)
	s.mcp.AddTool(searchTextTool(), s.handleSearchText)
	s.mcp.AddTool(searchNodesTool(), s.handleSearchNodes)
	s.mcp.AddTool(getNodeTool(), s.handleGetNode)
}

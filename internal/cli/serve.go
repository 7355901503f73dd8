package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codegraph/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the database over the Model Context Protocol on stdio",
		Long: "Start an MCP server exposing graph_stats, search_text, search_nodes\n" +
			"and get_node tools. Protocol messages use stdin/stdout; logs go to\n" +
			"stderr.",
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(resolveLogLevel())
	defer func() { _ = logger.Sync() }()

	server, err := mcp.NewServer(resolveDBPath(), logger)
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("start server: %s", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server ready, listening on stdio")
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ctx) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
			return exitError(exitSysError, fmt.Sprintf("serve: %s", err))
		}
		return nil
	}
}

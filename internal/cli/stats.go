package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print graph statistics",
		Long:  "Report node, edge, file, line and diagnostic counts for the database.",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger(resolveLogLevel())
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, logger)
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	defer func() { _ = store.Close() }()

	rows := []struct {
		label string
		count func(context.Context) (int, error)
	}{
		{"nodes", store.NodeCount},
		{"edges", store.EdgeCount},
		{"files", store.FileCount},
		{"lines of code", store.FileLOCCount},
		{"source locations", store.SourceLocationCount},
		{"errors", store.ErrorCount},
	}

	fmt.Fprintf(cmd.OutOrStdout(), "database: %s\n", store.DBFilePath())
	if v := store.StoredApplicationVersion(ctx); v != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "written by: v%s\n", v)
	}
	for _, row := range rows {
		n, err := row.count(ctx)
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("count %s: %s", row.label, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-17s %d\n", row.label+":", n)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newVacuumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the database file",
		RunE:  runVacuum,
	}
}

func runVacuum(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger(resolveLogLevel())
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, logger)
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	defer func() { _ = store.Close() }()

	if err := store.OptimizeMemory(ctx); err != nil {
		return exitError(exitSysError, fmt.Sprintf("vacuum: %s", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database compacted")
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop all indexed data and rebuild an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "clear without confirmation")
	return cmd
}

func runClear(cmd *cobra.Command, force bool) error {
	if !force {
		return exitError(exitUserError, "clear removes all indexed data; re-run with --force to confirm")
	}

	ctx := context.Background()
	logger := newLogger(resolveLogLevel())
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, logger)
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(ctx); err != nil {
		return exitError(exitSysError, fmt.Sprintf("clear: %s", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", store.DBFilePath())
	return nil
}

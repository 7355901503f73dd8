package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var nodes bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search indexed file contents or symbol names",
		Long: "Search file contents for a case-insensitive text fragment and print\n" +
			"the matching spans. With --nodes the term is matched against symbol\n" +
			"names instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], nodes, limit)
		},
	}
	cmd.Flags().BoolVar(&nodes, "nodes", false, "search symbol names instead of file contents")
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of symbol results")
	return cmd
}

func runSearch(cmd *cobra.Command, term string, nodes bool, limit int) error {
	ctx := context.Background()
	logger := newLogger(resolveLogLevel())
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, logger)
	if err != nil {
		return exitError(exitSysError, err.Error())
	}
	defer func() { _ = store.Close() }()

	if nodes {
		hits := store.SearchNodes(ctx, term, limit)
		for _, n := range hits {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n.ID, n.SerializedName)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d symbols\n", len(hits))
		return nil
	}

	spans := store.SearchFullText(ctx, term)
	for _, span := range spans {
		fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d-%d:%d\n",
			span.FilePath, span.Start.Line, span.Start.Column, span.End.Line, span.End.Column)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(spans))
	return nil
}

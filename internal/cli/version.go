package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codegraph/internal/storage"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codegraph version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "codegraph v%s\nstorage format: %d\nsqlite driver: %s (%s build)\n",
				storage.ApplicationVersion, storage.CurrentStorageVersion,
				storage.DriverName, storage.BuildMode)
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Database string
}

// DeleteOutput is the JSON payload of the delete command.
type DeleteOutput struct {
	RunID string `json:"run_id"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Remove a recorded run",
		Long: `Remove a recorded run and all of its results.
The run ID may be abbreviated to any unique prefix.

Examples:
  trigharness delete --db ./runs.db 0192a7c4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func deleteRun(opts *DeleteOptions, prefix string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return commandError(out, err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	id, err := st.ResolveRunID(ctx, prefix)
	if err != nil {
		return commandError(out, storeError("failed to find run", err))
	}
	if err := st.DeleteRun(ctx, id); err != nil {
		return commandError(out, storeError("failed to delete run", err))
	}

	if out.JSON() {
		return out.Success(DeleteOutput{RunID: id})
	}
	fmt.Fprintf(out.Writer, "Deleted run %s\n", id)
	return nil
}

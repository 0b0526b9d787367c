package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/trigharness/internal/harness"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Failed   bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a recorded run",
		Long: `Print the results of a recorded run in report order.
The run ID may be abbreviated to any unique prefix.

Examples:
  trigharness show --db ./runs.db 0192a7c4
  trigharness show --db ./runs.db 0192a7c4 --failed --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only failed results")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showRun(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return commandError(out, err)
	}
	defer st.Close()

	report, err := st.ReadRun(commandContext(cmd), runID)
	if err != nil {
		return commandError(out, storeError("failed to read run", err))
	}

	if opts.Failed {
		report.Results = append([]harness.RunResult{}, report.Failures()...)
	}

	if out.JSON() {
		return out.Success(report)
	}

	w := out.Writer
	fmt.Fprintf(w, "Run %s (%s)\n", report.RunID, report.Suite)
	writeReportText(out, report)
	return nil
}

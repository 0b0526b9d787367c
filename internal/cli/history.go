package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/trigharness/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Suite    string
	Limit    int
}

// HistoryOutput is the JSON payload of the history command.
type HistoryOutput struct {
	Runs     []store.RunSummary   `json:"runs"`
	Failures []store.FailureCount `json:"failures"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with "run --db", newest first, followed by
failure counts per error kind.

Examples:
  trigharness history --db ./runs.db
  trigharness history --db ./runs.db --suite paste-triggers --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "only runs of this suite")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return commandError(out, err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	runs, err := st.ListRuns(ctx, opts.Suite, opts.Limit)
	if err != nil {
		return commandError(out, storeError("failed to list runs", err))
	}
	failures, err := st.FailuresByKind(ctx, opts.Suite)
	if err != nil {
		return commandError(out, storeError("failed to count failures", err))
	}

	if out.JSON() {
		return out.Success(HistoryOutput{Runs: runs, Failures: failures})
	}

	w := out.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s %s  %-20s %d passed, %d failed, %d total  %s\n",
			out.Mark(run.Failed == 0), run.ID, run.Suite, run.Passed, run.Failed, run.Total, run.RecordedAt)
	}
	if len(failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failures by error kind:")
		for _, fc := range failures {
			kind := fc.ErrorKind
			if kind == "" {
				kind = "mismatch"
			}
			fmt.Fprintf(w, "  %-18s %d\n", kind, fc.Count)
		}
	}
	return nil
}

// openExistingStore opens a database that must already exist; reading
// commands never create one.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, storeError("failed to open database", err)
	}
	return st, nil
}

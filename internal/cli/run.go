package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trigharness/internal/detector"
	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/harness"
	"github.com/roach88/trigharness/internal/store"
)

// FixtureExts are the extensions enumerated when run is given a directory.
var FixtureExts = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Jobs            int
	Deadline        time.Duration
	DetectorTimeout time.Duration
	DetectorCmd     string
	Database        string
	Update          bool
	GoldenDir       string
	Filter          string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs harness.RunIDGenerator
}

// Golden file states reported by run.
const (
	GoldenNone     = "none"
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
)

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	*harness.Report
	Golden     string `json:"golden"`
	GoldenPath string `json:"golden_path,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <suite.yaml|suite.cue|fixtures-dir>",
		Short: "Run fixtures through the detector",
		Long: `Run every fixture marker through the detector and check its label.

The argument is either a suite manifest (YAML or CUE) that lists fixtures
in order, or a directory whose fixtures are enumerated in lexical order.
Flags override the manifest's settings.

When a golden file exists for the suite, the report must match it byte for
byte. Use --update to write the golden file from the current run.

Exit codes:
  0 - All results passed
  1 - One or more results failed, or the golden file did not match
  2 - Command error (invalid suite, unreadable fixtures, etc.)

Examples:
  trigharness run ./testdata/fixtures
  trigharness run ./suites/paste.yaml --jobs 4 --deadline 30s
  trigharness run ./suites/paste.cue --detector-cmd "./bin/detector --stdin"
  trigharness run ./testdata/fixtures --filter "paste-*" --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "fixtures processed concurrently")
	cmd.Flags().DurationVar(&opts.Deadline, "deadline", 0, "deadline for the whole run (0 = none)")
	cmd.Flags().DurationVar(&opts.DetectorTimeout, "detector-timeout", 0, "timeout for a single detector call (0 = none)")
	cmd.Flags().StringVar(&opts.DetectorCmd, "detector-cmd", "", "external detector command (reads an observation on stdin, prints a label)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate the golden file")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default: <suite dir>/golden)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter fixtures by glob pattern on the base name")

	return cmd
}

// runPlan is a resolved run: what to run and how.
type runPlan struct {
	suite     string
	source    fixture.Source
	detector  detector.Detector
	options   harness.Options
	goldenDir string
}

func runSuite(opts *RunOptions, target string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	logger := opts.Logger(cmd.ErrOrStderr())

	plan, err := planRun(opts, target, cmd)
	if err != nil {
		return commandError(out, err)
	}
	plan.options.Logger = logger
	plan.options.RunIDs = opts.RunIDs

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := harness.New(plan.detector, plan.options)
	report, err := runner.RunSource(ctx, plan.suite, plan.source)
	if err != nil {
		return commandError(out, WrapExitError(ExitCommandError, "failed to enumerate fixtures", err))
	}

	if opts.Database != "" {
		if err := recordRun(ctx, opts.Database, report); err != nil {
			return commandError(out, err)
		}
		logger.Info("run recorded", "db", opts.Database, "run_id", report.RunID)
	}

	result := RunOutput{Report: report, Golden: GoldenNone}
	goldenPath := harness.GoldenPath(plan.goldenDir, goldenName(plan.suite))
	if opts.Update {
		if err := harness.WriteGolden(goldenPath, report); err != nil {
			return commandError(out, &ExitError{Code: ExitCommandError, Message: "failed to update golden file", Err: err, ErrCode: ErrCodeWriteFailed})
		}
		result.Golden = GoldenUpdated
		result.GoldenPath = goldenPath
	} else {
		match, err := harness.CompareGolden(goldenPath, report)
		switch {
		case errors.Is(err, harness.ErrNoGolden):
		case err != nil:
			return commandError(out, WrapExitError(ExitCommandError, "golden comparison failed", err))
		case match:
			result.Golden = GoldenMatch
			result.GoldenPath = goldenPath
		default:
			result.Golden = GoldenMismatch
			result.GoldenPath = goldenPath
		}
	}

	return writeRunOutput(out, result)
}

// planRun resolves the target and flags into a runPlan.
func planRun(opts *RunOptions, target string, cmd *cobra.Command) (*runPlan, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("path not found: %s", target), err)
	}

	plan := &runPlan{}
	var cfg harness.DetectorConfig
	baseDir := target

	if info.IsDir() {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to resolve directory", err)
		}
		plan.suite = filepath.Base(abs)
		plan.source = fixture.DirSource{Root: target, Filter: opts.Filter, Exts: FixtureExts}
		plan.goldenDir = filepath.Join(target, "golden")
	} else {
		if !IsSuiteFile(target) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("not a suite manifest or directory: %s", target))
		}
		suite, err := LoadSuiteFile(target)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load suite", err)
		}
		paths, err := filterPaths(suite.Fixtures, opts.Filter)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid filter", err)
		}
		suite.Fixtures = paths

		plan.suite = suite.Name
		plan.source = suite.Source()
		plan.goldenDir = filepath.Join(suite.BaseDir, "golden")
		plan.options.Jobs = suite.Jobs
		plan.options.Deadline, plan.options.DetectorTimeout, _ = suite.Timeouts() // validated on load
		cfg = suite.Detector
		baseDir = suite.BaseDir
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") || plan.options.Jobs == 0 {
		plan.options.Jobs = opts.Jobs
	}
	if flags.Changed("deadline") {
		plan.options.Deadline = opts.Deadline
	}
	if flags.Changed("detector-timeout") {
		plan.options.DetectorTimeout = opts.DetectorTimeout
	}
	if opts.DetectorCmd != "" {
		cfg = harness.DetectorConfig{Kind: harness.DetectorExec, Command: strings.Fields(opts.DetectorCmd)}
		baseDir = "" // relative to the caller's working directory
	}
	if opts.GoldenDir != "" {
		plan.goldenDir = opts.GoldenDir
	}
	if plan.options.Jobs < 1 {
		return nil, NewExitError(ExitCommandError, "--jobs must be at least 1")
	}

	d, err := cfg.NewDetector(baseDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid detector", err)
	}
	plan.detector = d
	return plan, nil
}

// filterPaths keeps paths whose base name without extension matches the
// glob pattern. Order is preserved.
func filterPaths(paths []string, pattern string) ([]string, error) {
	if pattern == "" {
		return paths, nil
	}
	var kept []string
	for _, p := range paths {
		base := filepath.Base(p)
		matched, err := filepath.Match(pattern, strings.TrimSuffix(base, filepath.Ext(base)))
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// goldenName turns a suite name into a file name.
func goldenName(suite string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, suite)
}

func recordRun(ctx context.Context, path string, report *harness.Report) error {
	st, err := store.Open(path)
	if err != nil {
		return storeError("failed to open database", err)
	}
	defer st.Close()

	if err := st.WriteRun(ctx, report); err != nil {
		return storeError("failed to record run", err)
	}
	return nil
}

// writeRunOutput prints the report and maps it to an exit code.
func writeRunOutput(out *OutputFormatter, result RunOutput) error {
	report := result.Report

	var failure *ExitError
	var code string
	switch {
	case !report.Pass():
		code = ErrCodeRunFailed
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d result(s) failed", report.Summary.Failed))
	case result.Golden == GoldenMismatch:
		code = ErrCodeGoldenMismatch
		failure = NewExitError(ExitFailure, "report does not match golden file (run with --update to regenerate)")
	}

	if out.JSON() {
		if failure != nil {
			if err := out.Failure(result, code, failure.Message); err != nil {
				return err
			}
			return failure
		}
		if err := out.Success(result); err != nil {
			return err
		}
		return nil
	}

	writeReportText(out, report)
	w := out.Writer
	switch result.Golden {
	case GoldenUpdated:
		fmt.Fprintf(w, "%s\n", out.Warn("golden updated: "+result.GoldenPath))
	case GoldenMismatch:
		fmt.Fprintf(w, "%s golden mismatch: %s\n", out.Mark(false), result.GoldenPath)
	case GoldenMatch:
		fmt.Fprintf(w, "%s golden match\n", out.Mark(true))
	}

	if failure != nil {
		return failure
	}
	fmt.Fprintf(w, "%s All results passed\n", out.Mark(true))
	return nil
}

// writeReportText prints one line per result and a summary line.
func writeReportText(out *OutputFormatter, report *harness.Report) {
	w := out.Writer
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No markers found.")
	}
	for _, res := range report.Results {
		writeResultLine(w, out.Mark(res.Pass), res)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %s\n", report.Summary)
	if len(report.Summary.ByErrorKind) > 0 {
		kinds := make([]string, 0, len(report.Summary.ByErrorKind))
		for _, kind := range []string{
			harness.ErrorKindMalformedMarker,
			harness.ErrorKindEmptySpan,
			harness.ErrorKindDetector,
			harness.ErrorKindTimeout,
			harness.ErrorKindFixture,
		} {
			if n := report.Summary.ByErrorKind[kind]; n > 0 {
				kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
			}
		}
		fmt.Fprintf(w, "Errors: %s\n", strings.Join(kinds, " "))
	}
}

func writeResultLine(w io.Writer, mark string, res harness.RunResult) {
	where := res.Fixture
	if res.Line > 0 {
		where = fmt.Sprintf("%s:%d", res.Fixture, res.Line)
	}
	if res.MarkerIndex == harness.FixtureLevel {
		fmt.Fprintf(w, "%s %s [%s]\n", mark, where, res.ErrorKind)
	} else {
		fmt.Fprintf(w, "%s %s #%d %s: expected %s, got %s\n", mark, where, res.MarkerIndex, res.Kind, res.Expected, res.Actual)
	}
	if res.Error != "" && !res.Pass {
		fmt.Fprintf(w, "  %s\n", res.Error)
	}
}

// commandError reports err in the configured format and returns it as an
// ExitError.
func commandError(out *OutputFormatter, err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "command failed", err)
	}

	if out.JSON() {
		code := ErrCodeGeneric
		var loadErr *LoadError
		var enumErr *fixture.EnumerationError
		var notFound *store.RunNotFoundError
		switch {
		case errors.As(err, &loadErr):
			code = loadErr.Code
		case errors.As(err, &enumErr):
			code = ErrCodeEnumeration
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			code = ErrCodeNotFound
		case exitErr.ErrCode != "":
			code = exitErr.ErrCode
		}
		if encErr := out.Error(code, exitErr.Error(), nil); encErr != nil {
			return encErr
		}
	}
	return exitErr
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

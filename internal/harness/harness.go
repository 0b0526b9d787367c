package harness

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/trigharness/internal/detector"
	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/synth"
)

// Options configures a Runner. The zero value runs one fixture at a time
// with no deadline.
type Options struct {
	// Jobs bounds how many fixtures are processed at once. Values below 1
	// mean 1. Result order does not depend on it.
	Jobs int

	// Deadline bounds the whole run. When it passes, pending and in-flight
	// detector calls end with the "error" label and the timeout error kind.
	Deadline time.Duration

	// DetectorTimeout bounds a single detector call.
	DetectorTimeout time.Duration

	// Logger receives progress logs. Nil discards them.
	Logger *slog.Logger

	// RunIDs names runs. Nil means UUIDv7Generator.
	RunIDs RunIDGenerator
}

// Runner drives fixtures through scanning, synthesis and classification.
type Runner struct {
	adapter detector.Adapter
	jobs    int
	limit   time.Duration
	logger  *slog.Logger
	runIDs  RunIDGenerator
}

// New creates a Runner that classifies events with d.
func New(d detector.Detector, opts Options) *Runner {
	r := &Runner{
		adapter: detector.Adapter{Detector: d, Timeout: opts.DetectorTimeout},
		jobs:    opts.Jobs,
		limit:   opts.Deadline,
		logger:  opts.Logger,
		runIDs:  opts.RunIDs,
	}
	if r.jobs < 1 {
		r.jobs = 1
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.runIDs == nil {
		r.runIDs = UUIDv7Generator{}
	}
	return r
}

// RunSource enumerates fixtures from src and runs them. Enumeration failure
// is the only error: without fixtures there is nothing to report.
func (r *Runner) RunSource(ctx context.Context, suite string, src fixture.Source) (*Report, error) {
	files, err := src.Files(ctx)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, suite, files), nil
}

// Run processes files and reports one RunResult per synthetic event, plus
// one failed RunResult for each fixture that could not be scanned or
// synthesized. Results follow file order, then marker order, no matter how
// many jobs run.
func (r *Runner) Run(ctx context.Context, suite string, files []fixture.File) *Report {
	runID := r.runIDs.Generate()
	log := r.logger.With("run_id", runID)

	if r.limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.limit)
		defer cancel()
	}

	log.Info("run started", "suite", suite, "fixtures", len(files), "jobs", r.jobs)

	// Each fixture owns its slot; nothing else is shared between workers.
	slots := make([][]RunResult, len(files))
	var g errgroup.Group
	g.SetLimit(r.jobs)
	for i, file := range files {
		g.Go(func() error {
			slots[i] = r.runFixture(ctx, log, file)
			return nil
		})
	}
	_ = g.Wait() // workers record failures as results and never return errors

	names := make([]string, len(files))
	results := []RunResult{}
	var seq int64
	for i, file := range files {
		names[i] = file.Name
		for _, res := range slots[i] {
			seq++
			res.Seq = seq
			results = append(results, res)
		}
	}

	report := &Report{
		RunID:    runID,
		Suite:    suite,
		Fixtures: names,
		Results:  results,
		Summary:  Summarize(names, results),
	}
	log.Info("run finished",
		"total", report.Summary.Total,
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
	)
	return report
}

// runFixture handles one fixture from start to end. Markers are classified
// one after another, in source order.
func (r *Runner) runFixture(ctx context.Context, log *slog.Logger, file fixture.File) []RunResult {
	log = log.With("fixture", file.Name)

	f, err := fixture.FromFile(file)
	if err != nil {
		res := fixtureFailure(file.Name, err)
		log.Warn("fixture failed", "error_kind", res.ErrorKind, "error", err)
		return []RunResult{res}
	}

	events, err := synth.All(f)
	if err != nil {
		res := fixtureFailure(file.Name, err)
		log.Warn("fixture failed", "error_kind", res.ErrorKind, "error", err)
		return []RunResult{res}
	}
	if len(events) == 0 {
		log.Debug("fixture has no markers")
		return nil
	}

	results := make([]RunResult, 0, len(events))
	for _, ev := range events {
		actual, err := r.adapter.Classify(ctx, ev)
		res := eventResult(ev, actual, err)
		results = append(results, res)

		log.Debug("event classified",
			"marker", ev.MarkerIndex,
			"kind", res.Kind,
			"expected", res.Expected,
			"actual", res.Actual,
			"error_kind", res.ErrorKind,
		)
	}
	return results
}

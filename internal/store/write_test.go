package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trigharness/internal/harness"
)

func testReport(runID, suite string) *harness.Report {
	fixtures := []string{"js/paste-trigger.js", "js/broken.js", "js/empty.js"}
	results := []harness.RunResult{
		{
			Seq: 1, Fixture: "js/paste-trigger.js", MarkerIndex: 0, EventID: "ev-1",
			Kind: "single_line_paste", Line: 7, Expected: "paste-single", Actual: "paste-single", Pass: true,
		},
		{
			Seq: 2, Fixture: "js/paste-trigger.js", MarkerIndex: 1, EventID: "ev-2",
			Kind: "multi_line_paste", Line: 11, Expected: "paste-multi", Actual: "typed",
			Error: "expected paste-multi, got typed",
		},
		{
			Seq: 3, Fixture: "js/broken.js", MarkerIndex: harness.FixtureLevel, Line: 3,
			Actual: "error", ErrorKind: harness.ErrorKindMalformedMarker, Error: "js/broken.js:3:4: unclosed marker",
		},
	}
	return &harness.Report{
		RunID:    runID,
		Suite:    suite,
		Fixtures: fixtures,
		Results:  results,
		Summary:  harness.Summarize(fixtures, results),
	}
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := testReport("0192a000-0000-7000-8000-000000000001", "paste-triggers")
	require.NoError(t, s.WriteRun(ctx, want))

	got, err := s.ReadRun(ctx, want.RunID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := testReport("run-1", "paste-triggers")
	require.NoError(t, s.WriteRun(ctx, r))

	// A second write with the same ID keeps the first copy.
	changed := testReport("run-1", "other")
	changed.Results = changed.Results[:1]
	require.NoError(t, s.WriteRun(ctx, changed))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "paste-triggers", got.Suite)
	assert.Len(t, got.Results, 3)

	runs, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_RequiresRunID(t *testing.T) {
	s := openTestStore(t)

	err := s.WriteRun(context.Background(), testReport("", "s"))
	assert.ErrorContains(t, err, "no run ID")
}

func TestWriteRun_EmptyRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := &harness.Report{RunID: "run-empty", Suite: "none", Fixtures: []string{}, Results: []harness.RunResult{}}
	require.NoError(t, s.WriteRun(ctx, r))

	got, err := s.ReadRun(ctx, "run-empty")
	require.NoError(t, err)
	assert.Empty(t, got.Fixtures)
	assert.NotNil(t, got.Results)
	assert.Empty(t, got.Results)
	assert.True(t, got.Pass())
}

func TestWriteRun_StoresDigest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := testReport("run-1", "paste-triggers")
	require.NoError(t, s.WriteRun(ctx, r))

	want, err := harness.Digest(r)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, want, runs[0].Digest)
}

func TestDeleteRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testReport("run-1", "s")))
	require.NoError(t, s.DeleteRun(ctx, "run-1"))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id = 'run-1'`).Scan(&n))
	assert.Zero(t, n, "results are removed with their run")

	var notFound *RunNotFoundError
	assert.ErrorAs(t, s.DeleteRun(ctx, "run-1"), &notFound)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, s.WriteRun(ctx, testReport(id, "paste-triggers")))
	}

	runs, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, "run-a", runs[2].ID)

	assert.Equal(t, 3, runs[0].Total)
	assert.Equal(t, 1, runs[0].Passed)
	assert.Equal(t, 2, runs[0].Failed)
	assert.Equal(t, []string{"js/paste-trigger.js", "js/broken.js", "js/empty.js"}, runs[0].Fixtures)
	assert.NotEmpty(t, runs[0].RecordedAt)
}

func TestListRuns_LimitAndSuite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testReport("run-1", "alpha")))
	require.NoError(t, s.WriteRun(ctx, testReport("run-2", "beta")))
	require.NoError(t, s.WriteRun(ctx, testReport("run-3", "alpha")))

	runs, err := s.ListRuns(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].ID)

	runs, err = s.ListRuns(ctx, "alpha", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
}

func TestListRuns_Empty(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns(context.Background(), "", 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestResolveRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testReport("abc123", "s")))
	require.NoError(t, s.WriteRun(ctx, testReport("abd456", "s")))
	require.NoError(t, s.WriteRun(ctx, testReport("ab", "s")))

	id, err := s.ResolveRunID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	id, err = s.ResolveRunID(ctx, "ab")
	require.NoError(t, err)
	assert.Equal(t, "ab", id, "exact match wins over longer IDs")

	var ambiguous *AmbiguousRunError
	_, err = s.ResolveRunID(ctx, "a")
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []string{"abc123", "abd456", "ab"}, ambiguous.Matches)

	var notFound *RunNotFoundError
	_, err = s.ResolveRunID(ctx, "zzz")
	assert.ErrorAs(t, err, &notFound)

	_, err = s.ResolveRunID(ctx, "")
	assert.ErrorAs(t, err, &notFound)
}

func TestReadRun_ByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := testReport("0192a000-0000-7000-8000-000000000001", "s")
	require.NoError(t, s.WriteRun(ctx, want))

	got, err := s.ReadRun(ctx, "0192a000")
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Summary, got.Summary)
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	var notFound *RunNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, `run "missing" not found`, err.Error())
}

func TestFailuresByKind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testReport("run-1", "alpha")))
	require.NoError(t, s.WriteRun(ctx, testReport("run-2", "beta")))

	counts, err := s.FailuresByKind(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []FailureCount{
		{ErrorKind: "", Count: 2},
		{ErrorKind: "malformed-marker", Count: 2},
	}, counts)

	counts, err = s.FailuresByKind(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []FailureCount{
		{ErrorKind: "", Count: 1},
		{ErrorKind: "malformed-marker", Count: 1},
	}, counts)
}

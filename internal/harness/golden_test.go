package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(runID string) *Report {
	results := []RunResult{
		{Seq: 1, Fixture: "a.js", MarkerIndex: 0, EventID: "e1", Kind: "single_line_paste", Line: 2, Expected: "paste-single", Actual: "paste-single", Pass: true},
		{Seq: 2, Fixture: "b.js", MarkerIndex: FixtureLevel, Actual: "error", ErrorKind: ErrorKindMalformedMarker, Error: "b.js:1:1: bad"},
	}
	fixtures := []string{"a.js", "b.js"}
	return &Report{
		RunID:    runID,
		Suite:    "sample",
		Fixtures: fixtures,
		Results:  results,
		Summary:  Summarize(fixtures, results),
	}
}

func TestSnapshot_Canonical(t *testing.T) {
	data, err := Snapshot(sampleReport("run-1"))
	require.NoError(t, err)

	assert.Equal(t,
		`{"fixtures":["a.js","b.js"],"results":[`+
			`{"actual":"paste-single","event_id":"e1","expected":"paste-single","fixture":"a.js","kind":"single_line_paste","line":2,"marker_index":0,"pass":true,"seq":1},`+
			`{"actual":"error","error":"b.js:1:1: bad","error_kind":"malformed-marker","fixture":"b.js","marker_index":-1,"pass":false,"seq":2}],`+
			`"suite":"sample","summary":{"by_error_kind":{"malformed-marker":1},"failed":1,"fixtures":2,"passed":1,"total":2}}`,
		string(data))
}

func TestSnapshot_IgnoresRunID(t *testing.T) {
	a, err := Snapshot(sampleReport("run-1"))
	require.NoError(t, err)
	b, err := Snapshot(sampleReport("run-2"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteAndCompareGolden(t *testing.T) {
	path := GoldenPath(filepath.Join(t.TempDir(), "golden"), "sample")
	assert.Equal(t, "sample.golden", filepath.Base(path))

	_, err := CompareGolden(path, sampleReport("run-1"))
	assert.ErrorIs(t, err, ErrNoGolden)

	require.NoError(t, WriteGolden(path, sampleReport("run-1")))

	match, err := CompareGolden(path, sampleReport("run-2"))
	require.NoError(t, err)
	assert.True(t, match)

	changed := sampleReport("run-3")
	changed.Results[0].Actual = "typed"
	match, err = CompareGolden(path, changed)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestDigest(t *testing.T) {
	a, err := Digest(sampleReport("run-1"))
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := Digest(sampleReport("run-2"))
	require.NoError(t, err)
	assert.Equal(t, a, b, "run ID is not part of the digest")

	changed := sampleReport("run-1")
	changed.Results[0].Actual = "typed"
	c, err := Digest(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

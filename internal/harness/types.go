package harness

import "fmt"

// Error kinds annotate failed RunResults.
const (
	ErrorKindMalformedMarker = "malformed-marker"
	ErrorKindEmptySpan       = "empty-span"
	ErrorKindDetector        = "detector-error"
	ErrorKindTimeout         = "timeout"

	// ErrorKindFixture covers fixture failures outside the taxonomy above.
	ErrorKindFixture = "fixture-error"
)

// FixtureLevel is the MarkerIndex of a RunResult that stands for a whole
// fixture whose markers could not be read.
const FixtureLevel = -1

// RunResult is the outcome of one synthetic event, or of a whole fixture
// when scanning or synthesis failed.
type RunResult struct {
	// Seq is the 1-based position of the result in the report.
	Seq int64 `json:"seq"`

	Fixture     string `json:"fixture"`
	MarkerIndex int    `json:"marker_index"`
	EventID     string `json:"event_id,omitempty"`
	Kind        string `json:"kind,omitempty"`

	// Line is the marker line, or the line the failure was found on.
	Line int `json:"line,omitempty"`

	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual"`
	Pass     bool   `json:"pass"`

	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Summary counts a report's results.
type Summary struct {
	Fixtures    int            `json:"fixtures"`
	Total       int            `json:"total"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	ByErrorKind map[string]int `json:"by_error_kind,omitempty"`
}

// String renders a one-line summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d total (%d fixtures)", s.Passed, s.Failed, s.Total, s.Fixtures)
}

// Report is the outcome of one harness run.
type Report struct {
	// RunID identifies the run in the store. It is not part of snapshots.
	RunID string `json:"run_id"`

	// Suite names what was run: a suite manifest name or a directory.
	Suite string `json:"suite"`

	// Fixtures lists every fixture attempted, in processing order,
	// including fixtures that produced no results.
	Fixtures []string `json:"fixtures"`

	Results []RunResult `json:"results"`
	Summary Summary     `json:"summary"`
}

// Pass reports whether every result passed.
func (r *Report) Pass() bool {
	return r.Summary.Failed == 0
}

// Failures returns the failed results in report order.
func (r *Report) Failures() []RunResult {
	var out []RunResult
	for _, res := range r.Results {
		if !res.Pass {
			out = append(out, res)
		}
	}
	return out
}

// Summarize counts results.
func Summarize(fixtures []string, results []RunResult) Summary {
	s := Summary{Fixtures: len(fixtures), Total: len(results)}
	for _, res := range results {
		if res.Pass {
			s.Passed++
			continue
		}
		s.Failed++
		if res.ErrorKind != "" {
			if s.ByErrorKind == nil {
				s.ByErrorKind = make(map[string]int)
			}
			s.ByErrorKind[res.ErrorKind]++
		}
	}
	return s
}

package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/trigharness/internal/detector"
	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/synth"
)

// AssertionError is recorded when a detector answers with the wrong label.
type AssertionError struct {
	Fixture     string
	MarkerIndex int
	Expected    string
	Actual      string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s marker #%d: expected %q, got %q", e.Fixture, e.MarkerIndex, e.Expected, e.Actual)
}

// assertLabel compares a classification against the event's expected label.
// The harness never corrects a mismatch; it only records it.
func assertLabel(ev synth.Event, actual string) error {
	expected := ev.ExpectedLabel()
	if actual == expected && actual != fixture.LabelError {
		return nil
	}
	return &AssertionError{
		Fixture:     ev.Fixture,
		MarkerIndex: ev.MarkerIndex,
		Expected:    expected,
		Actual:      actual,
	}
}

// eventResult builds the RunResult for one classified event.
func eventResult(ev synth.Event, actual string, classifyErr error) RunResult {
	res := RunResult{
		Fixture:     ev.Fixture,
		MarkerIndex: ev.MarkerIndex,
		EventID:     ev.ID,
		Kind:        ev.Kind.String(),
		Line:        ev.Target.Line,
		Expected:    ev.ExpectedLabel(),
		Actual:      actual,
	}

	if classifyErr != nil {
		res.ErrorKind = ErrorKindDetector
		var detErr *detector.DetectorError
		if errors.As(classifyErr, &detErr) && detErr.Timeout {
			res.ErrorKind = ErrorKindTimeout
		}
		res.Error = classifyErr.Error()
		return res
	}

	if err := assertLabel(ev, actual); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Pass = true
	return res
}

// fixtureFailure builds the single failed RunResult that stands for a
// fixture whose markers could not be turned into events.
func fixtureFailure(name string, err error) RunResult {
	res := RunResult{
		Fixture:     name,
		MarkerIndex: FixtureLevel,
		Actual:      fixture.LabelError,
		ErrorKind:   ErrorKindFixture,
		Error:       err.Error(),
	}

	var malformed *fixture.MalformedMarkerError
	var empty *synth.EmptySpanError
	switch {
	case errors.As(err, &malformed):
		res.ErrorKind = ErrorKindMalformedMarker
		res.Line = malformed.Line
	case errors.As(err, &empty):
		res.ErrorKind = ErrorKindEmptySpan
		res.Kind = empty.Kind.String()
		res.Expected = empty.Kind.ExpectedLabel()
		res.Line = empty.Line
	}
	return res
}

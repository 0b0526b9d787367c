// Package detector is the boundary between the harness and the trigger
// detector under test.
//
// A detector sees only what a real editor integration could observe: the
// inserted text, where it landed and the editor command that inserted it.
// The expected label never crosses this boundary.
//
// Any failure of the detector (error, panic, empty answer, timeout) is mapped
// to the "error" label and reported as a *DetectorError.
package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/synth"
)

// Observation is what a detector is allowed to see about one insertion.
// It carries no fixture name: fixture names encode expectations.
type Observation struct {
	EventID  string         `json:"event_id"`
	Text     string         `json:"text"`
	Position synth.Position `json:"position"`
	Command  string         `json:"command"`
}

// Observe strips an event down to its observable parts.
func Observe(ev synth.Event) Observation {
	return Observation{
		EventID:  ev.ID,
		Text:     ev.Span.Text,
		Position: ev.Target,
		Command:  ev.Command,
	}
}

// Detector classifies one insertion. Implementations should honor ctx.
type Detector interface {
	Classify(ctx context.Context, obs Observation) (string, error)
}

// Func adapts a plain function to Detector.
type Func func(ctx context.Context, obs Observation) (string, error)

// Classify implements Detector.
func (f Func) Classify(ctx context.Context, obs Observation) (string, error) {
	return f(ctx, obs)
}

// DetectorError records why a classification produced the "error" label.
type DetectorError struct {
	EventID string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *DetectorError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("detector timed out on event %s: %v", shortID(e.EventID), e.Err)
	}
	return fmt.Sprintf("detector failed on event %s: %v", shortID(e.EventID), e.Err)
}

func (e *DetectorError) Unwrap() error {
	return e.Err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Adapter wraps a Detector with the harness failure policy.
type Adapter struct {
	Detector Detector

	// Timeout bounds a single call. Zero means only ctx bounds it.
	Timeout time.Duration
}

// Classify asks the detector about ev. On any failure it returns
// fixture.LabelError together with a *DetectorError.
//
// When ctx ends first the call is abandoned: Classify returns immediately and
// the detector's eventual answer is discarded.
func (a Adapter) Classify(ctx context.Context, ev synth.Event) (string, error) {
	obs := Observe(ev)

	if err := ctx.Err(); err != nil {
		return fixture.LabelError, fail(obs, err)
	}

	callCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	type answer struct {
		label string
		err   error
	}
	done := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- answer{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		label, err := a.Detector.Classify(callCtx, obs)
		done <- answer{label: label, err: err}
	}()

	select {
	case ans := <-done:
		if ans.err != nil {
			if callCtx.Err() != nil {
				return fixture.LabelError, fail(obs, callCtx.Err())
			}
			return fixture.LabelError, fail(obs, ans.err)
		}
		label := strings.TrimSpace(ans.label)
		if label == "" {
			return fixture.LabelError, fail(obs, errors.New("empty label"))
		}
		return label, nil
	case <-callCtx.Done():
		return fixture.LabelError, fail(obs, callCtx.Err())
	}
}

func fail(obs Observation, err error) *DetectorError {
	return &DetectorError{
		EventID: obs.EventID,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// Package synth turns fixture markers into synthetic edit events.
//
// Every marker produces exactly one Event and every Event traces back to
// exactly one marker. The inserted span of an event is derived from the code
// around its marker:
//
//   - SingleLinePaste: the next non-blank line after the marker.
//   - MultiLinePaste: from the first non-blank line after the marker through
//     the bracket that balances the construct opened there.
//   - AcceptTrigger: the body of the second of two leaf blocks whose bodies
//     are identical (the duplicated call sequence).
//
// Block detection is a depth counter over (), [] and {} that skips strings and
// comments. It is sufficient for fixture-style input, not for general source.
package synth

import (
	"fmt"

	"github.com/roach88/trigharness/internal/fixture"
)

// Editor commands a detector can observe alongside an insertion.
const (
	CommandPaste            = "editor.action.clipboardPasteAction"
	CommandAcceptSuggestion = "editor.action.inlineSuggest.commit"
)

// Span is a region of fixture text.
type Span struct {
	Start     int    `json:"start"` // byte offset of the first byte
	End       int    `json:"end"`   // byte offset just past the last byte
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Text      string `json:"text"`
}

// Position is an insertion point in a fixture. Line and Column are 1-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Event is a simulated insertion derived from one marker.
// It is consumed once by the runner.
type Event struct {
	// ID is content-addressed: identical fixtures yield identical IDs.
	ID string `json:"id"`

	Fixture     string       `json:"fixture"`
	MarkerIndex int          `json:"marker_index"`
	Kind        fixture.Kind `json:"-"`

	// Span is the inserted text and where it lives in the fixture.
	Span Span `json:"span"`

	// Target is where the insertion lands: the marker's own position.
	Target Position `json:"target"`

	// Command is the editor command that performed the insertion.
	Command string `json:"command"`
}

// ExpectedLabel returns the label a correct detector reports for e.
func (e Event) ExpectedLabel() string {
	return e.Kind.ExpectedLabel()
}

// EmptySpanError is returned when no non-empty span can be derived for a
// marker. It fails the whole fixture and is not retried.
type EmptySpanError struct {
	Fixture     string
	MarkerIndex int
	Kind        fixture.Kind
	Line        int
	Reason      string
}

// Error implements the error interface.
func (e *EmptySpanError) Error() string {
	return fmt.Sprintf("%s:%d: empty span for %s marker #%d: %s",
		e.Fixture, e.Line, e.Kind, e.MarkerIndex, e.Reason)
}

package fixture

import "fmt"

// MalformedMarkerError is returned when a marker token in a line comment is
// truncated or unrecognized. It is local to one fixture.
type MalformedMarkerError struct {
	Fixture string
	Line    int
	Column  int
	Token   string
	Reason  string
}

// Error implements the error interface.
func (e *MalformedMarkerError) Error() string {
	name := e.Fixture
	if name == "" {
		name = "<fixture>"
	}
	return fmt.Sprintf("%s:%d:%d: malformed marker %q: %s", name, e.Line, e.Column, e.Token, e.Reason)
}

// EnumerationError is returned when a Source cannot list its fixtures.
// Without fixtures there is no meaningful run, so the runner stops.
type EnumerationError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate fixtures from %s: %v", e.Source, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

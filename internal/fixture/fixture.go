package fixture

import (
	"errors"
	"path/filepath"
	"strings"
)

// File is one enumerated fixture before scanning.
type File struct {
	Name string `json:"name"`
	Text string `json:"-"`
}

// Fixture is a scanned fixture. It is immutable once built: callers must not
// modify Markers or the slice returned by Lines.
type Fixture struct {
	// Name is the path-like identifier the fixture was enumerated under.
	Name string

	// Text is the full fixture content.
	Text string

	// Markers are the discovered markers in source order.
	Markers []Marker

	lines []Line
}

// New scans text and builds a Fixture.
//
// Accept-trigger fixtures (see AcceptTriggerNamePattern) get one extra
// AcceptTrigger marker at offset 0, ahead of any comment markers.
func New(name, text string) (*Fixture, error) {
	markers, err := Scan(text)
	if err != nil {
		var malformed *MalformedMarkerError
		if errors.As(err, &malformed) {
			malformed.Fixture = name
		}
		return nil, err
	}

	if IsAcceptTriggerName(name) {
		accept := Marker{
			Kind:   AcceptTrigger,
			Line:   1,
			Column: 1,
			Offset: 0,
			Raw:    filepath.Base(name),
		}
		markers = append([]Marker{accept}, markers...)
	}

	return &Fixture{
		Name:    name,
		Text:    text,
		Markers: markers,
		lines:   SplitLines(text),
	}, nil
}

// FromFile is New for an enumerated File.
func FromFile(f File) (*Fixture, error) {
	return New(f.Name, f.Text)
}

// Lines returns the fixture's lines. The slice is shared.
func (f *Fixture) Lines() []Line {
	return f.lines
}

// IsAcceptTriggerName reports whether a fixture name follows the
// accept-trigger naming convention.
func IsAcceptTriggerName(name string) bool {
	return strings.Contains(filepath.Base(filepath.ToSlash(name)), AcceptTriggerNamePattern)
}

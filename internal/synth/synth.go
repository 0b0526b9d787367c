package synth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/ir"
)

// minDuplicateLines is the shortest body that counts as a duplicated call
// sequence for accept-trigger fixtures.
const minDuplicateLines = 2

// Synthesize builds the event for the marker at index in f.Markers.
// The returned span always starts after the marker and is never blank;
// otherwise an *EmptySpanError is returned.
func Synthesize(f *fixture.Fixture, index int) (Event, error) {
	if index < 0 || index >= len(f.Markers) {
		return Event{}, fmt.Errorf("marker index %d out of range (fixture %s has %d markers)", index, f.Name, len(f.Markers))
	}
	m := f.Markers[index]

	var (
		span    Span
		command = CommandPaste
		reason  string
	)
	switch m.Kind {
	case fixture.SingleLinePaste:
		span, reason = singleLineSpan(f.Lines(), m)
	case fixture.MultiLinePaste:
		span, reason = multiLineSpan(f.Lines(), m)
	case fixture.AcceptTrigger:
		span, reason = acceptSpan(f.Lines())
		command = CommandAcceptSuggestion
	default:
		return Event{}, fmt.Errorf("fixture %s marker #%d: unsupported kind %s", f.Name, index, m.Kind)
	}

	if reason == "" {
		if span.Start <= m.Offset || span.End <= span.Start || strings.TrimSpace(f.Text[span.Start:span.End]) == "" {
			reason = "derived span is blank"
		}
	}
	if reason != "" {
		return Event{}, &EmptySpanError{
			Fixture:     f.Name,
			MarkerIndex: index,
			Kind:        m.Kind,
			Line:        m.Line,
			Reason:      reason,
		}
	}
	span.Text = f.Text[span.Start:span.End]

	id, err := ir.EventID(f.Name, index, m.Kind.String(), span.Start, span.End)
	if err != nil {
		return Event{}, fmt.Errorf("fixture %s marker #%d: %w", f.Name, index, err)
	}

	return Event{
		ID:          id,
		Fixture:     f.Name,
		MarkerIndex: index,
		Kind:        m.Kind,
		Span:        span,
		Target:      Position{Line: m.Line, Column: m.Column, Offset: m.Offset},
		Command:     command,
	}, nil
}

// All synthesizes one event per marker, in marker order.
// The first failure aborts the fixture.
func All(f *fixture.Fixture) ([]Event, error) {
	events := make([]Event, 0, len(f.Markers))
	for i := range f.Markers {
		ev, err := Synthesize(f, i)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// nextNonBlank returns the index of the first non-blank line after line
// number after, or -1.
func nextNonBlank(lines []fixture.Line, after int) int {
	for i, l := range lines {
		if l.Number > after && !l.Blank() {
			return i
		}
	}
	return -1
}

func singleLineSpan(lines []fixture.Line, m fixture.Marker) (Span, string) {
	i := nextNonBlank(lines, m.Line)
	if i < 0 {
		return Span{}, "no content after marker"
	}
	l := lines[i]
	return Span{Start: l.Offset, End: l.End(), StartLine: l.Number, EndLine: l.Number}, ""
}

// multiLineSpan runs the depth counter from the first non-blank line after
// the marker. The span ends at the closer that brings depth back to zero on a
// line that finishes balanced. A first line that opens nothing is a complete
// statement on its own.
func multiLineSpan(lines []fixture.Line, m fixture.Marker) (Span, string) {
	first := nextNonBlank(lines, m.Line)
	if first < 0 {
		return Span{}, "no content after marker"
	}

	var (
		st     lexState
		depth  int
		opened bool
	)
	for i := first; i < len(lines); i++ {
		l := lines[i]
		lastClose := -1
		underflow := false

		st.code(l.Text, func(col int, c byte) bool {
			switch {
			case isOpener(c):
				depth++
				opened = true
			case isCloser(c):
				if depth == 0 {
					underflow = true
					return false
				}
				depth--
				if depth == 0 {
					lastClose = col + 1
				}
			}
			return true
		})

		start := lines[first]
		switch {
		case underflow && lastClose < 0:
			return Span{}, "marker is followed by the end of its enclosing block"
		case underflow, opened && depth == 0:
			return Span{Start: start.Offset, End: l.Offset + lastClose, StartLine: start.Number, EndLine: l.Number}, ""
		case !opened:
			end := l.Offset + len(strings.TrimRight(l.Text, " \t"))
			return Span{Start: start.Offset, End: end, StartLine: start.Number, EndLine: l.Number}, ""
		}
	}

	return Span{}, fmt.Sprintf("block opened at line %d is never closed", lines[first].Number)
}

// block is a {...} pair found by walking a fixture.
type block struct {
	open, close int // line indexes of the braces
}

// body returns the trimmed non-blank lines strictly between the braces.
func (b block) body(lines []fixture.Line) []string {
	var out []string
	for i := b.open + 1; i < b.close; i++ {
		if t := strings.TrimSpace(lines[i].Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// leafBlocks returns the innermost brace blocks in order of their closing
// brace.
func leafBlocks(lines []fixture.Line) []block {
	type frame struct {
		line  int
		child bool
	}
	var (
		st     lexState
		stack  []frame
		leaves []block
	)
	for i, l := range lines {
		st.code(l.Text, func(_ int, c byte) bool {
			switch c {
			case '{':
				if n := len(stack); n > 0 {
					stack[n-1].child = true
				}
				stack = append(stack, frame{line: i})
			case '}':
				n := len(stack)
				if n == 0 {
					return true
				}
				top := stack[n-1]
				stack = stack[:n-1]
				if !top.child {
					leaves = append(leaves, block{open: top.line, close: i})
				}
			}
			return true
		})
	}
	return leaves
}

// acceptSpan finds the first leaf block whose body repeats an earlier leaf
// block's body line for line and returns that repeated body.
func acceptSpan(lines []fixture.Line) (Span, string) {
	blocks := leafBlocks(lines)
	bodies := make([][]string, len(blocks))
	for i, b := range blocks {
		bodies[i] = b.body(lines)
	}

	for j := range blocks {
		if len(bodies[j]) < minDuplicateLines {
			continue
		}
		for i := 0; i < j; i++ {
			if !slices.Equal(bodies[i], bodies[j]) {
				continue
			}
			first, last := -1, -1
			for k := blocks[j].open + 1; k < blocks[j].close; k++ {
				if lines[k].Blank() {
					continue
				}
				if first < 0 {
					first = k
				}
				last = k
			}
			return Span{
				Start:     lines[first].Offset,
				End:       lines[last].End(),
				StartLine: lines[first].Number,
				EndLine:   lines[last].Number,
			}, ""
		}
	}

	return Span{}, "no duplicated call sequence between method bodies"
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/synth"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Name string // fixture name override
}

// ScanMarker is one marker and the event synthesized from it.
type ScanMarker struct {
	Index    int          `json:"index"`
	Kind     string       `json:"kind"`
	Line     int          `json:"line"`
	Column   int          `json:"column"`
	Expected string       `json:"expected"`
	Event    *synth.Event `json:"event,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ScanOutput is the result of scanning one fixture.
type ScanOutput struct {
	Fixture string       `json:"fixture"`
	Markers []ScanMarker `json:"markers"`
	Error   string       `json:"error,omitempty"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <fixture>",
		Short: "Show the markers and events of one fixture",
		Long: `Scan a single fixture and print its markers together with the
synthetic event derived from each one. No detector is called.

Exit codes:
  0 - Every marker produced an event
  1 - A marker is malformed or its span is empty
  2 - Command error (unreadable file)

Examples:
  trigharness scan ./testdata/fixtures/js/paste-trigger.js
  trigharness scan ./player.js --name js/accept-trigger.js --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return scanFixture(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "fixture name (default: the path as given)")

	return cmd
}

func scanFixture(opts *ScanOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())

	data, err := os.ReadFile(path)
	if err != nil {
		return commandError(out, WrapExitError(ExitCommandError, "failed to read fixture", err))
	}
	name := opts.Name
	if name == "" {
		name = filepath.ToSlash(path)
	}

	result := ScanOutput{Fixture: name, Markers: []ScanMarker{}}
	f, err := fixture.New(name, string(data))
	if err != nil {
		result.Error = err.Error()
		return writeScanOutput(out, result, NewExitError(ExitFailure, "malformed marker"))
	}

	// Every marker is synthesized on its own so one empty span does not
	// hide the others.
	var failed int
	for i, m := range f.Markers {
		sm := ScanMarker{
			Index:    i,
			Kind:     m.Kind.String(),
			Line:     m.Line,
			Column:   m.Column,
			Expected: m.Kind.ExpectedLabel(),
		}
		ev, err := synth.Synthesize(f, i)
		if err != nil {
			var empty *synth.EmptySpanError
			if !errors.As(err, &empty) {
				return commandError(out, WrapExitError(ExitCommandError, "synthesis failed", err))
			}
			sm.Error = err.Error()
			failed++
		} else {
			sm.Event = &ev
		}
		result.Markers = append(result.Markers, sm)
	}

	var failure *ExitError
	if failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d marker(s) have no span", failed))
	}
	return writeScanOutput(out, result, failure)
}

func writeScanOutput(out *OutputFormatter, result ScanOutput, failure *ExitError) error {
	if out.JSON() {
		if failure != nil {
			if err := out.Failure(result, ErrCodeMalformed, failure.Message); err != nil {
				return err
			}
			return failure
		}
		return out.Success(result)
	}

	w := out.Writer
	fmt.Fprintf(w, "%s\n", result.Fixture)
	if result.Error != "" {
		fmt.Fprintf(w, "%s %s\n", out.Mark(false), result.Error)
	}
	if len(result.Markers) == 0 && result.Error == "" {
		fmt.Fprintln(w, "  no markers")
	}
	for _, m := range result.Markers {
		fmt.Fprintf(w, "%s #%d %s at %d:%d (expect %s)\n", out.Mark(m.Error == ""), m.Index, m.Kind, m.Line, m.Column, m.Expected)
		if m.Error != "" {
			fmt.Fprintf(w, "  %s\n", m.Error)
			continue
		}
		ev := m.Event
		fmt.Fprintf(w, "  event %s command %s\n", shortID(ev.ID), ev.Command)
		fmt.Fprintf(w, "  span lines %d-%d, bytes %d-%d\n", ev.Span.StartLine, ev.Span.EndLine, ev.Span.Start, ev.Span.End)
		for _, line := range strings.Split(ev.Span.Text, "\n") {
			fmt.Fprintf(w, "  | %s\n", line)
		}
	}

	if failure != nil {
		return failure
	}
	return nil
}

// shortID abbreviates a content-addressed ID for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

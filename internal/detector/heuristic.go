package detector

import (
	"context"
	"strings"

	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/synth"
)

// Heuristic is the reference detector. It decides from the editor command
// and the shape of the inserted text only:
//
//   - an inline-suggestion commit is "accept"
//   - a paste of one line is "paste-single"
//   - a paste of several lines is "paste-multi"
//   - anything else is "typed"
type Heuristic struct{}

// Classify implements Detector.
func (Heuristic) Classify(ctx context.Context, obs Observation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch obs.Command {
	case synth.CommandAcceptSuggestion:
		return fixture.LabelAccept, nil
	case synth.CommandPaste:
		if lineCount(obs.Text) > 1 {
			return fixture.LabelPasteMulti, nil
		}
		return fixture.LabelPasteSingle, nil
	default:
		return fixture.LabelTyped, nil
	}
}

func lineCount(text string) int {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

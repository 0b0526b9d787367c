package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trigharness/internal/fixture"
	"github.com/roach88/trigharness/internal/synth"
)

func TestHeuristic_Classify(t *testing.T) {
	tests := []struct {
		name    string
		command string
		text    string
		want    string
	}{
		{"accept", synth.CommandAcceptSuggestion, "a();\nb();", fixture.LabelAccept},
		{"single paste", synth.CommandPaste, "\tcall();", fixture.LabelPasteSingle},
		{"single paste with newline", synth.CommandPaste, "call();\n", fixture.LabelPasteSingle},
		{"multi paste", synth.CommandPaste, "f(\n  1\n)", fixture.LabelPasteMulti},
		{"no command", "", "x", fixture.LabelTyped},
		{"other command", "type", "x\ny", fixture.LabelTyped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, err := Heuristic{}.Classify(context.Background(), Observation{Command: tt.command, Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, label)
		})
	}
}

// The reference detector agrees with every expected label in the
// repository fixtures.
func TestHeuristic_RepositoryFixtures(t *testing.T) {
	for _, name := range []string{"paste-trigger.js", "accept-trigger.js", "player.js"} {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", "js", name))
			require.NoError(t, err)
			f, err := fixture.New(name, string(data))
			require.NoError(t, err)

			events, err := synth.All(f)
			require.NoError(t, err)

			a := Adapter{Detector: Heuristic{}}
			for _, ev := range events {
				label, err := a.Classify(context.Background(), ev)
				require.NoError(t, err)
				assert.Equal(t, ev.ExpectedLabel(), label)
			}
		})
	}
}

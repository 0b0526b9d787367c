package detector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/roach88/trigharness/internal/ir"
)

// Exec runs an external detector once per observation.
//
// The observation is written to stdin as canonical JSON:
//
//	{"command":"...","event_id":"...","position":{"column":3,"line":7,"offset":77},"text":"..."}
//
// The first line of stdout, trimmed, is the label. A non-zero exit status or
// an empty stdout is a failure.
type Exec struct {
	// Command is the argv of the detector process. Command[0] is looked up
	// in PATH.
	Command []string

	// Dir is the working directory of the process. Empty means the
	// current directory.
	Dir string
}

// waitDelay bounds how long Classify waits for the process's pipes after
// the process was killed.
const waitDelay = 2 * time.Second

// Classify implements Detector.
func (e Exec) Classify(ctx context.Context, obs Observation) (string, error) {
	if len(e.Command) == 0 {
		return "", errors.New("exec detector: no command configured")
	}

	input, err := ir.MarshalCanonical(map[string]any{
		"event_id": obs.EventID,
		"text":     obs.Text,
		"command":  obs.Command,
		"position": map[string]any{
			"line":   obs.Position.Line,
			"column": obs.Position.Column,
			"offset": obs.Position.Offset,
		},
	})
	if err != nil {
		return "", fmt.Errorf("exec detector: encode observation: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	cmd.Dir = e.Dir
	cmd.Stdin = bytes.NewReader(append(input, '\n'))
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("exec detector %s: %w: %s", e.Command[0], err, msg)
		}
		return "", fmt.Errorf("exec detector %s: %w", e.Command[0], err)
	}

	label, _, _ := strings.Cut(stdout.String(), "\n")
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("exec detector %s: no label on stdout", e.Command[0])
	}
	return label, nil
}

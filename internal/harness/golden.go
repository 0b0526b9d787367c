package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/trigharness/internal/ir"
)

// GoldenSuffix is the extension of golden report files.
const GoldenSuffix = ".golden"

// Snapshot renders a report as canonical JSON for golden comparison.
// The run ID is left out, so two runs over the same fixtures with the same
// detector produce identical bytes.
func Snapshot(r *Report) ([]byte, error) {
	data, err := ir.MarshalCanonical(snapshotValue(r))
	if err != nil {
		return nil, fmt.Errorf("snapshot report: %w", err)
	}
	return data, nil
}

// Digest returns the content hash of the report's snapshot. Reports with
// equal snapshots have equal digests.
func Digest(r *Report) (string, error) {
	d, err := ir.Digest(ir.DomainReport, snapshotValue(r))
	if err != nil {
		return "", fmt.Errorf("digest report: %w", err)
	}
	return d, nil
}

func snapshotValue(r *Report) map[string]any {
	fixtures := make([]any, len(r.Fixtures))
	for i, name := range r.Fixtures {
		fixtures[i] = name
	}

	results := make([]any, len(r.Results))
	for i, res := range r.Results {
		results[i] = resultMap(res)
	}

	byKind := make(map[string]any, len(r.Summary.ByErrorKind))
	for kind, n := range r.Summary.ByErrorKind {
		byKind[kind] = n
	}

	return map[string]any{
		"suite":    r.Suite,
		"fixtures": fixtures,
		"results":  results,
		"summary": map[string]any{
			"fixtures":      r.Summary.Fixtures,
			"total":         r.Summary.Total,
			"passed":        r.Summary.Passed,
			"failed":        r.Summary.Failed,
			"by_error_kind": byKind,
		},
	}
}

// resultMap converts a RunResult to a map for canonical JSON. Empty optional
// fields are left out, matching the JSON tags.
func resultMap(res RunResult) map[string]any {
	m := map[string]any{
		"seq":          res.Seq,
		"fixture":      res.Fixture,
		"marker_index": res.MarkerIndex,
		"actual":       res.Actual,
		"pass":         res.Pass,
	}
	optional := map[string]string{
		"event_id":   res.EventID,
		"kind":       res.Kind,
		"expected":   res.Expected,
		"error_kind": res.ErrorKind,
		"error":      res.Error,
	}
	for k, v := range optional {
		if v != "" {
			m[k] = v
		}
	}
	if res.Line != 0 {
		m["line"] = res.Line
	}
	return m
}

// GoldenPath returns the golden file for name inside dir.
func GoldenPath(dir, name string) string {
	return filepath.Join(dir, name+GoldenSuffix)
}

// WriteGolden stores the report's snapshot at path.
func WriteGolden(path string, r *Report) error {
	data, err := Snapshot(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// ErrNoGolden is returned by CompareGolden when the golden file is missing.
var ErrNoGolden = errors.New("golden file not found")

// CompareGolden reports whether the report's snapshot equals the golden file
// at path.
func CompareGolden(path string, r *Report) (bool, error) {
	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, ErrNoGolden
	}
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	got, err := Snapshot(r)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

// AssertGolden compares the report against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, r *Report) {
	t.Helper()

	data, err := Snapshot(r)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(GoldenSuffix),
	)
	g.Assert(t, name, data)
}

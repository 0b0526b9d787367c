package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trigharness/internal/detector"
	"github.com/roach88/trigharness/internal/fixture"
)

func writeSuite(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSuite_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, `
name: samples
description: "Sample fixtures"
fixtures:
  - js/paste-trigger.js
  - js/accept-trigger.js
jobs: 2
deadline: 30s
detector_timeout: 250ms
detector:
  kind: exec
  command: ["./detect", "--stdin"]
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)

	assert.Equal(t, "samples", suite.Name)
	assert.Equal(t, []string{"js/paste-trigger.js", "js/accept-trigger.js"}, suite.Fixtures)
	assert.Equal(t, 2, suite.Jobs)
	assert.Equal(t, dir, suite.BaseDir)
	assert.Equal(t, DetectorConfig{Kind: DetectorExec, Command: []string{"./detect", "--stdin"}}, suite.Detector)

	deadline, perCall, err := suite.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, deadline)
	assert.Equal(t, 250*time.Millisecond, perCall)
}

func TestLoadSuite_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"unknown field", "name: x\nfixture:\n  - a.js\n", "field fixture not found"},
		{"missing name", "fixtures:\n  - a.js\n", "name is required"},
		{"no fixtures", "name: x\nfixtures: []\n", "fixtures list is required"},
		{"duplicate fixture", "name: x\nfixtures: [a.js, a.js]\n", "duplicate fixture"},
		{"negative jobs", "name: x\nfixtures: [a.js]\njobs: -1\n", "jobs must be non-negative"},
		{"bad deadline", "name: x\nfixtures: [a.js]\ndeadline: soon\n", "deadline"},
		{"negative timeout", "name: x\nfixtures: [a.js]\ndetector_timeout: -1s\n", "detector_timeout must not be negative"},
		{"exec without command", "name: x\nfixtures: [a.js]\ndetector:\n  kind: exec\n", "command is required"},
		{"heuristic with command", "name: x\nfixtures: [a.js]\ndetector:\n  kind: heuristic\n  command: [x]\n", "only valid for kind"},
		{"unknown detector", "name: x\nfixtures: [a.js]\ndetector:\n  kind: oracle\n", `unknown kind "oracle"`},
		{"not yaml", "name: [x\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSuite(writeSuite(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite file")
}

func TestDetectorConfig_NewDetector(t *testing.T) {
	d, err := DetectorConfig{}.NewDetector("")
	require.NoError(t, err)
	assert.Equal(t, detector.Heuristic{}, d)

	d, err = DetectorConfig{Kind: DetectorExec, Command: []string{"det"}}.NewDetector("/work")
	require.NoError(t, err)
	assert.Equal(t, detector.Exec{Command: []string{"det"}, Dir: "/work"}, d)

	_, err = DetectorConfig{Kind: DetectorExec}.NewDetector("")
	assert.Error(t, err)
	_, err = DetectorConfig{Kind: "oracle"}.NewDetector("")
	assert.Error(t, err)
}

func TestSuite_RunInDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"paste-trigger.js", "accept-trigger.js", "player.js"} {
		data, err := os.ReadFile(filepath.Join(repoFixtures, "js", name))
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "js", name), data, 0644))
	}
	path := writeSuite(t, dir, `
name: declared-order
description: "Paste fixture first"
fixtures:
  - js/player.js
  - js/paste-trigger.js
  - js/accept-trigger.js
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)

	report, err := newTestRunner(detector.Heuristic{}, Options{}).RunSource(context.Background(), suite.Name, suite.Source())
	require.NoError(t, err)

	assert.Equal(t, suite.Fixtures, report.Fixtures)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "js/paste-trigger.js", report.Results[0].Fixture)
	assert.Equal(t, "js/accept-trigger.js", report.Results[2].Fixture)
	assert.True(t, report.Pass())
}

func TestSuite_MissingFixtureIsEnumerationError(t *testing.T) {
	suite := &Suite{Name: "x", Fixtures: []string{"gone.js"}, BaseDir: t.TempDir()}
	require.NoError(t, ValidateSuite(suite))

	_, err := newTestRunner(detector.Heuristic{}, Options{}).RunSource(context.Background(), suite.Name, suite.Source())
	var enumErr *fixture.EnumerationError
	assert.ErrorAs(t, err, &enumErr)
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/trigharness/internal/detector"
	"github.com/roach88/trigharness/internal/fixture"
)

// Suite is a fixture-set manifest.
//
//	name: paste-triggers
//	description: "Paste and accept detection on the sample fixtures"
//	fixtures:
//	  - js/paste-trigger.js
//	  - js/accept-trigger.js
//	jobs: 2
//	deadline: 30s
//	detector_timeout: 2s
//	detector:
//	  kind: exec
//	  command: ["./bin/detector", "--stdin"]
type Suite struct {
	// Name identifies the suite in reports and golden files.
	Name string `yaml:"name" json:"name"`

	// Description explains what this suite covers.
	Description string `yaml:"description" json:"description"`

	// Fixtures lists fixture paths in processing order.
	// Relative paths are resolved against BaseDir.
	Fixtures []string `yaml:"fixtures" json:"fixtures"`

	// Jobs, Deadline and DetectorTimeout are defaults for Options.
	// Durations use time.ParseDuration syntax.
	Jobs            int    `yaml:"jobs,omitempty" json:"jobs,omitempty"`
	Deadline        string `yaml:"deadline,omitempty" json:"deadline,omitempty"`
	DetectorTimeout string `yaml:"detector_timeout,omitempty" json:"detector_timeout,omitempty"`

	// Detector selects the detector under test. Empty means heuristic.
	Detector DetectorConfig `yaml:"detector,omitempty" json:"detector,omitempty"`

	// BaseDir is the manifest's directory. It is set by the loader.
	BaseDir string `yaml:"-" json:"-"`
}

// DetectorConfig selects a detector implementation.
type DetectorConfig struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`
}

// Detector kinds.
const (
	DetectorHeuristic = "heuristic"
	DetectorExec      = "exec"
)

// NewDetector builds the configured detector. Exec detectors run in dir.
func (c DetectorConfig) NewDetector(dir string) (detector.Detector, error) {
	switch c.Kind {
	case "", DetectorHeuristic:
		return detector.Heuristic{}, nil
	case DetectorExec:
		if len(c.Command) == 0 {
			return nil, fmt.Errorf("detector: command is required for kind %q", DetectorExec)
		}
		return detector.Exec{Command: c.Command, Dir: dir}, nil
	default:
		return nil, fmt.Errorf("detector: unknown kind %q", c.Kind)
	}
}

// Source returns the fixture source the suite declares.
func (s *Suite) Source() fixture.Source {
	return fixture.ListSource{Base: s.BaseDir, Paths: s.Fixtures}
}

// Timeouts returns the parsed Deadline and DetectorTimeout.
// Empty values are zero.
func (s *Suite) Timeouts() (deadline, detectorTimeout time.Duration, err error) {
	if deadline, err = parseDuration("deadline", s.Deadline); err != nil {
		return 0, 0, err
	}
	if detectorTimeout, err = parseDuration("detector_timeout", s.DetectorTimeout); err != nil {
		return 0, 0, err
	}
	return deadline, detectorTimeout, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

// LoadSuite reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	// Strict decoding catches typos like "fixture:" vs "fixtures:"
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	suite.BaseDir = filepath.Dir(path)

	if err := ValidateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	return &suite, nil
}

// ValidateSuite checks that required fields are present and valid.
// Fixture files are not opened; a missing fixture surfaces when the
// suite's Source is enumerated.
func ValidateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Fixtures) == 0 {
		return fmt.Errorf("fixtures list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Fixtures))
	for i, p := range s.Fixtures {
		if p == "" {
			return fmt.Errorf("fixtures[%d]: path is empty", i)
		}
		if seen[p] {
			return fmt.Errorf("fixtures[%d]: duplicate fixture %q", i, p)
		}
		seen[p] = true
	}

	if s.Jobs < 0 {
		return fmt.Errorf("jobs must be non-negative")
	}

	if _, _, err := s.Timeouts(); err != nil {
		return err
	}

	switch s.Detector.Kind {
	case "", DetectorHeuristic:
		if len(s.Detector.Command) > 0 {
			return fmt.Errorf("detector: command is only valid for kind %q", DetectorExec)
		}
	case DetectorExec:
		if len(s.Detector.Command) == 0 {
			return fmt.Errorf("detector: command is required for kind %q", DetectorExec)
		}
	default:
		return fmt.Errorf("detector: unknown kind %q", s.Detector.Kind)
	}

	return nil
}

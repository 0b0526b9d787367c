package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/trigharness/internal/harness"
)

// LoadError represents an error that occurred while loading a suite.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// suiteFields are the regular fields a CUE suite may declare. Definitions
// and hidden fields are free for schemas and helpers.
var suiteFields = map[string]bool{
	"name":             true,
	"description":      true,
	"fixtures":         true,
	"jobs":             true,
	"deadline":         true,
	"detector_timeout": true,
	"detector":         true,
}

// IsSuiteFile reports whether path names a suite manifest rather than a
// fixture directory.
func IsSuiteFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// LoadSuiteFile reads a suite manifest. ".cue" files are evaluated with
// CUE; everything else is strict YAML.
func LoadSuiteFile(path string) (*harness.Suite, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("suite not found: %s", path)}
	}

	if filepath.Ext(path) != ".cue" {
		suite, err := harness.LoadSuite(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		}
		return suite, nil
	}
	return loadCUESuite(path)
}

// loadCUESuite evaluates a single CUE file whose top-level fields form a
// suite. Values must be concrete after evaluation.
func loadCUESuite(path string) (*harness.Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading suite: %v", err)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("compiling CUE: %v", err), Pos: value.Pos()}
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("suite is not concrete: %v", err), Pos: value.Pos()}
	}

	// Decode ignores unknown fields, so typos are caught here.
	iter, err := value.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("iterating suite: %v", err)}
	}
	var unknown []string
	var unknownPos token.Pos
	for iter.Next() {
		label := iter.Selector().String()
		if !suiteFields[label] {
			if len(unknown) == 0 {
				unknownPos = iter.Value().Pos()
			}
			unknown = append(unknown, label)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &LoadError{
			Code:    ErrCodeInvalidSuite,
			Message: fmt.Sprintf("unknown suite fields: %v", unknown),
			Pos:     unknownPos,
		}
	}

	var suite harness.Suite
	if err := value.Decode(&suite); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("decoding suite: %v", err)}
	}
	suite.BaseDir = filepath.Dir(path)

	if err := harness.ValidateSuite(&suite); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidSuite, Message: fmt.Sprintf("invalid suite: %v", err)}
	}
	return &suite, nil
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/trigharness/internal/ir"
)

// marshalFixtures stores a fixture list as canonical JSON TEXT.
func marshalFixtures(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := ir.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal fixtures: %w", err)
	}
	return string(data), nil
}

// unmarshalFixtures is the inverse of marshalFixtures.
func unmarshalFixtures(text string) ([]string, error) {
	names := []string{}
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		return nil, fmt.Errorf("unmarshal fixtures: %w", err)
	}
	return names, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

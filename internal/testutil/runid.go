// Package testutil provides deterministic run IDs for tests.
package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDGenerator returns the same run ID every time, so reports from
// different runs compare equal field for field.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id.
// If id is empty, Generate returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// RunIDSequence returns predetermined run IDs in order. It is used where a
// test stores several runs and needs to tell them apart.
//
// Thread-safety: RunIDSequence is safe for concurrent use.
type RunIDSequence struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewRunIDSequence creates a sequence of ids.
//
//	seq := NewRunIDSequence("run-1", "run-2")
//	seq.Generate() // "run-1"
//	seq.Generate() // "run-2"
//	seq.Generate() // panic: all run IDs used
func NewRunIDSequence(ids ...string) *RunIDSequence {
	return &RunIDSequence{ids: ids}
}

// Generate returns the next run ID.
//
// Panics once the sequence is used up: the test created more runs than it
// declared.
func (s *RunIDSequence) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.ids) {
		panic(fmt.Sprintf("RunIDSequence: all %d run IDs used", len(s.ids)))
	}
	id := s.ids[s.idx]
	s.idx++
	return id
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunIDGenerator(t *testing.T) {
	gen := NewFixedRunIDGenerator("run-42")
	assert.Equal(t, "run-42", gen.Generate())
	assert.Equal(t, "run-42", gen.Generate())
}

func TestFixedRunIDGenerator_Default(t *testing.T) {
	assert.Equal(t, "test-run-default", NewFixedRunIDGenerator("").Generate())
}

func TestRunIDSequence(t *testing.T) {
	seq := NewRunIDSequence("run-1", "run-2")

	assert.Equal(t, "run-1", seq.Generate())
	assert.Equal(t, "run-2", seq.Generate())
	assert.Panics(t, func() { seq.Generate() })
}

package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestPositionZeroValue(t *testing.T) {
	var p Position
	assert.Equal(t, 0, p.Line)
	assert.Equal(t, 0, p.Column)
	assert.Equal(t, 0, p.Offset)
}

func TestPositionEquality(t *testing.T) {
	a := Position{Line: 3, Column: 5, Offset: 42}
	b := Position{Line: 3, Column: 5, Offset: 42}
	assert.Equal(t, a, b)
}

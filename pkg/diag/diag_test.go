package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinkHasErrors(t *testing.T) {
	sink := NewSink()
	assert.False(t, sink.HasErrors())

	sink.Warningf(CodeUnreachableCode, NewSpan(0, 1), "unreachable")
	assert.False(t, sink.HasErrors())

	sink.Errorf(CodeUndefinedIdentifier, NewSpan(2, 3), "undefined %q", "x")
	assert.True(t, sink.HasErrors())
	assert.Equal(t, 1, sink.CountBySeverity(Error))
	assert.Equal(t, 1, sink.CountBySeverity(Warning))
}

func TestFilePositionOf(t *testing.T) {
	f := NewFile("t.b65", "abc\ndef\nghi")

	pos := f.PositionOf(5)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 2, pos.Column)

	pos = f.PositionOf(0)
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, 1, pos.Column)
}

func TestFileLineText(t *testing.T) {
	f := NewFile("t.b65", "abc\ndef\nghi")
	assert.Equal(t, "def", f.LineText(5))
	assert.Equal(t, "abc", f.LineText(0))
	assert.Equal(t, "ghi", f.LineText(10))
}

func TestSpanJoin(t *testing.T) {
	a := NewSpan(2, 5)
	b := NewSpan(1, 3)
	j := a.Join(b)
	assert.Equal(t, 1, j.Start())
	assert.Equal(t, 5, j.End())
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "UNDEFINED_IDENTIFIER", CodeUndefinedIdentifier.String())
	assert.Equal(t, "UNREACHABLE_CODE", CodeUnreachableCode.String())
}

// Package diag provides the source buffer and diagnostic sink shared by every
// pass of the compiler: lexer, parser, semantic analyzer, IL lowering and
// validator all report through it.
package diag

import "fmt"

// Span represents a contiguous, half-open slice of a source file, identified
// by byte offsets rather than by copying the underlying text. Spans are
// carried by every token, AST node, IL instruction and diagnostic.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span covering [start,end), panicking if the range is
// malformed.
func NewSpan(start, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span [%d,%d)", start, end))
	}

	return Span{start, end}
}

// Start returns the first byte offset covered by this span.
func (s Span) Start() int { return s.start }

// End returns one past the last byte offset covered by this span.
func (s Span) End() int { return s.end }

// Length returns the number of bytes covered by this span.
func (s Span) Length() int { return s.end - s.start }

// Join returns the smallest span enclosing both s and other.
func (s Span) Join(other Span) Span {
	return NewSpan(min(s.start, other.start), max(s.end, other.end))
}

// Position is a human-facing (line, column) location derived from a Span
// against a particular File; it is computed on demand rather than stored.
type Position struct {
	Line   int
	Column int
	Offset int
}

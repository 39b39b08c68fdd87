package diag

// File is an immutable in-memory source file. Positions, spans and
// diagnostics all borrow from it for the duration of a compilation; nothing
// downstream mutates its contents.
type File struct {
	name     string
	contents []rune
}

// NewFile constructs a source file from raw text. Text is converted to runes
// up front so that later byte-offset arithmetic is unambiguous in the
// presence of multi-byte characters inside string literals and comments.
func NewFile(name string, text string) *File {
	return &File{name, []rune(text)}
}

// Name returns the file's name, typically a module-relative path.
func (f *File) Name() string { return f.name }

// Contents returns the full rune sequence of this file.
func (f *File) Contents() []rune { return f.contents }

// Slice returns the text covered by a span.
func (f *File) Slice(span Span) string {
	end := min(span.End(), len(f.contents))
	start := min(span.Start(), end)

	return string(f.contents[start:end])
}

// PositionOf computes the (line, column) of a byte offset, counting lines
// from 1 and columns from 1. An offset beyond the end of the file resolves
// to the final position in the file.
func (f *File) PositionOf(offset int) Position {
	line, col := 1, 1

	limit := min(offset, len(f.contents))
	for i := 0; i < limit; i++ {
		if f.contents[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return Position{line, col, offset}
}

// LineText returns the full text of the line enclosing a given offset, with
// no trailing newline.
func (f *File) LineText(offset int) string {
	start := offset
	for start > 0 && f.contents[start-1] != '\n' {
		start--
	}

	end := offset
	for end < len(f.contents) && f.contents[end] != '\n' {
		end++
	}

	return string(f.contents[start:end])
}

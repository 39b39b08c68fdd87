package diag

import (
	"fmt"
	"strings"

	"golang.org/x/term"
)

const defaultWidth = 80

// Render formats every diagnostic in the sink as a human-readable, one
// finding per paragraph report: severity, code, message, the enclosing
// source line and a caret underline beneath the offending span. Long source
// lines are clipped to the width of the controlling terminal (falling back
// to 80 columns when stdout is not a TTY), mirroring the way
// pkg/util/termio sizes its widgets against golang.org/x/term in the teacher
// repository. All spans in sink are assumed to be relative to file; a
// compilation spanning several files renders one Sink per file (see
// cmd/blend65c).
func Render(sink *Sink, file *File, fd int) string {
	width := terminalWidth(fd)

	var b strings.Builder

	for _, d := range sink.All() {
		renderOne(&b, d, file, width)
	}

	return b.String()
}

func terminalWidth(fd int) int {
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}

	return defaultWidth
}

func renderOne(b *strings.Builder, d Diagnostic, file *File, width int) {
	fmt.Fprintf(b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)

	if file == nil {
		return
	}

	pos := file.PositionOf(d.Span.Start())
	fmt.Fprintf(b, "  --> %s:%d:%d\n", file.Name(), pos.Line, pos.Column)

	line := file.LineText(d.Span.Start())
	if len(line) > width {
		line = line[:width]
	}

	fmt.Fprintf(b, "  %s\n", line)

	underlineStart := pos.Column - 1
	underlineLen := max(1, min(d.Span.Length(), width-underlineStart))

	fmt.Fprintf(b, "  %s%s\n", strings.Repeat(" ", max(0, underlineStart)), strings.Repeat("^", underlineLen))
}

package diag

import "fmt"

// Sink is an append-only collection of diagnostics. It has a single writer
// at any given time: whichever pass is currently running (spec.md §5). A
// Sink is never shared between concurrent compilations of separate modules.
type Sink struct {
	diagnostics []Diagnostic
}

// NewSink constructs an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Errorf appends an Error-severity diagnostic.
func (s *Sink) Errorf(code Code, span Span, format string, args ...any) {
	s.append(Error, code, span, nil, format, args...)
}

// Warningf appends a Warning-severity diagnostic.
func (s *Sink) Warningf(code Code, span Span, format string, args ...any) {
	s.append(Warning, code, span, nil, format, args...)
}

// Infof appends an Info-severity diagnostic.
func (s *Sink) Infof(code Code, span Span, format string, args ...any) {
	s.append(Info, code, span, nil, format, args...)
}

// ErrorRelated appends an Error-severity diagnostic carrying related spans,
// e.g. the original declaration site in a duplicate-declaration error.
func (s *Sink) ErrorRelated(code Code, span Span, related []Span, format string, args ...any) {
	s.append(Error, code, span, related, format, args...)
}

func (s *Sink) append(sev Severity, code Code, span Span, related []Span, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		Related:  related,
	})
}

// Merge appends all diagnostics from other into s, preserving order.
func (s *Sink) Merge(other *Sink) {
	if other == nil {
		return
	}

	s.diagnostics = append(s.diagnostics, other.diagnostics...)
}

// All returns every diagnostic recorded so far, in emission order.
func (s *Sink) All() []Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any Error-severity diagnostic has been recorded.
// Per spec.md §7, warnings and info never cause compilation failure.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// CountBySeverity returns the number of diagnostics at each severity.
func (s *Sink) CountBySeverity(sev Severity) int {
	n := 0

	for _, d := range s.diagnostics {
		if d.Severity == sev {
			n++
		}
	}

	return n
}

// Package diag implements the diagnostics sink shared by every compiler
// phase. Grounded on the teacher's accumulate-then-return convention (see
// pkg/corset's ParseSourceFiles, kept as reference under _examples): no
// phase panics on a user-facing error, every phase gathers as many
// diagnostics as it can and returns them alongside its (possibly partial)
// result.
package diag

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/source"
)

// Severity classifies how serious a diagnostic is.
type Severity uint8

// Severities, most serious first.
const (
	Error Severity = iota
	Warning
	Info
	Hint
)

// String renders a severity as a lowercase label.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Related is a secondary location attached to a diagnostic, e.g. pointing at
// an earlier declaration in a "duplicate declaration" error.
type Related struct {
	Span    source.Span
	Message string
}

// Fix is a single suggested edit a tool could apply automatically.
type Fix struct {
	Description string
	Edits       []Edit
}

// Edit replaces the text covered by Span with NewText.
type Edit struct {
	Span    source.Span
	NewText string
}

// Diagnostic is a single structured error, warning, info or hint record.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Primary  source.Span
	Related  []Related
	Fixes    []Fix
}

// String renders a diagnostic in "code: message (span)" form, for CLI and
// test output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", d.Code, d.Severity, d.Message, d.Primary)
}

// New constructs a bare diagnostic with no related locations or fixes.
func New(code Code, severity Severity, message string, primary source.Span) Diagnostic {
	return Diagnostic{Code: code, Severity: severity, Message: message, Primary: primary}
}

// WithRelated returns a copy of d with an additional related location.
func (d Diagnostic) WithRelated(span source.Span, message string) Diagnostic {
	d.Related = append(d.Related, Related{span, message})
	return d
}

// WithFix returns a copy of d with an additional suggested fix.
func (d Diagnostic) WithFix(description string, edits ...Edit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{description, edits})
	return d
}

// Sink accumulates diagnostics across a single compilation phase. The zero
// value is ready to use.
type Sink struct {
	diagnostics []Diagnostic
}

// Add appends a diagnostic to the sink.
func (s *Sink) Add(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Errorf is a convenience wrapper constructing and adding an error-severity
// diagnostic.
func (s *Sink) Errorf(code Code, span source.Span, format string, args ...any) {
	s.Add(New(code, Error, fmt.Sprintf(format, args...), span))
}

// Warnf is a convenience wrapper constructing and adding a warning-severity
// diagnostic.
func (s *Sink) Warnf(code Code, span source.Span, format string, args ...any) {
	s.Add(New(code, Warning, fmt.Sprintf(format, args...), span))
}

// Hintf is a convenience wrapper constructing and adding a hint-severity
// diagnostic.
func (s *Sink) Hintf(code Code, span source.Span, format string, args ...any) {
	s.Add(New(code, Hint, fmt.Sprintf(format, args...), span))
}

// All returns every diagnostic added so far, in insertion (source) order.
func (s *Sink) All() []Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	//
	return false
}

// Merge appends another sink's diagnostics onto this one, preserving order.
// Used to concatenate per-file diagnostics in dependency-topological order
// across a multi-module compilation (spec §5).
func (s *Sink) Merge(other *Sink) {
	s.diagnostics = append(s.diagnostics, other.diagnostics...)
}

// Package diag defines the diagnostics the engine reports to its host.
// Diagnostics are collected values, never panics or control-flow errors:
// the host type-checker decides whether to abort the enclosing declaration
// or continue with degraded types.
package diag

import (
	"fmt"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/source"
)

// Diagnostic is one entry in the stream handed back to the host.
// Expected and Actual carry the classifier sets involved in set-shaped
// failures, in ascending ID order; both are nil for kinds where sets make
// no sense.
type Diagnostic struct {
	Kind     Kind
	Span     source.Span
	Expected []classifier.ID
	Actual   []classifier.ID
	Message  string
}

func (d Diagnostic) String() string {
	if d.Span.Known() {
		return fmt.Sprintf("%s: %s: %s", d.Span, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// New builds a diagnostic with no classifier sets attached.
func New(kind Kind, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// Sets attaches the expected and actual classifier sets.
func (d *Diagnostic) Sets(expected, actual *classifier.Set) *Diagnostic {
	d.Expected = classifier.SortedIDs(expected)
	d.Actual = classifier.SortedIDs(actual)
	return d
}

// Stream collects diagnostics for one inference session. Sessions are
// sequential, so Stream needs no locking; it must not be shared across
// sessions.
type Stream struct {
	entries []Diagnostic
}

func (s *Stream) Report(d *Diagnostic) {
	s.entries = append(s.entries, *d)
}

// Fatal reports whether any collected diagnostic ends the session.
func (s *Stream) Fatal() bool {
	for _, d := range s.entries {
		if d.Kind.Fatal() {
			return true
		}
	}
	return false
}

func (s *Stream) Len() int { return len(s.entries) }

func (s *Stream) Empty() bool { return len(s.entries) == 0 }

// All returns the collected diagnostics in report order. The result is a
// fresh copy.
func (s *Stream) All() []Diagnostic {
	out := make([]Diagnostic, len(s.entries))
	copy(out, s.entries)
	return out
}

// First returns the earliest reported diagnostic.
func (s *Stream) First() (Diagnostic, bool) {
	if len(s.entries) == 0 {
		return Diagnostic{}, false
	}
	return s.entries[0], true
}

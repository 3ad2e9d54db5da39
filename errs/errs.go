// Package errs implements the diagnostic sink described by the error
// taxonomy of the grammar analyzer: a context handle threaded through the
// pipeline rather than a package-level singleton, so tests can substitute
// their own recording sink.
package errs

import (
	"fmt"
)

// Kind identifies one of the seven error kinds of the error taxonomy.
type Kind int

const (
	// KindUndeclaredSymbol is raised when a production's RHS references a
	// symbol that was never registered with the symbol registry.
	KindUndeclaredSymbol Kind = iota
	// KindMultiplePrecedenceSources is raised when a production without an
	// explicit %prec terminal has two or more RHS terminals that carry
	// precedence. An explicit %prec terminal always wins and is not
	// reported.
	KindMultiplePrecedenceSources
	// KindReduceReduceConflict is raised when two productions could both
	// reduce on the same lookahead terminal in the same state.
	KindReduceReduceConflict
	// KindShiftReduceConflict is raised when a shift/reduce conflict could
	// not be resolved by precedence and was resolved by the shift-wins
	// default instead.
	KindShiftReduceConflict
	// KindUnreducedProduction is raised after table construction for a
	// production whose action index never appears in a reduce cell.
	KindUnreducedProduction
	// KindConflictExpectationMismatch is raised at the end of the
	// pipeline when the observed conflict count does not match the
	// declared expectation.
	KindConflictExpectationMismatch
	// KindInternalInvariant is raised when the pipeline detects that one
	// of its own invariants has been violated.
	KindInternalInvariant
)

func (k Kind) String() string {
	switch k {
	case KindUndeclaredSymbol:
		return "undeclared symbol"
	case KindMultiplePrecedenceSources:
		return "multiple precedence sources"
	case KindReduceReduceConflict:
		return "reduce/reduce conflict"
	case KindShiftReduceConflict:
		return "shift/reduce conflict"
	case KindUnreducedProduction:
		return "unreduced production"
	case KindConflictExpectationMismatch:
		return "conflict expectation mismatch"
	case KindInternalInvariant:
		return "internal invariant violation"
	default:
		return "unknown error"
	}
}

// Fatal reports whether diagnostics of this kind abort the pipeline
// immediately instead of accumulating (spec.md §7, kinds 6 and 7).
func (k Kind) Fatal() bool {
	return k == KindConflictExpectationMismatch || k == KindInternalInvariant
}

// Diagnostic is a single recorded error or warning.
type Diagnostic struct {
	Kind   Kind
	Detail string
}

func (d *Diagnostic) Error() string {
	if d.Detail == "" {
		return d.Kind.String()
	}
	return fmt.Sprintf("%v: %v", d.Kind, d.Detail)
}

// FatalError wraps a fatal Diagnostic so callers can use errors.As/errors.Is.
type FatalError struct {
	*Diagnostic
}

func (e *FatalError) Unwrap() error {
	return e.Diagnostic
}

// Manager accumulates non-fatal diagnostics and counts conflicts. A
// Manager is owned by a single pipeline run; it is not safe to share
// across concurrent runs (spec.md §5: the ErrorManager's lifecycle is
// bounded by one run, and is not expected to be concurrently accessed).
type Manager struct {
	diagnostics []*Diagnostic

	ReduceReduceConflicts int
	ShiftReduceConflicts  int
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{}
}

// Report records a diagnostic. It returns a non-nil error only when kind
// is fatal, in which case the caller must unwind immediately (spec.md §7).
func (m *Manager) Report(kind Kind, detail string) error {
	d := &Diagnostic{Kind: kind, Detail: detail}

	switch kind {
	case KindReduceReduceConflict:
		m.ReduceReduceConflicts++
	case KindShiftReduceConflict:
		m.ShiftReduceConflicts++
	}

	if kind.Fatal() {
		return &FatalError{Diagnostic: d}
	}

	m.diagnostics = append(m.diagnostics, d)
	return nil
}

// Diagnostics returns every non-fatal diagnostic recorded so far, in
// report order.
func (m *Manager) Diagnostics() []*Diagnostic {
	return m.diagnostics
}

// ConflictCount returns the total number of reported reduce/reduce and
// unresolved shift/reduce conflicts (spec.md §4.5 "Conflict accounting").
func (m *Manager) ConflictCount() int {
	return m.ReduceReduceConflicts + m.ShiftReduceConflicts
}

// CountOf returns how many non-fatal diagnostics of the given kind have
// been recorded.
func (m *Manager) CountOf(kind Kind) int {
	n := 0
	for _, d := range m.diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

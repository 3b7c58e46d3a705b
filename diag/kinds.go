// kinds.go: the closed taxonomy of engine diagnostics.
//
// Intent:
//   - One Kind per failure class the engine can produce, nothing host-specific.
//   - Construction-time kinds poison only the type being built; solver-time
//     kinds are terminal for their inference session.
//
// Conventions:
//   - Kinds are lowercase snake_case ASCII.
//   - The empty string is never a valid Kind.
package diag

// Kind identifies one failure class.
type Kind string

// Construction-time (well-formedness of a single union).
const (
	MultipleValueComponents Kind = "multiple_value_components"
	MisplacedValueComponent Kind = "misplaced_value_component"
	DuplicateClassifier     Kind = "duplicate_classifier"
	NonDisjointVariables    Kind = "non_disjoint_variables"
)

// Solver-time.
const (
	UnsatisfiableConstraint Kind = "unsatisfiable_constraint"
)

// Generics mode.
const (
	AmbiguousGenericInstantiation Kind = "ambiguous_generic_instantiation"
)

// Internal consistency.
const (
	UnknownClassifier Kind = "unknown_classifier"
)

// allKinds is the ordered set of kinds the engine ships with. Unexported to
// avoid exposing mutable slice identity to callers. Order is stable.
var allKinds = []Kind{
	// Construction-time (4)
	MultipleValueComponents,
	MisplacedValueComponent,
	DuplicateClassifier,
	NonDisjointVariables,

	// Solver-time (1)
	UnsatisfiableConstraint,

	// Generics mode (1)
	AmbiguousGenericInstantiation,

	// Internal consistency (1)
	UnknownClassifier,
}

// kindSet provides O(1) membership checks.
var kindSet = map[Kind]struct{}{
	MultipleValueComponents:       {},
	MisplacedValueComponent:       {},
	DuplicateClassifier:           {},
	NonDisjointVariables:          {},
	UnsatisfiableConstraint:       {},
	AmbiguousGenericInstantiation: {},
	UnknownClassifier:             {},
}

// Kinds returns the ordered taxonomy. The result is a fresh copy.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Known reports whether k is one of the engine's kinds.
func (k Kind) Known() bool {
	_, ok := kindSet[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// Fatal reports whether k terminates its inference session rather than just
// the type under construction.
func (k Kind) Fatal() bool {
	switch k {
	case UnsatisfiableConstraint, AmbiguousGenericInstantiation, UnknownClassifier:
		return true
	}
	return false
}

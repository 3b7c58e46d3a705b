// Package classifier implements the process-wide registry of error
// classifiers. A classifier is the interned identity of one named error,
// keyed by its declaring-scope path and local name. Identities are dense
// integer handles; equality is integer comparison, never string comparison,
// once a classifier has been interned. The registry is append-only and safe
// for concurrent use from independent inference sessions.
package classifier

import (
	"fmt"

	"github.com/skerry-lang/skerry/source"
)

// ID is the stable handle of an interned classifier. The zero ID is never
// issued.
type ID uint32

// None is the invalid classifier handle.
const None ID = 0

func (id ID) IsValid() bool { return id != None }

// Variance of a classifier's payload type parameter.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "invariant"
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	}
	return fmt.Sprintf("Variance(%d)", uint8(v))
}

// Decl records everything the registry knows about one classifier.
type Decl struct {
	ID    ID
	Scope string // declaring-scope path, "" for the root scope
	Name  string // local name within the scope
	Arity int    // payload type parameters, 0 or 1
	Vary  Variance
	Span  source.Span
}

// QualifiedName is the scope-qualified rendering used in diagnostics.
func (d Decl) QualifiedName() string {
	if d.Scope == "" {
		return d.Name
	}
	return d.Scope + "." + d.Name
}

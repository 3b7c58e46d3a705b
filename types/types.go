// Package types implements the error-union type model: a lattice that keeps
// ordinary value types and error classifiers in two parallel kinds, union
// types restricted to at most one value component plus a disjoint error
// part, and the projection and subtyping rules defined over them.
//
// All model objects are immutable after construction except *ErrVar, whose
// lower bound grows under the constraint solver until its session freezes it.
package types

import "fmt"

type Type interface {
	Equal(Type) bool
	Hash() uint64
	String() string
	aType()
}

var (
	_ Type = AnyType{}
	_ Type = TopValue{}
	_ Type = TopError{}
	_ Type = NothingType{}
	_ Type = Opaque{}
	_ Type = Invalid{}
	_ Type = Param{}
	_ Type = ValueProj{}
	_ Type = ErrConst{}
	_ Type = (*ErrVar)(nil)
	_ Type = (*Union)(nil)
)

// FNV-1a mixing for structural hashes.
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

func hashMix(h, x uint64) uint64 {
	return (h ^ x) * fnvPrime
}

// AnyType is the top of the whole lattice, above both kinds.
type AnyType struct{}

func (AnyType) aType()            {}
func (AnyType) Equal(o Type) bool { _, ok := o.(AnyType); return ok }
func (AnyType) Hash() uint64 { return hashMix(fnvOffset, 0x11) }
func (AnyType) String() string { return "Any" }

// TopValue is the top of the value kind.
type TopValue struct{}

func (TopValue) aType()            {}
func (TopValue) Equal(o Type) bool { _, ok := o.(TopValue); return ok }
func (TopValue) Hash() uint64 { return hashMix(fnvOffset, 0x12) }
func (TopValue) String() string { return "Value" }

// TopError is the top of the error kind: the supertype of every classifier.
type TopError struct{}

func (TopError) aType()            {}
func (TopError) Equal(o Type) bool { _, ok := o.(TopError); return ok }
func (TopError) Hash() uint64 { return hashMix(fnvOffset, 0x13) }
func (TopError) String() string { return "Error" }

// NothingType is the bottom of the lattice.
type NothingType struct{}

func (NothingType) aType()            {}
func (NothingType) Equal(o Type) bool { _, ok := o.(NothingType); return ok }
func (NothingType) Hash() uint64 { return hashMix(fnvOffset, 0x14) }
func (NothingType) String() string { return "Nothing" }

var (
	Any     = AnyType{}
	Value   = TopValue{}
	Error   = TopError{}
	Nothing = NothingType{}
)

// Opaque is a host value type. The engine sees only its identity; anything
// finer-grained goes through the host's ValueOracle.
type Opaque struct {
	Name string
}

func (Opaque) aType() {}
func (t Opaque) Equal(o Type) bool {
	u, ok := o.(Opaque)
	return ok && t.Name == u.Name
}
func (t Opaque) Hash() uint64 {
	h := hashMix(fnvOffset, 0x21)
	for _, b := range []byte(t.Name) {
		h = hashMix(h, uint64(b))
	}
	return h
}
func (t Opaque) String() string { return t.Name }

// Invalid marks a type that failed construction or solving. It compares
// assignable in both directions so one failure does not cascade into
// follow-on diagnostics.
type Invalid struct {
	Msg string
}

func (Invalid) aType() {}
func (t Invalid) Equal(o Type) bool {
	_, ok := o.(Invalid)
	return ok
}
func (Invalid) Hash() uint64 { return hashMix(fnvOffset, 0x22) }
func (Invalid) String() string { return "<invalid>" }

// VarID numbers the variables of one inference session.
type VarID uint32

// Param is an un-split host type parameter, ranging over both kinds. It may
// not appear in a union directly; Split it into its projections first.
type Param struct {
	ID   VarID
	Name string
}

func (Param) aType() {}
func (t Param) Equal(o Type) bool {
	u, ok := o.(Param)
	return ok && t.ID == u.ID
}
func (t Param) Hash() uint64 {
	return hashMix(hashMix(fnvOffset, 0x23), uint64(t.ID))
}
func (t Param) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("'%d", uint32(t.ID))
}

// ValueProj is the value projection of a Param: the part of the parameter
// that is ordinary data.
type ValueProj struct {
	Param Param
}

func (ValueProj) aType() {}
func (t ValueProj) Equal(o Type) bool {
	u, ok := o.(ValueProj)
	return ok && t.Param.Equal(u.Param)
}
func (t ValueProj) Hash() uint64 {
	return hashMix(hashMix(fnvOffset, 0x24), t.Param.Hash())
}
func (t ValueProj) String() string {
	return t.Param.String() + "|v"
}

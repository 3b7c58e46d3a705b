package types

import (
	"fmt"

	"golang.org/x/exp/maps"

	"github.com/skerry-lang/skerry/classifier"
)

// ErrConst is a declared error constant: a classifier, plus its payload
// instantiation when the classifier is generic.
type ErrConst struct {
	Class classifier.ID
	Inst  Type // nil when the classifier has no payload
}

func (ErrConst) aType() {}

func (t ErrConst) Equal(o Type) bool {
	u, ok := o.(ErrConst)
	if !ok || t.Class != u.Class {
		return false
	}
	switch {
	case t.Inst == nil && u.Inst == nil:
		return true
	case t.Inst == nil || u.Inst == nil:
		return false
	}
	return t.Inst.Equal(u.Inst)
}

func (t ErrConst) Hash() uint64 {
	h := hashMix(hashMix(fnvOffset, 0x31), uint64(t.Class))
	if t.Inst != nil {
		h = hashMix(h, t.Inst.Hash())
	}
	return h
}

func (t ErrConst) String() string {
	if t.Inst != nil {
		return fmt.Sprintf("#%d<%s>", uint32(t.Class), t.Inst)
	}
	return fmt.Sprintf("#%d", uint32(t.Class))
}

// ErrVar is an error-kind type variable bounded by a declared universe.
// A flexible variable accumulates a lower-bound classifier set (in generics
// mode, a classifier-to-instantiation map) while its session's solver runs;
// the session freezes it afterwards and it stays immutable. A rigid variable
// stands for an abstract but fixed set and never grows.
//
// Identity is pointer identity. The numeric ID orders variables within one
// session for canonical forms and diagnostics.
type ErrVar struct {
	id    VarID
	name  string
	rigid bool
	bound classifier.Universe

	lower  *classifier.Set
	insts  map[classifier.ID]Type
	frozen bool
}

// NewErrVar creates a flexible variable.
func NewErrVar(id VarID, name string, bound classifier.Universe) *ErrVar {
	return &ErrVar{id: id, name: name, bound: bound, lower: classifier.NewSet()}
}

// NewRigidVar creates a rigid variable: a declared, abstract error
// parameter whose set is unknown but fixed for the whole session.
func NewRigidVar(id VarID, name string, bound classifier.Universe) *ErrVar {
	v := NewErrVar(id, name, bound)
	v.rigid = true
	return v
}

func (v *ErrVar) ID() VarID { return v.id }
func (v *ErrVar) Rigid() bool { return v.rigid }
func (v *ErrVar) Bound() classifier.Universe { return v.bound }
func (v *ErrVar) Frozen() bool { return v.frozen }
func (v *ErrVar) Has(c classifier.ID) bool { return v.lower.Contains(c) }
func (v *ErrVar) LowerIDs() []classifier.ID { return classifier.SortedIDs(v.lower) }
func (v *ErrVar) LowerSet() *classifier.Set { return classifier.Clone(v.lower) }

// Inst reports the recorded payload instantiation for c.
func (v *ErrVar) Inst(c classifier.ID) (Type, bool) {
	t, ok := v.insts[c]
	return t, ok
}

// Insts returns a copy of the instantiation map.
func (v *ErrVar) Insts() map[classifier.ID]Type {
	return maps.Clone(v.insts)
}

// Grow adds classifiers to the lower bound and returns the ones that were
// actually new. Only the constraint solver calls Grow; growing a frozen
// variable is a bug in the caller.
func (v *ErrVar) Grow(ids ...classifier.ID) []classifier.ID {
	if v.frozen {
		panic(fmt.Sprintf("types: Grow on frozen variable %s", v))
	}
	var added []classifier.ID
	for _, id := range ids {
		if v.lower.Insert(id) {
			added = append(added, id)
		}
	}
	return added
}

// SetInst records the payload instantiation for c. The solver resolves
// conflicting contributions through its fixing policy before calling this.
func (v *ErrVar) SetInst(c classifier.ID, t Type) {
	if v.frozen {
		panic(fmt.Sprintf("types: SetInst on frozen variable %s", v))
	}
	if v.insts == nil {
		v.insts = make(map[classifier.ID]Type)
	}
	v.insts[c] = t
}

// Freeze makes the variable immutable. Idempotent.
func (v *ErrVar) Freeze() { v.frozen = true }

func (*ErrVar) aType() {}

func (v *ErrVar) Equal(o Type) bool {
	u, ok := o.(*ErrVar)
	return ok && v == u
}

func (v *ErrVar) Hash() uint64 {
	return hashMix(hashMix(fnvOffset, 0x32), uint64(v.id))
}

func (v *ErrVar) String() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("'e%d", uint32(v.id))
}

package types

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Union is a value part paired with an error part. Parts keep the order the
// host wrote them; Check judges the written form and Canonical produces the
// normal form used for structural equality and rendering of results.
type Union struct {
	Parts []Type
}

// NewUnion builds a union from constituents as written. Nested unions
// flatten in place and Nothing constituents drop out; everything else is
// preserved for the well-formedness checker to judge.
func NewUnion(parts ...Type) *Union {
	u := &Union{Parts: make([]Type, 0, len(parts))}
	for _, p := range parts {
		switch q := p.(type) {
		case *Union:
			u.Parts = append(u.Parts, q.Parts...)
		case NothingType:
		default:
			u.Parts = append(u.Parts, p)
		}
	}
	return u
}

// Value returns the value component, or nil when the union has none.
func (u *Union) Value() Type {
	for _, p := range u.Parts {
		if IsValuePart(p) {
			return p
		}
	}
	return nil
}

// ErrParts returns the error components in written order.
func (u *Union) ErrParts() []Type {
	var out []Type
	for _, p := range u.Parts {
		if IsErrorPart(p) {
			out = append(out, p)
		}
	}
	return out
}

func cmpU32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsValuePart reports whether t can stand in a union's value slot.
func IsValuePart(t Type) bool {
	switch t.(type) {
	case Opaque, ValueProj, TopValue, Invalid:
		return true
	}
	return false
}

// IsErrorPart reports whether t can stand in a union's error part.
func IsErrorPart(t Type) bool {
	switch t.(type) {
	case ErrConst, *ErrVar:
		return true
	}
	return false
}

// Canonical returns the normal form: value part first, error constants in
// ascending classifier order, then variables in ascending variable order.
// Constituents that belong to neither kind are dropped; Check will already
// have rejected the written form that contained them.
func (u *Union) Canonical() *Union {
	out := &Union{}
	if v := u.Value(); v != nil {
		out.Parts = append(out.Parts, v)
	}
	var consts []ErrConst
	var vars []*ErrVar
	for _, p := range u.Parts {
		switch q := p.(type) {
		case ErrConst:
			consts = append(consts, q)
		case *ErrVar:
			vars = append(vars, q)
		}
	}
	slices.SortStableFunc(consts, func(a, b ErrConst) int {
		return cmpU32(uint32(a.Class), uint32(b.Class))
	})
	slices.SortStableFunc(vars, func(a, b *ErrVar) int {
		return cmpU32(uint32(a.id), uint32(b.id))
	})
	for _, c := range consts {
		out.Parts = append(out.Parts, c)
	}
	for _, v := range vars {
		out.Parts = append(out.Parts, v)
	}
	return out
}

func (*Union) aType() {}

// Equal compares canonical forms.
func (u *Union) Equal(o Type) bool {
	w, ok := o.(*Union)
	if !ok {
		return false
	}
	a, b := u.Canonical().Parts, w.Canonical().Parts
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (u *Union) Hash() uint64 {
	h := hashMix(fnvOffset, 0x41)
	for _, p := range u.Canonical().Parts {
		h = hashMix(h, p.Hash())
	}
	return h
}

func (u *Union) String() string {
	if len(u.Parts) == 0 {
		return "Nothing"
	}
	parts := make([]string, len(u.Parts))
	for i, p := range u.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, " | ")
}

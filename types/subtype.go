package types

import "github.com/skerry-lang/skerry/classifier"

// Verdict is the answer of a subtype query. Pending means the comparison
// touched an unresolved variable; the caller records constraints and asks
// again after solving.
type Verdict int8

const (
	No Verdict = iota
	Yes
	Pending
)

func (v Verdict) String() string {
	switch v {
	case No:
		return "no"
	case Yes:
		return "yes"
	case Pending:
		return "pending"
	}
	return "verdict?"
}

// ValueOracle supplies value-type subtyping from the host type system. The
// engine consults it for value-kind pairs it cannot decide from the lattice
// alone. Implementations must be pure.
type ValueOracle interface {
	Assignable(sup, sub Type) bool
}

type nominalValues struct{}

func (nominalValues) Assignable(sup, sub Type) bool {
	return sup.Equal(sub)
}

// NominalValues is the default oracle: value types are assignable only to
// themselves.
func NominalValues() ValueOracle {
	return nominalValues{}
}

// Subtype decides sup :> sub. With reg the engine resolves payload variance
// for generic classifiers; reg may be nil when no classifier carries a
// payload. A nil oracle falls back to NominalValues.
func Subtype(reg *classifier.Registry, oracle ValueOracle, sup, sub Type) Verdict {
	if oracle == nil {
		oracle = NominalValues()
	}
	return subtype(reg, oracle, sup, sub)
}

func subtype(reg *classifier.Registry, oracle ValueOracle, sup, sub Type) Verdict {
	if _, ok := sup.(Invalid); ok {
		return Yes
	}
	if _, ok := sub.(Invalid); ok {
		return Yes
	}
	if _, ok := sub.(NothingType); ok {
		return Yes
	}
	if _, ok := sup.(AnyType); ok {
		return Yes
	}

	if su, ok := sup.(*Union); ok {
		return subtypeUnion(reg, oracle, su, sub)
	}
	if sb, ok := sub.(*Union); ok {
		// Non-union supertype distributes over the subtype's constituents.
		verdict := Yes
		for _, p := range sb.Parts {
			switch subtype(reg, oracle, sup, p) {
			case No:
				return No
			case Pending:
				verdict = Pending
			}
		}
		return verdict
	}
	return subtypeAtom(reg, oracle, sup, sub)
}

func subtypeAtom(reg *classifier.Registry, oracle ValueOracle, sup, sub Type) Verdict {
	switch s := sup.(type) {
	case TopValue:
		if IsValuePart(sub) {
			return Yes
		}
		return No
	case TopError:
		if IsErrorPart(sub) {
			return Yes
		}
		if _, ok := sub.(TopError); ok {
			return Yes
		}
		return No
	case Opaque, ValueProj:
		if sup.Equal(sub) {
			return Yes
		}
		if IsValuePart(sub) && oracle.Assignable(sup, sub) {
			return Yes
		}
		return No
	case Param:
		if s.Equal(sub) {
			return Yes
		}
		return No
	case ErrConst:
		return constAbove(reg, oracle, s, sub)
	case *ErrVar:
		return varAbove(reg, oracle, s, sub)
	}
	return No
}

// constAbove decides sup :> sub for a constant supertype.
func constAbove(reg *classifier.Registry, oracle ValueOracle, sup ErrConst, sub Type) Verdict {
	switch q := sub.(type) {
	case ErrConst:
		if sup.Class != q.Class {
			return No
		}
		return subsumeInst(reg, oracle, sup.Class, sup.Inst, q.Inst)
	case *ErrVar:
		switch {
		case q.Rigid():
			// An abstract set fits under one classifier only when its
			// declared universe already does.
			u := q.Bound()
			if !u.All && classifier.ContainsAll(classifier.NewSet(sup.Class), u.Members) {
				return Yes
			}
			return No
		case q.Frozen():
			if classifier.ContainsAll(classifier.NewSet(sup.Class), varSet(q)) {
				return subsumeVarInsts(reg, oracle, map[classifier.ID]Type{sup.Class: sup.Inst}, q)
			}
			return No
		default:
			return Pending
		}
	}
	return No
}

// varAbove decides sup :> sub for a variable supertype.
func varAbove(reg *classifier.Registry, oracle ValueOracle, sup *ErrVar, sub Type) Verdict {
	if v, ok := sub.(*ErrVar); ok && v == sup {
		return Yes
	}
	if sup.Rigid() {
		// The abstract set guarantees nothing beyond itself.
		return No
	}
	if !sup.Frozen() {
		if IsErrorPart(sub) {
			return Pending
		}
		return No
	}
	switch q := sub.(type) {
	case ErrConst:
		if !sup.Has(q.Class) {
			return No
		}
		want, _ := sup.Inst(q.Class)
		return subsumeInst(reg, oracle, q.Class, want, q.Inst)
	case *ErrVar:
		switch {
		case q.Rigid():
			u := q.Bound()
			if !u.All && classifier.ContainsAll(varSet(sup), u.Members) {
				return Yes
			}
			return No
		case q.Frozen():
			if !classifier.ContainsAll(varSet(sup), varSet(q)) {
				return No
			}
			return subsumeVarInsts(reg, oracle, sup.Insts(), q)
		default:
			return Pending
		}
	}
	return No
}

func varSet(v *ErrVar) *classifier.Set {
	return classifier.NewSet(v.LowerIDs()...)
}

// subtypeUnion applies the union rule: value projections compare under
// value subtyping, and the supertype's classifier-set interpretation must
// contain the subtype's.
func subtypeUnion(reg *classifier.Registry, oracle ValueOracle, sup *Union, sub Type) Verdict {
	supV, subV := ValuePart(sup), ValuePart(sub)
	if _, none := subV.(NothingType); !none {
		if subtype(reg, oracle, supV, subV) != Yes {
			return No
		}
	}

	supI, subI := InterpErrors(sup), InterpErrors(sub)
	DropShared(&supI, &subI)

	if subI.All {
		return No // a finite union never covers the whole error kind
	}
	if supI.Unresolved() || subI.Unresolved() {
		return Pending
	}
	for _, rv := range subI.Rigid {
		u := rv.Bound()
		if u.All || !classifier.ContainsAll(supI.Set, u.Members) {
			return No
		}
	}
	if !classifier.ContainsAll(supI.Set, subI.Set) {
		return No
	}
	for _, c := range classifier.SortedIDs(subI.Set) {
		subInst, ok := subI.Insts[c]
		if !ok {
			continue
		}
		if subsumeInst(reg, oracle, c, supI.Insts[c], subInst) != Yes {
			return No
		}
	}
	return Yes
}

// DropShared removes variables that appear on both sides of a
// requirement; their contribution is covered by identity.
func DropShared(sup, sub *Interp) {
	shared := func(vs []*ErrVar, in []*ErrVar) []*ErrVar {
		var out []*ErrVar
		for _, v := range vs {
			found := false
			for _, w := range in {
				if v == w {
					found = true
					break
				}
			}
			if !found {
				out = append(out, v)
			}
		}
		return out
	}
	supFlex, subFlex := sup.Flex, sub.Flex
	sup.Flex, sub.Flex = shared(supFlex, subFlex), shared(subFlex, supFlex)
	supRigid, subRigid := sup.Rigid, sub.Rigid
	sup.Rigid, sub.Rigid = shared(supRigid, subRigid), shared(subRigid, supRigid)
}

// subsumeInst compares payload instantiations under the declared variance
// of the classifier's parameter.
func subsumeInst(reg *classifier.Registry, oracle ValueOracle, c classifier.ID, supInst, subInst Type) Verdict {
	if supInst == nil && subInst == nil {
		return Yes
	}
	if supInst == nil || subInst == nil {
		return No
	}
	vary := classifier.Invariant
	if reg != nil {
		if d, ok := reg.Decl(c); ok {
			vary = d.Vary
		}
	}
	switch vary {
	case classifier.Covariant:
		return subtype(reg, oracle, supInst, subInst)
	case classifier.Contravariant:
		return subtype(reg, oracle, subInst, supInst)
	default:
		if supInst.Equal(subInst) {
			return Yes
		}
		return No
	}
}

func subsumeVarInsts(reg *classifier.Registry, oracle ValueOracle, supInsts map[classifier.ID]Type, sub *ErrVar) Verdict {
	for _, c := range sub.LowerIDs() {
		subInst, ok := sub.Inst(c)
		if !ok {
			continue
		}
		if subsumeInst(reg, oracle, c, supInsts[c], subInst) != Yes {
			return No
		}
	}
	return Yes
}

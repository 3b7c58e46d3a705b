package types

import "github.com/skerry-lang/skerry/classifier"

// Exclude removes the classifiers in drop from the error part of t. This is
// the narrowing primitive behind smart casts: after a branch has handled
// the classifiers in drop, the remaining type is Exclude(t, drop).
//
// Pure. Resolved (frozen, flexible) variables expand into the constants
// that survive the exclusion; unresolved and rigid variables pass through
// untouched, since their member sets are not known here.
func Exclude(t Type, drop *classifier.Set) Type {
	if drop == nil || drop.Size() == 0 {
		return t
	}
	switch q := t.(type) {
	case ErrConst:
		if drop.Contains(q.Class) {
			return Nothing
		}
		return t
	case *ErrVar:
		if q.Rigid() || !q.Frozen() {
			return t
		}
		parts := expandSurvivors(q, drop)
		switch len(parts) {
		case 0:
			return Nothing
		case 1:
			return parts[0]
		}
		return NewUnion(parts...)
	case *Union:
		var parts []Type
		for _, p := range q.Parts {
			narrowed := Exclude(p, drop)
			if _, gone := narrowed.(NothingType); gone {
				continue
			}
			parts = append(parts, narrowed)
		}
		switch len(parts) {
		case 0:
			return Nothing
		case 1:
			return parts[0]
		}
		return NewUnion(parts...)
	}
	return t
}

// ExcludeConst narrows t by a single handled classifier.
func ExcludeConst(t Type, c classifier.ID) Type {
	return Exclude(t, classifier.NewSet(c))
}

func expandSurvivors(v *ErrVar, drop *classifier.Set) []Type {
	var parts []Type
	for _, id := range v.LowerIDs() {
		if drop.Contains(id) {
			continue
		}
		c := ErrConst{Class: id}
		if inst, ok := v.Inst(id); ok {
			c.Inst = inst
		}
		parts = append(parts, c)
	}
	return parts
}

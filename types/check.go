package types

import (
	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/diag"
	"github.com/skerry-lang/skerry/source"
)

// Check validates the written form of a union against the grammar
// invariants: at most one value component in the leftmost slot, no
// duplicate constant classifiers, pairwise-disjoint variable universes.
// Pure and total; it never consults solver state. A nil result means the
// union is well-formed.
//
// The rules apply in order, and the first violation wins, so repeated calls
// on the same union report the same diagnostic.
func Check(reg *classifier.Registry, u *Union, at source.Span) *diag.Diagnostic {
	// Rule 1: value-part arity, then position.
	values := 0
	valueAt := -1
	for i, p := range u.Parts {
		if IsErrorPart(p) {
			continue
		}
		if !IsValuePart(p) {
			return diag.New(diag.MisplacedValueComponent, at,
				"%s cannot be a union constituent; only one value type and declared error constituents may appear", p)
		}
		values++
		valueAt = i
	}
	if values > 1 {
		return diag.New(diag.MultipleValueComponents, at,
			"union %s has %d value components", u, values)
	}
	if values == 1 && valueAt != 0 {
		return diag.New(diag.MisplacedValueComponent, at,
			"value component %s must be the leftmost constituent of %s", u.Parts[valueAt], u)
	}

	// Rule 2: constant classifiers are pairwise distinct.
	seen := classifier.NewSet()
	for _, p := range u.Parts {
		c, ok := p.(ErrConst)
		if !ok {
			continue
		}
		if !seen.Insert(c.Class) {
			return diag.New(diag.DuplicateClassifier, at,
				"duplicate classifier %s in %s", nameOf(reg, c.Class), u).
				Sets(nil, classifier.NewSet(c.Class))
		}
	}

	// Rule 3: variable universes are pairwise disjoint. Two unbounded
	// variables always overlap, so at most one may appear.
	var vars []*ErrVar
	for _, p := range u.Parts {
		if v, ok := p.(*ErrVar); ok {
			vars = append(vars, v)
		}
	}
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			if !vars[i].Bound().Disjoint(vars[j].Bound()) {
				return diag.New(diag.NonDisjointVariables, at,
					"variables %s and %s have overlapping universes (%s, %s) in %s",
					vars[i], vars[j], vars[i].Bound(), vars[j].Bound(), u)
			}
		}
	}
	return nil
}

func nameOf(reg *classifier.Registry, c classifier.ID) string {
	if reg == nil {
		return ErrConst{Class: c}.String()
	}
	return reg.Name(c)
}

// Package constraint turns pending subtype judgements into set
// constraints over error variables and solves them to a least fixed
// point. The generator records facts, the solver grows variables until
// every additive constraint holds, and capping obligations are checked
// once growth has stopped.
package constraint

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/source"
	"github.com/skerry-lang/skerry/types"
)

// Kind names the three constraint forms.
type Kind uint8

const (
	// Subset requires every member of A, outside the fixed constants
	// standing beside the target, to appear in C.
	Subset Kind = iota
	// UnionSubset requires A together with the fixed constants beside it
	// to cover Need. Solving registers Need minus those constants as a
	// lower bound on A.
	UnionSubset
	// UpperBound caps A plus the fixed constants on its side at Bound.
	// It never drives growth; the solver validates it after the fixed
	// point is reached.
	UpperBound
)

func (k Kind) String() string {
	switch k {
	case Subset:
		return "Subset"
	case UnionSubset:
		return "UnionSubset"
	case UpperBound:
		return "UpperBound"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Constraint is one immutable fact recorded by the generator. Which
// fields are meaningful depends on Kind; Seq is the generation order,
// the order violations are reported in.
type Constraint struct {
	Kind Kind
	Seq  int
	At   source.Span

	A     *types.ErrVar   // Subset: flows from; UnionSubset: grows; UpperBound: capped side (may be nil)
	C     *types.ErrVar   // Subset: flows into
	Need  *classifier.Set // UnionSubset: classifiers the variable side must cover
	Fixed *classifier.Set // constants standing beside the variable
	Bound *classifier.Set // UpperBound: largest allowed set
	Open  bool            // UpperBound: capped side has no finite extent

	// Insts carries instantiation payloads contributed for members of
	// Need, keyed by classifier.
	Insts map[classifier.ID]types.Type

	// Sup and Sub record the compared types that produced this fact.
	Sup, Sub types.Type
}

// String renders the constraint with bare classifier IDs. Render
// resolves names through a registry instead.
func (c Constraint) String() string {
	return c.text(plainSet)
}

// Render is String with classifier names resolved through reg.
func (c Constraint) Render(reg *classifier.Registry) string {
	if reg == nil {
		return c.String()
	}
	return c.text(reg.FormatSet)
}

func (c Constraint) text(set func(*classifier.Set) string) string {
	varOr := func(v *types.ErrVar, fixed *classifier.Set) string {
		switch {
		case v == nil:
			return set(fixed)
		case fixed == nil || fixed.Size() == 0:
			return v.String()
		}
		return v.String() + " ∪ " + set(fixed)
	}
	switch c.Kind {
	case Subset:
		return fmt.Sprintf("%s ⊆ %s", c.A, varOr(c.C, c.Fixed))
	case UnionSubset:
		return fmt.Sprintf("%s ⊇ %s", varOr(c.A, c.Fixed), set(c.Need))
	case UpperBound:
		if c.Open {
			return fmt.Sprintf("%s ⊆ %s (unbounded side)", varOr(c.A, c.Fixed), set(c.Bound))
		}
		return fmt.Sprintf("%s ⊆ %s", varOr(c.A, c.Fixed), set(c.Bound))
	}
	return c.Kind.String()
}

func plainSet(s *classifier.Set) string {
	ids := lo.Map(classifier.SortedIDs(s), func(id classifier.ID, _ int) string {
		return fmt.Sprintf("#%d", uint32(id))
	})
	return "{" + strings.Join(ids, ", ") + "}"
}

package constraint

import (
	"github.com/rs/zerolog"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/diag"
	"github.com/skerry-lang/skerry/source"
	"github.com/skerry-lang/skerry/types"
)

// Generator accumulates constraints for one session. It is not safe for
// concurrent use; a session generates sequentially.
type Generator struct {
	reg    *classifier.Registry
	diags  *diag.Stream
	oracle types.ValueOracle
	log    zerolog.Logger
	cs     []Constraint
	seq    int

	curSup, curSub types.Type
}

// NewGenerator returns a generator recording into diags. A nil oracle
// falls back to nominal value subtyping.
func NewGenerator(reg *classifier.Registry, diags *diag.Stream, oracle types.ValueOracle, log zerolog.Logger) *Generator {
	if oracle == nil {
		oracle = types.NominalValues()
	}
	return &Generator{reg: reg, diags: diags, oracle: oracle, log: log}
}

// Constraints returns the recorded list in generation order.
func (g *Generator) Constraints() []Constraint { return g.cs }

// Len reports how many constraints have been recorded.
func (g *Generator) Len() int { return len(g.cs) }

func (g *Generator) push(c Constraint) {
	c.Seq = g.seq
	c.Sup, c.Sub = g.curSup, g.curSub
	g.seq++
	g.cs = append(g.cs, c)
	g.log.Debug().
		Int("seq", c.Seq).
		Stringer("kind", c.Kind).
		Str("form", c.String()).
		Msg("constrain")
}

// Subset records set(a) ⊆ set(c) ∪ fixed.
func (g *Generator) Subset(a, c *types.ErrVar, fixed *classifier.Set, at source.Span) {
	g.push(Constraint{Kind: Subset, A: a, C: c, Fixed: fixed, At: at})
}

// UnionSubset records set(a) ∪ fixed ⊇ need; solving grows a by
// need minus fixed. insts carries payloads for members of need.
func (g *Generator) UnionSubset(a *types.ErrVar, fixed, need *classifier.Set, insts map[classifier.ID]types.Type, at source.Span) {
	g.push(Constraint{Kind: UnionSubset, A: a, Fixed: fixed, Need: need, Insts: insts, At: at})
}

// UpperBound records set(a) ∪ fixed ⊆ bound, validated after solving.
// A nil a caps just the fixed side; open marks a side with no finite
// extent, which can never satisfy a finite bound.
func (g *Generator) UpperBound(a *types.ErrVar, fixed, bound *classifier.Set, open bool, at source.Span) {
	g.push(Constraint{Kind: UpperBound, A: a, Fixed: fixed, Bound: bound, Open: open, At: at})
}

// Require decomposes the pending judgement sup :> sub into constraints.
// The caller has already obtained a Pending verdict from the subtype
// check; Require records facts and never mutates variables.
func (g *Generator) Require(sup, sub types.Type, at source.Span) {
	prevSup, prevSub := g.curSup, g.curSub
	g.curSup, g.curSub = sup, sub
	defer func() { g.curSup, g.curSub = prevSup, prevSub }()

	supI, subI := types.InterpErrors(sup), types.InterpErrors(sub)
	types.DropShared(&supI, &subI)

	if supI.All {
		return // the supertype admits every classifier
	}
	if subI.All {
		g.UpperBound(nil, nil, supI.Set, true, at)
		return
	}
	if !g.known(supI.Set, at) || !g.known(subI.Set, at) {
		return
	}

	// Required coverage from the sub side: its constants plus the
	// universes of its rigid variables. A rigid variable with no finite
	// universe can never be covered by a finite supertype.
	need := classifier.Clone(subI.Set)
	for _, rv := range subI.Rigid {
		u := rv.Bound()
		if u.All {
			g.UpperBound(nil, nil, supI.Set, true, at)
			continue
		}
		for _, id := range classifier.SortedIDs(u.Members) {
			need.Insert(id)
		}
	}
	if !g.known(need, at) {
		return
	}

	outstanding := classifier.Missing(supI.Set, need)

	if len(supI.Flex) == 0 {
		if len(outstanding) > 0 {
			g.UpperBound(nil, need, supI.Set, false, at)
		}
	} else if len(supI.Flex) == 1 && covered(supI.Flex[0], outstanding) {
		// The canonical shape: one variable absorbs the whole
		// requirement, growing by need minus the fixed constants.
		if need.Size() > 0 {
			g.UnionSubset(supI.Flex[0], supI.Set, need, instsFor(subI.Insts, classifier.SortedIDs(need)), at)
		}
	} else {
		// Route each uncovered classifier to the first variable whose
		// universe admits it; what no universe admits is a violation.
		buckets := make([][]classifier.ID, len(supI.Flex))
		var leftovers []classifier.ID
		for _, id := range outstanding {
			placed := false
			for i, ev := range supI.Flex {
				if ev.Bound().Contains(id) {
					buckets[i] = append(buckets[i], id)
					placed = true
					break
				}
			}
			if !placed {
				leftovers = append(leftovers, id)
			}
		}
		for i, ev := range supI.Flex {
			if len(buckets[i]) == 0 {
				continue
			}
			routed := classifier.NewSet(buckets[i]...)
			g.UnionSubset(ev, supI.Set, routed, instsFor(subI.Insts, buckets[i]), at)
		}
		if len(leftovers) > 0 {
			g.UpperBound(nil, classifier.NewSet(leftovers...), supI.Set, false, at)
		}
	}

	// Sub-side flexible variables flow into a compatible supertype
	// variable, or are capped at the supertype's constants.
	for _, es := range subI.Flex {
		target := flowTarget(supI.Flex, es)
		if target != nil {
			g.Subset(es, target, supI.Set, at)
			continue
		}
		g.UpperBound(es, subI.Set, supI.Set, false, at)
	}

	// Classifiers fixed on both sides can still hide pending payload
	// comparisons inside their instantiations.
	g.requireInsts(supI, subI, at)
}

func (g *Generator) requireInsts(supI, subI types.Interp, at source.Span) {
	for _, id := range classifier.SortedIDs(subI.Set) {
		if supI.Set == nil || !supI.Set.Contains(id) {
			continue
		}
		si, okSub := subI.Insts[id]
		pi, okSup := supI.Insts[id]
		if !okSub || !okSup {
			continue
		}
		vary := classifier.Invariant
		if d, ok := g.reg.Decl(id); ok {
			vary = d.Vary
		}
		switch vary {
		case classifier.Covariant:
			if types.Subtype(g.reg, g.oracle, pi, si) == types.Pending {
				g.Require(pi, si, at)
			}
		case classifier.Contravariant:
			if types.Subtype(g.reg, g.oracle, si, pi) == types.Pending {
				g.Require(si, pi, at)
			}
		default:
			if types.Subtype(g.reg, g.oracle, pi, si) == types.Pending {
				g.Require(pi, si, at)
			}
			if types.Subtype(g.reg, g.oracle, si, pi) == types.Pending {
				g.Require(si, pi, at)
			}
		}
	}
}

// known validates that every classifier in s was interned in this
// registry. A miss is an internal-consistency fault: the host handed a
// type built against a different registry.
func (g *Generator) known(s *classifier.Set, at source.Span) bool {
	for _, id := range classifier.SortedIDs(s) {
		if _, ok := g.reg.Decl(id); !ok {
			g.diags.Report(diag.New(diag.UnknownClassifier, at,
				"classifier #%d is not interned in this registry", uint32(id)))
			return false
		}
	}
	return true
}

// Generate is the one-shot form of Generator.Require.
func Generate(reg *classifier.Registry, diags *diag.Stream, sup, sub types.Type, at source.Span) []Constraint {
	g := NewGenerator(reg, diags, nil, zerolog.Nop())
	g.Require(sup, sub, at)
	return g.Constraints()
}

// covered reports whether every id fits the variable's universe.
func covered(v *types.ErrVar, ids []classifier.ID) bool {
	u := v.Bound()
	if u.All {
		return true
	}
	for _, id := range ids {
		if !u.Contains(id) {
			return false
		}
	}
	return true
}

// flowTarget picks the first supertype variable whose universe contains
// everything the sub-side variable may ever hold.
func flowTarget(flex []*types.ErrVar, src *types.ErrVar) *types.ErrVar {
	su := src.Bound()
	for _, ev := range flex {
		tu := ev.Bound()
		if tu.All {
			return ev
		}
		if su.All {
			continue
		}
		if classifier.ContainsAll(tu.Members, su.Members) {
			return ev
		}
	}
	return nil
}

func instsFor(src map[classifier.ID]types.Type, ids []classifier.ID) map[classifier.ID]types.Type {
	var out map[classifier.ID]types.Type
	for _, id := range ids {
		t, ok := src[id]
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[classifier.ID]types.Type, len(ids))
		}
		out[id] = t
	}
	return out
}

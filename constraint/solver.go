package constraint

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/diag"
	"github.com/skerry-lang/skerry/types"
)

// Solver computes the unique minimal assignment satisfying the additive
// constraints, then validates the capping obligations. Build a fresh
// solver per constraint list; Solve is not reentrant.
type Solver struct {
	reg    *classifier.Registry
	policy FixingPolicy
	log    zerolog.Logger
	cs     []Constraint

	deps   map[*types.ErrVar][]int
	queue  []int
	marked []bool
	fail   *diag.Diagnostic
}

// SolverOption configures a Solver.
type SolverOption func(*Solver)

// WithPolicy swaps the instantiation fixing policy.
func WithPolicy(p FixingPolicy) SolverOption {
	return func(s *Solver) { s.policy = p }
}

// WithLogger routes the solver trace. Default is a no-op logger.
func WithLogger(log zerolog.Logger) SolverOption {
	return func(s *Solver) { s.log = log }
}

// NewSolver builds a solver over cs. The slice is taken as-is; the
// generator hands it over and stops recording.
func NewSolver(reg *classifier.Registry, cs []Constraint, opts ...SolverOption) *Solver {
	s := &Solver{
		reg:    reg,
		policy: DefaultPolicy(),
		log:    zerolog.Nop(),
		cs:     cs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solution is the frozen assignment for every variable the constraint
// list mentions, in first-mention order.
type Solution struct {
	Vars []*types.ErrVar
}

// Lookup finds the solved variable with the given id, nil when the
// constraints never mentioned it.
func (s *Solution) Lookup(id types.VarID) *types.ErrVar {
	for _, v := range s.Vars {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

// Solve runs the worklist to its least fixed point, validates the
// capping obligations in generation order, and freezes every variable.
// A failure comes back as the first unsatisfied obligation and leaves
// the variables unfrozen.
func (s *Solver) Solve() (*Solution, *diag.Diagnostic) {
	s.prepare()
	for len(s.queue) > 0 && s.fail == nil {
		i := s.queue[0]
		s.queue = s.queue[1:]
		s.marked[i] = false
		s.apply(s.cs[i])
	}
	if s.fail == nil {
		s.validate()
	}
	if s.fail != nil {
		return nil, s.fail
	}
	sol := s.freeze()
	s.log.Debug().
		Int("constraints", len(s.cs)).
		Int("vars", len(sol.Vars)).
		Msg("solve: fixed point reached")
	return sol, nil
}

func (s *Solver) prepare() {
	s.deps = make(map[*types.ErrVar][]int)
	s.marked = make([]bool, len(s.cs))
	for i, c := range s.cs {
		if c.Kind == Subset {
			s.deps[c.A] = append(s.deps[c.A], i)
		}
		if c.Kind != UpperBound {
			s.queue = append(s.queue, i)
			s.marked[i] = true
		}
	}
}

// enqueue re-runs the constraints reading from v after v grew.
func (s *Solver) enqueue(v *types.ErrVar) {
	for _, i := range s.deps[v] {
		if !s.marked[i] {
			s.marked[i] = true
			s.queue = append(s.queue, i)
		}
	}
}

func (s *Solver) apply(c Constraint) {
	switch c.Kind {
	case UnionSubset:
		lower := classifier.Missing(c.Fixed, c.Need)
		s.grow(c, c.A, lower, c.Insts)
	case Subset:
		var moved []classifier.ID
		for _, id := range c.A.LowerIDs() {
			if c.Fixed != nil && c.Fixed.Contains(id) {
				continue
			}
			moved = append(moved, id)
		}
		s.grow(c, c.C, moved, instsOf(c.A, moved))
	}
}

// grow adds the missing ids to v and reconciles instantiation payloads.
// Additions are minimal: only what the constraint demands and v lacks.
func (s *Solver) grow(c Constraint, v *types.ErrVar, ids []classifier.ID, insts map[classifier.ID]types.Type) {
	var missing []classifier.ID
	for _, id := range ids {
		if !v.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		if v.Rigid() {
			s.fail = diag.New(diag.UnsatisfiableConstraint, c.At,
				"rigid variable %s cannot grow to cover %s in %s",
				v, s.fmtIDs(missing), c.Render(s.reg)).
				Sets(classifier.NewSet(missing...), v.LowerSet())
			return
		}
		if u := v.Bound(); !u.All {
			for _, id := range missing {
				if !u.Contains(id) {
					s.fail = diag.New(diag.UnsatisfiableConstraint, c.At,
						"%s escapes the declared bound %s of %s",
						s.name(id), u, v).
						Sets(u.Members, classifier.NewSet(id))
					return
				}
			}
		}
		added := v.Grow(missing...)
		if len(added) > 0 {
			s.log.Debug().
				Int("constraint", c.Seq).
				Str("var", v.String()).
				Str("added", s.fmtIDs(added)).
				Msg("solve: adding lower bound")
			s.enqueue(v)
		}
	}
	for _, id := range ids {
		t, ok := insts[id]
		if !ok || !v.Has(id) {
			continue
		}
		s.fix(c, v, id, t)
		if s.fail != nil {
			return
		}
	}
}

// fix reconciles an instantiation contribution through the policy.
func (s *Solver) fix(c Constraint, v *types.ErrVar, id classifier.ID, offered types.Type) {
	have, _ := v.Inst(id)
	merged, ok := s.policy.Fix(s.reg, id, have, offered)
	if !ok {
		s.fail = diag.New(diag.AmbiguousGenericInstantiation, c.At,
			"conflicting instantiations %s and %s for %s on %s",
			have, offered, s.name(id), v).
			Sets(classifier.NewSet(id), nil)
		return
	}
	if merged == nil || (have != nil && merged.Equal(have)) {
		return
	}
	if v.Frozen() {
		s.fail = diag.New(diag.UnsatisfiableConstraint, c.At,
			"instantiation of %s on frozen %s cannot change", s.name(id), v)
		return
	}
	v.SetInst(id, merged)
}

// validate re-checks every capping obligation and declared universe in
// generation order, so the first reported violation is stable across
// runs.
func (s *Solver) validate() {
	for _, c := range s.cs {
		switch c.Kind {
		case UpperBound:
			if c.Open {
				s.fail = diag.New(diag.UnsatisfiableConstraint, c.At,
					"an unbounded error set cannot satisfy the bound %s", s.set(c.Bound)).
					Sets(c.Bound, nil)
				return
			}
			have := classifier.Clone(c.Fixed)
			if c.A != nil {
				for _, id := range c.A.LowerIDs() {
					have.Insert(id)
				}
			}
			if !classifier.ContainsAll(c.Bound, have) {
				over := classifier.Missing(c.Bound, have)
				s.fail = diag.New(diag.UnsatisfiableConstraint, c.At,
					"computed error set %s exceeds the allowed %s by %s",
					s.set(have), s.set(c.Bound), s.fmtIDs(over)).
					Sets(c.Bound, have)
				return
			}
		case Subset, UnionSubset:
			target := c.C
			if c.Kind == UnionSubset {
				target = c.A
			}
			if target == nil {
				continue
			}
			if u := target.Bound(); !u.All && !classifier.ContainsAll(u.Members, target.LowerSet()) {
				s.fail = diag.New(diag.UnsatisfiableConstraint, c.At,
					"%s grew beyond its declared bound %s", target, u).
					Sets(u.Members, target.LowerSet())
				return
			}
		}
	}
}

func (s *Solver) freeze() *Solution {
	seen := make(map[*types.ErrVar]bool)
	var vars []*types.ErrVar
	add := func(v *types.ErrVar) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		vars = append(vars, v)
	}
	for _, c := range s.cs {
		add(c.A)
		add(c.C)
	}
	for _, v := range vars {
		v.Freeze()
	}
	return &Solution{Vars: vars}
}

func (s *Solver) set(x *classifier.Set) string {
	if s.reg == nil {
		return plainSet(x)
	}
	return s.reg.FormatSet(x)
}

func (s *Solver) fmtIDs(ids []classifier.ID) string {
	return s.set(classifier.NewSet(ids...))
}

func (s *Solver) name(id classifier.ID) string {
	if s.reg == nil {
		return fmt.Sprintf("#%d", uint32(id))
	}
	return s.reg.Name(id)
}

func instsOf(v *types.ErrVar, ids []classifier.ID) map[classifier.ID]types.Type {
	var out map[classifier.ID]types.Type
	for _, id := range ids {
		t, ok := v.Inst(id)
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

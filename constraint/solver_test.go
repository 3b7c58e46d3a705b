package constraint_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/constraint"
	"github.com/skerry-lang/skerry/diag"
	"github.com/skerry-lang/skerry/source"
	"github.com/skerry-lang/skerry/types"
)

var (
	intT = types.Opaque{Name: "Int"}
	strT = types.Opaque{Name: "String"}
)

type world struct {
	reg        *classifier.Registry
	diags      *diag.Stream
	gen        *constraint.Generator
	nf, dn, to classifier.ID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	reg := classifier.NewRegistry()
	w := &world{
		reg:   reg,
		diags: &diag.Stream{},
		nf:    reg.MustIntern("store", "NotFound"),
		dn:    reg.MustIntern("store", "Denied"),
		to:    reg.MustIntern("net", "Timeout"),
	}
	w.gen = constraint.NewGenerator(reg, w.diags, nil, zerolog.Nop())
	return w
}

func (w *world) solve(opts ...constraint.SolverOption) (*constraint.Solution, *diag.Diagnostic) {
	return constraint.NewSolver(w.reg, w.gen.Constraints(), opts...).Solve()
}

func here() source.Span {
	return source.Span{
		File:  "infer.sk",
		Start: source.Pos{Offset: 10, Line: 2, Column: 3},
		End:   source.Pos{Offset: 14, Line: 2, Column: 7},
	}
}

func TestSolveMinimalLowerBound(t *testing.T) {
	w := newWorld(t)
	e := types.NewErrVar(1, "E", classifier.AllClassifiers())
	w.gen.UnionSubset(e, classifier.NewSet(), classifier.NewSet(w.nf, w.dn), nil, here())

	sol, d := w.solve()
	require.Nil(t, d)
	require.NotNil(t, sol)
	assert.Equal(t, []classifier.ID{w.nf, w.dn}, e.LowerIDs())
	assert.True(t, e.Frozen())
	assert.Same(t, e, sol.Lookup(1))
	assert.Nil(t, sol.Lookup(99))

	// Re-solving the same list on its own output is a no-op.
	_, d2 := constraint.NewSolver(w.reg, w.gen.Constraints()).Solve()
	require.Nil(t, d2)
	assert.Equal(t, []classifier.ID{w.nf, w.dn}, e.LowerIDs())
}

func TestSolveResultAsConstantsIsFixedPoint(t *testing.T) {
	w := newWorld(t)
	e := types.NewErrVar(1, "E", classifier.AllClassifiers())
	w.gen.UnionSubset(e, classifier.NewSet(), classifier.NewSet(w.nf, w.dn), nil, here())
	_, d := w.solve()
	require.Nil(t, d)

	// The solved set, taken as fixed constants, demands nothing more.
	e2 := types.NewErrVar(2, "E2", classifier.AllClassifiers())
	g2 := constraint.NewGenerator(w.reg, w.diags, nil, zerolog.Nop())
	g2.UnionSubset(e2, e.LowerSet(), classifier.NewSet(w.nf, w.dn), nil, here())
	_, d2 := constraint.NewSolver(w.reg, g2.Constraints()).Solve()
	require.Nil(t, d2)
	assert.Empty(t, e2.LowerIDs())
}

func TestSolvePropagatesThroughChain(t *testing.T) {
	w := newWorld(t)
	e1 := types.NewErrVar(1, "E1", classifier.AllClassifiers())
	e2 := types.NewErrVar(2, "E2", classifier.AllClassifiers())
	e3 := types.NewErrVar(3, "E3", classifier.AllClassifiers())

	// Dependent edges recorded before the seed: growth must re-run them.
	w.gen.Subset(e1, e2, nil, here())
	w.gen.Subset(e2, e3, nil, here())
	w.gen.UnionSubset(e1, classifier.NewSet(), classifier.NewSet(w.nf), nil, here())

	_, d := w.solve()
	require.Nil(t, d)
	assert.Equal(t, []classifier.ID{w.nf}, e1.LowerIDs())
	assert.Equal(t, []classifier.ID{w.nf}, e2.LowerIDs())
	assert.Equal(t, []classifier.ID{w.nf}, e3.LowerIDs())
}

func TestSolveMaskedFlow(t *testing.T) {
	w := newWorld(t)
	e1 := types.NewErrVar(1, "E1", classifier.AllClassifiers())
	e2 := types.NewErrVar(2, "E2", classifier.AllClassifiers())

	// NotFound is already covered by a constant beside e2; only Denied
	// has to flow.
	w.gen.UnionSubset(e1, classifier.NewSet(), classifier.NewSet(w.nf, w.dn), nil, here())
	w.gen.Subset(e1, e2, classifier.NewSet(w.nf), here())

	_, d := w.solve()
	require.Nil(t, d)
	assert.Equal(t, []classifier.ID{w.dn}, e2.LowerIDs())
}

func TestSolveRigidCannotGrow(t *testing.T) {
	w := newWorld(t)
	r := types.NewRigidVar(1, "R", classifier.FiniteUniverse(classifier.NewSet(w.nf)))
	w.gen.UnionSubset(r, classifier.NewSet(), classifier.NewSet(w.nf), nil, here())

	sol, d := w.solve()
	require.Nil(t, sol)
	require.NotNil(t, d)
	assert.Equal(t, diag.UnsatisfiableConstraint, d.Kind)
	assert.Contains(t, d.Message, "rigid")
	assert.Empty(t, r.LowerIDs())
	assert.False(t, r.Frozen())
}

func TestSolveRigidAlreadyCovered(t *testing.T) {
	w := newWorld(t)
	r := types.NewRigidVar(1, "R", classifier.FiniteUniverse(classifier.NewSet(w.nf)))
	// The requirement is fully covered by the fixed constants, so the
	// rigid variable is never asked to grow.
	w.gen.UnionSubset(r, classifier.NewSet(w.nf), classifier.NewSet(w.nf), nil, here())

	_, d := w.solve()
	require.Nil(t, d)
	assert.Empty(t, r.LowerIDs())
}

func TestSolveUniverseEscape(t *testing.T) {
	w := newWorld(t)
	f := types.NewErrVar(1, "F", classifier.FiniteUniverse(classifier.NewSet(w.nf)))
	w.gen.UnionSubset(f, classifier.NewSet(), classifier.NewSet(w.dn), nil, here())

	_, d := w.solve()
	require.NotNil(t, d)
	assert.Equal(t, diag.UnsatisfiableConstraint, d.Kind)
	assert.Contains(t, d.Message, "bound")
	assert.Equal(t, []classifier.ID{w.nf}, d.Expected)
	assert.Equal(t, []classifier.ID{w.dn}, d.Actual)
}

func TestSolveUpperBoundValidates(t *testing.T) {
	w := newWorld(t)
	e := types.NewErrVar(1, "E", classifier.AllClassifiers())
	w.gen.UnionSubset(e, classifier.NewSet(), classifier.NewSet(w.nf, w.dn), nil, here())
	w.gen.UpperBound(e, nil, classifier.NewSet(w.nf, w.dn, w.to), false, here())

	_, d := w.solve()
	require.Nil(t, d)
	assert.True(t, e.Frozen())
}

func TestSolveUpperBoundViolation(t *testing.T) {
	w := newWorld(t)
	e := types.NewErrVar(1, "E", classifier.AllClassifiers())
	w.gen.UnionSubset(e, classifier.NewSet(), classifier.NewSet(w.nf, w.dn), nil, here())
	w.gen.UpperBound(e, nil, classifier.NewSet(w.nf), false, here())

	sol, d := w.solve()
	require.Nil(t, sol)
	require.NotNil(t, d)
	assert.Equal(t, diag.UnsatisfiableConstraint, d.Kind)
	assert.Equal(t, []classifier.ID{w.nf}, d.Expected)
	assert.Equal(t, []classifier.ID{w.nf, w.dn}, d.Actual)
	assert.False(t, e.Frozen())
}

func TestSolveFirstViolationWins(t *testing.T) {
	w := newWorld(t)
	e := types.NewErrVar(1, "E", classifier.AllClassifiers())
	w.gen.UnionSubset(e, classifier.NewSet(), classifier.NewSet(w.dn), nil, here())
	w.gen.UpperBound(e, nil, classifier.NewSet(w.nf), false, here())
	w.gen.UpperBound(e, nil, classifier.NewSet(), false, here())

	_, d := w.solve()
	require.NotNil(t, d)
	// Both caps are violated; the earlier recorded one is reported.
	assert.Equal(t, []classifier.ID{w.nf}, d.Expected)
}

func TestSolveOpenObligation(t *testing.T) {
	w := newWorld(t)
	w.gen.UpperBound(nil, nil, classifier.NewSet(w.nf), true, here())

	_, d := w.solve()
	require.NotNil(t, d)
	assert.Equal(t, diag.UnsatisfiableConstraint, d.Kind)
	assert.Contains(t, d.Message, "unbounded")
}

func TestSolveDeterministic(t *testing.T) {
	results := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		w := newWorld(t)
		e1 := types.NewErrVar(1, "E1", classifier.AllClassifiers())
		e2 := types.NewErrVar(2, "E2", classifier.AllClassifiers())
		w.gen.Subset(e1, e2, nil, here())
		w.gen.UnionSubset(e1, classifier.NewSet(), classifier.NewSet(w.to, w.nf), nil, here())
		w.gen.UnionSubset(e2, classifier.NewSet(), classifier.NewSet(w.dn), nil, here())

		_, d := w.solve()
		require.Nil(t, d)
		results = append(results, w.reg.FormatSet(e1.LowerSet())+"/"+w.reg.FormatSet(e2.LowerSet()))
	}
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestSolverTrace(t *testing.T) {
	var buf bytes.Buffer
	w := newWorld(t)
	e := types.NewErrVar(1, "E", classifier.AllClassifiers())
	w.gen.UnionSubset(e, classifier.NewSet(), classifier.NewSet(w.nf), nil, here())

	_, d := w.solve(constraint.WithLogger(zerolog.New(&buf)))
	require.Nil(t, d)
	out := buf.String()
	assert.True(t, strings.Contains(out, "adding lower bound"), "trace: %s", out)
	assert.True(t, strings.Contains(out, "fixed point"), "trace: %s", out)
}

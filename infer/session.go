// Package infer runs constraint-based inference sessions over
// declarations. A session is sequential: the host records requirements
// while walking one declaration body, then solves once and reads the
// resolved types back. Sessions over a shared registry may run in
// parallel; they never share variables.
package infer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/constraint"
	"github.com/skerry-lang/skerry/diag"
	"github.com/skerry-lang/skerry/source"
	"github.com/skerry-lang/skerry/types"
)

// Session is one inference run. Zero value is not usable; build with
// NewSession.
type Session struct {
	id     string
	reg    *classifier.Registry
	oracle types.ValueOracle
	policy constraint.FixingPolicy
	log    zerolog.Logger

	diags   *diag.Stream
	gen     *constraint.Generator
	nextVar types.VarID
	vars    []*types.ErrVar
	splits  map[types.VarID]*types.ErrVar

	sol      *constraint.Solution
	failed   bool
	canceled bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger routes the session and solver trace. Default is a no-op
// logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithOracle swaps the value-subtyping oracle. Default is nominal
// equality.
func WithOracle(o types.ValueOracle) Option {
	return func(s *Session) { s.oracle = o }
}

// WithPolicy swaps the instantiation fixing policy. Default is strict.
func WithPolicy(p constraint.FixingPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// NewSession opens a session over reg.
func NewSession(reg *classifier.Registry, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		reg:    reg,
		oracle: types.NominalValues(),
		policy: constraint.DefaultPolicy(),
		log:    zerolog.Nop(),
		diags:  &diag.Stream{},
		splits: make(map[types.VarID]*types.ErrVar),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session", s.id).Logger()
	s.gen = constraint.NewGenerator(reg, s.diags, s.oracle, s.log)
	return s
}

// ID returns the session's identifier, carried on every trace line.
func (s *Session) ID() string { return s.id }

// Diagnostics returns everything reported so far, in report order.
func (s *Session) Diagnostics() []diag.Diagnostic { return s.diags.All() }

// Failed reports whether the session hit an unsatisfiable requirement
// or an internal fault.
func (s *Session) Failed() bool { return s.failed || s.diags.Fatal() }

// Err folds the collected diagnostics into one error, nil when the
// stream is clean.
func (s *Session) Err() error {
	if s.diags.Empty() {
		return nil
	}
	errs := make([]error, 0, s.diags.Len())
	for _, d := range s.diags.All() {
		errs = append(errs, fmt.Errorf("%s", d.String()))
	}
	return errors.Join(errs...)
}

// FreshVar mints a flexible inference variable bounded by u. Its set
// starts empty and grows during Solve.
func (s *Session) FreshVar(name string, u classifier.Universe) *types.ErrVar {
	s.nextVar++
	v := types.NewErrVar(s.nextVar, name, u)
	s.vars = append(s.vars, v)
	return v
}

// FreshRigid mints a rigid variable: a caller-chosen set the session
// may reference but never grow.
func (s *Session) FreshRigid(name string, u classifier.Universe) *types.ErrVar {
	s.nextVar++
	v := types.NewRigidVar(s.nextVar, name, u)
	s.vars = append(s.vars, v)
	return v
}

// Split severs a bare parameter into its value and error projections.
// The error half is rigid and memoized per parameter, so both sides of
// a later comparison see the same variable.
func (s *Session) Split(p types.Param) (types.ValueProj, *types.ErrVar) {
	if v, ok := s.splits[p.ID]; ok {
		return types.ValueProj{Param: p}, v
	}
	v := s.FreshRigid(p.String()+"|e", classifier.AllClassifiers())
	s.splits[p.ID] = v
	return types.ValueProj{Param: p}, v
}

// Check validates a written union. The union itself comes back when
// well-formed; a violation is reported and poisons only this type,
// which degrades to Invalid.
func (s *Session) Check(u *types.Union, at source.Span) types.Type {
	if d := types.Check(s.reg, u, at); d != nil {
		s.diags.Report(d)
		return types.Invalid{Msg: d.Message}
	}
	return u
}

// Require records that sup must admit sub at the given site. Yes and No
// are final; Pending routes the pair to the constraint generator and is
// settled by Solve.
func (s *Session) Require(sup, sub types.Type, at source.Span) types.Verdict {
	if s.canceled {
		return types.No
	}
	v := types.Subtype(s.reg, s.oracle, sup, sub)
	switch v {
	case types.Pending:
		s.gen.Require(sup, sub, at)
	case types.No:
		d := diag.New(diag.UnsatisfiableConstraint, at, "%s does not admit %s",
			types.Render(s.reg, sup), types.Render(s.reg, sub))
		if supI, subI := types.InterpErrors(sup), types.InterpErrors(sub); !supI.All && !subI.All {
			d.Sets(supI.Set, subI.Set)
		}
		s.diags.Report(d)
		s.failed = true
	}
	return v
}

// Solve runs the solver over the recorded constraints and freezes every
// session variable, the untouched ones at their minimal empty set.
// Reports whether all requirements are satisfiable.
func (s *Session) Solve() bool {
	if s.canceled || s.Failed() {
		return false
	}
	sol, d := constraint.NewSolver(s.reg, s.gen.Constraints(),
		constraint.WithPolicy(s.policy),
		constraint.WithLogger(s.log)).Solve()
	if d != nil {
		s.diags.Report(d)
		s.failed = true
		return false
	}
	s.sol = sol
	for _, v := range s.vars {
		if !v.Frozen() {
			v.Freeze()
		}
	}
	s.log.Debug().
		Int("constraints", s.gen.Len()).
		Int("vars", len(s.vars)).
		Msg("session solved")
	return true
}

// Solution exposes the solver assignment, nil before a successful
// Solve.
func (s *Session) Solution() *constraint.Solution { return s.sol }

// Constraints returns the facts recorded so far, in generation order.
func (s *Session) Constraints() []constraint.Constraint { return s.gen.Constraints() }

// Cancel abandons the session: later requirements are ignored and Solve
// reports failure. Partially grown variables stay unfrozen and must not
// escape the session.
func (s *Session) Cancel() {
	s.canceled = true
	s.log.Debug().Msg("session canceled")
}

// Resolve substitutes solved variables in t and returns the canonical
// form. Before a successful Solve it returns t unchanged.
func (s *Session) Resolve(t types.Type) types.Type {
	if s.sol == nil {
		return t
	}
	return resolve(t)
}

func resolve(t types.Type) types.Type {
	switch q := t.(type) {
	case *types.Union:
		return resolveUnion(q)
	case *types.ErrVar:
		if q.Rigid() || !q.Frozen() {
			return q
		}
		parts := expandVar(q)
		switch len(parts) {
		case 0:
			return types.Nothing
		case 1:
			return parts[0]
		}
		return types.NewUnion(parts...).Canonical()
	case types.ErrConst:
		if q.Inst != nil {
			q.Inst = resolve(q.Inst)
		}
		return q
	}
	return t
}

func resolveUnion(u *types.Union) types.Type {
	var parts []types.Type
	seen := classifier.NewSet()
	keep := func(p types.Type) {
		if c, ok := p.(types.ErrConst); ok {
			if !seen.Insert(c.Class) {
				return
			}
		}
		parts = append(parts, p)
	}
	for _, p := range u.Parts {
		switch q := p.(type) {
		case *types.ErrVar:
			if q.Rigid() || !q.Frozen() {
				keep(q)
				continue
			}
			for _, e := range expandVar(q) {
				keep(e)
			}
		default:
			keep(resolve(p))
		}
	}
	switch len(parts) {
	case 0:
		return types.Nothing
	case 1:
		return parts[0]
	}
	return types.NewUnion(parts...).Canonical()
}

// expandVar turns a frozen flexible variable into its solved constants.
func expandVar(v *types.ErrVar) []types.Type {
	var parts []types.Type
	for _, id := range v.LowerIDs() {
		c := types.ErrConst{Class: id}
		if inst, ok := v.Inst(id); ok {
			c.Inst = resolve(inst)
		}
		parts = append(parts, c)
	}
	return parts
}

package infer

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/sanity-io/litter"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/constraint"
	"github.com/skerry-lang/skerry/types"
)

// VarState is the dump snapshot of one session variable.
type VarState struct {
	Name   string
	Rigid  bool
	Frozen bool
	Set    []classifier.ID
}

// DumpState writes a snapshot of the session: every variable with its
// current set, the recorded constraint table, and the diagnostics so
// far. Meant for debugging a solve that came out wrong.
func (s *Session) DumpState(w io.Writer) {
	fmt.Fprintf(w, "session %s\n", s.id)
	states := lo.Map(s.vars, func(v *types.ErrVar, _ int) VarState {
		return VarState{
			Name:   v.String(),
			Rigid:  v.Rigid(),
			Frozen: v.Frozen(),
			Set:    v.LowerIDs(),
		}
	})
	io.WriteString(w, litter.Sdump(states))
	fmt.Fprintln(w)
	constraint.DumpTable(w, s.reg, s.gen.Constraints())
	for _, d := range s.diags.All() {
		fmt.Fprintln(w, d)
	}
}

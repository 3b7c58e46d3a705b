package types

import (
	"strings"

	"github.com/samber/lo"

	"github.com/skerry-lang/skerry/classifier"
)

// Render writes t with classifier names resolved through reg, the form
// diagnostics use. Falls back to the bare String rendering for anything
// the registry does not know.
func Render(reg *classifier.Registry, t Type) string {
	if reg == nil || t == nil {
		if t == nil {
			return "<nil>"
		}
		return t.String()
	}
	switch q := t.(type) {
	case *Union:
		parts := lo.Map(q.Parts, func(p Type, _ int) string {
			return Render(reg, p)
		})
		return strings.Join(parts, " | ")
	case ErrConst:
		name := reg.Name(q.Class)
		if q.Inst != nil {
			return name + "<" + Render(reg, q.Inst) + ">"
		}
		return name
	case *ErrVar:
		if q.Frozen() && !q.Rigid() {
			return q.String() + "=" + reg.FormatSet(classifier.NewSet(q.LowerIDs()...))
		}
		return q.String()
	}
	return t.String()
}

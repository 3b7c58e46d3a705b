package infer

import (
	"github.com/skerry-lang/skerry/source"
	"github.com/skerry-lang/skerry/types"
)

// Expr ties a type annotation to its source span, the unit the host
// hands to a session.
type Expr struct {
	Type types.Type
	At   source.Span
}

// RequireExpr records that the annotated destination must admit the
// expression flowing into it.
func (s *Session) RequireExpr(into, from Expr) types.Verdict {
	return s.Require(into.Type, from.Type, from.At)
}

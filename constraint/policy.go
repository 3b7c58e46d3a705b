package constraint

import (
	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/types"
)

// FixingPolicy reconciles instantiation payloads contributed to the
// same classifier of one variable during solving.
type FixingPolicy interface {
	// Fix returns the instantiation to keep. ok=false reports a pair
	// the policy cannot reconcile.
	Fix(reg *classifier.Registry, class classifier.ID, have, offered types.Type) (merged types.Type, ok bool)
}

// StrictFixing keeps the first instantiation and requires every later
// contribution to equal it. This is the default: an explicit
// instantiation is authoritative and silent widening is refused.
type StrictFixing struct{}

func (StrictFixing) Fix(_ *classifier.Registry, _ classifier.ID, have, offered types.Type) (types.Type, bool) {
	switch {
	case offered == nil:
		return have, true
	case have == nil:
		return offered, true
	case have.Equal(offered):
		return have, true
	}
	return nil, false
}

// SoftFixing joins contributions along the declared variance instead of
// refusing them: covariant keeps the wider payload, contravariant the
// narrower, invariant still requires equality.
type SoftFixing struct {
	Oracle types.ValueOracle
}

func (p SoftFixing) Fix(reg *classifier.Registry, class classifier.ID, have, offered types.Type) (types.Type, bool) {
	switch {
	case offered == nil:
		return have, true
	case have == nil:
		return offered, true
	case have.Equal(offered):
		return have, true
	}
	vary := classifier.Invariant
	if reg != nil {
		if d, ok := reg.Decl(class); ok {
			vary = d.Vary
		}
	}
	switch vary {
	case classifier.Covariant:
		if types.Subtype(reg, p.Oracle, have, offered) == types.Yes {
			return have, true
		}
		if types.Subtype(reg, p.Oracle, offered, have) == types.Yes {
			return offered, true
		}
	case classifier.Contravariant:
		if types.Subtype(reg, p.Oracle, have, offered) == types.Yes {
			return offered, true
		}
		if types.Subtype(reg, p.Oracle, offered, have) == types.Yes {
			return have, true
		}
	}
	return nil, false
}

// DefaultPolicy is what the solver uses unless configured otherwise.
func DefaultPolicy() FixingPolicy { return StrictFixing{} }

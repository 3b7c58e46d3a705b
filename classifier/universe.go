package classifier

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Universe is the declared upper bound of an error variable: either the
// unbounded universe of all classifiers, or a finite member set, usually
// the expansion of a named alias.
type Universe struct {
	Alias   string // qualified alias name, "" when anonymous or unbounded
	All     bool
	Members *Set // nil means empty when All is false
}

// AllClassifiers is the unbounded universe, the bound written "Error".
func AllClassifiers() Universe {
	return Universe{All: true}
}

// FiniteUniverse builds an anonymous finite universe over members.
func FiniteUniverse(members *Set) Universe {
	return Universe{Members: Clone(members)}
}

func (u Universe) Contains(id ID) bool {
	if u.All {
		return true
	}
	return u.Members != nil && u.Members.Contains(id)
}

func (u Universe) size() int {
	if u.Members == nil {
		return 0
	}
	return u.Members.Size()
}

// Disjoint reports whether no classifier inhabits both universes. The
// unbounded universe overlaps everything except the empty universe,
// including itself.
func (u Universe) Disjoint(v Universe) bool {
	switch {
	case u.All && v.All:
		return false
	case u.All:
		return v.size() == 0
	case v.All:
		return u.size() == 0
	default:
		for _, id := range SortedIDs(u.Members) {
			if v.Members != nil && v.Members.Contains(id) {
				return false
			}
		}
		return true
	}
}

func (u Universe) String() string {
	if u.All {
		return "Error"
	}
	if u.Alias != "" {
		return u.Alias
	}
	parts := lo.Map(SortedIDs(u.Members), func(id ID, _ int) string {
		return fmt.Sprintf("#%d", uint32(id))
	})
	return "{" + strings.Join(parts, ", ") + "}"
}

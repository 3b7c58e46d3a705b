package classifier

import (
	set "github.com/hashicorp/go-set/v2"
	"golang.org/x/exp/slices"
)

// Set is a set of classifier IDs, the unit of error-part comparison: the
// flattened interpretation of an error type is a Set, and subtyping between
// error parts is containment between Sets.
type Set = set.Set[ID]

// NewSet builds a set holding the given IDs.
func NewSet(ids ...ID) *Set {
	s := set.New[ID](len(ids))
	for _, id := range ids {
		s.Insert(id)
	}
	return s
}

// Clone copies s. A nil set clones to an empty set.
func Clone(s *Set) *Set {
	if s == nil {
		return set.New[ID](0)
	}
	return NewSet(s.Slice()...)
}

// SortedIDs returns the members of s in ascending ID order. Canonical
// ordering for rendering, diagnostics, and deterministic iteration.
func SortedIDs(s *Set) []ID {
	if s == nil {
		return nil
	}
	ids := s.Slice()
	slices.Sort(ids)
	return ids
}

// ContainsAll reports whether every member of sub is in sup.
func ContainsAll(sup, sub *Set) bool {
	if sub == nil || sub.Size() == 0 {
		return true
	}
	if sup == nil {
		return false
	}
	for _, id := range sub.Slice() {
		if !sup.Contains(id) {
			return false
		}
	}
	return true
}

// EqualSets reports whether a and b hold exactly the same members.
func EqualSets(a, b *Set) bool {
	na, nb := 0, 0
	if a != nil {
		na = a.Size()
	}
	if b != nil {
		nb = b.Size()
	}
	return na == nb && ContainsAll(a, b)
}

// Missing returns the members of want absent from have, in ascending ID
// order.
func Missing(have, want *Set) []ID {
	var out []ID
	for _, id := range SortedIDs(want) {
		if have == nil || !have.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

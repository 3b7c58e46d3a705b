package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skerry-lang/skerry/classifier"
)

func ids(ns ...uint32) []classifier.ID {
	out := make([]classifier.ID, len(ns))
	for i, n := range ns {
		out[i] = classifier.ID(n)
	}
	return out
}

func TestSortedIDs(t *testing.T) {
	s := classifier.NewSet(ids(3, 1, 2)...)
	assert.Equal(t, ids(1, 2, 3), classifier.SortedIDs(s))
	assert.Nil(t, classifier.SortedIDs(nil))
}

func TestContainsAll(t *testing.T) {
	sup := classifier.NewSet(ids(1, 2, 3)...)
	assert.True(t, classifier.ContainsAll(sup, classifier.NewSet(ids(1, 3)...)))
	assert.True(t, classifier.ContainsAll(sup, nil), "the empty set is a subset of anything")
	assert.True(t, classifier.ContainsAll(nil, classifier.NewSet()))
	assert.False(t, classifier.ContainsAll(sup, classifier.NewSet(ids(4)...)))
	assert.False(t, classifier.ContainsAll(nil, classifier.NewSet(ids(1)...)))
}

func TestEqualSets(t *testing.T) {
	assert.True(t, classifier.EqualSets(classifier.NewSet(ids(1, 2)...), classifier.NewSet(ids(2, 1)...)))
	assert.True(t, classifier.EqualSets(nil, classifier.NewSet()))
	assert.False(t, classifier.EqualSets(classifier.NewSet(ids(1)...), classifier.NewSet(ids(1, 2)...)))
}

func TestMissing(t *testing.T) {
	have := classifier.NewSet(ids(2)...)
	want := classifier.NewSet(ids(3, 1, 2)...)
	assert.Equal(t, ids(1, 3), classifier.Missing(have, want))
	assert.Equal(t, ids(1), classifier.Missing(nil, classifier.NewSet(ids(1)...)))
	assert.Nil(t, classifier.Missing(have, nil))
}

func TestCloneIsIndependent(t *testing.T) {
	orig := classifier.NewSet(ids(1)...)
	cp := classifier.Clone(orig)
	cp.Insert(classifier.ID(2))
	assert.False(t, orig.Contains(classifier.ID(2)))
	assert.Equal(t, 0, classifier.Clone(nil).Size())
}

func TestUniverseDisjoint(t *testing.T) {
	all := classifier.AllClassifiers()
	empty := classifier.FiniteUniverse(nil)
	ab := classifier.FiniteUniverse(classifier.NewSet(ids(1, 2)...))
	bc := classifier.FiniteUniverse(classifier.NewSet(ids(2, 3)...))
	cd := classifier.FiniteUniverse(classifier.NewSet(ids(3, 4)...))

	assert.False(t, all.Disjoint(all), "two unbounded universes always overlap")
	assert.True(t, all.Disjoint(empty))
	assert.True(t, empty.Disjoint(all))
	assert.False(t, all.Disjoint(ab))
	assert.False(t, ab.Disjoint(bc))
	assert.True(t, ab.Disjoint(cd))
}

func TestUniverseContains(t *testing.T) {
	u := classifier.FiniteUniverse(classifier.NewSet(ids(7)...))
	assert.True(t, u.Contains(classifier.ID(7)))
	assert.False(t, u.Contains(classifier.ID(8)))
	assert.True(t, classifier.AllClassifiers().Contains(classifier.ID(8)))
}

func TestUniverseString(t *testing.T) {
	assert.Equal(t, "Error", classifier.AllClassifiers().String())
	u := classifier.Universe{Alias: "io.Faults"}
	assert.Equal(t, "io.Faults", u.String())
	anon := classifier.FiniteUniverse(classifier.NewSet(ids(2, 1)...))
	assert.Equal(t, "{#1, #2}", anon.String())
}

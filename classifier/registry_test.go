package classifier_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skerry-lang/skerry/classifier"
)

func TestInternStableIdentity(t *testing.T) {
	r := classifier.NewRegistry()

	a, err := r.Intern("net/fetch", "Timeout")
	require.NoError(t, err)
	assert.True(t, a.IsValid())

	b, err := r.Intern("net/fetch", "Timeout")
	require.NoError(t, err)
	assert.Equal(t, a, b, "re-interning the same key must return the original ID")

	other, err := r.Intern("net/fetch", "Refused")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	elsewhere, err := r.Intern("disk", "Timeout")
	require.NoError(t, err)
	assert.NotEqual(t, a, elsewhere, "same name in a different scope is a different classifier")

	assert.Equal(t, 3, r.Size())
}

func TestInternValidation(t *testing.T) {
	r := classifier.NewRegistry()

	_, err := r.Intern("", "")
	assert.Error(t, err, "empty names are rejected")

	_, err = r.Intern("", "9lives")
	assert.Error(t, err, "names must start like identifiers")

	_, err = r.Intern("", "not found")
	assert.Error(t, err)

	_, err = r.Intern("bad//path", "Timeout")
	assert.Error(t, err, "scope paths are import-path shaped")

	id, err := r.Intern("", "_reserved")
	require.NoError(t, err, "leading underscore is a valid identifier start")
	assert.True(t, id.IsValid())
}

func TestInternPayloadShapeConflict(t *testing.T) {
	r := classifier.NewRegistry()

	_, err := r.Intern("db", "Conflict", classifier.WithPayload(classifier.Covariant))
	require.NoError(t, err)

	_, err = r.Intern("db", "Conflict")
	assert.Error(t, err, "redeclaring with a different payload shape must fail")

	_, err = r.Intern("db", "Conflict", classifier.WithPayload(classifier.Covariant))
	assert.NoError(t, err, "redeclaring with the same shape is idempotent")
}

func TestLookupAndDecl(t *testing.T) {
	r := classifier.NewRegistry()
	id := r.MustIntern("io", "Closed")

	got, ok := r.Lookup("io", "Closed")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = r.Lookup("io", "Open")
	assert.False(t, ok)

	d, ok := r.Decl(id)
	require.True(t, ok)
	assert.Equal(t, "io.Closed", d.QualifiedName())

	_, ok = r.Decl(classifier.ID(999))
	assert.False(t, ok)
	assert.Equal(t, "classifier#999", r.Name(classifier.ID(999)))
}

func TestConcurrentIntern(t *testing.T) {
	r := classifier.NewRegistry()
	const workers = 16
	const names = 32

	results := make([][]classifier.ID, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]classifier.ID, names)
			for i := 0; i < names; i++ {
				ids[i] = r.MustIntern("shared", fmt.Sprintf("Err%d", i))
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		assert.Equal(t, results[0], results[w], "every worker must observe the same identities")
	}
	assert.Equal(t, names, r.Size(), "each key is interned exactly once")
}

func TestDeclareAlias(t *testing.T) {
	r := classifier.NewRegistry()
	nf := r.MustIntern("store", "NotFound")
	dn := r.MustIntern("store", "Denied")

	u, err := r.DeclareAlias("store", "Lookup", classifier.NewSet(nf, dn))
	require.NoError(t, err)
	assert.Equal(t, "store.Lookup", u.Alias)
	assert.True(t, u.Contains(nf))

	again, err := r.DeclareAlias("store", "Lookup", classifier.NewSet(dn, nf))
	require.NoError(t, err, "identical redeclaration is idempotent")
	assert.Equal(t, u.Alias, again.Alias)

	_, err = r.DeclareAlias("store", "Lookup", classifier.NewSet(nf))
	assert.Error(t, err, "conflicting redeclaration must fail")

	got, ok := r.LookupAlias("store", "Lookup")
	require.True(t, ok)
	assert.True(t, got.Contains(dn))
}

func TestFormatSet(t *testing.T) {
	r := classifier.NewRegistry()
	a := r.MustIntern("", "Alpha")
	b := r.MustIntern("", "Beta")

	assert.Equal(t, "{Alpha, Beta}", r.FormatSet(classifier.NewSet(b, a)))
	assert.Equal(t, "{}", r.FormatSet(classifier.NewSet()))
}

func TestScopePath(t *testing.T) {
	root := classifier.NewScope(nil, "")
	pkg := root.Child("svc")
	fn := pkg.Child("handler")

	assert.Equal(t, "", root.Path())
	assert.Equal(t, "svc", pkg.Path())
	assert.Equal(t, "svc/handler", fn.Path())

	r := classifier.NewRegistry()
	id, err := fn.Declare(r, "Overload")
	require.NoError(t, err)
	assert.Equal(t, "svc/handler.Overload", r.Name(id))
}

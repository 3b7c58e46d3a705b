package classifier

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/smasher164/xid"
	"golang.org/x/mod/module"

	"github.com/skerry-lang/skerry/source"
)

type key struct {
	scope string
	name  string
}

// Registry interns classifiers and named alias universes. Lookups never take
// a lock; interning takes a single mutex only on the first declaration of a
// key. Entries are never removed, so an ID handed out once stays valid for
// the life of the process.
type Registry struct {
	lookup  sync.Map // key -> ID
	decls   sync.Map // ID -> Decl
	aliases sync.Map // key -> Universe
	count   atomic.Uint32

	mu sync.Mutex // serializes first-time declarations
}

func NewRegistry() *Registry {
	return &Registry{}
}

// InternOption configures a classifier declaration.
type InternOption func(*Decl)

// WithPayload declares a single payload type parameter with the given
// variance.
func WithPayload(v Variance) InternOption {
	return func(d *Decl) {
		d.Arity = 1
		d.Vary = v
	}
}

// WithSpan records the declaration site for diagnostics.
func WithSpan(sp source.Span) InternOption {
	return func(d *Decl) {
		d.Span = sp
	}
}

// Intern returns the stable ID for (scopePath, name), declaring the
// classifier if it has not been seen before. Re-interning an existing key
// returns the original ID; it is an error to re-intern with a different
// payload shape.
func (r *Registry) Intern(scopePath, name string, opts ...InternOption) (ID, error) {
	if err := checkName(name); err != nil {
		return None, err
	}
	if err := checkScopePath(scopePath); err != nil {
		return None, err
	}
	k := key{scopePath, name}
	want := Decl{Scope: scopePath, Name: name}
	for _, opt := range opts {
		opt(&want)
	}
	if v, ok := r.lookup.Load(k); ok {
		return r.recheck(v.(ID), want)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.lookup.Load(k); ok {
		return r.recheck(v.(ID), want)
	}
	id := ID(r.count.Add(1))
	want.ID = id
	r.decls.Store(id, want)
	r.lookup.Store(k, id)
	return id, nil
}

func (r *Registry) recheck(id ID, want Decl) (ID, error) {
	have, _ := r.Decl(id)
	if have.Arity != want.Arity || have.Vary != want.Vary {
		return None, fmt.Errorf("classifier %s: redeclared with conflicting payload shape", have.QualifiedName())
	}
	return id, nil
}

// MustIntern is Intern for statically known names, typically tests and
// built-in declarations.
func (r *Registry) MustIntern(scopePath, name string, opts ...InternOption) ID {
	id, err := r.Intern(scopePath, name, opts...)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup reports the ID of an already interned classifier.
func (r *Registry) Lookup(scopePath, name string) (ID, bool) {
	v, ok := r.lookup.Load(key{scopePath, name})
	if !ok {
		return None, false
	}
	return v.(ID), true
}

// Decl returns the declaration record for id.
func (r *Registry) Decl(id ID) (Decl, bool) {
	v, ok := r.decls.Load(id)
	if !ok {
		return Decl{}, false
	}
	return v.(Decl), true
}

// Name returns the qualified name of id, or a placeholder when id was never
// issued by this registry.
func (r *Registry) Name(id ID) string {
	d, ok := r.Decl(id)
	if !ok {
		return fmt.Sprintf("classifier#%d", uint32(id))
	}
	return d.QualifiedName()
}

// Size reports how many classifiers have been interned.
func (r *Registry) Size() int {
	return int(r.count.Load())
}

// DeclareAlias registers a named finite universe. Aliases live in their own
// namespace; an alias and a classifier may share a name without clashing.
func (r *Registry) DeclareAlias(scopePath, name string, members *Set) (Universe, error) {
	if err := checkName(name); err != nil {
		return Universe{}, err
	}
	if err := checkScopePath(scopePath); err != nil {
		return Universe{}, err
	}
	qual := name
	if scopePath != "" {
		qual = scopePath + "." + name
	}
	u := Universe{Alias: qual, Members: Clone(members)}
	k := key{scopePath, name}
	if prev, loaded := r.aliases.LoadOrStore(k, u); loaded {
		if !EqualSets(prev.(Universe).Members, members) {
			return Universe{}, fmt.Errorf("alias %s: redeclared with different members", qual)
		}
		return prev.(Universe), nil
	}
	return u, nil
}

// LookupAlias reports a previously declared alias universe.
func (r *Registry) LookupAlias(scopePath, name string) (Universe, bool) {
	v, ok := r.aliases.Load(key{scopePath, name})
	if !ok {
		return Universe{}, false
	}
	return v.(Universe), true
}

// FormatSet renders a classifier set as "{a, b}" with members in ID order.
func (r *Registry) FormatSet(s *Set) string {
	names := lo.Map(SortedIDs(s), func(id ID, _ int) string {
		return r.Name(id)
	})
	return "{" + strings.Join(names, ", ") + "}"
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("classifier name must not be empty")
	}
	for i, ch := range name {
		if i == 0 {
			if ch != '_' && !xid.Start(ch) {
				return fmt.Errorf("classifier name %q: invalid leading character %q", name, ch)
			}
			continue
		}
		if !xid.Continue(ch) {
			return fmt.Errorf("classifier name %q: invalid character %q", name, ch)
		}
	}
	return nil
}

func checkScopePath(scopePath string) error {
	if scopePath == "" {
		return nil // root scope
	}
	if err := module.CheckImportPath(scopePath); err != nil {
		return fmt.Errorf("scope path %q: %w", scopePath, err)
	}
	return nil
}

package classifier

import "strings"

// Scope is a node in the lexical scope chain of the host program. Scopes
// exist so classifier declarations carry their declaring path; the engine
// itself imposes no visibility rules beyond scope-qualified identity.
type Scope struct {
	parent *Scope
	name   string
}

// NewScope creates a scope under parent. A nil parent makes a root.
func NewScope(parent *Scope, name string) *Scope {
	return &Scope{parent: parent, name: name}
}

func (s *Scope) Child(name string) *Scope {
	return NewScope(s, name)
}

// Path renders the scope chain as a slash-separated path, outermost first.
// The root scope's empty name contributes nothing.
func (s *Scope) Path() string {
	var parts []string
	for p := s; p != nil; p = p.parent {
		if p.name != "" {
			parts = append(parts, p.name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Declare interns name against this scope's path.
func (s *Scope) Declare(r *Registry, name string, opts ...InternOption) (ID, error) {
	return r.Intern(s.Path(), name, opts...)
}

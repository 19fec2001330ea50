// Package scope implements the scope tree and C++ name-lookup
// algorithms (spec §3 "Scope", §4.K): unqualified and qualified
// lookup, inline-namespace transparency, using-directives, and the
// extendable-namespace rule that governs namespace reopening.
package scope

import (
	"sort"

	"github.com/cppfront/cppfront/internal/frontend/ast"
	"golang.org/x/exp/maps"
)

// Flags is a bitset of scope properties (spec §3 "flags: ScopeKind
// bitset").
type Flags uint32

const (
	FlagNamespace Flags = 1 << iota
	FlagInline
	FlagTranslationUnit
)

// Child is either a declaration or a nested scope (spec §3 "Child =
// Decl(&AstDecl) | Scope(ScopeRef)").
type Child struct {
	Decl  *ast.Decl
	Scope *Scope
}

func declChild(d *ast.Decl) Child { return Child{Decl: d} }
func scopeChild(s *Scope) Child   { return Child{Scope: s} }
func (c Child) IsScope() bool     { return c.Scope != nil }

// Scope is one node of the scope tree (spec §3). The tree's root is
// the translation unit; parent is set once, at insertion time, and
// never changes (spec invariant).
type Scope struct {
	Flags             Flags
	Parent            *Scope
	Childs            map[string][]Child
	NamelessChilds    []Child
	InlinedNamespaces []*Scope
	UsingNamespaces   []*Scope
	CausingDecl       *ast.Decl
}

// New builds a scope under parent (nil for the translation-unit
// root), tagged with flags and the declaration that introduced it.
func New(parent *Scope, flags Flags, causingDecl *ast.Decl) *Scope {
	return &Scope{
		Flags:       flags,
		Parent:      parent,
		Childs:      map[string][]Child{},
		CausingDecl: causingDecl,
	}
}

// IsNamespace reports whether this scope belongs to a namespace
// (rather than e.g. a block or the translation unit).
func (s *Scope) IsNamespace() bool { return s.Flags&FlagNamespace != 0 }

// IsInline reports whether this scope is an inline namespace, whose
// members are visible to lookup performed on its parent (spec §4.K).
func (s *Scope) IsInline() bool { return s.Flags&FlagInline != 0 }

// AddDecl inserts a named declaration as a child of s. An empty name
// (e.g. an anonymous enum) goes to NamelessChilds instead.
func (s *Scope) AddDecl(name string, d *ast.Decl) {
	if name == "" {
		s.NamelessChilds = append(s.NamelessChilds, declChild(d))
		return
	}
	s.Childs[name] = append(s.Childs[name], declChild(d))
}

// AddChildScope inserts a nested scope (e.g. a namespace body) as a
// named child of s, and sets the link that makes it inline-transparent
// if it is one (spec §4.K).
func (s *Scope) AddChildScope(name string, child *Scope) {
	if name == "" {
		s.NamelessChilds = append(s.NamelessChilds, scopeChild(child))
	} else {
		s.Childs[name] = append(s.Childs[name], scopeChild(child))
	}
	if child.IsInline() {
		s.InlinedNamespaces = append(s.InlinedNamespaces, child)
	}
}

// AddUsingNamespace records a using-directive target, consulted by
// QualifiedLookup when nothing else matches (spec §4.K).
func (s *Scope) AddUsingNamespace(target *Scope) {
	s.UsingNamespaces = append(s.UsingNamespaces, target)
}

// sortedNames returns s.Childs' keys in a deterministic order, used
// anywhere lookup results need to be reproducible across runs.
func sortedNames(m map[string][]Child) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

// Names returns every declared child name in s, sorted, for deterministic
// dumps and diagnostics (spec §4.K; `--printDependencyTree`'s rendering
// follows the same sorted-keys convention).
func (s *Scope) Names() []string {
	return sortedNames(s.Childs)
}

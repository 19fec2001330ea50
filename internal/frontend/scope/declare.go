package scope

import (
	"github.com/cppfront/cppfront/internal/frontend/ast"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
)

// DeclareNamespace implements spec §4.K's reopen-vs-create rule: a
// namespace declaration either extends an existing namespace scope of
// the same name (nested directly or via an inline namespace) or
// introduces a brand new one. It returns the scope new declarations
// inside the namespace body should be added to.
//
// Reopening with a mismatched inline-ness is ill-formed (spec §4.K) and
// raises CodeSemInlineMismatch without changing which scope is used —
// the original scope's inline-ness wins so later lookups stay
// consistent.
func DeclareNamespace(parent *Scope, decl *ast.Decl, bag *diagnostics.Bag, path string) *Scope {
	if decl.Name != "" {
		if existing := ExtendableNamespaceLookup(parent, decl.Name); existing != nil {
			if existing.IsInline() != decl.Inline {
				bag.Add(diagnostics.New(diagnostics.CodeSemInlineMismatch, diagnostics.SeverityError, path, decl.Line, 0, map[string]any{
					"Name": decl.Name,
				}))
			}
			if existing.CausingDecl != nil {
				ast.AddExtension(existing.CausingDecl, decl)
			}
			return existing
		}
	}

	flags := FlagNamespace
	if decl.Inline {
		flags |= FlagInline
	}
	child := New(parent, flags, decl)
	parent.AddChildScope(decl.Name, child)
	return child
}

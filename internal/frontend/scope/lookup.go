package scope

// Result is one matched entry from a lookup, paired with the scope
// that actually owns it (distinct from the scope lookup started at,
// once inline namespaces or using-directives are involved).
type Result struct {
	Owner *Scope
	Child Child
}

// UnqualifiedLookup implements spec §4.K unqualified name lookup:
// search the current scope and, transitively, any inline namespaces
// nested directly in it; if nothing is found, repeat one level up.
// The walk stops at the first scope level that yields any match, even
// if the match set there is not what the caller wanted (ordinary C++
// shadowing semantics) — using-directives are never consulted by
// unqualified lookup (spec §4.K).
func UnqualifiedLookup(start *Scope, name string) []Result {
	for s := start; s != nil; s = s.Parent {
		if res := namespaceChildrenWithInline(s, name); len(res) > 0 {
			return res
		}
	}
	return nil
}

// namespaceChildrenWithInline collects every Child named `name`
// directly in s, plus the same name from any namespace inlined into
// s, recursively (an inline namespace's members are found as if they
// were declared in the enclosing namespace too).
func namespaceChildrenWithInline(s *Scope, name string) []Result {
	var out []Result
	for _, c := range s.Childs[name] {
		out = append(out, Result{Owner: s, Child: c})
	}
	for _, inl := range s.InlinedNamespaces {
		out = append(out, namespaceChildrenWithInline(inl, name)...)
	}
	return out
}

// QualifiedLookup implements spec §4.K qualified lookup ("ns::name"):
// collect direct and inline-namespace members of s; if that set is
// empty, fall through to every using-directive target registered on
// s and union their results instead. Unlike UnqualifiedLookup this
// never continues to s.Parent — a qualified-id's left-hand scope is
// fixed by the qualifier.
func QualifiedLookup(s *Scope, name string) []Result {
	if direct := namespaceChildrenWithInline(s, name); len(direct) > 0 {
		return direct
	}
	var out []Result
	for _, u := range s.UsingNamespaces {
		out = append(out, QualifiedLookup(u, name)...)
	}
	return out
}

// ExtendableNamespaceLookup finds an existing namespace-kind child of
// s (or of a namespace inlined into s) named `name`, so a namespace
// declaration can decide whether it is reopening that scope or
// introducing a new one (spec §4.K "a namespace re-declaration with
// the same name... becomes an extension of the original").
// Using-directives are not consulted: only a namespace actually
// nested in s is extendable from s.
func ExtendableNamespaceLookup(s *Scope, name string) *Scope {
	for _, c := range s.Childs[name] {
		if c.IsScope() && c.Scope.IsNamespace() {
			return c.Scope
		}
	}
	for _, inl := range s.InlinedNamespaces {
		if found := ExtendableNamespaceLookup(inl, name); found != nil {
			return found
		}
	}
	return nil
}

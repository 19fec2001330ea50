package parser

import (
	"github.com/cppfront/cppfront/internal/frontend/scope"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// parseNestedNameSpecifier consumes a "::", "identifier::", or chained
// "a::b::" prefix and resolves it scope-by-scope as it goes (spec
// §4.I). present is false if no NNS tokens were consumed at all; a
// present NNS whose prefix could not be resolved returns (nil, true)
// so downstream semantic actions can degrade gracefully instead of
// aborting the parse (spec §4.I "unresolved prefixes yield an empty
// scope").
func (p *Parser) parseNestedNameSpecifier(c *Cursor) (resolved *scope.Scope, present bool) {
	var cur *scope.Scope
	unresolved := false

	if c.CheckPunct("::") {
		c.Advance()
		cur = p.global
		present = true
	}

	for c.Peek(0).Kind == token.KindIdentifier &&
		c.Peek(1).Kind == token.KindPunctuator && c.Peek(1).Punct == "::" {
		idTok := c.Advance()
		c.Advance() // "::"
		present = true
		name := p.interner.Lookup(idTok.Ident)

		var results []scope.Result
		if cur == nil && !unresolved {
			results = scope.UnqualifiedLookup(p.current, name)
		} else if cur != nil {
			results = scope.QualifiedLookup(cur, name)
		}

		next := firstScope(results)
		if next == nil {
			unresolved = true
			cur = nil
			continue
		}
		cur = next
	}

	if !present {
		return nil, false
	}
	if unresolved {
		return nil, true
	}
	return cur, true
}

// firstScope returns the first result that names a nested scope
// (namespace), ignoring ordinary declaration matches — an NNS
// component must itself be scope-bearing to continue resolution.
func firstScope(results []scope.Result) *scope.Scope {
	for _, r := range results {
		if r.Child.IsScope() {
			return r.Child.Scope
		}
	}
	return nil
}

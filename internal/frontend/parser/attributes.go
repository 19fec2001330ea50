package parser

import (
	"github.com/cppfront/cppfront/internal/frontend/ast"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// attrSpec describes one registered attribute: whether it takes a
// parenthesized argument list, and the semantic action it runs
// against the declaration it attached to (spec §4.I "a central
// attribute registry maps (namespace?, name) -> {requires_parens,
// parser_fn}").
type attrSpec struct {
	requiresParens bool
	action         func(p *Parser, el ast.AttrElement, d *ast.Decl)
}

// registry holds the three built-in attributes the core recognizes.
// Keys are "namespace::name", or bare "name" for the global
// namespace.
var registry = map[string]attrSpec{
	"unused": {
		requiresParens: false,
		action:         func(p *Parser, el ast.AttrElement, d *ast.Decl) {},
	},
	// tag-decl is a marker attribute: its presence alone is the
	// signal, so the action is a no-op and recognition happens in
	// the registry lookup.
	"tag-decl": {
		requiresParens: false,
		action:         func(p *Parser, el ast.AttrElement, d *ast.Decl) {},
	},
	"check-symbol-match-tag": {
		requiresParens: true,
		action: func(p *Parser, el ast.AttrElement, d *ast.Decl) {
			if el.Args != d.Name {
				p.diag(diagnostics.CodeSynBadAttrLoc, map[string]any{
					"Got": el.Args, "Expected": d.Name,
				})
			}
		},
	},
}

// parseAttributes consumes zero or more leading "[[ ... ]]" and
// "alignas(...)" specifiers, in whichever order the source gives them
// (spec §4.I).
func (p *Parser) parseAttributes(c *Cursor) []*ast.Attribute {
	var out []*ast.Attribute
	for {
		switch {
		case c.CheckPunct("[") && c.Peek(1).Kind == token.KindPunctuator && c.Peek(1).Punct == "[":
			c.Advance()
			c.Advance()
			out = append(out, p.parseAttributeSpecifier(c))
		case c.CheckKeyword("alignas"):
			c.Advance()
			out = append(out, p.parseAlignAs(c))
		default:
			return out
		}
	}
}

// parseAttributeSpecifier parses the body of a "[[ ... ]]" list, just
// after the opening "[[" was consumed: optional "using NS :", then a
// comma-separated list of "ns::name(args)" elements, up to "]]".
func (p *Parser) parseAttributeSpecifier(c *Cursor) *ast.Attribute {
	attr := p.arena.NewAttribute(ast.AttrCxx)

	if c.CheckKeyword("using") {
		c.Advance()
		if id, ok := c.ConsumeIf(isIdentifier); ok {
			attr.UsingNamespace = p.interner.Lookup(id.Ident)
		}
		c.ConsumePunct(":")
	}

	for !(c.CheckPunct("]") && c.Peek(1).Kind == token.KindPunctuator && c.Peek(1).Punct == "]") && !c.AtEnd() {
		attr.Elements = append(attr.Elements, p.parseAttributeElement(c, attr.UsingNamespace))
		if !c.ConsumePunct(",") {
			break
		}
	}
	c.ConsumePunct("]")
	c.ConsumePunct("]")
	return attr
}

// parseAttributeElement parses one "[ns::]name[(args)]" entry and
// looks it up in the registry, warning on an unrecognized attribute
// (spec §4.I "unknown attributes warn").
func (p *Parser) parseAttributeElement(c *Cursor, inheritedNS string) ast.AttrElement {
	var el ast.AttrElement
	el.Namespace = inheritedNS

	first, ok := c.ConsumeIf(isIdentifier)
	if !ok {
		return el
	}
	name := p.interner.Lookup(first.Ident)
	if c.CheckPunct(":") && c.Peek(1).Kind == token.KindPunctuator && c.Peek(1).Punct == ":" {
		c.Advance()
		c.Advance()
		el.Namespace = name
		if second, ok := c.ConsumeIf(isIdentifier); ok {
			name = p.interner.Lookup(second.Ident)
		}
	}
	el.Name = name

	spec, known := registry[registryKey(el.Namespace, el.Name)]
	if !known {
		p.bag.Add(diagnostics.New(diagnostics.CodeSynBadAttrLoc, diagnostics.SeverityWarning, p.path, 0, 0,
			map[string]any{"Got": el.Name}))
	}

	if c.CheckPunct("(") {
		c.Advance()
		close := c.MatchBalanced("(", ")")
		if close < 0 {
			return el
		}
		el.RequiresParens = true
		el.Args = p.spellRange(c, c.Pos(), close)
		c.MoveBack(close + 1)
	} else if known && spec.requiresParens {
		p.diag(diagnostics.CodeSynBadAttrLoc, map[string]any{"Got": el.Name})
	}

	return el
}

// parseAlignAs parses "alignas(...)" just after the keyword was
// consumed, keeping the raw operand spelling (constant evaluation is
// out of scope, spec §1 Non-goals).
func (p *Parser) parseAlignAs(c *Cursor) *ast.Attribute {
	attr := p.arena.NewAttribute(ast.AttrAlignAs)
	if !c.ConsumePunct("(") {
		return attr
	}
	close := c.MatchBalanced("(", ")")
	if close < 0 {
		return attr
	}
	attr.AlignAsArg = p.spellRange(c, c.Pos(), close)
	c.MoveBack(close + 1)
	return attr
}

// applyAttributes runs each attribute's registered semantic action
// against the declaration it attached to (spec §4.I "three built-in
// attributes ... feed semantic actions at declaration time").
func (p *Parser) applyAttributes(attrs []*ast.Attribute, d *ast.Decl) {
	d.Attrs = attrs
	for _, a := range attrs {
		if a.Kind != ast.AttrCxx {
			continue
		}
		for _, el := range a.Elements {
			if spec, ok := registry[registryKey(el.Namespace, el.Name)]; ok {
				spec.action(p, el, d)
			}
		}
	}
}

func registryKey(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "::" + name
}

func isIdentifier(t token.Token) bool { return t.Kind == token.KindIdentifier }

// spellRange renders the punctuator/identifier spellings of toks in
// [start,end) as a single raw string, for attribute/alignas argument
// text that is kept unparsed.
func (p *Parser) spellRange(c *Cursor, start, end int) string {
	var out string
	for i := start; i < end; i++ {
		t := c.TokenAt(i)
		switch t.Kind {
		case token.KindIdentifier:
			out += p.interner.Lookup(t.Ident)
		case token.KindPunctuator:
			out += t.Punct
		default:
			out += t.Kind.String()
		}
	}
	return out
}

package parser

import (
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/ast"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/scope"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// Parser drives one translation unit's declaration grammar, threading
// an AST arena and a scope tree through semantic actions as it goes
// (spec §4.I). One Parser is used for exactly one unit and is never
// shared across goroutines (spec §5).
type Parser struct {
	path     string
	interner *token.Interner
	bag      *diagnostics.Bag
	arena    *ast.Arena

	global  *scope.Scope
	current *scope.Scope

	state ModuleImportState
}

// New builds a Parser for one translation unit's already-lexed token
// stream.
func New(path string, interner *token.Interner, bag *diagnostics.Bag) *Parser {
	global := scope.New(nil, scope.FlagTranslationUnit, nil)
	return &Parser{
		path:     path,
		interner: interner,
		bag:      bag,
		arena:    ast.NewArena(),
		global:   global,
		current:  global,
	}
}

// Scope returns the translation unit's root scope, for inspection by
// later passes (sema, lookup-driven codegen, ...).
func (p *Parser) Scope() *scope.Scope { return p.global }

func (p *Parser) diag(code diagnostics.Code, params map[string]any) {
	p.bag.Add(diagnostics.New(code, diagnostics.SeverityError, p.path, 0, 0, params))
}

// Parse consumes the whole token stream and returns the translation
// unit's flat top-level declaration sequence (spec §3 "Tu").
func (p *Parser) Parse(toks []token.Token) *ast.Tu {
	c := NewCursor(toks)
	tu := &ast.Tu{Path: p.path}
	for !c.AtEnd() {
		if d := p.parseTopLevel(c); d != nil {
			tu.Decls = append(tu.Decls, d)
		}
	}
	return tu
}

// parseTopLevel consumes the module/import leading operators (already
// extracted for dependency purposes by the module scanner, but
// re-walked here to validate ordering and advance
// ModuleImportState) and dispatches ordinary declarations.
func (p *Parser) parseTopLevel(c *Cursor) *ast.Decl {
	switch {
	case c.CheckKeyword("export") && c.Peek(1).Kind == token.KindModule:
		c.Advance()
		p.parseModuleDecl(c)
		return nil
	case c.Peek(0).Kind == token.KindModule:
		p.parseModuleDecl(c)
		return nil
	case c.Peek(0).Kind == token.KindImport:
		p.parseImportDecl(c)
		return nil
	default:
		if !p.state.onCode() {
			p.diag(diagnostics.CodeModKindMismatch, map[string]any{
				"Scanned": "module/import section", "Parsed": "code",
			})
		}
		return p.parseDeclaration(c)
	}
}

func (p *Parser) parseModuleDecl(c *Cursor) {
	c.Advance() // 'module'
	if c.CheckPunct(":") {
		c.Advance()
		c.ConsumeKeyword("private")
		skipToSemicolon(c)
		if !p.state.onPrivateFragment() {
			p.diag(diagnostics.CodeModKindMismatch, map[string]any{
				"Scanned": "private-module-fragment", "Parsed": p.state.String(),
			})
		}
		return
	}
	skipToSemicolon(c)
	if !p.state.onModuleDecl() {
		p.diag(diagnostics.CodeModKindMismatch, map[string]any{
			"Scanned": "module-declaration", "Parsed": p.state.String(),
		})
	}
}

func (p *Parser) parseImportDecl(c *Cursor) {
	c.Advance() // 'import'
	skipToSemicolon(c)
	if !p.state.onImport() {
		p.diag(diagnostics.CodeModKindMismatch, map[string]any{
			"Scanned": "import-declaration", "Parsed": p.state.String(),
		})
	}
}

func skipToSemicolon(c *Cursor) {
	for !c.AtEnd() && !c.CheckPunct(";") {
		c.Advance()
	}
	c.ConsumePunct(";")
}

// parseDeclaration dispatches to the declaration forms the core
// implements (spec §4.I): empty, asm, enum, namespace, using-namespace.
// Anything else is skipped through the next semicolon with a
// diagnostic, so one bad declaration does not derail the whole unit
// (spec §7 recovery-and-continue).
func (p *Parser) parseDeclaration(c *Cursor) *ast.Decl {
	attrs := p.parseAttributes(c)

	switch {
	case c.CheckPunct(";"):
		c.Advance()
		d := p.arena.NewDecl(ast.DeclEmpty)
		p.applyAttributes(attrs, d)
		return d

	case c.CheckKeyword("asm"):
		return p.parseAsm(c, attrs)

	case c.CheckKeyword("enum"):
		return p.parseEnum(c, attrs)

	case c.CheckKeyword("inline") && c.Peek(1).Kind == token.KindKeyword && c.Peek(1).KeywordID == "namespace":
		c.Advance()
		return p.parseNamespace(c, attrs, true)

	case c.CheckKeyword("namespace"):
		return p.parseNamespace(c, attrs, false)

	case c.CheckKeyword("using") && c.Peek(1).Kind == token.KindKeyword && c.Peek(1).KeywordID == "namespace":
		return p.parseUsingNamespace(c, attrs)

	default:
		p.diag(diagnostics.CodeSynUnexpected, map[string]any{
			"Got": tokenSpelling(p, c.Peek(0)), "Expected": "a declaration",
		})
		skipToSemicolon(c)
		return nil
	}
}

func tokenSpelling(p *Parser, t token.Token) string {
	switch t.Kind {
	case token.KindIdentifier:
		return p.interner.Lookup(t.Ident)
	case token.KindKeyword:
		return t.KeywordID
	case token.KindPunctuator:
		return t.Punct
	default:
		return t.Kind.String()
	}
}

// parseAsm implements `asm ( "text" ) ;` (spec §4.I declaration set).
func (p *Parser) parseAsm(c *Cursor, attrs []*ast.Attribute) *ast.Decl {
	c.Advance() // 'asm'
	d := p.arena.NewDecl(ast.DeclAsm)
	if c.ConsumePunct("(") {
		if s, ok := c.ConsumeIf(func(t token.Token) bool { return t.Kind == token.KindStringLiteral }); ok {
			d.AsmText = s.StringValue
		}
		if !c.ConsumePunct(")") {
			p.diag(diagnostics.CodeSynMismatched, map[string]any{"Open": "("})
		}
	}
	if !c.ConsumePunct(";") {
		p.diag(diagnostics.CodeSynMissingSemi, nil)
	}
	p.applyAttributes(attrs, d)
	return d
}

// parseEnum implements the core's custom enum form (spec §4.I:
// "enum (custom __rustycpp__ enum)"): `enum [class] name [: type]
// { enumerator [= expr], ... } ;`.
func (p *Parser) parseEnum(c *Cursor, attrs []*ast.Attribute) *ast.Decl {
	c.Advance() // 'enum'
	d := p.arena.NewDecl(ast.DeclEnum)

	if c.CheckKeyword("class") || c.CheckKeyword("struct") {
		c.Advance()
		d.IsEnumClass = true
	}
	if id, ok := c.ConsumeIf(isIdentifier); ok {
		d.Name = p.interner.Lookup(id.Ident)
	}
	if c.ConsumePunct(":") {
		var words []string
		for c.Peek(0).Kind == token.KindIdentifier || c.Peek(0).Kind == token.KindKeyword {
			words = append(words, tokenSpelling(p, c.Advance()))
		}
		if len(words) > 0 {
			d.Underlying = p.arena.NewType(ast.TypeBuiltin)
			d.Underlying.BuiltinName = strings.Join(words, " ")
		}
	}
	if c.ConsumePunct("{") {
		for !c.AtEnd() && !c.CheckPunct("}") {
			var e ast.Enumerator
			if id, ok := c.ConsumeIf(isIdentifier); ok {
				e.Name = p.interner.Lookup(id.Ident)
			} else {
				break
			}
			if c.ConsumePunct("=") {
				e.Value = p.spellConstantExpr(c)
			}
			d.Enumerators = append(d.Enumerators, e)
			if !c.ConsumePunct(",") {
				break
			}
		}
		if !c.ConsumePunct("}") {
			p.diag(diagnostics.CodeSynMismatched, map[string]any{"Open": "{"})
		}
	}
	if !c.ConsumePunct(";") {
		p.diag(diagnostics.CodeSynMissingSemi, nil)
	}

	p.applyAttributes(attrs, d)
	p.current.AddDecl(d.Name, d)
	return d
}

// spellConstantExpr consumes and spells the raw tokens of an
// enumerator initializer up to the next "," or "}" at depth 0;
// constant evaluation is out of scope (spec §1 Non-goals).
func (p *Parser) spellConstantExpr(c *Cursor) string {
	start := c.Pos()
	depth := 0
	for !c.AtEnd() {
		if c.CheckPunct("{") || c.CheckPunct("(") || c.CheckPunct("[") {
			depth++
		} else if c.CheckPunct("}") || c.CheckPunct(")") || c.CheckPunct("]") {
			if depth == 0 {
				break
			}
			depth--
		} else if depth == 0 && c.CheckPunct(",") {
			break
		}
		c.Advance()
	}
	return p.spellRange(c, start, c.Pos())
}

// parseNamespace implements namespace declarations, including
// extensions of a previously opened namespace of the same name (spec
// §4.I / §4.K): `[inline] namespace name { decls }`.
func (p *Parser) parseNamespace(c *Cursor, attrs []*ast.Attribute, inline bool) *ast.Decl {
	c.Advance() // 'namespace'
	d := p.arena.NewDecl(ast.DeclNamespace)
	d.Inline = inline

	if id, ok := c.ConsumeIf(isIdentifier); ok {
		d.Name = p.interner.Lookup(id.Ident)
	}

	nsScope := scope.DeclareNamespace(p.current, d, p.bag, p.path)
	p.applyAttributes(attrs, d)

	if !c.ConsumePunct("{") {
		p.diag(diagnostics.CodeSynMismatched, map[string]any{"Open": "{"})
		return d
	}

	outer := p.current
	p.current = nsScope
	for !c.AtEnd() && !c.CheckPunct("}") {
		if child := p.parseDeclaration(c); child != nil {
			d.Body = append(d.Body, child)
		}
	}
	p.current = outer

	if !c.ConsumePunct("}") {
		p.diag(diagnostics.CodeSynMismatched, map[string]any{"Open": "{"})
	}
	return d
}

// parseUsingNamespace implements `using namespace nested-name ;`
// (spec §4.I), resolving the target scope immediately so later
// qualified lookups through it are ready to use.
func (p *Parser) parseUsingNamespace(c *Cursor, attrs []*ast.Attribute) *ast.Decl {
	c.Advance() // 'using'
	c.Advance() // 'namespace'
	d := p.arena.NewDecl(ast.DeclUsingNamespace)

	start := c.Pos()
	target, present := p.parseNestedNameSpecifier(c)
	for i := start; i < c.Pos(); i++ {
		if t := c.TokenAt(i); t.Kind == token.KindIdentifier {
			d.NestedName = append(d.NestedName, p.interner.Lookup(t.Ident))
		}
	}
	if id, ok := c.ConsumeIf(isIdentifier); ok {
		name := p.interner.Lookup(id.Ident)
		d.NestedName = append(d.NestedName, name)
		if target != nil {
			if found := firstScope(scope.QualifiedLookup(target, name)); found != nil {
				target = found
			} else {
				target = nil
			}
		} else if !present {
			if found := firstScope(scope.UnqualifiedLookup(p.current, name)); found != nil {
				target = found
			} else {
				target = nil
			}
		}
	}

	if target != nil {
		p.current.AddUsingNamespace(target)
	} else {
		p.diag(diagnostics.CodeSemLookupFailed, map[string]any{
			"Name": joinNestedName(d.NestedName),
		})
	}

	if !c.ConsumePunct(";") {
		p.diag(diagnostics.CodeSynMissingSemi, nil)
	}
	p.applyAttributes(attrs, d)
	return d
}

func joinNestedName(parts []string) string {
	out := ""
	for i, s := range parts {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}

package parser

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/ast"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

func ident(in *token.Interner, name string) token.Token {
	return token.Token{Kind: token.KindIdentifier, Ident: in.Intern(name)}
}

func kw(name string) token.Token { return token.Token{Kind: token.KindKeyword, KeywordID: name} }

func punct(p string) token.Token { return token.Token{Kind: token.KindPunctuator, Punct: p} }

func eof() token.Token { return token.Token{Kind: token.KindEOF} }

func TestParse_EmptyDeclaration(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	tu := p.Parse([]token.Token{punct(";"), eof()})
	if len(tu.Decls) != 1 || tu.Decls[0].Kind != ast.DeclEmpty {
		t.Fatalf("got %+v", tu.Decls)
	}
	if len(bag.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.All())
	}
}

func TestParse_Asm(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("asm"), punct("("), {Kind: token.KindStringLiteral, StringValue: "nop"}, punct(")"), punct(";"), eof(),
	}
	tu := p.Parse(toks)
	if len(tu.Decls) != 1 || tu.Decls[0].Kind != ast.DeclAsm || tu.Decls[0].AsmText != "nop" {
		t.Fatalf("got %+v", tu.Decls)
	}
}

func TestParse_Enum(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("enum"), kw("class"), ident(in, "Color"), punct(":"), ident(in, "int"),
		punct("{"), ident(in, "Red"), punct(","), ident(in, "Blue"), punct("}"), punct(";"), eof(),
	}
	tu := p.Parse(toks)
	if len(tu.Decls) != 1 {
		t.Fatalf("got %+v", tu.Decls)
	}
	d := tu.Decls[0]
	if d.Kind != ast.DeclEnum || d.Name != "Color" || !d.IsEnumClass || d.Underlying.BuiltinName != "int" {
		t.Fatalf("got %+v", d)
	}
	if len(d.Enumerators) != 2 || d.Enumerators[0].Name != "Red" || d.Enumerators[1].Name != "Blue" {
		t.Fatalf("got enumerators %+v", d.Enumerators)
	}
}

func TestParse_NamespaceAndLookup(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("namespace"), ident(in, "app"), punct("{"),
		kw("enum"), ident(in, "Widget"), punct("{"), punct("}"), punct(";"),
		punct("}"), eof(),
	}
	tu := p.Parse(toks)
	if len(tu.Decls) != 1 || tu.Decls[0].Kind != ast.DeclNamespace || tu.Decls[0].Name != "app" {
		t.Fatalf("got %+v", tu.Decls)
	}
	if len(tu.Decls[0].Body) != 1 || tu.Decls[0].Body[0].Name != "Widget" {
		t.Fatalf("expected Widget nested in namespace body, got %+v", tu.Decls[0].Body)
	}
}

func TestParse_NamespaceReopenExtends(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("namespace"), ident(in, "app"), punct("{"), punct("}"),
		kw("namespace"), ident(in, "app"), punct("{"), punct("}"),
		eof(),
	}
	tu := p.Parse(toks)
	if len(tu.Decls) != 2 {
		t.Fatalf("got %+v", tu.Decls)
	}
	if tu.Decls[1].Extends != tu.Decls[0] {
		t.Fatalf("expected second namespace to extend the first, got %+v", tu.Decls[1])
	}
}

func TestParse_NamespaceInlineMismatchDiagnoses(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("namespace"), ident(in, "app"), punct("{"), punct("}"),
		kw("inline"), kw("namespace"), ident(in, "app"), punct("{"), punct("}"),
		eof(),
	}
	p.Parse(toks)

	all := bag.All()
	if len(all) != 1 || all[0].Code != diagnostics.CodeSemInlineMismatch {
		t.Fatalf("expected inline-mismatch diagnostic, got %+v", all)
	}
}

func TestParse_UsingNamespaceResolves(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("namespace"), ident(in, "app"), punct("{"), punct("}"),
		kw("using"), kw("namespace"), ident(in, "app"), punct(";"),
		eof(),
	}
	p.Parse(toks)

	if len(bag.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.All())
	}
	if len(p.global.UsingNamespaces) != 1 {
		t.Fatalf("expected using-directive recorded on global scope")
	}
}

func TestParse_UsingNamespaceUnresolvedDiagnoses(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		kw("using"), kw("namespace"), ident(in, "missing"), punct(";"), eof(),
	}
	p.Parse(toks)

	all := bag.All()
	if len(all) != 1 || all[0].Code != diagnostics.CodeSemLookupFailed {
		t.Fatalf("expected lookup-failed diagnostic, got %+v", all)
	}
}

func TestParse_ModuleAfterCodeDiagnoses(t *testing.T) {
	in := token.NewInterner()
	var bag diagnostics.Bag
	p := New("t.cpp", in, &bag)

	toks := []token.Token{
		punct(";"),
		{Kind: token.KindModule}, ident(in, "foo"), punct(";"),
		eof(),
	}
	p.Parse(toks)

	found := false
	for _, d := range bag.All() {
		if d.Code == diagnostics.CodeModKindMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a module-kind-mismatch diagnostic after code section started, got %+v", bag.All())
	}
}

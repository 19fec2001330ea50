package modules

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/token"
)

func ident(in *token.Interner, name string) token.Token {
	return token.Token{Kind: token.KindIdentifier, Ident: in.Intern(name)}
}

func punct(p string) token.Token { return token.Token{Kind: token.KindPunctuator, Punct: p} }

func TestScan_ModuleDecl(t *testing.T) {
	in := token.NewInterner()
	toks := []token.Token{
		{Kind: token.KindModule}, ident(in, "foo"), punct(";"),
	}
	ops := Scan(toks, in)
	if len(ops) != 1 || ops[0].Kind != OpModule || ops[0].Name != "foo" {
		t.Fatalf("got %+v", ops)
	}
}

func TestScan_ExportModuleDecl(t *testing.T) {
	in := token.NewInterner()
	toks := []token.Token{
		{Kind: token.KindKeyword, KeywordID: "export"}, {Kind: token.KindModule},
		ident(in, "foo"), punct(";"),
	}
	ops := Scan(toks, in)
	if len(ops) != 1 || ops[0].Kind != OpExportModule || ops[0].Name != "foo" {
		t.Fatalf("got %+v", ops)
	}
}

func TestScan_PartitionName(t *testing.T) {
	in := token.NewInterner()
	toks := []token.Token{
		{Kind: token.KindModule}, ident(in, "foo"), punct(":"), ident(in, "part"), punct(";"),
	}
	ops := Scan(toks, in)
	if len(ops) != 1 || ops[0].Name != "foo:part" {
		t.Fatalf("got %+v", ops)
	}
}

func TestScan_Import(t *testing.T) {
	in := token.NewInterner()
	toks := []token.Token{
		{Kind: token.KindImport}, ident(in, "bar"), punct(";"),
	}
	ops := Scan(toks, in)
	if len(ops) != 1 || ops[0].Kind != OpImport || ops[0].Name != "bar" {
		t.Fatalf("got %+v", ops)
	}
}

func TestScan_ImportHeader(t *testing.T) {
	in := token.NewInterner()
	toks := []token.Token{
		{Kind: token.KindImport}, {Kind: token.KindImportableHeaderName, HeaderPath: "vector"}, punct(";"),
	}
	ops := Scan(toks, in)
	if len(ops) != 1 || ops[0].Kind != OpImportHeader || ops[0].Name != "vector" {
		t.Fatalf("got %+v", ops)
	}
}

func TestValidModuleName(t *testing.T) {
	cases := map[string]bool{
		"foo":       true,
		"foo.bar":   true,
		"foo:part":  true,
		"":          false,
		"1foo":      false,
		"foo..bar":  false,
	}
	for name, want := range cases {
		if got := validModuleName(name); got != want {
			t.Errorf("validModuleName(%q) = %v, want %v", name, got, want)
		}
	}
}

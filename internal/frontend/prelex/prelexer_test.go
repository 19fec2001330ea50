package prelex

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

func lexAll(t *testing.T, src string) []token.PreToken {
	t.Helper()
	f := source.New(1, "t.cpp", src)
	p := New(f)
	var out []token.PreToken
	for {
		tk, _, _, ok, diag := p.Next()
		if diag != nil {
			t.Fatalf("unexpected diagnostic: %+v", *diag)
		}
		if !ok {
			break
		}
		out = append(out, tk)
	}
	return out
}

func nonTrivia(toks []token.PreToken) []token.PreToken {
	var out []token.PreToken
	for _, t := range toks {
		if t.IsTrivia() || t.Kind == token.PreNewline {
			continue
		}
		out = append(out, t)
	}
	return out
}

func TestPreLexer_IdentifiersKeywordsPunctuators(t *testing.T) {
	toks := nonTrivia(lexAll(t, "int main() { return 0; }"))
	want := []token.PreKind{
		token.PreKeyword, token.PreIdent, token.PreOperatorPunctuator, token.PreOperatorPunctuator,
		token.PreOperatorPunctuator, token.PreKeyword, token.PrePPNumber, token.PreOperatorPunctuator,
		token.PreOperatorPunctuator,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v want %v (%+v)", i, toks[i].Kind, k, toks[i])
		}
	}
}

func TestPreLexer_DigraphLessColonColonSpecialCase(t *testing.T) {
	// a<::b> should lex '<' as a single punctuator, not the '[' digraph,
	// because it's followed by "::" rather than ":>" (spec §4.B).
	toks := nonTrivia(lexAll(t, "a<::b>"))
	if toks[1].Text != "<" {
		t.Fatalf("expected bare '<' , got %+v", toks[1])
	}
}

func TestPreLexer_RawString(t *testing.T) {
	toks := nonTrivia(lexAll(t, `R"delim(hello (world))delim"`))
	if len(toks) != 1 || toks[0].Kind != token.PreRawStringLiteral {
		t.Fatalf("expected single raw string literal, got %+v", toks)
	}
}

func TestPreLexer_EncodedStringPrefix(t *testing.T) {
	toks := nonTrivia(lexAll(t, `u8"hi"`))
	if len(toks) != 1 || toks[0].Kind != token.PreStringLiteral || toks[0].Text != `u8"hi"` {
		t.Fatalf("expected u8-prefixed string literal, got %+v", toks)
	}
}

func TestPreLexer_LineSplice(t *testing.T) {
	toks := nonTrivia(lexAll(t, "in\\\nt x;"))
	if toks[0].Kind != token.PreKeyword || toks[0].Text != "int" {
		t.Fatalf("expected splice to merge into keyword 'int', got %+v", toks[0])
	}
}

func TestPreLexer_HeaderNameMode(t *testing.T) {
	f := source.New(1, "t.cpp", `<vector>`)
	p := New(f)
	p.EnterHeaderNameMode()
	tk, _, _, ok, diag := p.Next()
	if diag != nil || !ok {
		t.Fatalf("unexpected error scanning header name")
	}
	if tk.Kind != token.PreHeaderName || tk.Text != "<vector>" {
		t.Fatalf("expected header name, got %+v", tk)
	}
}

func TestPreLexer_UnterminatedStringIsDiagnosed(t *testing.T) {
	f := source.New(1, "t.cpp", `"oops`)
	p := New(f)
	_, _, _, _, diag := p.Next()
	if diag == nil {
		t.Fatalf("expected unterminated-literal diagnostic")
	}
}

func TestPreLexer_SynthesizesTrailingNewline(t *testing.T) {
	toks := lexAll(t, "int x;")
	if toks[len(toks)-1].Kind != token.PreNewline {
		t.Fatalf("expected synthetic trailing newline, got %+v", toks[len(toks)-1])
	}
}

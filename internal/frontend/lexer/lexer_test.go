package lexer

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

func newLexer() (*Lexer, *token.Interner) {
	in := token.NewInterner()
	return New(in, nil), in
}

func TestLexer_FiltersMetaAndTrivia(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{
		token.DisableMacro("X"),
		token.Ident("a"),
		{Kind: token.PreWhitespaceOrComment, Text: " "},
		token.EnableMacro("X"),
		token.Newline(),
	}
	out := l.Lex(pre)
	if len(out) != 2 || out[0].Kind != token.KindIdentifier || out[1].Kind != token.KindEOF {
		t.Fatalf("got %+v", out)
	}
}

func TestLexer_SplitsGreaterGreater(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{token.Punct(">>")}
	out := l.Lex(pre)
	if len(out) != 3 {
		t.Fatalf("want 2 tokens + EOF, got %+v", out)
	}
	if out[0].Kind != token.KindFirstGreater || out[1].Kind != token.KindSecondGreater {
		t.Fatalf("got %+v", out)
	}
}

func TestLexer_SplitsGreaterEqual(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{token.Punct(">=")}
	out := l.Lex(pre)
	if out[0].Kind != token.KindSingleGreater || out[1].Kind != token.KindStrippedGreaterEqual {
		t.Fatalf("got %+v", out)
	}
}

func TestLexer_SplitsGreaterGreaterEqual(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{token.Punct(">>=")}
	out := l.Lex(pre)
	want := []token.Kind{token.KindFirstGreater, token.KindSecondGreater, token.KindStrippedGreaterEqual, token.KindEOF}
	if len(out) != len(want) {
		t.Fatalf("got %+v", out)
	}
	for i, k := range want {
		if out[i].Kind != k {
			t.Fatalf("token %d: got %v want %v", i, out[i].Kind, k)
		}
	}
}

func TestLexer_DigraphFold(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{token.Punct("<:"), token.Punct(":>")}
	out := l.Lex(pre)
	if out[0].Punct != "[" || out[1].Punct != "]" {
		t.Fatalf("got %+v", out)
	}
}

func TestLexer_KeywordsAndLiterals(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{
		token.Keyword("true"),
		token.Keyword("false"),
		token.Keyword("nullptr"),
		token.Keyword("int"),
	}
	out := l.Lex(pre)
	if !out[0].BoolValue || out[0].Kind != token.KindBoolLiteral {
		t.Fatalf("true: got %+v", out[0])
	}
	if out[1].BoolValue || out[1].Kind != token.KindBoolLiteral {
		t.Fatalf("false: got %+v", out[1])
	}
	if out[2].Kind != token.KindPointerLiteral {
		t.Fatalf("nullptr: got %+v", out[2])
	}
	if out[3].Kind != token.KindKeyword || out[3].KeywordID != "int" {
		t.Fatalf("int: got %+v", out[3])
	}
}

func TestParseNumber_HexIntWithSuffix(t *testing.T) {
	tok := ParseNumber("0x2Aull", nil)
	if tok.Kind != token.KindIntLiteral || tok.IntValue != 42 || tok.IntLength != token.IntLenLongLong || tok.IntSigned {
		t.Fatalf("got %+v", tok)
	}
}

func TestParseNumber_OctalInt(t *testing.T) {
	tok := ParseNumber("010", nil)
	if tok.Kind != token.KindIntLiteral || tok.IntValue != 8 {
		t.Fatalf("got %+v", tok)
	}
}

func TestParseNumber_DigitSeparators(t *testing.T) {
	tok := ParseNumber("1'000'000", nil)
	if tok.Kind != token.KindIntLiteral || tok.IntValue != 1000000 {
		t.Fatalf("got %+v", tok)
	}
}

func TestParseNumber_FloatSuffix(t *testing.T) {
	tok := ParseNumber("3.14f", nil)
	if tok.Kind != token.KindFloatLiteral || tok.FloatSuffix != token.FloatSuffixF || tok.FloatValue != "3.14" {
		t.Fatalf("got %+v", tok)
	}
}

func TestParseNumber_UserDefinedLiteral(t *testing.T) {
	tok := ParseNumber("100_km", nil)
	if tok.Kind != token.KindUserDefinedLiteral || tok.UDPayload != token.UDPayloadInt || tok.IntValue != 100 {
		t.Fatalf("got %+v", tok)
	}
}

func TestDecodeEscapes_Simple(t *testing.T) {
	s, err := decodeEscapes(`a\nb\tc`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "a\nb\tc" {
		t.Fatalf("got %q", s)
	}
}

func TestLexer_StringConcatenation(t *testing.T) {
	l, _ := newLexer()
	pre := []token.PreToken{
		{Kind: token.PreStringLiteral, Text: `"ab"`},
		{Kind: token.PreStringLiteral, Text: `"cd"`},
	}
	out := l.Lex(pre)
	if len(out) != 2 || out[0].Kind != token.KindStringLiteral || out[0].StringValue != "abcd" {
		t.Fatalf("got %+v", out)
	}
}

func TestLexer_EncodingPrefixClash(t *testing.T) {
	var got []diagnostics.Diagnostic
	l := New(token.NewInterner(), func(d diagnostics.Diagnostic) { got = append(got, d) })
	pre := []token.PreToken{
		{Kind: token.PreStringLiteral, Text: `u"a"`},
		{Kind: token.PreStringLiteral, Text: `U"b"`},
	}
	out := l.Lex(pre)
	if len(out) != 2 || out[0].Kind != token.KindStringLiteral {
		t.Fatalf("got %+v", out)
	}
	if len(got) != 1 || got[0].Code != diagnostics.CodeLexEncodingClash {
		t.Fatalf("expected encoding clash diagnostic, got %+v", got)
	}
}

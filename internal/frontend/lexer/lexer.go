// Package lexer converts the preprocessor's PreToken stream into the
// post-preprocess Token stream the parser consumes (spec §4.E,
// component E): meta/trivia filtering, digraph folding, split-greater
// handling for template-argument parsing, keyword/literal
// classification, and adjacent string-literal concatenation.
package lexer

import (
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/prelex"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// Lexer holds the small piece of state that survives across tokens:
// the interner every identifier/keyword/suffix is registered into,
// and the split-greater flag used to promote a lone '=' that follows
// a just-emitted greater-than piece (spec §4.E).
type Lexer struct {
	interner *token.Interner
	onDiag   func(diagnostics.Diagnostic)

	greaterPending bool
	importPending  int // >0: the next literal-shaped token(s) are an import header name
}

// New builds a Lexer sharing interner across every translation unit so
// identifier StringRefs are comparable process-wide (spec §5).
func New(interner *token.Interner, onDiag func(diagnostics.Diagnostic)) *Lexer {
	return &Lexer{interner: interner, onDiag: onDiag}
}

// Lex converts one translation unit's preprocessed token stream into
// Tokens, dropping meta-tokens and trivia (spec §4.E) and terminating
// with a synthetic KindEOF.
func (l *Lexer) Lex(pre []token.PreToken) []token.Token {
	var out []token.Token
	for _, pt := range pre {
		if pt.IsMeta() || pt.IsTrivia() || pt.Kind == token.PreNewline {
			continue
		}
		out = append(out, l.convert(pt)...)
	}
	out = concatenateAdjacentStrings(out, l.diag)
	out = append(out, token.Token{Kind: token.KindEOF})
	return out
}

func (l *Lexer) diag(code diagnostics.Code, params map[string]any) {
	if l.onDiag == nil {
		return
	}
	l.onDiag(diagnostics.New(code, diagnostics.SeverityError, "", 0, 0, params))
}

// convert dispatches one PreToken to zero or more Tokens (a
// three-char split-greater punctuator yields three).
func (l *Lexer) convert(pt token.PreToken) []token.Token {
	wasGreater := l.greaterPending
	l.greaterPending = false

	switch pt.Kind {
	case token.PreIdent, token.PreKeyword:
		return l.convertIdentOrKeyword(pt)
	case token.PreHash:
		return []token.Token{{Kind: token.KindPunctuator, Punct: "#"}}
	case token.PreHashHash:
		return []token.Token{{Kind: token.KindPunctuator, Punct: "##"}}
	case token.PreOperatorPunctuator:
		return l.convertPunctuator(pt.Text, wasGreater)
	case token.PrePPNumber:
		return []token.Token{ParseNumber(pt.Text, l.diag)}
	case token.PreStringLiteral, token.PreRawStringLiteral, token.PreUserDefinedString:
		return []token.Token{l.convertStringLiteral(pt)}
	case token.PreCharLiteral, token.PreUserDefinedChar:
		return []token.Token{l.convertCharLiteral(pt)}
	case token.PreHeaderName:
		return []token.Token{{Kind: token.KindImportableHeaderName, HeaderPath: strings.Trim(pt.Text, "<>\"")}}
	default:
		return nil
	}
}

func (l *Lexer) convertIdentOrKeyword(pt token.PreToken) []token.Token {
	text := pt.Text
	switch text {
	case "true", "false":
		return []token.Token{{Kind: token.KindBoolLiteral, BoolValue: text == "true"}}
	case "nullptr":
		return []token.Token{{Kind: token.KindPointerLiteral}}
	case "module":
		l.importPending = 0
		return []token.Token{{Kind: token.KindModule, KeywordID: "module"}}
	case "import":
		l.importPending = 2
		return []token.Token{{Kind: token.KindImport, KeywordID: "import"}}
	}
	if prelex.AltOperatorSpellings()[text] {
		return []token.Token{{Kind: token.KindPunctuator, Punct: text}}
	}
	if pt.Kind == token.PreKeyword {
		return []token.Token{{Kind: token.KindKeyword, KeywordID: text}}
	}
	if l.importPending > 0 {
		l.importPending--
	}
	return []token.Token{{Kind: token.KindIdentifier, Ident: l.interner.Intern(text)}}
}

// convertPunctuator folds digraphs and performs the split-greater
// transforms required so the parser can close nested template-argument
// lists one '>' at a time (spec §4.E).
func (l *Lexer) convertPunctuator(text string, wasGreater bool) []token.Token {
	if folded, ok := prelex.FoldDigraph(text); ok {
		text = folded
	}
	switch text {
	case ">>":
		l.greaterPending = true
		return []token.Token{
			{Kind: token.KindFirstGreater, Punct: ">"},
			{Kind: token.KindSecondGreater, Punct: ">"},
		}
	case ">=":
		l.greaterPending = true
		return []token.Token{
			{Kind: token.KindSingleGreater, Punct: ">"},
			{Kind: token.KindStrippedGreaterEqual, Punct: "="},
		}
	case ">>=":
		l.greaterPending = true
		return []token.Token{
			{Kind: token.KindFirstGreater, Punct: ">"},
			{Kind: token.KindSecondGreater, Punct: ">"},
			{Kind: token.KindStrippedGreaterEqual, Punct: "="},
		}
	case ">":
		l.greaterPending = true
		return []token.Token{{Kind: token.KindSingleGreater, Punct: ">"}}
	case "=":
		if wasGreater {
			return []token.Token{{Kind: token.KindStrippedGreaterEqual, Punct: "="}}
		}
		return []token.Token{{Kind: token.KindPunctuator, Punct: "="}}
	default:
		return []token.Token{{Kind: token.KindPunctuator, Punct: text}}
	}
}

package prelex

import (
	"unicode/utf8"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// stringPrefixKinds maps a plain identifier spelling to the encoding
// it denotes when immediately followed by a quote (spec §4.B/§3).
var stringPrefixKinds = map[string]token.EncodingPrefix{
	"u8": token.EncodingU8,
	"u":  token.EncodingU,
	"U":  token.EncodingBigU,
	"L":  token.EncodingL,
}

// literalPrefix splits an identifier-shaped lookahead like "u8R",
// "uR", "R", "L" into its encoding and whether it denotes a raw
// string. Returns ok=false if text isn't a recognized literal prefix.
func literalPrefix(text string) (enc token.EncodingPrefix, raw bool, ok bool) {
	if text == "R" {
		return token.EncodingNone, true, true
	}
	if len(text) > 1 && text[len(text)-1] == 'R' {
		if e, isPrefix := stringPrefixKinds[text[:len(text)-1]]; isPrefix {
			return e, true, true
		}
		return 0, false, false
	}
	if e, isPrefix := stringPrefixKinds[text]; isPrefix {
		return e, false, true
	}
	return 0, false, false
}

// maybeLiteralAfterIdent is called by scanIdentifier once it has the
// full identifier text: if that text is a string/char-literal prefix
// and is immediately adjacent (post-splice) to a quote, the scan
// continues into a literal instead of emitting a bare identifier.
func (p *PreLexer) maybeLiteralAfterIdent(start int, text string) (token.PreToken, int, int, bool, *diagnostics.Diagnostic, bool) {
	enc, raw, ok := literalPrefix(text)
	if !ok {
		return token.PreToken{}, 0, 0, false, nil, false
	}
	b, np, has := p.byteAt(p.pos)
	if !has || (b != '"' && b != '\'') {
		return token.PreToken{}, 0, 0, false, nil, false
	}
	if raw {
		if b != '"' {
			return token.PreToken{}, 0, 0, false, nil, false
		}
		p.pos = np
		tk, e, o, diag := p.scanRawStringBody(start, enc)
		return tk, start, e, o, diag, true
	}
	p.pos = np
	tk, e, o, diag := p.scanQuotedBody(start, enc, b)
	return tk, start, e, o, diag, true
}

// scanQuotedBody scans a regular string or char literal starting at
// the opening quote (p.pos), recognizing backslash escapes only well
// enough to find the matching close (escape *interpretation* happens
// in the Lexer stage per spec §4.E). A trailing identifier-shaped
// suffix marks a user-defined literal.
func (p *PreLexer) scanQuotedBody(start int, enc token.EncodingPrefix, quote byte) (token.PreToken, int, bool, *diagnostics.Diagnostic) {
	p.pos++ // opening quote
	for {
		b, np, has := p.byteAt(p.pos)
		if !has || b == '\n' {
			d := diagnostics.New(diagnostics.CodeLexUnterminated, diagnostics.SeverityError, p.file.Path(), 0, 0, map[string]any{"Kind": literalKindName(quote)})
			return token.PreToken{Kind: literalKind(quote, false), Text: p.buf[start:p.pos]}, p.pos, true, &d
		}
		p.pos = np + 1
		if b == '\\' {
			// Skip exactly one escaped byte (post-splice); malformed
			// escapes are a Lexer-stage concern.
			if b2, np2, has2 := p.byteAt(p.pos); has2 {
				p.pos = np2 + 1
				_ = b2
			}
			continue
		}
		if b == quote {
			break
		}
	}
	kind := literalKind(quote, false)
	suffix := p.scanIdentSuffix()
	if suffix != "" {
		kind = literalKind(quote, true)
	}
	return token.PreToken{Kind: kind, Text: p.buf[start:p.pos]}, p.pos, true, nil
}

func literalKindName(quote byte) string {
	if quote == '\'' {
		return "character"
	}
	return "string"
}

func literalKind(quote byte, userDefined bool) token.PreKind {
	switch {
	case quote == '\'' && userDefined:
		return token.PreUserDefinedChar
	case quote == '\'':
		return token.PreCharLiteral
	case userDefined:
		return token.PreUserDefinedString
	default:
		return token.PreStringLiteral
	}
}

// scanRawStringBody scans R"delim(...)delim" starting at the opening
// quote (p.pos), per spec §4.B.
func (p *PreLexer) scanRawStringBody(start int, enc token.EncodingPrefix) (token.PreToken, int, bool, *diagnostics.Diagnostic) {
	p.pos++ // opening quote
	delimStart := p.pos
	for p.pos < len(p.buf) && p.buf[p.pos] != '(' {
		p.pos++
	}
	if p.pos >= len(p.buf) {
		d := diagnostics.New(diagnostics.CodeLexUnterminated, diagnostics.SeverityError, p.file.Path(), 0, 0, map[string]any{"Kind": "raw string"})
		return token.PreToken{Kind: token.PreRawStringLiteral, Text: p.buf[start:p.pos]}, p.pos, true, &d
	}
	delim := p.buf[delimStart:p.pos]
	closer := ")" + delim + "\""
	p.pos++ // '('
	idx := indexFrom(p.buf, closer, p.pos)
	if idx < 0 {
		p.pos = len(p.buf)
		d := diagnostics.New(diagnostics.CodeLexUnterminated, diagnostics.SeverityError, p.file.Path(), 0, 0, map[string]any{"Kind": "raw string"})
		return token.PreToken{Kind: token.PreRawStringLiteral, Text: p.buf[start:p.pos]}, p.pos, true, &d
	}
	p.pos = idx + len(closer)
	kind := token.PreRawStringLiteral
	if p.scanIdentSuffix() != "" {
		kind = token.PreUserDefinedString
	}
	return token.PreToken{Kind: kind, Text: p.buf[start:p.pos]}, p.pos, true, nil
}

func indexFrom(s, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	i := indexString(s[from:], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

// indexString avoids importing strings just for one call site used
// across two functions above.
func indexString(s, sub string) int {
	n := len(sub)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(s); i++ {
		if s[i:i+n] == sub {
			return i
		}
	}
	return -1
}

// scanIdentSuffix consumes a trailing identifier-shaped run (a
// user-defined-literal tag) if one is adjacent.
func (p *PreLexer) scanIdentSuffix() string {
	start := p.pos
	for {
		_, np, has := p.byteAt(p.pos)
		if !has {
			break
		}
		r, size := utf8.DecodeRuneInString(p.buf[np:])
		if !isIdentCont(r) {
			break
		}
		p.pos = np + size
	}
	return p.buf[start:p.pos]
}

// scanStringOrCharLiteral is the no-prefix entry point used directly
// from Next() when the token starts with a bare quote.
func (p *PreLexer) scanStringOrCharLiteral(start int, enc token.EncodingPrefix, _ int) (token.PreToken, int, int, bool, *diagnostics.Diagnostic) {
	quote := p.buf[p.pos]
	tk, end, ok, diag := p.scanQuotedBody(start, enc, quote)
	return tk, start, end, ok, diag
}

// scanHeaderName scans a '<...>' or '"..."' header-name in
// header-name mode (spec §4.B/§4.D).
func (p *PreLexer) scanHeaderName(start int) (token.PreToken, int, bool) {
	open := p.buf[p.pos]
	close := byte('>')
	if open == '"' {
		close = '"'
	}
	p.pos++
	for p.pos < len(p.buf) && p.buf[p.pos] != close && p.buf[p.pos] != '\n' {
		p.pos++
	}
	if p.pos >= len(p.buf) || p.buf[p.pos] != close {
		p.pos = start
		return token.PreToken{}, start, false
	}
	p.pos++
	return token.HeaderName(p.buf[start:p.pos]), p.pos, true
}

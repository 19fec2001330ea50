package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

var stringPrefixByLetters = map[string]token.EncodingPrefix{
	"u8": token.EncodingU8,
	"u":  token.EncodingU,
	"U":  token.EncodingBigU,
	"L":  token.EncodingL,
}

// splitLiteralPrefix separates a literal's encoding-prefix letters and
// (for raw strings) the leading 'R' from the quoted body, returning
// the body starting at the opening quote.
func splitLiteralPrefix(text string) (enc token.EncodingPrefix, raw bool, body string) {
	i := 0
	for i < len(text) && text[i] != '"' && text[i] != '\'' {
		i++
	}
	prefix := text[:i]
	body = text[i:]
	raw = strings.HasSuffix(prefix, "R")
	letters := strings.TrimSuffix(prefix, "R")
	enc = stringPrefixByLetters[letters]
	return enc, raw, body
}

func (l *Lexer) convertStringLiteral(pt token.PreToken) token.Token {
	enc, raw, body := splitLiteralPrefix(pt.Text)
	var content, udSuffix string
	if raw {
		content, udSuffix = splitRawStringBody(body)
	} else {
		inner, suf := splitQuotedBody(body, '"')
		udSuffix = suf
		var err error
		content, err = decodeEscapes(inner)
		if err != nil {
			l.diag(diagnostics.CodeLexBadEscape, map[string]any{"Char": err.Error()})
		}
	}
	tok := token.Token{Kind: token.KindStringLiteral, StringValue: content, Encoding: enc}
	if udSuffix != "" {
		tok.Kind = token.KindUserDefinedLiteral
		tok.UDPayload = token.UDPayloadString
		tok.UDSuffix = l.interner.Intern(udSuffix)
	}
	return tok
}

func (l *Lexer) convertCharLiteral(pt token.PreToken) token.Token {
	enc, _, body := splitLiteralPrefix(pt.Text)
	inner, udSuffix := splitQuotedBody(body, '\'')
	decoded, err := decodeEscapes(inner)
	if err != nil {
		l.diag(diagnostics.CodeLexBadEscape, map[string]any{"Char": err.Error()})
	}
	var r rune
	if decoded != "" {
		r, _ = utf8.DecodeRuneInString(decoded)
	}
	tok := token.Token{Kind: token.KindCharLiteral, CharValue: r, Encoding: enc}
	if udSuffix != "" {
		tok.Kind = token.KindUserDefinedLiteral
		tok.UDPayload = token.UDPayloadChar
		tok.UDSuffix = l.interner.Intern(udSuffix)
	}
	return tok
}

// splitQuotedBody strips the surrounding quote characters and returns
// any trailing identifier-shaped user-defined-literal suffix.
func splitQuotedBody(body string, quote byte) (inner, suffix string) {
	if len(body) < 2 || body[0] != quote {
		return body, ""
	}
	end := len(body) - 1
	for end > 0 && body[end] != quote {
		end--
	}
	return body[1:end], body[end+1:]
}

func splitRawStringBody(body string) (content, suffix string) {
	if len(body) < 2 || body[0] != '"' {
		return body, ""
	}
	rest := body[1:]
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return rest, ""
	}
	delim := rest[:open]
	closer := ")" + delim + "\""
	idx := strings.LastIndex(rest, closer)
	if idx < 0 {
		return rest[open+1:], ""
	}
	return rest[open+1 : idx], rest[idx+len(closer):]
}

// decodeEscapes interprets the C++ simple/octal/hex escape sequences
// (spec §4.E); unrecognized escapes are reported but left verbatim so
// the rest of the literal still decodes.
func decodeEscapes(s string) (string, error) {
	var b strings.Builder
	var firstErr error
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'b':
			b.WriteByte('\b')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'a':
			b.WriteByte('\a')
		case '\\':
			b.WriteByte('\\')
		case '?':
			b.WriteByte('?')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case 'x':
			j := i + 1
			for j < len(s) && isHexDigit(s[j]) {
				j++
			}
			if v, err := strconv.ParseUint(s[i+1:j], 16, 32); err == nil {
				b.WriteRune(rune(v))
			}
			i = j - 1
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			if v, err := strconv.ParseUint(s[i:j], 8, 32); err == nil {
				b.WriteRune(rune(v))
			}
			i = j - 1
		default:
			if firstErr == nil {
				firstErr = &badEscapeError{ch: s[i]}
			}
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	if firstErr != nil {
		return b.String(), firstErr
	}
	return b.String(), nil
}

type badEscapeError struct{ ch byte }

func (e *badEscapeError) Error() string { return string(e.ch) }

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// concatenateAdjacentStrings merges runs of consecutive string/UD
// string literals per [lex.string] (spec §4.E): encoding prefixes must
// be "one is none or both equal", and UD suffixes must agree.
func concatenateAdjacentStrings(in []token.Token, diag func(diagnostics.Code, map[string]any)) []token.Token {
	out := make([]token.Token, 0, len(in))
	for i := 0; i < len(in); i++ {
		t := in[i]
		if !isStringLike(t) {
			out = append(out, t)
			continue
		}
		merged := t
		for i+1 < len(in) && isStringLike(in[i+1]) {
			next := in[i+1]
			if merged.Encoding != token.EncodingNone && next.Encoding != token.EncodingNone && merged.Encoding != next.Encoding {
				diag(diagnostics.CodeLexEncodingClash, map[string]any{"Left": encodingName(merged.Encoding), "Right": encodingName(next.Encoding)})
			} else if merged.Encoding == token.EncodingNone {
				merged.Encoding = next.Encoding
			}
			if merged.Kind == token.KindUserDefinedLiteral && next.Kind == token.KindUserDefinedLiteral && merged.UDSuffix != next.UDSuffix {
				diag(diagnostics.CodeLexUDSuffixClash, map[string]any{"Left": merged.UDSuffix, "Right": next.UDSuffix})
			} else if next.Kind == token.KindUserDefinedLiteral {
				merged.UDSuffix = next.UDSuffix
				merged.Kind = token.KindUserDefinedLiteral
			}
			merged.StringValue += next.StringValue
			i++
		}
		out = append(out, merged)
	}
	return out
}

func isStringLike(t token.Token) bool {
	return t.Kind == token.KindStringLiteral ||
		(t.Kind == token.KindUserDefinedLiteral && t.UDPayload == token.UDPayloadString)
}

func encodingName(e token.EncodingPrefix) string {
	switch e {
	case token.EncodingU8:
		return "u8"
	case token.EncodingU:
		return "u"
	case token.EncodingBigU:
		return "U"
	case token.EncodingL:
		return "L"
	default:
		return ""
	}
}

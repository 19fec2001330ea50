package lexer

import (
	"strconv"
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// ParseNumber classifies and parses a pp-number's text into an
// integer or floating-point Token (spec §4.E). Digit separators are
// stripped; integer suffixes combine u/U with l/L/ll/LL in any order;
// a trailing alphabetic run after a valid suffix is a user-defined
// literal tag. Floating-point *value* parsing is explicitly out of
// scope (spec §1) — FloatValue keeps the textual mantissa/exponent.
func ParseNumber(text string, diag func(diagnostics.Code, map[string]any)) token.Token {
	clean := strings.ReplaceAll(text, "'", "")

	base := 10
	digits := clean
	isHex := false
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		isHex = true
		base = 16
		digits = clean[2:]
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		base = 2
		digits = clean[2:]
	case len(clean) > 1 && clean[0] == '0' && !strings.ContainsAny(clean, ".") && !hasDecimalExponent(clean, false):
		base = 8
		digits = clean[1:]
	}

	expMarkers := "eE"
	if isHex {
		expMarkers = "pP"
	}
	isFloat := strings.Contains(clean, ".") || hasDecimalExponent(clean, isHex)
	_ = expMarkers

	if isFloat {
		return parseFloatLiteral(clean, isHex, diag)
	}
	return parseIntLiteral(digits, base, diag)
}

// hasDecimalExponent reports whether clean contains an exponent marker
// appropriate to its radix (e/E for decimal, p/P for hex floats).
func hasDecimalExponent(clean string, isHex bool) bool {
	marker := byte('e')
	markerUpper := byte('E')
	if isHex {
		marker, markerUpper = 'p', 'P'
	}
	for i := 0; i < len(clean); i++ {
		if clean[i] == marker || clean[i] == markerUpper {
			return true
		}
	}
	return false
}

func parseIntLiteral(digits string, base int, diag func(diagnostics.Code, map[string]any)) token.Token {
	i := 0
	for i < len(digits) && isBaseDigit(digits[i], base) {
		i++
	}
	valueDigits, suffix := digits[:i], digits[i:]
	if valueDigits == "" {
		valueDigits = "0"
	}
	v, err := strconv.ParseUint(valueDigits, base, 64)
	if err != nil {
		// Overflow of a conforming literal is still representable in
		// a uint64 for every width this front end cares about; a
		// parse error here means non-digit noise leaked through.
		v = 0
	}

	length, signed, udTag := classifyIntSuffix(suffix)
	tok := token.Token{Kind: token.KindIntLiteral, IntValue: v, IntSigned: signed, IntLength: length}
	if udTag != "" {
		tok.Kind = token.KindUserDefinedLiteral
		tok.UDPayload = token.UDPayloadInt
		tok.IntValue = v
	}
	_ = diag
	return tok
}

func isBaseDigit(b byte, base int) bool {
	switch base {
	case 16:
		return isHexDigit(b)
	case 8:
		return b >= '0' && b <= '7'
	case 2:
		return b == '0' || b == '1'
	default:
		return b >= '0' && b <= '9'
	}
}

// classifyIntSuffix reads a case-insensitive combination of u/U and
// l/L/ll/LL from the front of suffix, returning any remaining text as
// a user-defined-literal tag.
func classifyIntSuffix(suffix string) (length token.IntLength, signed bool, udTag string) {
	signed = true
	i := 0
	for i < len(suffix) {
		c := suffix[i]
		switch {
		case c == 'u' || c == 'U':
			signed = false
			i++
		case c == 'l' || c == 'L':
			if i+1 < len(suffix) && (suffix[i+1] == 'l' || suffix[i+1] == 'L') {
				length = token.IntLenLongLong
				i += 2
			} else {
				length = token.IntLenLong
				i++
			}
		default:
			return length, signed, suffix[i:]
		}
	}
	return length, signed, ""
}

func parseFloatLiteral(clean string, isHex bool, diag func(diagnostics.Code, map[string]any)) token.Token {
	base, exp, i := 10, "eE", 0
	if isHex {
		base, exp, i = 16, "pP", 2
	}
	for i < len(clean) && (clean[i] == '.' || isBaseDigit(clean[i], base)) {
		i++
	}
	if i < len(clean) && strings.IndexByte(exp, clean[i]) >= 0 {
		i++
		for i < len(clean) && (clean[i] == '+' || clean[i] == '-' || isBaseDigit(clean[i], 10)) {
			i++
		}
	}
	mantissaExp, suffix := clean[:i], clean[i:]

	fs := token.FloatSuffixNone
	udTag := ""
	switch strings.ToLower(suffix) {
	case "":
		fs = token.FloatSuffixNone
	case "f":
		fs = token.FloatSuffixF
	case "l":
		fs = token.FloatSuffixL
	default:
		udTag = suffix
	}
	_ = isHex
	_ = diag
	tok := token.Token{Kind: token.KindFloatLiteral, FloatValue: mantissaExp, FloatSuffix: fs}
	if udTag != "" {
		tok.Kind = token.KindUserDefinedLiteral
		tok.UDPayload = token.UDPayloadFloat
		tok.FloatValue = mantissaExp
	}
	return tok
}

func isFloatSuffixByte(b byte) bool {
	switch b {
	case 'f', 'F', 'l', 'L':
		return true
	default:
		return false
	}
}

// isExponentSign guards against eating the 'l' in a hex-float exponent
// digit run like "p3l" correctly; here it just prevents misreading a
// sign character as part of the suffix run.
func isExponentSign(clean string, idx int) bool {
	return clean[idx] == '+' || clean[idx] == '-'
}

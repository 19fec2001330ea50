// Package prelex implements the PreLexer and MultiLexer: a
// regex-free, single-pass tokenizer turning UTF-8 source bytes into
// preprocessing tokens, and a stack of such lexers across nested
// #include files (spec §4.B/§4.C).
package prelex

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// PreLexer is a single-pass tokenizer over one file's buffer.
type PreLexer struct {
	file   *source.File
	buf    string
	pos    int
	headerDepth int // >0: prefer <...>/"..." as a single HeaderName

	// emittedSynthNewline guards against emitting the synthetic
	// final newline more than once.
	emittedSynthNewline bool
}

// New constructs a PreLexer over file's text.
func New(file *source.File) *PreLexer {
	return &PreLexer{file: file, buf: file.Text()}
}

// EnterHeaderNameMode increments the header-name-mode counter; while
// positive, '<' or '"' at the start of a token is scanned as a single
// HeaderName instead of individual punctuators/a string literal. This
// is how #include and import avoid mis-tokenizing a path (spec §4.B).
func (p *PreLexer) EnterHeaderNameMode() { p.headerDepth++ }

// ExitHeaderNameMode decrements the counter.
func (p *PreLexer) ExitHeaderNameMode() {
	if p.headerDepth > 0 {
		p.headerDepth--
	}
}

// Pos returns the current byte offset, for diagnostics/snapshotting.
func (p *PreLexer) Pos() int { return p.pos }

// AtEOF reports whether the lexer has consumed the whole buffer
// (ignoring a still-pending synthetic trailing newline).
func (p *PreLexer) AtEOF() bool { return p.pos >= len(p.buf) }

// skipSplices advances pos past any "\<LF>" line-splice sequences
// starting at pos, returning the new position. Applied before every
// token match so a splice straddling a token is transparently elided
// (spec §4.B).
func (p *PreLexer) skipSplices(pos int) int {
	for pos+1 < len(p.buf) && p.buf[pos] == '\\' && p.buf[pos+1] == '\n' {
		pos += 2
	}
	return pos
}

// byteAt returns the logical byte at a position after splicing, and
// whether one exists.
func (p *PreLexer) byteAt(pos int) (byte, int, bool) {
	pos = p.skipSplices(pos)
	if pos >= len(p.buf) {
		return 0, pos, false
	}
	return p.buf[pos], pos, true
}

// Next produces the next PreToken along with its byte range in the
// file, or ok=false at end of input (after the synthetic trailing
// newline, if one was needed).
func (p *PreLexer) Next() (tok token.PreToken, start, end int, ok bool, diag *diagnostics.Diagnostic) {
	p.pos = p.skipSplices(p.pos)

	if p.pos >= len(p.buf) {
		if !p.emittedSynthNewline && len(p.buf) > 0 && p.buf[len(p.buf)-1] != '\n' {
			p.emittedSynthNewline = true
			return token.Newline(), len(p.buf), len(p.buf), true, nil
		}
		return token.PreToken{}, p.pos, p.pos, false, nil
	}

	start = p.pos
	c := p.buf[p.pos]

	if p.headerDepth > 0 && (c == '<' || c == '"') {
		if t, end, ok := p.scanHeaderName(start); ok {
			return t, start, end, true, nil
		}
	}

	switch {
	case c == '\n':
		p.pos++
		return token.Newline(), start, p.pos, true, nil

	case isHSpace(c):
		p.scanWhitespaceAndComments()
		return token.PreToken{Kind: token.PreWhitespaceOrComment, Text: p.buf[start:p.pos]}, start, p.pos, true, nil

	case c == '/' && p.pos+1 < len(p.buf) && (p.buf[p.pos+1] == '/' || p.buf[p.pos+1] == '*'):
		p.scanWhitespaceAndComments()
		return token.PreToken{Kind: token.PreWhitespaceOrComment, Text: p.buf[start:p.pos]}, start, p.pos, true, nil

	case isIdentStart(rune(c)) || c >= 0x80:
		return p.scanIdentifier(start)

	case isDigit(c) || (c == '.' && p.pos+1 < len(p.buf) && isDigit(p.buf[p.pos+1])):
		t := p.scanPPNumber(start)
		return t, start, p.pos, true, nil

	case c == '"' || c == '\'':
		return p.scanStringOrCharLiteral(start, token.EncodingNone, 0)

	case c == '#':
		return p.scanHashOperator(start)

	default:
		return p.scanPunctuatorOrUnknown(start)
	}
}

func isHSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanWhitespaceAndComments consumes a maximal run of horizontal
// whitespace and // or /* */ comments (but not newlines, which are
// significant to the preprocessor's line orientation).
func (p *PreLexer) scanWhitespaceAndComments() {
	for {
		p.pos = p.skipSplices(p.pos)
		if p.pos >= len(p.buf) {
			return
		}
		c := p.buf[p.pos]
		switch {
		case isHSpace(c):
			p.pos++
		case c == '/' && p.pos+1 < len(p.buf) && p.buf[p.pos+1] == '/':
			for p.pos < len(p.buf) {
				p.pos = p.skipSplices(p.pos)
				if p.pos >= len(p.buf) || p.buf[p.pos] == '\n' {
					break
				}
				p.pos++
			}
			return
		case c == '/' && p.pos+1 < len(p.buf) && p.buf[p.pos+1] == '*':
			p.pos += 2
			for {
				p.pos = p.skipSplices(p.pos)
				if p.pos+1 >= len(p.buf) {
					p.pos = len(p.buf)
					return
				}
				if p.buf[p.pos] == '*' && p.buf[p.pos+1] == '/' {
					p.pos += 2
					break
				}
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *PreLexer) scanIdentifier(start int) (token.PreToken, int, int, bool, *diagnostics.Diagnostic) {
	for p.pos < len(p.buf) {
		next := p.skipSplices(p.pos)
		if next >= len(p.buf) {
			p.pos = next
			break
		}
		r, size := utf8.DecodeRuneInString(p.buf[next:])
		if !isIdentCont(r) {
			p.pos = next
			break
		}
		p.pos = next + size
	}
	text := strings.ReplaceAll(p.buf[start:p.pos], "\\\n", "")
	if tk, s, e, ok, diag, matched := p.maybeLiteralAfterIdent(start, text); matched {
		return tk, s, e, ok, diag
	}
	switch {
	case keywords[text]:
		return token.Keyword(text), start, p.pos, true, nil
	case altOperators[text]:
		return token.Punct(text), start, p.pos, true, nil
	default:
		return token.Ident(text), start, p.pos, true, nil
	}
}

// scanPPNumber implements the C++ pp-number grammar (spec §4.B):
// starts with a digit or '.' digit, then any run of digits,
// identifier-characters, a ' digit/nondigit (digit separator), a '.',
// or [eEpP][+-].
func (p *PreLexer) scanPPNumber(start int) token.PreToken {
	adv := func() { p.pos = p.skipSplices(p.pos) + 1 }
	adv() // consume leading digit or '.'
	for p.pos < len(p.buf) {
		cp := p.skipSplices(p.pos)
		if cp >= len(p.buf) {
			p.pos = cp
			break
		}
		c := p.buf[cp]
		switch {
		case (c == 'e' || c == 'E' || c == 'p' || c == 'P') && cp+1 < len(p.buf) && (p.buf[cp+1] == '+' || p.buf[cp+1] == '-'):
			p.pos = cp + 2
		case isDigit(c) || c == '.' || c == '\'':
			p.pos = cp + 1
		default:
			r, size := utf8.DecodeRuneInString(p.buf[cp:])
			if isIdentCont(r) {
				p.pos = cp + size
			} else {
				p.pos = cp
				return token.PreToken{Kind: token.PrePPNumber, Text: strings.ReplaceAll(p.buf[start:p.pos], "\\\n", "")}
			}
		}
	}
	return token.PreToken{Kind: token.PrePPNumber, Text: strings.ReplaceAll(p.buf[start:p.pos], "\\\n", "")}
}

// scanHashOperator handles '#' / '##'. The digraph spellings '%:' /
// '%:%:' never reach it: scanPunctuatorOrUnknown returns them itself.
func (p *PreLexer) scanHashOperator(start int) (token.PreToken, int, int, bool, *diagnostics.Diagnostic) {
	p.pos++
	if b, np, ok := p.byteAt(p.pos); ok && b == '#' {
		p.pos = np + 1
		return token.PreToken{Kind: token.PreHashHash, Text: "##"}, start, p.pos, true, nil
	}
	return token.PreToken{Kind: token.PreHash, Text: "#"}, start, p.pos, true, nil
}

// scanPunctuatorOrUnknown greedily matches the longest punctuator
// spelling at pos, applying the "<::" special case from spec §4.B.
func (p *PreLexer) scanPunctuatorOrUnknown(start int) (token.PreToken, int, int, bool, *diagnostics.Diagnostic) {
	rest := p.buf[p.pos:]

	if strings.HasPrefix(rest, "<::") && !(len(rest) > 3 && (rest[3] == ':' || rest[3] == '>')) {
		p.pos++
		return token.Punct("<"), start, p.pos, true, nil
	}
	if strings.HasPrefix(rest, "%:%:") {
		p.pos += 4
		return token.PreToken{Kind: token.PreHashHash, Text: "%:%:"}, start, p.pos, true, nil
	}
	if strings.HasPrefix(rest, "%:") {
		p.pos += 2
		return token.PreToken{Kind: token.PreHash, Text: "%:"}, start, p.pos, true, nil
	}

	for _, op := range punctuators {
		if strings.HasPrefix(rest, op) {
			p.pos += len(op)
			return token.Punct(op), start, p.pos, true, nil
		}
	}

	// Unknown byte: consume one rune so forward progress is guaranteed.
	_, size := utf8.DecodeRuneInString(rest)
	if size == 0 {
		size = 1
	}
	p.pos += size
	d := diagnostics.New(diagnostics.CodeLexInvalidByte, diagnostics.SeverityError, p.file.Path(), 0, 0, nil)
	return token.PreToken{Kind: token.PreUnknown, Text: rest[:size]}, start, p.pos, true, &d
}

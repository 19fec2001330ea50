package preprocessor

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/token"
)

// EvalIf evaluates a #if/#elif controlling expression (spec §4.D): a
// `defined` pre-pass that must not macro-expand its operand, then full
// macro expansion of what remains, then a precedence-climbing
// evaluation over an arbitrary-precision integer domain (the standard
// requires at least the widest extended integer type; a fixed 128-bit
// domain would silently truncate a conforming program, so values are
// kept unbounded until the final narrowing, mirroring the spirit of
// the rule instead of an exact bit width).
func EvalIf(toks []token.PreToken, reg *Registry, disabled disabledSet, ctx *ExpandContext) (bool, error) {
	afterDefined := resolveDefined(toks, reg)
	expanded := expandTokenSeq(afterDefined, reg, disabled, ctx)
	substituted := substituteIdentifiers(expanded)
	p := &ifParser{toks: filterSignificant(substituted)}
	v, err := p.parseExpr(0)
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("unexpected token %q in #if expression", p.toks[p.pos].Text)
	}
	return v.Sign() != 0, nil
}

func filterSignificant(toks []token.PreToken) []token.PreToken {
	out := make([]token.PreToken, 0, len(toks))
	for _, t := range toks {
		if t.IsTrivia() || t.IsMeta() || t.Kind == token.PreNewline {
			continue
		}
		out = append(out, t)
	}
	return out
}

// resolveDefined rewrites every "defined X" / "defined(X)" into a
// literal 0/1 pp-number, before anything is macro-expanded, since
// `defined`'s operand must never itself be macro-expanded (spec
// §4.D).
func resolveDefined(toks []token.PreToken, reg *Registry) []token.PreToken {
	var out []token.PreToken
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != token.PreIdent || t.Text != "defined" {
			out = append(out, t)
			continue
		}
		j := i + 1
		for j < len(toks) && toks[j].IsTrivia() {
			j++
		}
		paren := j < len(toks) && toks[j].Kind == token.PreOperatorPunctuator && toks[j].Text == "("
		if paren {
			j++
			for j < len(toks) && toks[j].IsTrivia() {
				j++
			}
		}
		if j >= len(toks) || toks[j].Kind != token.PreIdent {
			out = append(out, t) // malformed; let the parser below report it
			continue
		}
		name := toks[j].Text
		j++
		if paren {
			for j < len(toks) && toks[j].IsTrivia() {
				j++
			}
			if j < len(toks) && toks[j].Kind == token.PreOperatorPunctuator && toks[j].Text == ")" {
				j++
			}
		}
		v := "0"
		if reg.IsDefined(name) {
			v = "1"
		}
		out = append(out, token.PreToken{Kind: token.PrePPNumber, Text: v})
		i = j - 1
	}
	return out
}

// substituteIdentifiers implements the rule that any identifier still
// standing after macro expansion (other than true/false) is 0 (spec
// §4.D): this includes a bare `__has_include`/keyword left unexpanded
// and, notably, the keyword `true`/`false` as boolean literals.
func substituteIdentifiers(toks []token.PreToken) []token.PreToken {
	out := make([]token.PreToken, 0, len(toks))
	for _, t := range toks {
		switch {
		case t.Kind == token.PreKeyword && t.Text == "true":
			out = append(out, token.PreToken{Kind: token.PrePPNumber, Text: "1"})
		case t.Kind == token.PreKeyword && t.Text == "false":
			out = append(out, token.PreToken{Kind: token.PrePPNumber, Text: "0"})
		case t.Kind == token.PreIdent || t.Kind == token.PreKeyword:
			out = append(out, token.PreToken{Kind: token.PrePPNumber, Text: "0"})
		default:
			out = append(out, t)
		}
	}
	return out
}

// altSpelling canonicalizes the alternative operator spellings ("and",
// "bitor", ...) so the evaluator only needs to match one form.
var altSpelling = map[string]string{
	"and": "&&", "or": "||", "xor": "^", "not": "!",
	"bitand": "&", "bitor": "|", "compl": "~",
	"and_eq": "&=", "or_eq": "|=", "xor_eq": "^=", "not_eq": "!=",
}

func opText(t token.PreToken) (string, bool) {
	if t.Kind != token.PreOperatorPunctuator {
		return "", false
	}
	if s, ok := altSpelling[t.Text]; ok {
		return s, true
	}
	return t.Text, true
}

// ifParser is a precedence-climbing evaluator over the C++ constant-
// expression grammar used by #if (spec §4.D): comma, ?:, ||, &&, |, ^,
// &, ==/!=, relational, <=>, shift, additive, multiplicative, unary.
type ifParser struct {
	toks []token.PreToken
	pos  int
}

func (p *ifParser) peek() (token.PreToken, bool) {
	if p.pos >= len(p.toks) {
		return token.PreToken{}, false
	}
	return p.toks[p.pos], true
}

func (p *ifParser) peekOp() (string, bool) {
	t, ok := p.peek()
	if !ok {
		return "", false
	}
	return opText(t)
}

// precedence levels, low to high; each level's operator set.
var precLevels = [][]string{
	{","},
	{"?:"}, // handled specially
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<", ">", "<=", ">="},
	{"<=>"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *ifParser) parseExpr(level int) (*big.Int, error) {
	if level >= len(precLevels) {
		return p.parseUnary()
	}
	ops := precLevels[level]
	if len(ops) == 1 && ops[0] == "?:" {
		return p.parseTernary(level)
	}
	left, err := p.parseExpr(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp()
		if !ok || !contains(ops, op) {
			return left, nil
		}
		p.pos++
		right, err := p.parseExpr(level + 1)
		if err != nil {
			return nil, err
		}
		left, err = applyBinary(op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *ifParser) parseTernary(level int) (*big.Int, error) {
	cond, err := p.parseExpr(level + 1)
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok && t.Kind == token.PreOperatorPunctuator && t.Text == "?" {
		p.pos++
		thenV, err := p.parseExpr(0) // comma-expression is allowed inside '?:'
		if err != nil {
			return nil, err
		}
		colon, ok := p.peek()
		if !ok || colon.Kind != token.PreOperatorPunctuator || colon.Text != ":" {
			return nil, fmt.Errorf("expected ':' in conditional expression")
		}
		p.pos++
		elseV, err := p.parseExpr(level)
		if err != nil {
			return nil, err
		}
		if cond.Sign() != 0 {
			return thenV, nil
		}
		return elseV, nil
	}
	return cond, nil
}

func (p *ifParser) parseUnary() (*big.Int, error) {
	if t, ok := p.peek(); ok {
		if op, isOp := opText(t); isOp {
			switch op {
			case "+":
				p.pos++
				return p.parseUnary()
			case "-":
				p.pos++
				v, err := p.parseUnary()
				if err != nil {
					return nil, err
				}
				return new(big.Int).Neg(v), nil
			case "!":
				p.pos++
				v, err := p.parseUnary()
				if err != nil {
					return nil, err
				}
				if v.Sign() == 0 {
					return big.NewInt(1), nil
				}
				return big.NewInt(0), nil
			case "~":
				p.pos++
				v, err := p.parseUnary()
				if err != nil {
					return nil, err
				}
				return new(big.Int).Not(v), nil
			case "(":
				p.pos++
				v, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				closeParen, ok := p.peek()
				if !ok || closeParen.Kind != token.PreOperatorPunctuator || closeParen.Text != ")" {
					return nil, fmt.Errorf("expected ')' in #if expression")
				}
				p.pos++
				return v, nil
			}
		}
	}
	return p.parsePrimary()
}

func (p *ifParser) parsePrimary() (*big.Int, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of #if expression")
	}
	switch t.Kind {
	case token.PrePPNumber:
		p.pos++
		return parsePPNumberValue(t.Text)
	case token.PreCharLiteral:
		p.pos++
		return charLiteralValue(t.Text)
	}
	return nil, fmt.Errorf("unexpected token %q in #if expression", t.Text)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// parsePPNumberValue strips integer suffixes (u/U/l/L combinations)
// and digit separators, and honors hex/octal/binary radixes (spec
// §4.D's #if integer domain).
func parsePPNumberValue(text string) (*big.Int, error) {
	s := strings.ReplaceAll(text, "'", "")
	s = strings.TrimRight(s, "uUlLzZ")
	if s == "" {
		return nil, fmt.Errorf("invalid integer literal %q in #if expression", text)
	}
	v := new(big.Int)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		_, ok := v.SetString(s[2:], 16)
		if !ok {
			return nil, fmt.Errorf("invalid hex literal %q", text)
		}
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		_, ok := v.SetString(s[2:], 2)
		if !ok {
			return nil, fmt.Errorf("invalid binary literal %q", text)
		}
	case len(s) > 1 && s[0] == '0':
		_, ok := v.SetString(s, 8)
		if !ok {
			return nil, fmt.Errorf("invalid octal literal %q", text)
		}
	default:
		_, ok := v.SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q in #if expression", text)
		}
	}
	return v, nil
}

// charLiteralValue maps a simple char literal to its codepoint,
// handling the common single-character and backslash-escape forms
// (spec §4.D's "char-literal-to-codepoint conversion").
func charLiteralValue(text string) (*big.Int, error) {
	s := text
	for len(s) > 0 && s[0] != '\'' {
		s = s[1:] // drop encoding prefix (L'x', u'x', ...)
	}
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return nil, fmt.Errorf("malformed char literal %q", text)
	}
	body := s[1 : len(s)-1]
	r, _, err := decodeFirstRune(body)
	if err != nil {
		return nil, err
	}
	return big.NewInt(int64(r)), nil
}

// decodeFirstRune decodes the first character of a char-literal body,
// resolving the common single-character backslash escapes.
func decodeFirstRune(body string) (rune, int, error) {
	if len(body) == 0 {
		return 0, 0, fmt.Errorf("empty char literal")
	}
	if body[0] != '\\' {
		r := []rune(body)[0]
		return r, 1, nil
	}
	if len(body) < 2 {
		return 0, 0, fmt.Errorf("malformed escape in char literal")
	}
	switch body[1] {
	case 'n':
		return '\n', 2, nil
	case 't':
		return '\t', 2, nil
	case 'r':
		return '\r', 2, nil
	case '0':
		return 0, 2, nil
	case '\\':
		return '\\', 2, nil
	case '\'':
		return '\'', 2, nil
	case '"':
		return '"', 2, nil
	default:
		return rune(body[1]), 2, nil
	}
}

func applyBinary(op string, l, r *big.Int) (*big.Int, error) {
	res := new(big.Int)
	switch op {
	case ",":
		return r, nil
	case "||":
		return boolInt(l.Sign() != 0 || r.Sign() != 0), nil
	case "&&":
		return boolInt(l.Sign() != 0 && r.Sign() != 0), nil
	case "|":
		return res.Or(l, r), nil
	case "^":
		return res.Xor(l, r), nil
	case "&":
		return res.And(l, r), nil
	case "==":
		return boolInt(l.Cmp(r) == 0), nil
	case "!=":
		return boolInt(l.Cmp(r) != 0), nil
	case "<":
		return boolInt(l.Cmp(r) < 0), nil
	case ">":
		return boolInt(l.Cmp(r) > 0), nil
	case "<=":
		return boolInt(l.Cmp(r) <= 0), nil
	case ">=":
		return boolInt(l.Cmp(r) >= 0), nil
	case "<=>":
		return big.NewInt(int64(l.Cmp(r))), nil
	case "<<":
		if !r.IsUint64() {
			return nil, fmt.Errorf("shift amount out of range")
		}
		return res.Lsh(l, uint(r.Uint64())), nil
	case ">>":
		if !r.IsUint64() {
			return nil, fmt.Errorf("shift amount out of range")
		}
		return res.Rsh(l, uint(r.Uint64())), nil
	case "+":
		return res.Add(l, r), nil
	case "-":
		return res.Sub(l, r), nil
	case "*":
		return res.Mul(l, r), nil
	case "/":
		if r.Sign() == 0 {
			return nil, fmt.Errorf("division by zero in #if expression")
		}
		return res.Quo(l, r), nil
	case "%":
		if r.Sign() == 0 {
			return nil, fmt.Errorf("modulo by zero in #if expression")
		}
		return res.Rem(l, r), nil
	}
	return nil, fmt.Errorf("unsupported operator %q in #if expression", op)
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

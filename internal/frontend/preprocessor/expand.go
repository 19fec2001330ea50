package preprocessor

import (
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/prelex"
	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// disabledSet is the "disabled-macros multiset" of spec §4.D: a
// macro shall not be replaced during its own expansion, including
// when it reappears through argument substitution. It is shared by
// reference across every nested expansion of one macro-invocation
// tree, exactly mirroring the meta-token channel the Rust original
// uses to keep the expander itself stateless between calls.
type disabledSet map[string]int

func (d disabledSet) disabled(name string) bool { return d[name] > 0 }
func (d disabledSet) push(name string)          { d[name]++ }
func (d disabledSet) pop(name string) {
	if d[name] > 0 {
		d[name]--
	}
}

// ExpandIdentifier expands a single macro-name token into its
// fully-rescanned replacement, or returns ok=false if name is not
// currently an eligible macro (undefined, or disabled, or a
// function-like macro not followed by '(').
//
// fetchMore is called when the argument scanner needs another token
// past what has already been buffered (e.g. a function-like macro's
// argument list spans multiple lines or an #include boundary); it
// returns ok=false at end of input. unconsume is called with any
// tokens ExpandIdentifier read via fetchMore but decided not to use
// (e.g. a function-like macro name not followed by '('), so the
// caller can push them back for normal processing.
func ExpandIdentifier(
	name string,
	reg *Registry,
	disabled disabledSet,
	fetchMore func() (token.PreToken, bool),
	unconsume func([]token.PreToken),
	ctx *ExpandContext,
) ([]token.PreToken, bool) {
	if disabled.disabled(name) {
		return nil, false
	}
	macro, ok := reg.Lookup(name)
	if !ok {
		return nil, false
	}

	var args []Argument
	if macro.FunctionLike {
		lookahead, foundParen, ok := skipToOpenParen(fetchMore)
		if !ok || !foundParen {
			unconsume(lookahead)
			return nil, false
		}
		var err error
		args, err = collectArguments(fetchMore)
		if err != nil {
			return nil, false
		}
		// "F()" supplies zero arguments, not one empty argument, when F
		// takes no parameters at all (spec §4.D).
		if len(args) == 1 && len(args[0].Tokens) == 0 && len(macro.Params) == 0 && !macro.Variadic.IsVariadic {
			args = nil
		}
		min, max := macro.MinMaxArity()
		if len(args) < min || len(args) > max {
			if ctx != nil && ctx.OnDiag != nil {
				ctx.OnDiag(arityDiag(name, min, len(args), ctx))
			}
			return nil, false
		}
	}

	var out []token.PreToken
	if macro.Builtin != nil {
		res, err := macro.Builtin(ctx, args)
		if err != nil {
			return nil, false
		}
		out = res
	} else {
		argMap, variadicArgs, hasVariadic := bindArgs(macro, args)
		disabled.push(name)
		out = substitute(macro.Body, argMap, variadicArgs, hasVariadic, reg, disabled, ctx)
		disabled.pop(name)
	}

	wrapped := make([]token.PreToken, 0, len(out)+2)
	wrapped = append(wrapped, token.DisableMacro(name))
	wrapped = append(wrapped, out...)
	wrapped = append(wrapped, token.EnableMacro(name))
	return wrapped, true
}

// skipToOpenParen peeks past whitespace/comments/newlines for '(',
// buffering everything it reads so the caller can push it back if no
// paren is found (spec §4.D: "absence means emit as-is").
func skipToOpenParen(fetchMore func() (token.PreToken, bool)) (buffered []token.PreToken, found, ok bool) {
	for {
		t, has := fetchMore()
		if !has {
			return buffered, false, false
		}
		buffered = append(buffered, t)
		if t.IsTrivia() || t.Kind == token.PreNewline {
			continue
		}
		if t.Kind == token.PreOperatorPunctuator && t.Text == "(" {
			return buffered, true, true
		}
		return buffered, false, true
	}
}

// collectArguments paren-depth-aware comma-splits a function-like
// macro call's argument list; the opening '(' has already been
// consumed by skipToOpenParen.
func collectArguments(fetchMore func() (token.PreToken, bool)) ([]Argument, error) {
	var args []Argument
	var cur []token.PreToken
	depth := 0

	flush := func() {
		// trim leading/trailing trivia
		start, end := 0, len(cur)
		for start < end && cur[start].IsTrivia() {
			start++
		}
		for end > start && cur[end-1].IsTrivia() {
			end--
		}
		args = append(args, Argument{Tokens: append([]token.PreToken{}, cur[start:end]...)})
		cur = nil
	}

	for {
		t, has := fetchMore()
		if !has {
			return nil, errUnbalancedParens
		}
		switch {
		case t.Kind == token.PreOperatorPunctuator && t.Text == "(":
			depth++
			cur = append(cur, t)
		case t.Kind == token.PreOperatorPunctuator && t.Text == ")":
			if depth == 0 {
				flush()
				return args, nil
			}
			depth--
			cur = append(cur, t)
		case t.Kind == token.PreOperatorPunctuator && t.Text == "," && depth == 0:
			flush()
		default:
			cur = append(cur, t)
		}
	}
}

var errUnbalancedParens = unbalancedParensError{}

type unbalancedParensError struct{}

func (unbalancedParensError) Error() string { return "unbalanced parentheses in macro argument list" }

// bindArgs maps a macro's named parameters to their supplied
// arguments, and assembles the variadic tail (joined with ',' tokens,
// spec §4.D) when the macro is variadic.
func bindArgs(m *Macro, args []Argument) (map[string][]token.PreToken, []token.PreToken, bool) {
	argMap := make(map[string][]token.PreToken, len(m.Params))
	for i, p := range m.Params {
		if i < len(args) {
			argMap[p] = args[i].Tokens
		}
	}
	if !m.Variadic.IsVariadic {
		return argMap, nil, false
	}
	var variadic []token.PreToken
	for i := len(m.Params); i < len(args); i++ {
		if i > len(m.Params) {
			variadic = append(variadic, token.Punct(","))
		}
		variadic = append(variadic, args[i].Tokens...)
	}
	return argMap, variadic, len(args) > len(m.Params)
}

// substitute renders a macro's replacement list given its bound
// arguments, expanding Arg/VariadicArg references (unless adjacent to
// # or ##) and resolving #, ##, and __VA_OPT__ (spec §4.D).
func substitute(body []ReplNode, args map[string][]token.PreToken, variadic []token.PreToken, hasVariadic bool, reg *Registry, disabled disabledSet, ctx *ExpandContext) []token.PreToken {
	var out []token.PreToken
	for i := range body {
		n := &body[i]
		switch n.Kind {
		case ReplNormal:
			out = append(out, n.Tok)
		case ReplArg:
			out = append(out, expandTokenSeq(args[n.ArgName], reg, disabled, ctx)...)
		case ReplVariadicArg:
			out = append(out, expandTokenSeq(variadic, reg, disabled, ctx)...)
		case ReplHash:
			out = append(out, stringize(rawRender(&n.Inner[0], args, variadic, hasVariadic)))
		case ReplHashHash:
			out = append(out, concatNodes(n.Left, n.Right, args, variadic, hasVariadic, reg, disabled, ctx)...)
		case ReplVariadicOpt:
			if hasVariadic && hasNonMeta(variadic) {
				out = append(out, substitute(n.Inner, args, variadic, hasVariadic, reg, disabled, ctx)...)
			} else {
				out = append(out, token.ValidNop())
			}
		}
	}
	return out
}

func hasNonMeta(toks []token.PreToken) bool {
	for _, t := range toks {
		if !t.IsMeta() && !t.IsTrivia() {
			return true
		}
	}
	return false
}

// rawRender renders a node's RAW (unexpanded) token form, used by #
// and ## per the standard's rule that their operands are never
// macro-expanded first.
func rawRender(n *ReplNode, args map[string][]token.PreToken, variadic []token.PreToken, hasVariadic bool) []token.PreToken {
	switch n.Kind {
	case ReplNormal:
		return []token.PreToken{n.Tok}
	case ReplArg:
		return args[n.ArgName]
	case ReplVariadicArg:
		return variadic
	case ReplVariadicOpt:
		if hasVariadic && hasNonMeta(variadic) {
			var out []token.PreToken
			for i := range n.Inner {
				out = append(out, rawRender(&n.Inner[i], args, variadic, hasVariadic)...)
			}
			return out
		}
		return nil
	case ReplHash:
		return []token.PreToken{stringize(rawRender(&n.Inner[0], args, variadic, hasVariadic))}
	case ReplHashHash:
		left := rawRender(n.Left, args, variadic, hasVariadic)
		right := rawRender(n.Right, args, variadic, hasVariadic)
		return concatRaw(left, right)
	}
	return nil
}

// concatNodes implements HashHash(L, R): GNU ",##__VA_ARGS__" drops
// the comma when variadic args are empty; otherwise the two raw
// renders are concatenated at the boundary and re-lexed.
func concatNodes(left, right *ReplNode, args map[string][]token.PreToken, variadic []token.PreToken, hasVariadic bool, reg *Registry, disabled disabledSet, ctx *ExpandContext) []token.PreToken {
	if left.Kind == ReplNormal && left.Tok.Kind == token.PreOperatorPunctuator && left.Tok.Text == "," &&
		right.Kind == ReplVariadicArg {
		if !hasVariadic || !hasNonMeta(variadic) {
			return nil
		}
		return append([]token.PreToken{token.Punct(",")}, expandTokenSeq(variadic, reg, disabled, ctx)...)
	}
	l := rawRender(left, args, variadic, hasVariadic)
	r := rawRender(right, args, variadic, hasVariadic)
	return concatRaw(l, r)
}

// concatRaw pastes the last token of l with the first token of r and
// re-lexes the boundary, per spec §4.D ## semantics.
func concatRaw(l, r []token.PreToken) []token.PreToken {
	if len(l) == 0 {
		return r
	}
	if len(r) == 0 {
		return l
	}
	pasted := spelling(l[len(l)-1]) + spelling(r[0])
	merged := relex(pasted)
	out := append([]token.PreToken{}, l[:len(l)-1]...)
	out = append(out, merged...)
	out = append(out, r[1:]...)
	return out
}

// relex re-lexes a short pasted string, as required after ## builds a
// new spelling (spec §4.D).
func relex(s string) []token.PreToken {
	f := source.New(0, "<paste>", s)
	lx := prelex.New(f)
	var out []token.PreToken
	for {
		t, _, _, ok, _ := lx.Next()
		if !ok {
			break
		}
		if t.Kind == token.PreNewline || t.IsTrivia() {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return []token.PreToken{{Kind: token.PreUnknown, Text: s}}
	}
	return out
}

// spelling renders a PreToken back to its source text, used when
// building the stringize/concatenation operands.
func spelling(t token.PreToken) string {
	switch t.Kind {
	case token.PreDisableMacro:
		return ""
	case token.PreEnableMacro:
		return ""
	case token.PreValidNop:
		return ""
	default:
		return t.Text
	}
}

// stringize implements '#': render inner with single-space whitespace
// collapsing and escape \ and " inside string/char literals, wrapped
// in double quotes (spec §4.D).
func stringize(toks []token.PreToken) token.PreToken {
	var b strings.Builder
	b.WriteByte('"')
	space := false
	for _, t := range toks {
		if t.IsMeta() {
			continue
		}
		if t.IsTrivia() || t.Kind == token.PreNewline {
			space = true
			continue
		}
		if space && b.Len() > 1 {
			b.WriteByte(' ')
		}
		space = false
		s := t.Text
		if t.Kind == token.PreStringLiteral || t.Kind == token.PreCharLiteral ||
			t.Kind == token.PreUserDefinedString || t.Kind == token.PreUserDefinedChar ||
			t.Kind == token.PreRawStringLiteral {
			s = strings.ReplaceAll(s, `\`, `\\`)
			s = strings.ReplaceAll(s, `"`, `\"`)
		}
		b.WriteString(s)
	}
	b.WriteByte('"')
	return token.PreToken{Kind: token.PreStringLiteral, Text: b.String()}
}

// expandTokenSeq fully macro-expands a finite, already-available token
// sequence (a macro argument, or a rescan target), sharing disabled
// with the caller so self-reference is blocked across argument
// substitution (spec §4.D, §8 testable property).
func expandTokenSeq(toks []token.PreToken, reg *Registry, disabled disabledSet, ctx *ExpandContext) []token.PreToken {
	if reg == nil {
		return toks
	}
	if disabled == nil {
		disabled = disabledSet{}
	}
	var out []token.PreToken
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Kind != token.PreIdent {
			out = append(out, t)
			i++
			continue
		}
		idx := i + 1
		fetch := func() (token.PreToken, bool) {
			if idx >= len(toks) {
				return token.PreToken{}, false
			}
			tk := toks[idx]
			idx++
			return tk, true
		}
		var buffered []token.PreToken
		unconsume := func(b []token.PreToken) { buffered = b }
		expanded, ok := ExpandIdentifier(t.Text, reg, disabled, fetch, unconsume, ctx)
		if !ok {
			out = append(out, t)
			i++
			continue
		}
		out = append(out, expandTokenSeq(expanded, reg, disabled, ctx)...)
		i = idx - len(buffered)
	}
	return out
}

// ExpandContext carries the contextual values a built-in macro needs
// (spec §4.D): the current file/line for __FILE__/__LINE__, a header
// resolver for __has_include, and a diagnostic sink. Path/Line/Column
// are left zero by emitters here and filled in by the driver, the same
// convention prelex.PreLexer uses.
type ExpandContext struct {
	FilePath      string
	Line          int
	Date          string
	Time          string
	ResolveHeader func(name string, quoted bool) bool
	OnDiag        func(diagnostics.Diagnostic)
}

func arityDiag(name string, expected, got int, ctx *ExpandContext) diagnostics.Diagnostic {
	return diagnostics.New(diagnostics.CodePPArity, diagnostics.SeverityError, "", 0, 0, map[string]any{
		"Name": name, "Expected": expected, "Got": got,
	})
}

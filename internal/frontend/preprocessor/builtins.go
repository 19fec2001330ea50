package preprocessor

import (
	"fmt"
	"strconv"

	"github.com/cppfront/cppfront/internal/frontend/token"
)

// registerBuiltins seeds r with the predefined macros every
// translation unit starts with (spec §4.D). Their values are resolved
// at expansion time from the ExpandContext, not fixed at registry
// construction, since __LINE__ changes with every invocation.
func registerBuiltins(r *Registry) {
	r.Define(&Macro{Name: "__FILE__", Builtin: expandFile})
	r.Define(&Macro{Name: "__LINE__", Builtin: expandLine})
	r.Define(&Macro{Name: "__DATE__", Builtin: expandDate})
	r.Define(&Macro{Name: "__TIME__", Builtin: expandTime})
	r.Define(&Macro{Name: "__cplusplus", Builtin: constant(token.PreToken{Kind: token.PrePPNumber, Text: "202002L"})})
	r.Define(&Macro{Name: "__STDC_HOSTED__", Builtin: constant(token.PreToken{Kind: token.PrePPNumber, Text: "1"})})
	r.Define(&Macro{Name: "__STDCPP_DEFAULT_NEW_ALIGNMENT__", Builtin: constant(token.PreToken{Kind: token.PrePPNumber, Text: "16"})})
	r.Define(&Macro{Name: "__has_cpp_attribute", FunctionLike: true, Params: []string{"x"}, Builtin: expandHasCppAttribute})
	r.Define(&Macro{Name: "__has_include", FunctionLike: true, Params: []string{"x"}, Builtin: expandHasInclude})
}

func constant(t token.PreToken) BuiltinExpander {
	return func(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
		return []token.PreToken{t}, nil
	}
}

func expandFile(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
	path := ""
	if ctx != nil {
		path = ctx.FilePath
	}
	return []token.PreToken{{Kind: token.PreStringLiteral, Text: strconv.Quote(path)}}, nil
}

func expandLine(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
	line := 0
	if ctx != nil {
		line = ctx.Line
	}
	return []token.PreToken{{Kind: token.PrePPNumber, Text: strconv.Itoa(line)}}, nil
}

func expandDate(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
	d := `"??? ?? ????"`
	if ctx != nil && ctx.Date != "" {
		d = strconv.Quote(ctx.Date)
	}
	return []token.PreToken{{Kind: token.PreStringLiteral, Text: d}}, nil
}

func expandTime(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
	t := `"??:??:??"`
	if ctx != nil && ctx.Time != "" {
		t = strconv.Quote(ctx.Time)
	}
	return []token.PreToken{{Kind: token.PreStringLiteral, Text: t}}, nil
}

// expandHasCppAttribute is a conservative stub (spec's Non-goals
// exclude attribute semantic checking): every attribute is reported
// unsupported so conditional code correctly falls back.
func expandHasCppAttribute(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
	return []token.PreToken{{Kind: token.PrePPNumber, Text: "0"}}, nil
}

func expandHasInclude(ctx *ExpandContext, args []Argument) ([]token.PreToken, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("__has_include expects exactly one argument")
	}
	name, quoted := headerNameFromArgument(args[0].Tokens)
	found := false
	if ctx != nil && ctx.ResolveHeader != nil {
		found = ctx.ResolveHeader(name, quoted)
	}
	v := "0"
	if found {
		v = "1"
	}
	return []token.PreToken{{Kind: token.PrePPNumber, Text: v}}, nil
}

// headerNameFromArgument recovers a header name from either a single
// HeaderName pretoken (the common case once the includer has put the
// lexer into header-name mode) or a reconstructed "<...>"/""..."" run
// of punctuator/identifier tokens (the macro-expanded spelling case,
// spec §4.D/§4.F).
func headerNameFromArgument(toks []token.PreToken) (name string, quoted bool) {
	var nonTrivia []token.PreToken
	for _, t := range toks {
		if !t.IsTrivia() {
			nonTrivia = append(nonTrivia, t)
		}
	}
	if len(nonTrivia) == 1 && nonTrivia[0].Kind == token.PreHeaderName {
		spelling := nonTrivia[0].Text
		if len(spelling) >= 2 {
			return spelling[1 : len(spelling)-1], spelling[0] == '"'
		}
	}
	if len(nonTrivia) == 1 && nonTrivia[0].Kind == token.PreStringLiteral {
		s := nonTrivia[0].Text
		if len(s) >= 2 {
			return s[1 : len(s)-1], true
		}
	}
	var b []byte
	for _, t := range nonTrivia {
		b = append(b, t.Text...)
	}
	s := string(b)
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s[1 : len(s)-1], false
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

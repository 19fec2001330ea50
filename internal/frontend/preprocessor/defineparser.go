package preprocessor

import (
	"fmt"

	"github.com/cppfront/cppfront/internal/frontend/token"
)

// lineTok is one token of a directive line, with its original
// adjacency to whitespace preserved (needed to tell "F(" apart from
// "F (").
type lineTok struct {
	Tok         token.PreToken
	SpaceBefore bool
}

// stripTrivia drops whitespace/comment tokens, recording on each
// remaining token whether whitespace immediately preceded it.
func stripTrivia(toks []token.PreToken) []lineTok {
	out := make([]lineTok, 0, len(toks))
	sawSpace := false
	for _, t := range toks {
		if t.IsTrivia() {
			sawSpace = true
			continue
		}
		out = append(out, lineTok{Tok: t, SpaceBefore: sawSpace})
		sawSpace = false
	}
	return out
}

// ParseDefine parses the token sequence following "#define" (spec
// §3/§4.D). raw must include inter-token whitespace so function-like
// detection ("F(" vs "F (") is correct.
func ParseDefine(raw []token.PreToken) (*Macro, error) {
	toks := stripTrivia(raw)
	if len(toks) == 0 || toks[0].Tok.Kind != token.PreIdent {
		return nil, fmt.Errorf("#define requires a macro name")
	}
	m := &Macro{Name: toks[0].Tok.Text}
	rest := toks[1:]

	functionLike := len(rest) > 0 && rest[0].Tok.Kind == token.PreOperatorPunctuator &&
		rest[0].Tok.Text == "(" && !rest[0].SpaceBefore

	if functionLike {
		m.FunctionLike = true
		var err error
		m.Params, m.Variadic, rest, err = parseParamList(rest)
		if err != nil {
			return nil, err
		}
		if seen := map[string]bool{}; true {
			for _, p := range m.Params {
				if seen[p] {
					return nil, fmt.Errorf("duplicate macro parameter '%s'", p)
				}
				seen[p] = true
			}
		}
	}

	body, err := buildReplacement(rest, m.Params, m.Variadic)
	if err != nil {
		return nil, err
	}
	m.Body = body
	return m, nil
}

// parseParamList consumes "( a, b, ... )" (the opening paren must
// already be rest[0]) and returns the parameter names, variadic mode,
// and the remaining tokens (the replacement list).
func parseParamList(rest []lineTok) ([]string, Variadic, []lineTok, error) {
	rest = rest[1:] // consume '('
	var params []string
	var variadic Variadic

	for {
		if len(rest) == 0 {
			return nil, Variadic{}, nil, fmt.Errorf("unterminated macro parameter list")
		}
		if rest[0].Tok.Kind == token.PreOperatorPunctuator && rest[0].Tok.Text == ")" {
			rest = rest[1:]
			break
		}
		if rest[0].Tok.Kind == token.PreOperatorPunctuator && rest[0].Tok.Text == "..." {
			variadic = Variadic{IsVariadic: true}
			rest = rest[1:]
			if len(rest) == 0 || rest[0].Tok.Text != ")" {
				return nil, Variadic{}, nil, fmt.Errorf("expected ')' after '...'")
			}
			rest = rest[1:]
			break
		}
		if rest[0].Tok.Kind != token.PreIdent {
			return nil, Variadic{}, nil, fmt.Errorf("expected macro parameter name")
		}
		name := rest[0].Tok.Text
		rest = rest[1:]
		if len(rest) > 0 && rest[0].Tok.Kind == token.PreOperatorPunctuator && rest[0].Tok.Text == "..." {
			// GNU named-variadic extension: "name..."
			variadic = Variadic{IsVariadic: true, Name: name}
			rest = rest[1:]
			if len(rest) == 0 || rest[0].Tok.Text != ")" {
				return nil, Variadic{}, nil, fmt.Errorf("expected ')' after named variadic parameter")
			}
			rest = rest[1:]
			break
		}
		params = append(params, name)
		if len(rest) > 0 && rest[0].Tok.Kind == token.PreOperatorPunctuator && rest[0].Tok.Text == "," {
			rest = rest[1:]
			continue
		}
	}
	return params, variadic, rest, nil
}

// buildReplacement turns a flat, trivia-stripped token run into the
// macro's replacement list, resolving parameter references, #
// stringize, and ## concatenation (spec §3's PreTokenDefine).
func buildReplacement(toks []lineTok, params []string, variadic Variadic) ([]ReplNode, error) {
	isParam := map[string]bool{}
	for _, p := range params {
		isParam[p] = true
	}
	variadicName := ""
	if variadic.IsVariadic {
		variadicName = variadic.paramName()
	}

	type atom struct {
		isOp bool
		node ReplNode
	}
	var atoms []atom

	i := 0
	for i < len(toks) {
		t := toks[i]

		if t.Tok.Kind == token.PreHashHash {
			atoms = append(atoms, atom{isOp: true})
			i++
			continue
		}

		if t.Tok.Kind == token.PreHash {
			if i+1 >= len(toks) {
				return nil, fmt.Errorf("'#' must be followed by a macro parameter")
			}
			argNode, consumed, err := paramNode(toks[i+1], isParam, variadicName, t.SpaceBefore)
			if err != nil {
				return nil, fmt.Errorf("'#' must be followed by a macro parameter: %w", err)
			}
			atoms = append(atoms, atom{node: ReplNode{Kind: ReplHash, Inner: []ReplNode{argNode}, SpaceBefore: t.SpaceBefore}})
			i += 1 + consumed
			continue
		}

		if t.Tok.Kind == token.PreIdent && t.Tok.Text == "__VA_OPT__" {
			if i+1 >= len(toks) || toks[i+1].Tok.Text != "(" {
				return nil, fmt.Errorf("__VA_OPT__ must be followed by '('")
			}
			depth := 1
			j := i + 2
			innerToks := []lineTok{}
			for j < len(toks) && depth > 0 {
				if toks[j].Tok.Text == "(" {
					depth++
				} else if toks[j].Tok.Text == ")" {
					depth--
					if depth == 0 {
						break
					}
				}
				innerToks = append(innerToks, toks[j])
				j++
			}
			if depth != 0 {
				return nil, fmt.Errorf("unterminated __VA_OPT__")
			}
			inner, err := buildReplacement(innerToks, params, variadic)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, atom{node: ReplNode{Kind: ReplVariadicOpt, Inner: inner, SpaceBefore: t.SpaceBefore}})
			i = j + 1
			continue
		}

		if t.Tok.Kind == token.PreIdent && variadic.IsVariadic && t.Tok.Text == variadicName {
			atoms = append(atoms, atom{node: ReplNode{Kind: ReplVariadicArg, SpaceBefore: t.SpaceBefore}})
			i++
			continue
		}

		if t.Tok.Kind == token.PreIdent && isParam[t.Tok.Text] {
			atoms = append(atoms, atom{node: ReplNode{Kind: ReplArg, ArgName: t.Tok.Text, SpaceBefore: t.SpaceBefore}})
			i++
			continue
		}

		atoms = append(atoms, atom{node: ReplNode{Kind: ReplNormal, Tok: t.Tok, SpaceBefore: t.SpaceBefore}})
		i++
	}

	var out []ReplNode
	k := 0
	for k < len(atoms) {
		if atoms[k].isOp {
			// Leading/trailing ## is malformed; skip defensively rather
			// than panic so later diagnostics still get a usable AST.
			k++
			continue
		}
		cur := atoms[k].node
		k++
		for k+1 < len(atoms)+1 && k < len(atoms) && atoms[k].isOp {
			k++ // consume '##'
			if k >= len(atoms) || atoms[k].isOp {
				break
			}
			left, right := cur, atoms[k].node
			cur = ReplNode{Kind: ReplHashHash, Left: &left, Right: &right}
			k++
		}
		out = append(out, cur)
	}
	return out, nil
}

func paramNode(t lineTok, isParam map[string]bool, variadicName string, spaceBefore bool) (ReplNode, int, error) {
	if t.Tok.Kind != token.PreIdent {
		return ReplNode{}, 0, fmt.Errorf("expected parameter name, got %q", t.Tok.Text)
	}
	if variadicName != "" && t.Tok.Text == variadicName {
		return ReplNode{Kind: ReplVariadicArg, SpaceBefore: spaceBefore}, 1, nil
	}
	if isParam[t.Tok.Text] {
		return ReplNode{Kind: ReplArg, ArgName: t.Tok.Text, SpaceBefore: spaceBefore}, 1, nil
	}
	return ReplNode{}, 0, fmt.Errorf("'%s' is not a macro parameter", t.Tok.Text)
}

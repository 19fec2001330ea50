package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/modules"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// RenderDependencyTree prints every node's declaration, its depth, and
// what it depends on, for the --printDependencyTree flag (spec §6).
func RenderDependencyTree(g *modules.Graph) string {
	all := map[modules.Declaration]*modules.Node{}
	for d, n := range g.Roots {
		all[d] = n
	}
	for d, n := range g.Children {
		all[d] = n
	}

	decls := make([]modules.Declaration, 0, len(all))
	for d := range all {
		decls = append(decls, d)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].String() < decls[j].String() })

	var b strings.Builder
	for _, d := range decls {
		n := all[d]
		fmt.Fprintf(&b, "%s (depth=%d)\n", d.String(), n.Depth)
		deps := make([]string, 0, len(n.DependsOn))
		for dep := range n.DependsOn {
			deps = append(deps, dep.String())
		}
		sort.Strings(deps)
		for _, dep := range deps {
			fmt.Fprintf(&b, "  -> %s\n", dep)
		}
	}
	return b.String()
}

// RenderPreprocessed renders a unit's preprocessed token stream as
// space-separated spellings, for the --preprocess flag (spec §6).
func RenderPreprocessed(pre []token.PreToken) string {
	var b strings.Builder
	for _, pt := range pre {
		if pt.IsMeta() || pt.IsTrivia() {
			continue
		}
		if pt.Kind == token.PreNewline {
			b.WriteString("\n")
			continue
		}
		b.WriteString(pt.Text)
		b.WriteString(" ")
	}
	return b.String()
}

// RenderLexed renders a unit's post-lex token stream as one spelling
// per line tagged with its Kind, for the --lexify flag (spec §6).
func RenderLexed(toks []token.Token, interner *token.Interner) string {
	var b strings.Builder
	for _, t := range toks {
		if t.Kind == token.KindEOF {
			break
		}
		fmt.Fprintf(&b, "%s %s\n", t.Kind, spellToken(t, interner))
	}
	return b.String()
}

func spellToken(t token.Token, interner *token.Interner) string {
	switch t.Kind {
	case token.KindIdentifier:
		return interner.Lookup(t.Ident)
	case token.KindKeyword:
		return t.KeywordID
	case token.KindPunctuator:
		return t.Punct
	case token.KindStringLiteral:
		return t.StringValue
	case token.KindIntLiteral:
		return fmt.Sprintf("%d", t.IntValue)
	case token.KindFloatLiteral:
		return t.FloatValue
	case token.KindCharLiteral:
		return string(t.CharValue)
	case token.KindBoolLiteral:
		return fmt.Sprintf("%t", t.BoolValue)
	default:
		return t.Kind.String()
	}
}

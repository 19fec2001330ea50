// Package modules implements the module scanner, dependency graph
// builder, and thread-safe DependencyIterator (spec §4.F/§4.G/§4.H,
// components F/G/H).
package modules

import (
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/token"
)

// OperatorKind tags one module-related directive found while scanning
// a translation unit (spec §4.F).
type OperatorKind uint8

const (
	OpModule OperatorKind = iota
	OpExportModule
	OpImport
	OpImportHeader
	OpPrivateModuleFragment
)

// Operator is one module/import/export-module occurrence extracted
// from a token stream, with its name already validated.
type Operator struct {
	Kind OperatorKind
	Name string // dotted module name, or a partition "name:part"
}

// validModuleName reports whether s is a well-formed module name:
// non-empty identifier-shaped components only (spec §4.F grammar
// "ident(.ident)*(:ident(.ident)*)?").
func validModuleName(s string) bool {
	if s == "" {
		return false
	}
	halves := strings.Split(s, ":")
	if len(halves) > 2 {
		return false
	}
	for _, half := range halves {
		for _, part := range strings.Split(half, ".") {
			if part == "" || !isIdentShaped(part) {
				return false
			}
		}
	}
	return true
}

func isIdentShaped(s string) bool {
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// Scan walks a fully-lexed token stream looking for the leading
// module/import/export-module declarations (spec §4.F). Only the
// forms that matter for dependency discovery are recognized; anything
// else is left for the parser.
func Scan(toks []token.Token, interner *token.Interner) []Operator {
	var ops []Operator
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch {
		case t.Kind == token.KindModule:
			op, next, ok := scanModuleDecl(toks, i+1, interner)
			if ok {
				ops = append(ops, op)
			}
			i = next
		case t.Kind == token.KindKeyword && t.KeywordID == "export" && i+1 < len(toks) && toks[i+1].Kind == token.KindModule:
			op, next, ok := scanModuleDecl(toks, i+2, interner)
			if ok {
				op.Kind = promoteExport(op.Kind)
				ops = append(ops, op)
			}
			i = next
		case t.Kind == token.KindImport:
			op, next, ok := scanImport(toks, i+1, interner)
			if ok {
				ops = append(ops, op)
			}
			i = next
		default:
			i++
		}
	}
	return ops
}

func promoteExport(k OperatorKind) OperatorKind {
	if k == OpModule {
		return OpExportModule
	}
	return k
}

// scanModuleDecl reads "name[:part] ;" or "module :private ;"
// starting right after the 'module' keyword.
func scanModuleDecl(toks []token.Token, i int, interner *token.Interner) (Operator, int, bool) {
	if i < len(toks) && toks[i].Kind == token.KindPunctuator && toks[i].Punct == ":" {
		j := skipToSemi(toks, i)
		return Operator{Kind: OpPrivateModuleFragment, Name: "private"}, j, true
	}
	name, j := readModuleName(toks, i, interner)
	j = skipToSemi(toks, j)
	if !validModuleName(name) {
		return Operator{}, j, false
	}
	return Operator{Kind: OpModule, Name: name}, j, true
}

func scanImport(toks []token.Token, i int, interner *token.Interner) (Operator, int, bool) {
	if i < len(toks) && toks[i].Kind == token.KindImportableHeaderName {
		header := toks[i].HeaderPath
		j := skipToSemi(toks, i+1)
		return Operator{Kind: OpImportHeader, Name: header}, j, true
	}
	name, j := readModuleName(toks, i, interner)
	j = skipToSemi(toks, j)
	if !validModuleName(name) {
		return Operator{}, j, false
	}
	return Operator{Kind: OpImport, Name: name}, j, true
}

// readModuleName consumes an "ident(.ident)*(:ident(.ident)*)?" run.
func readModuleName(toks []token.Token, i int, interner *token.Interner) (string, int) {
	var b strings.Builder
	for i < len(toks) {
		t := toks[i]
		switch {
		case t.Kind == token.KindIdentifier:
			b.WriteString(interner.Lookup(t.Ident))
			i++
		case t.Kind == token.KindPunctuator && (t.Punct == "." || t.Punct == ":"):
			b.WriteString(t.Punct)
			i++
		case t.Kind == token.KindKeyword && t.KeywordID == "private" && b.Len() > 0 && strings.HasSuffix(b.String(), ":"):
			b.WriteString("private")
			i++
		default:
			return b.String(), i
		}
	}
	return b.String(), i
}

func skipToSemi(toks []token.Token, i int) int {
	for i < len(toks) {
		if toks[i].Kind == token.KindPunctuator && toks[i].Punct == ";" {
			return i + 1
		}
		i++
	}
	return i
}

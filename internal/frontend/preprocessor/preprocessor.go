package preprocessor

import (
	"path/filepath"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/prelex"
	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// lineOverride records a #line directive's effect on one file: from
// anchorRow onward, reported line numbers are shifted so that anchorRow
// itself reports as newLineAtAnchor (spec §4.D).
type lineOverride struct {
	anchorRow       int
	newLineAtAnchor int
	newFile         string
}

// Preprocessor drives one translation unit's preprocessing pass: it
// composes a MultiLexer, a macro Registry, an Includer, and the
// directive state machine into the single token stream the Lexer
// stage consumes (spec §4.D).
type Preprocessor struct {
	reg      *Registry
	includer *Includer
	files    *source.Map
	bag      *diagnostics.Bag

	ml           *prelex.MultiLexer
	disabled     disabledSet
	ifStack      []condFrame
	pragmaOnce   map[source.ID]bool
	fileDir      map[source.ID]string
	lineOverrides map[source.ID]lineOverride
	includeDepth int
	lastTokenEnd int
	lastTokenFile source.ID
}

// NewPreprocessor builds a Preprocessor sharing reg (pre-seeded with
// builtins and any command-line -D definitions) and includer across
// the run.
func NewPreprocessor(reg *Registry, includer *Includer, files *source.Map, bag *diagnostics.Bag) *Preprocessor {
	return &Preprocessor{
		reg:           reg,
		includer:      includer,
		files:         files,
		bag:           bag,
		disabled:      disabledSet{},
		pragmaOnce:    map[source.ID]bool{},
		fileDir:       map[source.ID]string{},
		lineOverrides: map[source.ID]lineOverride{},
	}
}

// Run preprocesses file end to end, returning the resulting token
// stream (including DisableMacro/EnableMacro/ValidNop meta-tokens,
// which the Lexer stage filters out).
func (p *Preprocessor) Run(file *source.File) []token.PreToken {
	p.registerFile(file)
	p.ml = prelex.NewMultiLexer(file, p.onLexDiag)

	var out []token.PreToken
	atStartLine := true
	lastDepth := p.ml.Depth()

	for {
		pt, ok := p.ml.Next()
		if !ok {
			break
		}
		if d := p.ml.Depth(); d < lastDepth {
			p.includeDepth -= lastDepth - d
			if p.includeDepth < 0 {
				p.includeDepth = 0
			}
		}
		lastDepth = p.ml.Depth()
		p.lastTokenEnd = pt.Start
		p.lastTokenFile = pt.File

		t := pt.Tok
		if atStartLine && t.Kind == token.PreHash {
			p.dispatchDirective()
			atStartLine = true
			lastDepth = p.ml.Depth()
			continue
		}
		if t.Kind == token.PreNewline {
			atStartLine = true
			if p.including() {
				out = append(out, t)
			}
			continue
		}
		if !t.IsTrivia() {
			atStartLine = false
		}
		if !p.including() {
			continue
		}
		switch t.Kind {
		case token.PreDisableMacro:
			p.disabled.push(t.Name)
		case token.PreEnableMacro:
			p.disabled.pop(t.Name)
		}
		if t.IsTrivia() {
			out = append(out, t)
			continue
		}
		if t.Kind == token.PreIdent {
			expanded, ok := p.expandAtDriver(pt)
			if ok {
				p.ml.PushTokens(toPositioned(expanded, pt.File, pt.Start, pt.End))
				continue
			}
		}
		out = append(out, t)
	}

	if len(p.ifStack) > 0 {
		p.diag(diagnostics.CodePPUnterminatedIf, diagnostics.SeverityError, map[string]any{"StartLine": p.ifStack[0].startLine})
	}
	return out
}

func toPositioned(toks []token.PreToken, file source.ID, start, end int) []prelex.Positioned {
	out := make([]prelex.Positioned, len(toks))
	for i, t := range toks {
		out[i] = prelex.Positioned{Tok: t, File: file, Start: start, End: end}
	}
	return out
}

// expandAtDriver attempts to expand one identifier token encountered
// while streaming the file, pulling further tokens from the
// MultiLexer when a function-like macro's call syntax needs to be
// confirmed, and pushing back whatever it read but didn't use.
func (p *Preprocessor) expandAtDriver(pt prelex.Positioned) ([]token.PreToken, bool) {
	var recorded []prelex.Positioned
	pushedBack := false
	fetch := func() (token.PreToken, bool) {
		next, ok := p.ml.Next()
		if !ok {
			return token.PreToken{}, false
		}
		recorded = append(recorded, next)
		return next.Tok, true
	}
	unconsume := func(_ []token.PreToken) { pushedBack = true }
	expanded, ok := ExpandIdentifier(pt.Tok.Text, p.reg, p.disabled, fetch, unconsume, p.exprContext())
	if !ok {
		if pushedBack && len(recorded) > 0 {
			p.ml.PushTokens(recorded)
		}
		return nil, false
	}
	return expanded, true
}

func (p *Preprocessor) registerFile(f *source.File) {
	p.fileDir[f.ID()] = filepath.Dir(f.Path())
}

// lineOf reports the (possibly #line-adjusted) 1-based line for an
// offset within file.
func (p *Preprocessor) lineOf(file source.ID, offset int) (int, string) {
	f, ok := p.files.Get(file)
	path := ""
	row := 1
	if ok {
		row, _ = f.Position(offset)
		path = f.Path()
	}
	if ov, has := p.lineOverrides[file]; has {
		row = ov.newLineAtAnchor + (row - ov.anchorRow)
		if ov.newFile != "" {
			path = ov.newFile
		}
	}
	return row, path
}

func (p *Preprocessor) exprContext() *ExpandContext {
	row, path := p.lineOf(p.lastTokenFile, p.lastTokenEnd)
	return &ExpandContext{
		FilePath: path,
		Line:     row,
		ResolveHeader: func(name string, quoted bool) bool {
			return p.includer.Exists(name, quoted, p.fileDir[p.lastTokenFile])
		},
		OnDiag: func(d diagnostics.Diagnostic) {
			d.Path, d.Line, d.Column = path, row, 1
			p.emit(d)
		},
	}
}

func (p *Preprocessor) diag(code diagnostics.Code, sev diagnostics.Severity, params map[string]any) {
	row, path := p.lineOf(p.lastTokenFile, p.lastTokenEnd)
	p.emit(diagnostics.New(code, sev, path, row, 1, params))
}

func (p *Preprocessor) emit(d diagnostics.Diagnostic) {
	if p.bag != nil {
		p.bag.Add(d)
	}
}

func (p *Preprocessor) onLexDiag(d diagnostics.Diagnostic) {
	p.emit(d)
}

package preprocessor

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// condFrame tracks one open #if/#elif/#else/#endif chain (spec §4.D).
// currentTaken is whether the active branch's content is currently
// included; anyTaken is whether some branch in this chain has already
// been taken (so later #elif/#else are skipped); parentActive records
// whether the enclosing context was active when this chain opened, so
// a chain nested inside an excluded region never activates regardless
// of its own conditions (matching the standard's "skipped group" rule
// that conditions in a skipped group are not evaluated at all).
type condFrame struct {
	parentActive bool
	anyTaken     bool
	currentTaken bool
	sawElse      bool
	startLine    int
}

func (p *Preprocessor) including() bool {
	for _, f := range p.ifStack {
		if !f.currentTaken {
			return false
		}
	}
	return true
}

// dispatchDirective handles one "#..." line, having already consumed
// the '#' (spec §4.D).
func (p *Preprocessor) dispatchDirective() {
	name, empty := p.readDirectiveName()
	if empty {
		return // null directive
	}
	switch name {
	case "include", "include_next":
		p.handleInclude()
	case "define":
		p.handleDefine()
	case "undef":
		p.handleUndef()
	case "if":
		p.handleIf()
	case "ifdef":
		p.handleIfdef(true)
	case "ifndef":
		p.handleIfdef(false)
	case "elif":
		p.handleElif()
	case "else":
		p.handleElse()
	case "endif":
		p.handleEndif()
	case "error":
		p.handleError()
	case "warning":
		p.handleWarning()
	case "pragma":
		p.handlePragma()
	case "line":
		p.handleLine()
	default:
		if p.including() {
			p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": name})
		}
		p.skipRestOfLine()
	}
}

// readDirectiveName consumes tokens up to and including the directive
// keyword (skipping leading whitespace), returning its spelling and
// whether the line was empty (a valid null directive).
func (p *Preprocessor) readDirectiveName() (name string, empty bool) {
	for {
		pt, ok := p.ml.Next()
		if !ok {
			return "", true
		}
		if pt.Tok.IsTrivia() {
			continue
		}
		if pt.Tok.Kind == token.PreNewline {
			return "", true
		}
		return pt.Tok.Text, false
	}
}

// readRestOfLine consumes and returns every token up to (not
// including) the terminating newline.
func (p *Preprocessor) readRestOfLine() []token.PreToken {
	var toks []token.PreToken
	for {
		pt, ok := p.ml.Next()
		if !ok || pt.Tok.Kind == token.PreNewline {
			return toks
		}
		toks = append(toks, pt.Tok)
	}
}

func (p *Preprocessor) skipRestOfLine() {
	for {
		pt, ok := p.ml.Next()
		if !ok || pt.Tok.Kind == token.PreNewline {
			return
		}
	}
}

func firstIdent(toks []token.PreToken) (string, bool) {
	for _, t := range toks {
		if t.IsTrivia() {
			continue
		}
		if t.Kind == token.PreIdent {
			return t.Text, true
		}
		return "", false
	}
	return "", false
}

func (p *Preprocessor) handleDefine() {
	toks := p.readRestOfLine()
	if !p.including() {
		return
	}
	m, err := ParseDefine(toks)
	if err != nil {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": "define: " + err.Error()})
		return
	}
	if old, ok := p.reg.Lookup(m.Name); ok && !macrosEqual(old, m) {
		p.diag(diagnostics.CodePPRedefinition, diagnostics.SeverityWarning, map[string]any{"Name": m.Name})
	}
	p.reg.Define(m)
}

func macrosEqual(a, b *Macro) bool {
	if a.FunctionLike != b.FunctionLike || a.Variadic != b.Variadic {
		return false
	}
	if !reflect.DeepEqual(a.Params, b.Params) {
		return false
	}
	return reflect.DeepEqual(a.Body, b.Body)
}

func (p *Preprocessor) handleUndef() {
	toks := p.readRestOfLine()
	if !p.including() {
		return
	}
	name, ok := firstIdent(toks)
	if !ok {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": "undef requires a macro name"})
		return
	}
	p.reg.Undef(name)
}

func (p *Preprocessor) handleIf() {
	toks := p.readRestOfLine()
	parentActive := p.including()
	line, _ := p.lineOf(p.lastTokenFile, p.lastTokenEnd)
	frame := condFrame{parentActive: parentActive, startLine: line}
	if parentActive {
		v, err := EvalIf(toks, p.reg, p.disabled, p.exprContext())
		if err != nil {
			p.diag(diagnostics.CodePPBadIfExpr, diagnostics.SeverityError, map[string]any{"Name": err.Error()})
		}
		frame.currentTaken = v
		frame.anyTaken = v
	}
	p.ifStack = append(p.ifStack, frame)
}

func (p *Preprocessor) handleIfdef(wantDefined bool) {
	toks := p.readRestOfLine()
	parentActive := p.including()
	line, _ := p.lineOf(p.lastTokenFile, p.lastTokenEnd)
	frame := condFrame{parentActive: parentActive, startLine: line}
	if parentActive {
		name, ok := firstIdent(toks)
		taken := ok && p.reg.IsDefined(name) == wantDefined
		frame.currentTaken = taken
		frame.anyTaken = taken
	}
	p.ifStack = append(p.ifStack, frame)
}

func (p *Preprocessor) handleElif() {
	toks := p.readRestOfLine()
	if len(p.ifStack) == 0 {
		p.diag(diagnostics.CodePPUnmatchedEndif, diagnostics.SeverityError, map[string]any{"Name": "elif"})
		return
	}
	top := &p.ifStack[len(p.ifStack)-1]
	if top.sawElse {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": "#elif after #else"})
		top.currentTaken = false
		return
	}
	if !top.parentActive || top.anyTaken {
		top.currentTaken = false
		return
	}
	v, err := EvalIf(toks, p.reg, p.disabled, p.exprContext())
	if err != nil {
		p.diag(diagnostics.CodePPBadIfExpr, diagnostics.SeverityError, map[string]any{"Name": err.Error()})
	}
	top.currentTaken = v
	top.anyTaken = v
}

func (p *Preprocessor) handleElse() {
	p.skipRestOfLine()
	if len(p.ifStack) == 0 {
		p.diag(diagnostics.CodePPUnmatchedEndif, diagnostics.SeverityError, map[string]any{"Name": "else"})
		return
	}
	top := &p.ifStack[len(p.ifStack)-1]
	if top.sawElse {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": "#else after #else"})
		top.currentTaken = false
		return
	}
	top.sawElse = true
	if !top.parentActive || top.anyTaken {
		top.currentTaken = false
		return
	}
	top.currentTaken = true
	top.anyTaken = true
}

func (p *Preprocessor) handleEndif() {
	p.skipRestOfLine()
	if len(p.ifStack) == 0 {
		p.diag(diagnostics.CodePPUnmatchedEndif, diagnostics.SeverityError, map[string]any{"Name": "endif"})
		return
	}
	p.ifStack = p.ifStack[:len(p.ifStack)-1]
}

func (p *Preprocessor) handleError() {
	toks := p.readRestOfLine()
	if !p.including() {
		return
	}
	p.diag(diagnostics.CodePPErrorDirective, diagnostics.SeverityError, map[string]any{"Message": spellLine(toks)})
}

func (p *Preprocessor) handleWarning() {
	toks := p.readRestOfLine()
	if !p.including() {
		return
	}
	p.diag(diagnostics.CodePPWarnDirective, diagnostics.SeverityWarning, map[string]any{"Message": spellLine(toks)})
}

func (p *Preprocessor) handlePragma() {
	toks := p.readRestOfLine()
	if !p.including() {
		return
	}
	name, ok := firstIdent(toks)
	if !ok {
		p.diag(diagnostics.CodePPMalformedPragma, diagnostics.SeverityWarning, map[string]any{"Name": spellLine(toks)})
		return
	}
	if name == "once" {
		p.pragmaOnce[p.ml.CurrentFile()] = true
	}
	// Other pragmas are implementation-specific; accepted and ignored.
}

func (p *Preprocessor) handleLine() {
	toks := p.readRestOfLine()
	if !p.including() {
		return
	}
	var numTok, fileTok *token.PreToken
	for i := range toks {
		if toks[i].IsTrivia() {
			continue
		}
		if numTok == nil {
			numTok = &toks[i]
			continue
		}
		if fileTok == nil {
			fileTok = &toks[i]
		}
		break
	}
	if numTok == nil || numTok.Kind != token.PrePPNumber {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": "#line requires a line number"})
		return
	}
	n, err := strconv.Atoi(numTok.Text)
	if err != nil {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityError, map[string]any{"Name": "#line requires a line number"})
		return
	}
	file := p.ml.CurrentFile()
	delete(p.lineOverrides, file) // anchor on the file's own row numbering
	anchorRow, _ := p.lineOf(file, p.lastTokenEnd)
	ov := lineOverride{anchorRow: anchorRow, newLineAtAnchor: n}
	if fileTok != nil && fileTok.Kind == token.PreStringLiteral {
		s := fileTok.Text
		if len(s) >= 2 {
			ov.newFile = s[1 : len(s)-1]
		}
	}
	p.lineOverrides[file] = ov
}

func spellLine(toks []token.PreToken) string {
	var b strings.Builder
	for i, t := range toks {
		if t.IsTrivia() {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func (p *Preprocessor) handleInclude() {
	p.ml.EnterHeaderNameMode()
	toks := p.readRestOfLine()
	p.ml.ExitHeaderNameMode()
	if !p.including() {
		return
	}

	var nonTrivia []token.PreToken
	for _, t := range toks {
		if !t.IsTrivia() {
			nonTrivia = append(nonTrivia, t)
		}
	}

	var name string
	var quoted bool
	if len(nonTrivia) == 1 && nonTrivia[0].Kind == token.PreHeaderName {
		name, quoted = headerNameFromArgument(nonTrivia)
	} else {
		expanded := expandTokenSeq(toks, p.reg, p.disabled, p.exprContext())
		name, quoted = headerNameFromArgument(expanded)
	}
	if name == "" {
		p.diag(diagnostics.CodePPIncludeNotFound, diagnostics.SeverityError, map[string]any{"Name": spellLine(toks)})
		return
	}

	fromDir := p.fileDir[p.ml.CurrentFile()]
	file, err := p.includer.Resolve(name, quoted, fromDir)
	if err != nil {
		p.diag(diagnostics.CodePPIncludeNotFound, diagnostics.SeverityError, map[string]any{"Name": name})
		return
	}
	if p.pragmaOnce[file.ID()] {
		return
	}
	if p.includeDepth >= maxIncludeDepth {
		p.diag(diagnostics.CodePPBadDirective, diagnostics.SeverityFatal, map[string]any{"Name": "#include nesting too deep"})
		return
	}
	p.registerFile(file)
	p.includeDepth++
	p.ml.PushFile(file)
}

const maxIncludeDepth = 200

package prelex

import (
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// Positioned is a PreToken together with the file and byte range it
// came from, so tokens pushed back after macro expansion still carry
// enough information for diagnostics.
type Positioned struct {
	Tok   token.PreToken
	File  source.ID
	Start int
	End   int
}

// MultiLexer is a stack of open files, each with its own PreLexer,
// plus a push-back queue of already-produced tokens (spec §4.C). This
// is what lets #include transparently continue preprocessing in the
// new file, and what the macro expander uses to rescan a macro's
// replacement list.
type MultiLexer struct {
	stack   []*PreLexer
	pushed  []Positioned
	onDiag  func(diagnostics.Diagnostic)
}

// NewMultiLexer starts a MultiLexer with a single open file.
func NewMultiLexer(file *source.File, onDiag func(diagnostics.Diagnostic)) *MultiLexer {
	return &MultiLexer{stack: []*PreLexer{New(file)}, onDiag: onDiag}
}

// PushFile opens a new file on top of the stack (spec §4.C), used by
// #include.
func (m *MultiLexer) PushFile(file *source.File) {
	m.stack = append(m.stack, New(file))
}

// PushTokens injects tokens to be re-served before any further
// lexing, used for macro-rescanning (spec §4.C/§4.D). Tokens are
// pushed so that seq[0] is served first.
func (m *MultiLexer) PushTokens(seq []Positioned) {
	m.pushed = append(append([]Positioned{}, seq...), m.pushed...)
}

// CurrentFile returns the file id of the innermost open lexer, or 0 if
// the stack is empty.
func (m *MultiLexer) CurrentFile() source.ID {
	if len(m.stack) == 0 {
		return 0
	}
	return m.stack[len(m.stack)-1].file.ID()
}

// EnterHeaderNameMode/ExitHeaderNameMode forward to the innermost
// lexer, used by #include/import to recover a HeaderName token.
func (m *MultiLexer) EnterHeaderNameMode() {
	if n := len(m.stack); n > 0 {
		m.stack[n-1].EnterHeaderNameMode()
	}
}
func (m *MultiLexer) ExitHeaderNameMode() {
	if n := len(m.stack); n > 0 {
		m.stack[n-1].ExitHeaderNameMode()
	}
}

// Next returns the next token: from the push-back queue first, else
// from the top-of-stack lexer, popping exhausted lexers (spec §4.C).
func (m *MultiLexer) Next() (Positioned, bool) {
	if len(m.pushed) > 0 {
		p := m.pushed[0]
		m.pushed = m.pushed[1:]
		return p, true
	}
	for len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		tk, start, end, ok, diag := top.Next()
		if diag != nil && m.onDiag != nil {
			d := *diag
			d.Path = top.file.Path()
			row, col := top.file.Position(start)
			d.Line, d.Column = row, col
			m.onDiag(d)
		}
		if !ok {
			m.stack = m.stack[:len(m.stack)-1]
			continue
		}
		return Positioned{Tok: tk, File: top.file.ID(), Start: start, End: end}, true
	}
	return Positioned{}, false
}

// Depth reports how many files are currently open, for diagnostics
// and include-depth limits.
func (m *MultiLexer) Depth() int { return len(m.stack) }

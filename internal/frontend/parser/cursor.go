// Package parser implements the declaration parser and the
// translation-unit grammar's module/import/code section state machine
// (spec §4.I), building an ast.Tu and populating a scope.Scope tree as
// it goes.
package parser

import "github.com/cppfront/cppfront/internal/frontend/token"

// Cursor is the buffered-lexer view sub-parsers operate through: peek
// and consume by equality or predicate, offset peek, a protected
// range that bounds a balanced subrange without mutating shared
// state, and move-back for backtracking (spec §4.I).
type Cursor struct {
	toks []token.Token
	pos  int
	end  int // exclusive upper bound; len(toks) outside a protected range
}

// NewCursor wraps a fully lexed token vector.
func NewCursor(toks []token.Token) *Cursor {
	return &Cursor{toks: toks, pos: 0, end: len(toks)}
}

// Peek returns the token `off` positions ahead of the cursor (off=0 is
// the next token to be consumed) without advancing.
func (c *Cursor) Peek(off int) token.Token {
	i := c.pos + off
	if i < 0 || i >= c.end {
		return token.Token{Kind: token.KindEOF}
	}
	return c.toks[i]
}

// AtEnd reports whether the cursor has reached its end bound (the
// range's end, or EOF).
func (c *Cursor) AtEnd() bool {
	return c.pos >= c.end || c.toks[c.pos].Kind == token.KindEOF
}

// Pos returns the cursor's current index, usable with MoveBack.
func (c *Cursor) Pos() int { return c.pos }

// TokenAt returns the token at an absolute index into the underlying
// slice, bypassing the cursor's current position — used to render a
// previously matched range (e.g. an attribute argument list) without
// disturbing the cursor.
func (c *Cursor) TokenAt(i int) token.Token {
	if i < 0 || i >= len(c.toks) {
		return token.Token{Kind: token.KindEOF}
	}
	return c.toks[i]
}

// MoveBack rewinds the cursor to a previously observed position,
// e.g. after a failed speculative parse.
func (c *Cursor) MoveBack(pos int) { c.pos = pos }

// Advance consumes and returns the next token.
func (c *Cursor) Advance() token.Token {
	t := c.Peek(0)
	if c.pos < c.end {
		c.pos++
	}
	return t
}

// CheckPunct reports whether the next token is a punctuator spelled s.
func (c *Cursor) CheckPunct(s string) bool {
	t := c.Peek(0)
	return t.Kind == token.KindPunctuator && t.Punct == s
}

// CheckKeyword reports whether the next token is the keyword kw.
func (c *Cursor) CheckKeyword(kw string) bool {
	t := c.Peek(0)
	return t.Kind == token.KindKeyword && t.KeywordID == kw
}

// ConsumePunct consumes and reports success if the next token is
// spelled s.
func (c *Cursor) ConsumePunct(s string) bool {
	if !c.CheckPunct(s) {
		return false
	}
	c.Advance()
	return true
}

// ConsumeKeyword consumes and reports success if the next token is kw.
func (c *Cursor) ConsumeKeyword(kw string) bool {
	if !c.CheckKeyword(kw) {
		return false
	}
	c.Advance()
	return true
}

// ConsumeIf consumes and returns the next token if pred accepts it.
func (c *Cursor) ConsumeIf(pred func(token.Token) bool) (token.Token, bool) {
	t := c.Peek(0)
	if !pred(t) {
		return token.Token{}, false
	}
	return c.Advance(), true
}

// ProtectedRange is a sub-cursor bounded to [start,end) of the same
// underlying token slice, letting a sub-parser (e.g. an attribute
// list's contents) work within a balanced-pattern subrange without
// being able to read past it (spec §4.I "makeProtectedRange").
func (c *Cursor) ProtectedRange(start, end int) *Cursor {
	if end > len(c.toks) {
		end = len(c.toks)
	}
	return &Cursor{toks: c.toks, pos: start, end: end}
}

// MatchBalanced scans forward from the cursor's current position for
// the index of the matching close for an already-consumed
// open spelled openSp/closeSp, honoring nesting. Returns -1 if no
// match is found before the cursor's end bound.
func (c *Cursor) MatchBalanced(openSp, closeSp string) int {
	depth := 1
	for i := c.pos; i < c.end; i++ {
		t := c.toks[i]
		if t.Kind != token.KindPunctuator {
			continue
		}
		switch t.Punct {
		case openSp:
			depth++
		case closeSp:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

package token

import "github.com/cppfront/cppfront/internal/frontend/source"

// TokPos pairs a token value with the half-open byte range [Start,End)
// it occupies inside a single file (spec §3).
type TokPos[T any] struct {
	Start int
	Tok   T
	End   int
}

// FileTokPos adds the owning file's stable ID to a TokPos, letting a
// token be traced back to source text across file boundaries (e.g.
// after #include).
type FileTokPos[T any] struct {
	TokPos[T]
	File source.ID
}

// NewFileTokPos builds a FileTokPos.
func NewFileTokPos[T any](file source.ID, start int, tok T, end int) FileTokPos[T] {
	return FileTokPos[T]{TokPos: TokPos[T]{Start: start, Tok: tok, End: end}, File: file}
}

package prelex

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

func TestMultiLexer_PushTokensServedFirst(t *testing.T) {
	f := source.New(1, "a.cpp", "b")
	m := NewMultiLexer(f, nil)
	m.PushTokens([]Positioned{{Tok: token.Ident("a")}})

	got, ok := m.Next()
	if !ok || got.Tok.Text != "a" {
		t.Fatalf("expected pushed token 'a' first, got %+v", got)
	}
	got, ok = m.Next()
	if !ok || got.Tok.Text != "b" {
		t.Fatalf("expected lexer token 'b' next, got %+v", got)
	}
}

func TestMultiLexer_PushFilePopsOnExhaustion(t *testing.T) {
	outer := source.New(1, "outer.cpp", "x")
	inner := source.New(2, "inner.cpp", "y")
	m := NewMultiLexer(outer, nil)
	m.PushFile(inner)

	if m.Depth() != 2 {
		t.Fatalf("expected depth 2 after PushFile, got %d", m.Depth())
	}

	got, _ := m.Next()
	if got.Tok.Text != "y" {
		t.Fatalf("expected top-of-stack file served first, got %+v", got)
	}

	// drain the synthetic trailing newline of inner.cpp
	m.Next()

	got, ok := m.Next()
	if !ok || got.Tok.Text != "x" {
		t.Fatalf("expected fallback to outer.cpp once inner exhausted, got %+v ok=%v", got, ok)
	}
}

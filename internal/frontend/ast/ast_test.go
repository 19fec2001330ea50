package ast

import "testing"

func TestArena_AllocatesDistinctNodes(t *testing.T) {
	a := NewArena()
	n1 := a.NewDecl(DeclNamespace)
	n2 := a.NewDecl(DeclNamespace)
	n1.Name = "foo"
	n2.Name = "bar"
	if n1.Name != "foo" || n2.Name != "bar" {
		t.Fatalf("allocations aliased: %+v %+v", n1, n2)
	}
}

func TestArena_SurvivesBlockBoundary(t *testing.T) {
	a := NewArena()
	nodes := make([]*Decl, blockSize+5)
	for i := range nodes {
		d := a.NewDecl(DeclEmpty)
		d.Line = i
		nodes[i] = d
	}
	for i, d := range nodes {
		if d.Line != i {
			t.Fatalf("node %d corrupted across block boundary: got Line=%d", i, d.Line)
		}
	}
}

func TestAddExtension_LinksBothWays(t *testing.T) {
	a := NewArena()
	original := a.NewDecl(DeclNamespace)
	original.Name = "ns"
	reopen := a.NewDecl(DeclNamespace)
	reopen.Name = "ns"

	AddExtension(original, reopen)

	if reopen.Extends != original {
		t.Fatalf("reopen.Extends not set")
	}
	if len(original.Extensions) != 1 || original.Extensions[0] != reopen {
		t.Fatalf("original.Extensions not updated: %+v", original.Extensions)
	}
}

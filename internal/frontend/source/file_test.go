package source

import "testing"

func TestFile_PositionAndNormalization(t *testing.T) {
	f := New(1, "a.cpp", "int x;\r\nint y;\r\n")
	if f.Text() != "int x;\nint y;\n" {
		t.Fatalf("CRLF not normalized: %q", f.Text())
	}

	row, col := f.Position(0)
	if row != 1 || col != 1 {
		t.Fatalf("expected 1:1, got %d:%d", row, col)
	}

	// 'i' of "int y" is at offset 7 (after "int x;\n")
	row, col = f.Position(7)
	if row != 2 || col != 1 {
		t.Fatalf("expected 2:1, got %d:%d", row, col)
	}
}

func TestMap_InsertIsIdempotentPerPath(t *testing.T) {
	m := NewMap()
	a := m.Insert("a.cpp", "void f();")
	b := m.Insert("a.cpp", "ignored second body")
	if a != b {
		t.Fatalf("expected the same *File for repeated inserts of the same path")
	}
	if got, ok := m.GetByPath("a.cpp"); !ok || got != a {
		t.Fatalf("GetByPath mismatch")
	}
	if got, ok := m.Get(a.ID()); !ok || got != a {
		t.Fatalf("Get mismatch")
	}
}

package token

import "testing"

func TestInterner_InternIsStable(t *testing.T) {
	in := NewInterner()
	a := in.Intern("foo")
	b := in.Intern("bar")
	c := in.Intern("foo")

	if a != c {
		t.Fatalf("expected repeated intern of the same string to return the same ref")
	}
	if a == b {
		t.Fatalf("distinct strings must not share a ref")
	}
	if in.Lookup(a) != "foo" || in.Lookup(b) != "bar" {
		t.Fatalf("Lookup did not round-trip")
	}
}

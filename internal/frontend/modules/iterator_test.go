package modules

import (
	"testing"
	"time"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
)

func TestDependencyIterator_RootBeforeChild(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{
		{Path: "iface.cppm", Operators: []Operator{{Kind: OpExportModule, Name: "M"}}},
		{Path: "impl.cpp", Operators: []Operator{{Kind: OpModule, Name: "M"}}},
	}
	g := BuildGraph(units, &bag)
	it := NewDependencyIterator(g, 0)

	if it.WouldBlock() {
		t.Fatalf("a ready root should mean WouldBlock is false")
	}

	first, ok := it.Next()
	if !ok || first != "iface.cppm" {
		t.Fatalf("expected iface.cppm first, got %q ok=%v", first, ok)
	}

	done := make(chan string, 1)
	go func() {
		tu, ok := it.Next()
		if ok {
			done <- tu
		}
	}()

	select {
	case tu := <-done:
		t.Fatalf("implementation unit %q returned before its interface was marked done", tu)
	case <-time.After(30 * time.Millisecond):
	}

	it.MarkDone(first, 1)

	select {
	case tu := <-done:
		if tu != "impl.cpp" {
			t.Fatalf("got %q, want impl.cpp", tu)
		}
	case <-time.After(time.Second):
		t.Fatalf("implementation unit was never delivered after its dependency completed")
	}

	it.MarkDone("impl.cpp", 1)
	if _, ok := it.Next(); ok {
		t.Fatalf("expected iterator to be exhausted")
	}
}

func TestDependencyIterator_WouldBlock(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{{Path: "main.cpp"}}
	g := BuildGraph(units, &bag)
	it := NewDependencyIterator(g, 1)
	if it.WouldBlock() {
		t.Fatalf("a single root unit should never report WouldBlock")
	}
}

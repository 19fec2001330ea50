package modules

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
)

func TestBuildGraph_InterfaceAndImplementation(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{
		{Path: "a.cppm", Operators: []Operator{{Kind: OpExportModule, Name: "M"}}},
		{Path: "b.cpp", Operators: []Operator{{Kind: OpModule, Name: "M"}}},
	}
	g := BuildGraph(units, &bag)
	if len(bag.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.All())
	}
	if len(g.Roots) != 1 {
		t.Fatalf("want 1 root (the interface), got %d: %+v", len(g.Roots), g.Roots)
	}
	if len(g.Children) != 1 {
		t.Fatalf("want 1 child (the implementation), got %d", len(g.Children))
	}
	for decl, n := range g.Roots {
		if decl.Kind != KindExportPrimary {
			t.Fatalf("root should be ExportPrimary, got %+v", decl)
		}
		if len(n.DependedBy) != 1 {
			t.Fatalf("interface should be depended on by the implementation, got %+v", n.DependedBy)
		}
	}
}

func TestBuildGraph_GlobalUnitIsAlwaysRoot(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{{Path: "main.cpp"}}
	g := BuildGraph(units, &bag)
	if len(g.Roots) != 1 || len(g.Children) != 0 {
		t.Fatalf("got roots=%d children=%d", len(g.Roots), len(g.Children))
	}
}

func TestBuildGraph_MissingImportReported(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{
		{Path: "a.cpp", Operators: []Operator{{Kind: OpImport, Name: "nope"}}},
	}
	BuildGraph(units, &bag)
	found := false
	for _, d := range bag.All() {
		if d.Code == diagnostics.CodeModMissingDep {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing-import diagnostic, got %+v", bag.All())
	}
}

func TestBuildGraph_BadNameReported(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{
		{Path: "a.cpp", Operators: []Operator{{Kind: OpModule, Name: "1bad"}}},
	}
	BuildGraph(units, &bag)
	if len(bag.All()) != 1 || bag.All()[0].Code != diagnostics.CodeModBadName {
		t.Fatalf("got %+v", bag.All())
	}
}

func TestBuildGraph_CycleDetected(t *testing.T) {
	var bag diagnostics.Bag
	units := []Unit{
		{Path: "a.cppm", Operators: []Operator{{Kind: OpExportModule, Name: "A"}, {Kind: OpImport, Name: "B"}}},
		{Path: "b.cppm", Operators: []Operator{{Kind: OpExportModule, Name: "B"}, {Kind: OpImport, Name: "A"}}},
	}
	g := BuildGraph(units, &bag)
	if len(g.Roots) == 0 {
		t.Fatalf("dfsLoops should have promoted a synthetic root")
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == diagnostics.CodeModCycle {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cycle diagnostic, got %+v", bag.All())
	}
}

package scope

import (
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/ast"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
)

func TestUnqualifiedLookup_FindsInCurrentScope(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)
	d := arena.NewDecl(ast.DeclEnum)
	root.AddDecl("Color", d)

	got := UnqualifiedLookup(root, "Color")
	if len(got) != 1 || got[0].Child.Decl != d {
		t.Fatalf("expected single match in root scope, got %+v", got)
	}
}

func TestUnqualifiedLookup_WalksUpToParent(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)
	d := arena.NewDecl(ast.DeclEnum)
	root.AddDecl("Color", d)

	nsDecl := arena.NewDecl(ast.DeclNamespace)
	nsDecl.Name = "app"
	ns := New(root, FlagNamespace, nsDecl)
	root.AddChildScope("app", ns)

	got := UnqualifiedLookup(ns, "Color")
	if len(got) != 1 || got[0].Owner != root {
		t.Fatalf("expected lookup from child namespace to find root member, got %+v", got)
	}
}

func TestUnqualifiedLookup_IncludesInlineNamespaceMembers(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)

	inlineDecl := arena.NewDecl(ast.DeclNamespace)
	inlineDecl.Name = "v1"
	inlineDecl.Inline = true
	inlineScope := New(root, FlagNamespace|FlagInline, inlineDecl)
	root.AddChildScope("v1", inlineScope)

	widget := arena.NewDecl(ast.DeclEnum)
	inlineScope.AddDecl("Widget", widget)

	got := UnqualifiedLookup(root, "Widget")
	if len(got) != 1 || got[0].Owner != inlineScope {
		t.Fatalf("expected inline namespace member visible from enclosing scope, got %+v", got)
	}
}

func TestQualifiedLookup_FallsThroughUsingNamespace(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)

	stdDecl := arena.NewDecl(ast.DeclNamespace)
	stdDecl.Name = "std"
	std := New(root, FlagNamespace, stdDecl)
	root.AddChildScope("std", std)

	vec := arena.NewDecl(ast.DeclEnum)
	std.AddDecl("vector", vec)

	appDecl := arena.NewDecl(ast.DeclNamespace)
	appDecl.Name = "app"
	app := New(root, FlagNamespace, appDecl)
	root.AddChildScope("app", app)
	app.AddUsingNamespace(std)

	got := QualifiedLookup(app, "vector")
	if len(got) != 1 || got[0].Child.Decl != vec {
		t.Fatalf("expected using-directive fallthrough to find std::vector, got %+v", got)
	}
}

func TestScope_NamesIsSortedAndDeterministic(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)
	root.AddDecl("Widget", arena.NewDecl(ast.DeclEnum))
	root.AddDecl("Color", arena.NewDecl(ast.DeclEnum))
	root.AddDecl("Anchor", arena.NewDecl(ast.DeclEnum))

	got := root.Names()
	want := []string{"Anchor", "Color", "Widget"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestDeclareNamespace_ReopenExtendsOriginal(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)
	var bag diagnostics.Bag

	first := arena.NewDecl(ast.DeclNamespace)
	first.Name = "app"
	scope1 := DeclareNamespace(root, first, &bag, "a.cpp")

	second := arena.NewDecl(ast.DeclNamespace)
	second.Name = "app"
	scope2 := DeclareNamespace(root, second, &bag, "a.cpp")

	if scope1 != scope2 {
		t.Fatalf("reopening a namespace should return the same scope")
	}
	if second.Extends != first {
		t.Fatalf("expected reopen to extend the original declaration")
	}
	if bag.HasFatal() || len(bag.All()) != 0 {
		t.Fatalf("expected no diagnostics for a matching reopen, got %+v", bag.All())
	}
}

func TestDeclareNamespace_InlineMismatchDiagnoses(t *testing.T) {
	arena := ast.NewArena()
	root := New(nil, FlagTranslationUnit, nil)
	var bag diagnostics.Bag

	first := arena.NewDecl(ast.DeclNamespace)
	first.Name = "app"
	DeclareNamespace(root, first, &bag, "a.cpp")

	second := arena.NewDecl(ast.DeclNamespace)
	second.Name = "app"
	second.Inline = true
	DeclareNamespace(root, second, &bag, "a.cpp")

	all := bag.All()
	if len(all) != 1 || all[0].Code != diagnostics.CodeSemInlineMismatch {
		t.Fatalf("expected a single inline-mismatch diagnostic, got %+v", all)
	}
}

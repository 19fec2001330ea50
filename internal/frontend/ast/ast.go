package ast

// DeclKind tags the concrete declaration a Decl holds (spec §4.I:
// "Declarations implemented in the core: empty, asm, enum, namespace
// (including inline and extension), using-namespace").
type DeclKind uint8

const (
	DeclEmpty DeclKind = iota
	DeclAsm
	DeclNamespace
	DeclEnum
	DeclUsingNamespace
)

// Decl is every declaration family member as one tagged struct: the
// fields below Kind are a union, only the ones matching Kind are
// meaningful. This replaces the source's offset-arithmetic
// inheritance chain (spec §9) with a plain tag dispatch.
type Decl struct {
	Kind DeclKind
	Line int

	// DeclAsm
	AsmText string

	// DeclNamespace
	Name            string // "" for an unnamed namespace
	Inline          bool
	Body            []*Decl
	Extends         *Decl   // set on an extension node: the original declaration it continues
	Extensions      []*Decl // set on the original: every later reopening of it
	EnclosingIsFile bool

	// DeclEnum
	Underlying   *Type
	IsEnumClass  bool
	Enumerators  []Enumerator

	// DeclUsingNamespace
	NestedName []string // qualified-id components, e.g. ["std","ranges"]

	Attrs []*Attribute
}

// Enumerator is one "name [= raw-constant-expr]" inside an enum body.
// Constant evaluation is out of scope (spec §1 Non-goals), so Value
// keeps the unevaluated spelling rather than a computed integer.
type Enumerator struct {
	Name  string
	Value string
}

// TypeKind tags the concrete type a Type holds. Only the built-in
// fundamental types are modeled (spec §1 excludes the type system
// proper); this exists so AstDecl fields like Enum.Underlying have
// somewhere to point.
type TypeKind uint8

const (
	TypeBuiltin TypeKind = iota
)

// Type is the type family's tagged struct.
type Type struct {
	Kind TypeKind

	// TypeBuiltin
	BuiltinName string // "int", "unsigned long long", ...
}

// AttrKind tags the concrete attribute form (spec §4.I: "[[ ... ]] and
// alignas(...) are accepted").
type AttrKind uint8

const (
	AttrAlignAs AttrKind = iota
	AttrCxx
)

// Attribute is the attribute family's tagged struct.
type Attribute struct {
	Kind AttrKind

	// AttrAlignAs
	AlignAsArg string // raw spelling of the alignas(...) operand

	// AttrCxx: "[[ [using NS:] ns::name(args), ... ]]"
	UsingNamespace string
	Elements       []AttrElement
}

// AttrElement is one comma-separated entry inside a [[ ... ]] list.
type AttrElement struct {
	Namespace      string // "" if unqualified or inherited from UsingNamespace
	Name           string
	Args           string // raw text between parens, if RequiresParens
	RequiresParens bool
}

// Tu is the translation-unit root: the parser's final product for one
// file, a flat top-level declaration sequence plus optional leading
// module/import operators recorded separately by the module scanner.
type Tu struct {
	Path  string
	Decls []*Decl
}

// AddExtension links ext as a later reopening of original — the
// mechanism a namespace re-declaration uses instead of creating a
// second, disconnected scope (spec §4.K "a namespace re-declaration
// ... becomes an extension of the original").
func AddExtension(original, ext *Decl) {
	ext.Extends = original
	original.Extensions = append(original.Extensions, ext)
}

// Package preprocessor implements the C++ preprocessing-directive
// language: conditional compilation, object-like and function-like
// macros (including __VA_ARGS__/__VA_OPT__), # stringize, ##
// concatenation, rescanning with per-macro disabling, and #include
// resolution (spec §4.D).
package preprocessor

import "github.com/cppfront/cppfront/internal/frontend/token"

// ReplKind tags a node in a macro's replacement list (spec §3,
// PreTokenDefine).
type ReplKind uint8

const (
	ReplNormal ReplKind = iota
	ReplArg
	ReplVariadicArg
	ReplHash
	ReplHashHash
	ReplVariadicOpt
)

// ReplNode is one element of a macro's replacement list. Only the
// fields relevant to Kind are populated.
type ReplNode struct {
	Kind        ReplKind
	Tok         token.PreToken // ReplNormal
	ArgName     string         // ReplArg
	Inner       []ReplNode     // ReplHash (single-element) / ReplVariadicOpt
	Left        *ReplNode      // ReplHashHash
	Right       *ReplNode      // ReplHashHash
	SpaceBefore bool           // whitespace preceded this node in the #define line; expansion does not read it
}

// Variadic records whether a macro is variadic and, if so, under what
// name its trailing parameter is addressed (spec §3: "False |
// True(name-or-empty)" — empty name means the conventional
// __VA_ARGS__).
type Variadic struct {
	IsVariadic bool
	Name       string // "" means __VA_ARGS__
}

func (v Variadic) paramName() string {
	if v.Name == "" {
		return "__VA_ARGS__"
	}
	return v.Name
}

// BuiltinExpander is the alternate expansion function a built-in
// macro (__FILE__, __LINE__, ...) uses in place of normal replacement
// (spec §4.D).
type BuiltinExpander func(ctx *ExpandContext, args []Argument) ([]token.PreToken, error)

// Macro is a macro definition (DefineAst, spec §3).
type Macro struct {
	Name        string
	FunctionLike bool
	Params      []string
	Variadic    Variadic
	Body        []ReplNode
	Builtin     BuiltinExpander
}

// MinMaxArity returns the accepted argument-count range for a
// function-like macro: max is math.MaxInt when variadic (spec §4.D).
func (m *Macro) MinMaxArity() (min, max int) {
	min = len(m.Params)
	if m.Variadic.IsVariadic {
		return min, int(^uint(0) >> 1)
	}
	return min, min
}

// Argument is one already-split, not-yet-expanded macro argument: its
// raw tokens (comma-splitting already applied at paren depth 0).
type Argument struct {
	Tokens []token.PreToken
}

// Registry holds the live macro-definition table for one translation
// unit's preprocessing pass. It is not shared across units.
type Registry struct {
	macros map[string]*Macro
}

// NewRegistry constructs an empty registry seeded with the built-in
// macros (spec §4.D).
func NewRegistry() *Registry {
	r := &Registry{macros: make(map[string]*Macro)}
	registerBuiltins(r)
	return r
}

// Define registers (or replaces) a macro definition.
func (r *Registry) Define(m *Macro) { r.macros[m.Name] = m }

// Undef removes a macro definition, if present.
func (r *Registry) Undef(name string) { delete(r.macros, name) }

// Lookup returns the macro named name, if defined.
func (r *Registry) Lookup(name string) (*Macro, bool) {
	m, ok := r.macros[name]
	return m, ok
}

// IsDefined reports whether name is a currently-defined macro,
// implementing the `defined` operator of #if (spec §4.D).
func (r *Registry) IsDefined(name string) bool {
	_, ok := r.macros[name]
	return ok
}

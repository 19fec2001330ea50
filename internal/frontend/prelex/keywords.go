package prelex

// keywords lists the C++20 reserved words recognized by the PreLexer
// (spec §4.B). Alternative operator spellings ("and", "bitor", ...)
// are punctuators per [lex.pptoken], not keywords, and live in
// punctuators.go instead.
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "asm": true, "auto": true,
	"bool": true, "break": true, "case": true, "catch": true,
	"char": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"class": true, "concept": true, "const": true, "consteval": true,
	"constexpr": true, "constinit": true, "const_cast": true,
	"continue": true, "co_await": true, "co_return": true, "co_yield": true,
	"decltype": true, "default": true, "delete": true, "do": true,
	"double": true, "dynamic_cast": true, "else": true, "enum": true,
	"explicit": true, "export": true, "extern": true, "false": true,
	"float": true, "for": true, "friend": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "nullptr": true,
	"operator": true, "private": true, "protected": true, "public": true,
	"register": true, "reinterpret_cast": true, "requires": true,
	"return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "static_assert": true, "static_cast": true,
	"struct": true, "switch": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "true": true, "try": true,
	"typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true,

	// Contextual module keywords (spec §3/§4.F): tokenized as keywords
	// here; the parser/scanner decide whether they act as module
	// syntax based on position.
	"module": true, "import": true,
}

package prelex

// punctuators lists every punctuator/operator spelling the PreLexer
// recognizes, longest first so a greedy scan never stops short (e.g.
// "<<=" must win over "<<" must win over "<"). Digraphs ("<:", ":>",
// "<%", "%>", "%:", "%:%:") are included per spec §4.B and folded to
// their primary spelling by the Lexer stage (spec §4.E), not here —
// the PreLexer reports the literal spelling so diagnostics can quote
// exactly what the user wrote.
var punctuators = []string{
	// 4-char
	"%:%:",
	// 3-char
	"<=>", "->*", "...", "<<=", ">>=",
	// 2-char
	"::", "->", ".*", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%=",
	"^=", "&=", "|=", "<:", ":>", "<%", "%>", "%:", "##",
	// 1-char
	"{", "}", "[", "]", "(", ")", ";", ":", "?", ".", "~",
	"+", "-", "*", "/", "%", "^", "&", "|", "=", "<", ">", ",", "#",
}

// altOperators are the alternative keyword-spelled operators ("and",
// "bitor", ...), tokenized as OperatorPunctuator per spec §4.B.
var altOperators = map[string]bool{
	"and": true, "or": true, "xor": true, "not": true,
	"bitand": true, "bitor": true, "compl": true,
	"and_eq": true, "or_eq": true, "xor_eq": true, "not_eq": true,
}

// digraphFold maps a digraph spelling to its primary-spelling
// equivalent, used by the Lexer stage (spec §4.E).
var digraphFold = map[string]string{
	"<:": "[", ":>": "]", "<%": "{", "%>": "}", "%:": "#", "%:%:": "##",
}

// FoldDigraph reports the primary-spelling equivalent of a digraph
// punctuator, so the Lexer stage can normalize "<:" to "[" etc.
// without duplicating the PreLexer's table.
func FoldDigraph(spelling string) (string, bool) {
	s, ok := digraphFold[spelling]
	return s, ok
}

// AltOperatorSpellings exposes the alternative-keyword-operator table
// ("and", "bitor", ...) to the Lexer stage.
func AltOperatorSpellings() map[string]bool { return altOperators }

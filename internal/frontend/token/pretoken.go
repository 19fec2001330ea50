package token

// PreKind tags the variant carried by a PreToken (spec §3).
type PreKind uint8

const (
	PreUnknown PreKind = iota
	PreHeaderName
	PreIdent
	PreHash     // '#' or '%:'
	PreHashHash // '##' or '%:%:'
	PreOperatorPunctuator
	PreKeyword
	PreNewline
	PreWhitespaceOrComment
	PreStringLiteral
	PreRawStringLiteral
	PreCharLiteral
	PreUserDefinedString
	PreUserDefinedChar
	PrePPNumber

	// Meta-tokens: no surface syntax, consumed by the lexer stage.
	PreDisableMacro
	PreEnableMacro
	PreValidNop
)

func (k PreKind) String() string {
	switch k {
	case PreHeaderName:
		return "HeaderName"
	case PreIdent:
		return "Ident"
	case PreHash:
		return "Hash"
	case PreHashHash:
		return "HashHash"
	case PreOperatorPunctuator:
		return "OperatorPunctuator"
	case PreKeyword:
		return "Keyword"
	case PreNewline:
		return "Newline"
	case PreWhitespaceOrComment:
		return "WhitespaceOrComment"
	case PreStringLiteral:
		return "StringLiteral"
	case PreRawStringLiteral:
		return "RawStringLiteral"
	case PreCharLiteral:
		return "CharLiteral"
	case PreUserDefinedString:
		return "UserDefinedString"
	case PreUserDefinedChar:
		return "UserDefinedChar"
	case PrePPNumber:
		return "PPNumber"
	case PreDisableMacro:
		return "DisableMacro"
	case PreEnableMacro:
		return "EnableMacro"
	case PreValidNop:
		return "ValidNop"
	default:
		return "Unknown"
	}
}

// PreToken is a preprocessing token: coarser than a Token, as defined
// by [lex.pptoken]. It is a tagged union over PreKind; Text carries
// the literal spelling for most kinds, Name carries the macro name for
// the two meta-tokens that bracket a macro's own expansion.
type PreToken struct {
	Kind PreKind
	Text string
	Name string // DisableMacro/EnableMacro payload
}

// IsMeta reports whether this PreToken is one of the no-surface-syntax
// meta-tokens the preprocessor uses to track macro-expansion state.
func (p PreToken) IsMeta() bool {
	switch p.Kind {
	case PreDisableMacro, PreEnableMacro, PreValidNop:
		return true
	default:
		return false
	}
}

// IsTrivia reports whether this PreToken carries no lexical content
// (whitespace/comments), which the Lexer stage filters out entirely.
func (p PreToken) IsTrivia() bool {
	return p.Kind == PreWhitespaceOrComment
}

func Ident(name string) PreToken           { return PreToken{Kind: PreIdent, Text: name} }
func Keyword(kw string) PreToken           { return PreToken{Kind: PreKeyword, Text: kw} }
func Punct(op string) PreToken             { return PreToken{Kind: PreOperatorPunctuator, Text: op} }
func DisableMacro(name string) PreToken    { return PreToken{Kind: PreDisableMacro, Name: name} }
func EnableMacro(name string) PreToken     { return PreToken{Kind: PreEnableMacro, Name: name} }
func ValidNop() PreToken                   { return PreToken{Kind: PreValidNop} }
func Newline() PreToken                    { return PreToken{Kind: PreNewline, Text: "\n"} }
func HeaderName(spelling string) PreToken  { return PreToken{Kind: PreHeaderName, Text: spelling} }

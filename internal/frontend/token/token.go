package token

// Kind tags the variant carried by a Token (spec §3).
type Kind uint8

const (
	KindUnknown Kind = iota
	KindIdentifier
	KindKeyword
	KindPunctuator

	// Split-greater variants (spec §4.E): a '>>' or '>=' seen while
	// parsing needs to be taken apart one character at a time so the
	// parser can close nested template-argument lists.
	KindSingleGreater
	KindFirstGreater
	KindSecondGreater
	KindStrippedGreaterEqual

	KindIntLiteral
	KindFloatLiteral
	KindCharLiteral
	KindStringLiteral
	KindBoolLiteral
	KindPointerLiteral // nullptr
	KindUserDefinedLiteral

	// Module-aware tokens (spec §3).
	KindModule
	KindImport
	KindImportableHeaderName

	KindEOF
)

// EncodingPrefix is the string/char literal's encoding prefix.
type EncodingPrefix uint8

const (
	EncodingNone EncodingPrefix = iota
	EncodingU8
	EncodingU
	EncodingBigU
	EncodingL
)

// IntLength distinguishes int/long/long-long integer suffixes.
type IntLength uint8

const (
	IntLenNone IntLength = iota
	IntLenLong
	IntLenLongLong
)

// FloatSuffix distinguishes float/double/long-double suffixes.
type FloatSuffix uint8

const (
	FloatSuffixNone FloatSuffix = iota
	FloatSuffixF
	FloatSuffixL
)

// UDPayloadKind disambiguates which field of a KindUserDefinedLiteral
// Token holds the literal's value, since IntValue/CharValue/
// StringValue all default to their zero value.
type UDPayloadKind uint8

const (
	UDPayloadNone UDPayloadKind = iota
	UDPayloadInt
	UDPayloadFloat
	UDPayloadChar
	UDPayloadString
)

// Token is the post-preprocess lexical atom the Parser consumes.
type Token struct {
	Kind Kind

	// KindIdentifier / KindKeyword / KindPunctuator
	Ident     StringRef
	Punct     string // canonical spelling, e.g. "::", "<=>"
	KeywordID string // canonical keyword spelling

	// Literals
	IntValue     uint64
	IntSigned    bool
	IntLength    IntLength
	FloatValue   string // textual form; FP value parsing is out of scope (spec §1)
	FloatSuffix  FloatSuffix
	CharValue    rune
	StringValue  string
	Encoding     EncodingPrefix
	BoolValue    bool
	UDSuffix     StringRef // user-defined-literal tag, when KindUserDefinedLiteral
	UDPayload    UDPayloadKind // which field above holds a KindUserDefinedLiteral's value

	// Module-aware
	HeaderPath string
}

func (k Kind) String() string {
	names := [...]string{
		"Unknown", "Identifier", "Keyword", "Punctuator",
		"SingleGreater", "FirstGreater", "SecondGreater", "StrippedGreaterEqual",
		"IntLiteral", "FloatLiteral", "CharLiteral", "StringLiteral",
		"BoolLiteral", "PointerLiteral", "UserDefinedLiteral",
		"Module", "Import", "ImportableHeaderName", "EOF",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

package token

import "testing"

func TestPreToken_MetaAndTrivia(t *testing.T) {
	d := DisableMacro("FOO")
	if !d.IsMeta() || d.IsTrivia() {
		t.Fatalf("DisableMacro should be meta, not trivia")
	}
	ws := PreToken{Kind: PreWhitespaceOrComment, Text: "  "}
	if !ws.IsTrivia() || ws.IsMeta() {
		t.Fatalf("whitespace should be trivia, not meta")
	}
}

func TestKind_String(t *testing.T) {
	if KindStrippedGreaterEqual.String() != "StrippedGreaterEqual" {
		t.Fatalf("unexpected Kind.String(): %s", KindStrippedGreaterEqual)
	}
}

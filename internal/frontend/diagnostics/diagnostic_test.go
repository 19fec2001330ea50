package diagnostics

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDiagnostic_RenderText(t *testing.T) {
	d := New(CodePPArity, SeverityError, "a.cpp", 12, 5, map[string]any{
		"Name":     "FOO",
		"Expected": "2",
		"Got":      "3",
	})

	txt := d.RenderText()
	if !strings.HasPrefix(txt, "Error at: a.cpp:12:5\n") {
		t.Fatalf("RenderText header unexpected: %s", txt)
	}
	if !strings.Contains(txt, "FOO") {
		t.Fatalf("RenderText missing catalog substitution: %s", txt)
	}
}

func TestDiagnostic_WithSuggestionAndNote(t *testing.T) {
	note := New(CodePPUnmatchedEndif, SeverityNotice, "a.cpp", 20, 1, nil)
	d := New(CodeModCycle, SeverityFatal, "b.cpp", 1, 1, map[string]any{"Chain": "A -> B -> A"}).
		WithSuggestion("break the cycle").
		WithNote(note)

	txt := d.RenderText()
	if !strings.Contains(txt, "Suggestion: break the cycle") {
		t.Fatalf("missing suggestion: %s", txt)
	}
	if !strings.Contains(txt, "Notice at: a.cpp:20:1") {
		t.Fatalf("missing rendered note: %s", txt)
	}
}

func TestDiagnostic_RenderJSON(t *testing.T) {
	d := New(CodeSemLookupFailed, SeverityError, "a.cpp", 1, 1, map[string]any{"Name": "foo"})
	b, err := d.RenderJSON()
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["message"] == "" {
		t.Fatalf("expected non-empty message, got %v", m)
	}
}

func TestBag_MaxSeverity(t *testing.T) {
	var bag Bag
	if bag.MaxSeverity() != SeverityNotice {
		t.Fatalf("empty bag should report Notice")
	}
	bag.Add(New(CodeSynMissingSemi, SeverityWarning, "a.cpp", 1, 1, nil))
	bag.Add(New(CodeModCycle, SeverityError, "a.cpp", 2, 1, nil))
	if bag.MaxSeverity() != SeverityError {
		t.Fatalf("expected Error, got %v", bag.MaxSeverity())
	}
	if bag.HasFatal() {
		t.Fatalf("bag should not report fatal yet")
	}
	bag.Add(New(CodeModCycle, SeverityFatal, "a.cpp", 3, 1, nil))
	if !bag.HasFatal() {
		t.Fatalf("expected fatal after adding FatalError diagnostic")
	}
}

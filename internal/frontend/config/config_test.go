package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeParams(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "params.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoad_DefaultsWorkersToOne(t *testing.T) {
	path := writeParams(t, `{"translationUnits": ["a.cpp"]}`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Workers != 1 {
		t.Fatalf("expected default Workers=1, got %d", p.Workers)
	}
}

func TestLoad_RejectsEmptyTranslationUnits(t *testing.T) {
	path := writeParams(t, `{"translationUnits": []}`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an empty translationUnits list")
	}
}

func TestLoad_ParsesFullSchema(t *testing.T) {
	path := writeParams(t, `{
		"translationUnits": ["a.cpp", "b.cpp"],
		"includeDirs": ["./include"],
		"includeSystemDirs": ["/usr/include"],
		"workers": 4
	}`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.TranslationUnits) != 2 || len(p.IncludeDirs) != 1 || len(p.IncludeSystemDirs) != 1 || p.Workers != 4 {
		t.Fatalf("got %+v", p)
	}
}

package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cppfront/cppfront/internal/frontend/config"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
)

func writeUnit(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func TestCompiler_RunSingleUnit(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "a.cpp", "namespace app { enum Widget {}; }\n")

	params := &config.Params{TranslationUnits: []string{path}, Workers: 2}
	c, err := NewBuilder().WithParams(params).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	units, max, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if max != diagnostics.SeverityNotice {
		t.Fatalf("expected no diagnostics, got severity %v", max)
	}
	if len(units) != 1 || units[0].Tu == nil || len(units[0].Tu.Decls) != 1 {
		t.Fatalf("got %+v", units)
	}
}

func TestCompiler_RunWithModuleDependency(t *testing.T) {
	dir := t.TempDir()
	iface := writeUnit(t, dir, "iface.cppm", "export module M;\n")
	impl := writeUnit(t, dir, "impl.cpp", "module M;\nenum Widget {};\n")

	params := &config.Params{TranslationUnits: []string{iface, impl}, Workers: 2}
	c, err := NewBuilder().WithParams(params).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	units, max, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if max != diagnostics.SeverityNotice {
		var all []diagnostics.Diagnostic
		for _, u := range units {
			all = append(all, u.Bag.All()...)
		}
		t.Fatalf("expected no diagnostics, got severity %v: %+v", max, all)
	}
	for _, u := range units {
		if u.Tu == nil {
			t.Fatalf("unit %s never parsed", u.Path)
		}
	}
}

func TestCompiler_BuildRejectsMissingParams(t *testing.T) {
	if _, err := NewBuilder().Build(); err == nil {
		t.Fatalf("expected an error building without params")
	}
}

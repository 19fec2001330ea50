package preprocessor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cppfront/cppfront/internal/frontend/source"
)

// Includer resolves #include header names to file contents, searching
// quoted includes relative to the including file first, then the
// configured include directories, then the system include directories
// (spec §4.D/§4.F: "quoted-vs-bracketed search order").
type Includer struct {
	IncludeDirs       []string
	SystemIncludeDirs []string
	Files             *source.Map
}

// NewIncluder builds an Includer sharing files across every resolved
// header, so a header included from two places is only parsed once.
func NewIncluder(includeDirs, systemIncludeDirs []string, files *source.Map) *Includer {
	return &Includer{IncludeDirs: includeDirs, SystemIncludeDirs: systemIncludeDirs, Files: files}
}

// Resolve finds and loads the header named by an #include directive.
// quoted is true for "name", false for <name>. fromDir is the
// directory of the file containing the #include (used as the first
// search location for quoted includes, spec §4.F).
func (inc *Includer) Resolve(name string, quoted bool, fromDir string) (*source.File, error) {
	path, err := inc.find(name, quoted, fromDir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read header %q: %w", path, err)
	}
	return inc.Files.Insert(path, string(data)), nil
}

// Exists reports whether name resolves to a readable file, without
// reading it: the __has_include query (spec §4.D).
func (inc *Includer) Exists(name string, quoted bool, fromDir string) bool {
	_, err := inc.find(name, quoted, fromDir)
	return err == nil
}

func (inc *Includer) find(name string, quoted bool, fromDir string) (string, error) {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("header %q not found", name)
	}

	var dirs []string
	if quoted {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, inc.IncludeDirs...)
	dirs = append(dirs, inc.SystemIncludeDirs...)

	for _, dir := range dirs {
		candidate := filepath.Join(dir, filepath.FromSlash(name))
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("header %q not found", name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

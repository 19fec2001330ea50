// Package config loads the JSON parameter file that drives a run
// (spec §6 "the tool is meant to be driven by a JSON file").
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Params is the parameter file's schema: the translation units to
// build and the search directories used to resolve #include
// (spec §6).
type Params struct {
	TranslationUnits  []string `json:"translationUnits"`
	IncludeDirs       []string `json:"includeDirs"`
	IncludeSystemDirs []string `json:"includeSystemDirs"`
	Workers           int      `json:"workers"`
}

// Load reads and validates a parameter file from path.
func Load(path string) (*Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading parameter file %s: %w", path, err)
	}
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing parameter file %s: %w", path, err)
	}
	if len(p.TranslationUnits) == 0 {
		return nil, fmt.Errorf("parameter file %s lists no translationUnits", path)
	}
	if p.Workers <= 0 {
		p.Workers = 1
	}
	return &p, nil
}

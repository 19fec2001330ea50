// Package compiler orchestrates the full per-unit pipeline —
// preprocess, lex, module-scan, graph build, dependency-ordered parse
// — across a worker pool (spec §5), grounded on the teacher's
// TranspilerBuilder orchestration pattern.
package compiler

import (
	"fmt"
	"os"
	"sync"

	"github.com/cppfront/cppfront/internal/frontend/ast"
	"github.com/cppfront/cppfront/internal/frontend/config"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"github.com/cppfront/cppfront/internal/frontend/lexer"
	"github.com/cppfront/cppfront/internal/frontend/modules"
	"github.com/cppfront/cppfront/internal/frontend/parser"
	"github.com/cppfront/cppfront/internal/frontend/preprocessor"
	"github.com/cppfront/cppfront/internal/frontend/scope"
	"github.com/cppfront/cppfront/internal/frontend/source"
	"github.com/cppfront/cppfront/internal/frontend/token"
)

// Unit holds every artifact produced for one translation unit as it
// moves through the pipeline.
type Unit struct {
	Path  string
	Pre   []token.PreToken
	Toks  []token.Token
	Ops   []modules.Operator
	Tu    *ast.Tu
	Scope *scope.Scope
	Bag   diagnostics.Bag
}

// Compiler owns the state shared by every unit in a run: the file
// map, the string interner, and the include search path (spec §5
// "interned strings live in a process-wide table", "file reads go
// through a file-map guarded by a mutex").
type Compiler struct {
	params   *config.Params
	files    *source.Map
	interner *token.Interner
	includer *preprocessor.Includer
}

// Builder configures and constructs a Compiler, mirroring the
// teacher's TranspilerBuilder chain-of-With* pattern.
type Builder struct {
	params *config.Params
}

// NewBuilder starts a Builder with no configuration.
func NewBuilder() *Builder { return &Builder{} }

// WithParams attaches the loaded parameter file.
func (b *Builder) WithParams(p *config.Params) *Builder {
	b.params = p
	return b
}

// Build assembles the Compiler, ready to run.
func (b *Builder) Build() (*Compiler, error) {
	if b.params == nil {
		return nil, fmt.Errorf("compiler: no parameters configured")
	}
	files := source.NewMap()
	return &Compiler{
		params:   b.params,
		files:    files,
		interner: token.NewInterner(),
		includer: preprocessor.NewIncluder(b.params.IncludeDirs, b.params.IncludeSystemDirs, files),
	}, nil
}

// Interner exposes the process-wide string table, e.g. for printing
// resolved declaration/module names after a run.
func (c *Compiler) Interner() *token.Interner { return c.interner }

// Scan runs preprocessing, lexing, and module scanning for every
// configured translation unit, in parallel (this phase has no
// cross-unit dependency, since a unit's own module declaration never
// depends on another unit having been scanned first).
func (c *Compiler) Scan() ([]*Unit, error) {
	units := make([]*Unit, len(c.params.TranslationUnits))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workerCount(c.params.Workers))

	for i, path := range c.params.TranslationUnits {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			units[i] = c.scanOne(path)
		}(i, path)
	}
	wg.Wait()
	return units, nil
}

func (c *Compiler) scanOne(path string) *Unit {
	u := &Unit{Path: path}

	data, err := os.ReadFile(path)
	raw := string(data)
	if err != nil {
		u.Bag.Add(diagnostics.New(diagnostics.CodePPIncludeNotFound, diagnostics.SeverityFatal, path, 0, 0,
			map[string]any{"Name": path}))
		return u
	}
	file := c.files.Insert(path, raw)

	reg := preprocessor.NewRegistry()
	pp := preprocessor.NewPreprocessor(reg, c.includer, c.files, &u.Bag)
	u.Pre = pp.Run(file)

	lx := lexer.New(c.interner, func(d diagnostics.Diagnostic) { u.Bag.Add(d) })
	u.Toks = lx.Lex(u.Pre)

	u.Ops = modules.Scan(u.Toks, c.interner)
	return u
}

// BuildGraph builds the module dependency graph from every scanned
// unit's module operators (spec §4.G).
func (c *Compiler) BuildGraph(units []*Unit, bag *diagnostics.Bag) *modules.Graph {
	var mu []modules.Unit
	for _, u := range units {
		mu = append(mu, modules.Unit{Path: u.Path, Operators: u.Ops})
	}
	return modules.BuildGraph(mu, bag)
}

// parseStage is the dependency-ordered stage: a unit is only handed
// to a worker once every module it imports has finished parsing, so
// name lookup against an imported interface's scope is always
// available (spec §4.H/§4.I).
const parseStage int64 = 1

// Parse drives the parser over every unit in dependency order using a
// worker pool bound to the DependencyIterator (spec §5): workers loop
// next -> work -> markDone, blocking on the iterator's condition
// variables when nothing is eligible yet.
func (c *Compiler) Parse(units []*Unit, graph *modules.Graph) {
	byPath := make(map[string]*Unit, len(units))
	for _, u := range units {
		byPath[u.Path] = u
	}

	// Scan records no stage on the graph's nodes, so a unit is eligible
	// from stage 0 once its imports have been marked done.
	it := modules.NewDependencyIterator(graph, 0)
	var wg sync.WaitGroup
	workers := workerCount(c.params.Workers)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				path, ok := it.Next()
				if !ok {
					return
				}
				u, known := byPath[path]
				if !known {
					it.MarkDone(path, parseStage)
					continue
				}
				p := parser.New(u.Path, c.interner, &u.Bag)
				u.Tu = p.Parse(u.Toks)
				u.Scope = p.Scope()
				it.MarkDone(path, parseStage)
			}
		}()
	}
	wg.Wait()
}

// Run executes the whole pipeline end to end and returns every unit's
// results plus the process-wide worst diagnostic severity (spec §7
// "the process exit code reflects the maximum severity observed").
func (c *Compiler) Run() ([]*Unit, diagnostics.Severity, error) {
	units, err := c.Scan()
	if err != nil {
		return nil, diagnostics.SeverityFatal, err
	}

	var graphBag diagnostics.Bag
	graph := c.BuildGraph(units, &graphBag)

	c.Parse(units, graph)

	max := graphBag.MaxSeverity()
	for _, u := range units {
		if s := u.Bag.MaxSeverity(); s > max {
			max = s
		}
	}
	return units, max, nil
}

func workerCount(configured int) int {
	if configured <= 0 {
		return 1
	}
	return configured
}


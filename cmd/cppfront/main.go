// Command cppfront drives the front-end pipeline over a JSON
// parameter file (spec §6): preprocess, lex, scan modules, build the
// dependency graph, and parse every translation unit in dependency
// order.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"github.com/cppfront/cppfront/internal/frontend/compiler"
	"github.com/cppfront/cppfront/internal/frontend/config"
	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
)

var description = strings.ReplaceAll(`
cppfront is a C++20 front-end pipeline driven entirely by a JSON
parameter file: it preprocesses, lexes, scans module declarations,
builds the inter-module dependency graph, and parses every translation
unit once its imports are ready.
`, "\n", " ")

var app = cli.New(description).
	WithOption(cli.NewOption("files", "JSON parameter file (required)").WithType(cli.TypeString)).
	WithOption(cli.NewOption("printDependencyTree", "Print the resolved module dependency graph").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("preprocess", "Emit preprocessed token text per translation unit").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("lexify", "Emit post-lex tokens per translation unit").WithType(cli.TypeBool)).
	WithAction(handle)

func handle(args []string, options map[string]string) int {
	paramsPath, ok := options["files"]
	if !ok || paramsPath == "" {
		fmt.Fprintln(os.Stderr, "ERROR: --files <path> is required")
		return 1
	}

	params, err := config.Load(paramsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}

	c, err := compiler.NewBuilder().WithParams(params).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}

	_, printTree := options["printDependencyTree"]
	_, preprocess := options["preprocess"]
	_, lexify := options["lexify"]

	if printTree || preprocess || lexify {
		return runInspection(c, printTree, preprocess, lexify)
	}
	return runPipeline(c)
}

func runInspection(c *compiler.Compiler, printTree, preprocess, lexify bool) int {
	units, err := c.Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}

	max := diagnostics.SeverityNotice
	for _, u := range units {
		if preprocess {
			fmt.Printf("// %s\n%s\n", u.Path, compiler.RenderPreprocessed(u.Pre))
		}
		if lexify {
			fmt.Printf("// %s\n%s\n", u.Path, compiler.RenderLexed(u.Toks, c.Interner()))
		}
		for _, d := range u.Bag.All() {
			fmt.Fprintln(os.Stderr, d.RenderText())
		}
		if s := u.Bag.MaxSeverity(); s > max {
			max = s
		}
	}

	if printTree {
		var bag diagnostics.Bag
		graph := c.BuildGraph(units, &bag)
		fmt.Print(compiler.RenderDependencyTree(graph))
		for _, d := range bag.All() {
			fmt.Fprintln(os.Stderr, d.RenderText())
		}
		if s := bag.MaxSeverity(); s > max {
			max = s
		}
	}

	return exitCode(max)
}

func runPipeline(c *compiler.Compiler) int {
	units, max, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	for _, u := range units {
		for _, d := range u.Bag.All() {
			fmt.Fprintln(os.Stderr, d.RenderText())
		}
	}
	return exitCode(max)
}

// exitCode implements spec §6 "exit code 0 on success; non-zero on
// any error-severity diagnostic".
func exitCode(max diagnostics.Severity) int {
	if max >= diagnostics.SeverityError {
		return 1
	}
	return 0
}

func main() { os.Exit(app.Run(os.Args, os.Stdout)) }

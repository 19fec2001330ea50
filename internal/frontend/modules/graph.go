package modules

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/cppfront/cppfront/internal/frontend/diagnostics"
	"golang.org/x/exp/maps"
)

// Kind classifies a translation unit's module role (spec §3 "Module
// graph Node").
type Kind uint8

const (
	KindGlobal Kind = iota
	KindExportPrimary
	KindPrimary
	KindExportPartition
	KindPartition
	KindModuleHeaderUnit
)

// Declaration identifies a node's module role uniquely across the
// project: (Kind, module name, partition name). Global/header-unit
// nodes key off the translation unit path instead of a module name.
type Declaration struct {
	Kind      Kind
	Name      string
	Partition string
	TU        string // discriminator for Global/ModuleHeaderUnit, empty otherwise
}

func (d Declaration) String() string {
	switch d.Kind {
	case KindExportPrimary:
		return "export module " + d.Name
	case KindPrimary:
		return "module " + d.Name
	case KindExportPartition:
		return fmt.Sprintf("export module %s:%s", d.Name, d.Partition)
	case KindPartition:
		return fmt.Sprintf("module %s:%s", d.Name, d.Partition)
	case KindModuleHeaderUnit:
		return "<" + d.TU + ">"
	default:
		return "Global module file " + d.TU
	}
}

// Node is one translation unit's place in the dependency graph (spec
// §3). StepsCompleted is read/written atomically since the
// DependencyIterator updates it from worker goroutines without always
// holding its own mutex.
type Node struct {
	Decl           Declaration
	TU             string
	DependsOn      map[Declaration]bool
	DependedBy     []Declaration
	Depth          int
	StepsCompleted int64
}

func newNode(decl Declaration, tu string) *Node {
	return &Node{Decl: decl, TU: tu, DependsOn: map[Declaration]bool{}}
}

// StepsDone reads StepsCompleted with relaxed-equivalent semantics
// (spec §5: "readable without the mutex; the mutex provides
// happens-before when it matters").
func (n *Node) StepsDone() int64 { return atomic.LoadInt64(&n.StepsCompleted) }

func (n *Node) markStep(stage int64) {
	for {
		cur := atomic.LoadInt64(&n.StepsCompleted)
		if stage <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&n.StepsCompleted, cur, stage) {
			return
		}
	}
}

// Unit is one scanned translation unit, the scanner's output before
// graph construction.
type Unit struct {
	Path      string
	Operators []Operator
}

// Graph holds every node in the project, partitioned the way
// dfsLoops/BuildGraph need: Roots have no dependencies left, Children
// are still blocked (spec §3 "childModules"/"rootsNotReady").
type Graph struct {
	Roots    map[Declaration]*Node
	Children map[Declaration]*Node
}

// BuildGraph classifies every unit into a Declaration, links imports
// to the declaring node, and partitions the result into ready roots
// vs. still-blocked children, reporting bad names / duplicates /
// missing imports along the way (spec §4.F/§4.G).
func BuildGraph(units []Unit, bag *diagnostics.Bag) *Graph {
	nodes := map[Declaration]*Node{}
	byModuleName := map[string]Declaration{}

	for _, u := range units {
		decl, ok := classify(u, bag)
		if !ok {
			continue
		}
		if existing, dup := nodes[decl]; dup {
			bag.Add(diagnostics.New(diagnostics.CodeModDuplicate, diagnostics.SeverityError, u.Path, 0, 0,
				map[string]any{"Name": decl.String(), "Other": existing.TU}))
			continue
		}
		nodes[decl] = newNode(decl, u.Path)
		if decl.Kind == KindExportPrimary {
			byModuleName[decl.Name] = decl
		}
	}

	// A "module X;" implementation unit implicitly depends on its
	// interface "export module X;", when one exists in the project.
	for decl, n := range nodes {
		if decl.Kind == KindPrimary {
			if iface, ok := byModuleName[decl.Name]; ok && iface != decl {
				n.DependsOn[iface] = true
			}
		}
	}

	for _, u := range units {
		decl, ok := classify(u, nil)
		if !ok {
			continue
		}
		n, present := nodes[decl]
		if !present {
			continue
		}
		for _, op := range u.Operators {
			if op.Kind != OpImport {
				continue
			}
			target, ok := resolveImport(op.Name, nodes)
			if !ok {
				bag.Add(diagnostics.New(diagnostics.CodeModMissingDep, diagnostics.SeverityError, u.Path, 0, 0,
					map[string]any{"Name": op.Name}))
				continue
			}
			n.DependsOn[target] = true
		}
	}

	for decl, n := range nodes {
		for dep := range n.DependsOn {
			if target, ok := nodes[dep]; ok {
				target.DependedBy = append(target.DependedBy, decl)
			}
		}
	}

	g := &Graph{Roots: map[Declaration]*Node{}, Children: map[Declaration]*Node{}}
	for decl, n := range nodes {
		if len(n.DependsOn) == 0 {
			g.Roots[decl] = n
		} else {
			g.Children[decl] = n
		}
	}
	dfsLoops(g, bag)
	return g
}

func resolveImport(name string, nodes map[Declaration]*Node) (Declaration, bool) {
	if d, ok := splitPartition(name); ok {
		for decl := range nodes {
			if decl.Kind == KindExportPartition && decl.Name == d.Name && decl.Partition == d.Partition {
				return decl, true
			}
			if decl.Kind == KindPartition && decl.Name == d.Name && decl.Partition == d.Partition {
				return decl, true
			}
		}
		return Declaration{}, false
	}
	for decl := range nodes {
		if decl.Kind == KindExportPrimary && decl.Name == name {
			return decl, true
		}
	}
	for decl := range nodes {
		if decl.Kind == KindPrimary && decl.Name == name {
			return decl, true
		}
	}
	return Declaration{}, false
}

func splitPartition(name string) (Declaration, bool) {
	for i, r := range name {
		if r == ':' {
			return Declaration{Name: name[:i], Partition: name[i+1:]}, true
		}
	}
	return Declaration{}, false
}

func classify(u Unit, bag *diagnostics.Bag) (Declaration, bool) {
	for _, op := range u.Operators {
		switch op.Kind {
		case OpModule, OpExportModule:
			if !validModuleName(op.Name) {
				if bag != nil {
					bag.Add(diagnostics.New(diagnostics.CodeModBadName, diagnostics.SeverityError, u.Path, 0, 0,
						map[string]any{"Name": op.Name}))
				}
				return Declaration{}, false
			}
			name, part := op.Name, ""
			if pd, ok := splitPartition(op.Name); ok {
				name, part = pd.Name, pd.Partition
			}
			kind := KindPrimary
			switch {
			case op.Kind == OpExportModule && part != "":
				kind = KindExportPartition
			case op.Kind == OpExportModule:
				kind = KindExportPrimary
			case part != "":
				kind = KindPartition
			}
			return Declaration{Kind: kind, Name: name, Partition: part}, true
		}
	}
	return Declaration{Kind: KindGlobal, TU: u.Path}, true
}

// dfsLoops walks every root's dependedBy chain computing Depth as
// post-order "1 + max(dependent depth)"; if no root exists but
// children remain, every import was satisfied yet the graph has a
// cycle, so a synthetic root is promoted to make the cycle reachable
// and reported (ported from the original implementation's dfsLoops).
func dfsLoops(g *Graph, bag *diagnostics.Bag) {
	if len(g.Roots) == 0 && len(g.Children) > 0 {
		keys := maps.Keys(g.Children)
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		candidate := keys[0]
		n := g.Children[candidate]
		delete(g.Children, candidate)
		g.Roots[candidate] = n
		dfsLoops(g, bag)
		return
	}

	visited := map[Declaration]bool{}
	var stack []Declaration

	declOf := func(d Declaration) *Node {
		if n, ok := g.Children[d]; ok {
			return n
		}
		return g.Roots[d]
	}

	var visit func(decl Declaration) int
	visit = func(decl Declaration) int {
		if visited[decl] {
			bag.Add(diagnostics.New(diagnostics.CodeModCycle, diagnostics.SeverityError, "", 0, 0,
				map[string]any{"Chain": chainString(append(stack, decl))}))
			return 0
		}
		visited[decl] = true
		stack = append(stack, decl)
		n := declOf(decl)
		maxChild := 0
		for _, dependent := range n.DependedBy {
			if d := visit(dependent); d > maxChild {
				maxChild = d
			}
		}
		stack = stack[:len(stack)-1]
		delete(visited, decl)
		n.Depth = maxChild + 1
		return n.Depth
	}

	roots := maps.Keys(g.Roots)
	sort.Slice(roots, func(i, j int) bool { return roots[i].String() < roots[j].String() })
	for _, decl := range roots {
		visit(decl)
	}
}

func chainString(chain []Declaration) string {
	s := ""
	for i, d := range chain {
		if i > 0 {
			s += " -> "
		}
		s += d.String()
	}
	return s
}

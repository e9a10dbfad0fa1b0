// Package recursion builds the whole-program call graph (spec.md §3, §4.5)
// from a fully-resolved module.Registry and rejects every direct, mutual,
// or indirect cycle it contains: the language forbids recursion so the
// static frame allocator (pkg/sfa) can give every function's locals a
// fixed absolute address instead of a stack frame.
//
// Grounded on the teacher's pkg/corset call-graph-free approach plus
// pkg/module.DetectCycles (kept and generalized here): the same
// three-colour depth-first search used for the module dependency graph,
// applied instead to function call edges gathered by pkg/sema.
package recursion

import (
	"github.com/blend65/blend65c/pkg/module"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/symbol"
)

// NodeID names a function by its fully-qualified "module.function" name
// (spec.md §3: "Call graph. Nodes are functions (keyed by fully-qualified
// name)").
type NodeID string

func qualify(moduleName, funcName string) NodeID {
	return NodeID(moduleName + "." + funcName)
}

type edge struct {
	to   NodeID
	site source.Span
}

// Graph is the whole-program call graph: one node per function declared
// in any registered module, one edge per call site found inside a
// function's body.
type Graph struct {
	nodes []NodeID
	edges map[NodeID][]edge
}

// Build walks every module's functions and collects their outgoing call
// edges (pkg/sema.FuncInfo.Callees) into a single graph. An edge whose
// callee is an Imported symbol is resolved to its home module via
// SourceModule/OriginalName, which pkg/module.ResolveImports must have
// already run to populate; an edge to anything else (an intrinsic, an
// unresolved import, a variable called as if it were a function — already
// diagnosed by pkg/sema) is simply omitted, since it cannot recurse.
func Build(reg *module.Registry) *Graph {
	g := &Graph{edges: map[NodeID][]edge{}}

	for _, name := range reg.Names() {
		info, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		for _, fi := range info.Result.Functions {
			from := qualify(name, fi.Symbol.Name)
			g.nodes = append(g.nodes, from)
			for _, c := range fi.Callees {
				to, ok := resolveTarget(name, c.Callee)
				if !ok {
					continue
				}
				g.edges[from] = append(g.edges[from], edge{to: to, site: c.Site})
			}
		}
	}

	return g
}

// resolveTarget finds the fully-qualified callee a call edge points at.
// SourceModule is checked ahead of SymKind because pkg/module.ResolveImports
// rewrites an Imported symbol's kind to Function once it is known to name
// one (so sema's checkCall can validate arity against it), but leaves
// SourceModule/OriginalName in place as the only remaining signal that the
// symbol's home is a different module.
func resolveTarget(callerModule string, callee *symbol.Symbol) (NodeID, bool) {
	if callee == nil {
		return "", false
	}
	if callee.SourceModule != "" {
		name := callee.OriginalName
		if name == "" {
			name = callee.Name
		}
		return qualify(callee.SourceModule, name), true
	}
	if callee.SymKind == symbol.Function {
		return qualify(callerModule, callee.Name), true
	}
	return "", false
}

package recursion

import (
	"strings"

	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/source"
)

// Kind classifies a recursion cycle by its length (spec.md §4.5).
type Kind uint8

const (
	// Direct is a self-loop: f calls itself.
	Direct Kind = iota
	// Mutual is a two-node cycle: f calls g, g calls f.
	Mutual
	// Indirect is a cycle of three or more distinct functions.
	Indirect
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct recursion"
	case Mutual:
		return "mutual recursion"
	default:
		return "indirect recursion"
	}
}

// Cycle is one call-graph cycle, canonicalized by rotating its node list to
// start at the lexicographically smallest name so the same cycle found by
// entering the DFS at a different node still dedupes to one report.
type Cycle struct {
	Kind  Kind
	Nodes []NodeID
	// Sites[i] is the span of the call expression from Nodes[i] to
	// Nodes[(i+1)%len(Nodes)].
	Sites []source.Span
}

func (c Cycle) key() string {
	parts := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		parts[i] = string(n)
	}
	return strings.Join(parts, "->")
}

// path renders the cycle as "a -> b -> c -> a".
func (c Cycle) path() string {
	parts := make([]string, len(c.Nodes)+1)
	for i, n := range c.Nodes {
		parts[i] = string(n)
	}
	parts[len(c.Nodes)] = string(c.Nodes[0])
	return strings.Join(parts, " -> ")
}

func (c Cycle) diagnostic() diag.Diagnostic {
	var code diag.Code
	switch c.Kind {
	case Direct:
		code = diag.SDirectRecursion
	case Mutual:
		code = diag.SMutualRecursion
	default:
		code = diag.SIndirectRecusion
	}

	// The span of the call that closes the cycle back to its smallest
	// member reads most naturally as "the recursive call" at the site a
	// reader is most likely to be looking at.
	site := c.Sites[len(c.Sites)-1]

	return diag.New(code, diag.Error,
		c.Kind.String()+" is not allowed: "+c.path()+
			" — every function may have at most one live frame on the "+
			"static frame allocator, so recursion cannot be given a fixed "+
			"address; rewrite as an iterative loop",
		site)
}

// DetectCycles runs a three-colour depth-first search over the call graph
// (the same shape as pkg/module.DetectCycles, applied to call edges
// instead of import edges) and returns one canonicalized, deduplicated
// Cycle per distinct cycle found.
func (g *Graph) DetectCycles() []Cycle {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := map[NodeID]int{}
	incoming := map[NodeID]source.Span{}
	var stack []NodeID
	var out []Cycle
	seen := map[string]bool{}

	var visit func(n NodeID)
	visit = func(n NodeID) {
		color[n] = gray
		stack = append(stack, n)

		for _, e := range g.edges[n] {
			switch color[e.to] {
			case white:
				incoming[e.to] = e.site
				visit(e.to)
			case gray:
				idx := stackIndex(stack, e.to)
				nodes := append([]NodeID{}, stack[idx:]...)
				sites := make([]source.Span, len(nodes))
				for i := range nodes {
					if i == len(nodes)-1 {
						sites[i] = e.site
					} else {
						sites[i] = incoming[nodes[i+1]]
					}
				}
				cyc := canonicalize(nodes, sites)
				if !seen[cyc.key()] {
					seen[cyc.key()] = true
					out = append(out, cyc)
				}
			case black:
				// already fully explored, not part of a new cycle through here
			}
		}

		stack = stack[:len(stack)-1]
		color[n] = black
	}

	for _, n := range g.nodes {
		if color[n] == white {
			visit(n)
		}
	}

	return out
}

func stackIndex(stack []NodeID, n NodeID) int {
	for i, s := range stack {
		if s == n {
			return i
		}
	}
	return 0
}

func canonicalize(nodes []NodeID, sites []source.Span) Cycle {
	n := len(nodes)
	minIdx := 0
	for i := 1; i < n; i++ {
		if nodes[i] < nodes[minIdx] {
			minIdx = i
		}
	}

	rn := make([]NodeID, n)
	rs := make([]source.Span, n)
	for i := 0; i < n; i++ {
		rn[i] = nodes[(minIdx+i)%n]
		rs[i] = sites[(minIdx+i)%n]
	}

	kind := Indirect
	switch n {
	case 1:
		kind = Direct
	case 2:
		kind = Mutual
	}

	return Cycle{Kind: kind, Nodes: rn, Sites: rs}
}

// Diagnostics runs DetectCycles and renders each cycle found as a hard
// error diagnostic (spec.md §4.5: "This check is a hard error, not a
// warning").
func (g *Graph) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cyc := range g.DetectCycles() {
		out = append(out, cyc.diagnostic())
	}
	return out
}

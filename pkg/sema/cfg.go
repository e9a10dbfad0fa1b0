package sema

import "github.com/blend65/blend65c/pkg/source"

// NodeKind classifies a single control-flow graph node (spec.md §3, §4.3).
type NodeKind uint8

// CFG node kinds.
const (
	NodeEntry NodeKind = iota
	NodeExit
	NodeStatement
	NodeBranch
	NodeLoop
	NodeReturn
	NodeBreak
	NodeContinue
)

// String renders a node kind for debugging and tests.
func (k NodeKind) String() string {
	switch k {
	case NodeEntry:
		return "entry"
	case NodeExit:
		return "exit"
	case NodeStatement:
		return "statement"
	case NodeBranch:
		return "branch"
	case NodeLoop:
		return "loop"
	case NodeReturn:
		return "return"
	case NodeBreak:
		return "break"
	case NodeContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// CFGNode is a single node in a function's control-flow graph.
type CFGNode struct {
	ID        int
	Kind      NodeKind
	Span      source.Span
	Succ      []int
	reachable bool
}

// Reachable reports whether this node was reached by a forward walk from
// the graph's Entry node (populated by CFG.MarkReachable).
func (n *CFGNode) Reachable() bool { return n.reachable }

// CFG is one function's control-flow graph: a single Entry and a single
// Exit, with every reachable path between them represented by Statement,
// Branch, Loop, Return, Break and Continue nodes (spec.md §3, §4.3).
type CFG struct {
	Nodes []*CFGNode
	Entry int
	Exit  int
}

func newCFG() *CFG {
	c := &CFG{}
	c.Entry = c.add(NodeEntry, source.Span{})
	c.Exit = c.add(NodeExit, source.Span{})
	return c
}

func (c *CFG) add(kind NodeKind, span source.Span) int {
	id := len(c.Nodes)
	c.Nodes = append(c.Nodes, &CFGNode{ID: id, Kind: kind, Span: span})
	return id
}

func (c *CFG) link(from, to int) {
	for _, s := range c.Nodes[from].Succ {
		if s == to {
			return
		}
	}
	c.Nodes[from].Succ = append(c.Nodes[from].Succ, to)
}

// MarkReachable runs a forward depth-first walk from Entry, marking every
// node it visits. Any node left unmarked afterward is unreachable code
// (spec.md §4.3: reported as WUnreachableCode, never a hard error).
func (c *CFG) MarkReachable() {
	seen := make([]bool, len(c.Nodes))
	var visit func(id int)
	visit = func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		c.Nodes[id].reachable = true
		for _, s := range c.Nodes[id].Succ {
			visit(s)
		}
	}
	visit(c.Entry)
}

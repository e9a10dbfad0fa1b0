package ilgen

import (
	"sort"

	"github.com/blend65/blend65c/pkg/il"
)

// vars is a snapshot of the current SSA value bound to every named local
// variable/parameter in scope at one point in a function's lowering.
// Values are il.Value directly (a Constant or a VirtualRegister) rather
// than always-materialized registers, so an untouched constant stays a
// constant all the way to its use (spec.md §4.6: "constants fold where
// both operands are constant").
type vars map[string]il.Value

func (v vars) clone() vars {
	out := make(vars, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// edge is one control-flow predecessor arriving at a merge point, paired
// with the variable bindings live along that path.
type edge struct {
	block int
	vars  vars
}

// mergeAt computes the variable bindings live at a join block given the
// bindings along each of its incoming edges, inserting a PHI instruction
// (spec.md §4.6) for every variable whose value differs across edges. A
// variable with the same value on every edge is passed through unchanged
// rather than given a trivial phi, keeping phi nodes limited to genuine
// merges. Variable names not common to every edge are dropped: that only
// happens for a variable declared only within some one branch, which
// cannot be live past the join anyway (the language has no block scoping,
// so this is a conservative approximation rather than a modeled rule,
// documented in DESIGN.md).
func mergeAt(fn *il.Function, join *il.Block, edges []edge) vars {
	switch len(edges) {
	case 0:
		return vars{}
	case 1:
		return edges[0].vars.clone()
	}

	names := commonNames(edges)
	merged := make(vars, len(names))

	for _, name := range names {
		first := edges[0].vars[name]
		same := true
		for _, e := range edges[1:] {
			if e.vars[name] != first {
				same = false
				break
			}
		}
		if same {
			merged[name] = first
			continue
		}

		reg := fn.NewRegister(first.Type(), name)
		phi := fn.NewInstr(il.PHI)
		phi.Result = &reg
		for _, e := range edges {
			v, ok := e.vars[name]
			if !ok {
				v = first
			}
			phi.PhiSources = append(phi.PhiSources, il.PhiSource{Block: e.block, Value: v})
		}
		join.Append(phi)
		merged[name] = reg
	}

	return merged
}

func commonNames(edges []edge) []string {
	counts := map[string]int{}
	for _, e := range edges {
		for name := range e.vars {
			counts[name]++
		}
	}
	var names []string
	for name, n := range counts {
		if n == len(edges) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

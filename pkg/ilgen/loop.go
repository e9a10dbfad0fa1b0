package ilgen

import (
	"sort"

	"github.com/blend65/blend65c/pkg/il"
)

// seedLoopPhis pre-allocates one PHI instruction at header for every name
// in names that is already bound in preVars, with only the preheader edge
// as its initial source. The body is lowered against the returned vars
// snapshot (each such name rebound to its phi register) so a read inside
// the loop body sees the phi rather than the pre-loop value; patchLoopPhis
// fills in the remaining sources once the body's exit edges are known.
func seedLoopPhis(fn *il.Function, header *il.Block, names map[string]bool, preVars vars, preBlock int) (vars, map[string]*il.Instr) {
	headerVars := preVars.clone()
	phis := map[string]*il.Instr{}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		v, ok := preVars[name]
		if !ok {
			// assigned only within the loop body itself, not live on entry:
			// nothing reads it before its first in-body write, so it needs
			// no header phi.
			continue
		}
		reg := fn.NewRegister(v.Type(), name)
		phi := fn.NewInstr(il.PHI)
		phi.Result = &reg
		phi.PhiSources = []il.PhiSource{{Block: preBlock, Value: v}}
		header.Append(phi)
		headerVars[name] = reg
		phis[name] = phi
	}

	return headerVars, phis
}

// patchLoopPhis adds one additional PHI source per backedge for every
// pre-seeded header phi, using the value live for that name at the end of
// the edge's path, or the phi's own value if the edge's path never touched
// that name.
func patchLoopPhis(phis map[string]*il.Instr, headerVars vars, backEdges []edge) {
	for name, phi := range phis {
		for _, e := range backEdges {
			v, ok := e.vars[name]
			if !ok {
				v = headerVars[name]
			}
			phi.PhiSources = append(phi.PhiSources, il.PhiSource{Block: e.block, Value: v})
		}
	}
}

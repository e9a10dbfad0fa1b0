package optimize

import "github.com/blend65/blend65c/pkg/il"

// constantBranchFold collapses a BRANCH_IF_TRUE whose condition is already
// a compile-time constant (spec.md §4.7, O1) into an unconditional BRANCH
// to whichever target the constant selects. The dropped target's
// predecessor and PHI-source bookkeeping is updated in place so the
// function stays valid per pkg/il.Validate. When that leaves the dropped
// block with no predecessors, its own outgoing edges (and the PHI
// sources they supplied) are removed as well; the block itself is left
// in place as unreachable dead weight.
type constantBranchFold struct{}

func (constantBranchFold) Name() string { return "constant-branch-fold" }

func (constantBranchFold) Run(mod *il.Module) bool {
	changed := false
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			if foldBlock(fn, b) {
				changed = true
			}
		}
	}
	return changed
}

func foldBlock(fn *il.Function, b *il.Block) bool {
	term := b.Terminator()
	if term == nil || term.Op != il.BRANCH_IF_TRUE {
		return false
	}
	c, ok := term.Operands[0].(il.Constant)
	if !ok {
		return false
	}

	taken, dropped := term.Target2, term.Target
	if c.Val != 0 {
		taken, dropped = term.Target, term.Target2
	}

	term.Op = il.BRANCH
	term.Operands = nil
	term.Target = taken
	term.Target2 = 0

	if taken != dropped {
		unlinkEdge(fn, b.ID, dropped)
		if d := fn.Block(dropped); d != nil && len(d.Preds) == 0 && dropped != fn.EntryBlock {
			for _, succ := range append([]int(nil), d.Succs...) {
				unlinkEdge(fn, dropped, succ)
			}
		}
	}
	return true
}

// unlinkEdge removes the from->to edge: from's Succs entry, to's Preds
// entry, and any PHI source in to naming from as its block (since from no
// longer reaches to, it can no longer supply one of its phi values).
func unlinkEdge(fn *il.Function, from, to int) {
	src := fn.Block(from)
	if src != nil {
		src.Succs = removeInt(src.Succs, to)
	}

	dst := fn.Block(to)
	if dst == nil {
		return
	}
	dst.Preds = removeInt(dst.Preds, from)

	for _, instr := range dst.Instrs {
		if instr.Op != il.PHI {
			continue
		}
		kept := instr.PhiSources[:0]
		for _, src := range instr.PhiSources {
			if src.Block != from {
				kept = append(kept, src)
			}
		}
		instr.PhiSources = kept
	}
}

func removeInt(xs []int, v int) []int {
	out := xs[:0]
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

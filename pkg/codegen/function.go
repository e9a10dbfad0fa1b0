package codegen

import (
	"fmt"
	"strings"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/types"
)

// phiCopy is one scheduled "move src into destLabel" that must happen on
// a specific control-flow edge so the join block's PHI sees the right
// value arrive in its home slot (standard SSA-deconstruction via copy
// insertion, grounded on the teacher's own CFG-edge bookkeeping style in
// pkg/mir, kept as reference for "carry data across a CFG edge by id").
type phiCopy struct {
	destLabel string
	destWord  bool
	src       il.Value
}

// fnGen carries one function's translation state: its parameter-slot
// map and the phi-copies owed on each CFG edge, precomputed once up
// front so block translation never needs to look at any other block.
type fnGen struct {
	g          *generator
	fn         *il.Function
	paramIdx   map[int]int
	edgeCopies map[int]map[int][]phiCopy
	thunks     []asmil.Item
	redirect   *[]asmil.Item // non-nil while assembling an edge thunk's body
}

func newFnGen(g *generator, fn *il.Function) *fnGen {
	fg := &fnGen{g: g, fn: fn, paramIdx: map[int]int{}, edgeCopies: map[int]map[int][]phiCopy{}}
	for i, p := range fn.Params {
		fg.paramIdx[p.Reg.ID] = i
	}
	fg.collectPhiCopies()
	return fg
}

// collectPhiCopies scans every block's leading PHI instructions (the
// only place they may appear, per pkg/il.Validate) and records, per
// predecessor edge, the copy that predecessor owes the join.
func (fg *fnGen) collectPhiCopies() {
	for _, b := range fg.fn.Blocks {
		for _, instr := range b.Instrs {
			if instr.Op != il.PHI {
				break
			}
			if instr.Result == nil {
				continue
			}
			dest := fg.homeLabel(*instr.Result)
			wide := instr.Result.Ty != nil && instr.Result.Ty.Size() > 1
			for _, src := range instr.PhiSources {
				fg.addEdgeCopy(src.Block, b.ID, phiCopy{destLabel: dest, destWord: wide, src: src.Value})
			}
		}
	}
}

func (fg *fnGen) addEdgeCopy(from, to int, c phiCopy) {
	if fg.edgeCopies[from] == nil {
		fg.edgeCopies[from] = map[int][]phiCopy{}
	}
	fg.edgeCopies[from][to] = append(fg.edgeCopies[from][to], c)
}

// branchTargetLabel returns the label a branch from block `from` to
// block `to` should actually address: the block's own label when that
// edge owes no phi copies, or a synthesized edge thunk (label, the
// owed copies, then an unconditional jump to the real block) when it
// does. This is ordinary critical-edge splitting: a conditional
// branch's two successors can owe different copies, so the copies can
// never be flushed unconditionally before the branch itself.
func (fg *fnGen) branchTargetLabel(from, to int) string {
	copies := fg.edgeCopies[from][to]
	if len(copies) == 0 {
		return blockLabel(to)
	}

	thunk := fmt.Sprintf(".Lb%d_%d", from, to)
	var body []asmil.Item
	body = append(body, &asmil.Label{Name: thunk, Kind: asmil.LabelBlock})

	fg.redirect = &body
	for _, c := range copies {
		fg.loadValue(c.src)
		if c.destWord {
			fg.storeAX(c.destLabel)
		} else {
			fg.storeA(c.destLabel)
		}
	}
	fg.emit("JMP", asmil.Absolute, labelOperand(blockLabel(to)), true)
	fg.redirect = nil

	fg.thunks = append(fg.thunks, body...)
	return thunk
}

func (fg *fnGen) flushThunks() {
	if len(fg.thunks) == 0 {
		return
	}
	for _, item := range fg.thunks {
		fg.g.emit(item)
	}
	fg.thunks = nil
}

func blockLabel(id int) string { return fmt.Sprintf(".Lb%d", id) }

// shortName strips a call-graph-qualified "module.function" name down
// to its bare function name, for the clean exported entry-point alias.
func shortName(qualified string) string {
	if idx := strings.LastIndexByte(qualified, '.'); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

// lowerFunction translates one IL function into its ASM-IL label(s),
// block labels, and instructions (spec.md §4.8). Every function gets
// its call-graph-qualified name as a label (what every CALL site
// addresses, per pkg/recursion/pkg/ilgen's own qualifyCallee scheme);
// an additionally exported function also gets a clean "_name" alias at
// the same address, so a cross-module import or a BASIC `SYS` stub has
// a human-friendly entry point without the callee needing to guess
// which name its caller used.
func (g *generator) lowerFunction(fn *il.Function) {
	fg := newFnGen(g, fn)

	g.emit(&asmil.Label{Name: fn.Name, Kind: asmil.LabelFunction})
	if fn.Exported {
		g.emit(&asmil.Label{Name: "_" + shortName(fn.Name), Kind: asmil.LabelExported})
	}

	for _, b := range fn.Blocks {
		fg.lowerBlock(b)
	}
}

func (fg *fnGen) lowerBlock(b *il.Block) {
	if b.ID != fg.fn.EntryBlock {
		fg.g.emit(&asmil.Label{Name: blockLabel(b.ID), Kind: asmil.LabelBlock})
	}

	for _, instr := range b.Instrs {
		if instr.Op == il.PHI {
			continue
		}
		fg.lowerInstr(b, instr)
	}

	fg.flushThunks()
}

func typeWidth(t types.Type) int {
	if t == nil || t.Size() <= 1 {
		return 1
	}
	return 2
}

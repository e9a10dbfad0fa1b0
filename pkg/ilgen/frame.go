package ilgen

import (
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/symbol"
)

// frameKind distinguishes a loop frame (both break and continue apply) from
// a switch frame (only break applies; continue passes through to the
// nearest enclosing loop), mirroring pkg/sema's own controlFrame exactly
// (spec.md §4.3: break/continue targets are resolved the same way at
// analysis time and at lowering time).
type frameKind uint8

const (
	frameLoop frameKind = iota
	frameSwitch
)

// frame tracks one enclosing loop or switch while lowering a function
// body. continueTarget is unused for a switch frame: continue passes
// through to the nearest enclosing loop frame instead.
type frame struct {
	kind           frameKind
	continueTarget int
	breakTarget    int

	// breakEdges/continueEdges accumulate the vars snapshot live at each
	// break/continue site, consumed by the loop or switch's own merge once
	// its body is fully lowered.
	breakEdges    []edge
	continueEdges []edge
}

// fg bundles the per-function lowering state threaded through every
// statement/expression helper.
type fg struct {
	gen        *Generator
	fn         *il.Function
	scope      *symbol.Scope
	moduleName string

	// cur is the block instructions are currently appended to. Lowering a
	// statement may replace cur with a freshly created block (e.g. the
	// join block after an if/else).
	cur *il.Block

	// vars is the current SSA binding of every scalar local/parameter in
	// scope. Array-typed locals and every module-scope global are never
	// present here: they are addressed through memory (pkg/il LOAD_MEM /
	// STORE_MEM), not tracked as SSA values.
	vars vars

	frames []frame
}

// lowerBranch lowers a conditional arm into a fresh block reached from the
// current block, starting from a clone of baseVars. It returns the new
// block together with the edge reaching a later join point, or a nil edge
// if the arm's last statement already terminated control flow itself
// (return, or a break/continue that branched elsewhere) so no fallthrough
// edge to the join exists.
func (g *fg) lowerBranch(label string, baseVars vars, lower func(*fg)) (*il.Block, *edge) {
	b := g.fn.NewBlock(label)
	sub := &fg{
		gen:        g.gen,
		fn:         g.fn,
		scope:      g.scope,
		moduleName: g.moduleName,
		cur:        b,
		vars:       baseVars.clone(),
		frames:     g.frames,
	}
	lower(sub)
	if sub.cur.Terminator() != nil {
		return b, nil
	}
	return b, &edge{block: sub.cur.ID, vars: sub.vars}
}

func (g *fg) pushFrame(kind frameKind, continueTarget, breakTarget int) *frame {
	g.frames = append(g.frames, frame{kind: kind, continueTarget: continueTarget, breakTarget: breakTarget})
	return &g.frames[len(g.frames)-1]
}

func (g *fg) popFrame() frame {
	f := g.frames[len(g.frames)-1]
	g.frames = g.frames[:len(g.frames)-1]
	return f
}

// recordBreak appends an edge to the nearest enclosing frame's break set
// (break always targets its immediate enclosing loop or switch).
func (g *fg) recordBreak(blockID int, v vars) {
	if len(g.frames) == 0 {
		return
	}
	top := &g.frames[len(g.frames)-1]
	top.breakEdges = append(top.breakEdges, edge{block: blockID, vars: v})
}

// breakTargetBlock finds the block the nearest enclosing loop or switch's
// break jumps to.
func (g *fg) breakTargetBlock() int {
	if len(g.frames) == 0 {
		return -1
	}
	return g.frames[len(g.frames)-1].breakTarget
}

// recordContinue appends an edge to the nearest enclosing LOOP frame's
// continue set, passing through any switch frames in between (spec.md §9:
// continue always targets the nearest loop, never a switch).
func (g *fg) recordContinue(blockID int, v vars) *frame {
	for i := len(g.frames) - 1; i >= 0; i-- {
		if g.frames[i].kind == frameLoop {
			g.frames[i].continueEdges = append(g.frames[i].continueEdges, edge{block: blockID, vars: v})
			return &g.frames[i]
		}
	}
	return nil
}

// continueTargetBlock finds the block the nearest enclosing loop's continue
// jumps to.
func (g *fg) continueTargetBlock() int {
	for i := len(g.frames) - 1; i >= 0; i-- {
		if g.frames[i].kind == frameLoop {
			return g.frames[i].continueTarget
		}
	}
	return -1
}

package optimize

import (
	"testing"

	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/types"
)

func TestIntrinsicLoweringInvariantPassesCleanModule(t *testing.T) {
	fn := il.NewFunction("m.f", nil, types.VoidType)
	call := fn.NewInstr(il.CALL_VOID)
	call.Callee = "m.helper"
	fn.Block(fn.EntryBlock).Append(call)
	ret := fn.NewInstr(il.RETURN_VOID)
	fn.Block(fn.EntryBlock).Append(ret)

	mod := &il.Module{Name: "m", Functions: []*il.Function{fn}}
	mgr := New(O0)
	if stats := mgr.Run(mod); stats[0].Applied != 0 {
		t.Fatalf("expected the invariant pass to never report a change, got %v", stats)
	}
}

func TestIntrinsicLoweringInvariantPanicsOnViolation(t *testing.T) {
	fn := il.NewFunction("m.f", nil, types.VoidType)
	call := fn.NewInstr(il.CALL_VOID)
	call.Callee = "poke"
	fn.Block(fn.EntryBlock).Append(call)
	fn.Block(fn.EntryBlock).Append(fn.NewInstr(il.RETURN_VOID))

	mod := &il.Module{Name: "m", Functions: []*il.Function{fn}}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic when a call node targets a reserved intrinsic name")
		}
	}()
	New(O0).Run(mod)
}

// buildConstBranch builds: entry -[BRANCH_IF_TRUE true]-> (then|else),
// both of which branch to join, where join has a PHI distinguishing them.
func buildConstBranch(t *testing.T, condVal uint64) (*il.Function, *il.Block, *il.Block) {
	t.Helper()
	fn := il.NewFunction("m.f", nil, types.WordType)
	entry := fn.Block(fn.EntryBlock)

	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	join := fn.NewBlock("join")

	br := fn.NewInstr(il.BRANCH_IF_TRUE)
	br.Operands = []il.Value{il.Constant{Val: condVal, Ty: types.BoolType}}
	br.Target, br.Target2 = thenB.ID, elseB.ID
	entry.Append(br)
	fn.Link(entry.ID, thenB.ID)
	fn.Link(entry.ID, elseB.ID)

	tb := fn.NewInstr(il.BRANCH)
	tb.Target = join.ID
	thenB.Append(tb)
	fn.Link(thenB.ID, join.ID)

	eb := fn.NewInstr(il.BRANCH)
	eb.Target = join.ID
	elseB.Append(eb)
	fn.Link(elseB.ID, join.ID)

	reg := fn.NewRegister(types.WordType, "")
	phi := fn.NewInstr(il.PHI)
	phi.Result = &reg
	phi.PhiSources = []il.PhiSource{
		{Block: thenB.ID, Value: il.Constant{Val: 1, Ty: types.WordType}},
		{Block: elseB.ID, Value: il.Constant{Val: 2, Ty: types.WordType}},
	}
	join.Append(phi)
	ret := fn.NewInstr(il.RETURN)
	ret.Operands = []il.Value{reg}
	join.Append(ret)

	return fn, thenB, elseB
}

func TestConstantBranchFoldTakesTrueBranch(t *testing.T) {
	fn, thenB, elseB := buildConstBranch(t, 1)
	mod := &il.Module{Name: "m", Functions: []*il.Function{fn}}

	stats := New(O1).Run(mod)
	found := false
	for _, s := range stats {
		if s.Pass == "constant-branch-fold" {
			found = true
			if s.Applied == 0 {
				t.Fatalf("expected constant-branch-fold to report a change")
			}
		}
	}
	if !found {
		t.Fatalf("expected constant-branch-fold to run at O1")
	}

	entry := fn.Block(fn.EntryBlock)
	term := entry.Terminator()
	if term.Op != il.BRANCH || term.Target != thenB.ID {
		t.Fatalf("expected an unconditional BRANCH to the then block, got %#v", term)
	}

	if len(elseB.Preds) != 0 {
		t.Fatalf("expected the else block to have no predecessors left, got %v", elseB.Preds)
	}

	var join *il.Block
	for _, b := range fn.Blocks {
		if b.Label == "join" {
			join = b
		}
	}
	phi := join.Instrs[0]
	if len(phi.PhiSources) != 1 || phi.PhiSources[0].Block != thenB.ID {
		t.Fatalf("expected the join PHI to keep only the then-block source, got %#v", phi.PhiSources)
	}

	if errs := il.Validate(fn); len(errs) != 0 {
		t.Fatalf("expected the folded function to stay valid, got %v", errs)
	}
}

func TestConstantBranchFoldNotRunAtO0(t *testing.T) {
	fn, _, _ := buildConstBranch(t, 0)
	mod := &il.Module{Name: "m", Functions: []*il.Function{fn}}

	New(O0).Run(mod)

	entry := fn.Block(fn.EntryBlock)
	if entry.Terminator().Op != il.BRANCH_IF_TRUE {
		t.Fatalf("expected O0 to leave the conditional branch untouched")
	}
}

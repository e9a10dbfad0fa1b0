package codegen

import (
	"testing"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/types"
)

func findLabel(items []asmil.Item, name string) bool {
	for _, it := range items {
		if l, ok := it.(*asmil.Label); ok && l.Name == name {
			return true
		}
	}
	return false
}

func countInstrs(items []asmil.Item) int {
	n := 0
	for _, it := range items {
		if _, ok := it.(*asmil.Instruction); ok {
			n++
		}
	}
	return n
}

func TestGenerateEmitsOriginAndFunctionLabel(t *testing.T) {
	mod := &il.Module{Name: "m"}
	fn := il.NewFunction("m.main", nil, types.VoidType)
	fn.Exported = true
	entry := fn.Block(fn.EntryBlock)
	entry.Append(fn.NewInstr(il.RETURN_VOID))
	mod.Functions = append(mod.Functions, fn)

	out := Generate(mod, DefaultOrigin)

	origin, ok := out.Items[0].(*asmil.Origin)
	if !ok || origin.Address != DefaultOrigin {
		t.Fatalf("expected an Origin item at 0x%04x first, got %#v", DefaultOrigin, out.Items[0])
	}
	if !findLabel(out.Items, "m.main") {
		t.Fatalf("expected a qualified label for m.main")
	}
	if !findLabel(out.Items, "_main") {
		t.Fatalf("expected an exported alias label _main")
	}
	if out.Stats.FunctionCount != 1 {
		t.Fatalf("expected FunctionCount 1, got %d", out.Stats.FunctionCount)
	}
}

func TestGenerateSimpleArithmeticProducesCode(t *testing.T) {
	mod := &il.Module{Name: "m"}
	fn := il.NewFunction("m.add", []il.Param{{Name: "a"}, {Name: "b"}}, types.ByteType)
	a := fn.NewRegister(types.ByteType, "a")
	b := fn.NewRegister(types.ByteType, "b")
	fn.Params[0].Reg = a
	fn.Params[1].Reg = b

	entry := fn.Block(fn.EntryBlock)
	sum := fn.NewRegister(types.ByteType, "")
	add := fn.NewInstr(il.ADD)
	add.Operands = []il.Value{a, b}
	add.Result = &sum
	entry.Append(add)

	ret := fn.NewInstr(il.RETURN)
	ret.Operands = []il.Value{sum}
	entry.Append(ret)

	mod.Functions = append(mod.Functions, fn)
	out := Generate(mod, DefaultOrigin)

	if n := countInstrs(out.Items); n == 0 {
		t.Fatalf("expected at least one emitted instruction")
	}
	if out.Stats.CodeSize == 0 {
		t.Fatalf("expected a nonzero code size")
	}
}

func TestGenerateGlobalScalarEmitsData(t *testing.T) {
	mod := &il.Module{Name: "m"}
	mod.Globals = append(mod.Globals, il.Global{Name: "counter", Type: types.ByteType, Initial: []uint64{5}})

	out := Generate(mod, DefaultOrigin)

	if !findLabel(out.Items, "m.counter") {
		t.Fatalf("expected a label for the global m.counter")
	}
	found := false
	for _, it := range out.Items {
		if d, ok := it.(*asmil.Data); ok && d.Kind == asmil.DataByte {
			found = true
			if len(d.Bytes) != 1 || d.Bytes[0] != 5 {
				t.Fatalf("unexpected global data contents: %#v", d)
			}
		}
	}
	if !found {
		t.Fatalf("expected a DataByte item for the global initializer")
	}
	if out.Stats.GlobalCount != 1 {
		t.Fatalf("expected GlobalCount 1, got %d", out.Stats.GlobalCount)
	}
}

func TestGenerateZeroGlobalUsesFill(t *testing.T) {
	mod := &il.Module{Name: "m"}
	mod.Globals = append(mod.Globals, il.Global{Name: "buf", Type: &types.ArrayType{Elem: types.ByteType, Len: 4}, Initial: []uint64{0, 0, 0, 0}})

	out := Generate(mod, DefaultOrigin)
	for _, it := range out.Items {
		if d, ok := it.(*asmil.Data); ok {
			if d.Kind != asmil.DataFill || d.Count != 4 {
				t.Fatalf("expected a 4-byte DataFill, got %#v", d)
			}
		}
	}
}

// TestGenerateBranchWithPhiInsertsEdgeCopies builds an if/else that joins
// on a PHI and checks both join-bound edges get their own copy-then-jump
// thunk rather than one shared, unconditionally-run copy.
func TestGenerateBranchWithPhiInsertsEdgeCopies(t *testing.T) {
	mod := &il.Module{Name: "m"}
	fn := il.NewFunction("m.pick", nil, types.ByteType)
	entry := fn.Block(fn.EntryBlock)
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	join := fn.NewBlock("join")

	cond := il.Constant{Val: 1, Ty: types.BoolType}
	br := fn.NewInstr(il.BRANCH_IF_TRUE)
	br.Operands = []il.Value{cond}
	br.Target, br.Target2 = thenB.ID, elseB.ID
	entry.Append(br)
	fn.Link(entry.ID, thenB.ID)
	fn.Link(entry.ID, elseB.ID)

	tJmp := fn.NewInstr(il.BRANCH)
	tJmp.Target = join.ID
	thenB.Append(tJmp)
	fn.Link(thenB.ID, join.ID)

	eJmp := fn.NewInstr(il.BRANCH)
	eJmp.Target = join.ID
	elseB.Append(eJmp)
	fn.Link(elseB.ID, join.ID)

	result := fn.NewRegister(types.ByteType, "x")
	phi := fn.NewInstr(il.PHI)
	phi.Result = &result
	phi.PhiSources = []il.PhiSource{
		{Block: thenB.ID, Value: il.Constant{Val: 1, Ty: types.ByteType}},
		{Block: elseB.ID, Value: il.Constant{Val: 2, Ty: types.ByteType}},
	}
	join.Append(phi)
	ret := fn.NewInstr(il.RETURN)
	ret.Operands = []il.Value{result}
	join.Append(ret)

	mod.Functions = append(mod.Functions, fn)
	out := Generate(mod, DefaultOrigin)

	thenThunk := findLabel(out.Items, ".Lb1_3")
	elseThunk := findLabel(out.Items, ".Lb2_3")
	if !thenThunk || !elseThunk {
		t.Fatalf("expected a distinct edge thunk label per predecessor of the join block")
	}
}

func TestGenerateCallWiresArgAndResultSlots(t *testing.T) {
	mod := &il.Module{Name: "m"}

	callee := il.NewFunction("m.double", []il.Param{{Name: "n"}}, types.ByteType)
	n := callee.NewRegister(types.ByteType, "n")
	callee.Params[0].Reg = n
	cEntry := callee.Block(callee.EntryBlock)
	ret := callee.NewInstr(il.RETURN)
	ret.Operands = []il.Value{n}
	cEntry.Append(ret)

	caller := il.NewFunction("m.main", nil, types.VoidType)
	caller.Exported = true
	cr := caller.Block(caller.EntryBlock)
	reg := caller.NewRegister(types.ByteType, "")
	call := caller.NewInstr(il.CALL)
	call.Operands = []il.Value{il.Constant{Val: 21, Ty: types.ByteType}}
	call.Result = &reg
	call.Callee = "m.double"
	cr.Append(call)
	cr.Append(caller.NewInstr(il.RETURN_VOID))

	mod.Functions = append(mod.Functions, callee, caller)
	out := Generate(mod, DefaultOrigin)

	// Argument slots are Operand labels rather than Label items; confirming
	// the JSR targets the callee's qualified name is the externally
	// observable part of the calling convention from here.
	found := false
	for _, it := range out.Items {
		if ins, ok := it.(*asmil.Instruction); ok && ins.Mnemonic == "JSR" && ins.Operand.Label == "m.double" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a JSR targeting the callee's qualified label")
	}
}

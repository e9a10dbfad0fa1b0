package il

import (
	"testing"

	"github.com/blend65/blend65c/pkg/types"
)

func TestValidateAcceptsWellFormedFunction(t *testing.T) {
	f := NewFunction("add", []Param{{Name: "a"}, {Name: "b"}}, types.WordType)
	entry := f.Block(f.EntryBlock)

	a := f.NewRegister(types.ByteType, "a")
	b := f.NewRegister(types.ByteType, "b")
	sum := f.NewRegister(types.WordType, "")

	add := f.NewInstr(ADD)
	add.Operands = []Value{a, b}
	add.Result = &sum
	entry.Append(add)

	ret := f.NewInstr(RETURN)
	ret.Operands = []Value{sum}
	entry.Append(ret)

	if errs := Validate(f); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
}

func TestValidateRejectsMissingTerminator(t *testing.T) {
	f := NewFunction("f", nil, types.VoidType)
	entry := f.Block(f.EntryBlock)
	entry.Append(f.NewInstr(NOP))

	if errs := Validate(f); len(errs) == 0 {
		t.Fatalf("expected a missing-terminator error")
	}
}

func TestValidateRejectsDoubleDefinition(t *testing.T) {
	f := NewFunction("f", nil, types.VoidType)
	entry := f.Block(f.EntryBlock)

	r := f.NewRegister(types.ByteType, "x")
	i1 := f.NewInstr(CONST)
	i1.Operands = []Value{Constant{Val: 1, Ty: types.ByteType}}
	i1.Result = &r
	entry.Append(i1)

	i2 := f.NewInstr(CONST)
	i2.Operands = []Value{Constant{Val: 2, Ty: types.ByteType}}
	i2.Result = &r
	entry.Append(i2)

	entry.Append(f.NewInstr(RETURN_VOID))

	if errs := Validate(f); len(errs) == 0 {
		t.Fatalf("expected a double-definition error")
	}
}

func TestValidateRejectsPhiAfterNonPhi(t *testing.T) {
	f := NewFunction("f", nil, types.VoidType)
	entry := f.Block(f.EntryBlock)
	entry.Append(f.NewInstr(NOP))

	phi := f.NewInstr(PHI)
	r := f.NewRegister(types.ByteType, "")
	phi.Result = &r
	entry.Append(phi)
	entry.Append(f.NewInstr(RETURN_VOID))

	if errs := Validate(f); len(errs) == 0 {
		t.Fatalf("expected a PHI-placement error")
	}
}

func TestValidatePhiSourcesMatchPredecessors(t *testing.T) {
	f := NewFunction("f", nil, types.ByteType)
	entry := f.Block(f.EntryBlock)
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	join := f.NewBlock("join")

	cond := Constant{Val: 1, Ty: types.BoolType}
	br := f.NewInstr(BRANCH_IF_TRUE)
	br.Operands = []Value{cond}
	br.Target, br.Target2 = left.ID, right.ID
	entry.Append(br)
	f.Link(entry.ID, left.ID)
	f.Link(entry.ID, right.ID)

	leftVal := Constant{Val: 1, Ty: types.ByteType}
	rightVal := Constant{Val: 2, Ty: types.ByteType}

	lb := f.NewInstr(BRANCH)
	lb.Target = join.ID
	left.Append(lb)
	f.Link(left.ID, join.ID)

	rb := f.NewInstr(BRANCH)
	rb.Target = join.ID
	right.Append(rb)
	f.Link(right.ID, join.ID)

	result := f.NewRegister(types.ByteType, "")
	phi := f.NewInstr(PHI)
	phi.Result = &result
	phi.PhiSources = []PhiSource{{Block: left.ID, Value: leftVal}, {Block: right.ID, Value: rightVal}}
	join.Append(phi)
	ret := f.NewInstr(RETURN)
	ret.Operands = []Value{result}
	join.Append(ret)

	if errs := Validate(f); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
}

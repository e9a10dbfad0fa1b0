package codegen

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
)

// lowerInstr translates one IL instruction into its ASM-IL equivalent
// (spec.md §4.8's per-opcode table, which the spec itself notes is not
// exhaustive). PHI is handled entirely by the copy-insertion machinery
// in function.go and never reaches here; LABEL/NOP/UNDEF need no code
// on a target with no registers to preserve and no stack to balance.
func (fg *fnGen) lowerInstr(b *il.Block, instr *il.Instr) {
	switch instr.Op {
	case il.LABEL, il.NOP, il.UNDEF:
		// no code: UNDEF's home slot simply holds whatever was there before.

	case il.CONST:
		fg.lowerConst(instr)

	case il.LOAD_MEM:
		fg.lowerLoadMem(instr)
	case il.STORE_MEM:
		fg.lowerStoreMem(instr)

	case il.ADD:
		fg.lowerArith(instr, "CLC", "ADC")
	case il.SUB:
		fg.lowerArith(instr, "SEC", "SBC")
	case il.AND:
		fg.lowerBitwise(instr, "AND")
	case il.OR:
		fg.lowerBitwise(instr, "ORA")
	case il.XOR:
		fg.lowerBitwise(instr, "EOR")
	case il.MUL:
		fg.lowerRuntimeCall(instr, "_rt_mul8")
	case il.DIV:
		fg.lowerRuntimeCall(instr, "_rt_div8")
	case il.MOD:
		fg.lowerRuntimeCall(instr, "_rt_mod8")
	case il.SHL:
		fg.lowerShift(instr, "ASL")
	case il.SHR:
		fg.lowerShift(instr, "LSR")
	case il.NOT:
		fg.lowerComplement(instr)
	case il.NEG:
		fg.lowerNegate(instr)

	case il.CMP_EQ, il.CMP_NE, il.CMP_LT, il.CMP_LE, il.CMP_GT, il.CMP_GE:
		fg.lowerCompare(instr)

	case il.BRANCH:
		fg.lowerBranch(b, instr)
	case il.BRANCH_IF_TRUE:
		fg.lowerConditionalBranch(b, instr, true)
	case il.BRANCH_IF_FALSE:
		fg.lowerConditionalBranch(b, instr, false)

	case il.CALL:
		fg.lowerCall(instr, true)
	case il.CALL_VOID:
		fg.lowerCall(instr, false)

	case il.RETURN:
		fg.loadValue(instr.Operands[0])
		fg.emitImplied("RTS")
	case il.RETURN_VOID:
		fg.emitImplied("RTS")

	case il.HW_READ:
		fg.lowerHWRead(instr)
	case il.HW_WRITE:
		fg.lowerHWWrite(instr)

	default:
		fg.g.warn("unsupported IL opcode %s in %s, no code emitted", instr.Op, fg.fn.Name)
	}
}

func (fg *fnGen) lowerConst(instr *il.Instr) {
	v := instr.Operands[0]
	fg.loadValue(v)
	fg.storeResult(*instr.Result)
}

// lowerArith handles ADD/SUB: a carry/borrow-propagating byte op, or (with
// a recorded warning) a low-byte-only approximation for word operands —
// full multi-precision carry chaining is future work, not attempted here.
func (fg *fnGen) lowerArith(instr *il.Instr, flagOp, mnemonic string) {
	left, right := instr.Operands[0], instr.Operands[1]
	if typeWidth(instr.Result.Ty) > 1 {
		fg.g.warn("%s on word operands in %s computed low byte only", instr.Op, fg.fn.Name)
	}
	fg.loadA(left)
	fg.emitImplied(flagOp)
	fg.applyByteOp(mnemonic, right)
	fg.storeA(fg.homeLabel(*instr.Result))
}

func (fg *fnGen) lowerBitwise(instr *il.Instr, mnemonic string) {
	left, right := instr.Operands[0], instr.Operands[1]
	if typeWidth(instr.Result.Ty) > 1 {
		fg.g.warn("%s on word operands in %s computed low byte only", instr.Op, fg.fn.Name)
	}
	fg.loadA(left)
	fg.applyByteOp(mnemonic, right)
	fg.storeA(fg.homeLabel(*instr.Result))
}

// applyByteOp applies mnemonic (ADC/SBC/AND/ORA/EOR) with the already-
// loaded accumulator against right, whether right is an immediate,
// label-addressed, or register-homed value.
func (fg *fnGen) applyByteOp(mnemonic string, right il.Value) {
	label, imm, isImm := fg.valueLoc(right)
	if isImm {
		fg.emit(mnemonic, asmil.Immediate, imm, true)
		return
	}
	fg.emit(mnemonic, asmil.Absolute, labelOperand(label), true)
}

// lowerRuntimeCall routes an operation the 6502 has no direct
// instruction for through a small fixed-name support routine, the usual
// approach for soft multiply/divide on this target: arguments go into
// well-known rt.lhs/rt.rhs cells, the routine is JSR'd, and its result
// comes back in rt.result. The routine itself ships in a small runtime
// library outside this package's scope, the same way an unresolved
// library call is any other assembler's problem, not the compiler's.
func (fg *fnGen) lowerRuntimeCall(instr *il.Instr, routine string) {
	fg.g.warn("%s lowered to a call to runtime routine %s in %s", instr.Op, routine, fg.fn.Name)
	fg.loadA(instr.Operands[0])
	fg.storeA("rt.lhs")
	fg.loadA(instr.Operands[1])
	fg.storeA("rt.rhs")
	fg.emit("JSR", asmil.Absolute, labelOperand(routine), true)
	fg.loadA(il.Label{Name: "rt.result"})
	fg.storeA(fg.homeLabel(*instr.Result))
}

// lowerShift handles SHL/SHR for a compile-time constant shift count by
// unrolling that many ASL/LSR; a non-constant count falls back to a
// single shift with a recorded warning rather than emitting a runtime
// shift loop.
func (fg *fnGen) lowerShift(instr *il.Instr, mnemonic string) {
	left, right := instr.Operands[0], instr.Operands[1]
	fg.loadA(left)
	count := 1
	if c, ok := right.(il.Constant); ok {
		count = int(c.Val)
	} else {
		fg.g.warn("%s by a non-constant count in %s approximated as a single shift", instr.Op, fg.fn.Name)
	}
	for i := 0; i < count; i++ {
		fg.emit(mnemonic, asmil.Accumulator, asmil.Operand{}, false)
	}
	fg.storeA(fg.homeLabel(*instr.Result))
}

func (fg *fnGen) lowerComplement(instr *il.Instr) {
	fg.loadA(instr.Operands[0])
	fg.emit("EOR", asmil.Immediate, asmil.Operand{Value: 0xFF, HasValue: true}, true)
	fg.storeA(fg.homeLabel(*instr.Result))
}

func (fg *fnGen) lowerNegate(instr *il.Instr) {
	fg.loadA(instr.Operands[0])
	fg.emit("EOR", asmil.Immediate, asmil.Operand{Value: 0xFF, HasValue: true}, true)
	fg.emitImplied("CLC")
	fg.emit("ADC", asmil.Immediate, asmil.Operand{Value: 1, HasValue: true}, true)
	fg.storeA(fg.homeLabel(*instr.Result))
}

// lowerCompare lowers a CMP_* into the usual 6502 idiom for turning a
// flag test into a 0/1 value: compare, branch past a "load false" on the
// condition's complement, fall into "load true" otherwise. Ordered
// comparisons treat both operand types as unsigned, matching byte/word
// having no signed representation in the type system; word operands are
// compared on their low byte only, with a recorded warning, the same
// documented simplification as the arithmetic ops above.
func (fg *fnGen) lowerCompare(instr *il.Instr) {
	left, right := instr.Operands[0], instr.Operands[1]
	if typeWidth(left.Type()) > 1 || typeWidth(right.Type()) > 1 {
		fg.g.warn("%s on word operands in %s compared low byte only", instr.Op, fg.fn.Name)
	}

	fg.loadA(left)
	label, imm, isImm := fg.valueLoc(right)
	if isImm {
		fg.emit("CMP", asmil.Immediate, imm, true)
	} else {
		fg.emit("CMP", asmil.Absolute, labelOperand(label), true)
	}

	id := instr.ID
	trueLbl := fmt.Sprintf(".Lc%dt", id)
	doneLbl := fmt.Sprintf(".Lc%dd", id)

	switch instr.Op {
	case il.CMP_EQ:
		fg.emit("BEQ", asmil.Relative, labelOperand(trueLbl), true)
	case il.CMP_NE:
		fg.emit("BNE", asmil.Relative, labelOperand(trueLbl), true)
	case il.CMP_LT:
		fg.emit("BCC", asmil.Relative, labelOperand(trueLbl), true)
	case il.CMP_GE:
		fg.emit("BCS", asmil.Relative, labelOperand(trueLbl), true)
	case il.CMP_LE:
		fg.emit("BCC", asmil.Relative, labelOperand(trueLbl), true)
		fg.emit("BEQ", asmil.Relative, labelOperand(trueLbl), true)
	case il.CMP_GT:
		eqLbl := fmt.Sprintf(".Lc%dn", id)
		fg.emit("BEQ", asmil.Relative, labelOperand(eqLbl), true)
		fg.emit("BCS", asmil.Relative, labelOperand(trueLbl), true)
		fg.out(&asmil.Label{Name: eqLbl, Kind: asmil.LabelTemp})
	}

	fg.emit("LDA", asmil.Immediate, asmil.Operand{Value: 0, HasValue: true}, true)
	fg.emit("JMP", asmil.Absolute, labelOperand(doneLbl), true)
	fg.out(&asmil.Label{Name: trueLbl, Kind: asmil.LabelTemp})
	fg.emit("LDA", asmil.Immediate, asmil.Operand{Value: 1, HasValue: true}, true)
	fg.out(&asmil.Label{Name: doneLbl, Kind: asmil.LabelTemp})
	fg.storeA(fg.homeLabel(*instr.Result))
}

func (fg *fnGen) lowerBranch(b *il.Block, instr *il.Instr) {
	target := fg.branchTargetLabel(b.ID, instr.Target)
	fg.emit("JMP", asmil.Absolute, labelOperand(target), true)
}

// lowerConditionalBranch lowers BRANCH_IF_TRUE/BRANCH_IF_FALSE: load the
// condition, test it against zero, and branch to whichever successor
// the condition selects (through an edge thunk when that edge owes phi
// copies), falling through to an unconditional jump to the other one.
func (fg *fnGen) lowerConditionalBranch(b *il.Block, instr *il.Instr, branchWhenTrue bool) {
	fg.loadA(instr.Operands[0])
	fg.emit("CMP", asmil.Immediate, asmil.Operand{Value: 0, HasValue: true}, true)

	takenLabel := fg.branchTargetLabel(b.ID, instr.Target)
	otherLabel := fg.branchTargetLabel(b.ID, instr.Target2)

	mnemonic := "BNE"
	if !branchWhenTrue {
		mnemonic = "BEQ"
	}
	fg.emit(mnemonic, asmil.Relative, labelOperand(takenLabel), true)
	fg.emit("JMP", asmil.Absolute, labelOperand(otherLabel), true)
}

// lowerCall passes each argument through the callee's fixed argN slot,
// JSRs to its call-graph-qualified label, and (for CALL) copies the
// return value straight out of A/X into the result register's home —
// spec.md §4.8's "RETURN emits RTS after loading the return value into
// A (+X for word)" makes A:X the calling convention's return channel, so
// no dedicated per-function return slot is needed.
func (fg *fnGen) lowerCall(instr *il.Instr, hasResult bool) {
	for i, arg := range instr.Operands {
		dest := paramLabel(instr.Callee, i)
		fg.loadValue(arg)
		if typeWidth(arg.Type()) > 1 {
			fg.storeAX(dest)
		} else {
			fg.storeA(dest)
		}
	}

	fg.emit("JSR", asmil.Absolute, labelOperand(instr.Callee), true)

	if hasResult && instr.Result != nil {
		fg.storeResult(*instr.Result)
	}
}

// lowerLoadMem handles both the 1-operand (scalar) and extended
// 2-operand (indexed) forms (DESIGN.md documents the extension). A
// compile-time address (a label, or a global/local array/pointer known
// at this call site) is addressed directly; a runtime pointer value is
// routed through the shared indirection cell.
func (fg *fnGen) lowerLoadMem(instr *il.Instr) {
	base := instr.Operands[0]
	wide := typeWidth(instr.Result.Ty) > 1

	if len(instr.Operands) == 1 {
		addr, runtime := addressOperand(base)
		if runtime {
			fg.loadAddressIntoPtr(base)
			fg.loadIndirect(0, wide)
		} else {
			fg.emit("LDA", asmil.Absolute, addr, true)
			if wide {
				fg.emit("LDX", asmil.Absolute, hiAddr(addr), true)
			}
		}
		fg.storeResult(*instr.Result)
		return
	}

	idx := instr.Operands[1]
	addr, runtime := addressOperand(base)
	if runtime {
		if wide {
			fg.g.warn("indexed load of a word-element array through a pointer in %s does not scale the index by the element width", fg.fn.Name)
		}
		fg.loadAddressIntoPtr(base)
		fg.loadIndexedY(idx, wide)
	} else {
		if wide {
			fg.g.warn("indexed load of a word-element array in %s approximated as byte-width", fg.fn.Name)
		}
		fg.loadIndexedX(addr, idx, wide)
	}
	fg.storeResult(*instr.Result)
}

func (fg *fnGen) lowerStoreMem(instr *il.Instr) {
	if len(instr.Operands) == 2 {
		base, val := instr.Operands[0], instr.Operands[1]
		wide := typeWidth(val.Type()) > 1
		addr, runtime := addressOperand(base)
		if runtime {
			fg.loadAddressIntoPtr(base)
			fg.loadValue(val)
			fg.storeIndirectY(0, wide)
			return
		}
		fg.loadValue(val)
		fg.emit("STA", asmil.Absolute, addr, true)
		if wide {
			fg.emit("STX", asmil.Absolute, hiAddr(addr), true)
		}
		return
	}

	base, idx, val := instr.Operands[0], instr.Operands[1], instr.Operands[2]
	wide := typeWidth(val.Type()) > 1
	addr, runtime := addressOperand(base)
	if runtime {
		fg.loadAddressIntoPtr(base)
		fg.loadValue(val)
		fg.storeIndexedY(idx, wide)
		return
	}
	if wide {
		fg.g.warn("indexed store of a word-element array in %s approximated as byte-width", fg.fn.Name)
	}
	fg.loadValue(val)
	fg.storeIndexedX(addr, idx, wide)
}

func (fg *fnGen) lowerHWRead(instr *il.Instr) {
	addr := instr.Operands[0]
	a, runtime := addressOperand(addr)
	if runtime {
		fg.loadAddressIntoPtr(addr)
		fg.loadIndirect(0, false)
	} else {
		fg.emit("LDA", asmil.Absolute, a, true)
	}
	fg.storeResult(*instr.Result)
}

func (fg *fnGen) lowerHWWrite(instr *il.Instr) {
	addr, val := instr.Operands[0], instr.Operands[1]
	a, runtime := addressOperand(addr)
	if runtime {
		fg.loadAddressIntoPtr(addr)
		fg.loadValue(val)
		fg.storeIndirectY(0, false)
	} else {
		fg.loadValue(val)
		fg.emit("STA", asmil.Absolute, a, true)
	}
}

func hiAddr(op asmil.Operand) asmil.Operand {
	if op.Label != "" {
		return labelOperand(hiByte(op.Label))
	}
	return asmil.Operand{Value: op.Value + 1, HasValue: true}
}

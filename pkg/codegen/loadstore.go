package codegen

import (
	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
)

// ptrLabel names the one shared zero-page-resident pointer this package
// routes every runtime-computed address through (a pointer value held in
// a register rather than known at compile time): STORE_MEM/LOAD_MEM/
// HW_READ/HW_WRITE on such an address first park it here, then use
// indirect-indexed addressing off of it. The static frame allocator
// assigns ptrLabel/ptrLabel+1 a page-zero home like any other symbol it
// sees referenced.
const ptrLabel = "rt.ptr"

// mkInstr builds an Instruction item and folds its estimated byte count
// into the running code-size total; cycle counts are left at zero since
// nothing downstream depends on them yet.
func (fg *fnGen) mkInstr(mnemonic string, mode asmil.AddressingMode, operand asmil.Operand, hasOperand bool) *asmil.Instruction {
	ins := &asmil.Instruction{Mnemonic: mnemonic, Mode: mode, Operand: operand, HasOperand: hasOperand, Bytes: instrBytes(mode, hasOperand)}
	fg.g.stats.CodeSize += ins.Bytes
	return ins
}

func (fg *fnGen) emit(mnemonic string, mode asmil.AddressingMode, operand asmil.Operand, hasOperand bool) {
	fg.out(fg.mkInstr(mnemonic, mode, operand, hasOperand))
}

// out appends an item either to the module's item stream directly, or
// (while branchTargetLabel is assembling an edge thunk's body) to the
// thunk's own buffer instead, so flat state machine code like
// loadValue/storeA can be reused to build a thunk's body without any
// special-casing of its own.
func (fg *fnGen) out(item asmil.Item) {
	if fg.redirect != nil {
		*fg.redirect = append(*fg.redirect, item)
		return
	}
	fg.g.emit(item)
}

func (fg *fnGen) emitImplied(mnemonic string) {
	fg.emit(mnemonic, asmil.Implied, asmil.Operand{}, false)
}

// loadA loads a byte value into the accumulator.
func (fg *fnGen) loadA(v il.Value) {
	label, imm, isImm := fg.valueLoc(v)
	if isImm {
		fg.emit("LDA", asmil.Immediate, imm, true)
		return
	}
	fg.emit("LDA", asmil.Absolute, labelOperand(label), true)
}

// loadAX loads a word value's low byte into A and high byte into X.
func (fg *fnGen) loadAX(v il.Value) {
	label, imm, isImm := fg.valueLoc(v)
	if isImm {
		lo := asmil.Operand{Value: imm.Value & 0xFF, HasValue: true}
		hi := asmil.Operand{Value: imm.Value >> 8, HasValue: true}
		fg.emit("LDA", asmil.Immediate, lo, true)
		fg.emit("LDX", asmil.Immediate, hi, true)
		return
	}
	fg.emit("LDA", asmil.Absolute, labelOperand(label), true)
	fg.emit("LDX", asmil.Absolute, labelOperand(hiByte(label)), true)
}

// loadValue loads v into A, or A:X when it is word-wide.
func (fg *fnGen) loadValue(v il.Value) {
	if valueWidth(v) == 2 {
		fg.loadAX(v)
	} else {
		fg.loadA(v)
	}
}

// storeA stores the accumulator into a byte-wide destination.
func (fg *fnGen) storeA(dest string) {
	fg.emit("STA", asmil.Absolute, labelOperand(dest), true)
}

// storeAX stores A:X into a word-wide destination.
func (fg *fnGen) storeAX(dest string) {
	fg.emit("STA", asmil.Absolute, labelOperand(dest), true)
	fg.emit("STX", asmil.Absolute, labelOperand(hiByte(dest)), true)
}

// storeResult stores A (or A:X) into the fixed home of reg.
func (fg *fnGen) storeResult(reg il.VirtualRegister) {
	dest := fg.homeLabel(reg)
	if reg.Ty != nil && reg.Ty.Size() > 1 {
		fg.storeAX(dest)
	} else {
		fg.storeA(dest)
	}
}

// loadAddressIntoPtr parks a runtime-computed address (a pointer value
// living in a register) into the shared rt.ptr cell ahead of an
// indirect-indexed access.
func (fg *fnGen) loadAddressIntoPtr(v il.Value) {
	fg.loadAX(v)
	fg.storeAX(ptrLabel)
}

func (fg *fnGen) loadY(v il.Value) {
	label, imm, isImm := fg.valueLoc(v)
	if isImm {
		fg.emit("LDY", asmil.Immediate, imm, true)
		return
	}
	fg.emit("LDY", asmil.Absolute, labelOperand(label), true)
}

func (fg *fnGen) loadX(v il.Value) {
	label, imm, isImm := fg.valueLoc(v)
	if isImm {
		fg.emit("LDX", asmil.Immediate, imm, true)
		return
	}
	fg.emit("LDX", asmil.Absolute, labelOperand(label), true)
}

// loadIndirect loads through the shared rt.ptr cell at a fixed offset
// (LOAD_MEM's scalar form, or a HW_READ at a runtime address). A's and
// X's halves of a word result are staged through the stack since the
// 6502 has no indirect-indexed addressing mode for X.
func (fg *fnGen) loadIndirect(yOffset uint16, wide bool) {
	fg.emit("LDY", asmil.Immediate, asmil.Operand{Value: yOffset, HasValue: true}, true)
	fg.emit("LDA", asmil.IndirectY, labelOperand(ptrLabel), true)
	if !wide {
		return
	}
	fg.emitImplied("PHA")
	fg.emit("LDY", asmil.Immediate, asmil.Operand{Value: yOffset + 1, HasValue: true}, true)
	fg.emit("LDA", asmil.IndirectY, labelOperand(ptrLabel), true)
	fg.emitImplied("TAX")
	fg.emitImplied("PLA")
}

// loadIndexedY loads through rt.ptr at a runtime index (LOAD_MEM's
// indexed form over a pointer-typed base). Word-element arrays accessed
// this way are a documented gap (lowerLoadMem warns); only the byte
// path here is exercised.
func (fg *fnGen) loadIndexedY(idx il.Value, wide bool) {
	fg.loadY(idx)
	fg.emit("LDA", asmil.IndirectY, labelOperand(ptrLabel), true)
	if !wide {
		return
	}
	fg.emitImplied("PHA")
	fg.emitImplied("INY")
	fg.emit("LDA", asmil.IndirectY, labelOperand(ptrLabel), true)
	fg.emitImplied("TAX")
	fg.emitImplied("PLA")
}

// loadIndexedX loads a compile-time-addressed array element by a
// runtime index (LOAD_MEM's indexed form over a label base): X carries
// the index directly, so this only covers byte-element arrays; a
// word-element array indexed this way is flagged by the caller.
func (fg *fnGen) loadIndexedX(addr asmil.Operand, idx il.Value, wide bool) {
	fg.loadX(idx)
	fg.emit("LDA", asmil.AbsoluteX, addr, true)
	_ = wide
}

func (fg *fnGen) storeIndirectY(yOffset uint16, wide bool) {
	fg.emit("LDY", asmil.Immediate, asmil.Operand{Value: yOffset, HasValue: true}, true)
	fg.emit("STA", asmil.IndirectY, labelOperand(ptrLabel), true)
	if !wide {
		return
	}
	fg.emitImplied("TXA")
	fg.emit("LDY", asmil.Immediate, asmil.Operand{Value: yOffset + 1, HasValue: true}, true)
	fg.emit("STA", asmil.IndirectY, labelOperand(ptrLabel), true)
}

func (fg *fnGen) storeIndexedY(idx il.Value, wide bool) {
	fg.loadY(idx)
	fg.emit("STA", asmil.IndirectY, labelOperand(ptrLabel), true)
	if !wide {
		return
	}
	fg.emitImplied("TXA")
	fg.emitImplied("INY")
	fg.emit("STA", asmil.IndirectY, labelOperand(ptrLabel), true)
}

func (fg *fnGen) storeIndexedX(addr asmil.Operand, idx il.Value, wide bool) {
	fg.loadX(idx)
	fg.emit("STA", asmil.AbsoluteX, addr, true)
	_ = wide
}

// instrBytes estimates an instruction's encoded length from its
// addressing mode, for the code_size statistic spec.md §4.8 requires.
func instrBytes(mode asmil.AddressingMode, hasOperand bool) int {
	if !hasOperand {
		return 1
	}
	switch mode {
	case asmil.Implied, asmil.Accumulator:
		return 1
	case asmil.Absolute, asmil.AbsoluteX, asmil.AbsoluteY, asmil.Indirect:
		return 3
	default:
		return 2
	}
}

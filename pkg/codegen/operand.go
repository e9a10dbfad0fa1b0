package codegen

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
)

// regLabel names the fixed symbolic home of a virtual register: every
// register and parameter lives at one address for the whole function (spec.md §4.9 — no recursion means no stack frames).
// The register's own Name (when pkg/ilgen gave it one, e.g. a loop-
// carried phi or a plain local) is folded into the label purely so a
// VICE debug-label export (pkg/emit/labels.go) reads naturally; the
// register id keeps every label unique regardless of name collisions or
// empty names.
func regLabel(fn *il.Function, reg il.VirtualRegister) string {
	name := reg.Name
	if name == "" {
		name = "t"
	}
	return fmt.Sprintf("%s.%s%d", fn.Name, name, reg.ID)
}

// homeLabel resolves a virtual register's fixed symbolic home, routing a
// parameter register to its caller-visible argN slot rather than minting
// a second, redundant temporary for it.
func (fg *fnGen) homeLabel(reg il.VirtualRegister) string {
	if idx, ok := fg.paramIdx[reg.ID]; ok {
		return paramLabel(fg.fn.Name, idx)
	}
	return regLabel(fg.fn, reg)
}

// paramLabel names the incoming-argument slot for a function's i'th
// parameter: the caller stores directly here before JSR, so no copy is
// needed between "the argument" and "the parameter's own register."
func paramLabel(calleeName string, index int) string {
	return fmt.Sprintf("%s.arg%d", calleeName, index)
}

func labelOperand(name string) asmil.Operand {
	return asmil.Operand{Label: name}
}

func immediateOperand(v uint64) asmil.Operand {
	return asmil.Operand{Value: uint16(v), HasValue: true}
}

// valueWidth reports how many bytes a value occupies, used to decide
// whether a load/store needs a second (high-byte) instruction pair.
func valueWidth(v il.Value) int {
	sz := v.Type().Size()
	if sz <= 1 {
		return 1
	}
	return 2
}

// valueLoc resolves where a value currently lives: a constant is an
// immediate, a label is a direct symbolic address (a function or a
// global array/scalar), and a virtual register is its own fixed home
// slot.
func (fg *fnGen) valueLoc(v il.Value) (label string, imm asmil.Operand, isImmediate bool) {
	switch val := v.(type) {
	case il.Constant:
		return "", immediateOperand(val.Val), true
	case il.Label:
		return val.Name, asmil.Operand{}, false
	case il.VirtualRegister:
		return fg.homeLabel(val), asmil.Operand{}, false
	default:
		return "", asmil.Operand{}, false
	}
}

// hiByte renders the address expression for the byte following label in
// memory (a word value's high byte, or an array element's second byte),
// leaning on ACME's ordinary `label+1` constant-folding rather than
// minting a second symbol per word-wide storage cell.
func hiByte(label string) string { return label + "+1" }

// addressOperand resolves a value used as a memory address: a constant
// is a literal numeric address, a label is a compile-time symbol, and
// anything else (a pointer value living in a register) has no operand
// representable here at all — the caller must route through the shared
// indirection pointer instead (loadstore.go).
func addressOperand(v il.Value) (op asmil.Operand, isRuntime bool) {
	switch val := v.(type) {
	case il.Constant:
		return asmil.Operand{Value: uint16(val.Val), HasValue: true}, false
	case il.Label:
		return asmil.Operand{Label: val.Name}, false
	default:
		return asmil.Operand{}, true
	}
}

package acme

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/asmil"
)

// Parse reads ACME-compatible assembly text and resolves it into a
// Program: every label and equate bound to a concrete address/value, and
// every instruction/data directive's operand substituted accordingly.
//
// Mirrors only the addressing-mode surface pkg/emit actually produces:
// zero-page encodings are never emitted by pkg/codegen (it always picks
// the absolute-width form for a memory operand, since it cannot yet know
// a symbol's final address), so this reader does not attempt to infer a
// shorter encoding either — the same documented simplification
// pkg/codegen's own Stats.CodeSize estimate already relies on. The
// conditional branches codegen emits are read back as 2-byte relative
// instructions.
func Parse(src string) (*Program, error) {
	stmts, err := parseStatements(src)
	if err != nil {
		return nil, err
	}

	labels, equates, err := layout(stmts)
	if err != nil {
		return nil, err
	}

	symbols := map[string]uint16{}
	for k, v := range labels {
		symbols[k] = v
	}
	for k, v := range equates {
		symbols[k] = v
	}

	prog := &Program{Labels: symbols}
	pc := uint16(0)
	for _, s := range stmts {
		switch st := s.(type) {
		case *originStmt:
			prog.Origin, pc = st.addr, st.addr
		case *equateStmt, *labelStmt:
			// already folded into symbols
		case *insnStmt:
			ins := Instruction{Address: pc, Mnemonic: st.mnemonic, Mode: st.mode, HasOperand: st.hasOperand}
			if st.hasOperand {
				v, err := resolveOperand(st.operand, symbols)
				if err != nil {
					return nil, err
				}
				ins.Value = v
			}
			prog.Instructions = append(prog.Instructions, ins)
			pc += uint16(instrBytes(st.mode, st.hasOperand))
		case *dataStmt:
			bytes := expandData(st)
			prog.Data = append(prog.Data, Data{Address: pc, Bytes: bytes})
			pc += uint16(len(bytes))
		}
	}
	return prog, nil
}

// layout is pass one: walk the statement list purely to fix every label's
// address and every equate's value, using the same syntactic instruction
// sizing pass two (and pkg/codegen) uses, so a label referenced before
// its own definition resolves correctly.
func layout(stmts []stmt) (labels, equates map[string]uint16, err error) {
	labels = map[string]uint16{}
	equates = map[string]uint16{}
	pc := uint16(0)
	for _, s := range stmts {
		switch st := s.(type) {
		case *originStmt:
			pc = st.addr
		case *equateStmt:
			equates[st.name] = st.val
		case *labelStmt:
			if _, dup := labels[st.name]; dup {
				return nil, nil, fmt.Errorf("duplicate label %q", st.name)
			}
			labels[st.name] = pc
		case *insnStmt:
			pc += uint16(instrBytes(st.mode, st.hasOperand))
		case *dataStmt:
			pc += uint16(len(expandData(st)))
		}
	}
	return labels, equates, nil
}

func resolveOperand(op operand, symbols map[string]uint16) (uint16, error) {
	if op.hasLiteral {
		return op.value, nil
	}
	addr, ok := symbols[op.label]
	if !ok {
		return 0, fmt.Errorf("undefined symbol %q", op.label)
	}
	if op.hiByte {
		return addr + 1, nil
	}
	return addr, nil
}

func expandData(st *dataStmt) []uint8 {
	switch st.kind {
	case asmil.DataByte:
		return st.bytes
	case asmil.DataWord:
		out := make([]uint8, 0, 2*len(st.words))
		for _, w := range st.words {
			out = append(out, uint8(w&0xFF), uint8(w>>8))
		}
		return out
	case asmil.DataText:
		return []byte(st.text)
	case asmil.DataFill:
		out := make([]uint8, st.count)
		for i := range out {
			out[i] = st.value
		}
		return out
	default:
		return nil
	}
}

// instrBytes mirrors pkg/codegen's own addressing-mode-to-length table
// (the two packages estimate the same thing from opposite ends: codegen
// while emitting, this package while re-reading).
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

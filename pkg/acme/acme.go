// Package acme parses ACME-compatible 6502 assembly text back into a
// resolved instruction/address stream (spec.md §8's round-trip property:
// "emitting an ASM-IL module ... and re-parsing it with an ACME parser
// yields the same set of instructions and addresses"). It is a read-back
// verifier, not a general-purpose assembler: it supports exactly the
// directive and addressing-mode surface pkg/emit produces (`* = $hhhh`,
// `name = $hhhh`, plain/local/exported labels, `!byte`/`!word`/`!text`/
// `!fill`, and the thirteen 6502 addressing-mode spellings), laid out in
// the usual two-pass shape: a first pass fixes every label's address from
// syntactic instruction lengths alone, a second substitutes those
// addresses into every operand.
//
// Grounded on the teacher's pkg/asm/assembler package (kept as reference
// under _examples): a lex-then-parse pipeline feeding a linker that binds
// label names to program-counter values across a two-pass resolution,
// the same shape this package uses, rewritten end to end against 6502/
// ACME syntax rather than the teacher's own macro-assembly surface (which
// has no addressing modes, buses, or byte-width opcodes to parse).
package acme

import "github.com/blend65/blend65c/pkg/asmil"

// Instruction is one resolved instruction: its final address, the
// mnemonic and addressing mode as written, and the operand's resolved
// numeric value (a label's address/equate value, or a literal).
type Instruction struct {
	Address    uint16
	Mnemonic   string
	Mode       asmil.AddressingMode
	HasOperand bool
	Value      uint16
}

// Data is one resolved data directive's bytes, expanded to their final
// on-disk form (a !fill is expanded to its repeated byte, !word to its
// little-endian byte pairs) so a round-trip check can compare raw bytes
// directly against the compiler's own asmil.Data items.
type Data struct {
	Address uint16
	Bytes   []uint8
}

// Program is the fully resolved result of parsing one ACME source file.
type Program struct {
	Origin       uint16
	Instructions []Instruction
	Data         []Data
	Labels       map[string]uint16
}

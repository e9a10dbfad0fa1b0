// Package asmil defines the typed 6502 assembly representation the code
// generator builds from an IL module and the optimizer's peephole passes
// mutate in place (spec.md §3, §4.8): an ordered sequence of Items, each
// one of a small closed set of shapes (Origin, Label, Instruction, Data,
// Comment, BlankLine, Raw). The emitter (pkg/emit) walks this sequence
// once, read-only, to produce ACME-compatible text.
//
// Grounded on pkg/il's own Value/Instr sum-type shape (kept consistent
// style across both of the compiler's typed IRs); pkg/asm/assembler (kept
// as reference) shows the target text's own surface grammar, which this
// package's Item set is sized to cover exactly.
package asmil

import "github.com/blend65/blend65c/pkg/source"

// Item is any element of an ASM-IL module's ordered item sequence.
type Item interface {
	isItem()
}

// Origin sets the assembly location counter (`*= $hhhh` in ACME text).
type Origin struct {
	Address uint16
}

func (*Origin) isItem() {}

// Equate binds a symbolic name to a fixed numeric value without
// advancing the assembly location counter (`name = $hhhh` in ACME text).
// The static frame allocator emits one per frame slot and zero-page
// variable it assigns an address to; instructions elsewhere in the
// module reference the same name as an Operand.Label rather than a
// resolved numeric address, letting the assembler itself do the final
// substitution.
type Equate struct {
	Name    string
	Value   uint16
	Comment string
}

func (*Equate) isItem() {}

// LabelKind distinguishes why a label exists, which governs how the
// emitter formats it (spec.md §4.10: exported labels prefixed `+`,
// block/temp labels prefixed `.`).
type LabelKind uint8

const (
	LabelFunction LabelKind = iota
	LabelBlock
	LabelTemp
	LabelExported
)

// Label names the current assembly location.
type Label struct {
	Name string
	Kind LabelKind
	Span source.Span
}

func (*Label) isItem() {}

// AddressingMode is a 6502 operand addressing mode (spec.md §3).
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
	Relative
)

// Operand is an instruction's single operand, when it has one. Value is
// either a resolved numeric address/immediate (once the SFA has run) or,
// before that, a symbolic reference by label name.
type Operand struct {
	Label string // non-empty: an unresolved reference to a label/equate
	Value uint16 // meaningful when Label == ""
	HasValue bool
}

// Instruction is one 6502 machine instruction.
type Instruction struct {
	Mnemonic string
	Mode     AddressingMode
	Operand  Operand
	HasOperand bool
	Cycles   int
	Bytes    int
	Comment  string
	Span     source.Span
}

func (*Instruction) isItem() {}

// DataKind selects which variant of Data is populated.
type DataKind uint8

const (
	DataByte DataKind = iota
	DataWord
	DataText
	DataFill
)

// Data is a data directive (spec.md §3): a run of bytes, a run of
// little-endian words, a text literal, or a fill of count copies of
// value. Exactly the fields matching Kind are meaningful.
type Data struct {
	Kind    DataKind
	Bytes   []uint8
	Words   []uint16
	Text    string
	Count   int
	Value   uint8
	Comment string
}

func (*Data) isItem() {}

// CommentStyle distinguishes a comment generated by the compiler from one
// a human would write, purely for the emitter's formatting choices.
type CommentStyle uint8

const (
	CommentLine CommentStyle = iota
	CommentTrailing
)

// Comment is a standalone comment item.
type Comment struct {
	Text  string
	Style CommentStyle
}

func (*Comment) isItem() {}

// BlankLine is an intentional blank line, used to separate function
// prologues from their bodies and similar visual grouping.
type BlankLine struct{}

func (*BlankLine) isItem() {}

// Raw is an escape hatch for verbatim text the rest of the model has no
// shape for (spec.md §3); used sparingly.
type Raw struct {
	Text string
}

func (*Raw) isItem() {}

// Module is one compiled file's worth of ASM-IL: its items in emission
// order, plus the code-generation statistics spec.md §4.8 requires the
// code generator to record.
type Module struct {
	Name  string
	Items []Item
	Stats Stats
}

// Stats is the (code_size, data_size, zp_bytes_used, function_count,
// global_count, total_size) tuple spec.md §4.8 names, plus the warnings
// the code generator collects for unsupported instructions along the way.
type Stats struct {
	CodeSize      int
	DataSize      int
	ZPBytesUsed   int
	FunctionCount int
	GlobalCount   int
	TotalSize     int
	Warnings      []Warning
}

// Warning is a non-fatal code-generation note (e.g. an IL shape the
// generator had to approximate), carried with an optional source span.
type Warning struct {
	Message string
	Span    source.Span
}

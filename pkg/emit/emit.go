// Package emit serializes an ASM-IL module into ACME-compatible text
// (spec.md §4.10): the last pipeline stage, and the one pkg/acme's
// round-trip property is checked against.
//
// Grounded on pkg/asmil's own Item set (sized, per its package doc, to
// cover exactly the surface pkg/asm/assembler's lexer/parser recognize
// for the reverse direction) and spec.md §4.10's enumerated formatting
// rules; the emitter itself is new work, since nothing in the pack
// serializes a typed IR *out* to 6502 assembly text — the teacher only
// ever reads assembly in.
package emit

import (
	"fmt"
	"strings"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/config"
)

// Result is the emitter's output (spec.md §4.10: "(text, line_count,
// total_bytes, line_number -> source_span map)").
type Result struct {
	Text       string
	LineCount  int
	TotalBytes int
	LineSpans  map[int]string // line number -> span string, when cfg.SourceMap
}

// Emit renders mod as ACME-compatible text under cfg's formatting
// options.
func Emit(mod *asmil.Module, cfg config.Config) *Result {
	e := &emitter{cfg: cfg, lineSpans: map[int]string{}}
	if cfg.BasicStub {
		e.writeBasicStub(cfg.LoadAddress)
	}
	for _, item := range mod.Items {
		e.item(item)
	}
	text := e.buf.String()
	nl := "\n"
	if cfg.CRLF {
		nl = "\r\n"
		text = strings.ReplaceAll(text, "\n", nl)
	}
	return &Result{
		Text:       text,
		LineCount:  e.line,
		TotalBytes: mod.Stats.TotalSize,
		LineSpans:  e.lineSpans,
	}
}

type emitter struct {
	cfg       config.Config
	buf       strings.Builder
	line      int
	lineSpans map[int]string
}

func (e *emitter) writeln(s string) {
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
	e.line++
}

// writeBasicStub prepends the synthetic `10 SYS <ml_start>` BASIC line at
// $0801 before switching the location counter to the real machine-code
// origin (spec.md §4.10): a tokenized line (next-line pointer, line
// number 10, the SYS token, a space, the decimal ml_start as PETSCII
// digits, and the line's $00 terminator) followed by the $00 $00
// end-of-program marker — 13 bytes for a four-digit ml_start, the
// standard "10 SYS <addr>" stub every C64 cross-assembler prepends ahead
// of raw machine code.
func (e *emitter) writeBasicStub(mlStart uint16) {
	digits := fmt.Sprintf("%d", mlStart)
	linkAddr := 0x0801 + 7 + len(digits) // pointer, line number, SYS, space, digits, $00
	e.writeln("* = $0801")
	e.writeln(fmt.Sprintf("!byte %s,%s,$0A,$00,$9E,$20", e.hexByte(uint8(linkAddr&0xFF)), e.hexByte(uint8(linkAddr>>8))))
	e.writeln(fmt.Sprintf("!text %q", digits))
	e.writeln("!byte $00,$00,$00")
	e.writeln("* = " + e.hex(mlStart))
}

func (e *emitter) item(it asmil.Item) {
	switch v := it.(type) {
	case *asmil.Origin:
		e.writeln("* = " + e.hex(v.Address))
	case *asmil.Equate:
		line := fmt.Sprintf("%s = %s", v.Name, e.hex(v.Value))
		if e.cfg.IncludeComments && v.Comment != "" {
			line += " ; " + v.Comment
		}
		e.writeln(line)
	case *asmil.Label:
		e.writeln(e.labelText(v) + ":")
	case *asmil.Instruction:
		e.instruction(v)
	case *asmil.Data:
		e.data(v)
	case *asmil.Comment:
		if e.cfg.IncludeComments {
			e.writeln("; " + v.Text)
		}
	case *asmil.BlankLine:
		if e.cfg.IncludeBlankLines {
			e.writeln("")
		}
	case *asmil.Raw:
		e.writeln(v.Text)
	}
}

// labelText applies spec.md §4.10's label-prefix convention: exported
// labels get `+`, block/temp labels get `.` unless already dotted
// (qualified names like "m.main.loop" already read as ACME local-zone
// labels on their own).
func (e *emitter) labelText(l *asmil.Label) string {
	switch l.Kind {
	case asmil.LabelExported:
		if strings.HasPrefix(l.Name, "+") {
			return l.Name
		}
		return "+" + l.Name
	case asmil.LabelBlock, asmil.LabelTemp:
		if strings.HasPrefix(l.Name, ".") {
			return l.Name
		}
		return "." + l.Name
	default:
		return l.Name
	}
}

func (e *emitter) indent() string {
	if e.cfg.IndentWidth <= 0 {
		return "\t"
	}
	return strings.Repeat(" ", e.cfg.IndentWidth)
}

func (e *emitter) mnemonic(m string) string {
	if e.cfg.UppercaseMnemonics {
		return strings.ToUpper(m)
	}
	return strings.ToLower(m)
}

func (e *emitter) instruction(ins *asmil.Instruction) {
	line := e.indent() + e.mnemonic(ins.Mnemonic)
	if ins.HasOperand {
		line += " " + e.operandText(ins)
	}
	if e.cfg.IncludeCycleCounts {
		line += fmt.Sprintf(" ; %db %dc", ins.Bytes, ins.Cycles)
	} else if e.cfg.IncludeComments && ins.Comment != "" {
		line += " ; " + ins.Comment
	}
	e.writeln(line)
}

func (e *emitter) operandText(ins *asmil.Instruction) string {
	val := e.operandValue(ins.Operand)
	switch ins.Mode {
	case asmil.Accumulator:
		return "A"
	case asmil.Immediate:
		return "#" + val
	case asmil.ZeroPage, asmil.Absolute:
		return val
	case asmil.ZeroPageX, asmil.AbsoluteX:
		return val + ",X"
	case asmil.ZeroPageY, asmil.AbsoluteY:
		return val + ",Y"
	case asmil.Indirect:
		return "(" + val + ")"
	case asmil.IndirectX:
		return "(" + val + ",X)"
	case asmil.IndirectY:
		return "(" + val + "),Y"
	case asmil.Relative:
		return val
	default:
		return val
	}
}

func (e *emitter) operandValue(op asmil.Operand) string {
	if op.Label != "" {
		return op.Label
	}
	return e.hex(op.Value)
}

func (e *emitter) hex(v uint16) string {
	if e.cfg.HexPrefixZero {
		return fmt.Sprintf("0x%04X", v)
	}
	return fmt.Sprintf("$%04X", v)
}

func (e *emitter) data(d *asmil.Data) {
	switch d.Kind {
	case asmil.DataByte:
		parts := make([]string, len(d.Bytes))
		for i, b := range d.Bytes {
			parts[i] = e.hexByte(b)
		}
		e.writeln(e.indent() + "!byte " + strings.Join(parts, ","))
	case asmil.DataWord:
		parts := make([]string, len(d.Words))
		for i, w := range d.Words {
			parts[i] = e.hex(w)
		}
		e.writeln(e.indent() + "!word " + strings.Join(parts, ","))
	case asmil.DataText:
		e.writeln(e.indent() + fmt.Sprintf("!text %q", d.Text))
	case asmil.DataFill:
		e.writeln(e.indent() + fmt.Sprintf("!fill %d,%s", d.Count, e.hexByte(d.Value)))
	}
}

func (e *emitter) hexByte(b uint8) string {
	if e.cfg.HexPrefixZero {
		return fmt.Sprintf("0x%02X", b)
	}
	return fmt.Sprintf("$%02X", b)
}

package acme

import "testing"

func TestParseResolvesForwardLabelReference(t *testing.T) {
	src := `* = $0810
m.counter = $0002
m.main:
	JMP m.main.loop
m.main.loop:
	LDA m.counter
	STA m.counter
	JMP m.main.loop
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prog.Origin != 0x0810 {
		t.Fatalf("expected origin 0x0810, got %#x", prog.Origin)
	}
	if got, want := prog.Labels["m.main"], uint16(0x0810); got != want {
		t.Fatalf("m.main label: got %#x want %#x", got, want)
	}
	if got, want := prog.Labels["m.main.loop"], uint16(0x0813); got != want {
		t.Fatalf("m.main.loop label: got %#x want %#x", got, want)
	}
	if len(prog.Instructions) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(prog.Instructions))
	}
	first := prog.Instructions[0]
	if first.Value != 0x0813 {
		t.Fatalf("forward JMP target: got %#x want 0x0813 (resolved before its label was seen)", first.Value)
	}
}

func TestParseResolvesEquatesAndWordHiByte(t *testing.T) {
	src := `* = $0810
m.add.t3 = $0002
LDA #$05
STA m.add.t3
LDA m.add.t3+1
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := prog.Labels["m.add.t3"], uint16(0x0002); got != want {
		t.Fatalf("equate: got %#x want %#x", got, want)
	}
	last := prog.Instructions[len(prog.Instructions)-1]
	if last.Value != 0x0003 {
		t.Fatalf("hi-byte operand: got %#x want 0x0003", last.Value)
	}
}

func TestParseExpandsDataDirectives(t *testing.T) {
	src := `* = $0810
m.buf:
	!byte $01,$02,$03
	!fill 2,$00
	!word $1234
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(prog.Data) != 3 {
		t.Fatalf("expected 3 data items, got %d", len(prog.Data))
	}
	if got := prog.Data[0].Bytes; len(got) != 3 || got[2] != 3 {
		t.Fatalf("unexpected !byte expansion: %#v", got)
	}
	if got := prog.Data[1].Bytes; len(got) != 2 || got[0] != 0 || got[1] != 0 {
		t.Fatalf("unexpected !fill expansion: %#v", got)
	}
	if got := prog.Data[2].Bytes; len(got) != 2 || got[0] != 0x34 || got[1] != 0x12 {
		t.Fatalf("unexpected !word expansion (little-endian): %#v", got)
	}
}

func TestParseRejectsUndefinedSymbol(t *testing.T) {
	src := `* = $0810
LDA m.nope
`
	if _, err := Parse(src); err == nil {
		t.Fatalf("expected an error for an undefined symbol")
	}
}

func TestParseIndirectIndexedAddressing(t *testing.T) {
	src := `* = $0810
rt.ptr = $0002
LDY #$00
LDA (rt.ptr),Y
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	last := prog.Instructions[len(prog.Instructions)-1]
	if last.Mnemonic != "LDA" || last.Value != 0x0002 {
		t.Fatalf("unexpected indirect-indexed instruction: %#v", last)
	}
}

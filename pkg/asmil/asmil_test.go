package asmil

import "testing"

func TestItemsSatisfyTheItemInterface(t *testing.T) {
	items := []Item{
		&Origin{Address: 0x0810},
		&Label{Name: "_main", Kind: LabelExported},
		&Instruction{Mnemonic: "LDA", Mode: Immediate, HasOperand: true, Operand: Operand{Value: 1, HasValue: true}},
		&Data{Kind: DataFill, Count: 4, Value: 0},
		&Comment{Text: "hello"},
		&BlankLine{},
		&Raw{Text: "!to \"out.prg\", cbm"},
		&Equate{Name: "t.x", Value: 0x02},
	}
	if len(items) != 8 {
		t.Fatalf("expected 8 distinct item shapes")
	}
}

func TestModuleStatsAccumulateWarnings(t *testing.T) {
	mod := &Module{Name: "m"}
	mod.Stats.Warnings = append(mod.Stats.Warnings, Warning{Message: "unsupported instruction"})
	if len(mod.Stats.Warnings) != 1 {
		t.Fatalf("expected one warning recorded")
	}
}

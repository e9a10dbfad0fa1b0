// Package codegen walks an optimized IL module and emits the equivalent
// ASM-IL module (spec.md §4.8): one exported/private label and a block
// label per basic block, instructions translated per-opcode, globals
// turned into Data items, and an Origin establishing the load address.
//
// The language forbids recursion (spec.md §1), so every function has at
// most one live frame: every virtual register and parameter is given a
// single fixed-for-the-function symbolic home (an Operand.Label the
// static frame allocator later binds to a real address via an Equate),
// rather than anything resembling a stack frame or a real register
// allocator; a return value travels in A (A:X for a word). This pass
// deliberately favors a uniform load/compute/store shape over every
// instruction, even where that produces a redundant load or store a
// human would elide by hand; pkg/optimize has no ASM-IL pass that
// removes such loads or stores.
//
// Grounded on the teacher's pkg/ir AIR lowering (pkg/ir/air.go, kept as
// reference) for the general shape of "walk a typed IR, emit the next
// IR down one construct at a time"; the per-opcode translation table and
// the fixed-home calling convention are new, built directly to spec.md
// §4.8/§4.9's description of a register-free target.
package codegen

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/il"
)

// DefaultOrigin is the C64 machine-code start address used when nothing
// else overrides it (spec.md §4.8: "$0810 after a BASIC stub at $0801").
const DefaultOrigin = 0x0810

type generator struct {
	mod   *asmil.Module
	stats *asmil.Stats
}

// Generate lowers mod into an ASM-IL module targeting origin (the
// machine-code start address; callers wanting the default pass
// codegen.DefaultOrigin).
func Generate(mod *il.Module, origin uint16) *asmil.Module {
	g := &generator{mod: &asmil.Module{Name: mod.Name}}
	g.stats = &g.mod.Stats

	g.mod.Items = append(g.mod.Items, &asmil.Origin{Address: origin})

	for _, glob := range mod.Globals {
		g.lowerGlobal(glob)
	}

	for _, fn := range mod.Functions {
		g.lowerFunction(fn)
		g.mod.Items = append(g.mod.Items, &asmil.BlankLine{})
		g.stats.FunctionCount++
	}

	g.stats.TotalSize = g.stats.CodeSize + g.stats.DataSize
	return g.mod
}

func (g *generator) warn(format string, args ...any) {
	g.stats.Warnings = append(g.stats.Warnings, asmil.Warning{Message: fmt.Sprintf(format, args...)})
}

func (g *generator) emit(item asmil.Item) {
	g.mod.Items = append(g.mod.Items, item)
}

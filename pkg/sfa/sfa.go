// Package sfa implements the static frame allocator and zero-page
// allocator (spec.md §4.9): it is what makes the no-recursion rule
// load-bearing, turning every symbolic label pkg/codegen left unresolved
// (a register's home, a parameter slot, the shared runtime-call cells) into
// a fixed absolute address, preferring the target's safe zero-page range
// for hot variables until its budget runs out.
//
// Grounded on pkg/asmil.Equate's own doc comment ("the static frame
// allocator emits one per frame slot and zero-page variable it assigns an
// address to") and spec.md §4.9's four numbered steps: build a
// non-overlap graph over frame slots (here, "can these two slots' owning
// functions ever be on the call stack at once"), greedy-color it by
// address reuse, and place hot/small variables into zero page first. The
// occupancy structure is `github.com/bits-and-blooms/bitset`, the
// teacher's own indirect dependency (pulled in via gnark-crypto, carried
// here as a direct one) — a natural fit for "which of these N zero-page
// bytes are already spoken for."
package sfa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/target"
)

// Error is a fatal frame-allocation failure (spec.md §4.9's three named
// failure modes), carried as a diag.Code so the caller can fold it into
// the ordinary diagnostics sink rather than a bare Go error string.
type Error struct {
	Code    diag.Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// ptrLabel is pkg/codegen's shared runtime-pointer cell; it must live in
// zero page since 6502 indirect-indexed addressing only ever reads its
// pointer from page zero.
const ptrLabel = "rt.ptr"

type slot struct {
	label string
	width int
	fn    string // "" for a slot shared across every function (rt.* cells)
	hot   int
}

// Result is the allocator's output: the equates to splice into the
// ASM-IL item stream, plus any non-fatal placement notes.
type Result struct {
	Equates  []*asmil.Equate
	Warnings []string
	ZPBytes  int
}

// Allocate assigns every symbolic label asmMod references but never
// declares (every pkg/codegen register/parameter home, plus the shared
// runtime cells) a fixed address, biased toward tgt's safe zero-page
// range for the hottest slots first, and splices the resulting Equate
// items into asmMod right after its Origin.
func Allocate(mod *il.Module, asmMod *asmil.Module, tgt target.Config) (*Result, error) {
	if overlap := reservedOverlapsSafe(tgt); overlap {
		return nil, &Error{Code: diag.SReservedZeroPage, Message: fmt.Sprintf("target %q: safe zero-page range overlaps a reserved range", tgt.Name)}
	}

	a := &Allocator{
		tgt:      tgt,
		zp:       bitset.New(uint(tgt.ZeroPage.UsableBytes())),
		zpOwn:    map[uint16][]string{},
		zpWidth:  map[uint16]int{},
		ramOwn:   map[uint16][]string{},
		ramWidth: map[uint16]int{},
		reach:    map[string]map[string]bool{},
		callees:  buildCallGraph(mod),
	}

	slots := collectSlots(mod, asmMod)
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].hot != slots[j].hot {
			return slots[i].hot > slots[j].hot
		}
		if slots[i].fn != slots[j].fn {
			return slots[i].fn < slots[j].fn
		}
		return slots[i].label < slots[j].label
	})

	res := &Result{}
	var placements []*asmil.Equate
	for _, s := range slots {
		addr, zeroPage, err := a.place(s)
		if err != nil {
			return nil, err
		}
		comment := fmt.Sprintf("fn=%s hot=%d", orGlobal(s.fn), s.hot)
		if zeroPage {
			comment += " zp"
		}
		placements = append(placements, &asmil.Equate{Name: s.label, Value: addr, Comment: comment})
	}
	sort.Slice(placements, func(i, j int) bool { return placements[i].Name < placements[j].Name })
	res.Equates = placements
	res.ZPBytes = int(a.zp.Count())

	splice(asmMod, placements)
	asmMod.Stats.ZPBytesUsed = res.ZPBytes
	return res, nil
}

func orGlobal(fn string) string {
	if fn == "" {
		return "<shared>"
	}
	return fn
}

// splice inserts equates immediately after the module's Origin item, so
// every later label/instruction reference to them resolves against a
// plain numeric value the same way an ACME assembler would.
func splice(mod *asmil.Module, equates []*asmil.Equate) {
	if len(equates) == 0 {
		return
	}
	idx := 0
	for i, it := range mod.Items {
		if _, ok := it.(*asmil.Origin); ok {
			idx = i + 1
			break
		}
	}
	items := make([]asmil.Item, 0, len(mod.Items)+len(equates))
	items = append(items, mod.Items[:idx]...)
	for _, e := range equates {
		items = append(items, e)
	}
	items = append(items, mod.Items[idx:]...)
	mod.Items = items
}

func reservedOverlapsSafe(tgt target.Config) bool {
	for _, r := range tgt.ZeroPage.Reserved {
		if r.Contains(tgt.ZeroPage.Safe.Start) || r.Contains(tgt.ZeroPage.Safe.End) {
			return true
		}
	}
	return false
}

// buildCallGraph collects each function's direct callees from its CALL/
// CALL_VOID instructions, the same data pkg/recursion gathers from
// pkg/sema but re-derived here directly from the already-lowered IL so
// this package has no dependency on module.Registry.
func buildCallGraph(mod *il.Module) map[string][]string {
	g := map[string][]string{}
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				if instr.Op == il.CALL || instr.Op == il.CALL_VOID {
					g[fn.Name] = append(g[fn.Name], instr.Callee)
				}
			}
		}
	}
	return g
}

// collectSlots finds every Operand.Label referenced by an Instruction
// that is not itself a declared Label or Equate (i.e. every symbolic
// storage cell pkg/codegen assumed the allocator would give a home),
// determines its owning function by longest-prefix match against the
// module's own function names, and counts references as a "hot" proxy
// for the use-count/loop-depth heuristic spec.md §4.9 step 4 describes
// (pkg/il's VirtualRegister carries no link back to the source-level
// symbol.Symbol that would carry those fields directly, so reference
// count in the already-generated code is the closest available signal).
func collectSlots(mod *il.Module, asmMod *asmil.Module) []slot {
	declared := map[string]bool{}
	fnNames := make([]string, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		fnNames = append(fnNames, fn.Name)
	}
	sort.Slice(fnNames, func(i, j int) bool { return len(fnNames[i]) > len(fnNames[j]) })

	for _, it := range asmMod.Items {
		switch v := it.(type) {
		case *asmil.Label:
			declared[v.Name] = true
		case *asmil.Equate:
			declared[v.Name] = true
		}
	}

	counts := map[string]int{}
	widths := map[string]int{}
	for _, it := range asmMod.Items {
		ins, ok := it.(*asmil.Instruction)
		if !ok || ins.Operand.Label == "" {
			continue
		}
		base, wide := strings.CutSuffix(ins.Operand.Label, "+1")
		if declared[base] {
			continue
		}
		counts[base]++
		if wide && widths[base] < 2 {
			widths[base] = 2
		} else if widths[base] == 0 {
			widths[base] = 1
		}
	}

	slots := make([]slot, 0, len(counts))
	for label, hot := range counts {
		fn := ""
		if label != ptrLabel && !strings.HasPrefix(label, "rt.") {
			for _, name := range fnNames {
				if strings.HasPrefix(label, name+".") {
					fn = name
					break
				}
			}
		}
		slots = append(slots, slot{label: label, width: widths[label], fn: fn, hot: hot})
	}
	return slots
}

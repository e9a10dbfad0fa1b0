package sfa

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/target"
)

// Allocator is the placement engine behind Allocate: a zero-page
// occupancy bitmap plus two owner maps (which functions already sit at a
// given address) that let non-conflicting slots share a byte instead of
// each claiming a fresh one — the "greedy coloring" spec.md §4.9 step 3
// asks for. The matching width maps record how wide the slot that first
// claimed each address was, so a later reuse attempt can't hand a 2-byte
// slot an address a 1-byte slot already owns (or vice versa).
type Allocator struct {
	tgt       target.Config
	zp        *bitset.BitSet
	zpOwn     map[uint16][]string
	zpWidth   map[uint16]int
	ramOwn    map[uint16][]string
	ramWidth  map[uint16]int
	ramNext   uint16
	callees   map[string][]string
	reach     map[string]map[string]bool
}

// place finds addr for s, preferring zero page (budget permitting) and
// falling back to general RAM. A must-zero-page slot that cannot fit
// returns a ZeroPageOverflow *Error; a RAM slot that runs past the
// target's memory map returns a MemoryMapOverlap *Error.
func (a *Allocator) place(s slot) (addr uint16, zeroPage bool, err error) {
	mustZP := s.label == ptrLabel

	if addr, ok := a.reuse(a.zpOwn, a.zpWidth, s); ok {
		return addr, true, nil
	}
	if addr, ok := a.freshZP(s); ok {
		return addr, true, nil
	}
	if mustZP {
		return 0, false, &Error{
			Code:    diag.SZeroPageOverflow,
			Message: fmt.Sprintf("%s: no room left in %s's %d-byte safe zero-page range", s.label, a.tgt.Name, a.tgt.ZeroPage.UsableBytes()),
		}
	}

	if addr, ok := a.reuse(a.ramOwn, a.ramWidth, s); ok {
		return addr, false, nil
	}
	addr, err = a.freshRAM(s)
	return addr, false, err
}

// reuse looks for an already-placed address of the right width none of
// whose current owners conflict with s's owner, letting s share it.
func (a *Allocator) reuse(owners map[uint16][]string, widths map[uint16]int, s slot) (uint16, bool) {
	for addr, holders := range owners {
		if widths[addr] != s.widthOrOne() {
			continue
		}
		ok := true
		for _, h := range holders {
			if a.conflicts(h, s.fn) {
				ok = false
				break
			}
		}
		if ok {
			owners[addr] = append(owners[addr], s.fn)
			return addr, true
		}
	}
	return 0, false
}

func (a *Allocator) freshZP(s slot) (uint16, bool) {
	width := uint(s.widthOrOne())
	n := uint(a.tgt.ZeroPage.UsableBytes())
	for i := uint(0); i+width <= n; i++ {
		if a.zpRangeFree(i, width) {
			a.zpClaim(i, width)
			addr := a.tgt.ZeroPage.Safe.Start + uint16(i)
			a.zpOwn[addr] = append(a.zpOwn[addr], s.fn)
			a.zpWidth[addr] = s.widthOrOne()
			return addr, true
		}
	}
	return 0, false
}

func (a *Allocator) zpRangeFree(start, width uint) bool {
	for i := start; i < start+width; i++ {
		if a.zp.Test(i) {
			return false
		}
	}
	return true
}

func (a *Allocator) zpClaim(start, width uint) {
	for i := start; i < start+width; i++ {
		a.zp.Set(i)
	}
}

func (a *Allocator) freshRAM(s slot) (uint16, error) {
	width := uint16(s.widthOrOne())
	addr := a.ramNext
	for {
		if int(addr)+int(width) > a.tgt.TotalMemory {
			return 0, &Error{
				Code:    diag.SMemoryMapOverlap,
				Message: fmt.Sprintf("%s: general-RAM allocation at %#04x exceeds %s's %d-byte address space", s.label, addr, a.tgt.Name, a.tgt.TotalMemory),
			}
		}
		conflict := false
		for off := uint16(0); off < width; off++ {
			if a.tgt.Reserved(addr + off) {
				conflict = true
				break
			}
		}
		if !conflict {
			break
		}
		addr++
	}
	a.ramNext = addr + width
	a.ramOwn[addr] = append(a.ramOwn[addr], s.fn)
	a.ramWidth[addr] = s.widthOrOne()
	return addr, nil
}

// conflicts reports whether slots owned by fnA and fnB can ever be live
// at the same time: identical owners, a shared/global owner, or either
// function reachable from the other through the call graph (spec.md
// §4.9 step 1 — the non-recursion invariant is exactly what keeps this
// relation acyclic and therefore well founded).
func (a *Allocator) conflicts(fnA, fnB string) bool {
	if fnA == "" || fnB == "" {
		return true
	}
	if fnA == fnB {
		return true
	}
	return a.reachable(fnA, fnB) || a.reachable(fnB, fnA)
}

func (a *Allocator) reachable(from, to string) bool {
	if cached, ok := a.reach[from]; ok {
		if v, ok := cached[to]; ok {
			return v
		}
	} else {
		a.reach[from] = map[string]bool{}
	}
	visited := map[string]bool{}
	var walk func(string) bool
	walk = func(cur string) bool {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for _, callee := range a.callees[cur] {
			if callee == to {
				return true
			}
			if walk(callee) {
				return true
			}
		}
		return false
	}
	result := walk(from)
	a.reach[from][to] = result
	return result
}

func (s slot) widthOrOne() int {
	if s.width == 0 {
		return 1
	}
	return s.width
}

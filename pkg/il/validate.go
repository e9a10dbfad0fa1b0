package il

import "fmt"

// Validate checks the structural invariants spec.md §4.6 requires of a
// lowered function: every non-empty block ends in exactly one terminator,
// every PHI instruction appears only at its block's head, every PHI's
// predecessor set matches the block's actual predecessor set, and every
// virtual register is defined by exactly one instruction (SSA within the
// function). Grounded on the teacher's pkg/asm/assembler.Validate, which
// returns a slice of errors per function rather than panicking on the
// first one found (kept as reference).
func Validate(f *Function) []error {
	var errs []error

	defined := map[int]int{} // register id -> defining instruction id, for duplicate-definition detection

	for _, b := range f.Blocks {
		errs = append(errs, validateTerminator(f, b)...)
		errs = append(errs, validatePhiPlacement(f, b)...)
		errs = append(errs, validatePhiSources(f, b)...)

		for _, instr := range b.Instrs {
			if instr.Result == nil {
				continue
			}
			if prior, ok := defined[instr.Result.ID]; ok {
				errs = append(errs, fmt.Errorf(
					"function %q: register %%r%d defined by instructions %d and %d (single static assignment violated)",
					f.Name, instr.Result.ID, prior, instr.ID))
			}
			defined[instr.Result.ID] = instr.ID
		}
	}

	return errs
}

func validateTerminator(f *Function, b *Block) []error {
	if len(b.Instrs) == 0 {
		return nil
	}
	for _, instr := range b.Instrs[:len(b.Instrs)-1] {
		if instr.IsTerminator() {
			return []error{fmt.Errorf(
				"function %q: block %q has a terminator (%s) before its last instruction",
				f.Name, b.Label, instr.Op)}
		}
	}
	last := b.Instrs[len(b.Instrs)-1]
	if !last.IsTerminator() && !b.IsExit {
		return []error{fmt.Errorf(
			"function %q: block %q does not end in a terminator", f.Name, b.Label)}
	}
	return nil
}

func validatePhiPlacement(f *Function, b *Block) []error {
	seenNonPhi := false
	var errs []error
	for _, instr := range b.Instrs {
		if instr.Op == PHI {
			if seenNonPhi {
				errs = append(errs, fmt.Errorf(
					"function %q: block %q has a PHI instruction after a non-PHI instruction",
					f.Name, b.Label))
			}
			continue
		}
		seenNonPhi = true
	}
	return errs
}

func validatePhiSources(f *Function, b *Block) []error {
	preds := map[int]bool{}
	for _, p := range b.Preds {
		preds[p] = true
	}

	var errs []error
	for _, instr := range b.Instrs {
		if instr.Op != PHI {
			continue
		}
		sources := map[int]bool{}
		for _, src := range instr.PhiSources {
			sources[src.Block] = true
		}
		if len(sources) != len(preds) {
			errs = append(errs, fmt.Errorf(
				"function %q: block %q PHI (instr %d) has %d source(s) but block has %d predecessor(s)",
				f.Name, b.Label, instr.ID, len(sources), len(preds)))
			continue
		}
		for p := range preds {
			if !sources[p] {
				errs = append(errs, fmt.Errorf(
					"function %q: block %q PHI (instr %d) is missing a source for predecessor block %d",
					f.Name, b.Label, instr.ID, p))
			}
		}
	}
	return errs
}

package optimize

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/il"
)

// intrinsicLoweringInvariant is the "required Intrinsic lowering" pass
// spec.md §4.7 names. pkg/ilgen already rewrites every peek/poke/hi/lo/len
// call to its target instruction at lowering time (HW_READ, HW_WRITE,
// SHR, AND, or a folded constant), so this pass never has anything to
// rewrite; it exists to confirm that invariant holds rather than to
// establish it. Finding a violation here means the IL generator produced
// a call node it should never have produced — an internal invariant
// failure, not a recoverable diagnostic (spec.md §9.2).
type intrinsicLoweringInvariant struct{}

func (intrinsicLoweringInvariant) Name() string { return "intrinsic-lowering" }

var reservedIntrinsicNames = map[string]bool{
	"peek": true, "poke": true, "hi": true, "lo": true, "len": true,
}

func (intrinsicLoweringInvariant) Run(mod *il.Module) bool {
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, i := range b.Instrs {
				if (i.Op == il.CALL || i.Op == il.CALL_VOID) && reservedIntrinsicNames[i.Callee] {
					panic(fmt.Sprintf("intrinsic %q reached the optimizer as a call node", i.Callee))
				}
			}
		}
	}
	return false
}

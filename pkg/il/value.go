// Package il implements blend65's typed intermediate language (spec.md
// §3, §4.6): a three-address form with basic blocks, phi nodes only at
// block heads, and one virtual register definition per register (SSA
// within a function).
//
// Grounded on the teacher's pkg/ir (kept as reference: pkg/ir/mir.go,
// pkg/ir/air.go) for the shape of a typed intermediate tree with explicit
// per-kind value variants, generalized here from the teacher's
// constraint-polynomial expressions to three-address instructions over
// registers, constants, and labels.
package il

import (
	"strconv"

	"github.com/blend65/blend65c/pkg/types"
)

// Value is anything an instruction can take as an operand.
type Value interface {
	isValue()
	Type() types.Type
	String() string
}

// Constant is a compile-time known value of a given type.
type Constant struct {
	Val uint64
	Ty  types.Type
}

func (Constant) isValue()           {}
func (c Constant) Type() types.Type { return c.Ty }
func (c Constant) String() string   { return strconv.FormatUint(c.Val, 10) }

// VirtualRegister is an SSA value defined by exactly one instruction
// within its function.
type VirtualRegister struct {
	ID   int
	Ty   types.Type
	Name string // optional: the source variable this register was named for
}

func (VirtualRegister) isValue()           {}
func (r VirtualRegister) Type() types.Type { return r.Ty }
func (r VirtualRegister) String() string {
	if r.Name != "" {
		return "%" + r.Name
	}
	return "%r" + strconv.Itoa(r.ID)
}

// Label names a basic block, used as a branch target operand.
type Label struct {
	Name    string
	BlockID int
}

func (Label) isValue()         {}
func (Label) Type() types.Type { return types.VoidType }
func (l Label) String() string { return l.Name }

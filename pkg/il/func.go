package il

import "github.com/blend65/blend65c/pkg/types"

// Block is a basic block: a straight-line run of instructions ending in
// exactly one terminator (spec.md §3). Predecessors/successors are block
// ids, not owning pointers, matching the rest of the compiler's
// relations-by-stable-id convention (symbol scopes, CFG edges, call-graph
// edges all do the same).
type Block struct {
	ID           int
	Label        string
	Instrs       []*Instr
	Preds, Succs []int
	IsExit       bool
}

// Terminator returns the block's terminating instruction, or nil if the
// block is still open (has not yet been given one).
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// Append adds an instruction to the block. It is a caller bug (and a
// compiler-internal invariant violation, spec.md §7) to append after a
// terminator has already been placed; callers build one block fully
// before moving to the next.
func (b *Block) Append(i *Instr) {
	b.Instrs = append(b.Instrs, i)
}

// Function is one compiled function: its parameters, return type, and
// the basic blocks making up its body.
type Function struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	EntryBlock int
	Blocks     []*Block
	Exported   bool

	nextReg   int
	nextBlock int
	nextInstr int
}

// Param is one function parameter, bound to a virtual register at
// function entry (spec.md §4.6).
type Param struct {
	Name string
	Reg  VirtualRegister
}

// NewFunction constructs a function with a single empty entry block.
func NewFunction(name string, params []Param, ret types.Type) *Function {
	f := &Function{Name: name, Params: params, ReturnType: ret}
	entry := f.NewBlock("entry")
	f.EntryBlock = entry.ID
	return f
}

// NewBlock allocates a fresh block and appends it to the function.
func (f *Function) NewBlock(label string) *Block {
	b := &Block{ID: f.nextBlock, Label: label}
	f.nextBlock++
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewRegister allocates a fresh virtual register of the given type.
func (f *Function) NewRegister(ty types.Type, name string) VirtualRegister {
	r := VirtualRegister{ID: f.nextReg, Ty: ty, Name: name}
	f.nextReg++
	return r
}

// NewInstr allocates a fresh instruction id (instructions are appended to
// a block directly via Block.Append).
func (f *Function) NewInstr(op Op) *Instr {
	i := &Instr{ID: f.nextInstr, Op: op}
	f.nextInstr++
	return i
}

// Block looks up a block by id.
func (f *Function) Block(id int) *Block {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Link records a CFG edge from -> to (both directions: to's predecessor
// list and from's successor list), skipping a duplicate edge.
func (f *Function) Link(from, to int) {
	fb, tb := f.Block(from), f.Block(to)
	if fb == nil || tb == nil {
		return
	}
	for _, s := range fb.Succs {
		if s == to {
			return
		}
	}
	fb.Succs = append(fb.Succs, to)
	tb.Preds = append(tb.Preds, from)
}

// Module is a whole compiled program unit (spec.md §3): its functions,
// module-scope globals, and an optional entry point name (`main`).
type Module struct {
	Name       string
	Functions  []*Function
	Globals    []Global
	EntryPoint string
}

// Global is a module-scope variable lowered to IL: it has no virtual
// register (it lives at a fixed address assigned later by the static
// frame allocator) but does have an optional constant initial value.
type Global struct {
	Name     string
	Type     types.Type
	Exported bool
	IsConst  bool
	Initial  []uint64 // flattened element values; len 1 for a scalar
}

// Package symbol implements the symbol table and scope tree shared by the
// semantic analyzer and module system (spec.md §3, §4.3, §4.4).
//
// Grounded on the teacher's pkg/corset/scope.go ModuleScope/LocalScope
// split (kept as reference): a tree of scopes, each owning its own symbols,
// with resolution walking up to an enclosing scope on a local miss. blend65
// is function-scoped rather than block-scoped (spec.md §3: "control-flow
// bodies do not introduce scopes"), so the tree here has exactly two levels
// under the intrinsic root: one Module scope per compiled file, and one
// Function scope per function declared within it — no nested block scopes.
package symbol

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/types"
)

// Kind classifies what a symbol denotes.
type Kind uint8

// Symbol kinds (spec.md §3).
const (
	Variable Kind = iota
	Parameter
	Function
	Constant
	Imported
	Intrinsic
	EnumMember
	// EnumType names an enum declaration itself (the namespace qualified by
	// `Name.Member`), as distinct from one of its members.
	EnumType
)

// String renders a symbol kind for diagnostics and tests.
func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Parameter:
		return "parameter"
	case Function:
		return "function"
	case Constant:
		return "constant"
	case Imported:
		return "imported"
	case Intrinsic:
		return "intrinsic"
	case EnumMember:
		return "enum member"
	case EnumType:
		return "enum type"
	default:
		return "unknown"
	}
}

// EnumMemberInfo is one named, valued member of an enum declaration,
// attached to the enum's own EnumType symbol (spec.md §3: enum members are
// accessed qualified, `Name.Member`, rather than polluting the enclosing
// scope's namespace).
type EnumMemberInfo struct {
	Name  string
	Value uint64
}

// ConstValue holds a resolved compile-time constant, attached to Symbol
// when IsConst (or an enum member) has a known value.
type ConstValue struct {
	Present bool
	Value   uint64
}

// Symbol is a single named entity visible in some Scope (spec.md §3).
type Symbol struct {
	Name        string
	SymKind     Kind
	Type        types.Type
	DeclSpan    source.Span
	OwningScope *Scope

	IsExported bool
	IsConst    bool
	Initial    ConstValue

	// Parameters is non-nil for a Function symbol: the ordered parameter
	// types, used for arity/assignability checks at call sites.
	Parameters []types.Type

	// Members is non-nil for an EnumType symbol: its members in declaration
	// order, each carrying its assigned ordinal value.
	Members []EnumMemberInfo

	// SourceModule and OriginalName are set for Imported symbols: the
	// module the symbol was imported from, and its name there before any
	// local alias was applied.
	SourceModule string
	OriginalName string

	// UseCount and LoopDepth are gathered during semantic analysis for the
	// static frame allocator's "hot, small" zero-page priority heuristic
	// (spec.md §4.9): how many times this symbol is referenced, and the
	// deepest loop nesting at which a reference occurred.
	UseCount int
	LoopDepth int
}

// ScopeKind classifies a scope's place in the scope tree.
type ScopeKind uint8

// Scope kinds (spec.md §3). Intrinsic is the implicit root every module
// scope chains from; it is not one of the two kinds spec.md names for
// ordinary scopes but is required to hold peek/poke/hi/lo/len (spec.md §9).
const (
	ModuleScope ScopeKind = iota
	FunctionScope
	IntrinsicScope
)

// Scope is a single node in the scope tree: a set of symbols, a parent to
// search on a local miss, and child scopes (spec.md §3).
type Scope struct {
	ID       int
	ScopeKind ScopeKind
	Parent   *Scope
	Children []*Scope
	symbols  map[string]*Symbol
	// insertion order of symbol names, so iteration (e.g. unused-symbol
	// hints) is deterministic.
	order []string
}

func newScope(id int, kind ScopeKind, parent *Scope) *Scope {
	return &Scope{ID: id, ScopeKind: kind, Parent: parent, symbols: map[string]*Symbol{}}
}

// Declare registers sym in this scope under sym.Name. It returns the
// previously-declared symbol of the same name in this scope, or the
// intrinsic of that name (intrinsics cannot be shadowed), if one exists,
// so the caller can build a DuplicateDeclaration diagnostic with
// related-information pointing at it; ok is false in that case and the
// new symbol is NOT installed. Other enclosing scopes are not consulted.
func (s *Scope) Declare(sym *Symbol) (prior *Symbol, ok bool) {
	if existing, found := s.symbols[sym.Name]; found {
		return existing, false
	}
	for sc := s.Parent; sc != nil; sc = sc.Parent {
		if existing, found := sc.symbols[sym.Name]; found && sc.ScopeKind == IntrinsicScope {
			return existing, false
		}
	}
	sym.OwningScope = s
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return nil, true
}

// LookupLocal finds a symbol declared directly in this scope, without
// searching enclosing scopes.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Lookup finds a symbol visible from this scope: first locally, then in
// each enclosing scope up to (and including) the intrinsic root.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Symbols returns every symbol declared directly in this scope, in
// declaration order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.symbols[name])
	}
	return out
}

// Table owns the scope tree for a single compilation (spec.md §3: scopes
// are owned by the symbol table, referenced elsewhere by stable id). The
// zero value is not usable; construct with NewTable.
type Table struct {
	root      *Scope // intrinsic scope
	nextID    int
	allScopes []*Scope
}

// NewTable constructs a fresh table with its intrinsic scope populated by
// the fixed builtin signatures (spec.md §9: peek, poke, hi, lo, len).
func NewTable() *Table {
	t := &Table{}
	t.root = t.newScope(IntrinsicScope, nil)
	declareIntrinsics(t.root)
	return t
}

func (t *Table) newScope(kind ScopeKind, parent *Scope) *Scope {
	sc := newScope(t.nextID, kind, parent)
	t.nextID++
	t.allScopes = append(t.allScopes, sc)
	if parent != nil {
		parent.Children = append(parent.Children, sc)
	}
	return sc
}

// Root returns the intrinsic scope, the ultimate parent of every module
// scope.
func (t *Table) Root() *Scope {
	return t.root
}

// NewModuleScope creates a fresh module scope chained directly off the
// intrinsic root.
func (t *Table) NewModuleScope() *Scope {
	return t.newScope(ModuleScope, t.root)
}

// NewFunctionScope creates a fresh function scope chained off the given
// module scope. Function bodies never nest further scopes (spec.md §3).
func (t *Table) NewFunctionScope(module *Scope) *Scope {
	return t.newScope(FunctionScope, module)
}

// Scopes returns every scope ever created by this table, in creation
// order (id order).
func (t *Table) Scopes() []*Scope {
	return t.allScopes
}

// ScopeByID looks up a scope by its stable id, used by AST annotations
// that reference a scope by (scope_id, name) rather than by pointer
// (spec.md §9: "never store owning references in both directions").
func (t *Table) ScopeByID(id int) (*Scope, bool) {
	if id < 0 || id >= len(t.allScopes) {
		return nil, false
	}
	return t.allScopes[id], true
}

// declareIntrinsics installs peek/poke/hi/lo/len into the intrinsic scope.
// Each has a closed signature (spec.md §9); they cannot be shadowed:
// Scope.Declare refuses any later declaration that reuses an intrinsic's
// name, and nothing can declare into the intrinsic scope after construction.
func declareIntrinsics(root *Scope) {
	word := types.WordType
	byteT := types.ByteType

	intrinsics := []struct {
		name   string
		params []types.Type
		ret    types.Type
	}{
		{"peek", []types.Type{word}, byteT},
		{"poke", []types.Type{word, byteT}, types.VoidType},
		{"hi", []types.Type{word}, byteT},
		{"lo", []types.Type{word}, byteT},
		{"len", []types.Type{types.UnknownType}, word},
	}

	for _, in := range intrinsics {
		sym := &Symbol{
			Name:       in.name,
			SymKind:    Intrinsic,
			Type:       types.NewFunction(in.params, in.ret),
			Parameters: in.params,
		}
		if _, ok := root.Declare(sym); !ok {
			panic(fmt.Sprintf("duplicate intrinsic %q", in.name))
		}
	}
}

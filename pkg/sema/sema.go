// Package sema implements blend65's semantic analyzer (spec.md §4.3): symbol
// collection, type resolution, expression type checking, per-function
// control-flow graph construction, and per-function call-edge collection
// for a single parsed file.
//
// Grounded on the teacher's pkg/corset/typing.go typeChecker (kept as
// reference): a struct holding a module environment, with one method per
// declaration kind and one method per expression kind, each returning
// (Type, []SyntaxError). blend65c keeps that per-node-kind dispatch shape
// but threads a diag.Sink instead of returning error slices, matching every
// other phase's accumulate-then-return convention (pkg/diag).
package sema

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/symbol"
	"github.com/blend65/blend65c/pkg/types"
)

// ExprInfo is the result of type-checking a single expression: its
// resolved type and, when the expression is a compile-time constant, its
// folded value.
type ExprInfo struct {
	Type  types.Type
	Const bool
	Value uint64
}

// CallEdge is one call site inside a function body, naming the callee
// symbol and the span of the call expression.
type CallEdge struct {
	Callee *symbol.Symbol
	Site   source.Span
}

// FuncInfo holds everything gathered about a single function during
// analysis: its declaration and symbol, its function scope, its
// control-flow graph, and the call sites found in its body.
type FuncInfo struct {
	Decl    *ast.FuncDecl
	Symbol  *symbol.Symbol
	Scope   *symbol.Scope
	CFG     *CFG
	Callees []CallEdge
}

// Result is the full output of analyzing a single parsed file.
type Result struct {
	ModuleScope *symbol.Scope
	Functions   []*FuncInfo
	Exprs       map[ast.Expression]ExprInfo
	Table       *symbol.Table
}

// Analyzer runs the analysis passes over a single *ast.Program. The zero
// value is not usable; construct with New.
type Analyzer struct {
	table  *symbol.Table
	module *symbol.Scope
	diags  *diag.Sink

	userTypes map[string]types.Type

	exprs     map[ast.Expression]ExprInfo
	functions []*FuncInfo

	// control holds the enclosing loop/switch context stack while walking a
	// function body, for break/continue target resolution.
	control []controlFrame
}

type controlKind uint8

const (
	controlLoop controlKind = iota
	controlSwitch
)

type controlFrame struct {
	kind          controlKind
	breakTarget   int
	continueTarget int // unused for controlSwitch
}

// New constructs an Analyzer backed by a fresh symbol table, its intrinsic
// scope already populated, and a fresh module scope chained off it.
func New() *Analyzer {
	t := symbol.NewTable()
	return &Analyzer{
		table:     t,
		module:    t.NewModuleScope(),
		diags:     &diag.Sink{},
		userTypes: map[string]types.Type{},
		exprs:     map[ast.Expression]ExprInfo{},
	}
}

// Analyze runs symbol collection, type resolution, per-function body type
// checking, CFG construction and call-edge collection over prog, returning
// the aggregate result and every diagnostic raised along the way.
func Analyze(prog *ast.Program) (*Result, []diag.Diagnostic) {
	a := New()
	a.collectEnums(prog)
	a.collectRest(prog)
	a.checkFunctionBodies()

	return &Result{
		ModuleScope: a.module,
		Functions:   a.functions,
		Exprs:       a.exprs,
		Table:       a.table,
	}, a.diags.All()
}

func (a *Analyzer) exprType(e ast.Expression) types.Type {
	if info, ok := a.exprs[e]; ok {
		return info.Type
	}
	//
	return types.UnknownType
}

func (a *Analyzer) setExpr(e ast.Expression, info ExprInfo) {
	a.exprs[e] = info
}

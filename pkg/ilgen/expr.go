package ilgen

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/symbol"
	"github.com/blend65/blend65c/pkg/token"
	"github.com/blend65/blend65c/pkg/types"
)

func (g *fg) exprInfo(e ast.Expression) sema.ExprInfo {
	return g.gen.result.Exprs[e]
}

// lowerExpr lowers a single expression to an il.Value, appending whatever
// instructions it needs to the current block. Any expression pkg/sema
// already folded to a compile-time constant (literals, const variable
// reads, enum member access, constant arithmetic) is returned directly as
// an il.Constant without further per-kind lowering: this one check covers
// every constant-foldable shape uniformly (spec.md §4.6).
func (g *fg) lowerExpr(e ast.Expression) il.Value {
	if info, ok := g.gen.result.Exprs[e]; ok && info.Const {
		return il.Constant{Val: info.Value, Ty: info.Type}
	}

	switch ex := e.(type) {
	case *ast.NumberLit:
		return il.Constant{Val: ex.Value, Ty: g.exprInfo(ex).Type}
	case *ast.BoolLit:
		v := uint64(0)
		if ex.Value {
			v = 1
		}
		return il.Constant{Val: v, Ty: types.BoolType}
	case *ast.Ident:
		return g.lowerIdentRef(ex)
	case *ast.Unary:
		return g.lowerUnary(ex)
	case *ast.Binary:
		return g.lowerBinary(ex)
	case *ast.Ternary:
		return g.lowerTernary(ex)
	case *ast.Call:
		return g.lowerCall(ex)
	case *ast.Index:
		return g.lowerIndex(ex)
	case *ast.Assign:
		return g.lowerAssign(ex)
	case *ast.Member:
		// An enum member access is always constant-folded by pkg/sema and
		// caught by the fast path above; reaching here means some other
		// member expression shape was left un-folded.
		g.gen.internalError(ex.Span(), "unresolved member access")
		return il.Constant{Ty: types.UnknownType}
	case *ast.StringLit:
		g.gen.internalError(ex.Span(), "string literal used outside a constant array initializer")
		return il.Constant{Ty: types.UnknownType}
	case *ast.ArrayLit:
		g.gen.internalError(ex.Span(), "array literal used outside a variable initializer")
		return il.Constant{Ty: types.UnknownType}
	default:
		g.gen.internalError(e.Span(), "unsupported expression shape")
		return il.Constant{Ty: types.UnknownType}
	}
}

// lowerIdentRef lowers a read of a non-constant identifier: a local
// scalar/parameter is simply the SSA value already bound to its name, a
// module-scope global is loaded from its label-addressed memory cell, and a
// bare function name (used as a value rather than called) becomes a label
// naming its qualified entry point.
func (g *fg) lowerIdentRef(id *ast.Ident) il.Value {
	if v, ok := g.vars[id.Name]; ok {
		return v
	}

	sym, ok := g.scope.Lookup(id.Name)
	if !ok {
		g.gen.internalError(id.Span(), "undeclared identifier %q", id.Name)
		return il.Constant{Ty: types.UnknownType}
	}

	if sym.SymKind == symbol.Function || sym.SymKind == symbol.Intrinsic {
		return il.Label{Name: g.qualifyCallee(sym)}
	}

	label := g.globalLabel(sym)
	return g.emitValue(il.LOAD_MEM, sym.Type, "", label)
}

func (g *fg) lowerUnary(ex *ast.Unary) il.Value {
	v := g.lowerExpr(ex.Operand)
	ty := g.exprInfo(ex).Type
	switch ex.Op {
	case token.MINUS:
		return g.emitValue(il.NEG, ty, "", v)
	case token.BANG, token.TILDE:
		return g.emitValue(il.NOT, ty, "", v)
	default:
		g.gen.internalError(ex.Span(), "unsupported unary operator %q", ex.Op)
		return v
	}
}

var binaryOps = map[token.Kind]il.Op{
	token.PLUS: il.ADD, token.MINUS: il.SUB, token.STAR: il.MUL,
	token.SLASH: il.DIV, token.PERCENT: il.MOD,
	token.AMP: il.AND, token.PIPE: il.OR, token.CARET: il.XOR,
	token.SHL: il.SHL, token.SHR: il.SHR,
	token.EQEQ: il.CMP_EQ, token.BANGEQ: il.CMP_NE,
	token.LT: il.CMP_LT, token.LTEQ: il.CMP_LE,
	token.GT: il.CMP_GT, token.GTEQ: il.CMP_GE,
}

func (g *fg) lowerBinary(ex *ast.Binary) il.Value {
	switch ex.Op {
	case token.AMPAMP:
		return g.lowerAnd(ex)
	case token.PIPEPIPE:
		return g.lowerOr(ex)
	}

	left := g.lowerExpr(ex.Left)
	right := g.lowerExpr(ex.Right)
	ty := g.exprInfo(ex).Type

	op, ok := binaryOps[ex.Op]
	if !ok {
		g.gen.internalError(ex.Span(), "unsupported binary operator %q", ex.Op)
		return left
	}
	return g.emitValue(op, ty, "", left, right)
}

// lowerAnd lowers `a && b` as an explicit short-circuit: b is only
// evaluated when a is true (spec.md §4.6).
func (g *fg) lowerAnd(ex *ast.Binary) il.Value {
	left := g.lowerExpr(ex.Left)
	falseBlock := g.cur.ID
	falseVars := g.vars.clone()

	rhsBlock := g.fn.NewBlock("and.rhs")
	join := g.fn.NewBlock("and.join")

	br := g.emit(il.BRANCH_IF_TRUE)
	br.Operands = []il.Value{left}
	br.Target, br.Target2 = rhsBlock.ID, join.ID
	g.fn.Link(falseBlock, rhsBlock.ID)
	g.fn.Link(falseBlock, join.ID)

	g.cur = rhsBlock
	right := g.lowerExpr(ex.Right)
	rhsVars, rhsEnd := g.vars, g.cur.ID
	bi := g.emit(il.BRANCH)
	bi.Target = join.ID
	g.fn.Link(rhsEnd, join.ID)

	reg := g.fn.NewRegister(types.BoolType, "")
	phi := g.fn.NewInstr(il.PHI)
	phi.Result = &reg
	phi.PhiSources = []il.PhiSource{
		{Block: falseBlock, Value: il.Constant{Val: 0, Ty: types.BoolType}},
		{Block: rhsEnd, Value: right},
	}

	g.cur = join
	join.Append(phi)
	g.vars = mergeAt(g.fn, join, []edge{{block: falseBlock, vars: falseVars}, {block: rhsEnd, vars: rhsVars}})
	return reg
}

// lowerOr lowers `a || b` symmetrically to lowerAnd: b is only evaluated
// when a is false.
func (g *fg) lowerOr(ex *ast.Binary) il.Value {
	left := g.lowerExpr(ex.Left)
	trueBlock := g.cur.ID
	trueVars := g.vars.clone()

	rhsBlock := g.fn.NewBlock("or.rhs")
	join := g.fn.NewBlock("or.join")

	br := g.emit(il.BRANCH_IF_TRUE)
	br.Operands = []il.Value{left}
	br.Target, br.Target2 = join.ID, rhsBlock.ID
	g.fn.Link(trueBlock, join.ID)
	g.fn.Link(trueBlock, rhsBlock.ID)

	g.cur = rhsBlock
	right := g.lowerExpr(ex.Right)
	rhsVars, rhsEnd := g.vars, g.cur.ID
	bi := g.emit(il.BRANCH)
	bi.Target = join.ID
	g.fn.Link(rhsEnd, join.ID)

	reg := g.fn.NewRegister(types.BoolType, "")
	phi := g.fn.NewInstr(il.PHI)
	phi.Result = &reg
	phi.PhiSources = []il.PhiSource{
		{Block: trueBlock, Value: il.Constant{Val: 1, Ty: types.BoolType}},
		{Block: rhsEnd, Value: right},
	}

	g.cur = join
	join.Append(phi)
	g.vars = mergeAt(g.fn, join, []edge{{block: trueBlock, vars: trueVars}, {block: rhsEnd, vars: rhsVars}})
	return reg
}

func (g *fg) lowerTernary(ex *ast.Ternary) il.Value {
	cond := g.lowerExpr(ex.Cond)
	ty := g.exprInfo(ex).Type
	baseVars := g.vars.clone()

	thenBlock := g.fn.NewBlock("ternary.then")
	elseBlock := g.fn.NewBlock("ternary.else")
	join := g.fn.NewBlock("ternary.join")

	br := g.emit(il.BRANCH_IF_TRUE)
	br.Operands = []il.Value{cond}
	br.Target, br.Target2 = thenBlock.ID, elseBlock.ID
	g.fn.Link(g.cur.ID, thenBlock.ID)
	g.fn.Link(g.cur.ID, elseBlock.ID)

	g.cur, g.vars = thenBlock, baseVars.clone()
	thenVal := g.lowerExpr(ex.Then)
	thenVars, thenEnd := g.vars, g.cur.ID
	tb := g.emit(il.BRANCH)
	tb.Target = join.ID
	g.fn.Link(thenEnd, join.ID)

	g.cur, g.vars = elseBlock, baseVars.clone()
	elseVal := g.lowerExpr(ex.Else)
	elseVars, elseEnd := g.vars, g.cur.ID
	eb := g.emit(il.BRANCH)
	eb.Target = join.ID
	g.fn.Link(elseEnd, join.ID)

	reg := g.fn.NewRegister(ty, "")
	phi := g.fn.NewInstr(il.PHI)
	phi.Result = &reg
	phi.PhiSources = []il.PhiSource{
		{Block: thenEnd, Value: thenVal},
		{Block: elseEnd, Value: elseVal},
	}

	g.cur = join
	join.Append(phi)
	g.vars = mergeAt(g.fn, join, []edge{{block: thenEnd, vars: thenVars}, {block: elseEnd, vars: elseVars}})
	return reg
}

func (g *fg) lowerCall(ex *ast.Call) il.Value {
	id, ok := ex.Callee.(*ast.Ident)
	if !ok {
		g.gen.internalError(ex.Span(), "unsupported call target shape")
		return il.Constant{Ty: types.UnknownType}
	}

	sym, found := g.scope.Lookup(id.Name)
	if !found {
		g.gen.internalError(ex.Span(), "call to undeclared symbol %q", id.Name)
		return il.Constant{Ty: types.UnknownType}
	}

	if sym.SymKind == symbol.Intrinsic {
		return g.lowerIntrinsicCall(id.Name, ex)
	}

	args := make([]il.Value, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = g.lowerExpr(a)
	}

	callee := g.qualifyCallee(sym)
	ft, _ := sym.Type.(*types.FunctionType)
	retType := types.Type(types.VoidType)
	if ft != nil {
		retType = ft.Return
	}

	if retType.Kind() == types.Void {
		i := g.emit(il.CALL_VOID)
		i.Span = ex.Span()
		i.Operands = args
		i.Callee = callee
		return il.Constant{Ty: types.VoidType}
	}

	reg := g.fn.NewRegister(retType, "")
	i := g.emit(il.CALL)
	i.Span = ex.Span()
	i.Operands = args
	i.Result = &reg
	i.Callee = callee
	return reg
}

// lowerIntrinsicCall lowers a call to one of the five fixed built-ins
// directly to the instruction spec.md §4.6/§9 names for it: no CALL/
// CALL_VOID node for peek/poke/hi/lo/len ever reaches later passes.
func (g *fg) lowerIntrinsicCall(name string, ex *ast.Call) il.Value {
	switch name {
	case "peek":
		addr := g.lowerExpr(ex.Args[0])
		return g.emitValue(il.HW_READ, types.ByteType, "", addr)
	case "poke":
		addr := g.lowerExpr(ex.Args[0])
		val := g.lowerExpr(ex.Args[1])
		i := g.emit(il.HW_WRITE)
		i.Span = ex.Span()
		i.Operands = []il.Value{addr, val}
		return il.Constant{Ty: types.VoidType}
	case "hi":
		w := g.lowerExpr(ex.Args[0])
		return g.emitValue(il.SHR, types.ByteType, "", w, il.Constant{Val: 8, Ty: types.WordType})
	case "lo":
		w := g.lowerExpr(ex.Args[0])
		return g.emitValue(il.AND, types.ByteType, "", w, il.Constant{Val: 0xFF, Ty: types.WordType})
	case "len":
		argTy := g.exprInfo(ex.Args[0]).Type
		if arr, ok := argTy.(*types.ArrayType); ok {
			return il.Constant{Val: uint64(arr.Len), Ty: types.WordType}
		}
		g.gen.internalError(ex.Span(), "len() argument is not an array")
		return il.Constant{Ty: types.WordType}
	default:
		g.gen.internalError(ex.Span(), "unknown intrinsic %q", name)
		return il.Constant{Ty: types.UnknownType}
	}
}

func (g *fg) lowerIndex(ex *ast.Index) il.Value {
	ty := g.exprInfo(ex).Type
	idx := g.lowerExpr(ex.Index)

	if id, ok := ex.Array.(*ast.Ident); ok {
		if sym, found := g.scope.Lookup(id.Name); found {
			if _, isArr := sym.Type.(*types.ArrayType); isArr {
				return g.emitValue(il.LOAD_MEM, ty, "", g.arrayLabelFor(sym), idx)
			}
		}
	}

	// A pointer-typed base: its value is a runtime address rather than a
	// compile-time label, used directly as the LOAD_MEM operand.
	base := g.lowerExpr(ex.Array)
	return g.emitValue(il.LOAD_MEM, ty, "", base, idx)
}

func (g *fg) arrayLabelFor(sym *symbol.Symbol) il.Label {
	if sym.OwningScope != nil && sym.OwningScope.ScopeKind == symbol.ModuleScope {
		return g.globalLabel(sym)
	}
	return g.localArrayLabel(sym.Name)
}

// lowerAssign lowers an assignment expression: a plain local/parameter
// target rebinds its SSA value in vars, a global scalar target stores to
// its label, and an array element target (local or global) stores to its
// label at a runtime index (spec.md §4.6 extended 3-operand STORE_MEM
// form, documented in DESIGN.md). An assignment's own value is its result,
// so `a = b = c` and `x = (a = 1)` both work.
func (g *fg) lowerAssign(ex *ast.Assign) il.Value {
	v := g.lowerExpr(ex.Value)

	switch t := ex.Target.(type) {
	case *ast.Ident:
		if sym, ok := g.scope.Lookup(t.Name); ok && sym.OwningScope != nil && sym.OwningScope.ScopeKind == symbol.ModuleScope {
			st := g.emit(il.STORE_MEM)
			st.Span = ex.Span()
			st.Operands = []il.Value{g.globalLabel(sym), v}
			return v
		}
		g.vars[t.Name] = v
		return v

	case *ast.Index:
		idx := g.lowerExpr(t.Index)
		if id, ok := t.Array.(*ast.Ident); ok {
			if sym, found := g.scope.Lookup(id.Name); found {
				st := g.emit(il.STORE_MEM)
				st.Span = ex.Span()
				st.Operands = []il.Value{g.arrayLabelFor(sym), idx, v}
				return v
			}
		}
		base := g.lowerExpr(t.Array)
		st := g.emit(il.STORE_MEM)
		st.Span = ex.Span()
		st.Operands = []il.Value{base, idx, v}
		return v

	default:
		g.gen.internalError(ex.Span(), "unsupported assignment target shape")
		return v
	}
}

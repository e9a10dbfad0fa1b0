package sema

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/symbol"
	"github.com/blend65/blend65c/pkg/token"
	"github.com/blend65/blend65c/pkg/types"
)

// checkFunctionBodies type-checks every function body collected during
// symbol collection, building each one's control-flow graph and call
// edges along the way (spec.md §4.3: a single walk threading type
// checking, CFG construction and call-graph collection together).
func (a *Analyzer) checkFunctionBodies() {
	for _, fi := range a.functions {
		c := newCFG()
		cur := a.walkBlock(c, fi, fi.Decl.Body, c.Entry)
		// Falling off the end of a function body is an implicit return
		// (void functions need no explicit `return;`; non-void functions
		// falling off the end are flagged below).
		c.linkIf(cur, c.Exit)
		if cur >= 0 {
			retType := fi.Symbol.Type.(*types.FunctionType).Return
			if retType.Kind() != types.Void {
				a.diags.Add(diag.New(diag.SReturnTypeMismatch, diag.Error,
					"function \""+fi.Decl.Name+"\" may fall off its end without returning a "+retType.String()+" value",
					fi.Decl.Span()))
			}
		}
		c.MarkReachable()
		fi.CFG = c
	}
}

func (c *CFG) linkIf(from, to int) {
	if from < 0 {
		return
	}
	c.link(from, to)
}

// walkBlock type-checks and threads cur through a brace-delimited
// statement list, returning the node id later statements should chain
// from, or -1 if control can never fall off the end of block (every path
// through it ends in return/break/continue).
func (a *Analyzer) walkBlock(c *CFG, fi *FuncInfo, block *ast.Block, cur int) int {
	return a.walkStmts(c, fi, block.Stmts, cur)
}

func (a *Analyzer) walkStmts(c *CFG, fi *FuncInfo, stmts []ast.Statement, cur int) int {
	deadAt := -1
	for i, stmt := range stmts {
		if cur < 0 && deadAt < 0 {
			deadAt = i
		}
		cur = a.walkStmt(c, fi, stmt, cur)
	}
	if deadAt >= 0 {
		a.diags.Add(diag.New(diag.WUnreachableCode, diag.Warning, "unreachable code", stmts[deadAt].Span()))
	}
	return cur
}

// walkStmt type-checks a single statement, links it into the graph from
// cur (if cur is live), and returns the node later statements should
// chain from (-1 if this statement never falls through).
func (a *Analyzer) walkStmt(c *CFG, fi *FuncInfo, stmt ast.Statement, cur int) int {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return a.walkVarDecl(c, fi, s, cur)
	case *ast.ExprStmt:
		node := c.add(NodeStatement, s.Span())
		c.linkIf(cur, node)
		a.checkExpr(fi, s.Expr)
		return node
	case *ast.Block:
		return a.walkBlock(c, fi, s, cur)
	case *ast.IfStmt:
		return a.walkIf(c, fi, s, cur)
	case *ast.WhileStmt:
		return a.walkWhile(c, fi, s, cur)
	case *ast.DoWhileStmt:
		return a.walkDoWhile(c, fi, s, cur)
	case *ast.ForStmt:
		return a.walkFor(c, fi, s, cur)
	case *ast.SwitchStmt:
		return a.walkSwitch(c, fi, s, cur)
	case *ast.BreakStmt:
		node := c.add(NodeBreak, s.Span())
		c.linkIf(cur, node)
		if target, ok := a.breakTarget(); ok {
			c.linkIf(node, target)
		}
		return -1
	case *ast.ContinueStmt:
		node := c.add(NodeContinue, s.Span())
		c.linkIf(cur, node)
		if target, ok := a.continueTarget(); ok {
			c.linkIf(node, target)
		}
		return -1
	case *ast.ReturnStmt:
		return a.walkReturn(c, fi, s, cur)
	default:
		node := c.add(NodeStatement, stmt.Span())
		c.linkIf(cur, node)
		return node
	}
}

func (a *Analyzer) walkVarDecl(c *CFG, fi *FuncInfo, s *ast.VarDecl, cur int) int {
	node := c.add(NodeStatement, s.Span())
	c.linkIf(cur, node)

	var declared types.Type
	if s.TypeAnn != nil {
		declared = a.resolveTypeAnnotation(s.TypeAnn)
	}

	var initInfo ExprInfo
	if s.Init != nil {
		initInfo = a.checkExpr(fi, s.Init)
		if declared == nil {
			declared = initInfo.Type
		} else if !assignableOrUnknown(initInfo.Type, declared) {
			a.diags.Add(diag.New(diag.SNotAssignable, diag.Error,
				"cannot assign a value of type "+initInfo.Type.String()+" to a variable of type "+declared.String(),
				s.Init.Span()))
		}
	} else if declared == nil {
		declared = types.UnknownType
	}

	kind := symbol.Variable
	if s.IsConst {
		kind = symbol.Constant
	}

	sym := &symbol.Symbol{
		Name:     s.Name,
		SymKind:  kind,
		Type:     declared,
		DeclSpan: s.Span(),
		IsConst:  s.IsConst,
	}
	if s.IsConst && initInfo.Const {
		sym.Initial = symbol.ConstValue{Present: true, Value: initInfo.Value}
	}

	if prior, ok := fi.Scope.Declare(sym); !ok {
		a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
			"\""+s.Name+"\" is already declared in this function", s.Span()).
			WithRelated(prior.DeclSpan, "first declared here"))
	}

	return node
}

func (a *Analyzer) walkIf(c *CFG, fi *FuncInfo, s *ast.IfStmt, cur int) int {
	condInfo := a.checkExpr(fi, s.Cond)
	requireBool(a, condInfo.Type, s.Cond.Span())

	branch := c.add(NodeBranch, s.Span())
	c.linkIf(cur, branch)

	thenEnd := a.walkBlock(c, fi, s.Then, branch)

	elseEnd := branch
	if s.ElseBranch != nil {
		elseEnd = a.walkStmt(c, fi, s.ElseBranch, branch)
	}

	if thenEnd < 0 && elseEnd < 0 {
		return -1
	}

	join := c.add(NodeStatement, source.Span{})
	c.linkIf(thenEnd, join)
	c.linkIf(elseEnd, join)
	return join
}

func (a *Analyzer) walkWhile(c *CFG, fi *FuncInfo, s *ast.WhileStmt, cur int) int {
	loopNode := c.add(NodeLoop, s.Span())
	c.linkIf(cur, loopNode)

	condInfo := a.checkExpr(fi, s.Cond)
	requireBool(a, condInfo.Type, s.Cond.Span())

	after := c.add(NodeStatement, source.Span{})
	a.pushControl(controlFrame{kind: controlLoop, breakTarget: after, continueTarget: loopNode})
	bodyEnd := a.walkBlock(c, fi, s.Body, loopNode)
	a.popControl()

	c.linkIf(bodyEnd, loopNode)
	c.link(loopNode, after)
	return after
}

func (a *Analyzer) walkDoWhile(c *CFG, fi *FuncInfo, s *ast.DoWhileStmt, cur int) int {
	bodyEntry := c.add(NodeStatement, s.Span())
	c.linkIf(cur, bodyEntry)

	condNode := c.add(NodeLoop, source.Span{})
	after := c.add(NodeStatement, source.Span{})

	a.pushControl(controlFrame{kind: controlLoop, breakTarget: after, continueTarget: condNode})
	bodyEnd := a.walkBlock(c, fi, s.Body, bodyEntry)
	a.popControl()

	c.linkIf(bodyEnd, condNode)

	condInfo := a.checkExpr(fi, s.Cond)
	requireBool(a, condInfo.Type, s.Cond.Span())

	c.link(condNode, bodyEntry)
	c.link(condNode, after)
	return after
}

func (a *Analyzer) walkFor(c *CFG, fi *FuncInfo, s *ast.ForStmt, cur int) int {
	startInfo := a.checkExpr(fi, s.Start)
	endInfo := a.checkExpr(fi, s.End)
	requireNumeric(a, startInfo.Type, s.Start.Span())
	requireNumeric(a, endInfo.Type, s.End.Span())

	loopVarType := types.Widen(startInfo.Type, endInfo.Type)
	sym := &symbol.Symbol{
		Name:     s.Name,
		SymKind:  symbol.Variable,
		Type:     loopVarType,
		DeclSpan: s.Span(),
	}
	if prior, ok := fi.Scope.Declare(sym); !ok {
		a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
			"\""+s.Name+"\" is already declared in this function", s.Span()).
			WithRelated(prior.DeclSpan, "first declared here"))
	}

	loopNode := c.add(NodeLoop, s.Span())
	c.linkIf(cur, loopNode)

	after := c.add(NodeStatement, source.Span{})
	a.pushControl(controlFrame{kind: controlLoop, breakTarget: after, continueTarget: loopNode})
	bodyEnd := a.walkBlock(c, fi, s.Body, loopNode)
	a.popControl()

	c.linkIf(bodyEnd, loopNode)
	c.link(loopNode, after)
	return after
}

func (a *Analyzer) walkSwitch(c *CFG, fi *FuncInfo, s *ast.SwitchStmt, cur int) int {
	scrutInfo := a.checkExpr(fi, s.Scrutinee)

	branch := c.add(NodeBranch, s.Span())
	c.linkIf(cur, branch)

	after := c.add(NodeStatement, source.Span{})
	a.pushControl(controlFrame{kind: controlSwitch, breakTarget: after})

	seen := map[uint64]source.Span{}
	for _, cs := range s.Cases {
		valInfo := a.checkExpr(fi, cs.Value)
		if !compatibleForComparison(valInfo.Type, scrutInfo.Type) &&
			valInfo.Type.Kind() != types.Unknown && scrutInfo.Type.Kind() != types.Unknown {
			a.diags.Add(diag.New(diag.STypeMismatch, diag.Error,
				"case value type "+valInfo.Type.String()+" does not match switch scrutinee type "+scrutInfo.Type.String(),
				cs.Value.Span()))
		}
		if valInfo.Const {
			if prior, dup := seen[valInfo.Value]; dup {
				a.diags.Add(diag.New(diag.SDuplicateCaseValue, diag.Error,
					"duplicate case value", cs.Value.Span()).
					WithRelated(prior, "first used here"))
			} else {
				seen[valInfo.Value] = cs.Value.Span()
			}
		}

		entry := c.add(NodeStatement, cs.Span())
		c.link(branch, entry)
		end := a.walkStmts(c, fi, cs.Body, entry)
		c.linkIf(end, after)
	}

	if s.Default != nil {
		entry := c.add(NodeStatement, s.Span())
		c.link(branch, entry)
		end := a.walkStmts(c, fi, s.Default, entry)
		c.linkIf(end, after)
	} else {
		c.link(branch, after)
	}

	a.popControl()
	return after
}

func (a *Analyzer) walkReturn(c *CFG, fi *FuncInfo, s *ast.ReturnStmt, cur int) int {
	node := c.add(NodeReturn, s.Span())
	c.linkIf(cur, node)
	c.link(node, c.Exit)

	retType := fi.Symbol.Type.(*types.FunctionType).Return
	if s.Value == nil {
		if retType.Kind() != types.Void {
			a.diags.Add(diag.New(diag.SReturnTypeMismatch, diag.Error,
				"function \""+fi.Decl.Name+"\" must return a value of type "+retType.String(), s.Span()))
		}
		return -1
	}

	valInfo := a.checkExpr(fi, s.Value)
	if retType.Kind() == types.Void {
		a.diags.Add(diag.New(diag.SReturnTypeMismatch, diag.Error,
			"function \""+fi.Decl.Name+"\" is declared void and cannot return a value", s.Value.Span()))
	} else if !assignableOrUnknown(valInfo.Type, retType) {
		a.diags.Add(diag.New(diag.SReturnTypeMismatch, diag.Error,
			"cannot return a value of type "+valInfo.Type.String()+" from a function declared to return "+retType.String(),
			s.Value.Span()))
	}
	return -1
}

func (a *Analyzer) pushControl(f controlFrame) { a.control = append(a.control, f) }
func (a *Analyzer) popControl()                { a.control = a.control[:len(a.control)-1] }

func (a *Analyzer) breakTarget() (int, bool) {
	for i := len(a.control) - 1; i >= 0; i-- {
		return a.control[i].breakTarget, true
	}
	return 0, false
}

func (a *Analyzer) continueTarget() (int, bool) {
	for i := len(a.control) - 1; i >= 0; i-- {
		if a.control[i].kind == controlLoop {
			return a.control[i].continueTarget, true
		}
	}
	return 0, false
}

func requireBool(a *Analyzer, t types.Type, span source.Span) {
	if t.Kind() != types.Bool && t.Kind() != types.Unknown {
		a.diags.Add(diag.New(diag.STypeMismatch, diag.Error, "expected a bool expression, found "+t.String(), span))
	}
}

func requireNumeric(a *Analyzer, t types.Type, span source.Span) {
	if !types.IsNumeric(t) && t.Kind() != types.Unknown {
		a.diags.Add(diag.New(diag.STypeMismatch, diag.Error, "expected a numeric (byte or word) expression, found "+t.String(), span))
	}
}

// checkExpr type-checks e in the context of function fi (nil for
// module-level initializers), records its ExprInfo, and returns it.
func (a *Analyzer) checkExpr(fi *FuncInfo, e ast.Expression) ExprInfo {
	var info ExprInfo
	switch ex := e.(type) {
	case *ast.NumberLit:
		info = ExprInfo{Type: types.NarrowestFor(int(ex.Value)), Const: true, Value: ex.Value}
		if ex.Value > 0xFFFF {
			a.diags.Add(diag.New(diag.LNumericLiteralOverflow, diag.Error, "numeric literal does not fit in a word", ex.Span()))
		}

	case *ast.BoolLit:
		v := uint64(0)
		if ex.Value {
			v = 1
		}
		info = ExprInfo{Type: types.BoolType, Const: true, Value: v}

	case *ast.StringLit:
		info = ExprInfo{Type: types.NewInferredArray(types.ByteType), Const: false}

	case *ast.Ident:
		info = a.checkIdent(fi, ex)

	case *ast.Unary:
		info = a.checkUnary(fi, ex)

	case *ast.Binary:
		info = a.checkBinary(fi, ex)

	case *ast.Ternary:
		info = a.checkTernary(fi, ex)

	case *ast.Call:
		info = a.checkCall(fi, ex)

	case *ast.Index:
		info = a.checkIndex(fi, ex)

	case *ast.Member:
		info = a.checkMember(fi, ex)

	case *ast.Assign:
		info = a.checkAssign(fi, ex)

	case *ast.ArrayLit:
		info = a.checkArrayLit(fi, ex)

	default:
		info = ExprInfo{Type: types.UnknownType}
	}

	a.setExpr(e, info)
	return info
}

func (a *Analyzer) lookup(fi *FuncInfo, name string) (*symbol.Symbol, bool) {
	if fi != nil {
		return fi.Scope.Lookup(name)
	}
	return a.module.Lookup(name)
}

func (a *Analyzer) checkIdent(fi *FuncInfo, ex *ast.Ident) ExprInfo {
	sym, ok := a.lookup(fi, ex.Name)
	if !ok {
		a.diags.Add(diag.New(diag.SUndefinedVariable, diag.Error, "undefined name \""+ex.Name+"\"", ex.Span()))
		return ExprInfo{Type: types.UnknownType}
	}

	sym.UseCount++
	if fi != nil && len(a.control) > 0 {
		depth := loopNestingDepth(a.control)
		if depth > sym.LoopDepth {
			sym.LoopDepth = depth
		}
	}

	info := ExprInfo{Type: sym.Type}
	if sym.IsConst && sym.Initial.Present {
		info.Const = true
		info.Value = sym.Initial.Value
	}
	return info
}

func loopNestingDepth(control []controlFrame) int {
	depth := 0
	for _, f := range control {
		if f.kind == controlLoop {
			depth++
		}
	}
	return depth
}

func (a *Analyzer) checkUnary(fi *FuncInfo, ex *ast.Unary) ExprInfo {
	operand := a.checkExpr(fi, ex.Operand)
	switch ex.Op {
	case token.BANG:
		requireBool(a, operand.Type, ex.Operand.Span())
		if operand.Const {
			return ExprInfo{Type: types.BoolType, Const: true, Value: boolNot(operand.Value)}
		}
		return ExprInfo{Type: types.BoolType}

	case token.TILDE:
		requireNumeric(a, operand.Type, ex.Operand.Span())
		return ExprInfo{Type: operand.Type}

	case token.MINUS:
		requireNumeric(a, operand.Type, ex.Operand.Span())
		if _, isLit := ex.Operand.(*ast.NumberLit); isLit {
			a.diags.Add(diag.New(diag.SNegativeLiteral, diag.Error,
				"byte and word are unsigned; a literal cannot be negated", ex.Span()))
		}
		return ExprInfo{Type: operand.Type}

	default:
		return ExprInfo{Type: types.UnknownType}
	}
}

func boolNot(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return 0
}

func (a *Analyzer) checkBinary(fi *FuncInfo, ex *ast.Binary) ExprInfo {
	left := a.checkExpr(fi, ex.Left)
	right := a.checkExpr(fi, ex.Right)

	switch ex.Op {
	case token.PLUS, token.MINUS, token.STAR, token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR:
		requireNumeric(a, left.Type, ex.Left.Span())
		requireNumeric(a, right.Type, ex.Right.Span())
		return ExprInfo{Type: types.Widen(left.Type, right.Type)}

	case token.SLASH, token.PERCENT:
		requireNumeric(a, left.Type, ex.Left.Span())
		requireNumeric(a, right.Type, ex.Right.Span())
		if right.Const && right.Value == 0 {
			a.diags.Add(diag.New(diag.SDivisionByZero, diag.Error, "division by a constant zero", ex.Right.Span()))
		}
		return ExprInfo{Type: types.Widen(left.Type, right.Type)}

	case token.EQEQ, token.BANGEQ:
		if !compatibleForComparison(left.Type, right.Type) {
			a.diags.Add(diag.New(diag.STypeMismatch, diag.Error,
				"cannot compare "+left.Type.String()+" and "+right.Type.String(), ex.Span()))
		}
		return ExprInfo{Type: types.BoolType}

	case token.LT, token.LTEQ, token.GT, token.GTEQ:
		requireNumeric(a, left.Type, ex.Left.Span())
		requireNumeric(a, right.Type, ex.Right.Span())
		return ExprInfo{Type: types.BoolType}

	case token.AMPAMP, token.PIPEPIPE:
		requireBool(a, left.Type, ex.Left.Span())
		requireBool(a, right.Type, ex.Right.Span())
		return ExprInfo{Type: types.BoolType}

	default:
		return ExprInfo{Type: types.UnknownType}
	}
}

func compatibleForComparison(a, b types.Type) bool {
	if types.IsNumeric(a) && types.IsNumeric(b) {
		return true
	}
	return types.Equal(a, b)
}

func (a *Analyzer) checkTernary(fi *FuncInfo, ex *ast.Ternary) ExprInfo {
	cond := a.checkExpr(fi, ex.Cond)
	requireBool(a, cond.Type, ex.Cond.Span())

	then := a.checkExpr(fi, ex.Then)
	els := a.checkExpr(fi, ex.Else)

	if types.IsNumeric(then.Type) && types.IsNumeric(els.Type) {
		return ExprInfo{Type: types.Widen(then.Type, els.Type)}
	}
	if !types.Equal(then.Type, els.Type) && then.Type.Kind() != types.Unknown && els.Type.Kind() != types.Unknown {
		a.diags.Add(diag.New(diag.STypeMismatch, diag.Error,
			"ternary branches have incompatible types "+then.Type.String()+" and "+els.Type.String(), ex.Span()))
	}
	return ExprInfo{Type: then.Type}
}

func (a *Analyzer) checkCall(fi *FuncInfo, ex *ast.Call) ExprInfo {
	argInfos := make([]ExprInfo, len(ex.Args))
	for i, arg := range ex.Args {
		argInfos[i] = a.checkExpr(fi, arg)
	}

	callee, ok := ex.Callee.(*ast.Ident)
	if !ok {
		a.checkExpr(fi, ex.Callee)
		a.diags.Add(diag.New(diag.SNotAFunction, diag.Error, "expression is not callable", ex.Callee.Span()))
		return ExprInfo{Type: types.UnknownType}
	}

	sym, ok := a.lookup(fi, callee.Name)
	if !ok {
		a.diags.Add(diag.New(diag.SUndefinedVariable, diag.Error, "undefined name \""+callee.Name+"\"", callee.Span()))
		return ExprInfo{Type: types.UnknownType}
	}
	a.setExpr(callee, ExprInfo{Type: sym.Type})

	if sym.SymKind == symbol.Intrinsic && callee.Name == "len" {
		if len(ex.Args) != 1 {
			a.diags.Add(diag.New(diag.SArityMismatch, diag.Error, "len expects exactly one argument", ex.Span()))
		} else if argInfos[0].Type.Kind() != types.Array && argInfos[0].Type.Kind() != types.Unknown {
			a.diags.Add(diag.New(diag.SNotAnArray, diag.Error, "len's argument must be an array", ex.Args[0].Span()))
		}
		return ExprInfo{Type: types.WordType}
	}

	if fi != nil {
		fi.Callees = append(fi.Callees, CallEdge{Callee: sym, Site: ex.Span()})
	}

	if sym.SymKind == symbol.Imported {
		// Cross-module resolution (pkg/module) has not run yet from a
		// single file's perspective: sym is still an untyped placeholder,
		// so arity/assignability are deferred rather than flagged here.
		return ExprInfo{Type: types.UnknownType}
	}

	if sym.SymKind != symbol.Function && sym.SymKind != symbol.Intrinsic {
		a.diags.Add(diag.New(diag.SNotAFunction, diag.Error, "\""+callee.Name+"\" is not a function", ex.Callee.Span()))
		return ExprInfo{Type: types.UnknownType}
	}

	if len(argInfos) != len(sym.Parameters) {
		a.diags.Add(diag.New(diag.SArityMismatch, diag.Error,
			"wrong number of arguments", ex.Span()))
	} else {
		for i, info := range argInfos {
			if !assignableOrUnknown(info.Type, sym.Parameters[i]) {
				a.diags.Add(diag.New(diag.SNotAssignable, diag.Error,
					"argument type "+info.Type.String()+" is not assignable to parameter type "+sym.Parameters[i].String(),
					ex.Args[i].Span()))
			}
		}
	}

	ft, ok := sym.Type.(*types.FunctionType)
	if !ok {
		return ExprInfo{Type: types.UnknownType}
	}
	return ExprInfo{Type: ft.Return}
}

// assignableOrUnknown reports whether src is assignable to dst, treating
// either side being Unknown as "not yet resolvable" rather than a type
// error: cross-module import types are still placeholders during a single
// file's semantic analysis (spec.md §5; pkg/module fixes them up once
// every module in a compilation is registered).
func assignableOrUnknown(src, dst types.Type) bool {
	if src.Kind() == types.Unknown || dst.Kind() == types.Unknown {
		return true
	}
	return types.AssignableTo(src, dst)
}

func (a *Analyzer) checkIndex(fi *FuncInfo, ex *ast.Index) ExprInfo {
	arr := a.checkExpr(fi, ex.Array)
	idx := a.checkExpr(fi, ex.Index)
	requireNumeric(a, idx.Type, ex.Index.Span())

	switch arr.Type.Kind() {
	case types.Array:
		at := arr.Type.(*types.ArrayType)
		if idx.Const && !at.Inferred && (idx.Value >= uint64(at.Len)) {
			a.diags.Add(diag.New(diag.SIndexOutOfRange, diag.Error, "index out of range", ex.Index.Span()))
		}
		return ExprInfo{Type: at.Elem}
	case types.Pointer:
		return ExprInfo{Type: arr.Type.(*types.PointerType).Elem}
	case types.Unknown:
		return ExprInfo{Type: types.UnknownType}
	default:
		a.diags.Add(diag.New(diag.SNotAnArray, diag.Error, "cannot index a value of type "+arr.Type.String(), ex.Array.Span()))
		return ExprInfo{Type: types.UnknownType}
	}
}

func (a *Analyzer) checkMember(fi *FuncInfo, ex *ast.Member) ExprInfo {
	recvIdent, ok := ex.Receiver.(*ast.Ident)
	if ok {
		if sym, found := a.lookup(fi, recvIdent.Name); found && sym.SymKind == symbol.EnumType {
			a.setExpr(recvIdent, ExprInfo{Type: sym.Type})
			for _, m := range sym.Members {
				if m.Name == ex.Name {
					return ExprInfo{Type: types.ByteType, Const: true, Value: m.Value}
				}
			}
			a.diags.Add(diag.New(diag.SUndefinedVariable, diag.Error,
				"enum \""+recvIdent.Name+"\" has no member \""+ex.Name+"\"", ex.Span()))
			return ExprInfo{Type: types.UnknownType}
		}
	}

	a.checkExpr(fi, ex.Receiver)
	a.diags.Add(diag.New(diag.SUndefinedVariable, diag.Error,
		"\""+ex.Name+"\" is not a member of this expression", ex.Span()))
	return ExprInfo{Type: types.UnknownType}
}

func (a *Analyzer) checkAssign(fi *FuncInfo, ex *ast.Assign) ExprInfo {
	valInfo := a.checkExpr(fi, ex.Value)

	switch target := ex.Target.(type) {
	case *ast.Ident:
		sym, ok := a.lookup(fi, target.Name)
		if !ok {
			a.diags.Add(diag.New(diag.SUndefinedVariable, diag.Error, "undefined name \""+target.Name+"\"", target.Span()))
			return ExprInfo{Type: types.UnknownType}
		}
		a.setExpr(target, ExprInfo{Type: sym.Type})
		if sym.IsConst {
			a.diags.Add(diag.New(diag.SConstAssignment, diag.Error, "cannot assign to const \""+target.Name+"\"", ex.Span()))
		} else if !assignableOrUnknown(valInfo.Type, sym.Type) {
			a.diags.Add(diag.New(diag.SNotAssignable, diag.Error,
				"cannot assign a value of type "+valInfo.Type.String()+" to \""+target.Name+"\" of type "+sym.Type.String(),
				ex.Span()))
		}
		return ExprInfo{Type: sym.Type}

	case *ast.Index, *ast.Member:
		targetInfo := a.checkExpr(fi, target)
		if sym, ok := baseIdentSymbol(a, fi, target); ok && sym.IsConst {
			a.diags.Add(diag.New(diag.SConstAssignment, diag.Error, "cannot assign into const \""+sym.Name+"\"", ex.Span()))
		} else if !assignableOrUnknown(valInfo.Type, targetInfo.Type) {
			a.diags.Add(diag.New(diag.SNotAssignable, diag.Error,
				"cannot assign a value of type "+valInfo.Type.String()+" here", ex.Span()))
		}
		return ExprInfo{Type: targetInfo.Type}

	default:
		a.diags.Add(diag.New(diag.SNotAssignable, diag.Error, "invalid assignment target", ex.Target.Span()))
		return ExprInfo{Type: types.UnknownType}
	}
}

// baseIdentSymbol walks down through Index/Member chains to the underlying
// Ident, so assigning into `arr[i]` can still be checked against whatever
// symbol `arr` names.
func baseIdentSymbol(a *Analyzer, fi *FuncInfo, e ast.Expression) (*symbol.Symbol, bool) {
	for {
		switch ex := e.(type) {
		case *ast.Ident:
			return a.lookup(fi, ex.Name)
		case *ast.Index:
			e = ex.Array
		case *ast.Member:
			e = ex.Receiver
		default:
			return nil, false
		}
	}
}

func (a *Analyzer) checkArrayLit(fi *FuncInfo, ex *ast.ArrayLit) ExprInfo {
	if len(ex.Elements) == 0 {
		return ExprInfo{Type: types.NewArray(types.UnknownType, 0)}
	}

	elem := a.checkExpr(fi, ex.Elements[0]).Type
	for _, e := range ex.Elements[1:] {
		info := a.checkExpr(fi, e)
		if types.IsNumeric(elem) && types.IsNumeric(info.Type) {
			elem = types.Widen(elem, info.Type)
			continue
		}
		if !types.Equal(elem, info.Type) {
			a.diags.Add(diag.New(diag.STypeMismatch, diag.Error,
				"array literal elements have mismatched types "+elem.String()+" and "+info.Type.String(), e.Span()))
		}
	}
	return ExprInfo{Type: types.NewArray(elem, len(ex.Elements))}
}

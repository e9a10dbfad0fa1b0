package ilgen

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/types"
)

// lowerBlock lowers every statement of b in order, stopping early if a
// statement already terminated the current block (dead code after a
// return/break/continue is never reached, so it is simply not lowered).
func (g *fg) lowerBlock(b *ast.Block) {
	if b == nil {
		return
	}
	g.lowerStmts(b.Stmts)
}

func (g *fg) lowerStmts(stmts []ast.Statement) {
	for _, s := range stmts {
		if g.cur.Terminator() != nil {
			return
		}
		g.lowerStmt(s)
	}
}

func (g *fg) lowerStmt(s ast.Statement) {
	switch st := s.(type) {
	case nil:
	case *ast.Block:
		g.lowerBlock(st)
	case *ast.VarDecl:
		g.lowerLocalVarDecl(st)
	case *ast.ExprStmt:
		g.lowerExpr(st.Expr)
	case *ast.IfStmt:
		g.lowerIf(st)
	case *ast.WhileStmt:
		g.lowerWhile(st)
	case *ast.DoWhileStmt:
		g.lowerDoWhile(st)
	case *ast.ForStmt:
		g.lowerFor(st)
	case *ast.SwitchStmt:
		g.lowerSwitch(st)
	case *ast.BreakStmt:
		g.lowerBreakStmt(st)
	case *ast.ContinueStmt:
		g.lowerContinueStmt(st)
	case *ast.ReturnStmt:
		g.lowerReturnStmt(st)
	}
}

// lowerLocalVarDecl lowers a `let`/`const` appearing as a statement inside a
// function body. An array-typed local is never tracked in vars: it is
// addressed through memory for the rest of the function (spec.md §4.6),
// just like a module-scope global.
func (g *fg) lowerLocalVarDecl(vd *ast.VarDecl) {
	if _, isArray := declaredType(g, vd).(*types.ArrayType); isArray {
		g.lowerLocalArrayDecl(vd)
		return
	}
	if vd.Init == nil {
		g.vars[vd.Name] = il.Constant{Val: 0, Ty: declaredType(g, vd)}
		return
	}
	g.vars[vd.Name] = g.lowerExpr(vd.Init)
}

func (g *fg) lowerLocalArrayDecl(vd *ast.VarDecl) {
	label := g.localArrayLabel(vd.Name)
	arr, _ := declaredType(g, vd).(*types.ArrayType)
	if vd.Init == nil || arr == nil {
		return
	}
	switch lit := vd.Init.(type) {
	case *ast.ArrayLit:
		for i, elem := range lit.Elements {
			v := g.lowerExpr(elem)
			idx := il.Constant{Val: uint64(i), Ty: types.WordType}
			st := g.emit(il.STORE_MEM)
			st.Operands = []il.Value{label, idx, v}
		}
	case *ast.StringLit:
		for i := 0; i < len(lit.Value); i++ {
			idx := il.Constant{Val: uint64(i), Ty: types.WordType}
			v := il.Constant{Val: uint64(lit.Value[i]), Ty: types.ByteType}
			st := g.emit(il.STORE_MEM)
			st.Operands = []il.Value{label, idx, v}
		}
	}
}

// declaredType resolves a VarDecl's static type via the function's scope
// rather than re-deriving it from the (possibly omitted) type annotation:
// pkg/sema already resolved and recorded it on the symbol.
func declaredType(g *fg, vd *ast.VarDecl) types.Type {
	if sym, ok := g.scope.Lookup(vd.Name); ok {
		return sym.Type
	}
	return types.UnknownType
}

func (g *fg) lowerIf(s *ast.IfStmt) {
	cond := g.lowerExpr(s.Cond)

	thenBlock, thenEdge := g.lowerBranch("if.then", g.vars, func(sub *fg) {
		sub.lowerBlock(s.Then)
	})

	hasElse := s.ElseBranch != nil
	var elseBlock *il.Block
	var elseEdge *edge
	if hasElse {
		elseBlock, elseEdge = g.lowerBranch("if.else", g.vars, func(sub *fg) {
			sub.lowerStmt(s.ElseBranch)
		})
	}

	br := g.emit(il.BRANCH_IF_TRUE)
	br.Span = s.Cond.Span()
	br.Operands = []il.Value{cond}
	br.Target = thenBlock.ID
	g.fn.Link(g.cur.ID, thenBlock.ID)

	if hasElse {
		br.Target2 = elseBlock.ID
		g.fn.Link(g.cur.ID, elseBlock.ID)
	}

	needsJoin := thenEdge != nil || (hasElse && elseEdge != nil) || !hasElse
	if !needsJoin {
		// Every path out of the if terminates on its own; nothing falls
		// through, so no join block or merge is needed.
		return
	}

	join := g.fn.NewBlock("if.join")
	var edges []edge

	if thenEdge != nil {
		branchTo(g.fn, *thenEdge, join.ID)
		edges = append(edges, *thenEdge)
	}

	if hasElse {
		if elseEdge != nil {
			branchTo(g.fn, *elseEdge, join.ID)
			edges = append(edges, *elseEdge)
		}
	} else {
		br.Target2 = join.ID
		g.fn.Link(g.cur.ID, join.ID)
		edges = append(edges, edge{block: g.cur.ID, vars: g.vars})
	}

	g.vars = mergeAt(g.fn, join, edges)
	g.cur = join
}

// branchTo appends an unconditional BRANCH from e's block to target,
// assuming e.block's last instruction is not already a terminator (the
// caller only calls this for edges lowerBranch reported as fallen through).
func branchTo(fn *il.Function, e edge, target int) {
	b := fn.Block(e.block)
	bi := fn.NewInstr(il.BRANCH)
	bi.Target = target
	b.Append(bi)
	fn.Link(e.block, target)
}

func (g *fg) lowerWhile(s *ast.WhileStmt) {
	names := assignedNames(s.Body)
	preBlock := g.cur.ID
	preVars := g.vars

	header := g.fn.NewBlock("while.header")
	jmp := g.emit(il.BRANCH)
	jmp.Target = header.ID
	g.fn.Link(preBlock, header.ID)

	headerVars, phis := seedLoopPhis(g.fn, header, names, preVars, preBlock)

	g.cur = header
	g.vars = headerVars
	cond := g.lowerExpr(s.Cond)
	headerVars = g.vars // cond lowering may have touched vars (e.g. a nested assign)

	body := g.fn.NewBlock("while.body")
	after := g.fn.NewBlock("while.after")

	br := g.emit(il.BRANCH_IF_TRUE)
	br.Span = s.Cond.Span()
	br.Operands = []il.Value{cond}
	br.Target = body.ID
	br.Target2 = after.ID
	g.fn.Link(header.ID, body.ID)
	g.fn.Link(header.ID, after.ID)

	bodyFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: body, vars: headerVars.clone(), frames: g.frames}
	bodyFG.pushFrame(frameLoop, header.ID, after.ID)
	bodyFG.lowerBlock(s.Body)
	loopFrame := bodyFG.popFrame()

	var backEdges []edge
	if bodyFG.cur.Terminator() == nil {
		bi := bodyFG.emit(il.BRANCH)
		bi.Target = header.ID
		g.fn.Link(bodyFG.cur.ID, header.ID)
		backEdges = append(backEdges, edge{block: bodyFG.cur.ID, vars: bodyFG.vars})
	}
	for _, ce := range loopFrame.continueEdges {
		g.fn.Link(ce.block, header.ID)
	}
	backEdges = append(backEdges, loopFrame.continueEdges...)
	patchLoopPhis(phis, headerVars, backEdges)

	afterEdges := append([]edge{{block: header.ID, vars: headerVars}}, loopFrame.breakEdges...)
	g.vars = mergeAt(g.fn, after, afterEdges)
	g.cur = after
}

func (g *fg) lowerDoWhile(s *ast.DoWhileStmt) {
	names := assignedNames(s.Body)
	preBlock := g.cur.ID
	preVars := g.vars

	body := g.fn.NewBlock("dowhile.body")
	jmp := g.emit(il.BRANCH)
	jmp.Target = body.ID
	g.fn.Link(preBlock, body.ID)

	headerVars, phis := seedLoopPhis(g.fn, body, names, preVars, preBlock)
	condBlock := g.fn.NewBlock("dowhile.cond")

	bodyFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: body, vars: headerVars.clone(), frames: g.frames}
	bodyFG.pushFrame(frameLoop, condBlock.ID, condBlock.ID)
	bodyFG.lowerBlock(s.Body)
	loopFrame := bodyFG.popFrame()

	var condEdges []edge
	if bodyFG.cur.Terminator() == nil {
		bi := bodyFG.emit(il.BRANCH)
		bi.Target = condBlock.ID
		g.fn.Link(bodyFG.cur.ID, condBlock.ID)
		condEdges = append(condEdges, edge{block: bodyFG.cur.ID, vars: bodyFG.vars})
	}
	for _, ce := range loopFrame.continueEdges {
		g.fn.Link(ce.block, condBlock.ID)
	}
	condEdges = append(condEdges, loopFrame.continueEdges...)

	condFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: condBlock, vars: mergeAt(g.fn, condBlock, condEdges)}
	cond := condFG.lowerExpr(s.Cond)

	after := g.fn.NewBlock("dowhile.after")
	br := condFG.emit(il.BRANCH_IF_TRUE)
	br.Span = s.Cond.Span()
	br.Operands = []il.Value{cond}
	br.Target = body.ID
	br.Target2 = after.ID
	g.fn.Link(condBlock.ID, body.ID)
	g.fn.Link(condBlock.ID, after.ID)

	patchLoopPhis(phis, headerVars, []edge{{block: condBlock.ID, vars: condFG.vars}})

	afterEdges := append([]edge{{block: condBlock.ID, vars: condFG.vars}}, loopFrame.breakEdges...)
	g.vars = mergeAt(g.fn, after, afterEdges)
	g.cur = after
}

// lowerFor lowers the only supported for-loop form, `for (id = start to
// end) body`: inclusive of both endpoints, ascending, step +1 (neither
// spec.md nor the original implementation pin the exact bound semantics
// down, documented as a deliberate choice in DESIGN.md).
func (g *fg) lowerFor(s *ast.ForStmt) {
	startVal := g.lowerExpr(s.Start)
	endVal := g.lowerExpr(s.End)

	names := assignedNames(s.Body)
	names[s.Name] = true

	preBlock := g.cur.ID
	preVars := g.vars.clone()
	preVars[s.Name] = startVal

	header := g.fn.NewBlock("for.header")
	jmp := g.emit(il.BRANCH)
	jmp.Target = header.ID
	g.fn.Link(preBlock, header.ID)

	headerVars, phis := seedLoopPhis(g.fn, header, names, preVars, preBlock)
	loopVar := headerVars[s.Name]

	g.cur = header
	g.vars = headerVars
	cmp := g.emitValue(il.CMP_LE, types.BoolType, "", loopVar, endVal)

	body := g.fn.NewBlock("for.body")
	after := g.fn.NewBlock("for.after")
	br := g.emit(il.BRANCH_IF_TRUE)
	br.Operands = []il.Value{cmp}
	br.Target = body.ID
	br.Target2 = after.ID
	g.fn.Link(header.ID, body.ID)
	g.fn.Link(header.ID, after.ID)

	inc := g.fn.NewBlock("for.inc")

	bodyFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: body, vars: headerVars.clone(), frames: g.frames}
	bodyFG.pushFrame(frameLoop, inc.ID, after.ID)
	bodyFG.lowerBlock(s.Body)
	loopFrame := bodyFG.popFrame()

	var incEdges []edge
	if bodyFG.cur.Terminator() == nil {
		bi := bodyFG.emit(il.BRANCH)
		bi.Target = inc.ID
		g.fn.Link(bodyFG.cur.ID, inc.ID)
		incEdges = append(incEdges, edge{block: bodyFG.cur.ID, vars: bodyFG.vars})
	}
	for _, ce := range loopFrame.continueEdges {
		g.fn.Link(ce.block, inc.ID)
	}
	incEdges = append(incEdges, loopFrame.continueEdges...)

	incVars := mergeAt(g.fn, inc, incEdges)
	incFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: inc, vars: incVars}
	nextVar := incFG.emitValue(il.ADD, loopVar.Type(), s.Name, incVars[s.Name], il.Constant{Val: 1, Ty: loopVar.Type()})
	incVars[s.Name] = nextVar
	backJmp := incFG.emit(il.BRANCH)
	backJmp.Target = header.ID
	g.fn.Link(inc.ID, header.ID)

	patchLoopPhis(phis, headerVars, []edge{{block: inc.ID, vars: incVars}})

	afterEdges := append([]edge{{block: header.ID, vars: headerVars}}, loopFrame.breakEdges...)
	g.vars = mergeAt(g.fn, after, afterEdges)
	g.cur = after
}

// lowerSwitch lowers a switch as a chain of equality tests against the
// scrutinee (spec.md §4.3: no fall-through between cases regardless of
// whether a case ends in break), rather than a jump table; an optimizer
// pass could later replace a dense, contiguous switch with one, but that is
// out of scope here.
func (g *fg) lowerSwitch(s *ast.SwitchStmt) {
	scrutinee := g.lowerExpr(s.Scrutinee)
	after := g.fn.NewBlock("switch.after")

	g.pushFrame(frameSwitch, -1, after.ID)

	cur := g.cur
	curVars := g.vars
	var edges []edge

	for _, c := range s.Cases {
		g.cur, g.vars = cur, curVars
		val := g.lowerExpr(c.Value)
		cmp := g.emitValue(il.CMP_EQ, types.BoolType, "", scrutinee, val)

		caseBlock := g.fn.NewBlock("switch.case")
		nextBlock := g.fn.NewBlock("switch.next")
		br := g.emit(il.BRANCH_IF_TRUE)
		br.Operands = []il.Value{cmp}
		br.Target = caseBlock.ID
		br.Target2 = nextBlock.ID
		g.fn.Link(cur.ID, caseBlock.ID)
		g.fn.Link(cur.ID, nextBlock.ID)

		curVars = g.vars // the comparison's own lowering may have touched vars
		cur = nextBlock

		caseFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: caseBlock, vars: curVars.clone(), frames: g.frames}
		caseFG.lowerStmts(c.Body)
		if caseFG.cur.Terminator() == nil {
			bi := caseFG.emit(il.BRANCH)
			bi.Target = after.ID
			g.fn.Link(caseFG.cur.ID, after.ID)
			edges = append(edges, edge{block: caseFG.cur.ID, vars: caseFG.vars})
		}
	}

	if len(s.Default) > 0 {
		defFG := &fg{gen: g.gen, fn: g.fn, scope: g.scope, moduleName: g.moduleName, cur: cur, vars: curVars.clone(), frames: g.frames}
		defFG.lowerStmts(s.Default)
		if defFG.cur.Terminator() == nil {
			bi := defFG.emit(il.BRANCH)
			bi.Target = after.ID
			g.fn.Link(defFG.cur.ID, after.ID)
			edges = append(edges, edge{block: defFG.cur.ID, vars: defFG.vars})
		}
	} else {
		bi := g.fn.NewInstr(il.BRANCH)
		bi.Target = after.ID
		cur.Append(bi)
		g.fn.Link(cur.ID, after.ID)
		edges = append(edges, edge{block: cur.ID, vars: curVars})
	}

	frame := g.popFrame()
	edges = append(edges, frame.breakEdges...)

	g.vars = mergeAt(g.fn, after, edges)
	g.cur = after
}

func (g *fg) lowerBreakStmt(s *ast.BreakStmt) {
	target := g.breakTargetBlock()
	if target < 0 {
		return
	}
	bi := g.emit(il.BRANCH)
	bi.Span = s.Span()
	bi.Target = target
	g.fn.Link(g.cur.ID, target)
	g.recordBreak(g.cur.ID, g.vars)
}

func (g *fg) lowerContinueStmt(s *ast.ContinueStmt) {
	target := g.continueTargetBlock()
	if target < 0 {
		return
	}
	bi := g.emit(il.BRANCH)
	bi.Span = s.Span()
	bi.Target = target
	g.fn.Link(g.cur.ID, target)
	g.recordContinue(g.cur.ID, g.vars)
}

func (g *fg) lowerReturnStmt(s *ast.ReturnStmt) {
	if s.Value == nil {
		bi := g.emit(il.RETURN_VOID)
		bi.Span = s.Span()
		return
	}
	v := g.lowerExpr(s.Value)
	bi := g.emit(il.RETURN)
	bi.Span = s.Span()
	bi.Operands = []il.Value{v}
}

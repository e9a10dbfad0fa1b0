package ilgen

import "github.com/blend65/blend65c/pkg/ast"

// assignedNames conservatively collects every plain variable name assigned
// anywhere within body, including inside nested expressions (`Assign` is
// itself an ast.Expression and can appear inside a condition or call
// argument, spec.md §3). The loop lowering code uses this set to pre-seed
// a PHI register at the loop header for each name before lowering the
// body, so a read of a loop-carried variable inside the body sees the
// header's phi rather than the value from before the loop.
//
// Over-approximation is safe here: a name found assigned somewhere
// unreachable on a given iteration just gets a phi that turns out to have
// identical sources and would have been collapsed anyway had mergeAt seen
// it at a real branch; it costs an extra register, never correctness.
func assignedNames(body *ast.Block) map[string]bool {
	found := map[string]bool{}
	walkBlockAssigns(body, found)
	return found
}

func walkBlockAssigns(b *ast.Block, found map[string]bool) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		walkStmtAssigns(s, found)
	}
}

func walkStmtAssigns(s ast.Statement, found map[string]bool) {
	switch st := s.(type) {
	case *ast.Block:
		walkBlockAssigns(st, found)
	case *ast.VarDecl:
		walkExprAssigns(st.Init, found)
	case *ast.ExprStmt:
		walkExprAssigns(st.Expr, found)
	case *ast.IfStmt:
		walkExprAssigns(st.Cond, found)
		walkBlockAssigns(st.Then, found)
		walkStmtAssigns(st.ElseBranch, found)
	case *ast.WhileStmt:
		walkExprAssigns(st.Cond, found)
		walkBlockAssigns(st.Body, found)
	case *ast.DoWhileStmt:
		walkBlockAssigns(st.Body, found)
		walkExprAssigns(st.Cond, found)
	case *ast.ForStmt:
		found[st.Name] = true
		walkExprAssigns(st.Start, found)
		walkExprAssigns(st.End, found)
		walkBlockAssigns(st.Body, found)
	case *ast.SwitchStmt:
		walkExprAssigns(st.Scrutinee, found)
		for _, c := range st.Cases {
			walkExprAssigns(c.Value, found)
			for _, cs := range c.Body {
				walkStmtAssigns(cs, found)
			}
		}
		for _, ds := range st.Default {
			walkStmtAssigns(ds, found)
		}
	case *ast.ReturnStmt:
		walkExprAssigns(st.Value, found)
	case *ast.BreakStmt, *ast.ContinueStmt, nil:
		// no sub-expressions
	}
}

func walkExprAssigns(e ast.Expression, found map[string]bool) {
	switch ex := e.(type) {
	case nil:
	case *ast.Assign:
		if id, ok := ex.Target.(*ast.Ident); ok {
			found[id.Name] = true
		}
		walkExprAssigns(ex.Target, found)
		walkExprAssigns(ex.Value, found)
	case *ast.Unary:
		walkExprAssigns(ex.Operand, found)
	case *ast.Binary:
		walkExprAssigns(ex.Left, found)
		walkExprAssigns(ex.Right, found)
	case *ast.Ternary:
		walkExprAssigns(ex.Cond, found)
		walkExprAssigns(ex.Then, found)
		walkExprAssigns(ex.Else, found)
	case *ast.Call:
		walkExprAssigns(ex.Callee, found)
		for _, a := range ex.Args {
			walkExprAssigns(a, found)
		}
	case *ast.Index:
		walkExprAssigns(ex.Array, found)
		walkExprAssigns(ex.Index, found)
	case *ast.Member:
		walkExprAssigns(ex.Receiver, found)
	case *ast.ArrayLit:
		for _, el := range ex.Elements {
			walkExprAssigns(el, found)
		}
	case *ast.NumberLit, *ast.StringLit, *ast.BoolLit, *ast.Ident:
		// leaves
	}
}

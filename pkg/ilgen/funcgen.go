package ilgen

import (
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/symbol"
	"github.com/blend65/blend65c/pkg/types"
)

// lowerFunction lowers one analyzed function into an il.Function: its
// parameters become virtual registers bound in the initial vars snapshot,
// its body is lowered block by block, and a missing trailing return on a
// void function is synthesized as RETURN_VOID (spec.md §4.6).
func (g *Generator) lowerFunction(fi *sema.FuncInfo) *il.Function {
	ft, _ := fi.Symbol.Type.(*types.FunctionType)
	retType := types.Type(types.VoidType)
	if ft != nil {
		retType = ft.Return
	}

	params := make([]il.Param, len(fi.Decl.Params))
	for i, p := range fi.Decl.Params {
		params[i] = il.Param{Name: p.Name}
	}

	fn := il.NewFunction(qualifiedName(g.moduleName, fi.Decl.Name), params, retType)
	fn.Exported = fi.Decl.IsExport

	initVars := make(vars, len(params))
	for i, p := range fi.Decl.Params {
		paramType := types.Type(types.UnknownType)
		if ft != nil && i < len(ft.Params) {
			paramType = ft.Params[i]
		}
		reg := fn.NewRegister(paramType, p.Name)
		fn.Params[i].Reg = reg
		initVars[p.Name] = reg
	}

	fg := &fg{
		gen:        g,
		fn:         fn,
		scope:      fi.Scope,
		moduleName: g.moduleName,
		cur:        fn.Block(fn.EntryBlock),
		vars:       initVars,
	}

	fg.lowerBlock(fi.Decl.Body)

	if fg.cur.Terminator() == nil {
		if retType.Kind() == types.Void {
			fg.emit(il.RETURN_VOID)
		} else {
			fg.cur.IsExit = true
		}
	}

	return fn
}

// qualifiedName renders a function's fully-qualified call-graph name
// (spec.md §3): "module.function", matching pkg/recursion's own node
// naming so codegen can resolve a CALL's Callee the same way.
func qualifiedName(moduleName, funcName string) string {
	return moduleName + "." + funcName
}

// qualifyCallee resolves the fully-qualified name a call to sym should
// target: an imported symbol's true home module (spec.md §5; the symbol's
// SourceModule survives cross-module resolution even though its SymKind is
// rewritten from Imported to Function), or the current module otherwise.
// Mirrors pkg/recursion.resolveTarget exactly, since both need to agree on
// what a function is "named" for cross-referencing purposes.
func (g *fg) qualifyCallee(sym *symbol.Symbol) string {
	if sym.SourceModule != "" {
		name := sym.OriginalName
		if name == "" {
			name = sym.Name
		}
		return qualifiedName(sym.SourceModule, name)
	}
	return qualifiedName(g.moduleName, sym.Name)
}

func (g *fg) globalLabel(sym *symbol.Symbol) il.Label {
	mod := g.moduleName
	if sym.SourceModule != "" {
		mod = sym.SourceModule
	}
	name := sym.Name
	if sym.OriginalName != "" {
		name = sym.OriginalName
	}
	return il.Label{Name: mod + "." + name}
}

func (g *fg) localArrayLabel(name string) il.Label {
	return il.Label{Name: g.fn.Name + "." + name}
}

// emit allocates and appends a fresh instruction of the given op to the
// current block.
func (g *fg) emit(op il.Op) *il.Instr {
	i := g.fn.NewInstr(op)
	g.cur.Append(i)
	return i
}

// emitValue emits an instruction that produces a value of type ty, naming
// the result register name (often "" for a compiler-introduced temporary).
func (g *fg) emitValue(op il.Op, ty types.Type, name string, operands ...il.Value) il.VirtualRegister {
	reg := g.fn.NewRegister(ty, name)
	i := g.emit(op)
	i.Operands = operands
	i.Result = &reg
	return reg
}

// Package ilgen lowers a single analyzed file (spec.md §4.6) into the
// typed IL module defined by pkg/il: one il.Function per declared
// function, module-scope globals addressed by name rather than register,
// and peek/poke/hi/lo already rewritten to their target instructions (no
// intrinsic call nodes survive this pass).
//
// Grounded on the teacher's pkg/ir lowering methods (kept as reference,
// pkg/ir/mir.go's MirAdd.LowerToAir and friends) for the general shape of
// "walk a typed tree, emit a lower-level typed tree alongside it," adapted
// here from a one-shot tree-to-tree rewrite into an imperative walk that
// builds basic blocks directly, since the IL additionally needs control-
// flow edges and phi placement that a pure recursive Lower method cannot
// express as cleanly.
package ilgen

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/symbol"
	"github.com/blend65/blend65c/pkg/types"
)

// Generator lowers one analyzed file into an il.Module. The zero value is
// not usable; construct with Generate.
type Generator struct {
	moduleName string
	result     *sema.Result
	mod        *il.Module
	diags      *diag.Sink
}

// Generate lowers prog (already analyzed into result by pkg/sema) into an
// il.Module named moduleName. Every diagnostic sema would have raised has
// already been raised by the time this runs; the diagnostics returned here
// are internal-invariant failures only (spec.md §7), since a program that
// passed analysis is expected to lower cleanly.
func Generate(moduleName string, prog *ast.Program, result *sema.Result) (*il.Module, []diag.Diagnostic) {
	g := &Generator{
		moduleName: moduleName,
		result:     result,
		mod:        &il.Module{Name: moduleName},
		diags:      &diag.Sink{},
	}

	for _, decl := range prog.Declarations {
		if vd, ok := decl.(*ast.VarDecl); ok {
			g.lowerGlobal(vd)
		}
	}

	for _, fi := range result.Functions {
		g.mod.Functions = append(g.mod.Functions, g.lowerFunction(fi))
	}

	if sym, ok := result.ModuleScope.LookupLocal("main"); ok && sym.SymKind == symbol.Function {
		g.mod.EntryPoint = "main"
	}

	return g.mod, g.diags.All()
}

// lowerGlobal folds a module-scope let/const declaration's initializer (sema
// already requires globals to be constant-initialized, spec.md §4.3) into
// an il.Global's flattened Initial values.
func (g *Generator) lowerGlobal(vd *ast.VarDecl) {
	sym, ok := g.result.ModuleScope.LookupLocal(vd.Name)
	if !ok {
		g.internalError(vd.Span(), "global %q has no module-scope symbol", vd.Name)
		return
	}

	global := il.Global{
		Name:     vd.Name,
		Type:     sym.Type,
		Exported: vd.IsExport,
		IsConst:  vd.IsConst,
	}
	global.Initial = g.constantInitial(sym.Type, vd.Init)
	g.mod.Globals = append(g.mod.Globals, global)
}

// constantInitial flattens a global initializer into the element values
// il.Global.Initial expects: a single value for a scalar, one value per
// array element (zero-filled past any shorter string/array literal,
// spec.md §4.3 array length inference) for an array.
func (g *Generator) constantInitial(ty types.Type, init ast.Expression) []uint64 {
	arr, isArray := ty.(*types.ArrayType)
	if !isArray {
		if init == nil {
			return []uint64{0}
		}
		info := g.result.Exprs[init]
		return []uint64{info.Value}
	}

	out := make([]uint64, arr.Len)
	if init == nil {
		return out
	}

	switch lit := init.(type) {
	case *ast.StringLit:
		for i := 0; i < len(lit.Value) && i < arr.Len; i++ {
			out[i] = uint64(lit.Value[i])
		}
	case *ast.ArrayLit:
		for i, elem := range lit.Elements {
			if i >= arr.Len {
				break
			}
			out[i] = g.result.Exprs[elem].Value
		}
	default:
		g.internalError(init.Span(), "unsupported array initializer shape")
	}
	return out
}

func (g *Generator) internalError(span source.Span, format string, args ...any) {
	g.diags.Errorf(diag.SInternalInvariant, span, format, args...)
}

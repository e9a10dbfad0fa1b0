package module

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/symbol"
)

// ResolveImports fixes up every Imported placeholder symbol sema.Analyze
// left with an Unknown type (spec.md §4.3 analyzes one file in isolation;
// cross-module resolution only becomes possible once every module in a
// compilation is registered). For each import binding it finds the source
// module, finds the named symbol there, checks it is exported, and copies
// its resolved type/constness onto the importer's local symbol in place.
func (r *Registry) ResolveImports() []diag.Diagnostic {
	var diags diag.Sink

	for _, name := range r.order {
		info := r.modules[name]
		for _, d := range info.Program.Declarations {
			imp, ok := d.(*ast.ImportDecl)
			if !ok {
				continue
			}
			r.resolveImportDecl(&diags, info, imp)
		}
	}

	return diags.All()
}

func (r *Registry) resolveImportDecl(diags *diag.Sink, importer *Info, imp *ast.ImportDecl) {
	srcModule, ok := r.modules[imp.SourceModule]
	if !ok {
		diags.Errorf(diag.SModuleNotFound, imp.Span(), "module %q not found", imp.SourceModule)
		return
	}

	for _, b := range imp.Bindings {
		localName := b.Name
		if b.Alias != "" {
			localName = b.Alias
		}

		exported, ok := srcModule.Result.ModuleScope.LookupLocal(b.Name)
		if !ok {
			diags.Errorf(diag.SImportSymbolNotFound, b.Span(), "module %q has no symbol %q", imp.SourceModule, b.Name)
			continue
		}
		if !exported.IsExported {
			diags.Errorf(diag.SImportNotExported, b.Span(), "%q is not exported from module %q", b.Name, imp.SourceModule)
			continue
		}

		local, ok := importer.Result.ModuleScope.LookupLocal(localName)
		if !ok {
			// sema always declares an Imported placeholder for every
			// binding; a miss here means a duplicate-name error already
			// prevented its declaration, so there is nothing left to fix up.
			continue
		}

		copyResolvedSymbol(local, exported)
	}
}

// copyResolvedSymbol copies the resolved shape of src (the symbol as
// declared in its home module) onto dst (the local Imported placeholder),
// preserving dst's own identity (name, declaration span, owning scope).
func copyResolvedSymbol(dst, src *symbol.Symbol) {
	dst.Type = src.Type
	dst.SymKind = resolvedImportKind(src.SymKind)
	dst.IsConst = src.IsConst
	dst.Initial = src.Initial
	dst.Parameters = src.Parameters
	dst.Members = src.Members
}

// resolvedImportKind keeps Imported for ordinary values but lets an
// imported name still read as a Function/EnumType at call/member sites,
// since sema's checkCall and checkMember switch on SymKind.
func resolvedImportKind(srcKind symbol.Kind) symbol.Kind {
	switch srcKind {
	case symbol.Function, symbol.EnumType:
		return srcKind
	default:
		return symbol.Imported
	}
}

package sema

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/symbol"
	"github.com/blend65/blend65c/pkg/types"
)

// primitiveTypes maps a type annotation's base-name keyword text onto its
// resolved primitive type, mirroring pkg/parser's primitiveTypeKeywords
// table one level up (by name, since TypeAnnotation.Name is text by the
// time it reaches sema).
var primitiveTypes = map[string]types.Type{
	"byte": types.ByteType,
	"word": types.WordType,
	"bool": types.BoolType,
	"void": types.VoidType,
	// string sugars to an inferred-length byte array: on a 6502 target a
	// string is just bytes in memory, with no runtime length prefix beyond
	// whatever the initializer fixes (spec.md §3's array model already
	// covers this; string needs no type kind of its own).
	"string": types.NewInferredArray(types.ByteType),
	// callback sugars to a pointer-sized function reference. blend65's
	// grammar has no syntax for a callback's parameter/return signature, so
	// arity/assignability at a callback call site is not checked here;
	// codegen only needs the 16-bit address this carries.
	"callback": types.NewPointer(types.NewFunction(nil, types.VoidType)),
}

// collectEnums declares every enum at module scope and builds the
// userTypes table (enum name -> its byte-sized representation), so that
// any variable or parameter type annotation referencing an enum -
// wherever it appears in the file relative to the enum's own declaration -
// resolves correctly. Enums have no forward dependency on other
// declarations, so this can run as a single prescan (spec.md §3).
func (a *Analyzer) collectEnums(prog *ast.Program) {
	for _, decl := range prog.Declarations {
		e, ok := decl.(*ast.EnumDecl)
		if !ok {
			continue
		}

		members := make([]symbol.EnumMemberInfo, len(e.Members))
		for i, name := range e.Members {
			members[i] = symbol.EnumMemberInfo{Name: name, Value: uint64(i)}
		}

		sym := &symbol.Symbol{
			Name:       e.Name,
			SymKind:    symbol.EnumType,
			Type:       types.ByteType,
			DeclSpan:   e.Span(),
			IsExported: e.IsExport,
			Members:    members,
		}
		if prior, ok := a.module.Declare(sym); !ok {
			a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
				"\""+e.Name+"\" is already declared in this module", e.Span()).
				WithRelated(prior.DeclSpan, "first declared here"))
			continue
		}

		// An enum's underlying representation is always byte (spec.md §3:
		// enums model a closed set of named byte constants for 6502
		// targets); register it so variable/parameter annotations naming
		// this enum resolve to byte.
		a.userTypes[e.Name] = types.ByteType
	}
}

// collectRest declares every non-enum top-level declaration (var, function,
// import) into the module scope, resolving type annotations now that every
// enum name is known.
func (a *Analyzer) collectRest(prog *ast.Program) {
	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.VarDecl:
			a.declareVar(d)
		case *ast.FuncDecl:
			a.declareFunc(d)
		case *ast.ImportDecl:
			a.declareImport(d)
		case *ast.EnumDecl:
			// already declared by collectEnums
		}
	}
}

func (a *Analyzer) declareVar(d *ast.VarDecl) {
	t := types.UnknownType
	if d.TypeAnn != nil {
		t = a.resolveTypeAnnotation(d.TypeAnn)
	}

	sym := &symbol.Symbol{
		Name:       d.Name,
		SymKind:    symbol.Variable,
		Type:       t,
		DeclSpan:   d.Span(),
		IsExported: d.IsExport,
		IsConst:    d.IsConst,
	}
	if d.IsConst {
		sym.SymKind = symbol.Constant
	}

	if prior, ok := a.module.Declare(sym); !ok {
		a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
			"\""+d.Name+"\" is already declared in this module", d.Span()).
			WithRelated(prior.DeclSpan, "first declared here"))
	}
}

func (a *Analyzer) declareFunc(d *ast.FuncDecl) {
	params := make([]types.Type, len(d.Params))
	for i, p := range d.Params {
		if p.TypeAnn == nil {
			params[i] = types.UnknownType
			continue
		}
		//
		params[i] = a.resolveTypeAnnotation(p.TypeAnn)
	}

	ret := types.VoidType
	if d.ReturnType != nil {
		ret = a.resolveTypeAnnotation(d.ReturnType)
	}

	sym := &symbol.Symbol{
		Name:       d.Name,
		SymKind:    symbol.Function,
		Type:       types.NewFunction(params, ret),
		DeclSpan:   d.Span(),
		IsExported: d.IsExport,
		Parameters: params,
	}

	if prior, ok := a.module.Declare(sym); !ok {
		a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
			"\""+d.Name+"\" is already declared in this module", d.Span()).
			WithRelated(prior.DeclSpan, "first declared here"))
		return
	}

	scope := a.table.NewFunctionScope(a.module)
	for i, p := range d.Params {
		psym := &symbol.Symbol{
			Name:     p.Name,
			SymKind:  symbol.Parameter,
			Type:     params[i],
			DeclSpan: p.Span(),
		}
		if prior, ok := scope.Declare(psym); !ok {
			a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
				"parameter \""+p.Name+"\" is already declared", p.Span()).
				WithRelated(prior.DeclSpan, "first declared here"))
		}
	}

	a.functions = append(a.functions, &FuncInfo{Decl: d, Symbol: sym, Scope: scope})
}

func (a *Analyzer) declareImport(d *ast.ImportDecl) {
	for _, b := range d.Bindings {
		localName := b.Name
		if b.Alias != "" {
			localName = b.Alias
		}

		sym := &symbol.Symbol{
			Name:         localName,
			SymKind:      symbol.Imported,
			Type:         types.UnknownType, // fixed up by pkg/module once the source module is resolved
			DeclSpan:     b.Span(),
			SourceModule: d.SourceModule,
			OriginalName: b.Name,
		}

		if prior, ok := a.module.Declare(sym); !ok {
			a.diags.Add(diag.New(diag.SDuplicateDeclaration, diag.Error,
				"\""+localName+"\" is already declared in this module", b.Span()).
				WithRelated(prior.DeclSpan, "first declared here"))
		}
	}
}

// resolveTypeAnnotation resolves a parsed TypeAnnotation into a types.Type,
// applying its array dimensions outermost-first (spec.md §4.2: dimensions
// read left to right become nested array types, innermost dimension last).
func (a *Analyzer) resolveTypeAnnotation(ann *ast.TypeAnnotation) types.Type {
	base, ok := primitiveTypes[ann.Name]
	if !ok {
		base, ok = a.userTypes[ann.Name]
	}
	if !ok {
		a.diags.Add(diag.New(diag.SUnknownType, diag.Error,
			"unknown type \""+ann.Name+"\"", ann.Span()))
		return types.UnknownType
	}

	t := base
	for i := len(ann.Dims) - 1; i >= 0; i-- {
		dim := ann.Dims[i]
		if dim.Explicit {
			t = types.NewArray(t, dim.Size)
		} else {
			t = types.NewInferredArray(t)
		}
	}
	return t
}

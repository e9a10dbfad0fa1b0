package ast

// VarDecl is a `let`/`const` declaration. It is both a Declaration (at
// module scope) and a Statement (inside a function body) — the language is
// function-scoped, and a local variable is just a module-level declaration
// form nested in a block (spec.md §3).
type VarDecl struct {
	Base
	Name     string
	TypeAnn  *TypeAnnotation // nil if omitted
	Init     Expression      // nil only legal when !IsConst
	IsConst  bool
	IsExport bool
}

func (*VarDecl) isDeclaration() {}
func (*VarDecl) isStatement()   {}

// Param is a single function parameter; its type annotation is mandatory.
type Param struct {
	Base
	Name    string
	TypeAnn *TypeAnnotation
}

// FuncDecl is a function declaration with ordered parameters, a declared
// return type, and a statement-block body.
type FuncDecl struct {
	Base
	Name       string
	Params     []*Param
	ReturnType *TypeAnnotation
	Body       *Block
	IsExport   bool
}

func (*FuncDecl) isDeclaration() {}

// EnumDecl declares a named set of member identifiers.
type EnumDecl struct {
	Base
	Name     string
	Members  []string
	IsExport bool
}

func (*EnumDecl) isDeclaration() {}

// ImportBinding is a single `name` or `name as alias` entry in an import
// list.
type ImportBinding struct {
	Base
	Name  string
	Alias string // "" if no "as" clause
}

// ImportDecl is `import <bindings> from <module.path>;`.
type ImportDecl struct {
	Base
	Bindings     []*ImportBinding
	SourceModule string
}

func (*ImportDecl) isDeclaration() {}

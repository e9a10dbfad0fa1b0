package ast

// ModuleDecl is the optional `module <qualified.name>;` header.
type ModuleDecl struct {
	Base
	Name string
}

// Program is the root of a single compiled file: an optional module
// declaration and an ordered list of top-level declarations. Parsing always
// produces a Program, even in the presence of errors (spec.md §4.2).
type Program struct {
	Base
	Module       *ModuleDecl // nil if no `module` header present
	Declarations []Declaration
}

// Package ast defines the blend65 abstract syntax tree: a closed sum of node
// variants grouped by level (program, declarations, statements,
// expressions), per spec.md §3. Every node carries its source span
// directly, rather than through a side-table source map as the teacher does
// (pkg/corset/source_map.go, pkg/util/source/source_map.go): spec.md makes
// span-on-node a tested invariant ("every node carries a span"), and with a
// flat struct field this is a single accessor instead of a lookup that can
// panic on a missing mapping.
package ast

import "github.com/blend65/blend65c/pkg/source"

// Node is implemented by every AST node.
type Node interface {
	Span() source.Span
}

// Expression is implemented by every expression node.
type Expression interface {
	Node
	isExpression()
}

// Statement is implemented by every statement node.
type Statement interface {
	Node
	isStatement()
}

// Declaration is implemented by every top-level declaration node.
type Declaration interface {
	Node
	isDeclaration()
}

// Base embeds a span in every concrete node. It is exported so that
// constructing packages (pkg/parser) can set it as a composite-literal
// field, e.g. `ast.Ident{Base: ast.At(span), Name: "x"}`.
type Base struct {
	Sp source.Span
}

// Span returns this node's source span.
func (b Base) Span() source.Span { return b.Sp }

// At constructs a Base carrying the given span.
func At(span source.Span) Base { return Base{Sp: span} }

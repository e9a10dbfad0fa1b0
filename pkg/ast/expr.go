package ast

import "github.com/blend65/blend65c/pkg/token"

// NumberLit is a decimal, hex or binary integer literal.
type NumberLit struct {
	Base
	Value uint64
}

func (*NumberLit) isExpression() {}

// StringLit is a single- or double-quoted string literal, already unescaped.
type StringLit struct {
	Base
	Value string
}

func (*StringLit) isExpression() {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) isExpression() {}

// Ident is an identifier reference.
type Ident struct {
	Base
	Name string
}

func (*Ident) isExpression() {}

// Unary is a prefix unary operator expression: `- ! ~`.
type Unary struct {
	Base
	Op      token.Kind
	Operand Expression
}

func (*Unary) isExpression() {}

// Binary is an infix binary operator expression.
type Binary struct {
	Base
	Op          token.Kind
	Left, Right Expression
}

func (*Binary) isExpression() {}

// Ternary is the `cond ? then : else` conditional expression.
type Ternary struct {
	Base
	Cond, Then, Else Expression
}

func (*Ternary) isExpression() {}

// Call is a function call expression `callee(args...)`.
type Call struct {
	Base
	Callee Expression
	Args   []Expression
}

func (*Call) isExpression() {}

// Index is an array index expression `array[index]`.
type Index struct {
	Base
	Array Expression
	Index Expression
}

func (*Index) isExpression() {}

// Member is a member access expression `receiver.name`.
type Member struct {
	Base
	Receiver Expression
	Name     string
}

func (*Member) isExpression() {}

// Assign is an assignment expression `target = value`, right-associative
// and of the lowest precedence (spec.md §4.2).
type Assign struct {
	Base
	Target Expression
	Value  Expression
}

func (*Assign) isExpression() {}

// ArrayLit is an array literal `[e0, e1, ...]`.
type ArrayLit struct {
	Base
	Elements []Expression
}

func (*ArrayLit) isExpression() {}

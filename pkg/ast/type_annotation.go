package ast

// TypeAnnotation is the parsed (not yet resolved) form of a type: a
// primitive or named base, followed by zero or more array dimensions read
// left to right (spec.md §4.2). Resolution into a types.Type happens in
// pkg/sema.
type TypeAnnotation struct {
	Base
	// Name is the primitive keyword text (byte, word, bool, void, string,
	// callback) or a user type identifier.
	Name string
	// Dims holds zero or more trailing array dimensions, outermost first.
	Dims []ArrayDim
}

// ArrayDim is a single `[n]` (explicit literal length) or `[]` (inferred
// from the initializer) dimension.
type ArrayDim struct {
	Explicit bool
	Size     int
}

package parser

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/token"
)

// primitiveTypeKeywords are the type keywords recognized in a type
// annotation's base position (spec.md §4.2).
var primitiveTypeKeywords = map[token.Kind]bool{
	token.KW_BYTE: true, token.KW_WORD: true, token.KW_BOOL: true,
	token.KW_VOID: true, token.KW_STRING_TYPE: true, token.KW_CALLBACK: true,
}

// parseTypeAnnotation parses a primitive or named base type followed by
// zero or more `[n]` (explicit literal length) or `[]` (inferred length)
// array dimensions, read left to right (spec.md §4.2).
func (p *Parser) parseTypeAnnotation() *ast.TypeAnnotation {
	var nameTok token.Token
	if primitiveTypeKeywords[p.peek().Kind] {
		nameTok = p.advance()
	} else {
		nameTok = p.expect(token.IDENT, "expected a type name")
	}

	span := nameTok.Span
	var dims []ast.ArrayDim

	for p.check(token.LBRACKET) {
		p.advance()
		if p.check(token.RBRACKET) {
			closing := p.advance()
			span = source.Merge(span, closing.Span)
			dims = append(dims, ast.ArrayDim{Explicit: false})
			continue
		}

		sizeTok := p.expect(token.NUMBER, "expected an array length or ']'")
		size := parseNumberLexeme(sizeTok.Lexeme)
		closing := p.expect(token.RBRACKET, "expected ']' after array length")
		span = source.Merge(span, closing.Span)
		dims = append(dims, ast.ArrayDim{Explicit: true, Size: int(size)})
	}

	return &ast.TypeAnnotation{Base: ast.At(span), Name: nameTok.Lexeme, Dims: dims}
}

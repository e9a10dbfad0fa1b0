package parser

import (
	"strconv"
	"strings"

	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/token"
)

// parseExpression parses a full expression, starting at the lowest
// precedence level (assignment).
func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

// parseAssignment parses `lhs = expr`, right-associative and of the lowest
// precedence (spec.md §4.2). Assignability of the left-hand side is a
// semantic-analysis concern, not a parse-time one.
func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseTernary()

	if p.check(token.ASSIGN) {
		p.advance()
		value := p.parseAssignment()
		return &ast.Assign{
			Base:   ast.At(source.Merge(left.Span(), value.Span())),
			Target: left,
			Value:  value,
		}
	}

	return left
}

// parseTernary parses `cond ? then : else`.
func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseLogicalOr()

	if p.check(token.QUESTION) {
		p.advance()
		then := p.parseExpression()
		p.expect(token.COLON, "expected ':' in ternary expression")
		elseExpr := p.parseTernary()
		return &ast.Ternary{
			Base: ast.At(source.Merge(cond.Span(), elseExpr.Span())),
			Cond: cond, Then: then, Else: elseExpr,
		}
	}

	return cond
}

func (p *Parser) parseLogicalOr() ast.Expression {
	left := p.parseLogicalAnd()
	for p.check(token.PIPEPIPE) {
		op := p.advance()
		right := p.parseLogicalAnd()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	left := p.parseBitOr()
	for p.check(token.AMPAMP) {
		op := p.advance()
		right := p.parseBitOr()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expression {
	left := p.parseBitXor()
	for p.check(token.PIPE) {
		op := p.advance()
		right := p.parseBitXor()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expression {
	left := p.parseBitAnd()
	for p.check(token.CARET) {
		op := p.advance()
		right := p.parseBitAnd()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expression {
	left := p.parseEquality()
	for p.check(token.AMP) {
		op := p.advance()
		right := p.parseEquality()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for p.matchAny(token.EQEQ, token.BANGEQ) {
		op := p.tokens[p.pos-1]
		right := p.parseRelational()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseShift()
	for p.check(token.LT) || p.check(token.LTEQ) || p.check(token.GT) || p.check(token.GTEQ) {
		op := p.advance()
		right := p.parseShift()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseShift() ast.Expression {
	left := p.parseAdditive()
	for p.check(token.SHL) || p.check(token.SHR) {
		op := p.advance()
		right := p.parseAdditive()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		left = p.binary(left, op.Kind, right)
	}
	return left
}

func (p *Parser) binary(left ast.Expression, op token.Kind, right ast.Expression) *ast.Binary {
	return &ast.Binary{
		Base: ast.At(source.Merge(left.Span(), right.Span())),
		Op:   op, Left: left, Right: right,
	}
}

// parseUnary parses the prefix unary operators `- ! ~`.
func (p *Parser) parseUnary() ast.Expression {
	if p.check(token.MINUS) || p.check(token.BANG) || p.check(token.TILDE) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{
			Base: ast.At(source.Merge(op.Span, operand.Span())),
			Op:   op.Kind, Operand: operand,
		}
	}
	return p.parsePostfix()
}

// parsePostfix parses call, index and member suffixes, left to right.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()

	for {
		switch {
		case p.check(token.LPAREN):
			p.advance()
			var args []ast.Expression
			if !p.check(token.RPAREN) {
				for {
					args = append(args, p.parseExpression())
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			closing := p.expect(token.RPAREN, "expected ')' after call arguments")
			expr = &ast.Call{Base: ast.At(source.Merge(expr.Span(), closing.Span)), Callee: expr, Args: args}

		case p.check(token.LBRACKET):
			p.advance()
			idx := p.parseExpression()
			closing := p.expect(token.RBRACKET, "expected ']' after index expression")
			expr = &ast.Index{Base: ast.At(source.Merge(expr.Span(), closing.Span)), Array: expr, Index: idx}

		case p.check(token.DOT):
			p.advance()
			nameTok := p.expect(token.IDENT, "expected a member name after '.'")
			expr = &ast.Member{Base: ast.At(source.Merge(expr.Span(), nameTok.Span)), Receiver: expr, Name: nameTok.Lexeme}

		default:
			return expr
		}
	}
}

// parsePrimary parses literals, identifiers, parenthesized expressions and
// array literals.
func (p *Parser) parsePrimary() ast.Expression {
	t := p.peek()

	switch t.Kind {
	case token.NUMBER:
		p.advance()
		return &ast.NumberLit{Base: ast.At(t.Span), Value: parseNumberLexeme(t.Lexeme)}
	case token.STRING:
		p.advance()
		return &ast.StringLit{Base: ast.At(t.Span), Value: unescapeStringLexeme(t.Lexeme)}
	case token.KW_TRUE:
		p.advance()
		return &ast.BoolLit{Base: ast.At(t.Span), Value: true}
	case token.KW_FALSE:
		p.advance()
		return &ast.BoolLit{Base: ast.At(t.Span), Value: false}
	case token.IDENT:
		p.advance()
		return &ast.Ident{Base: ast.At(t.Span), Name: t.Lexeme}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		closing := p.expect(token.RPAREN, "expected ')' after parenthesized expression")
		inner = reSpan(inner, source.Merge(t.Span, closing.Span))
		return inner
	case token.LBRACKET:
		return p.parseArrayLiteral()
	default:
		p.errorf(t.Span, "expected an expression")
		synthetic := token.Token{Kind: token.IDENT, Span: source.NewSpan(t.Span.Start, t.Span.Start)}
		return &ast.Ident{Base: ast.At(synthetic.Span), Name: ""}
	}
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLit {
	open := p.advance() // `[`
	var elems []ast.Expression
	p.skipNewlines()
	if !p.check(token.RBRACKET) {
		for {
			elems = append(elems, p.parseExpression())
			p.skipNewlines()
			if !p.match(token.COMMA) {
				break
			}
			p.skipNewlines()
		}
	}
	closing := p.expect(token.RBRACKET, "expected ']' to close array literal")
	return &ast.ArrayLit{Base: ast.At(source.Merge(open.Span, closing.Span)), Elements: elems}
}

// reSpan widens a parenthesized expression's span to include the
// surrounding parentheses without allocating a new node kind.
func reSpan(e ast.Expression, span source.Span) ast.Expression {
	switch v := e.(type) {
	case *ast.NumberLit:
		v.Sp = span
	case *ast.StringLit:
		v.Sp = span
	case *ast.BoolLit:
		v.Sp = span
	case *ast.Ident:
		v.Sp = span
	case *ast.Unary:
		v.Sp = span
	case *ast.Binary:
		v.Sp = span
	case *ast.Ternary:
		v.Sp = span
	case *ast.Call:
		v.Sp = span
	case *ast.Index:
		v.Sp = span
	case *ast.Member:
		v.Sp = span
	case *ast.Assign:
		v.Sp = span
	case *ast.ArrayLit:
		v.Sp = span
	}
	return e
}

// parseNumberLexeme parses a lexer-recognized numeric literal lexeme —
// decimal, `$hex`, `0x`/`0X` hex, or `0b`/`0B` binary — into its value.
// The lexer has already validated digit well-formedness and range, so
// parse errors here cannot occur on well-formed input.
func parseNumberLexeme(lexeme string) uint64 {
	switch {
	case strings.HasPrefix(lexeme, "$"):
		v, _ := strconv.ParseUint(lexeme[1:], 16, 32)
		return v
	case strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X"):
		v, _ := strconv.ParseUint(lexeme[2:], 16, 32)
		return v
	case strings.HasPrefix(lexeme, "0b") || strings.HasPrefix(lexeme, "0B"):
		v, _ := strconv.ParseUint(lexeme[2:], 2, 32)
		return v
	default:
		v, _ := strconv.ParseUint(lexeme, 10, 32)
		return v
	}
}

// unescapeStringLexeme strips the surrounding quotes and resolves the
// `\n \r \t \\ \"` escapes recognized by the lexer; unknown escapes pass
// through unchanged (spec.md §4.1).
func unescapeStringLexeme(lexeme string) string {
	if len(lexeme) < 2 {
		return ""
	}
	body := lexeme[1 : len(lexeme)-1]

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			next := body[i+1]
			switch next {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"', '\'':
				sb.WriteByte(next)
			default:
				sb.WriteByte(c)
				sb.WriteByte(next)
			}
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

package parser

import (
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/token"
)

// parseBlock parses a brace-delimited, newline-and-semicolon-separated
// statement list.
func (p *Parser) parseBlock() *ast.Block {
	open := p.expect(token.LBRACE, "expected '{' to begin a block")
	p.skipStatementSeparators()

	var stmts []ast.Statement
	for !p.check(token.RBRACE) && p.peek().Kind != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipStatementSeparators()
	}
	close := p.expect(token.RBRACE, "expected '}' to close a block")

	return &ast.Block{Base: ast.At(source.Merge(open.Span, close.Span)), Stmts: stmts}
}

// parseStatement parses a single statement. On malformed input it records
// a diagnostic, synchronizes, and returns nil so the caller just skips it.
func (p *Parser) parseStatement() ast.Statement {
	switch p.peek().Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_LET, token.KW_CONST:
		return p.parseVarDecl(false, p.peek().Span)
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_DO:
		return p.parseDoWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_SWITCH:
		return p.parseSwitchStmt()
	case token.KW_BREAK:
		return p.parseBreakStmt()
	case token.KW_CONTINUE:
		return p.parseContinueStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	start := p.peek().Span
	expr := p.parseExpression()
	end := p.expectStatementEnd()
	return &ast.ExprStmt{Base: ast.At(source.Merge(start, end)), Expr: expr}
}

// parseIfStmt parses `if (cond) block [else block-or-if]`.
func (p *Parser) parseIfStmt() *ast.IfStmt {
	kw := p.advance() // `if`
	p.expect(token.LPAREN, "expected '(' after 'if'")
	cond := p.parseExpression()
	p.expect(token.RPAREN, "expected ')' after if condition")
	then := p.parseBlock()

	end := then.Span()
	var elseBranch ast.Statement
	if p.checkSkipNL(token.KW_ELSE) {
		p.skipNewlines()
		p.advance() // `else`
		if p.check(token.KW_IF) {
			elseBranch = p.parseIfStmt()
		} else {
			elseBranch = p.parseBlock()
		}
		end = elseBranch.Span()
	}

	return &ast.IfStmt{
		Base:       ast.At(source.Merge(kw.Span, end)),
		Cond:       cond,
		Then:       then,
		ElseBranch: elseBranch,
	}
}

// checkSkipNL reports whether kind follows, skipping leading
// NEWLINE tokens without consuming them; used for `else` on its own line.
func (p *Parser) checkSkipNL(kind token.Kind) bool {
	i := 0
	for p.peekAt(i).Kind == token.NEWLINE {
		i++
	}
	return p.peekAt(i).Kind == kind
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	kw := p.advance() // `while`
	p.expect(token.LPAREN, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.expect(token.RPAREN, "expected ')' after while condition")

	p.inLoop++
	body := p.parseBlock()
	p.inLoop--

	return &ast.WhileStmt{Base: ast.At(source.Merge(kw.Span, body.Span())), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	kw := p.advance() // `do`

	p.inLoop++
	body := p.parseBlock()
	p.inLoop--

	p.skipNewlines()
	p.expect(token.KW_WHILE, "expected 'while' after do-block")
	p.expect(token.LPAREN, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.expect(token.RPAREN, "expected ')' after do-while condition")
	end := p.expectStatementEnd()

	return &ast.DoWhileStmt{Base: ast.At(source.Merge(kw.Span, end)), Body: body, Cond: cond}
}

// parseForStmt parses only the range-style `for (id = start to end) body`
// (spec.md §9: the documented, implemented form — C-style for is not
// supported).
func (p *Parser) parseForStmt() *ast.ForStmt {
	kw := p.advance() // `for`
	p.expect(token.LPAREN, "expected '(' after 'for'")
	nameTok := p.expect(token.IDENT, "expected a loop variable name")
	p.expect(token.ASSIGN, "expected '=' after loop variable")
	startExpr := p.parseExpression()
	p.expect(token.KW_TO, "expected 'to' in range-style for loop")
	endExpr := p.parseExpression()
	p.expect(token.RPAREN, "expected ')' after for-loop range")

	p.inLoop++
	body := p.parseBlock()
	p.inLoop--

	return &ast.ForStmt{
		Base:  ast.At(source.Merge(kw.Span, body.Span())),
		Name:  nameTok.Lexeme,
		Start: startExpr,
		End:   endExpr,
		Body:  body,
	}
}

// parseSwitchStmt parses `switch (expr) { case const: stmts... [default: stmts] }`.
// Fall-through between cases is not modeled (spec.md §4.3, §9).
func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	kw := p.advance() // `switch`
	p.expect(token.LPAREN, "expected '(' after 'switch'")
	scrutinee := p.parseExpression()
	p.expect(token.RPAREN, "expected ')' after switch scrutinee")
	p.expect(token.LBRACE, "expected '{' to begin switch body")
	p.skipStatementSeparators()

	p.inSwitch++
	defer func() { p.inSwitch-- }()

	var cases []*ast.SwitchCase
	var defaultBody []ast.Statement
	sawDefault := false
	var defaultSpan source.Span

	for !p.check(token.RBRACE) && p.peek().Kind != token.EOF {
		switch p.peek().Kind {
		case token.KW_CASE:
			caseKw := p.advance()
			val := p.parseExpression()
			p.expect(token.COLON, "expected ':' after case value")
			body := p.parseCaseBody()
			endSpan := caseKw.Span
			if len(body) > 0 {
				endSpan = body[len(body)-1].Span()
			}
			cases = append(cases, &ast.SwitchCase{
				Base:  ast.At(source.Merge(caseKw.Span, endSpan)),
				Value: val,
				Body:  body,
			})
		case token.KW_DEFAULT:
			dKw := p.advance()
			p.expect(token.COLON, "expected ':' after 'default'")
			if sawDefault {
				d := diag.New(diag.SMultipleDefault, diag.Error, "switch statement has more than one default clause", dKw.Span)
				d = d.WithRelated(defaultSpan, "first default clause is here")
				p.diags.Add(d)
			} else {
				sawDefault = true
				defaultSpan = dKw.Span
			}
			defaultBody = p.parseCaseBody()
		default:
			at := p.peek()
			p.errorf(at.Span, "expected 'case' or 'default' inside switch body")
			p.synchronize()
		}
		p.skipStatementSeparators()
	}
	closing := p.expect(token.RBRACE, "expected '}' to close switch body")

	return &ast.SwitchStmt{
		Base:      ast.At(source.Merge(kw.Span, closing.Span)),
		Scrutinee: scrutinee,
		Cases:     cases,
		Default:   defaultBody,
	}
}

// parseCaseBody parses the statements belonging to one `case`/`default` arm,
// stopping at the next case label or the closing brace.
func (p *Parser) parseCaseBody() []ast.Statement {
	p.skipStatementSeparators()
	var stmts []ast.Statement
	for !p.check(token.RBRACE) && !p.check(token.KW_CASE) && !p.check(token.KW_DEFAULT) && p.peek().Kind != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipStatementSeparators()
	}
	return stmts
}

func (p *Parser) parseBreakStmt() *ast.BreakStmt {
	kw := p.advance()
	if p.inLoop == 0 && p.inSwitch == 0 {
		p.errorCode(diag.SBreakOutsideLoop, kw.Span, "'break' outside a loop or switch")
	}
	end := p.expectStatementEnd()
	return &ast.BreakStmt{Base: ast.At(source.Merge(kw.Span, end))}
}

func (p *Parser) parseContinueStmt() *ast.ContinueStmt {
	kw := p.advance()
	if p.inLoop == 0 {
		p.errorCode(diag.SContinueOutsideLoop, kw.Span, "'continue' outside a loop")
	}
	end := p.expectStatementEnd()
	return &ast.ContinueStmt{Base: ast.At(source.Merge(kw.Span, end))}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	kw := p.advance()
	var value ast.Expression
	if !p.check(token.SEMICOLON) && !p.check(token.NEWLINE) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		value = p.parseExpression()
	}
	end := p.expectStatementEnd()
	return &ast.ReturnStmt{Base: ast.At(source.Merge(kw.Span, end)), Value: value}
}

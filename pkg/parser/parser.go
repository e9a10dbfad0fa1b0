// Package parser implements blend65's recursive-descent parser with a Pratt
// expression parser, producing an AST plus diagnostics. Parsing never
// aborts on a single error (spec.md §4.2): malformed input is recorded as a
// diagnostic and the parser resynchronizes at the next statement boundary.
//
// Grounded on the teacher's pkg/asm/assembler/parser.go (kept as reference):
// the same lookahead/expect/match/follows vocabulary, the same idiom of
// returning a zero-width synthetic token from expect() on failure so
// callers can keep building a partial tree instead of unwinding.
package parser

import (
	"fmt"

	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/token"
)

// Parser holds the mutable parse position and the diagnostics sink.
type Parser struct {
	file   *source.File
	tokens []token.Token
	pos    int
	diags  *diag.Sink

	inLoop    int
	inSwitch  int
	funcDepth int

	sawMain  bool
	mainSpan source.Span
}

// New constructs a parser over an already-lexed token stream.
func New(file *source.File, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens, diags: &diag.Sink{}}
}

// Parse parses a token stream into a Program, plus any diagnostics raised
// while doing so. A Program is always returned, even when diagnostics were
// raised, so callers can continue running later passes over partial trees
// (spec.md §7: semantic analysis never halts).
func Parse(file *source.File, tokens []token.Token) (*ast.Program, []diag.Diagnostic) {
	p := New(file, tokens)
	prog := p.parseProgram()
	return prog, p.diags.All()
}

// ---------------------------------------------------------------------
// Token stream primitives
// ---------------------------------------------------------------------

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(ahead int) token.Token {
	i := p.pos + ahead
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

// skipNewlines advances past any run of NEWLINE tokens; callers use this at
// points where a newline is insignificant (e.g. right after `{`).
func (p *Parser) skipNewlines() {
	for p.peek().Kind == token.NEWLINE {
		p.pos++
	}
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes and returns a token of the given kind, or reports a
// diagnostic and returns a synthetic zero-width token of that kind without
// advancing the cursor (spec.md §4.2, §9).
func (p *Parser) expect(kind token.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	at := p.peek()
	p.errorf(at.Span, "%s (found %s)", msg, describeFound(at))
	return token.Token{Kind: kind, Span: source.NewSpan(at.Span.Start, at.Span.Start)}
}

func describeFound(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of file"
	}
	return t.Kind.String()
}

func (p *Parser) errorf(span source.Span, format string, args ...any) {
	p.diags.Errorf(diag.PUnexpectedToken, span, format, args...)
}

func (p *Parser) errorCode(code diag.Code, span source.Span, format string, args ...any) {
	p.diags.Add(diag.New(code, diag.Error, fmt.Sprintf(format, args...), span))
}

func (p *Parser) warnCode(code diag.Code, span source.Span, format string, args ...any) {
	p.diags.Add(diag.New(code, diag.Warning, fmt.Sprintf(format, args...), span))
}

// statementStartKeywords are the tokens synchronize() treats as a safe
// resumption point.
var statementStartKeywords = map[token.Kind]bool{
	token.KW_LET: true, token.KW_CONST: true, token.KW_FUNCTION: true,
	token.KW_IF: true, token.KW_WHILE: true, token.KW_FOR: true, token.KW_DO: true,
	token.KW_SWITCH: true, token.KW_RETURN: true, token.KW_BREAK: true, token.KW_CONTINUE: true,
}

// synchronize advances until it hits a statement-starting keyword, a
// top-level declaration keyword, a closing brace, or a semicolon (which it
// consumes), then resumes (spec.md §4.2).
func (p *Parser) synchronize() {
	for p.peek().Kind != token.EOF {
		if p.peek().Kind == token.SEMICOLON {
			p.advance()
			return
		}
		k := p.peek().Kind
		if statementStartKeywords[k] || k == token.KW_EXPORT || k == token.KW_IMPORT ||
			k == token.KW_ENUM || k == token.RBRACE {
			return
		}
		p.advance()
	}
}

// ---------------------------------------------------------------------
// Program / top-level declarations
// ---------------------------------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	start := p.peek().Span
	var module *ast.ModuleDecl
	var decls []ast.Declaration

	p.skipNewlines()
	if p.check(token.KW_MODULE) {
		module = p.parseModuleDecl()
	}

	for p.peek().Kind != token.EOF {
		p.skipNewlines()
		if p.peek().Kind == token.EOF {
			break
		}

		if p.check(token.KW_MODULE) {
			dup := p.parseModuleDecl()
			if module != nil {
				d := diag.New(diag.PDuplicateModule, diag.Error, "duplicate module declaration", dup.Span())
				d = d.WithRelated(module.Span(), "first module declaration is here")
				p.diags.Add(d)
			} else {
				module = dup
			}
			p.skipStatementSeparators()
			continue
		}

		decl := p.parseTopLevelDeclaration()
		if decl != nil {
			decls = append(decls, decl)
		}
		p.skipStatementSeparators()
	}

	end := p.tokens[len(p.tokens)-1].Span
	return &ast.Program{
		Base:         ast.At(source.Merge(start, end)),
		Module:       module,
		Declarations: decls,
	}
}

func (p *Parser) skipStatementSeparators() {
	for p.peek().Kind == token.SEMICOLON || p.peek().Kind == token.NEWLINE {
		p.advance()
	}
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	kw := p.advance() // `module`
	name := p.parseQualifiedName()
	end := p.expectStatementEnd()
	return &ast.ModuleDecl{Base: ast.At(source.Merge(kw.Span, end)), Name: name}
}

// parseQualifiedName parses a dotted `a.b.c` module path.
func (p *Parser) parseQualifiedName() string {
	first := p.expect(token.IDENT, "expected a module name")
	name := first.Lexeme
	for p.check(token.DOT) {
		p.advance()
		part := p.expect(token.IDENT, "expected an identifier after '.'")
		name += "." + part.Lexeme
	}
	return name
}

// expectStatementEnd consumes the statement terminator: an explicit
// semicolon, or one-or-more significant newlines, or end-of-file/closing
// brace (a trailing newline before `}` is likewise acceptable, spec.md
// §4.1). Returns the span of whatever ended the statement.
func (p *Parser) expectStatementEnd() source.Span {
	at := p.peek()
	if p.check(token.SEMICOLON) {
		t := p.advance()
		p.skipNewlines()
		return t.Span
	}
	if p.check(token.NEWLINE) {
		p.skipNewlines()
		return at.Span
	}
	if p.check(token.EOF) || p.check(token.RBRACE) {
		return at.Span
	}
	p.errorf(at.Span, "expected ';' or a newline to end the statement")
	return at.Span
}

// parseTopLevelDeclaration parses a single top-level declaration, dispatching
// on an optional leading `export` modifier.
func (p *Parser) parseTopLevelDeclaration() ast.Declaration {
	isExport := false
	exportSpan := p.peek().Span
	if p.check(token.KW_EXPORT) {
		isExport = true
		exportSpan = p.advance().Span
	}

	switch p.peek().Kind {
	case token.KW_LET, token.KW_CONST:
		return p.parseVarDecl(isExport, exportSpan)
	case token.KW_FUNCTION:
		return p.parseFuncDecl(isExport, exportSpan)
	case token.KW_ENUM:
		return p.parseEnumDecl(isExport, exportSpan)
	case token.KW_IMPORT:
		if isExport {
			p.errorf(exportSpan, "import declarations cannot be exported")
		}
		return p.parseImportDecl()
	default:
		at := p.peek()
		p.errorf(at.Span, "expected a declaration (let, const, function, enum or import)")
		p.synchronize()
		return nil
	}
}

// parseVarDecl parses `[export] (let|const) name [: type] [= expr];`.
func (p *Parser) parseVarDecl(isExport bool, exportSpan source.Span) *ast.VarDecl {
	kw := p.advance() // `let` or `const`
	isConst := kw.Kind == token.KW_CONST

	nameTok := p.expect(token.IDENT, "expected a variable name")

	var typeAnn *ast.TypeAnnotation
	if p.match(token.COLON) {
		typeAnn = p.parseTypeAnnotation()
	}

	var init ast.Expression
	if p.match(token.ASSIGN) {
		init = p.parseExpression()
	} else if isConst {
		p.errorCode(diag.PConstNoInitialzer, kw.Span, "const %q requires an initializer", nameTok.Lexeme)
	}

	end := p.expectStatementEnd()

	start := kw.Span
	if isExport {
		start = exportSpan
	}
	return &ast.VarDecl{
		Base:     ast.At(source.Merge(start, source.Merge(nameTok.Span, end))),
		Name:     nameTok.Lexeme,
		TypeAnn:  typeAnn,
		Init:     init,
		IsConst:  isConst,
		IsExport: isExport,
	}
}

// parseFuncDecl parses `[export] function name(params): return_type { body }`.
// A function named `main` is implicitly exported with a warning, and a
// second exported `main` is a hard error (spec.md §4.2).
func (p *Parser) parseFuncDecl(isExport bool, exportSpan source.Span) *ast.FuncDecl {
	kw := p.advance() // `function`
	nameTok := p.expect(token.IDENT, "expected a function name")

	p.expect(token.LPAREN, "expected '(' after function name")
	var params []*ast.Param
	if !p.check(token.RPAREN) {
		for {
			params = append(params, p.parseParam())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "expected ')' after parameter list")

	var retType *ast.TypeAnnotation
	if p.match(token.COLON) {
		retType = p.parseTypeAnnotation()
	}

	p.funcDepth++
	body := p.parseBlock()
	p.funcDepth--

	if nameTok.Lexeme == "main" {
		if !isExport {
			isExport = true
			p.warnCode(diag.WImplicitMainExport, nameTok.Span, "function %q is implicitly exported", nameTok.Lexeme)
		}
		if p.sawMain {
			d := diag.New(diag.PDuplicateMain, diag.Error, "duplicate exported main function", nameTok.Span)
			d = d.WithRelated(p.mainSpan, "first main is here")
			p.diags.Add(d)
		} else {
			p.sawMain = true
			p.mainSpan = nameTok.Span
		}
	}

	start := kw.Span
	if isExport {
		start = exportSpan
	}
	return &ast.FuncDecl{
		Base:       ast.At(source.Merge(start, body.Span())),
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		IsExport:   isExport,
	}
}

func (p *Parser) parseParam() *ast.Param {
	nameTok := p.expect(token.IDENT, "expected a parameter name")
	p.expect(token.COLON, "expected ':' before parameter type")
	typeAnn := p.parseTypeAnnotation()
	sp := nameTok.Span
	if typeAnn != nil {
		sp = source.Merge(sp, typeAnn.Span())
	}
	return &ast.Param{Base: ast.At(sp), Name: nameTok.Lexeme, TypeAnn: typeAnn}
}

// parseEnumDecl parses `[export] enum Name { A, B, C }`. Not spelled out in
// spec.md's grammar highlights, but named in its data model as a
// declaration kind alongside variable/function/import; syntax follows the
// teacher's brace-delimited, comma-separated list convention.
func (p *Parser) parseEnumDecl(isExport bool, exportSpan source.Span) *ast.EnumDecl {
	kw := p.advance() // `enum`
	nameTok := p.expect(token.IDENT, "expected an enum name")
	p.expect(token.LBRACE, "expected '{' to begin enum body")
	p.skipNewlines()

	var members []string
	for !p.check(token.RBRACE) && p.peek().Kind != token.EOF {
		m := p.expect(token.IDENT, "expected an enum member name")
		members = append(members, m.Lexeme)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	closing := p.expect(token.RBRACE, "expected '}' to close enum body")

	start := kw.Span
	if isExport {
		start = exportSpan
	}
	return &ast.EnumDecl{
		Base:     ast.At(source.Merge(start, closing.Span)),
		Name:     nameTok.Lexeme,
		Members:  members,
		IsExport: isExport,
	}
}

// parseImportDecl parses `import <bindings> from <qualified.name>;`.
func (p *Parser) parseImportDecl() *ast.ImportDecl {
	kw := p.advance() // `import`

	var bindings []*ast.ImportBinding
	if p.check(token.KW_FROM) || p.check(token.SEMICOLON) || p.check(token.NEWLINE) {
		p.errorCode(diag.PEmptyImportList, kw.Span, "import list must name at least one binding")
	} else {
		for {
			nameTok := p.expect(token.IDENT, "expected an imported name")
			alias := ""
			if p.match(token.KW_AS) {
				a := p.expect(token.IDENT, "expected an alias after 'as'")
				alias = a.Lexeme
			}
			bindings = append(bindings, &ast.ImportBinding{Base: ast.At(nameTok.Span), Name: nameTok.Lexeme, Alias: alias})
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	sourceModule := ""
	if p.match(token.KW_FROM) {
		sourceModule = p.parseQualifiedName()
	} else {
		p.errorCode(diag.PMissingFromClause, p.peek().Span, "expected 'from' clause after import list")
	}

	end := p.expectStatementEnd()
	return &ast.ImportDecl{
		Base:         ast.At(source.Merge(kw.Span, end)),
		Bindings:     bindings,
		SourceModule: sourceModule,
	}
}

// Package token defines the lexical tokens of the blend65 language.
package token

import "github.com/blend65/blend65c/pkg/source"

// Kind enumerates every lexical token category.
type Kind uint

// Token kinds.
const (
	EOF Kind = iota
	ERROR

	IDENT
	NUMBER
	STRING

	// Keywords.
	KW_MODULE
	KW_IMPORT
	KW_FROM
	KW_AS
	KW_EXPORT
	KW_FUNCTION
	KW_LET
	KW_CONST
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_TO
	KW_DO
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_BREAK
	KW_CONTINUE
	KW_RETURN
	KW_TRUE
	KW_FALSE
	KW_ENUM

	// Type keywords.
	KW_BYTE
	KW_WORD
	KW_BOOL
	KW_VOID
	KW_STRING_TYPE
	KW_CALLBACK

	// Punctuation.
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	DOT
	COLON
	SEMICOLON
	NEWLINE

	// Operators.
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	SHL
	SHR
	AMPAMP
	PIPEPIPE
	BANG
	EQ
	EQEQ
	BANGEQ
	LT
	LTEQ
	GT
	GTEQ
	ASSIGN
	QUESTION
)

var names = map[Kind]string{
	EOF: "eof", ERROR: "error", IDENT: "identifier", NUMBER: "number", STRING: "string",
	KW_MODULE: "module", KW_IMPORT: "import", KW_FROM: "from", KW_AS: "as", KW_EXPORT: "export",
	KW_FUNCTION: "function", KW_LET: "let", KW_CONST: "const", KW_IF: "if", KW_ELSE: "else",
	KW_WHILE: "while", KW_FOR: "for", KW_TO: "to", KW_DO: "do", KW_SWITCH: "switch", KW_CASE: "case",
	KW_DEFAULT: "default", KW_BREAK: "break", KW_CONTINUE: "continue", KW_RETURN: "return",
	KW_TRUE: "true", KW_FALSE: "false", KW_ENUM: "enum",
	KW_BYTE: "byte", KW_WORD: "word", KW_BOOL: "bool", KW_VOID: "void",
	KW_STRING_TYPE: "string", KW_CALLBACK: "callback",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", DOT: ".", COLON: ":", SEMICOLON: ";", NEWLINE: "newline",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", AMP: "&", PIPE: "|", CARET: "^",
	TILDE: "~", SHL: "<<", SHR: ">>", AMPAMP: "&&", PIPEPIPE: "||", BANG: "!",
	EQ: "=", EQEQ: "==", BANGEQ: "!=", LT: "<", LTEQ: "<=", GT: ">", GTEQ: ">=",
	ASSIGN: "=", QUESTION: "?",
}

// String renders a kind's canonical name, used in diagnostic messages.
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	//
	return "?"
}

// Keywords maps every reserved word (including primitive type names) onto
// its keyword kind. An identifier lexeme is classified as a keyword only on
// an exact match.
var Keywords = map[string]Kind{
	"module": KW_MODULE, "import": KW_IMPORT, "from": KW_FROM, "as": KW_AS, "export": KW_EXPORT,
	"function": KW_FUNCTION, "let": KW_LET, "const": KW_CONST,
	"if": KW_IF, "else": KW_ELSE, "while": KW_WHILE, "for": KW_FOR, "to": KW_TO, "do": KW_DO,
	"switch": KW_SWITCH, "case": KW_CASE, "default": KW_DEFAULT,
	"break": KW_BREAK, "continue": KW_CONTINUE, "return": KW_RETURN,
	"true": KW_TRUE, "false": KW_FALSE, "enum": KW_ENUM,
	"byte": KW_BYTE, "word": KW_WORD, "bool": KW_BOOL, "boolean": KW_BOOL, "void": KW_VOID,
	"string": KW_STRING_TYPE, "callback": KW_CALLBACK,
}

// Token is a single lexical unit: its kind, its source text, and the span it
// occupies.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span
}

// IsSynthetic reports whether this token was manufactured by the parser's
// error-recovery path (see pkg/parser) rather than scanned from source: a
// zero-width span with an empty lexeme.
func (t Token) IsSynthetic() bool {
	return t.Lexeme == "" && t.Span.Start == t.Span.End && t.Kind != EOF
}

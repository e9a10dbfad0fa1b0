package lexer

import (
	"testing"

	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	f := source.NewFile("t.blend", "module foo;\nfunction bar")
	toks, errs := Lex(f)
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	//
	want := []token.Kind{token.KW_MODULE, token.IDENT, token.SEMICOLON, token.NEWLINE,
		token.KW_FUNCTION, token.IDENT, token.EOF}
	//
	got := kinds(toks)
	//
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	//
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexNumericLiterals(t *testing.T) {
	cases := []struct {
		src     string
		wantErr bool
	}{
		{"255", false},
		{"65535", false},
		{"65536", true},
		{"$FFFF", false},
		{"0xFF", false},
		{"0b1010", false},
		{"0x", true},
		{"0b", true},
	}
	//
	for _, c := range cases {
		f := source.NewFile("t.blend", c.src)
		_, errs := Lex(f)
		//
		if c.wantErr && len(errs) == 0 {
			t.Errorf("%q: expected an error, got none", c.src)
		}
		//
		if !c.wantErr && len(errs) != 0 {
			t.Errorf("%q: unexpected errors: %v", c.src, errs)
		}
	}
}

func TestLexString(t *testing.T) {
	f := source.NewFile("t.blend", `"hello\nworld"`)
	toks, errs := Lex(f)
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	//
	if toks[0].Kind != token.STRING {
		t.Fatalf("expected STRING, got %v", toks[0].Kind)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	f := source.NewFile("t.blend", `"hello`)
	_, errs := Lex(f)
	//
	if len(errs) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(errs))
	}
}

func TestLexBlockCommentDoesNotNest(t *testing.T) {
	// spec.md §9: block comments do not nest. The inner "/*" is plain text;
	// the comment ends at the first "*/".
	f := source.NewFile("t.blend", "/* outer /* inner */ x */")
	toks, errs := Lex(f)
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	// After the comment closes at the first "*/", "x" and "*/" remain as
	// tokens: IDENT, STAR, SLASH, EOF.
	want := []token.Kind{token.IDENT, token.STAR, token.SLASH, token.EOF}
	got := kinds(toks)
	//
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenSpanInvariant(t *testing.T) {
	f := source.NewFile("t.blend", "module foo;")
	toks, _ := Lex(f)
	//
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		//
		if tok.Span.Start.Offset >= tok.Span.End.Offset {
			t.Errorf("token %v has non-positive span %v", tok.Kind, tok.Span)
		}
	}
}

func TestOperators(t *testing.T) {
	f := source.NewFile("t.blend", "<< >> && || == != <= >=")
	toks, errs := Lex(f)
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	//
	want := []token.Kind{token.SHL, token.SHR, token.AMPAMP, token.PIPEPIPE,
		token.EQEQ, token.BANGEQ, token.LTEQ, token.GTEQ, token.EOF}
	got := kinds(toks)
	//
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	//
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

package sema

import (
	"testing"

	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/lexer"
	"github.com/blend65/blend65c/pkg/parser"
	"github.com/blend65/blend65c/pkg/source"
)

func analyze(t *testing.T, src string) (*Result, []diag.Diagnostic) {
	t.Helper()
	f := source.NewFile("t.blend", src)
	toks, lexErrs := lexer.Lex(f)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexErrs)
	}
	prog, parseErrs := parser.Parse(f, toks)
	for _, d := range parseErrs {
		if d.Severity == diag.Error {
			t.Fatalf("unexpected parse diagnostics: %v", parseErrs)
		}
	}
	return Analyze(prog)
}

func TestAnalyzeSimpleFunction(t *testing.T) {
	_, errs := analyze(t, `
export function add(a: byte, b: byte): word {
  return a + b;
}
`)
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	_, errs := analyze(t, `
function f(): void {
  x = 1;
}
`)
	if len(errs) != 1 || errs[0].Code != diag.SUndefinedVariable {
		t.Fatalf("expected SUndefinedVariable, got %v", errs)
	}
}

func TestAnalyzeConstReassignmentIsError(t *testing.T) {
	_, errs := analyze(t, `
function f(): void {
  const x = 1;
  x = 2;
}
`)
	found := false
	for _, d := range errs {
		if d.Code == diag.SConstAssignment {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SConstAssignment, got %v", errs)
	}
}

func TestAnalyzeTypeMismatchOnReturn(t *testing.T) {
	_, errs := analyze(t, `
function f(): bool {
  return 1;
}
`)
	if len(errs) != 1 || errs[0].Code != diag.SReturnTypeMismatch {
		t.Fatalf("expected SReturnTypeMismatch, got %v", errs)
	}
}

func TestAnalyzeArityMismatch(t *testing.T) {
	_, errs := analyze(t, `
function add(a: byte, b: byte): word {
  return a + b;
}
function main(): void {
  let x = add(1);
}
`)
	found := false
	for _, d := range errs {
		if d.Code == diag.SArityMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SArityMismatch, got %v", errs)
	}
}

func TestAnalyzeUnreachableCodeAfterReturn(t *testing.T) {
	_, errs := analyze(t, `
function f(): byte {
  return 1;
  let x = 2;
}
`)
	found := false
	for _, d := range errs {
		if d.Code == diag.WUnreachableCode {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WUnreachableCode, got %v", errs)
	}
}

func TestAnalyzeEnumMemberAccess(t *testing.T) {
	res, errs := analyze(t, `
enum Color {
  Red,
  Green,
  Blue
}
function main(): void {
  let c = Color.Green;
}
`)
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	fi := res.Functions[0]
	sym, ok := fi.Scope.Lookup("c")
	if !ok || sym.Type.String() != "byte" {
		t.Fatalf("expected c: byte, got %#v", sym)
	}
}

func TestAnalyzeDuplicateDeclaration(t *testing.T) {
	_, errs := analyze(t, `
let x: byte = 1;
let x: byte = 2;
`)
	if len(errs) != 1 || errs[0].Code != diag.SDuplicateDeclaration {
		t.Fatalf("expected SDuplicateDeclaration, got %v", errs)
	}
}

func TestAnalyzeCallGraphCollectsCallees(t *testing.T) {
	res, errs := analyze(t, `
function helper(): void {
}
function main(): void {
  helper();
}
`)
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	var main *FuncInfo
	for _, fi := range res.Functions {
		if fi.Decl.Name == "main" {
			main = fi
		}
	}
	if main == nil || len(main.Callees) != 1 || main.Callees[0].Callee.Name != "helper" {
		t.Fatalf("expected main to call helper once, got %#v", main)
	}
}

func TestAnalyzeIndexOutOfRangeConstant(t *testing.T) {
	_, errs := analyze(t, `
function f(): void {
  let xs: byte[3] = [1, 2, 3];
  let y = xs[5];
}
`)
	found := false
	for _, d := range errs {
		if d.Code == diag.SIndexOutOfRange {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SIndexOutOfRange, got %v", errs)
	}
}

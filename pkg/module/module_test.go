package module

import (
	"testing"

	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/lexer"
	"github.com/blend65/blend65c/pkg/parser"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/source"
)

func compile(t *testing.T, name, src string) *Info {
	t.Helper()
	f := source.NewFile(name+".blend", src)
	toks, lexErrs := lexer.Lex(f)
	if len(lexErrs) != 0 {
		t.Fatalf("%s: unexpected lex diagnostics: %v", name, lexErrs)
	}
	prog, parseErrs := parser.Parse(f, toks)
	if len(parseErrs) != 0 {
		t.Fatalf("%s: unexpected parse diagnostics: %v", name, parseErrs)
	}
	result, semaErrs := sema.Analyze(prog)
	if len(semaErrs) != 0 {
		t.Fatalf("%s: unexpected sema diagnostics: %v", name, semaErrs)
	}
	return &Info{Name: name, File: f.Name, Program: prog, Result: result}
}

func TestRegistryTopologicalOrder(t *testing.T) {
	r := NewRegistry()
	a := compile(t, "a", "export function f(): void {}\n")
	b := compile(t, "b", "import f from a;\nexport function g(): void { f(); }\n")
	c := compile(t, "c", "import g from b;\nexport function h(): void { g(); }\n")
	r.Add("c", c.File, c.Program, c.Result)
	r.Add("a", a.File, a.Program, a.Result)
	r.Add("b", b.File, b.Program, b.Result)

	if diags := r.DetectCycles(); len(diags) != 0 {
		t.Fatalf("unexpected cycle diagnostics: %v", diags)
	}

	order := r.TopologicalOrder()
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if !(pos["a"] < pos["b"] && pos["b"] < pos["c"]) {
		t.Fatalf("expected a before b before c, got %v", order)
	}
}

func TestRegistryDetectsCircularImport(t *testing.T) {
	r := NewRegistry()
	a := compile(t, "a", "import g from b;\nexport function f(): void { g(); }\n")
	b := compile(t, "b", "import f from a;\nexport function g(): void { f(); }\n")
	r.Add("a", a.File, a.Program, a.Result)
	r.Add("b", b.File, b.Program, b.Result)

	diags := r.DetectCycles()
	found := false
	for _, d := range diags {
		if d.Code == diag.PCircularImport {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PCircularImport, got %v", diags)
	}
}

func TestResolveImportsFixesUpSymbolType(t *testing.T) {
	r := NewRegistry()
	a := compile(t, "a", "export function f(a: byte, b: byte): word { return a + b; }\n")
	b := compile(t, "b", "import f from a;\nexport function g(): word { return f(1, 2); }\n")
	r.Add("a", a.File, a.Program, a.Result)
	r.Add("b", b.File, b.Program, b.Result)

	if diags := r.ResolveImports(); len(diags) != 0 {
		t.Fatalf("unexpected resolve diagnostics: %v", diags)
	}

	sym, ok := b.Result.ModuleScope.LookupLocal("f")
	if !ok {
		t.Fatalf("expected local symbol f in module b")
	}
	if sym.Type.String() != "function(byte, byte) word" {
		t.Fatalf("unexpected resolved type: %s", sym.Type.String())
	}
}

func TestResolveImportsModuleNotFound(t *testing.T) {
	r := NewRegistry()
	b := compile(t, "b", "import f from a;\n")
	r.Add("b", b.File, b.Program, b.Result)

	diags := r.ResolveImports()
	if len(diags) != 1 || diags[0].Code != diag.SModuleNotFound {
		t.Fatalf("expected SModuleNotFound, got %v", diags)
	}
}

func TestResolveImportsNotExported(t *testing.T) {
	r := NewRegistry()
	a := compile(t, "a", "function f(): void {}\n")
	b := compile(t, "b", "import f from a;\n")
	r.Add("a", a.File, a.Program, a.Result)
	r.Add("b", b.File, b.Program, b.Result)

	diags := r.ResolveImports()
	if len(diags) != 1 || diags[0].Code != diag.SImportNotExported {
		t.Fatalf("expected SImportNotExported, got %v", diags)
	}
}

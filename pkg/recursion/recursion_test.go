package recursion

import (
	"testing"

	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/lexer"
	"github.com/blend65/blend65c/pkg/module"
	"github.com/blend65/blend65c/pkg/parser"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/source"
)

func register(t *testing.T, reg *module.Registry, name, src string) {
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
	reg.Add(name, f.Name, prog, result)
}

func findCode(diags []diag.Diagnostic, code diag.Code) int {
	n := 0
	for _, d := range diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestDirectRecursionIsRejected(t *testing.T) {
	reg := module.NewRegistry()
	register(t, reg, "a", "export function f(): void { f(); }\n")

	diags := Build(reg).Diagnostics()
	if findCode(diags, diag.SDirectRecursion) != 1 {
		t.Fatalf("expected exactly one SDirectRecursion, got %v", diags)
	}
}

func TestMutualRecursionWithinAModuleIsRejected(t *testing.T) {
	reg := module.NewRegistry()
	register(t, reg, "a", "function f(): void { g(); }\nfunction g(): void { f(); }\n")

	diags := Build(reg).Diagnostics()
	if findCode(diags, diag.SMutualRecursion) != 1 {
		t.Fatalf("expected exactly one SMutualRecursion, got %v", diags)
	}
}

func TestIndirectRecursionIsRejected(t *testing.T) {
	reg := module.NewRegistry()
	register(t, reg, "a",
		"function f(): void { g(); }\nfunction g(): void { h(); }\nfunction h(): void { f(); }\n")

	diags := Build(reg).Diagnostics()
	if findCode(diags, diag.SIndirectRecusion) != 1 {
		t.Fatalf("expected exactly one SIndirectRecusion, got %v", diags)
	}
}

func TestAcyclicCallChainProducesNoDiagnostics(t *testing.T) {
	reg := module.NewRegistry()
	register(t, reg, "a",
		"function f(): void { g(); }\nfunction g(): void { h(); }\nfunction h(): void {}\n")

	if diags := Build(reg).Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no recursion diagnostics, got %v", diags)
	}
}

func TestCrossModuleMutualRecursionIsRejected(t *testing.T) {
	reg := module.NewRegistry()
	register(t, reg, "a", "import g from b;\nexport function f(): void { g(); }\n")
	register(t, reg, "b", "import f from a;\nexport function g(): void { f(); }\n")

	if diags := reg.ResolveImports(); len(diags) != 0 {
		t.Fatalf("unexpected resolve diagnostics: %v", diags)
	}

	diags := Build(reg).Diagnostics()
	if findCode(diags, diag.SMutualRecursion) != 1 {
		t.Fatalf("expected exactly one SMutualRecursion across modules, got %v", diags)
	}
}

func TestCycleDeduplicatesRegardlessOfEntryPoint(t *testing.T) {
	reg := module.NewRegistry()
	register(t, reg, "a",
		"export function f(): void { g(); }\nexport function g(): void { f(); }\n")

	diags := Build(reg).Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected a single deduplicated cycle report, got %v", diags)
	}
}

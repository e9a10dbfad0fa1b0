package ilgen

import (
	"testing"

	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/lexer"
	"github.com/blend65/blend65c/pkg/module"
	"github.com/blend65/blend65c/pkg/parser"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/source"
)

func generate(t *testing.T, src string) (*il.Module, []diag.Diagnostic) {
	t.Helper()
	f := source.NewFile("t.blend", src)
	toks, lexErrs := lexer.Lex(f)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexErrs)
	}
	prog, parseErrs := parser.Parse(f, toks)
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", parseErrs)
	}
	result, semaErrs := sema.Analyze(prog)
	if len(semaErrs) != 0 {
		t.Fatalf("unexpected sema diagnostics: %v", semaErrs)
	}
	return Generate("t", prog, result)
}

func findFunc(mod *il.Module, name string) *il.Function {
	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func validateAll(t *testing.T, mod *il.Module) {
	t.Helper()
	for _, fn := range mod.Functions {
		if errs := il.Validate(fn); len(errs) != 0 {
			t.Fatalf("function %q failed validation: %v", fn.Name, errs)
		}
	}
}

func TestGenerateSimpleArithmetic(t *testing.T) {
	mod, diags := generate(t, `
export function add(a: byte, b: byte): word {
  return a + b;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.add")
	if fn == nil {
		t.Fatalf("expected function t.add, got %v", mod.Functions)
	}
	if !fn.Exported {
		t.Fatalf("expected add to be exported")
	}
	last := fn.Blocks[len(fn.Blocks)-1]
	term := last.Terminator()
	if term == nil || term.Op != il.RETURN {
		t.Fatalf("expected a trailing RETURN, got %#v", term)
	}
}

func TestGenerateVoidFunctionGetsImplicitReturn(t *testing.T) {
	mod, diags := generate(t, `
function f(): void {
  let x = 1;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	last := fn.Blocks[len(fn.Blocks)-1]
	term := last.Terminator()
	if term == nil || term.Op != il.RETURN_VOID {
		t.Fatalf("expected a synthesized RETURN_VOID, got %#v", term)
	}
}

func TestGenerateIfElseMergesVariable(t *testing.T) {
	mod, diags := generate(t, `
function f(cond: bool): word {
  let x: word = 1;
  if (cond) {
    x = 2;
  } else {
    x = 3;
  }
  return x;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	var join *il.Block
	for _, b := range fn.Blocks {
		if b.Label == "if.join" {
			join = b
		}
	}
	if join == nil {
		t.Fatalf("expected an if.join block, got %v", fn.Blocks)
	}
	if len(join.Instrs) == 0 || join.Instrs[0].Op != il.PHI {
		t.Fatalf("expected if.join to merge x via a PHI, got %#v", join.Instrs)
	}
}

func TestGenerateIfWithoutElseFallsThrough(t *testing.T) {
	mod, diags := generate(t, `
function f(cond: bool): word {
  let x: word = 1;
  if (cond) {
    x = 2;
  }
  return x;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)
}

func TestGenerateIfBothBranchesReturnNeedsNoJoin(t *testing.T) {
	mod, diags := generate(t, `
function f(cond: bool): word {
  if (cond) {
    return 1;
  } else {
    return 2;
  }
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	for _, b := range fn.Blocks {
		if b.Label == "if.join" {
			t.Fatalf("expected no if.join block when every path returns, got one: %v", fn.Blocks)
		}
	}
}

func TestGenerateWhileLoopCarriesVariable(t *testing.T) {
	mod, diags := generate(t, `
function f(n: word): word {
  let sum: word = 0;
  let i: word = 0;
  while (i < n) {
    sum = sum + i;
    i = i + 1;
  }
  return sum;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	var header *il.Block
	for _, b := range fn.Blocks {
		if b.Label == "while.header" {
			header = b
		}
	}
	if header == nil {
		t.Fatalf("expected a while.header block, got %v", fn.Blocks)
	}
	phiCount := 0
	for _, i := range header.Instrs {
		if i.Op == il.PHI {
			phiCount++
		}
	}
	if phiCount != 2 {
		t.Fatalf("expected 2 loop-carried phis (sum, i) at while.header, got %d", phiCount)
	}
}

func TestGenerateDoWhileAlwaysRunsOnce(t *testing.T) {
	mod, diags := generate(t, `
function f(n: word): word {
  let i: word = 0;
  do {
    i = i + 1;
  } while (i < n);
  return i;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)
}

func TestGenerateForRangeLoop(t *testing.T) {
	mod, diags := generate(t, `
function f(): word {
  let sum: word = 0;
  for (i = 0 to 9) {
    sum = sum + i;
  }
  return sum;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	var inc *il.Block
	for _, b := range fn.Blocks {
		if b.Label == "for.inc" {
			inc = b
		}
	}
	if inc == nil {
		t.Fatalf("expected a for.inc block, got %v", fn.Blocks)
	}
	foundAdd := false
	for _, i := range inc.Instrs {
		if i.Op == il.ADD {
			foundAdd = true
		}
	}
	if !foundAdd {
		t.Fatalf("expected for.inc to increment the loop variable, got %#v", inc.Instrs)
	}
}

func TestGenerateBreakAndContinue(t *testing.T) {
	mod, diags := generate(t, `
function f(n: word): word {
  let i: word = 0;
  let sum: word = 0;
  while (i < n) {
    i = i + 1;
    if (i == 5) {
      break;
    }
    if (i == 2) {
      continue;
    }
    sum = sum + i;
  }
  return sum;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)
}

func TestGenerateSwitchLowersToCompareChain(t *testing.T) {
	mod, diags := generate(t, `
function f(x: byte): word {
  let y: word = 0;
  switch (x) {
    case 1:
      y = 10;
    case 2:
      y = 20;
    default:
      y = 0;
  }
  return y;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	cmpCount := 0
	for _, b := range fn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == il.CMP_EQ {
				cmpCount++
			}
		}
	}
	if cmpCount != 2 {
		t.Fatalf("expected 2 CMP_EQ compares for 2 cases, got %d", cmpCount)
	}
}

func TestGenerateSwitchBreakSkipsRemainingCases(t *testing.T) {
	mod, diags := generate(t, `
function f(x: byte): word {
  let y: word = 0;
  switch (x) {
    case 1:
      y = 10;
      break;
    case 2:
      y = 20;
  }
  return y;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)
}

func TestGenerateShortCircuitAnd(t *testing.T) {
	mod, diags := generate(t, `
function f(a: bool, b: bool): bool {
  return a && b;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	var rhs *il.Block
	for _, b := range fn.Blocks {
		if b.Label == "and.rhs" {
			rhs = b
		}
	}
	if rhs == nil {
		t.Fatalf("expected an and.rhs block, got %v", fn.Blocks)
	}
}

func TestGenerateShortCircuitOr(t *testing.T) {
	mod, diags := generate(t, `
function f(a: bool, b: bool): bool {
  return a || b;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)
}

func TestGenerateTernary(t *testing.T) {
	mod, diags := generate(t, `
function f(cond: bool): word {
  return cond ? 1 : 2;
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.f")
	var join *il.Block
	for _, b := range fn.Blocks {
		if b.Label == "ternary.join" {
			join = b
		}
	}
	if join == nil || len(join.Instrs) == 0 || join.Instrs[0].Op != il.PHI {
		t.Fatalf("expected ternary.join to merge the result via a PHI, got %v", fn.Blocks)
	}
}

func TestGenerateIntrinsicCalls(t *testing.T) {
	mod, diags := generate(t, `
export function poll(addr: word, v: byte): word {
  let arr: byte[4] = [1, 2, 3, 4];
  poke(addr, v);
  let b: byte = peek(addr);
  let h: byte = hi(addr);
  let l: byte = lo(addr);
  return len(arr);
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "t.poll")
	var sawRead, sawWrite, sawShr, sawAnd, sawCall bool
	for _, b := range fn.Blocks {
		for _, i := range b.Instrs {
			switch i.Op {
			case il.HW_READ:
				sawRead = true
			case il.HW_WRITE:
				sawWrite = true
			case il.SHR:
				sawShr = true
			case il.AND:
				sawAnd = true
			case il.CALL, il.CALL_VOID:
				sawCall = true
			}
		}
	}
	if !sawRead || !sawWrite || !sawShr || !sawAnd {
		t.Fatalf("expected peek/poke/hi/lo to lower to HW_READ/HW_WRITE/SHR/AND directly")
	}
	if sawCall {
		t.Fatalf("no CALL/CALL_VOID node should survive for an intrinsic")
	}

	last := fn.Blocks[len(fn.Blocks)-1]
	term := last.Terminator()
	if term == nil || term.Op != il.RETURN || len(term.Operands) != 1 {
		t.Fatalf("expected a RETURN of a constant length, got %#v", term)
	}
	if c, ok := term.Operands[0].(il.Constant); !ok || c.Val != 4 {
		t.Fatalf("expected len(arr) to fold to the constant 4, got %#v", term.Operands[0])
	}
}

func TestGenerateGlobalArrayReadWrite(t *testing.T) {
	mod, diags := generate(t, `
let buf: byte[4] = [0, 0, 0, 0];

export function store(i: word, v: byte): void {
  buf[i] = v;
}

export function load(i: word): byte {
  return buf[i];
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	if len(mod.Globals) != 1 || mod.Globals[0].Name != "buf" {
		t.Fatalf("expected a single global 'buf', got %v", mod.Globals)
	}

	storeFn := findFunc(mod, "t.store")
	foundStore := false
	for _, b := range storeFn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == il.STORE_MEM {
				foundStore = true
				if len(i.Operands) != 3 {
					t.Fatalf("expected a 3-operand STORE_MEM for an indexed write, got %#v", i.Operands)
				}
				lbl, ok := i.Operands[0].(il.Label)
				if !ok || lbl.Name != "t.buf" {
					t.Fatalf("expected STORE_MEM to address t.buf, got %#v", i.Operands[0])
				}
			}
		}
	}
	if !foundStore {
		t.Fatalf("expected a STORE_MEM in store(), got none")
	}

	loadFn := findFunc(mod, "t.load")
	foundLoad := false
	for _, b := range loadFn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == il.LOAD_MEM {
				foundLoad = true
				if len(i.Operands) != 2 {
					t.Fatalf("expected a 2-operand LOAD_MEM for an indexed read, got %#v", i.Operands)
				}
			}
		}
	}
	if !foundLoad {
		t.Fatalf("expected a LOAD_MEM in load(), got none")
	}
}

func TestGenerateEntryPointIsMain(t *testing.T) {
	mod, diags := generate(t, `
export function main(): void {
}
`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	validateAll(t, mod)

	if mod.EntryPoint != "main" {
		t.Fatalf("expected EntryPoint %q, got %q", "main", mod.EntryPoint)
	}
}

func registerModule(t *testing.T, reg *module.Registry, name, src string) {
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

func TestGenerateCrossModuleCallQualifiesCallee(t *testing.T) {
	reg := module.NewRegistry()
	registerModule(t, reg, "mathlib", "export function square(x: byte): word {\n  return x * x;\n}\n")
	registerModule(t, reg, "main",
		"import square from mathlib;\nexport function run(x: byte): word {\n  return square(x);\n}\n")

	if diags := reg.ResolveImports(); len(diags) != 0 {
		t.Fatalf("unexpected resolve diagnostics: %v", diags)
	}

	entry, ok := reg.Lookup("main")
	if !ok {
		t.Fatalf("expected module 'main' to be registered")
	}

	mod, diags := Generate("main", entry.Program, entry.Result)
	if len(diags) != 0 {
		t.Fatalf("unexpected ilgen diagnostics: %v", diags)
	}
	validateAll(t, mod)

	fn := findFunc(mod, "main.run")
	if fn == nil {
		t.Fatalf("expected main.run, got %v", mod.Functions)
	}
	var callee string
	for _, b := range fn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == il.CALL {
				callee = i.Callee
			}
		}
	}
	if callee != "mathlib.square" {
		t.Fatalf("expected the call to be qualified as mathlib.square, got %q", callee)
	}
}

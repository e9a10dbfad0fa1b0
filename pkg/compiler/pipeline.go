// Package compiler orchestrates the whole pipeline (spec.md §2): lex,
// parse, and analyze every source file; register them in a module.Registry
// and resolve imports; reject recursive call graphs; lower, optimize, and
// statically frame-allocate the merged program; emit ACME text.
//
// Grounded on the teacher's pkg/cmd/compile.go (kept as reference under
// _examples): the only layer in the teacher that calls every phase in
// sequence and owns the logrus logger. This package plays the same role
// for blend65c, but cmd/blend65c is deliberately thinner than the
// teacher's own cmd package — Pipeline.Run is importable and testable on
// its own, not just reachable through the CLI.
package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/blend65/blend65c/internal/logging"
	"github.com/blend65/blend65c/pkg/ast"
	"github.com/blend65/blend65c/pkg/asmil"
	"github.com/blend65/blend65c/pkg/codegen"
	"github.com/blend65/blend65c/pkg/config"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/emit"
	"github.com/blend65/blend65c/pkg/il"
	"github.com/blend65/blend65c/pkg/ilgen"
	"github.com/blend65/blend65c/pkg/lexer"
	"github.com/blend65/blend65c/pkg/module"
	"github.com/blend65/blend65c/pkg/optimize"
	"github.com/blend65/blend65c/pkg/parser"
	"github.com/blend65/blend65c/pkg/recursion"
	"github.com/blend65/blend65c/pkg/sema"
	"github.com/blend65/blend65c/pkg/sfa"
	"github.com/blend65/blend65c/pkg/source"
	"github.com/blend65/blend65c/pkg/target"
)

// Input is one source file handed to the pipeline: its path and
// contents. Run names its module for module.Registry.Add from the file's
// own `module` header, or from its base name when there is none.
type Input struct {
	Path     string
	Contents string
}

// Output is everything a successful compilation produced: the emitted
// ACME text (and VICE label file, if requested), plus every diagnostic
// gathered along the way (spec.md §7: diagnostics accumulate, they are
// not thrown).
type Output struct {
	ASM        string
	Labels     string
	LineCount  int
	TotalBytes int
	Stats      asmil.Stats
	Diagnostics []diag.Diagnostic
}

// Pipeline runs every phase over a set of inputs and produces an Output,
// or a fatal error if an internal invariant was violated (spec.md §7: a
// panic escaping the IL generator, optimizer, or code generator is a
// compiler bug, not a user error, and is converted here into a single
// S999 InternalError diagnostic rather than propagating to the caller).
type Pipeline struct {
	Config config.Config
}

// New returns a Pipeline configured for cfg.
func New(cfg config.Config) *Pipeline {
	return &Pipeline{Config: cfg}
}

// Run compiles every input through to ACME text. It never panics: any
// recovered internal invariant violation is folded into the returned
// Output's Diagnostics with Diagnostics containing exactly one
// SInternalInvariant entry and no ASM text.
func (p *Pipeline) Run(inputs []Input) (out *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = &Output{Diagnostics: []diag.Diagnostic{
				diag.New(diag.SInternalInvariant, diag.Error,
					fmt.Sprintf("internal error: %v", r), source.Span{}),
			}}
			err = fmt.Errorf("internal compiler error: %v", r)
		}
	}()

	tgt, ok := target.Lookup(p.Config.Target)
	if !ok {
		return &Output{Diagnostics: []diag.Diagnostic{
			diag.New(diag.STargetNotImplemented, diag.Error,
				fmt.Sprintf("unknown target %q", p.Config.Target), source.Span{}),
		}}, nil
	}
	if !tgt.Implemented {
		return &Output{Diagnostics: []diag.Diagnostic{
			diag.New(diag.STargetNotImplemented, diag.Error,
				fmt.Sprintf("target %q is listed but not yet implemented", tgt.Name), source.Span{}),
		}}, nil
	}

	log := logging.Phase("compile")
	reg := module.NewRegistry()
	var diags []diag.Diagnostic

	for _, in := range inputs {
		f := source.NewFile(in.Path, in.Contents)

		plog := logging.Module(logging.Phase("parse"), f.Name)
		plog.Debug("lexing")
		toks, lexDiags := lexer.Lex(f)
		diags = append(diags, lexDiags...)

		prog, parseDiags := parser.Parse(f, toks)
		diags = append(diags, parseDiags...)

		semaLog := logging.Module(logging.Phase("sema"), f.Name)
		semaLog.Debug("analyzing")
		result, semaDiags := sema.Analyze(prog)
		diags = append(diags, semaDiags...)

		name := moduleName(prog, f.Name)
		reg.Add(name, f.Name, prog, result)
	}

	diags = append(diags, reg.DetectCycles()...)
	diags = append(diags, reg.ResolveImports()...)

	recDiags := recursion.Build(reg).Diagnostics()
	diags = append(diags, recDiags...)
	if hasError(recDiags) {
		log.Warn("recursive call graph, stopping before code generation")
		return &Output{Diagnostics: diags}, nil
	}
	if hasError(diags) {
		return &Output{Diagnostics: diags}, nil
	}

	var ilMods []*il.Module
	for _, name := range reg.TopologicalOrder() {
		info, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		ilLog := logging.Module(logging.Phase("ilgen"), name)
		ilLog.Debug("lowering to IL")
		ilMod, ilDiags := ilgen.Generate(name, info.Program, info.Result)
		diags = append(diags, ilDiags...)
		ilMods = append(ilMods, ilMod)
	}
	if hasError(diags) {
		return &Output{Diagnostics: diags}, nil
	}

	merged := il.Merge("program", ilMods...)

	optLog := logging.Phase("optimize")
	level := p.Config.OptimizationLevel
	if level > optimize.O1 {
		diags = append(diags, diag.New(diag.SUnsupportedOptLevel, diag.Warning,
			fmt.Sprintf("optimization level %d behaves as O0", level), source.Span{}))
	}
	optLog.Debug("running pass manager")
	optimize.New(level).Run(merged)

	codegenLog := logging.Phase("codegen")
	codegenLog.Debug("generating ASM-IL")
	asmMod := codegen.Generate(merged, p.Config.LoadAddress)
	for _, w := range asmMod.Stats.Warnings {
		diags = append(diags, diag.New(diag.WUnsupportedInsn, diag.Warning, w.Message, w.Span))
	}

	sfaLog := logging.Phase("sfa")
	sfaLog.Debug("allocating static frames")
	if _, sfaErr := sfa.Allocate(merged, asmMod, tgt); sfaErr != nil {
		if se, ok := sfaErr.(*sfa.Error); ok {
			diags = append(diags, diag.New(se.Code, diag.Error, se.Message, source.Span{}))
			return &Output{Diagnostics: diags}, nil
		}
		return nil, sfaErr
	}

	emitLog := logging.Phase("emit")
	emitLog.Debug("rendering ACME text")
	result := emit.Emit(asmMod, p.Config)

	labels := ""
	if p.Config.Debug == config.DebugVICE || p.Config.Debug == config.DebugBoth {
		labels = emit.Labels(asmMod)
	}

	return &Output{
		ASM:         result.Text,
		Labels:      labels,
		LineCount:   result.LineCount,
		TotalBytes:  result.TotalBytes,
		Stats:       asmMod.Stats,
		Diagnostics: diags,
	}, nil
}

// moduleName names a registered module: its own `module` header if
// present, otherwise the file's base name with its extension stripped
// (spec.md §5).
func moduleName(prog *ast.Program, file string) string {
	if prog.Module != nil && prog.Module.Name != "" {
		return prog.Module.Name
	}
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hasError(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

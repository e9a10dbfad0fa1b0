package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blend65/blend65c/pkg/compiler"
	"github.com/blend65/blend65c/pkg/config"
	"github.com/blend65/blend65c/pkg/diag"
	"github.com/blend65/blend65c/pkg/optimize"
)

// pipelineFlags is the set of cobra flags every subcommand that runs the
// pipeline shares, bound directly to a config.Config the way the
// teacher's rootCmd binds persistent flags straight to its own compile
// options — no intermediate JSON/file config layer (SPEC_FULL.md §1:
// that loading is out of scope for the core).
type pipelineFlags struct {
	target      string
	opt         string
	debug       string
	loadAddress uint16
	noBasicStub bool
	sourceMap   bool
	hexPrefix   string
	indent      int
	noComments  bool
	noBlanks    bool
	lowercase   bool
	cycleCounts bool
	crlf        bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().StringVar(&f.target, "target", def.Target, "target machine: c64, c64_ntsc, c128, x16")
	cmd.Flags().StringVar(&f.opt, "opt", "O0", "optimization level: O0, O1, O2, O3, Os, Oz")
	cmd.Flags().StringVar(&f.debug, "debug", "none", "debug artifacts: none, inline, vice, both")
	cmd.Flags().Uint16Var(&f.loadAddress, "load-address", def.LoadAddress, "machine code origin")
	cmd.Flags().BoolVar(&f.noBasicStub, "no-basic-stub", false, "omit the BASIC \"SYS\" auto-run stub")
	cmd.Flags().BoolVar(&f.sourceMap, "source-map", false, "record a line-number -> source-span map")
	cmd.Flags().StringVar(&f.hexPrefix, "hex-prefix", "$", "hex literal prefix: $ or 0x")
	cmd.Flags().IntVar(&f.indent, "indent", 0, "instruction indent width; 0 means a literal tab")
	cmd.Flags().BoolVar(&f.noComments, "no-comments", false, "suppress generated comments")
	cmd.Flags().BoolVar(&f.noBlanks, "no-blank-lines", false, "suppress blank separator lines")
	cmd.Flags().BoolVar(&f.lowercase, "lowercase-mnemonics", false, "emit lowercase mnemonics")
	cmd.Flags().BoolVar(&f.cycleCounts, "cycle-counts", false, "append byte/cycle counts to each instruction")
	cmd.Flags().BoolVar(&f.crlf, "crlf", false, "use CRLF line endings")
}

func (f *pipelineFlags) toConfig() (config.Config, error) {
	cfg := config.Default()
	cfg.Target = f.target
	cfg.LoadAddress = f.loadAddress
	cfg.BasicStub = !f.noBasicStub
	cfg.SourceMap = f.sourceMap
	cfg.IncludeComments = !f.noComments
	cfg.IncludeBlankLines = !f.noBlanks
	cfg.UppercaseMnemonics = !f.lowercase
	cfg.IncludeCycleCounts = f.cycleCounts
	cfg.CRLF = f.crlf
	cfg.IndentWidth = f.indent

	switch f.hexPrefix {
	case "$":
		cfg.HexPrefixZero = false
	case "0x":
		cfg.HexPrefixZero = true
	default:
		return cfg, fmt.Errorf("invalid --hex-prefix %q: expected \"$\" or \"0x\"", f.hexPrefix)
	}

	lvl, err := parseLevel(f.opt)
	if err != nil {
		return cfg, err
	}
	cfg.OptimizationLevel = lvl

	switch f.debug {
	case "none":
		cfg.Debug = config.DebugNone
	case "inline":
		cfg.Debug = config.DebugInline
	case "vice":
		cfg.Debug = config.DebugVICE
	case "both":
		cfg.Debug = config.DebugBoth
	default:
		return cfg, fmt.Errorf("invalid --debug %q: expected none, inline, vice, or both", f.debug)
	}

	return cfg, nil
}

func parseLevel(s string) (optimize.Level, error) {
	switch s {
	case "O0":
		return optimize.O0, nil
	case "O1":
		return optimize.O1, nil
	case "O2":
		return optimize.O2, nil
	case "O3":
		return optimize.O3, nil
	case "Os":
		return optimize.Os, nil
	case "Oz":
		return optimize.Oz, nil
	default:
		return optimize.O0, fmt.Errorf("invalid --opt %q: expected O0, O1, O2, O3, Os, or Oz", s)
	}
}

// readInputs reads every named source file into a compiler.Input, the
// way pkg/cmd/compile.go reads its positional file arguments.
func readInputs(paths []string) ([]compiler.Input, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}
	inputs := make([]compiler.Input, 0, len(paths))
	for _, p := range paths {
		contents, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		inputs = append(inputs, compiler.Input{Path: p, Contents: string(contents)})
	}
	return inputs, nil
}

// printDiagnostics prints every diagnostic to stderr, in the order the
// pipeline produced them (spec.md §7: per-file source order, files in
// dependency-topological order).
func printDiagnostics(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

// hasErrorSeverity reports whether diags contains at least one
// error-severity diagnostic (spec.md §7: "the exit code is nonzero iff
// any error-severity diagnostic was produced").
func hasErrorSeverity(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

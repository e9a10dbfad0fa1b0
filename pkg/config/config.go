// Package config is the plain data object that configures one
// compilation (spec.md §6 "Configuration inputs consumed by the core").
// It loads nothing itself: cmd/blend65c is the only layer that turns
// cobra flags (and, in a real deployment, a blend65.json file) into a
// Config value — the core never reads a filesystem path or an
// environment variable on its own behalf.
package config

import "github.com/blend65/blend65c/pkg/optimize"

// OutputFormat selects what the pipeline produces.
type OutputFormat string

const (
	OutputASM  OutputFormat = "asm"
	OutputPRG  OutputFormat = "prg" // requires an external ACME invocation; the core never shells out
	OutputBoth OutputFormat = "both"
)

// DebugMode selects which debugging artifacts accompany the ACME text.
type DebugMode string

const (
	DebugNone   DebugMode = "none"
	DebugInline DebugMode = "inline"
	DebugVICE   DebugMode = "vice"
	DebugBoth   DebugMode = "both"
)

// Config is the configuration object spec.md §6 enumerates: target,
// optimization level, debug mode, output format, load address, BASIC
// stub, and source map, plus the emitter's own formatting knobs
// (spec.md §4.10).
type Config struct {
	Target            string
	OptimizationLevel optimize.Level
	Debug             DebugMode
	OutputFormat      OutputFormat
	LoadAddress       uint16
	BasicStub         bool
	SourceMap         bool

	IncludeComments    bool
	IncludeBlankLines  bool
	IndentWidth        int // 0 means a literal tab
	UppercaseMnemonics bool
	HexPrefixZero      bool // false: "$"; true: "0x"
	IncludeCycleCounts bool
	CRLF               bool
}

// Default returns the configuration a bare `blend65c compile` invokes
// with no flags: C64 target, O0, no debug artifacts, ACME text only, the
// machine code origin spec.md §4.8 names ($0810, right after the fixed
// $0801 BASIC stub) with that stub prepended.
func Default() Config {
	return Config{
		Target:             "c64",
		OptimizationLevel:  optimize.O0,
		Debug:              DebugNone,
		OutputFormat:       OutputASM,
		LoadAddress:        0x0810,
		BasicStub:          true,
		SourceMap:          false,
		IncludeComments:    true,
		IncludeBlankLines:  true,
		IndentWidth:        0,
		UppercaseMnemonics: true,
		HexPrefixZero:      false,
		IncludeCycleCounts: false,
		CRLF:               false,
	}
}

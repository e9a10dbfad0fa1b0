// Command blend65c compiles blend65 source files to ACME-compatible
// 6502 assembly text (spec.md §2). Grounded on the teacher's own
// cobra-based pkg/cmd/root.go: a root command with persistent flags
// bound directly to a config struct, and a subcommand per operation
// (compile, check, emit) — rewritten from scratch for blend65c's own
// config.Config rather than the teacher's corset/HIR/MIR flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blend65/blend65c/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blend65c",
		Short: "Compile blend65 source to 6502/C64 assembly",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Configure(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	root.AddCommand(newCompileCmd(), newCheckCmd(), newEmitCmd())
	return root
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blend65/blend65c/pkg/compiler"
)

// newEmitCmd is compile's quiet sibling: it writes only the resulting
// ACME text to stdout (no stats line, no label file), for piping
// straight into an external ACME invocation.
func newEmitCmd() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "emit <file.blend>...",
		Short: "Compile and print ACME text to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.toConfig()
			if err != nil {
				return err
			}
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}

			out, err := compiler.New(cfg).Run(inputs)
			if err != nil {
				return err
			}
			if hasErrorSeverity(out.Diagnostics) {
				printDiagnostics(out.Diagnostics)
				return fmt.Errorf("compilation failed with errors")
			}
			fmt.Print(out.ASM)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

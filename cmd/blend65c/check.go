package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blend65/blend65c/pkg/compiler"
)

func newCheckCmd() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "check <file.blend>...",
		Short: "Run the full pipeline and report diagnostics without writing output",
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
			printDiagnostics(out.Diagnostics)
			if hasErrorSeverity(out.Diagnostics) {
				return fmt.Errorf("%d diagnostic(s), errors present", len(out.Diagnostics))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

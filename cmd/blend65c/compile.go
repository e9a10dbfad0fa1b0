package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blend65/blend65c/pkg/compiler"
)

func newCompileCmd() *cobra.Command {
	var flags pipelineFlags
	var output string
	var labelsOut string

	cmd := &cobra.Command{
		Use:   "compile <file.blend>...",
		Short: "Compile blend65 source files to ACME-compatible assembly",
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
				return fmt.Errorf("compilation failed with errors")
			}

			if err := writeOutput(output, out.ASM); err != nil {
				return err
			}
			if labelsOut != "" && out.Labels != "" {
				if err := os.WriteFile(labelsOut, []byte(out.Labels), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", labelsOut, err)
				}
			}
			fmt.Fprintf(os.Stderr, "code=%dB data=%dB zp=%dB total=%dB functions=%d globals=%d\n",
				out.Stats.CodeSize, out.Stats.DataSize, out.Stats.ZPBytesUsed, out.Stats.TotalSize,
				out.Stats.FunctionCount, out.Stats.GlobalCount)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write ACME text here instead of stdout")
	cmd.Flags().StringVar(&labelsOut, "labels-out", "", "write a VICE label file here (requires --debug vice or both)")
	return cmd
}

func writeOutput(path, text string) error {
	if path == "" {
		_, err := fmt.Println(text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-echelle/internal/pipeline"
	"github.com/cwbudde/algo-echelle/spectra/arith"
)

func newOperationCmd(a *app) *cobra.Command {
	var (
		fnames  []string
		opfname string
	)
	cmd := &cobra.Command{
		Use:   "operation <+|-|*|/> --fnames <file> <file|constant> --opfname <out>",
		Short: "Apply arithmetic between a file and a file or constant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := arith.ParseOp(args[0])
			if err != nil {
				return err
			}
			operands := append(fnames, args[1:]...)
			if len(operands) != 2 {
				return fmt.Errorf("operation: need exactly two operands, got %d", len(operands))
			}
			left, err := expandInputs(operands[:1])
			if err != nil {
				return err
			}
			if len(left) != 1 {
				return fmt.Errorf("operation: %q matches %d files, want 1", operands[0], len(left))
			}

			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			pl, err := pipeline.New(p, a.logger)
			if err != nil {
				return err
			}
			summary, err := pl.Operate(cmd.Context(), left[0], pipeline.ParseOperand(operands[1]), op, opfname)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d extensions\n", summary.Output, len(summary.Extensions))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&fnames, "fnames", nil, "Left operand file, then a file or constant")
	cmd.Flags().StringVar(&opfname, "opfname", "", "Output file")
	_ = cmd.MarkFlagRequired("opfname")
	return cmd
}

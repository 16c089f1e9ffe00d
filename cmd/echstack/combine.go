package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-echelle/internal/pipeline"
	"github.com/cwbudde/algo-echelle/internal/profile"
	"github.com/cwbudde/algo-echelle/spectra/combine"
)

type combineOptions struct {
	fnames  []string
	opfname string
	noAlign bool
	floor   float64
	missing string
	fluxExt []string
	varExt  []string
	waveExt []string
	shifts  bool
}

func newCombineCmd(a *app) *cobra.Command {
	var o combineOptions
	cmd := &cobra.Command{
		Use:       "combine <mean|median|biweight> --fnames <file|glob>... --opfname <out>",
		Short:     "Combine exposures into one spectrum",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"mean", "median", "biweight"},
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := combine.ParseMethod(args[0])
			if err != nil {
				return err
			}
			inputs, err := expandInputs(append(o.fnames, args[1:]...))
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.New("combine: no input files given")
			}

			p, err := a.loadProfile()
			if err != nil {
				return err
			}
			if err := o.apply(cmd, p); err != nil {
				return err
			}

			pl, err := pipeline.New(p, a.logger, pipeline.WithShiftEstimate(o.shifts))
			if err != nil {
				return err
			}
			summary, err := pl.Combine(cmd.Context(), method, inputs, o.opfname)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d exposures, %d extensions, run %s\n",
				summary.Output, summary.Epochs, len(summary.Extensions), summary.RunID)
			if len(summary.Skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d fully masked orders left unaligned\n", len(summary.Skipped))
			}
			for _, name := range summary.Extensions {
				if snr, ok := summary.SNR[name]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s median SNR %.1f\n", name, snr)
				}
			}
			for _, s := range summary.Shifts {
				fmt.Fprintf(cmd.OutOrStdout(), "shift %s epoch %d order %d: %+.3f px\n", s.Channel, s.Epoch, s.Order, s.Pixels)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&o.fnames, "fnames", nil, "Input files or glob patterns")
	cmd.Flags().StringVar(&o.opfname, "opfname", "", "Output file")
	cmd.Flags().BoolVar(&o.noAlign, "no-align", false, "Do not resample orders onto the first exposure's grid")
	cmd.Flags().Float64Var(&o.floor, "floor", 0, "Mask wavelengths below this value (default from profile)")
	cmd.Flags().StringVar(&o.missing, "missing", "", "Missing extension policy: placeholder or fail")
	cmd.Flags().StringSliceVar(&o.fluxExt, "flux-ext", nil, "Flux extensions (names or #index)")
	cmd.Flags().StringSliceVar(&o.varExt, "var-ext", nil, "Variance extensions, one per flux extension")
	cmd.Flags().StringSliceVar(&o.waveExt, "wave-ext", nil, "Wavelength extensions, one per flux extension")
	cmd.Flags().BoolVar(&o.shifts, "shifts", false, "Report the cross-correlation shift of every aligned order")
	_ = cmd.MarkFlagRequired("opfname")
	return cmd
}

// apply overrides profile settings with explicitly set flags.
func (o combineOptions) apply(cmd *cobra.Command, p *profile.Profile) error {
	if len(o.fluxExt) > 0 {
		if err := p.FromExtensions(o.fluxExt, o.varExt, o.waveExt); err != nil {
			return err
		}
		p.Align = len(o.waveExt) > 0
	} else if len(o.varExt) > 0 || len(o.waveExt) > 0 {
		return errors.New("combine: --var-ext and --wave-ext require --flux-ext")
	}
	if o.noAlign {
		p.Align = false
	}
	if cmd.Flags().Changed("floor") {
		p.Floor = o.floor
	}
	if cmd.Flags().Changed("missing") {
		p.Missing = profile.MissingPolicy(o.missing)
	}
	return nil
}

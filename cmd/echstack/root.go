package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-echelle/internal/profile"
)

// app holds the flags shared by every subcommand and the logger built from
// them.
type app struct {
	verbose     bool
	logFile     string
	instrument  string
	profilePath string

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "echstack",
		Short: "Combine echelle spectra and apply arithmetic between exposures",
		Long: `echstack stacks repeated echelle exposures of one target into a single
spectrum. Every order of every exposure is resampled onto the wavelength grid
of the first exposure before flux and variance are combined.

Extension roles come from an instrument profile: a built-in one selected with
--instrument, a YAML or TOML file given with --profile, or the generic profile
that combines the primary HDU only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			if a.logFile != "" {
				config.OutputPaths = append(config.OutputPaths, a.logFile)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write logs to this file")
	root.PersistentFlags().StringVar(&a.instrument, "instrument", "", "Built-in instrument profile (generic, NEID)")
	root.PersistentFlags().StringVar(&a.profilePath, "profile", "", "Profile file (.yaml, .yml or .toml)")
	root.MarkFlagsMutuallyExclusive("instrument", "profile")

	root.AddCommand(newCombineCmd(a))
	root.AddCommand(newOperationCmd(a))
	return root
}

// loadProfile returns the profile selected by --profile or --instrument.
func (a *app) loadProfile() (*profile.Profile, error) {
	if a.profilePath != "" {
		return profile.Load(a.profilePath)
	}
	return profile.Builtin(a.instrument)
}

// expandInputs resolves glob patterns in args. Results of each pattern are
// sorted; a pattern without matches is an error. Plain paths are kept as
// given.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matches no files", arg)
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return out, nil
}

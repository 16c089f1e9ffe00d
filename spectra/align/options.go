package align

import (
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// Config holds the aligner settings.
type Config struct {
	// Floor masks every sample whose wavelength is below it.
	Floor float64
	// EstimateShifts records the cross-correlation pixel shift of every
	// resampled order against the reference.
	EstimateShifts bool
	Logger         *zap.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the floor of 3000 Å, no shift estimation and a
// no-op logger.
func DefaultConfig() Config {
	return Config{
		Floor:  echelle.DefaultWavelengthFloor,
		Logger: zap.NewNop(),
	}
}

// WithFloor sets the wavelength floor. Use math.Inf(-1) to disable it.
func WithFloor(floor float64) Option {
	return func(cfg *Config) {
		if !math.IsNaN(floor) {
			cfg.Floor = floor
		}
	}
}

// WithLogger sets the logger used for per-order diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// WithShiftEstimate enables the cross-correlation shift report.
func WithShiftEstimate(enabled bool) Option {
	return func(cfg *Config) {
		cfg.EstimateShifts = enabled
	}
}

func applyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-echelle/internal/profile"
)

// ErrNoInputs indicates Combine was called without input files.
var ErrNoInputs = errors.New("pipeline: no input files")

// Pipeline binds a profile and a logger to the batch operations.
type Pipeline struct {
	profile *profile.Profile
	log     *zap.Logger
	cfg     Config
}

// Config holds optional pipeline behaviour.
type Config struct {
	// EstimateShifts logs the cross-correlation shift of every aligned order.
	EstimateShifts bool
}

// Option mutates a Config.
type Option func(*Config)

// WithShiftEstimate enables per-order shift estimation during alignment.
func WithShiftEstimate(enabled bool) Option {
	return func(cfg *Config) {
		cfg.EstimateShifts = enabled
	}
}

// New validates p and returns a Pipeline. A nil profile selects the generic
// profile and a nil logger discards all output.
func New(p *profile.Profile, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	if p == nil {
		p = profile.Generic()
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Pipeline{
		profile: p,
		log:     logger.With(zap.String("profile", p.Name)),
		cfg:     cfg,
	}, nil
}

// Profile returns the profile the pipeline runs with.
func (p *Pipeline) Profile() *profile.Profile { return p.profile }

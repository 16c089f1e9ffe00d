package align

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-echelle/internal/numeric"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
	"github.com/cwbudde/algo-echelle/spectra/interp"
	"github.com/cwbudde/algo-echelle/spectra/xcorr"
)

// SkippedOrder identifies an order left unchanged because every sample was
// masked.
type SkippedOrder struct {
	Channel string
	Epoch   int
	Order   int
}

// OrderShift is the estimated pixel offset of an order relative to the
// reference epoch.
type OrderShift struct {
	Channel string
	Epoch   int
	Order   int
	Pixels  float64
}

// Report summarises an alignment run.
type Report struct {
	Skipped []SkippedOrder
	Shifts  []OrderShift
	// Resampled counts the (epoch, order) rows that were interpolated.
	Resampled int
}

// Align returns a copy of set in which the flux, variance and wavelength
// stacks of every channel are aligned to the epoch-0 wavelength grid. set is
// not modified. Fits always read wavelengths from set, so channels may share
// a wavelength extension. Orders that are skipped keep their wavelengths.
func Align(set *echelle.Set, channels []echelle.Channel, opts ...Option) (*echelle.Set, Report, error) {
	cfg := applyOptions(opts...)
	out := set.Clone()
	var report Report

	for _, ch := range channels {
		rows, cols, err := ch.Validate(out)
		if err != nil {
			return nil, Report{}, fmt.Errorf("align: %w", err)
		}
		if err := alignChannel(set, out, ch, rows, cols, cfg, &report); err != nil {
			return nil, Report{}, err
		}
	}
	return out, report, nil
}

// alignChannel resamples the channel's flux and variance in out. Wavelengths
// are read from src and the reference rows are written to out.
func alignChannel(src, out *echelle.Set, ch echelle.Channel, rows, cols int, cfg Config, report *Report) error {
	flux, _ := out.Stack(ch.Flux)
	variance, _ := out.Stack(ch.Variance)
	wave, _ := src.Stack(ch.Wavelength)
	aligned, _ := out.Stack(ch.Wavelength)
	log := cfg.Logger.With(zap.String("channel", ch.Name))

	var corr *xcorr.Correlator
	if cfg.EstimateShifts && cols > 0 {
		var err error
		if corr, err = xcorr.NewCorrelator(cols, cols); err != nil {
			return fmt.Errorf("align: channel %q: %w", ch.Name, err)
		}
	}

	var (
		xs, fy, vy, at []float64
		idx            []int
		fitted         []float64
	)
	for e := 1; e < len(flux); e++ {
		for k := range rows {
			ref := wave[0].Row(k)
			w := wave[e].Row(k)
			f := flux[e].Row(k)
			v := variance[e].Row(k)

			xs, fy, vy, at, idx = xs[:0], fy[:0], vy[:0], at[:0], idx[:0]
			for j := range w {
				if !numeric.IsFinite(f[j]) || !numeric.IsFinite(v[j]) {
					continue
				}
				if !numeric.IsFinite(w[j]) || w[j] < cfg.Floor {
					continue
				}
				idx = append(idx, j)
				xs = append(xs, w[j])
				fy = append(fy, f[j])
				vy = append(vy, v[j])
				at = append(at, ref[j])
			}

			if len(idx) == 0 {
				report.Skipped = append(report.Skipped, SkippedOrder{Channel: ch.Name, Epoch: e, Order: k})
				log.Debug("order fully masked, left unchanged", zap.Int("epoch", e), zap.Int("order", k))
				continue
			}

			if corr != nil {
				px, err := corr.Shift(flux[0].Row(k), f, xcorr.DefaultTaper)
				if err != nil {
					log.Debug("shift estimate unavailable", zap.Int("epoch", e), zap.Int("order", k), zap.Error(err))
				} else {
					report.Shifts = append(report.Shifts, OrderShift{Channel: ch.Name, Epoch: e, Order: k, Pixels: px})
				}
			}

			fs, err := interp.Fit(xs, fy)
			if err != nil {
				return fmt.Errorf("align: channel %q epoch %d order %d: flux: %w", ch.Name, e, k, err)
			}
			vs, err := interp.Fit(xs, vy)
			if err != nil {
				return fmt.Errorf("align: channel %q epoch %d order %d: variance: %w", ch.Name, e, k, err)
			}

			fitted = fs.Eval(fitted, at)
			for i, j := range idx {
				f[j] = fitted[i]
			}
			fitted = vs.Eval(fitted, at)
			for i, j := range idx {
				v[j] = fitted[i]
			}
			copy(aligned[e].Row(k), ref)
			report.Resampled++
		}
	}
	log.Debug("channel aligned", zap.Int("epochs", len(flux)), zap.Int("orders", rows))
	return nil
}

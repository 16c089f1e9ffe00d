package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-echelle/internal/fitsfile"
	"github.com/cwbudde/algo-echelle/internal/profile"
	"github.com/cwbudde/algo-echelle/spectra/align"
	"github.com/cwbudde/algo-echelle/spectra/barycorr"
	"github.com/cwbudde/algo-echelle/spectra/combine"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
	"github.com/cwbudde/algo-echelle/spectra/quality"
)

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Output     string
	Epochs     int
	Extensions []string
	Skipped    []align.SkippedOrder
	Shifts     []align.OrderShift
	// SNR maps each combined flux extension with a variance to its median
	// per-order signal-to-noise ratio.
	SNR map[string]float64
}

// Combine reduces inputs with method m and writes the result to output.
func (p *Pipeline) Combine(ctx context.Context, m combine.Method, inputs []string, output string) (Summary, error) {
	if len(inputs) == 0 {
		return Summary{}, ErrNoInputs
	}
	runID := uuid.NewString()
	log := p.log.With(zap.String("run", runID))
	log.Info("combining exposures",
		zap.Int("files", len(inputs)),
		zap.Stringer("method", m),
		zap.String("output", output))

	files := make([]*fitsfile.File, 0, len(inputs))
	for i, path := range inputs {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		f, err := fitsfile.Read(path)
		if err != nil {
			return Summary{}, fmt.Errorf("pipeline: %w", err)
		}
		for _, name := range f.Skipped {
			log.Warn("non-image HDU ignored", zap.String("file", path), zap.String("extension", name))
		}
		for _, name := range f.Renamed {
			log.Warn("repeated EXTNAME renamed to its position", zap.String("file", path), zap.String("extension", name))
		}
		log.Info("read exposure", zap.Int("epoch", i), zap.String("file", path), zap.Int("extensions", len(f.HDUs)))
		files = append(files, f)
	}
	if len(files[0].HDUs) == 0 {
		return Summary{}, fmt.Errorf("pipeline: %s: no image HDUs: %w", inputs[0], echelle.ErrMissingExtension)
	}

	set, err := p.group(files, log)
	if err != nil {
		return Summary{}, err
	}

	resolved, err := p.profile.Resolve(set.Names())
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if p.profile.Barycentric != nil {
		if err := p.correct(set, files, resolved.Wavelengths, log); err != nil {
			return Summary{}, err
		}
	}

	summary := Summary{RunID: runID, Output: output, Epochs: set.Epochs()}
	if p.profile.Align && len(resolved.Aligned) > 0 {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		aligned, report, err := align.Align(set, resolved.Aligned,
			align.WithFloor(p.profile.Floor),
			align.WithLogger(log),
			align.WithShiftEstimate(p.cfg.EstimateShifts),
		)
		if err != nil {
			return Summary{}, fmt.Errorf("pipeline: %w", err)
		}
		for _, s := range report.Shifts {
			log.Info("order shift",
				zap.String("channel", s.Channel),
				zap.Int("epoch", s.Epoch),
				zap.Int("order", s.Order),
				zap.Float64("pixels", s.Pixels))
		}
		log.Info("aligned channels",
			zap.Int("channels", len(resolved.Aligned)),
			zap.Int("resampled", report.Resampled),
			zap.Int("skipped", len(report.Skipped)))
		set = aligned
		summary.Skipped = report.Skipped
		summary.Shifts = report.Shifts
	}

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	combined, err := combine.Select(set, resolved.Plan, m)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}

	summary.SNR, err = measure(combined, resolved.Plan, log)
	if err != nil {
		return Summary{}, err
	}

	hdus, err := p.outputHDUs(combined, files, m, runID, summary.SNR)
	if err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if err := fitsfile.Write(output, hdus); err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}

	summary.Extensions = combined.Names()
	log.Info("wrote combined spectrum", zap.String("output", output), zap.Int("extensions", len(hdus)))
	return summary, nil
}

// group stacks the HDUs of all files by name. The first file's extension
// list is canonical.
func (p *Pipeline) group(files []*fitsfile.File, log *zap.Logger) (*echelle.Set, error) {
	first := files[0]
	set := echelle.NewSet()
	for _, h := range first.HDUs {
		set.Append(h.Name, h.Data)
	}

	for e, f := range files[1:] {
		epoch := e + 1
		for _, h := range f.HDUs {
			if !set.Has(h.Name) {
				log.Warn("extension absent from first file dropped",
					zap.String("file", f.Path), zap.String("extension", h.Name))
			}
		}
		for _, ref := range first.HDUs {
			h, ok := f.Lookup(ref.Name)
			if ok {
				set.Append(ref.Name, h.Data)
				continue
			}
			if p.profile.Missing == profile.MissingFail {
				return nil, fmt.Errorf("pipeline: %s: extension %q: %w", f.Path, ref.Name, echelle.ErrMissingExtension)
			}
			log.Warn("missing extension replaced by NaN placeholder",
				zap.String("file", f.Path), zap.Int("epoch", epoch), zap.String("extension", ref.Name))
			set.Append(ref.Name, echelle.NaNs(ref.Data.Rows, ref.Data.Cols))
		}
	}
	return set, nil
}

// correct applies the barycentric factors of every file to the wavelength
// extensions.
func (p *Pipeline) correct(set *echelle.Set, files []*fitsfile.File, waves []string, log *zap.Logger) error {
	bc := p.profile.Barycentric
	hdrName, err := bc.ResolveHeader(set.Names())
	if err != nil {
		return fmt.Errorf("pipeline: barycentric header: %w", err)
	}
	scheme := bc.Scheme()

	for e, f := range files {
		hdu, ok := f.Lookup(hdrName)
		if !ok {
			return fmt.Errorf("pipeline: %s: barycentric header %q: %w", f.Path, hdrName, echelle.ErrMissingExtension)
		}
		for _, name := range waves {
			st, _ := set.Stack(name)
			z, err := barycorr.Factors(hdu.Header.Float, st[e].Rows, scheme)
			if err != nil {
				return fmt.Errorf("pipeline: %s: %s: %w", f.Path, name, err)
			}
			if st[e], err = barycorr.Apply(st[e], z); err != nil {
				return fmt.Errorf("pipeline: %s: %s: %w", f.Path, name, err)
			}
		}
		log.Debug("barycentric correction applied", zap.Int("epoch", e), zap.Strings("extensions", waves))
	}
	return nil
}

// measure computes the median SNR of every combined flux/variance pair.
// Pairs without any valid pixel are left out.
func measure(combined *echelle.Set, plan combine.Plan, log *zap.Logger) (map[string]float64, error) {
	snr := make(map[string]float64)
	for _, pair := range plan.Pairs {
		if pair.Variance == "" {
			continue
		}
		flux, _ := combined.Stack(pair.Flux)
		variance, _ := combined.Stack(pair.Variance)
		if len(flux) == 0 || len(variance) == 0 {
			continue
		}
		orders, err := quality.Orders(flux[0], variance[0])
		if err != nil {
			return nil, fmt.Errorf("pipeline: extension %q: %w", pair.Flux, err)
		}
		med := quality.MedianSNR(orders)
		if math.IsNaN(med) {
			log.Warn("no valid pixels for SNR", zap.String("extension", pair.Flux))
			continue
		}
		snr[pair.Flux] = med
		log.Info("combined SNR", zap.String("extension", pair.Flux), zap.Float64("median", med))
	}
	return snr, nil
}

func (p *Pipeline) outputHDUs(combined *echelle.Set, files []*fitsfile.File, m combine.Method, runID string, snr map[string]float64) ([]fitsfile.HDU, error) {
	first := files[0]
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f.Path)
	}

	hdus := make([]fitsfile.HDU, 0, combined.Len())
	for i, name := range combined.Names() {
		src, ok := first.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("pipeline: output extension %q: %w", name, echelle.ErrMissingExtension)
		}
		st, _ := combined.Stack(name)
		hdu := fitsfile.HDU{Name: name, Header: src.Header.Clone()}
		if len(st) > 0 {
			hdu.Data = st[0]
		}
		if v, ok := snr[name]; ok {
			hdu.Header.Set("MEDSNR", v, "median per-order SNR")
		}
		if i == 0 {
			hdu.Header.Set("COMBMETH", m.String(), "combination method")
			hdu.Header.Set("NCOMBINE", len(files), "number of combined exposures")
			hdu.Header.Set("COMBID", runID, "combination run id")
			if p.profile.Align {
				hdu.Header.Set("COMBALGN", true, "orders aligned to first exposure")
			}
			hdu.Header.AddHistory("Combined [" + strings.Join(names, " ") + "]")
		}
		hdus = append(hdus, hdu)
	}
	return hdus, nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-echelle/internal/fitsfile"
	"github.com/cwbudde/algo-echelle/spectra/arith"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// Operand is the right-hand side of an arithmetic run: a FITS file or a
// constant.
type Operand struct {
	Path       string
	Constant   float64
	IsConstant bool
}

// FileOperand refers to the FITS file at path.
func FileOperand(path string) Operand { return Operand{Path: path} }

// ConstantOperand is a constant with zero variance.
func ConstantOperand(v float64) Operand { return Operand{Constant: v, IsConstant: true} }

// ParseOperand treats s as a constant when it parses as a number and no
// file of that name exists.
func ParseOperand(s string) Operand {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return FileOperand(s)
	}
	if _, statErr := os.Stat(s); statErr == nil {
		return FileOperand(s)
	}
	return ConstantOperand(v)
}

func (o Operand) String() string {
	if o.IsConstant {
		return strconv.FormatFloat(o.Constant, 'g', -1, 64)
	}
	return filepath.Base(o.Path)
}

// Operate computes left op right for every flux/variance pair of the profile
// and writes the results to output. The primary header of left is kept.
func (p *Pipeline) Operate(ctx context.Context, left string, right Operand, op arith.Op, output string) (Summary, error) {
	log := p.log.With(zap.String("left", left), zap.Stringer("right", right), zap.String("op", op.Symbol()))
	log.Info("applying operation", zap.String("output", output))

	lf, err := fitsfile.Read(left)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	if len(lf.HDUs) == 0 {
		return Summary{}, fmt.Errorf("pipeline: %s: no image HDUs: %w", left, echelle.ErrMissingExtension)
	}
	var rf *fitsfile.File
	if !right.IsConstant {
		if rf, err = fitsfile.Read(right.Path); err != nil {
			return Summary{}, fmt.Errorf("pipeline: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	resolved, err := p.profile.Resolve(lf.Names())
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}

	history := fmt.Sprintf("%s %s %s", filepath.Base(left), op.Symbol(), right)
	primary := fitsfile.HDU{Name: lf.HDUs[0].Name, Header: lf.HDUs[0].Header.Clone()}
	hdus := []fitsfile.HDU{primary}

	for _, pair := range resolved.Plan.Pairs {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		a, err := fileOperand(lf, pair.Flux, pair.Variance)
		if err != nil {
			return Summary{}, err
		}
		var b arith.Operand
		switch {
		case right.IsConstant && pair.Variance != "":
			b = arith.Scalar(right.Constant)
		case right.IsConstant:
			b = arith.ScalarNoVariance(right.Constant)
		default:
			if b, err = fileOperand(rf, pair.Flux, pair.Variance); err != nil {
				return Summary{}, err
			}
		}

		res, err := arith.Apply(a, b, op)
		if err != nil {
			return Summary{}, fmt.Errorf("pipeline: extension %q: %w", pair.Flux, err)
		}

		src, _ := lf.Lookup(pair.Flux)
		if pair.Flux == primary.Name {
			hdus[0].Data = res.Value
			hdus[0].Header.AddHistory(history)
		} else {
			out := fitsfile.HDU{Name: pair.Flux, Header: src.Header.Clone(), Data: res.Value}
			out.Header.AddHistory(history)
			hdus = append(hdus, out)
		}
		if res.HasVariance {
			vsrc, _ := lf.Lookup(pair.Variance)
			out := fitsfile.HDU{Name: pair.Variance, Header: vsrc.Header.Clone(), Data: res.Variance}
			out.Header.AddHistory(history)
			hdus = append(hdus, out)
		}
		log.Debug("extension computed", zap.String("extension", pair.Flux), zap.Bool("variance", res.HasVariance))
	}

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if err := fitsfile.Write(output, hdus); err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}

	names := make([]string, len(hdus))
	for i, h := range hdus {
		names[i] = h.Name
	}
	log.Info("wrote result", zap.String("output", output), zap.Int("extensions", len(hdus)))
	return Summary{Output: output, Epochs: 1, Extensions: names}, nil
}

var errNoFile = errors.New("pipeline: operand file not loaded")

func fileOperand(f *fitsfile.File, flux, variance string) (arith.Operand, error) {
	if f == nil {
		return arith.Operand{}, errNoFile
	}
	fh, ok := f.Lookup(flux)
	if !ok {
		return arith.Operand{}, fmt.Errorf("pipeline: %s: extension %q: %w", f.Path, flux, echelle.ErrMissingExtension)
	}
	if variance == "" {
		return arith.Of(fh.Data), nil
	}
	vh, ok := f.Lookup(variance)
	if !ok {
		return arith.Operand{}, fmt.Errorf("pipeline: %s: extension %q: %w", f.Path, variance, echelle.ErrMissingExtension)
	}
	return arith.WithVariance(fh.Data, vh.Data), nil
}

package interp

import (
	"errors"
	"fmt"
	"slices"

	gonuminterp "gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-echelle/internal/numeric"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// ErrNoSamples indicates Fit was called without data.
var ErrNoSamples = errors.New("interp: no samples")

// Kind identifies the interpolant chosen by Fit.
type Kind int

const (
	// KindConstant is used for a single sample.
	KindConstant Kind = iota
	// KindLinear is used for two samples.
	KindLinear
	// KindNaturalCubic is used for three samples.
	KindNaturalCubic
	// KindNotAKnotCubic is used for four or more samples.
	KindNotAKnotCubic
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindLinear:
		return "linear"
	case KindNaturalCubic:
		return "natural-cubic"
	case KindNotAKnotCubic:
		return "not-a-knot-cubic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spline is a fitted interpolant.
type Spline struct {
	kind  Kind
	pred  gonuminterp.Predictor
	value float64
}

// Fit fits ys as a function of xs. xs must be strictly increasing or
// strictly decreasing; anything else yields echelle.ErrUnsortedGrid.
// The inputs are not modified.
func Fit(xs, ys []float64) (*Spline, error) {
	n := len(xs)
	if len(ys) != n {
		return nil, fmt.Errorf("interp: %d x values, %d y values: %w", n, len(ys), echelle.ErrShapeMismatch)
	}
	if n == 0 {
		return nil, ErrNoSamples
	}
	if n == 1 {
		return &Spline{kind: KindConstant, value: ys[0]}, nil
	}

	switch monotonic(xs) {
	case 1:
	case -1:
		xs = reversed(xs)
		ys = reversed(ys)
	default:
		return nil, fmt.Errorf("interp: %w", echelle.ErrUnsortedGrid)
	}

	var (
		fp   gonuminterp.FittablePredictor
		kind Kind
	)
	switch {
	case n >= 4:
		fp, kind = &gonuminterp.NotAKnotCubic{}, KindNotAKnotCubic
	case n == 3:
		fp, kind = &gonuminterp.NaturalCubic{}, KindNaturalCubic
	default:
		fp, kind = &gonuminterp.PiecewiseLinear{}, KindLinear
	}
	if err := fp.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("interp: %v fit: %w", kind, err)
	}
	return &Spline{kind: kind, pred: fp}, nil
}

// Kind reports which interpolant was fitted.
func (s *Spline) Kind() Kind { return s.kind }

// At evaluates the interpolant at x.
func (s *Spline) At(x float64) float64 {
	if s.pred == nil {
		return s.value
	}
	return s.pred.Predict(x)
}

// Eval evaluates the interpolant at every x in xs, writing into dst. dst is
// grown if it is too short and the filled slice is returned.
func (s *Spline) Eval(dst, xs []float64) []float64 {
	dst = numeric.EnsureLen(dst, len(xs))
	for i, x := range xs {
		dst[i] = s.At(x)
	}
	return dst
}

// Resample fits ys(xs) and evaluates it at every point of at.
func Resample(xs, ys, at []float64) ([]float64, error) {
	s, err := Fit(xs, ys)
	if err != nil {
		return nil, err
	}
	return s.Eval(nil, at), nil
}

// monotonic returns 1 for strictly increasing, -1 for strictly decreasing and
// 0 otherwise. NaN breaks monotonicity.
func monotonic(xs []float64) int {
	inc, dec := true, true
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			inc = false
		}
		if !(xs[i] < xs[i-1]) {
			dec = false
		}
	}
	switch {
	case inc:
		return 1
	case dec:
		return -1
	default:
		return 0
	}
}

func reversed(x []float64) []float64 {
	out := slices.Clone(x)
	slices.Reverse(out)
	return out
}

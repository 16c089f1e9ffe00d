// Package quality summarises a spectrum order by order: flux moments and the
// median signal-to-noise ratio flux/√variance.
package quality

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-echelle/internal/numeric"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// Order holds the statistics of one order. Only pixels with finite flux and
// finite, positive variance count.
type Order struct {
	Valid  int
	Mean   float64
	StdDev float64
	Min    float64
	MinPos int
	Max    float64
	MaxPos int
	// SNR is the median of flux/√variance.
	SNR float64
}

// Accumulator collects order statistics incrementally using Welford's
// algorithm for the flux moments.
type Accumulator struct {
	n      int
	pos    int
	mean   float64
	m2     float64
	minVal float64
	minPos int
	maxVal float64
	maxPos int
	ratios []float64
}

// Update adds a block of pixels. flux and variance must have equal length.
func (a *Accumulator) Update(flux, variance []float64) {
	for i, f := range flux {
		pos := a.pos + i
		v := variance[i]
		if !numeric.IsFinite(f) || !numeric.IsFinite(v) || v <= 0 {
			continue
		}

		a.n++
		delta := f - a.mean
		a.mean += delta / float64(a.n)
		a.m2 += delta * (f - a.mean)

		if a.n == 1 || f > a.maxVal {
			a.maxVal, a.maxPos = f, pos
		}
		if a.n == 1 || f < a.minVal {
			a.minVal, a.minPos = f, pos
		}
		a.ratios = append(a.ratios, f/math.Sqrt(v))
	}
	a.pos += len(flux)
}

// Result returns the statistics of everything added so far. An accumulator
// without valid pixels reports NaN moments.
func (a *Accumulator) Result() Order {
	if a.n == 0 {
		nan := math.NaN()
		return Order{Mean: nan, StdDev: nan, Min: nan, Max: nan, MinPos: -1, MaxPos: -1, SNR: nan}
	}
	return Order{
		Valid:  a.n,
		Mean:   a.mean,
		StdDev: math.Sqrt(a.m2 / float64(a.n)),
		Min:    a.minVal,
		MinPos: a.minPos,
		Max:    a.maxVal,
		MaxPos: a.maxPos,
		SNR:    median(slices.Clone(a.ratios)),
	}
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	ratios := a.ratios[:0]
	*a = Accumulator{ratios: ratios}
}

// Measure returns the statistics of one order.
func Measure(flux, variance []float64) (Order, error) {
	if len(flux) != len(variance) {
		return Order{}, fmt.Errorf("quality: %d flux and %d variance pixels: %w", len(flux), len(variance), echelle.ErrShapeMismatch)
	}
	var a Accumulator
	a.Update(flux, variance)
	return a.Result(), nil
}

// Orders measures every row of flux against the same row of variance.
func Orders(flux, variance echelle.Array) ([]Order, error) {
	if !flux.SameShape(variance) {
		return nil, fmt.Errorf("quality: flux is %s, variance is %s: %w", flux, variance, echelle.ErrShapeMismatch)
	}
	out := make([]Order, flux.Rows)
	var a Accumulator
	for k := range flux.Rows {
		a.Reset()
		a.Update(flux.Row(k), variance.Row(k))
		out[k] = a.Result()
	}
	return out, nil
}

// MedianSNR returns the median SNR over orders with valid pixels, or NaN.
func MedianSNR(orders []Order) float64 {
	snr := make([]float64, 0, len(orders))
	for _, o := range orders {
		if o.Valid > 0 {
			snr = append(snr, o.SNR)
		}
	}
	return median(snr)
}

func median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	slices.Sort(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return 0.5 * (x[n/2-1] + x[n/2])
}

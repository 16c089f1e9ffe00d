// Package xcorr estimates the pixel offset between two sampled spectra from
// the peak of their FFT cross-correlation.
package xcorr

import (
	"errors"
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-echelle/internal/numeric"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// ErrEmptyInput indicates a zero-length or all non-finite input.
var ErrEmptyInput = errors.New("xcorr: empty input")

// Correlator cross-correlates rows of fixed lengths. The FFT plan and its
// buffers are reused between calls, so one Correlator serves every order of
// a channel. Both rows are packed into a single complex signal, which costs
// one forward and one inverse transform per correlation.
//
// A Correlator is not safe for concurrent use.
type Correlator struct {
	n, m int
	plan *algofft.Plan[complex128]
	buf  []complex128
	prod []complex128

	r, s, corr []float64
}

// NewCorrelator returns a Correlator for rows of n and m samples.
func NewCorrelator(n, m int) (*Correlator, error) {
	if n <= 0 || m <= 0 {
		return nil, ErrEmptyInput
	}
	size := nextPowerOf2(n + m - 1)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("xcorr: failed to create FFT plan: %w", err)
	}
	return &Correlator{
		n:    n,
		m:    m,
		plan: plan,
		buf:  make([]complex128, size),
		prod: make([]complex128, size),
	}, nil
}

// Correlate writes the full cross-correlation of a (n samples) and b
// (m samples) to dst, growing it if needed, and returns it. The result has
// n+m-1 entries; index k is lag k-(m-1). Non-finite samples count as zero.
func (c *Correlator) Correlate(dst, a, b []float64) ([]float64, error) {
	if len(a) != c.n || len(b) != c.m {
		return nil, fmt.Errorf("xcorr: correlator for %d and %d samples got %d and %d: %w",
			c.n, c.m, len(a), len(b), echelle.ErrShapeMismatch)
	}

	clear(c.buf)
	for i, v := range a {
		if numeric.IsFinite(v) {
			c.buf[i] = complex(v, 0)
		}
	}
	for i, v := range b {
		if numeric.IsFinite(v) {
			c.buf[i] += complex(0, v)
		}
	}
	if err := c.plan.InPlace(c.buf); err != nil {
		return nil, fmt.Errorf("xcorr: forward FFT failed: %w", err)
	}

	// Z = A + iB with A, B the spectra of the real rows, so
	// A[k] = (Z[k] + conj Z[-k])/2 and B[k] = (Z[k] - conj Z[-k])/2i.
	size := len(c.buf)
	for k, z := range c.buf {
		zr := cmplx.Conj(c.buf[(size-k)%size])
		fa := (z + zr) / 2
		fb := (z - zr) / complex(0, 2)
		c.prod[k] = fa * cmplx.Conj(fb)
	}
	if err := c.plan.InverseInPlace(c.prod); err != nil {
		return nil, fmt.Errorf("xcorr: inverse FFT failed: %w", err)
	}

	// Non-negative lags sit at the front, negative lags wrap to the end.
	dst = numeric.EnsureLen(dst, c.n+c.m-1)
	for i := range c.n {
		dst[c.m-1+i] = real(c.prod[i])
	}
	for i := range c.m - 1 {
		dst[i] = real(c.prod[size-c.m+1+i])
	}
	return dst, nil
}

// Shift estimates by how many pixels x (n samples) is displaced from ref
// (m samples): a positive result means features in x sit at higher pixel
// indices than in ref. Non-finite samples are replaced by the mean of the
// finite ones, the mean is removed and both rows are tapered with a Tukey
// window of fraction alpha. The integer peak is refined with a parabola
// through its neighbours.
func (c *Correlator) Shift(ref, x []float64, alpha float64) (float64, error) {
	if len(x) != c.n || len(ref) != c.m {
		return 0, fmt.Errorf("xcorr: correlator for %d and %d samples got %d and %d: %w",
			c.n, c.m, len(x), len(ref), echelle.ErrShapeMismatch)
	}
	var err error
	if c.r, err = prepare(c.r, ref); err != nil {
		return 0, err
	}
	if c.s, err = prepare(c.s, x); err != nil {
		return 0, err
	}
	if err := Taper(c.r, c.r, alpha); err != nil {
		return 0, err
	}
	if err := Taper(c.s, c.s, alpha); err != nil {
		return 0, err
	}

	if c.corr, err = c.Correlate(c.corr, c.s, c.r); err != nil {
		return 0, err
	}
	idx, _ := FindPeak(c.corr)
	lag := float64(idx - (c.m - 1))

	if idx > 0 && idx < len(c.corr)-1 {
		ym1, y0, yp1 := c.corr[idx-1], c.corr[idx], c.corr[idx+1]
		if den := ym1 - 2*y0 + yp1; den != 0 {
			lag += 0.5 * (ym1 - yp1) / den
		}
	}
	return lag, nil
}

// Correlate computes the full cross-correlation of a and b.
// The result has length len(a) + len(b) - 1.
// Output index k corresponds to lag k - (len(b) - 1).
func Correlate(a, b []float64) ([]float64, error) {
	c, err := NewCorrelator(len(a), len(b))
	if err != nil {
		return nil, err
	}
	return c.Correlate(nil, a, b)
}

// FindPeak returns the index and value of the maximum of corr.
func FindPeak(corr []float64) (index int, value float64) {
	if len(corr) == 0 {
		return -1, 0
	}
	for i, v := range corr {
		if i == 0 || v > value {
			index, value = i, v
		}
	}
	return index, value
}

// Shift is [Correlator.Shift] with [DefaultTaper] for a single pair.
func Shift(ref, x []float64) (float64, error) {
	return ShiftTapered(ref, x, DefaultTaper)
}

// ShiftTapered is Shift with an explicit Tukey fraction.
func ShiftTapered(ref, x []float64, alpha float64) (float64, error) {
	c, err := NewCorrelator(len(x), len(ref))
	if err != nil {
		return 0, err
	}
	return c.Shift(ref, x, alpha)
}

// prepare writes x minus its finite mean to dst, with non-finite samples
// set to zero.
func prepare(dst, x []float64) ([]float64, error) {
	mean, n := numeric.FiniteMean(x)
	if n == 0 {
		return dst, ErrEmptyInput
	}
	dst = numeric.EnsureLen(dst, len(x))
	for i, v := range x {
		if numeric.IsFinite(v) {
			dst[i] = v - mean
		} else {
			dst[i] = 0
		}
	}
	return dst, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

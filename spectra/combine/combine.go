package combine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// Method selects the per-pixel statistic used to reduce a stack.
type Method int

const (
	// Mean is the NaN-ignoring arithmetic mean.
	Mean Method = iota
	// Median is the NaN-ignoring median.
	Median
	// Biweight is the NaN-ignoring Tukey biweight location.
	Biweight
)

var methodNames = [...]string{Mean: "mean", Median: "median", Biweight: "biweight"}

// ParseMethod parses "mean", "median" or "biweight".
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range methodNames {
		if s == name {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("combine: method %q: %w", s, echelle.ErrUnsupportedOperation)
}

func (m Method) valid() bool { return m >= Mean && m <= Biweight }

// String returns the method name.
func (m Method) String() string {
	if !m.valid() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// BiweightTuning is the tuning constant c of the biweight location.
const BiweightTuning = 6.0

// Combined is the reduction of a stack.
type Combined struct {
	Value       echelle.Array
	Variance    echelle.Array
	HasVariance bool
}

// Combine reduces values along the epoch axis with method m. If variances is
// non-nil it must match values epoch for epoch and the result carries the
// propagated variance sum(var_i)/N², where N counts the epochs whose
// variance is not NaN at that pixel. The same rule is used for every method.
//
// A pixel is NaN in the output only when every epoch is NaN there.
func Combine(values, variances echelle.Stack, m Method) (Combined, error) {
	if !m.valid() {
		return Combined{}, fmt.Errorf("combine: %v: %w", m, echelle.ErrUnsupportedOperation)
	}
	if len(values) == 0 {
		return Combined{}, fmt.Errorf("combine: empty stack: %w", echelle.ErrShapeMismatch)
	}
	rows, cols, err := values.Shape()
	if err != nil {
		return Combined{}, fmt.Errorf("combine: values: %w", err)
	}
	if variances != nil {
		if len(variances) != len(values) {
			return Combined{}, fmt.Errorf("combine: %d variance epochs for %d value epochs: %w",
				len(variances), len(values), echelle.ErrShapeMismatch)
		}
		vr, vc, err := variances.Shape()
		if err != nil {
			return Combined{}, fmt.Errorf("combine: variances: %w", err)
		}
		if vr != rows || vc != cols {
			return Combined{}, fmt.Errorf("combine: variances are %dx%d, values are %dx%d: %w",
				vr, vc, rows, cols, echelle.ErrShapeMismatch)
		}
	}

	out := Combined{Value: echelle.NewArray(rows, cols)}
	if len(values) == 1 {
		out.Value = values[0].Clone()
		if variances != nil {
			out.Variance = variances[0].Clone()
			out.HasVariance = true
		}
		return out, nil
	}

	reduce := reducer(m)
	column := make([]float64, 0, len(values))
	for px := range out.Value.Data {
		column = column[:0]
		for _, a := range values {
			if v := a.Data[px]; !math.IsNaN(v) {
				column = append(column, v)
			}
		}
		out.Value.Data[px] = reduce(column)
	}

	if variances != nil {
		out.Variance = propagate(variances, rows, cols)
		out.HasVariance = true
	}
	return out, nil
}

// propagate returns sum(var_i)/N² per pixel over the non-NaN epochs.
func propagate(variances echelle.Stack, rows, cols int) echelle.Array {
	out := echelle.NewArray(rows, cols)
	scale := make([]float64, len(out.Data))
	for px := range out.Data {
		var sum float64
		n := 0
		for _, a := range variances {
			if v := a.Data[px]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out.Data[px] = math.NaN()
			scale[px] = 1
			continue
		}
		out.Data[px] = sum
		scale[px] = 1 / float64(n*n)
	}
	vecmath.MulBlockInPlace(out.Data, scale)
	return out
}

func reducer(m Method) func([]float64) float64 {
	switch m {
	case Median:
		return median
	case Biweight:
		return biweightLocation
	default:
		return mean
	}
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// median sorts x in place. Even counts average the two central values.
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

// biweightLocation computes the Tukey biweight location about the median,
// scaled by the median absolute deviation. A zero MAD returns the median.
func biweightLocation(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	m := median(x)

	dev := make([]float64, n)
	for i, v := range x {
		dev[i] = math.Abs(v - m)
	}
	mad := median(dev)
	if mad == 0 {
		return m
	}

	var num, den float64
	for _, v := range x {
		d := v - m
		u := d / (BiweightTuning * mad)
		if math.Abs(u) >= 1 {
			continue
		}
		w := (1 - u*u) * (1 - u*u)
		num += d * w
		den += w
	}
	if den == 0 {
		return m
	}
	return m + num/den
}

// Package numeric holds small float64 helpers shared by the spectra packages.
package numeric

import "math"

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FiniteMean returns the mean of the finite values in x and how many there
// were. It returns (NaN, 0) when x holds no finite value.
func FiniteMean(x []float64) (float64, int) {
	// Kahan summation.
	var sum, c float64
	n := 0
	for _, v := range x {
		if !IsFinite(v) {
			continue
		}
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
		n++
	}
	if n == 0 {
		return math.NaN(), 0
	}
	return sum / float64(n), n
}

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

package testutil

import (
	"math"
	"math/rand"
)

// Grid returns n wavelengths starting at start with constant step.
func Grid(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// AbsorptionLine evaluates a unit continuum with a Gaussian absorption line
// of the given depth and width (sigma) centred on center, at each wavelength.
func AbsorptionLine(wave []float64, center, depth, sigma float64) []float64 {
	out := make([]float64, len(wave))
	for i, w := range wave {
		d := (w - center) / sigma
		out[i] = 1 - depth*math.Exp(-0.5*d*d)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Const returns a slice of length n filled with value.
func Const(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

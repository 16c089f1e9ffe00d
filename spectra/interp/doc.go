// Package interp fits 1-D interpolants to sampled spectra and evaluates them
// on another wavelength grid.
//
// [Fit] picks the interpolant from the number of samples:
//
//   - 4 or more: cubic spline with not-a-knot end conditions
//   - 3: natural cubic spline
//   - 2: straight line
//   - 1: constant
//
// The splines come from gonum.org/v1/gonum/interp. Evaluation outside the
// fitted range is left to the underlying predictor, which holds the value
// at the nearest end point.
package interp

// Package align resamples the flux and variance of every epoch onto the
// wavelength grid of the first epoch, order by order.
//
// For each channel, epoch e ≥ 1 and order k:
//
//   - samples with non-finite flux or variance, or a wavelength below the
//     floor, are masked;
//   - a fully masked order is left untouched and reported in [Report.Skipped];
//   - otherwise flux and variance are each fitted as splines of the valid
//     wavelengths and evaluated at the reference wavelengths of the same
//     pixels. Masked pixels keep their original values.
//
// After all orders of an epoch are processed its wavelength rows are
// replaced by the reference rows. Epoch 0 passes through unchanged.
//
// # Usage
//
//	sci := echelle.Channel{Name: "sci", Flux: "SCIFLUX", Variance: "SCIVAR", Wavelength: "SCIWAVE"}
//	aligned, report, err := align.Align(set, []echelle.Channel{sci},
//		align.WithLogger(logger),
//		align.WithShiftEstimate(true),
//	)
package align

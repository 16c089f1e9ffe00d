// Package echelle defines the in-memory data model shared by the stacking
// packages.
//
// An [Array] is a row-major 2-D float64 array whose rows are echelle orders
// and whose columns are detector pixels. A [Stack] holds one Array per epoch
// (input exposure) for a single extension, and a [Set] maps extension names to
// stacks while preserving the order in which extensions were read.
//
// A [Channel] names the flux, variance and wavelength extensions of one fiber
// (science, sky, calibration). Channels are resolved once when a run is set up
// and then passed by value, so no stage has to reason about extension
// positions.
package echelle

// Package pipeline runs the two batch operations of echstack on FITS files.
//
// [Pipeline.Combine] reads N exposures, groups their extensions by name
// with the first file's order as canonical, fills or rejects missing
// extensions according to the profile, optionally applies a barycentric
// correction and aligns every channel to the first exposure's wavelength
// grid, reduces the stacks and writes the result in one atomic step.
//
// [Pipeline.Operate] applies one arithmetic operation between a file and
// either a second file or a constant.
//
// All numeric work is delegated to the spectra packages. Files are fully
// read and closed before any computation starts and nothing is written
// unless every stage succeeds.
package pipeline

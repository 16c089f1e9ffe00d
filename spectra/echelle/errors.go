package echelle

import "errors"

var (
	// ErrUnsupportedOperation indicates an arithmetic operator or combination
	// method outside the supported set.
	ErrUnsupportedOperation = errors.New("echelle: unsupported operation")
	// ErrShapeMismatch indicates arrays that must share a shape do not.
	ErrShapeMismatch = errors.New("echelle: shape mismatch")
	// ErrMissingExtension indicates a requested extension is absent.
	ErrMissingExtension = errors.New("echelle: missing extension")
	// ErrUnsortedGrid indicates a wavelength grid that is not strictly monotonic.
	ErrUnsortedGrid = errors.New("echelle: wavelength grid not strictly monotonic")
)

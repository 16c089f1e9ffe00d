package echelle

import (
	"fmt"
	"math"
)

// DefaultWavelengthFloor is the wavelength (in Angstrom) below which a pixel
// is treated as unpopulated for the NEID instrument family.
const DefaultWavelengthFloor = 3000.0

// Array is a row-major 2-D array. Rows are orders, columns are pixels.
type Array struct {
	Rows int
	Cols int
	Data []float64
}

// NewArray returns a zero-filled rows x cols array.
func NewArray(rows, cols int) Array {
	if rows <= 0 || cols <= 0 {
		return Array{}
	}
	return Array{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Filled returns a rows x cols array with every element set to v.
func Filled(rows, cols int, v float64) Array {
	a := NewArray(rows, cols)
	for i := range a.Data {
		a.Data[i] = v
	}
	return a
}

// NaNs returns a rows x cols array of NaN.
func NaNs(rows, cols int) Array {
	return Filled(rows, cols, math.NaN())
}

// FromRows builds an array from equal-length rows. The data is copied.
func FromRows(rows ...[]float64) (Array, error) {
	if len(rows) == 0 {
		return Array{}, nil
	}
	cols := len(rows[0])
	a := NewArray(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return Array{}, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(r), cols, ErrShapeMismatch)
		}
		copy(a.Row(i), r)
	}
	return a, nil
}

// MustFromRows is like FromRows but panics on ragged input.
// It is intended for tests and examples.
func MustFromRows(rows ...[]float64) Array {
	a, err := FromRows(rows...)
	if err != nil {
		panic(err)
	}
	return a
}

// Vector wraps a 1-D slice as a single-row array. The data is copied.
func Vector(v []float64) Array {
	a := NewArray(1, len(v))
	copy(a.Data, v)
	return a
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Data) }

// Shape returns (rows, cols).
func (a Array) Shape() (int, int) { return a.Rows, a.Cols }

// Empty reports whether the array holds no elements.
func (a Array) Empty() bool { return len(a.Data) == 0 }

// SameShape reports whether a and b have identical dimensions.
func (a Array) SameShape(b Array) bool {
	return a.Rows == b.Rows && a.Cols == b.Cols
}

// Row returns row i as a slice sharing the array's backing store.
func (a Array) Row(i int) []float64 {
	return a.Data[i*a.Cols : (i+1)*a.Cols]
}

// At returns element (i, j).
func (a Array) At(i, j int) float64 { return a.Data[i*a.Cols+j] }

// Set assigns element (i, j).
func (a Array) Set(i, j int, v float64) { a.Data[i*a.Cols+j] = v }

// Clone returns a deep copy.
func (a Array) Clone() Array {
	out := Array{Rows: a.Rows, Cols: a.Cols}
	if a.Data != nil {
		out.Data = make([]float64, len(a.Data))
		copy(out.Data, a.Data)
	}
	return out
}

// String formats the shape, e.g. "2x5".
func (a Array) String() string {
	return fmt.Sprintf("%dx%d", a.Rows, a.Cols)
}

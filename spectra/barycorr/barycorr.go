// Package barycorr applies per-order barycentric redshift factors to
// wavelength arrays.
//
// Instruments such as NEID record one redshift factor z per order in the
// primary header (SSBZ173, SSBZ172, …). A corrected wavelength is
// λ·(1+z).
package barycorr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// ErrMissingKeyword indicates a header lacks the factor for an order.
var ErrMissingKeyword = errors.New("barycorr: missing header keyword")

// Scheme maps array rows to header keywords. Row i reads the keyword
// fmt.Sprintf(Keyword, FirstOrder+Step*i).
type Scheme struct {
	Keyword    string
	FirstOrder int
	Step       int
}

// NEID is the keyword scheme of NEID L1/L2 files: row 0 is order 173 and
// order numbers decrease along the array.
var NEID = Scheme{Keyword: "SSBZ%03d", FirstOrder: 173, Step: -1}

// Key returns the header keyword for row i.
func (s Scheme) Key(i int) string {
	return strings.ToUpper(fmt.Sprintf(s.Keyword, s.FirstOrder+s.Step*i))
}

// Lookup resolves a numeric header keyword.
type Lookup func(key string) (float64, bool)

// Factors returns one redshift factor per row for an array with the given
// number of rows.
func Factors(lookup Lookup, rows int, s Scheme) ([]float64, error) {
	z := make([]float64, rows)
	for i := range z {
		key := s.Key(i)
		v, ok := lookup(key)
		if !ok {
			return nil, fmt.Errorf("barycorr: row %d: %q: %w", i, key, ErrMissingKeyword)
		}
		z[i] = v
	}
	return z, nil
}

// Apply returns wave with row i scaled by 1+z[i]. wave is not modified.
func Apply(wave echelle.Array, z []float64) (echelle.Array, error) {
	if len(z) != wave.Rows {
		return echelle.Array{}, fmt.Errorf("barycorr: %d factors for %d rows: %w", len(z), wave.Rows, echelle.ErrShapeMismatch)
	}
	out := wave.Clone()
	for i := range out.Rows {
		scale := 1 + z[i]
		row := out.Row(i)
		for j := range row {
			row[j] *= scale
		}
	}
	return out, nil
}

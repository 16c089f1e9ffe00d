package barycorr

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-echelle/internal/testutil"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

func TestSchemeKey(t *testing.T) {
	tests := []struct {
		row  int
		want string
	}{
		{row: 0, want: "SSBZ173"},
		{row: 1, want: "SSBZ172"},
		{row: 100, want: "SSBZ073"},
		{row: 166, want: "SSBZ007"},
	}
	for _, tt := range tests {
		if got := NEID.Key(tt.row); got != tt.want {
			t.Fatalf("Key(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestFactors(t *testing.T) {
	hdr := map[string]float64{"SSBZ173": 1e-5, "SSBZ172": -2e-5}
	lookup := func(k string) (float64, bool) {
		v, ok := hdr[k]
		return v, ok
	}

	z, err := Factors(lookup, 2, NEID)
	if err != nil {
		t.Fatalf("Factors() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, z, []float64{1e-5, -2e-5}, 0)

	if _, err := Factors(lookup, 3, NEID); !errors.Is(err, ErrMissingKeyword) {
		t.Fatalf("Factors(3 rows) error = %v, want ErrMissingKeyword", err)
	}
}

func TestApply(t *testing.T) {
	wave := echelle.MustFromRows([]float64{5000, 5001}, []float64{6000, 6001})

	got, err := Apply(wave, []float64{1e-4, 0})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := echelle.MustFromRows([]float64{5000.5, 5001.5001}, []float64{6000, 6001})
	testutil.RequireArrayNearlyEqual(t, got, want, 1e-9)

	if wave.At(0, 0) != 5000 {
		t.Fatal("Apply modified its input")
	}

	if _, err := Apply(wave, []float64{0}); !errors.Is(err, echelle.ErrShapeMismatch) {
		t.Fatalf("Apply(short z) error = %v", err)
	}
}

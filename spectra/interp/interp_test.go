package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-echelle/internal/testutil"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

func TestFitKind(t *testing.T) {
	tests := []struct {
		n    int
		want Kind
	}{
		{n: 1, want: KindConstant},
		{n: 2, want: KindLinear},
		{n: 3, want: KindNaturalCubic},
		{n: 4, want: KindNotAKnotCubic},
		{n: 50, want: KindNotAKnotCubic},
	}
	for _, tt := range tests {
		xs := testutil.Grid(5000, 1, tt.n)
		s, err := Fit(xs, testutil.Const(1, tt.n))
		if err != nil {
			t.Fatalf("n=%d: Fit() error = %v", tt.n, err)
		}
		if s.Kind() != tt.want {
			t.Fatalf("n=%d: Kind() = %v, want %v", tt.n, s.Kind(), tt.want)
		}
	}
}

func TestResampleOntoOwnGridIsIdentity(t *testing.T) {
	xs := testutil.Grid(5000, 0.01, 200)
	ys := testutil.AbsorptionLine(xs, 5001, 0.6, 0.05)

	got, err := Resample(xs, ys, xs)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, ys, 1e-9)
}

func TestCubicReproducesCubicPolynomial(t *testing.T) {
	// Not-a-knot splines are exact for cubics.
	f := func(x float64) float64 { return 0.5*x*x*x - 2*x*x + x - 3 }
	xs := []float64{0, 0.7, 1.5, 2, 3.1, 4, 5.5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}

	s, err := Fit(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{0.2, 1.1, 2.5, 3.9, 5.0} {
		if got, want := s.At(x), f(x); math.Abs(got-want) > 1e-9 {
			t.Fatalf("At(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestFitDecreasingGrid(t *testing.T) {
	xs := []float64{4, 3, 2, 1, 0}
	ys := []float64{8, 6, 4, 2, 0}

	got, err := Resample(xs, ys, []float64{0.5, 2.5})
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{1, 5}, 1e-9)
	if xs[0] != 4 || ys[0] != 8 {
		t.Fatal("Fit modified its inputs")
	}
}

func TestFitErrors(t *testing.T) {
	if _, err := Fit(nil, nil); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("Fit(nil) error = %v", err)
	}
	if _, err := Fit([]float64{1, 2}, []float64{1}); !errors.Is(err, echelle.ErrShapeMismatch) {
		t.Fatalf("Fit(len mismatch) error = %v", err)
	}
	if _, err := Fit([]float64{1, 3, 2}, []float64{1, 1, 1}); !errors.Is(err, echelle.ErrUnsortedGrid) {
		t.Fatalf("Fit(unsorted) error = %v", err)
	}
	if _, err := Fit([]float64{1, 1, 2}, []float64{1, 1, 1}); !errors.Is(err, echelle.ErrUnsortedGrid) {
		t.Fatalf("Fit(repeated x) error = %v", err)
	}
}

func TestConstantAndLinear(t *testing.T) {
	s, err := Fit([]float64{5000}, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	if s.At(1) != 3 || s.At(9000) != 3 {
		t.Fatal("constant interpolant must return its sample everywhere")
	}

	got, err := Resample([]float64{0, 2}, []float64{0, 4}, []float64{0.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{1, 2}, 1e-12)
}

func TestEvalReusesBuffer(t *testing.T) {
	s, err := Fit([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, 0, 8)
	out := s.Eval(buf, []float64{0.5, 1.5})
	if &out[0] != &buf[:1][0] {
		t.Fatal("Eval did not reuse dst capacity")
	}
}

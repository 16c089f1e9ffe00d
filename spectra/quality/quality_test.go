package quality

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

const tolerance = 1e-12

func TestMeasure(t *testing.T) {
	flux := []float64{4, 2, math.NaN(), 6, 8}
	variance := []float64{4, 1, 1, 0, 16}

	o, err := Measure(flux, variance)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if o.Valid != 3 {
		t.Fatalf("Valid = %d, want 3", o.Valid)
	}
	if math.Abs(o.Mean-14.0/3) > tolerance {
		t.Fatalf("Mean = %v, want %v", o.Mean, 14.0/3)
	}
	wantStd := math.Sqrt(((4-14.0/3)*(4-14.0/3) + (2-14.0/3)*(2-14.0/3) + (8-14.0/3)*(8-14.0/3)) / 3)
	if math.Abs(o.StdDev-wantStd) > tolerance {
		t.Fatalf("StdDev = %v, want %v", o.StdDev, wantStd)
	}
	if o.Min != 2 || o.MinPos != 1 || o.Max != 8 || o.MaxPos != 4 {
		t.Fatalf("extrema = (%v@%d, %v@%d)", o.Min, o.MinPos, o.Max, o.MaxPos)
	}
	// Ratios 2, 2, 2.
	if o.SNR != 2 {
		t.Fatalf("SNR = %v, want 2", o.SNR)
	}

	if _, err := Measure([]float64{1}, nil); !errors.Is(err, echelle.ErrShapeMismatch) {
		t.Fatalf("Measure(mismatch) error = %v", err)
	}
}

func TestAccumulatorMatchesMeasure(t *testing.T) {
	flux := []float64{1, 3, 5, 7, 9, 11}
	variance := []float64{1, 1, 4, 4, 9, 9}

	var a Accumulator
	a.Update(flux[:2], variance[:2])
	a.Update(flux[2:], variance[2:])
	got := a.Result()

	want, _ := Measure(flux, variance)
	if got != want {
		t.Fatalf("streaming = %+v, want %+v", got, want)
	}
	if got.MaxPos != 5 {
		t.Fatalf("MaxPos = %d, want 5", got.MaxPos)
	}
}

func TestOrdersAndMedian(t *testing.T) {
	flux := echelle.MustFromRows(
		[]float64{10, 10, 10},
		[]float64{math.NaN(), math.NaN(), math.NaN()},
		[]float64{30, 30, 30},
	)
	variance := echelle.Filled(3, 3, 1)

	orders, err := Orders(flux, variance)
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	if orders[1].Valid != 0 || !math.IsNaN(orders[1].SNR) {
		t.Fatalf("masked order = %+v", orders[1])
	}
	if got := MedianSNR(orders); got != 20 {
		t.Fatalf("MedianSNR = %v, want 20", got)
	}
	if !math.IsNaN(MedianSNR(nil)) {
		t.Fatal("MedianSNR(nil) should be NaN")
	}

	if _, err := Orders(flux, echelle.NewArray(2, 3)); !errors.Is(err, echelle.ErrShapeMismatch) {
		t.Fatalf("Orders(mismatch) error = %v", err)
	}
}

package combine

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-echelle/internal/testutil"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

func selectFixture() *echelle.Set {
	s := echelle.NewSet()
	s.Append("PRIMARY", echelle.Array{})
	s.Append("SCIFLUX", echelle.MustFromRows([]float64{1, 2}))
	s.Append("SCIVAR", echelle.MustFromRows([]float64{0.4, 0.4}))
	s.Append("SCIWAVE", echelle.MustFromRows([]float64{5000, 5001}))
	s.Append("SCIBLAZE", echelle.MustFromRows([]float64{0.5, 0.5}))

	s.Append("PRIMARY", echelle.Array{})
	s.Append("SCIFLUX", echelle.MustFromRows([]float64{3, 4}))
	s.Append("SCIVAR", echelle.MustFromRows([]float64{0.4, 0.8}))
	s.Append("SCIWAVE", echelle.MustFromRows([]float64{7000, 7001}))
	s.Append("SCIBLAZE", echelle.MustFromRows([]float64{1.5, 1.5}))
	return s
}

func TestSelect(t *testing.T) {
	set := selectFixture()
	plan := Plan{
		Pairs:   []Pair{{Flux: "SCIFLUX", Variance: "SCIVAR"}},
		Average: []string{"SCIBLAZE"},
	}

	out, err := Select(set, plan, Mean)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	names := out.Names()
	if len(names) != 5 || names[0] != "PRIMARY" || names[4] != "SCIBLAZE" {
		t.Fatalf("Select() names = %v", names)
	}

	get := func(name string) echelle.Array {
		t.Helper()
		st, ok := out.Stack(name)
		if !ok || len(st) != 1 {
			t.Fatalf("extension %q: got %d epochs", name, len(st))
		}
		return st[0]
	}

	testutil.RequireSliceNearlyEqual(t, get("SCIFLUX").Data, []float64{2, 3}, tolerance)
	testutil.RequireSliceNearlyEqual(t, get("SCIVAR").Data, []float64{0.2, 0.3}, tolerance)
	testutil.RequireSliceNearlyEqual(t, get("SCIBLAZE").Data, []float64{1, 1}, tolerance)
	// passthrough keeps epoch 0 even when later epochs differ
	testutil.RequireSliceNearlyEqual(t, get("SCIWAVE").Data, []float64{5000, 5001}, 0)
	if !get("PRIMARY").Empty() {
		t.Fatal("PRIMARY should stay empty")
	}

	in, _ := set.Stack("SCIFLUX")
	if len(in) != 2 || in[0].Data[0] != 1 {
		t.Fatal("Select modified its input")
	}
}

func TestSelectErrors(t *testing.T) {
	set := selectFixture()

	tests := []struct {
		name string
		plan Plan
		want error
	}{
		{name: "missing flux", plan: Plan{Pairs: []Pair{{Flux: "SKYFLUX"}}}, want: echelle.ErrMissingExtension},
		{name: "missing variance", plan: Plan{Pairs: []Pair{{Flux: "SCIFLUX", Variance: "SKYVAR"}}}, want: echelle.ErrMissingExtension},
		{name: "empty flux", plan: Plan{Pairs: []Pair{{Variance: "SCIVAR"}}}, want: echelle.ErrMissingExtension},
		{name: "duplicate", plan: Plan{Pairs: []Pair{{Flux: "SCIFLUX", Variance: "SCIVAR"}}, Average: []string{"SCIVAR"}}, want: ErrDuplicateRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Select(set, tt.plan, Median); !errors.Is(err, tt.want) {
				t.Fatalf("Select() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Select(set, Plan{}, Method(9)); !errors.Is(err, echelle.ErrUnsupportedOperation) {
		t.Fatalf("Select(bad method) error = %v", err)
	}
}

func TestSelectEmptyPlanPassesThrough(t *testing.T) {
	out, err := Select(selectFixture(), Plan{}, Mean)
	if err != nil {
		t.Fatal(err)
	}
	st, _ := out.Stack("SCIFLUX")
	testutil.RequireSliceNearlyEqual(t, st[0].Data, []float64{1, 2}, 0)
}

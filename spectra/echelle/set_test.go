package echelle

import (
	"errors"
	"math"
	"testing"
)

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([]float64{1, 2}, []float64{3})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("FromRows ragged: got %v, want ErrShapeMismatch", err)
	}
}

func TestArrayRowSharesStorage(t *testing.T) {
	a := MustFromRows([]float64{1, 2, 3}, []float64{4, 5, 6})
	a.Row(1)[0] = 40
	if a.At(1, 0) != 40 {
		t.Fatalf("At(1,0) = %v, want 40", a.At(1, 0))
	}
	c := a.Clone()
	c.Set(0, 0, -1)
	if a.At(0, 0) != 1 {
		t.Fatal("Clone aliases the original data")
	}
}

func TestNaNs(t *testing.T) {
	a := NaNs(2, 3)
	if a.Len() != 6 {
		t.Fatalf("Len = %d, want 6", a.Len())
	}
	for i, v := range a.Data {
		if !math.IsNaN(v) {
			t.Fatalf("index %d: got %v, want NaN", i, v)
		}
	}
	if !NewArray(0, 4).Empty() {
		t.Fatal("0x4 array should be empty")
	}
}

func TestStackShape(t *testing.T) {
	tests := []struct {
		name    string
		stack   Stack
		rows    int
		cols    int
		wantErr bool
	}{
		{name: "empty", stack: nil},
		{name: "uniform", stack: Stack{NewArray(2, 5), NewArray(2, 5)}, rows: 2, cols: 5},
		{name: "mismatch", stack: Stack{NewArray(2, 5), NewArray(2, 4)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols, err := tt.stack.Shape()
			if tt.wantErr {
				if !errors.Is(err, ErrShapeMismatch) {
					t.Fatalf("Shape() error = %v, want ErrShapeMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Shape() error = %v", err)
			}
			if rows != tt.rows || cols != tt.cols {
				t.Fatalf("Shape() = %dx%d, want %dx%d", rows, cols, tt.rows, tt.cols)
			}
		})
	}
}

func TestSetPreservesOrder(t *testing.T) {
	s := NewSet()
	s.Append("PRIMARY", Array{})
	s.Append("SCIFLUX", NewArray(1, 2))
	s.Append("SCIVAR", NewArray(1, 2))
	s.Append("SCIFLUX", NewArray(1, 2))

	names := s.Names()
	want := []string{"PRIMARY", "SCIFLUX", "SCIVAR"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if s.Epochs() != 2 {
		t.Fatalf("Epochs() = %d, want 2", s.Epochs())
	}
}

func TestSetCloneIsDeep(t *testing.T) {
	s := NewSet()
	s.Append("SCIFLUX", MustFromRows([]float64{1, 2}))
	c := s.Clone()
	st, _ := c.Stack("SCIFLUX")
	st[0].Data[0] = 99

	orig, _ := s.Stack("SCIFLUX")
	if orig[0].Data[0] != 1 {
		t.Fatal("Clone shares array storage with the original")
	}
}

func TestChannelValidate(t *testing.T) {
	s := NewSet()
	for range 2 {
		s.Append("F", NewArray(2, 5))
		s.Append("V", NewArray(2, 5))
		s.Append("W", NewArray(2, 5))
	}
	s.Append("BAD", NewArray(2, 4))
	s.Append("BAD", NewArray(2, 4))

	rows, cols, err := Channel{Name: "sci", Flux: "F", Variance: "V", Wavelength: "W"}.Validate(s)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if rows != 2 || cols != 5 {
		t.Fatalf("Validate() = %dx%d, want 2x5", rows, cols)
	}

	_, _, err = Channel{Name: "sci", Flux: "F", Variance: "BAD", Wavelength: "W"}.Validate(s)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Validate(BAD) error = %v, want ErrShapeMismatch", err)
	}

	_, _, err = Channel{Name: "sky", Flux: "F", Variance: "V", Wavelength: "NOPE"}.Validate(s)
	if !errors.Is(err, ErrMissingExtension) {
		t.Fatalf("Validate(NOPE) error = %v, want ErrMissingExtension", err)
	}
}

func TestSetFirst(t *testing.T) {
	s := NewSet()
	s.Append("F", MustFromRows([]float64{1, 2}))
	s.Append("F", MustFromRows([]float64{3, 4}))
	s.Put("EMPTY", Stack{})

	first := s.First()
	if first.Epochs() != 1 || first.Len() != 2 {
		t.Fatalf("First() has %d epochs, %d extensions", first.Epochs(), first.Len())
	}
	st, _ := first.Stack("F")
	if st[0].Data[0] != 1 {
		t.Fatalf("First() F = %v, want epoch 0", st[0].Data)
	}
	st[0].Data[0] = 99
	orig, _ := s.Stack("F")
	if orig[0].Data[0] != 1 {
		t.Fatal("First shares storage with the original")
	}
	if st, _ := first.Stack("EMPTY"); len(st) != 0 {
		t.Fatalf("EMPTY stack = %v, want empty", st)
	}
}

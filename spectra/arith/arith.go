// Package arith applies elementwise arithmetic between two spectra, or a
// spectrum and a constant, and propagates per-pixel variance.
//
// Variance follows first-order propagation for independent inputs:
//
//	sum, diff:  var = var_a + var_b
//	prod, div:  var = result² · (var_a/a² + var_b/b²)
//
// Division by zero is not masked: it yields ±Inf or NaN per IEEE 754.
package arith

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// Op selects the arithmetic operation.
type Op int

const (
	// Sum computes a + b.
	Sum Op = iota
	// Diff computes a - b.
	Diff
	// Prod computes a * b.
	Prod
	// Div computes a / b.
	Div
)

var opNames = [...]string{Sum: "sum", Diff: "diff", Prod: "prod", Div: "div"}

var opSymbols = [...]string{Sum: "+", Diff: "-", Prod: "*", Div: "/"}

// ParseOp accepts "sum", "diff", "prod", "div" or the symbols "+", "-",
// "*", "/".
func ParseOp(s string) (Op, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range opNames {
		if s == opNames[i] || s == opSymbols[i] {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("arith: operation %q: %w", s, echelle.ErrUnsupportedOperation)
}

func (o Op) valid() bool { return o >= Sum && o <= Div }

// String returns the operation name.
func (o Op) String() string {
	if !o.valid() {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Symbol returns the operator symbol, e.g. "+".
func (o Op) Symbol() string {
	if !o.valid() {
		return "?"
	}
	return opSymbols[o]
}

// Operand is one side of an operation: an array or a scalar, with an
// optional variance of the same shape.
type Operand struct {
	value       echelle.Array
	variance    echelle.Array
	scalar      float64
	isScalar    bool
	hasVariance bool
}

// Of wraps an array without variance.
func Of(value echelle.Array) Operand {
	return Operand{value: value}
}

// WithVariance wraps an array and its variance.
func WithVariance(value, variance echelle.Array) Operand {
	return Operand{value: value, variance: variance, hasVariance: true}
}

// Scalar wraps a constant with zero variance.
func Scalar(v float64) Operand {
	return Operand{scalar: v, isScalar: true, hasVariance: true}
}

// ScalarNoVariance wraps a constant that carries no variance information.
func ScalarNoVariance(v float64) Operand {
	return Operand{scalar: v, isScalar: true}
}

// HasVariance reports whether the operand carries a variance.
func (o Operand) HasVariance() bool { return o.hasVariance }

// IsScalar reports whether the operand is a constant.
func (o Operand) IsScalar() bool { return o.isScalar }

// Result holds the value of an operation and, when both operands carried a
// variance, the propagated variance.
type Result struct {
	Value       echelle.Array
	Variance    echelle.Array
	HasVariance bool
}

// Apply computes op(a, b). Inputs are never modified.
func Apply(a, b Operand, op Op) (Result, error) {
	if !op.valid() {
		return Result{}, fmt.Errorf("arith: %v: %w", op, echelle.ErrUnsupportedOperation)
	}

	rows, cols, err := resultShape(a, b)
	if err != nil {
		return Result{}, err
	}

	av, avar, err := a.materialize(rows, cols)
	if err != nil {
		return Result{}, fmt.Errorf("arith: left operand: %w", err)
	}
	bv, bvar, err := b.materialize(rows, cols)
	if err != nil {
		return Result{}, fmt.Errorf("arith: right operand: %w", err)
	}

	res := Result{Value: echelle.NewArray(rows, cols)}
	out := res.Value.Data

	switch op {
	case Sum:
		for i := range out {
			out[i] = av[i] + bv[i]
		}
	case Diff:
		for i := range out {
			out[i] = av[i] - bv[i]
		}
	case Prod:
		vecmath.MulBlock(out, av, bv)
	case Div:
		for i := range out {
			out[i] = av[i] / bv[i]
		}
	}

	if !a.hasVariance || !b.hasVariance {
		return res, nil
	}

	res.HasVariance = true
	res.Variance = res.Value.Clone()
	v := res.Variance.Data

	switch op {
	case Sum, Diff:
		for i := range v {
			v[i] = avar[i] + bvar[i]
		}
	case Prod, Div:
		rel := make([]float64, len(v))
		for i := range rel {
			rel[i] = avar[i]/(av[i]*av[i]) + bvar[i]/(bv[i]*bv[i])
		}
		vecmath.MulBlock(v, out, out)
		vecmath.MulBlockInPlace(v, rel)
	}

	return res, nil
}

func resultShape(a, b Operand) (int, int, error) {
	switch {
	case a.isScalar && b.isScalar:
		return 1, 1, nil
	case a.isScalar:
		return b.value.Rows, b.value.Cols, nil
	case b.isScalar:
		return a.value.Rows, a.value.Cols, nil
	}
	if !a.value.SameShape(b.value) {
		return 0, 0, fmt.Errorf("arith: operands are %s and %s: %w", a.value, b.value, echelle.ErrShapeMismatch)
	}
	return a.value.Rows, a.value.Cols, nil
}

// materialize returns flat value and variance slices of rows*cols elements,
// broadcasting scalars. Array operands are returned without copying.
func (o Operand) materialize(rows, cols int) (value, variance []float64, err error) {
	if o.isScalar {
		value = echelle.Filled(rows, cols, o.scalar).Data
		if o.hasVariance {
			variance = make([]float64, rows*cols)
		}
		return value, variance, nil
	}
	if o.hasVariance && !o.variance.SameShape(o.value) {
		return nil, nil, fmt.Errorf("variance is %s, value is %s: %w", o.variance, o.value, echelle.ErrShapeMismatch)
	}
	return o.value.Data, o.variance.Data, nil
}

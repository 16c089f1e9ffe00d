package combine_test

import (
	"fmt"

	"github.com/cwbudde/algo-echelle/spectra/combine"
	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

func ExampleCombine() {
	values := echelle.Stack{
		echelle.Vector([]float64{1, 2}),
		echelle.Vector([]float64{3, 4}),
	}
	variances := echelle.Stack{
		echelle.Vector([]float64{0.5, 1}),
		echelle.Vector([]float64{0.5, 3}),
	}

	res, err := combine.Combine(values, variances, combine.Mean)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Value.Data, res.Variance.Data)

	// Output:
	// [2 3] [0.25 1]
}

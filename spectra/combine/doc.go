// Package combine reduces per-epoch stacks of spectra into a single spectrum
// and decides which extensions are reduced at all.
//
// [Combine] is the array combiner: a NaN-aware mean, median or biweight
// location along the epoch axis, with variance propagated as
//
//	var = sum(var_i) / N²
//
// for every method. For the median and biweight this is the
// independent-observation approximation, not an exact result; it is kept
// so that variance does not depend on the chosen statistic.
//
// [Select] applies [Combine] to the flux/variance pairs named in a [Plan]
// and copies every other extension from the first epoch unchanged.
//
// # Usage
//
//	plan := combine.Plan{
//		Pairs:   []combine.Pair{{Flux: "SCIFLUX", Variance: "SCIVAR"}},
//		Average: []string{"SCIBLAZE"},
//	}
//	out, err := combine.Select(set, plan, combine.Mean)
package combine

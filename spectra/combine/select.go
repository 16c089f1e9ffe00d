package combine

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-echelle/spectra/echelle"
)

// ErrDuplicateRole indicates an extension is named more than once in a Plan.
var ErrDuplicateRole = errors.New("combine: extension assigned more than one role")

// Pair names a flux extension and its optional variance extension.
type Pair struct {
	Flux     string
	Variance string
}

// Plan declares which extensions are reduced. Everything not named in the
// plan is passed through from epoch 0.
type Plan struct {
	// Pairs are reduced with variance propagation.
	Pairs []Pair
	// Average lists flux-like extensions reduced without variance.
	Average []string
}

// Role is the part an extension plays in a Plan.
type Role int

const (
	// RolePassthrough copies epoch 0 verbatim.
	RolePassthrough Role = iota
	// RoleFlux is reduced with Combine.
	RoleFlux
	// RoleVariance receives the variance propagated from its flux.
	RoleVariance
)

func (r Role) String() string {
	switch r {
	case RoleFlux:
		return "flux"
	case RoleVariance:
		return "variance"
	default:
		return "passthrough"
	}
}

// Roles returns the role of every extension named in p. Duplicate names
// yield ErrDuplicateRole.
func (p Plan) Roles() (map[string]Role, error) {
	roles := make(map[string]Role)
	assign := func(name string, r Role) error {
		if name == "" {
			return nil
		}
		if prev, ok := roles[name]; ok {
			return fmt.Errorf("%q is both %v and %v: %w", name, prev, r, ErrDuplicateRole)
		}
		roles[name] = r
		return nil
	}
	for _, pair := range p.Pairs {
		if pair.Flux == "" {
			return nil, fmt.Errorf("combine: pair with variance %q has no flux: %w", pair.Variance, echelle.ErrMissingExtension)
		}
		if err := assign(pair.Flux, RoleFlux); err != nil {
			return nil, fmt.Errorf("combine: %w", err)
		}
		if err := assign(pair.Variance, RoleVariance); err != nil {
			return nil, fmt.Errorf("combine: %w", err)
		}
	}
	for _, name := range p.Average {
		if err := assign(name, RoleFlux); err != nil {
			return nil, fmt.Errorf("combine: %w", err)
		}
	}
	return roles, nil
}

// Select produces one array per extension of set, in set order. Extensions
// named in plan are reduced with Combine using method m; all others are
// copied from epoch 0. The input set is not modified.
func Select(set *echelle.Set, plan Plan, m Method) (*echelle.Set, error) {
	if !m.valid() {
		return nil, fmt.Errorf("combine: %v: %w", m, echelle.ErrUnsupportedOperation)
	}
	roles, err := plan.Roles()
	if err != nil {
		return nil, err
	}
	for name := range roles {
		if !set.Has(name) {
			return nil, fmt.Errorf("combine: extension %q: %w", name, echelle.ErrMissingExtension)
		}
	}

	combined := make(map[string]echelle.Array, len(roles))
	for _, pair := range plan.Pairs {
		values, _ := set.Stack(pair.Flux)
		var variances echelle.Stack
		if pair.Variance != "" {
			variances, _ = set.Stack(pair.Variance)
		}
		res, err := Combine(values, variances, m)
		if err != nil {
			return nil, fmt.Errorf("combine: extension %q: %w", pair.Flux, err)
		}
		combined[pair.Flux] = res.Value
		if res.HasVariance {
			combined[pair.Variance] = res.Variance
		}
	}
	for _, name := range plan.Average {
		values, _ := set.Stack(name)
		res, err := Combine(values, nil, m)
		if err != nil {
			return nil, fmt.Errorf("combine: extension %q: %w", name, err)
		}
		combined[name] = res.Value
	}

	out := set.First()
	for name, arr := range combined {
		out.Put(name, echelle.Stack{arr})
	}
	return out, nil
}

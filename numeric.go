package symdiff

import (
	"fmt"
	"maps"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// NumericDerivative estimates the derivative of n with respect to variable
// at b with a central finite difference. b must bind variable. It serves as
// an independent check on Derive.
func NumericDerivative(n *Node, variable string, b Bindings) (float64, error) {
	x0, ok := b[variable]
	if !ok {
		return 0, fmt.Errorf("%w: no value for %q", ErrBadPoint, variable)
	}
	if ok, err := n.Validate(b); err != nil {
		return 0, err
	} else if !ok {
		return 0, ErrNoDerivative
	}

	point := maps.Clone(b)
	f := func(x float64) float64 {
		point[variable] = x
		v, err := n.Eval(point)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	d := fd.Derivative(f, x0, &fd.Settings{Formula: fd.Central})
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrNoDerivative
	}
	return d, nil
}

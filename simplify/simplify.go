// Package simplify is a small exact-arithmetic simplifier for expressions
// written in a sympy-like notation: ** is the power operator, log is the
// natural logarithm and E is Euler's number.
//
// Numbers are kept as exact rationals, like terms and like powers are
// collected, and a handful of function identities are applied. Every
// result is checked numerically against its input before it is returned.
package simplify

import (
	"fmt"
)

// Normalize parses expr, simplifies it and prints the result in the same
// notation. When the simplified form does not agree numerically with expr,
// expr is returned unchanged.
func Normalize(expr string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("simplify: %v", r)
		}
	}()

	raw, err := Parse(expr)
	if err != nil {
		return "", err
	}
	simplified := DeepSimplify(raw)
	ok, err := Equivalent(raw, simplified)
	if err != nil {
		return "", err
	}
	if !ok {
		return expr, nil
	}
	return simplified.String(), nil
}

// Simplify parses and simplifies expr without the numeric check.
func Simplify(expr string) (Expr, error) {
	raw, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return DeepSimplify(raw), nil
}

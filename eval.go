package symdiff

import (
	"fmt"
	"math"
	"strings"
)

// ============================================================
// Evaluation
// ============================================================

// Bindings assigns values to variables. A binding shadows a named constant
// of the same name.
type Bindings map[string]float64

// Calculate substitutes bindings and constants and folds every operator whose
// operands reduce to numbers. Subtrees that cannot be reduced are returned
// as new operator nodes over the reduced children (unreduced leaves are
// shared with n).
func (n *Node) Calculate(b Bindings) (*Node, error) {
	switch n.kind {
	case KindEmpty, KindNumber:
		return n, nil
	case KindSymbol:
		if v, ok := b[n.name]; ok {
			return Number(v), nil
		}
		if v, ok := Constant(n.name); ok {
			return Number(v), nil
		}
		return n, nil
	}

	left, err := n.left.Calculate(b)
	if err != nil {
		return nil, err
	}
	info := n.op.Info()

	if info.Arity == Binary {
		right, err := n.right.Calculate(b)
		if err != nil {
			return nil, err
		}
		rv, rok := right.Value()
		if n.op == OpDiv && rok && rv == 0 {
			return nil, ErrDivisionByZero
		}
		lv, lok := left.Value()
		if !lok || !rok {
			return BinaryOf(n.op, left, right), nil
		}
		if n.op == OpPow && lv == 0 && rv <= 0 {
			return nil, fmt.Errorf("0^%s: %w", formatNumber(rv), ErrDivisionByZero)
		}
		return checked(n.op, info.binary(lv, rv))
	}

	x, ok := left.Value()
	if !ok {
		return Unary(n.op, left), nil
	}
	switch {
	case n.op == OpSqrt && x < 0:
		return nil, fmt.Errorf("sqrt(%s): %w", formatNumber(x), ErrDomain)
	case n.op == OpLn && x <= 0:
		return nil, fmt.Errorf("ln(%s): %w", formatNumber(x), ErrDomain)
	}
	return checked(n.op, info.unary(x))
}

// checked rejects results that are complex (NaN) or do not fit a float64.
func checked(op Op, v float64) (*Node, error) {
	switch {
	case math.IsNaN(v):
		return nil, fmt.Errorf("%s: complex result: %w", op.Info().Symbol, ErrDomain)
	case math.IsInf(v, 0):
		return nil, fmt.Errorf("%s: %w", op.Info().Symbol, ErrOverflow)
	}
	return Number(v), nil
}

// Validate reports whether Calculate succeeds under b. Division by zero and
// domain errors become false; every other error is returned. A tree that
// contains the undefined node anywhere is never valid.
func (n *Node) Validate(b Bindings) (bool, error) {
	if n.IsUndefined() || n.hasUndefined() {
		return false, nil
	}
	if _, err := n.Calculate(b); err != nil {
		if recoverable(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (n *Node) hasUndefined() bool {
	found := false
	walk(n, func(m *Node) {
		if m.kind == KindEmpty {
			found = true
		}
	})
	return found
}

// Eval fully evaluates the tree to a number.
func (n *Node) Eval(b Bindings) (float64, error) {
	if n.IsUndefined() {
		return 0, fmt.Errorf("undefined expression: %w", ErrDomain)
	}
	r, err := n.Calculate(b)
	if err != nil {
		return 0, err
	}
	v, ok := r.Value()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnbound, strings.Join(r.Symbols(), ", "))
	}
	return v, nil
}

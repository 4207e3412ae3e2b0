package symdiff

import "context"

// ============================================================
// Differentiation
// ============================================================

// Diff returns the derivative of n with respect to variable. Every
// intermediate derivative is simplified before it is combined, so the
// result stays small for nested expressions.
func (e *Engine) Diff(n *Node, variable string) *Node {
	d, _ := e.DiffContext(context.Background(), n, variable)
	return d
}

// DiffContext is Diff with cancellation. ctx is checked before every node
// is differentiated and simplified.
func (e *Engine) DiffContext(ctx context.Context, n *Node, variable string) (*Node, error) {
	if n.IsUndefined() {
		return Undefined(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := e.rule(ctx, n, variable)
	if err != nil {
		return nil, err
	}
	return e.Simplify(raw), nil
}

// DiffN applies Diff order times. order < 1 returns n unchanged.
func (e *Engine) DiffN(n *Node, variable string, order int) *Node {
	d, _ := e.DiffNContext(context.Background(), n, variable, order)
	return d
}

// DiffNContext is DiffN with cancellation.
func (e *Engine) DiffNContext(ctx context.Context, n *Node, variable string, order int) (*Node, error) {
	for i := 0; i < order; i++ {
		d, err := e.DiffContext(ctx, n, variable)
		if err != nil {
			return nil, err
		}
		n = d
	}
	return n, nil
}

// rule builds the raw derivative of n from the derivatives of its children.
// Untouched subtrees of n are shared, never copied.
func (e *Engine) rule(ctx context.Context, n *Node, v string) (*Node, error) {
	switch n.kind {
	case KindEmpty:
		return Undefined(), nil
	case KindNumber:
		return Number(0), nil
	case KindSymbol:
		if n.name == v {
			return Number(1), nil
		}
		return Number(0), nil
	}

	u, w := n.left, n.right
	du, err := e.DiffContext(ctx, u, v)
	if err != nil {
		return nil, err
	}
	var dw *Node
	if w != nil {
		if dw, err = e.DiffContext(ctx, w, v); err != nil {
			return nil, err
		}
	}

	switch n.op {
	case OpAdd, OpSub:
		return BinaryOf(n.op, du, dw), nil
	case OpNeg:
		return Unary(OpNeg, du), nil
	case OpMul:
		return add(mul(du, w), mul(u, dw)), nil
	case OpDiv:
		return div(sub(mul(du, w), mul(u, dw)), pow(w, Number(2))), nil
	case OpPow:
		// d(u^w) = (u'*w/u + ln(u)*w') * u^w, valid for any base/exponent mix.
		return mul(add(div(mul(du, w), u), mul(Unary(OpLn, u), dw)), pow(u, w)), nil
	case OpSqrt:
		return div(du, mul(Number(2), Unary(OpSqrt, u))), nil
	case OpExp:
		return mul(du, Unary(OpExp, u)), nil
	case OpLn:
		return div(du, u), nil
	case OpSin:
		return mul(du, Unary(OpCos, u)), nil
	case OpCos:
		return Unary(OpNeg, mul(du, Unary(OpSin, u))), nil
	case OpTg:
		return div(du, pow(Unary(OpCos, u), Number(2))), nil
	}
	return Undefined(), nil
}

func add(a, b *Node) *Node { return BinaryOf(OpAdd, a, b) }
func sub(a, b *Node) *Node { return BinaryOf(OpSub, a, b) }
func mul(a, b *Node) *Node { return BinaryOf(OpMul, a, b) }
func div(a, b *Node) *Node { return BinaryOf(OpDiv, a, b) }
func pow(a, b *Node) *Node { return BinaryOf(OpPow, a, b) }

// Derive evaluates the derivative of n with respect to variable at b.
// Both n and its derivative must be defined at b.
func (e *Engine) Derive(n *Node, variable string, b Bindings) (float64, error) {
	return e.DeriveContext(context.Background(), n, variable, b)
}

// DeriveContext is Derive with cancellation.
func (e *Engine) DeriveContext(ctx context.Context, n *Node, variable string, b Bindings) (float64, error) {
	d, err := e.DiffContext(ctx, n, variable)
	if err != nil {
		return 0, err
	}
	return deriveAt(n, d, b)
}

func deriveAt(n, d *Node, b Bindings) (float64, error) {
	ok, err := n.Validate(b)
	if err != nil {
		return 0, err
	}
	if ok {
		ok, err = d.Validate(b)
		if err != nil {
			return 0, err
		}
	}
	if !ok {
		return 0, ErrNoDerivative
	}
	r, err := d.Calculate(b)
	if err != nil {
		return 0, err
	}
	v, isNum := r.Value()
	if !isNum {
		return 0, ErrBadPoint
	}
	return v, nil
}

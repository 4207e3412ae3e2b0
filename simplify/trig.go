package simplify

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// maxPasses bounds DeepSimplify when an expression keeps changing.
const maxPasses = 10

// TrigSimplify applies sin²+cos²=1 throughout e, after a plain Simplify.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(terms...))
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = trigSimplifyExpr(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), trigSimplifyExpr(v.exp))
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	}
	return e
}

// trigFindPythagorean replaces one c*sin(u)**2 + c*cos(u)**2 pair in a sum
// with c.
func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		funcName string
		argStr   string
		coeff    *Num
		idx      int
	}
	var trigTerms []trigTerm
	for idx, t := range add.terms {
		coeff, inner := extractCoefficient(t)
		p, ok := inner.(*Pow)
		if !ok || !isNumEqual(p.exp, 2) {
			continue
		}
		if fn, ok := p.base.(*Func); ok && (fn.name == "sin" || fn.name == "cos") {
			trigTerms = append(trigTerms, trigTerm{fn.name, fn.arg.String(), coeff, idx})
		}
	}
	for i := 0; i < len(trigTerms); i++ {
		for j := i + 1; j < len(trigTerms); j++ {
			ti, tj := trigTerms[i], trigTerms[j]
			if ti.argStr != tj.argStr || ti.funcName == tj.funcName || !ti.coeff.Equal(tj.coeff) {
				continue
			}
			terms := make([]Expr, 0, len(add.terms)-1)
			for idx, t := range add.terms {
				if idx != ti.idx && idx != tj.idx {
					terms = append(terms, t)
				}
			}
			terms = append(terms, ti.coeff)
			return AddOf(terms...)
		}
	}
	return e
}

// DeepSimplify repeats simplification and trig passes until the printed
// form stops changing.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < maxPasses; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr)
	}
	return curr
}

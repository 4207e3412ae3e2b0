package simplify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/floats/scalar"
)

// ============================================================
// Numeric equivalence check
// ============================================================

// Tolerances for comparing two renderings of the same function.
const (
	absTol = 1e-9
	relTol = 1e-7
)

// samples are the values free symbols take at the check points. They avoid
// integers and multiples of pi so that poles are unlikely to be hit.
var samples = []float64{0.731, 1.379, 2.113, 0.457, 1.918, 2.669, 0.313}

// points is the number of sample points Equivalent tries.
const points = 5

var functions = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sqrt": unary(math.Sqrt),
}

func unary(f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want 1 argument, got %d", len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("argument %v is not a number", args[0])
		}
		return f(x), nil
	}
}

// Equivalent reports whether a and b agree numerically at a fixed set of
// sample points. Points where either side is undefined are skipped; when no
// point can be compared the expressions are assumed equivalent.
func Equivalent(a, b Expr) (bool, error) {
	ea, err := govaluate.NewEvaluableExpressionWithFunctions(evalString(a), functions)
	if err != nil {
		return false, fmt.Errorf("simplify: compile %q: %w", a, err)
	}
	eb, err := govaluate.NewEvaluableExpressionWithFunctions(evalString(b), functions)
	if err != nil {
		return false, fmt.Errorf("simplify: compile %q: %w", b, err)
	}

	names := freeSymbols(a, b)
	for i := 0; i < points; i++ {
		params := map[string]interface{}{EulerName: math.E, "pi": math.Pi}
		for j, name := range names {
			params[name] = samples[(i+3*j)%len(samples)]
		}
		va, okA := evaluate(ea, params)
		vb, okB := evaluate(eb, params)
		if !okA || !okB {
			continue
		}
		if !scalar.EqualWithinAbsOrRel(va, vb, absTol, relTol) {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(e *govaluate.EvaluableExpression, params map[string]interface{}) (float64, bool) {
	r, err := e.Evaluate(params)
	if err != nil {
		return 0, false
	}
	v, ok := r.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// evalString renders e with every compound subexpression parenthesized, so
// the evaluator's own operator precedence never matters.
func evalString(e Expr) string {
	var sb strings.Builder
	writeEval(&sb, e)
	return sb.String()
}

func writeEval(sb *strings.Builder, e Expr) {
	switch v := e.(type) {
	case *Num:
		sb.WriteString("(")
		sb.WriteString(v.val.RatString())
		sb.WriteString(")")
	case *Sym:
		sb.WriteString(v.name)
	case *Add:
		writeEvalList(sb, v.terms, " + ")
	case *Mul:
		writeEvalList(sb, v.factors, " * ")
	case *Pow:
		sb.WriteString("(")
		writeEval(sb, v.base)
		sb.WriteString(" ** ")
		writeEval(sb, v.exp)
		sb.WriteString(")")
	case *Func:
		sb.WriteString(v.name)
		sb.WriteString("(")
		writeEval(sb, v.arg)
		sb.WriteString(")")
	}
}

func writeEvalList(sb *strings.Builder, items []Expr, sep string) {
	sb.WriteString("(")
	for i, item := range items {
		if i > 0 {
			sb.WriteString(sep)
		}
		writeEval(sb, item)
	}
	sb.WriteString(")")
}

// freeSymbols lists the symbols of a and b other than the constants, sorted.
func freeSymbols(exprs ...Expr) []string {
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case *Sym:
			if v.name != EulerName && v.name != "pi" {
				seen[v.name] = true
			}
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			walk(v.base)
			walk(v.exp)
		case *Func:
			walk(v.arg)
		}
	}
	for _, e := range exprs {
		walk(e)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package simplify

import (
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of the simplifier's expression tree. Simplify never
// mutates its receiver.
type Expr interface {
	Simplify() Expr
	String() string
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("simplify: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac64(p, q)}
}

// ParseNum reads a decimal literal exactly, so "0.1" is 1/10.
func ParseNum(s string) (*Num, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return &Num{val: r}, true
}

func (n *Num) Simplify() Expr   { return n }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

func (n *Num) Float64() float64 {
	f, _ := n.val.Float64()
	return f
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }

// numPowInt raises a to an integer power; a must not be zero when e < 0.
func numPowInt(a *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	r := new(big.Rat).SetFrac(num, den)
	if neg {
		r.Inv(r)
	}
	return &Num{val: r}
}

// numSqrt returns the exact square root of a non-negative rational whose
// numerator and denominator are perfect squares.
func numSqrt(a *Num) (*Num, bool) {
	if a.IsNegative() {
		return nil, false
	}
	p, q := a.val.Num(), a.val.Denom()
	sp, sq := new(big.Int).Sqrt(p), new(big.Int).Sqrt(q)
	if new(big.Int).Mul(sp, sp).Cmp(p) != 0 || new(big.Int).Mul(sq, sq).Cmp(q) != 0 {
		return nil, false
	}
	return &Num{val: new(big.Rat).SetFrac(sp, sq)}, true
}

// smallInt returns the exponent as an int64 when it is an integer of
// manageable size.
func smallInt(n *Num, limit int64) (int64, bool) {
	if !n.IsInteger() || !n.val.Num().IsInt64() {
		return 0, false
	}
	v := n.val.Num().Int64()
	if v > limit || v < -limit {
		return 0, false
	}
	return v, true
}

// ============================================================
// Sym: symbolic variable or constant
// ============================================================

type Sym struct{ name string }

// EulerName is the engine's spelling of Euler's number.
const EulerName = "E"

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) Name() string   { return s.name }

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}

// ============================================================
// Add: sum of terms
// ============================================================

// Compound nodes remember whether they are already the output of Simplify
// and cache their printed form. Nodes are never mutated after construction.

type Add struct {
	terms []Expr
	done  bool
	str   string
}

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	if a.done {
		return a
	}
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	sort.Strings(order)

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		coeff := coeffs[key]
		switch {
		case coeff.IsZero():
			continue
		case coeff.IsOne():
			result = append(result, rests[key])
		default:
			result = append(result, MulOf(coeff, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return trigFindPythagorean(&Add{terms: result, done: true})
}

func (a *Add) String() string {
	if a.str == "" {
		a.str = a.format()
	}
	return a.str
}

func (a *Add) format() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if neg, ok := negated(t); ok {
			sb.WriteString(" - ")
			sb.WriteString(wrapIf(neg, isAdd(neg)))
			continue
		}
		sb.WriteString(" + ")
		sb.WriteString(t.String())
	}
	return sb.String()
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// negated returns -t when t prints with a leading minus sign.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := append([]Expr{numNeg(c)}, v.factors[1:]...)
			return MulOf(rest...), true
		}
	}
	return nil, false
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct {
	factors []Expr
	done    bool
	str     string
}

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	if m.done {
		return m
	}
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := N(1)
	type power struct {
		base Expr
		exps []Expr
	}
	powers := map[string]*power{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if _, seen := powers[key]; !seen {
			order = append(order, key)
			powers[key] = &power{base: base}
		}
		powers[key].exps = append(powers[key].exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	for _, key := range order {
		p := powers[key]
		var merged Expr
		if len(p.exps) == 1 {
			merged = PowOf(p.base, p.exps[0])
		} else {
			merged = PowOf(p.base, AddOf(p.exps...))
		}
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			for _, f := range v.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, f)
				}
			}
		default:
			others = append(others, merged)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted, done: true}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...), done: true}
}

// String prints numerator and denominator factors separately, so that
// 2*x*y^-1 reads as 2*x/y.
func (m *Mul) String() string {
	if m.str == "" {
		m.str = m.format()
	}
	return m.str
}

func (m *Mul) format() string {
	if len(m.factors) == 0 {
		return "1"
	}
	sign := ""
	var num, den []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			c := v
			if c.IsNegative() {
				sign = "-"
				c = numNeg(c)
			}
			if p := c.val.Num(); !p.IsInt64() || p.Int64() != 1 {
				num = append(num, p.String())
			}
			if q := c.val.Denom(); !q.IsInt64() || q.Int64() != 1 {
				den = append(den, q.String())
			}
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				den = append(den, factorString(powOrBase(v.base, numNeg(e)), true))
				continue
			}
			num = append(num, factorString(v, false))
		default:
			num = append(num, factorString(v, false))
		}
	}
	out := strings.Join(num, "*")
	if out == "" {
		out = "1"
	}
	switch len(den) {
	case 0:
	case 1:
		out += "/" + den[0]
	default:
		out += "/(" + strings.Join(den, "*") + ")"
	}
	return sign + out
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// factorString wraps sums, and products when they sit in a denominator.
func factorString(e Expr, inDenominator bool) string {
	switch e.(type) {
	case *Add:
		return "(" + e.String() + ")"
	case *Mul:
		if inDenominator {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func powOrBase(base Expr, exp *Num) Expr {
	if exp.IsOne() {
		return base
	}
	return &Pow{base: base, exp: exp}
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct {
	base, exp Expr
	done      bool
	str       string
}

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// maxExactPower bounds exact integer powers of rationals.
const maxExactPower = 64

func (p *Pow) Simplify() Expr {
	if p.done {
		return p
	}
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		if bn, ok := base.(*Num); ok && bn.IsZero() {
			return &Pow{base: base, exp: exp, done: true}
		}
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		switch {
		case bn.IsZero():
			// 0^0 is indeterminate and 0^negative divides by zero.
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: base, exp: exp, done: true}
		case bn.IsOne():
			return N(1)
		}
		if expIsNum {
			if e, ok := smallInt(en, maxExactPower); ok {
				return numPowInt(bn, e)
			}
			if halves, ok := halfInteger(en); ok {
				if root, ok := numSqrt(bn); ok {
					if e, ok := smallInt(halves, maxExactPower); ok {
						return numPowInt(root, e)
					}
				}
			}
		}
	}

	if s, ok := base.(*Sym); ok && s.name == EulerName {
		return ExpOf(exp)
	}

	// (u^a)^n = u^(a*n) holds for integer n.
	if inner, ok := base.(*Pow); ok && expIsNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	// (a*b)^n = a^n*b^n for integer n.
	if m, ok := base.(*Mul); ok && expIsNum && en.IsInteger() {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, exp)
		}
		return MulOf(factors...)
	}
	if f, ok := base.(*Func); ok && f.name == "exp" {
		return ExpOf(MulOf(f.arg, exp))
	}
	return &Pow{base: base, exp: exp, done: true}
}

// halfInteger returns 2*n when n is an odd multiple of 1/2.
func halfInteger(n *Num) (*Num, bool) {
	twice := numMul(n, N(2))
	if !twice.IsInteger() || n.IsInteger() {
		return nil, false
	}
	return twice, true
}

func (p *Pow) String() string {
	if p.str == "" {
		p.str = p.format()
	}
	return p.str
}

func (p *Pow) format() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return "1/" + factorString(powOrBase(p.base, numNeg(en)), true)
		}
		if en.val.Cmp(big.NewRat(1, 2)) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	return p.baseString() + "**" + p.expString()
}

func (p *Pow) baseString() string {
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		return "(" + b.String() + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			return "(" + b.String() + ")"
		}
	}
	return p.base.String()
}

func (p *Pow) expString() string {
	switch e := p.exp.(type) {
	case *Sym, *Func:
		return e.String()
	case *Num:
		if e.IsInteger() && !e.IsNegative() {
			return e.String()
		}
	}
	return "(" + p.exp.String() + ")"
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
	done bool
	str  string
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LogOf(arg Expr) Expr  { return funcOf("log", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

// Simplify applies exact identities only; numeric arguments that do not
// give an exact rational stay symbolic.
func (f *Func) Simplify() Expr {
	if f.done {
		return f
	}
	arg := f.arg.Simplify()
	switch f.name {
	case "sqrt":
		return SqrtOf(arg)
	case "sin", "tan":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "log":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if s, ok := arg.(*Sym); ok && s.name == EulerName {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	}
	return &Func{name: f.name, arg: arg, done: true}
}

func (f *Func) String() string {
	if f.str == "" {
		f.str = f.name + "(" + f.arg.String() + ")"
	}
	return f.str
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// extractCoefficient splits c*rest into its rational coefficient and rest.
func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest, done: m.done}
		}
	}
	return N(1), e
}

func isAdd(e Expr) bool {
	_, ok := e.(*Add)
	return ok
}

func wrapIf(e Expr, wrap bool) string {
	if wrap {
		return "(" + e.String() + ")"
	}
	return e.String()
}

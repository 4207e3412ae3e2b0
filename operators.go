package symdiff

import "math"

// ============================================================
// Operator registry
// ============================================================

// Arity classifies how many operands an operator consumes and where they sit.
type Arity uint8

const (
	Prefix Arity = iota
	Binary
	Postfix
)

// Associativity breaks ties between operators of equal priority.
type Associativity uint8

const (
	NonAssociative Associativity = iota
	Associative
	LeftAssociative
	RightAssociative
)

// Op is the closed set of operators the parser understands.
type Op uint8

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpNeg
	OpMul
	OpDiv
	OpPow
	OpSqrt
	OpExp
	OpLn
	OpSin
	OpCos
	OpTg
	opCount
)

// Operator describes one entry of the registry.
type Operator struct {
	Symbol   string
	Arity    Arity
	Assoc    Associativity
	Priority int

	unary  func(float64) float64
	binary func(a, b float64) float64
}

var operators = [opCount]Operator{
	OpAdd:  {Symbol: "+", Arity: Binary, Assoc: Associative, Priority: 0, binary: func(a, b float64) float64 { return a + b }},
	OpSub:  {Symbol: "-", Arity: Binary, Assoc: LeftAssociative, Priority: 0, binary: func(a, b float64) float64 { return a - b }},
	OpNeg:  {Symbol: "unary-", Arity: Prefix, Assoc: NonAssociative, Priority: 1, unary: func(a float64) float64 { return -a }},
	OpMul:  {Symbol: "*", Arity: Binary, Assoc: Associative, Priority: 1, binary: func(a, b float64) float64 { return a * b }},
	OpDiv:  {Symbol: "/", Arity: Binary, Assoc: LeftAssociative, Priority: 1, binary: func(a, b float64) float64 { return a / b }},
	OpPow:  {Symbol: "^", Arity: Binary, Assoc: RightAssociative, Priority: 2, binary: math.Pow},
	OpSqrt: {Symbol: "sqrt", Arity: Prefix, Assoc: NonAssociative, Priority: 3, unary: math.Sqrt},
	OpExp:  {Symbol: "exp", Arity: Prefix, Assoc: NonAssociative, Priority: 3, unary: math.Exp},
	OpLn:   {Symbol: "ln", Arity: Prefix, Assoc: NonAssociative, Priority: 3, unary: math.Log},
	OpSin:  {Symbol: "sin", Arity: Prefix, Assoc: NonAssociative, Priority: 3, unary: math.Sin},
	OpCos:  {Symbol: "cos", Arity: Prefix, Assoc: NonAssociative, Priority: 3, unary: math.Cos},
	OpTg:   {Symbol: "tg", Arity: Prefix, Assoc: NonAssociative, Priority: 3, unary: math.Tan},
}

// operatorBySymbol maps source spellings to operators. The synthetic
// unary minus is never spelled in source, so it is absent.
var operatorBySymbol = func() map[string]Op {
	m := make(map[string]Op, opCount)
	for op := OpAdd; op < opCount; op++ {
		if op == OpNeg {
			continue
		}
		m[operators[op].Symbol] = op
	}
	return m
}()

// Constants holds the named constants recognised in expressions.
var constants = map[string]float64{
	"e":   math.E,
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
	"phi": (1 + math.Sqrt(5)) / 2,
}

// multiLetterNames is the suffix set the tokenizer splits letter runs on,
// in a fixed order so tokenizing stays deterministic.
var multiLetterNames = []string{"sqrt", "exp", "ln", "sin", "cos", "tg", "e", "pi", "tau", "phi"}

// Info returns the registry entry for op.
func (op Op) Info() Operator { return operators[op] }

func (op Op) Valid() bool { return op > OpNone && op < opCount }

func (op Op) Arity() Arity         { return operators[op].Arity }
func (op Op) Priority() int        { return operators[op].Priority }
func (op Op) Assoc() Associativity { return operators[op].Assoc }

// String returns the source spelling; unary minus renders as "-".
func (op Op) String() string {
	if op == OpNeg {
		return "-"
	}
	if !op.Valid() {
		return ""
	}
	return operators[op].Symbol
}

// LookupOperator resolves a source symbol such as "sin" or "^".
func LookupOperator(symbol string) (Op, bool) {
	op, ok := operatorBySymbol[symbol]
	return op, ok
}

// Constant returns the value of a named constant.
func Constant(name string) (float64, bool) {
	v, ok := constants[name]
	return v, ok
}

// IsConstant reports whether name is a named constant.
func IsConstant(name string) bool {
	_, ok := constants[name]
	return ok
}

func isOperatorChar(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '^':
		return true
	}
	return false
}

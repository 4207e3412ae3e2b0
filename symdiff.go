// Package symdiff parses infix mathematical expressions, evaluates them and
// differentiates them symbolically.
//
// The pipeline is:
//
//	text → Tokenize → ToPostfix (shunting-yard) → Build → *Node
//	*Node → Calculate | Engine.Diff → *Node → String
//
// Parse errors are *ParseError values that point at the offending part of
// the expression. Derivatives are passed through a pluggable Normalizer;
// the default one is package simplify.
package symdiff

import (
	"runtime"

	"github.com/njchilds90/symdiff/simplify"
	"go.uber.org/zap"
)

// DefaultVariable is the differentiation variable used when none is given.
const DefaultVariable = "x"

// DefaultMaxDepth bounds the height of parsed trees.
const DefaultMaxDepth = 2048

// Engine ties the pipeline to a normalizer, a logger and resource limits.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	normalizer Normalizer
	notation   Notation
	logger     *zap.Logger
	maxDepth   int
	workers    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNormalizer replaces the default simplifier. The notation describes how
// the normalizer spells functions, constants and the power operator.
func WithNormalizer(n Normalizer, notation Notation) Option {
	return func(e *Engine) {
		e.normalizer = n
		e.notation = notation
	}
}

// WithoutSimplification leaves raw derivative trees unsimplified.
func WithoutSimplification() Option {
	return func(e *Engine) {
		e.normalizer = NopNormalizer{}
		e.notation = IdentityNotation
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxDepth bounds tree height; d <= 0 removes the bound.
func WithMaxDepth(d int) Option {
	return func(e *Engine) { e.maxDepth = d }
}

// WithWorkers bounds the goroutines DeriveAll uses.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New returns an Engine backed by package simplify.
func New(opts ...Option) *Engine {
	e := &Engine{
		normalizer: NormalizerFunc(simplify.Normalize),
		notation:   SympyNotation,
		logger:     zap.NewNop(),
		maxDepth:   DefaultMaxDepth,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Parse builds a tree from infix text. Whitespace is ignored. The words
// "undefined" and "nan" parse to the undefined node.
func (e *Engine) Parse(expr string) (*Node, error) {
	expr = StripSpace(expr)
	if expr == "undefined" || expr == "nan" {
		return Undefined(), nil
	}
	postfix, err := ToPostfix(expr)
	if err != nil {
		return nil, err
	}
	return buildTree(postfix, e.maxDepth)
}

// Differentiate is the one-call entry point. With no bindings it returns the
// simplified symbolic derivative of expr with respect to variable; with
// bindings it returns the derivative's value at that point. An empty
// variable means DefaultVariable.
func (e *Engine) Differentiate(expr, variable string, b Bindings) (string, error) {
	if variable == "" {
		variable = DefaultVariable
	}
	n, err := e.Parse(expr)
	if err != nil {
		return "", err
	}
	if len(b) > 0 {
		v, err := e.Derive(n, variable, b)
		if err != nil {
			return "", err
		}
		return FormatValue(v), nil
	}
	out := e.Diff(n, variable).String()
	e.logger.Debug("differentiated",
		zap.String("expr", expr),
		zap.String("variable", variable),
		zap.String("derivative", out),
	)
	return out, nil
}

// Parse parses expr with the default engine.
func Parse(expr string) (*Node, error) { return defaultEngine.Parse(expr) }

// MustParse is like Parse but panics on error. Intended for tests and
// constant expressions.
func MustParse(expr string) *Node {
	n, err := Parse(expr)
	if err != nil {
		panic("symdiff: " + err.Error())
	}
	return n
}

// Differentiate runs the entry point on the default engine.
func Differentiate(expr, variable string, b Bindings) (string, error) {
	return defaultEngine.Differentiate(expr, variable, b)
}

// Diff differentiates n with respect to variable on the default engine.
func Diff(n *Node, variable string) *Node { return defaultEngine.Diff(n, variable) }

// Derive evaluates the derivative of n at b on the default engine.
func Derive(n *Node, variable string, b Bindings) (float64, error) {
	return defaultEngine.Derive(n, variable, b)
}

// Simplify normalizes n on the default engine.
func Simplify(n *Node) *Node { return defaultEngine.Simplify(n) }

package symdiff_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
)

// ============================================================
// Builder and tree
// ============================================================

func TestBuildMatchesParse(t *testing.T) {
	postfix, err := symdiff.ToPostfix("2x+sin(x)")
	require.NoError(t, err)
	built, err := symdiff.Build(postfix)
	require.NoError(t, err)

	want := symdiff.BinaryOf(symdiff.OpAdd,
		symdiff.BinaryOf(symdiff.OpMul, symdiff.Number(2), symdiff.Symbol("x")),
		symdiff.Unary(symdiff.OpSin, symdiff.Symbol("x")),
	)
	assert.True(t, want.Equal(built), built.String())
	assert.True(t, symdiff.MustParse("2x").Equal(symdiff.MustParse("2*x")))
}

func TestBuildEmptyAndMissingOperands(t *testing.T) {
	n, err := symdiff.Build(nil)
	require.NoError(t, err)
	assert.True(t, n.IsUndefined())

	tokens, err := symdiff.Tokenize("x+")
	require.NoError(t, err)
	n, err = symdiff.Build(tokens)
	require.NoError(t, err)
	ok, err := n.Validate(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "undefined", n.String())
}

func TestParseUndefinedWords(t *testing.T) {
	for _, in := range []string{"undefined", "nan", " nan "} {
		n, err := symdiff.Parse(in)
		require.NoError(t, err, in)
		assert.True(t, n.IsUndefined(), in)
	}
}

func TestDepthAndSymbols(t *testing.T) {
	n := symdiff.MustParse("x+y*z")
	assert.Equal(t, 3, n.Depth())
	assert.Equal(t, []string{"x", "y", "z"}, n.Symbols())

	n = symdiff.MustParse("x*pi+y+e")
	assert.Equal(t, []string{"x", "y"}, n.Symbols())
}

func TestMaxDepth(t *testing.T) {
	e := symdiff.New(symdiff.WithMaxDepth(3))
	_, err := e.Parse("x+x+x")
	require.NoError(t, err)
	_, err = e.Parse("x+x+x+x")
	assert.True(t, errors.Is(err, symdiff.ErrTooDeep), "got %v", err)

	_, err = symdiff.Parse(strings.Repeat("-", 5000) + "x")
	assert.True(t, errors.Is(err, symdiff.ErrTooDeep), "got %v", err)

	n, err := symdiff.New(symdiff.WithMaxDepth(0)).Parse(strings.Repeat("-", 5000) + "x")
	require.NoError(t, err)
	assert.Equal(t, 5001, n.Depth())
}

func TestConstructorsRejectWrongArity(t *testing.T) {
	x := symdiff.Symbol("x")
	assert.Panics(t, func() { symdiff.Unary(symdiff.OpAdd, x) })
	assert.Panics(t, func() { symdiff.BinaryOf(symdiff.OpSin, x, x) })
}

func TestConstructorsRejectNilOperands(t *testing.T) {
	x := symdiff.Symbol("x")
	assert.Panics(t, func() { symdiff.Unary(symdiff.OpSin, nil) })
	assert.Panics(t, func() { symdiff.BinaryOf(symdiff.OpAdd, x, nil) })
	assert.Panics(t, func() { symdiff.BinaryOf(symdiff.OpAdd, nil, x) })
	assert.NotPanics(t, func() { symdiff.BinaryOf(symdiff.OpAdd, x, symdiff.Undefined()) })
}

// ============================================================
// Evaluation
// ============================================================

func TestEval(t *testing.T) {
	cases := []struct {
		in   string
		b    symdiff.Bindings
		want float64
	}{
		{"2+3*4", nil, 14},
		{"2^3^2", nil, 512},
		{"-2^2", nil, -4},
		{"(2^3)^2", nil, 64},
		{"10-4-3", nil, 3},
		{"8/4/2", nil, 1},
		{"1,5*2", nil, 3},
		{"sin(pi/2)", nil, 1},
		{"tau", nil, 2 * math.Pi},
		{"phi", nil, (1 + math.Sqrt(5)) / 2},
		{"e", symdiff.Bindings{"e": 2}, 2},
		{"x^2+y", symdiff.Bindings{"x": 3, "y": 1}, 10},
		{"exp(ln(3))", nil, 3},
	}
	for _, c := range cases {
		got, err := symdiff.MustParse(c.in).Eval(c.b)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, got, 1e-12, c.in)
	}
}

func TestCalculatePartial(t *testing.T) {
	r, err := symdiff.MustParse("x+2*3").Calculate(nil)
	require.NoError(t, err)
	assert.Equal(t, "x+6", r.String())

	_, err = symdiff.MustParse("x*y").Eval(symdiff.Bindings{"x": 1})
	assert.True(t, errors.Is(err, symdiff.ErrUnbound))
}

func TestCalculateErrors(t *testing.T) {
	cases := []struct {
		in   string
		b    symdiff.Bindings
		want error
	}{
		{"1/0", nil, symdiff.ErrDivisionByZero},
		{"1/x", symdiff.Bindings{"x": 0}, symdiff.ErrDivisionByZero},
		{"0^0", nil, symdiff.ErrDivisionByZero},
		{"0^(-1)", nil, symdiff.ErrDivisionByZero},
		{"sqrt(-1)", nil, symdiff.ErrDomain},
		{"ln(0)", nil, symdiff.ErrDomain},
		{"(-8)^(1/3)", nil, symdiff.ErrDomain},
		{"exp(1000)", nil, symdiff.ErrOverflow},
	}
	for _, c := range cases {
		_, err := symdiff.MustParse(c.in).Calculate(c.b)
		assert.True(t, errors.Is(err, c.want), "%q: got %v", c.in, err)
	}
}

func TestValidate(t *testing.T) {
	ok, err := symdiff.MustParse("1/x").Validate(symdiff.Bindings{"x": 0})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = symdiff.MustParse("sqrt(x)").Validate(symdiff.Bindings{"x": -4})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = symdiff.MustParse("sqrt(x)").Validate(nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = symdiff.MustParse("exp(x)").Validate(symdiff.Bindings{"x": 1000})
	assert.False(t, ok)
	assert.True(t, errors.Is(err, symdiff.ErrOverflow))

	ok, err = symdiff.Undefined().Validate(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

package symdiff_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/symdiff"
)

func TestNotationTranslation(t *testing.T) {
	n := symdiff.SympyNotation
	assert.Equal(t, "tan(x)+log(E**x)", n.ToEngine("tg(x)+ln(e^x)"))
	assert.Equal(t, "exp(x)*E_", n.ToEngine("exp(x)*E"))
	assert.Equal(t, "tg(x)+ln(e^x)", n.FromEngine("tan(x)+log(E**x)"))
	assert.Equal(t, "exp(x)*E", n.FromEngine("exp(x)*E_"))

	id := symdiff.IdentityNotation
	assert.Equal(t, "tg(x)^2", id.ToEngine("tg(x)^2"))
	assert.Equal(t, "tg(x)^2", id.FromEngine("tg(x)^2"))
}

func TestSimplifyWithDefaultNormalizer(t *testing.T) {
	cases := map[string]string{
		"x+x":               "2*x",
		"x*x*x":             "x^3",
		"0*y+1*x":           "x",
		"sin(x)^2+cos(x)^2": "1",
		"ln(e^x)":           "x",
		"E*E":               "E^2",
	}
	for in, want := range cases {
		assert.Equal(t, want, symdiff.Simplify(symdiff.MustParse(in)).String(), in)
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	for _, in := range []string{"x+x+y*2", "(x^2+1)/(x-3)", "e^(-x^2)*2x", "1/(2*sqrt(x))"} {
		once := symdiff.Simplify(symdiff.MustParse(in))
		twice := symdiff.Simplify(once)
		assert.Equal(t, once.String(), twice.String(), in)
	}
}

func TestSimplifyLeavesInvalidTreesAlone(t *testing.T) {
	n := symdiff.MustParse("x/0")
	assert.Same(t, n, symdiff.Simplify(n))

	leaf := symdiff.Symbol("x")
	assert.Same(t, leaf, symdiff.Simplify(leaf))
}

func TestCustomNormalizer(t *testing.T) {
	var seen string
	upper := symdiff.NormalizerFunc(func(expr string) (string, error) {
		seen = expr
		return "2*x", nil
	})
	e := symdiff.New(symdiff.WithNormalizer(upper, symdiff.IdentityNotation))
	got := e.Simplify(symdiff.MustParse("x+x"))
	assert.Equal(t, "x+x", seen)
	assert.Equal(t, "2*x", got.String())
}

func TestNormalizerFailureFallsBack(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	failing := symdiff.NormalizerFunc(func(string) (string, error) {
		return "", errors.New("boom")
	})
	e := symdiff.New(symdiff.WithNormalizer(failing, symdiff.IdentityNotation), symdiff.WithLogger(logger))
	n := symdiff.MustParse("x+x")
	assert.Same(t, n, e.Simplify(n))
	assert.Equal(t, 1, logs.FilterMessage("normalizer failed").Len())

	garbage := symdiff.NormalizerFunc(func(string) (string, error) {
		return "2$x", nil
	})
	e = symdiff.New(symdiff.WithNormalizer(garbage, symdiff.IdentityNotation), symdiff.WithLogger(logger))
	assert.Same(t, n, e.Simplify(n))
	assert.Equal(t, 1, logs.FilterMessage("normalizer returned unparsable text").Len())

	got, err := e.Differentiate("x^2", "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "(1*2/x+ln(x)*0)*x^2", got)
}

func TestVariableNamedLikeEngineConstant(t *testing.T) {
	got, err := symdiff.Differentiate("E*x^2", "x", nil)
	require.NoError(t, err)

	d := symdiff.MustParse(got)
	v, err := d.Eval(symdiff.Bindings{"E": 5, "x": 2})
	require.NoError(t, err)
	assert.InDelta(t, 20, v, 1e-12)
}

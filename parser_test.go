package symdiff_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
)

func texts(tokens []symdiff.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.String()
	}
	return out
}

// ============================================================
// Tokenizer
// ============================================================

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"2x+sin(x)", []string{"2", "x", "+", "sin", "(", "x", ")"}},
		{"exp(x)+e", []string{"exp", "(", "x", ")", "+", "e"}},
		{"xe", []string{"x", "e"}},
		{"xy", []string{"x", "y"}},
		{"3,5x", []string{"3.5", "x"}},
		{"tg(pi)", []string{"tg", "(", "pi", ")"}},
		{"sqrt(tau*phi)", []string{"sqrt", "(", "tau", "*", "phi", ")"}},
		{"ln(x)^2", []string{"ln", "(", "x", ")", "^", "2"}},
	}
	for _, c := range cases {
		tokens, err := symdiff.Tokenize(c.in)
		require.NoError(t, err, c.in)
		if diff := cmp.Diff(c.want, texts(tokens)); diff != "" {
			t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestTokenizeKinds(t *testing.T) {
	tokens, err := symdiff.Tokenize("2x-sin(y)")
	require.NoError(t, err)
	want := []symdiff.Token{
		{Kind: symdiff.TokenNumber, Text: "2"},
		{Kind: symdiff.TokenSymbol, Text: "x"},
		{Kind: symdiff.TokenOperator, Text: "-", Op: symdiff.OpSub},
		{Kind: symdiff.TokenOperator, Text: "sin", Op: symdiff.OpSin},
		{Kind: symdiff.TokenLeftParen, Text: "("},
		{Kind: symdiff.TokenSymbol, Text: "y"},
		{Kind: symdiff.TokenRightParen, Text: ")"},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	_, err := symdiff.Tokenize("2$3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, symdiff.ErrInvalidCharacter))

	var pe *symdiff.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Position)
	assert.Equal(t, 1, pe.Length)
}

// ============================================================
// Shunting-yard conversion
// ============================================================

func TestToPostfix(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"2x+sin(x)", []string{"2", "x", "*", "x", "sin", "+"}},
		{"2 x", []string{"2", "x", "*"}},
		{"2(x+1)", []string{"2", "x", "1", "+", "*"}},
		{"(a)(b)", []string{"a", "b", "*"}},
		{"-x^2", []string{"x", "2", "^", "unary-"}},
		{"2^-1", []string{"2", "1", "unary-", "^"}},
		{"2^3^4", []string{"2", "3", "4", "^", "^"}},
		{"x-y-z", []string{"x", "y", "-", "z", "-"}},
		{"sin(x)^2", []string{"x", "sin", "2", "^"}},
		{"-1/x", []string{"1", "unary-", "x", "/"}},
	}
	for _, c := range cases {
		postfix, err := symdiff.ToPostfix(c.in)
		require.NoError(t, err, c.in)
		if diff := cmp.Diff(c.want, texts(postfix)); diff != "" {
			t.Errorf("ToPostfix(%q) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestToPostfixErrors(t *testing.T) {
	cases := []struct {
		in       string
		kind     error
		pos, len int
	}{
		{"(2+3", symdiff.ErrParenthesisMismatch, 0, 1},
		{"(2)(3", symdiff.ErrParenthesisMismatch, 3, 1},
		{"2+3)", symdiff.ErrParenthesisMismatch, 3, 1},
		{"2++3", symdiff.ErrEntitiesPlacement, 2, 1},
		{"*2", symdiff.ErrEntitiesPlacement, 0, 1},
		{"2+", symdiff.ErrEntitiesPlacement, 1, 1},
		{"()", symdiff.ErrEntitiesPlacement, 1, 1},
		{"sin(", symdiff.ErrEntitiesPlacement, 3, 1},
		{"2*(", symdiff.ErrEntitiesPlacement, 2, 1},
		{"2..3", symdiff.ErrInvalidNumber, 0, 4},
		{"1+2..3", symdiff.ErrInvalidNumber, 2, 4},
		{"( 2 + 3", symdiff.ErrParenthesisMismatch, 0, 1},
	}
	for _, c := range cases {
		_, err := symdiff.ToPostfix(c.in)
		require.Error(t, err, c.in)
		assert.True(t, errors.Is(err, c.kind), "%q: got %v", c.in, err)

		var pe *symdiff.ParseError
		require.True(t, errors.As(err, &pe), c.in)
		assert.Equal(t, c.pos, pe.Position, c.in)
		assert.Equal(t, c.len, pe.Length, c.in)
	}
}

func TestParseErrorRendering(t *testing.T) {
	_, err := symdiff.Parse("(2+3")
	require.Error(t, err)
	assert.Equal(t, "(2+3\n^", err.Error())

	_, err = symdiff.Parse("2++3")
	require.Error(t, err)
	assert.Equal(t, "2++3\n  ^", err.Error())
	assert.True(t, symdiff.IsParseError(err))
	assert.False(t, errors.Is(err, symdiff.ErrParenthesisMismatch))
}

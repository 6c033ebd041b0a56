package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"precedence", "2+3*4", 14},
		{"parens override precedence", "(2+3)*4", 20},
		{"division binds tighter", "10-6/2", 7},
		{"left associative subtraction", "10-4-3", 3},
		{"float division", "10/4", 2.5},
		{"unary minus", "-5+3", -2},
		{"unary minus on parens", "-(2+3)", -5},
		{"nested parens", "((1+2)*(3+4))", 21},
		{"decimal literals", "3.14*2", 6.28},
		{"leading dot literal", ".5+.5", 1},
		{"whitespace tolerated", "  2 +\t2  ", 4},
		{"single number", "42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
		})
	}
}

func TestEvaluate_NotAnExpression(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"hello",
		"++",
		"2+",
		"+",
		"()",
		"(2+3",
		"2+3)",
		"5..5",
		"2**3",
		"10/0",
		"0/0",
		"2 2",
		"firefox",
		"1+a",
		"2^3",
		"10%3",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := Evaluate(input)
			require.ErrorIs(t, err, ErrNotExpression)
		})
	}
}

func TestEvaluate_TrimsQuery(t *testing.T) {
	t.Parallel()

	got, err := Evaluate("  1+1 ")
	require.NoError(t, err)
	assert.Equal(t, "1+1", got.Expr)
	assert.Equal(t, 2.0, got.Value)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value float64
		want  string
	}{
		{5, "5"},
		{14, "14"},
		{-2, "-2"},
		{0, "0"},
		{2.5, "2.5"},
		{6.28, "6.28"},
		{-0.5, "-0.5"},
		{1e16, "1e+16"},
		{1e15, "1e+15"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatValue(tt.value))
		})
	}
}

// Formatting a result and evaluating the formatted text must not drift.
func TestProperty_FormatRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"2+3*4",
		"(2+3)*4",
		"10-6/2",
		"10/4",
		"3.14*2",
		"-5+3",
		"1/3",
		"22/7",
		"0.1+0.2",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			first, err := Evaluate(input)
			require.NoError(t, err)

			again, err := Evaluate(FormatValue(first.Value))
			require.NoError(t, err)
			assert.InDelta(t, first.Value, again.Value, math.Abs(first.Value)*1e-12+1e-12)
		})
	}
}

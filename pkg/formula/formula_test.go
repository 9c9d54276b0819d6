package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestEvaluateEmptyWhenAllReferencedColumnsEmpty(t *testing.T) {
	cols := []string{"A", "B", "C"}
	res, err := Evaluate("A+B", cols, map[string]*float64{"C": f(9)})
	require.NoError(t, err)
	assert.Nil(t, res.Value)
	assert.False(t, res.Partial)
	assert.Equal(t, []string{"A", "B"}, res.Used)
}

func TestEvaluatePartialData(t *testing.T) {
	cols := []string{"A", "B"}
	res, err := Evaluate("A+B", cols, map[string]*float64{"A": f(4)})
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, 4.0, *res.Value)
	assert.True(t, res.Partial)
}

func TestEvaluateArithmetic(t *testing.T) {
	cols := []string{"A", "B"}
	cases := []struct {
		expr string
		a, b float64
		want float64
	}{
		{"A+B", 4, 6, 10},
		{"(A+B)/2", 3, 7, 5},
		{"A*2 + B*3", 1, 2, 8},
		{"-A + B", 2, 5, 3},
		{"(A + B * 2) / 3", 7, 8, 7.7},
		{"A/3", 1, 0, 0.3},
		{"A - B", 2.25, 0, 2.3},
	}
	for _, tc := range cases {
		res, err := Evaluate(tc.expr, cols, map[string]*float64{"A": f(tc.a), "B": f(tc.b)})
		require.NoError(t, err, tc.expr)
		require.NotNil(t, res.Value, tc.expr)
		assert.InDelta(t, tc.want, *res.Value, 1e-9, tc.expr)
		assert.False(t, res.Partial, tc.expr)
	}
}

func TestEvaluateLongestColumnNameWins(t *testing.T) {
	cols := []string{"KT", "KT15", "Thi HK"}
	values := map[string]*float64{"KT": f(5), "KT15": f(8), "Thi HK": f(6)}
	res, err := Evaluate("(KT15 + KT + Thi HK*2)/4", cols, values)
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, 6.3, *res.Value)
	assert.Equal(t, []string{"KT", "KT15", "Thi HK"}, res.Used)
}

func TestEvaluateIgnoresUnsafeCharacters(t *testing.T) {
	cols := []string{"A"}
	res, err := Evaluate("A + 1; alert", cols, map[string]*float64{"A": f(2)})
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, 3.0, *res.Value)
}

func TestEvaluateFailures(t *testing.T) {
	cols := []string{"A", "B"}
	values := map[string]*float64{"A": f(1), "B": f(0)}

	_, err := Evaluate("A/B", cols, values)
	assert.True(t, errors.Is(err, ErrNotFinite))

	_, err = Evaluate("A+", cols, values)
	assert.True(t, errors.Is(err, ErrSyntax))

	_, err = Evaluate("(A+B", cols, values)
	assert.True(t, errors.Is(err, ErrSyntax))

	_, err = Evaluate("A B", cols, values)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestEvaluateConstantFormula(t *testing.T) {
	res, err := Evaluate("10/4", []string{"A"}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, 2.5, *res.Value)
	assert.Empty(t, res.Used)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("(A+B)/2", []string{"A", "B"}))
	assert.Error(t, Validate("   ", []string{"A"}))
	assert.Error(t, Validate("A*", []string{"A"}))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 8.5, Round1(8.46))
	assert.Equal(t, 7.3, Round1(7.25))
	assert.Equal(t, -2.2, Round1(-2.25))
	assert.Equal(t, 10.0, Round1(9.96))
}

package gradcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/revad/internal/autodiff"
)

func TestExpressions_MatchFiniteDifferences(t *testing.T) {
	s := autodiff.NewStack()
	for _, e := range Expressions() {
		t.Run(e.Name, func(t *testing.T) {
			res, err := Check(s, e.F, e.X, nil)
			require.NoError(t, err, "reverse %v numeric %v", res.Reverse, res.Numeric)
			assert.Len(t, res.Reverse, len(e.X))
			assert.LessOrEqual(t, res.MaxErr, DefaultSettings().Tol)
		})
	}
	assert.Equal(t, 0, s.Tape().Len())
	assert.True(t, s.EmptyNested())
}

func TestExpressions_Names(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Expressions() {
		assert.False(t, seen[e.Name], "duplicate %s", e.Name)
		seen[e.Name] = true
	}
	assert.True(t, seen["sqrt"])
	assert.True(t, seen["pow/dv"])
	assert.True(t, seen["dot_self"])
}

func TestCheck_DetectsWrongPartial(t *testing.T) {
	s := autodiff.NewStack()
	// Claims d/dx x² = x.
	bad := func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
		v := x[0].Val()
		return s.Precomputed(v*v, x, []float64{v})
	}

	res, err := Check(s, bad, []float64{3}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.InDelta(t, 3.0, res.Reverse[0], 1e-12)
	assert.InDelta(t, 6.0, res.Numeric[0], 1e-4)
	assert.Equal(t, 0, res.Worst)
}

func TestCheck_CustomSettings(t *testing.T) {
	s := autodiff.NewStack()
	f := func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.Exp(s.Mul(x[0], x[1])) }

	res, err := Check(s, f, []float64{0.5, -0.3}, &Settings{Step: 1e-4, Tol: 1e-6})

	require.NoError(t, err)
	assert.InDelta(t, -0.3*res.Fx, res.Reverse[0], 1e-12)
	assert.InDelta(t, 0.5*res.Fx, res.Reverse[1], 1e-12)
}

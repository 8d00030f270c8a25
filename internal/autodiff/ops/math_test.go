package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

const (
	epsilonGrad = 1e-6
	tolerance   = 1e-5
)

// unaryPoint picks an evaluation point inside each kind's domain.
func unaryPoint(k Kind) float64 {
	switch k {
	case Acosh:
		return 1.7
	case Floor, Ceil, Trunc, Round:
		return 1.3
	default:
		return 0.6
	}
}

// numericalGradient computes a central finite difference of f at x.
func numericalGradient(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central, Step: epsilonGrad})
}

func TestUnaryPartials_MatchFiniteDifference(t *testing.T) {
	for _, k := range Unary() {
		t.Run(k.String(), func(t *testing.T) {
			a := unaryPoint(k)
			f := Eval1(k, a)
			got := Partial1(k, a, f)
			want := numericalGradient(func(x float64) float64 { return Eval1(k, x) }, a)
			assert.InDelta(t, want, got, tolerance*(1+math.Abs(want)))
		})
	}
}

func TestBinaryPartials_MatchFiniteDifference(t *testing.T) {
	const a, b = 1.9, 0.7
	for _, k := range Binary() {
		t.Run(k.String(), func(t *testing.T) {
			f := Eval2(k, a, b)
			da, db := Partial2(k, a, b, f)

			wantA := numericalGradient(func(x float64) float64 { return Eval2(k, x, b) }, a)
			wantB := numericalGradient(func(y float64) float64 { return Eval2(k, a, y) }, b)

			assert.InDelta(t, wantA, da, tolerance*(1+math.Abs(wantA)))
			assert.InDelta(t, wantB, db, tolerance*(1+math.Abs(wantB)))
			assert.Equal(t, da, PartialA(k, a, b, f))
			assert.Equal(t, db, PartialB(k, a, b, f))
		})
	}
}

func TestAbs_AtZeroAndNaN(t *testing.T) {
	assert.Equal(t, 0.0, Partial1(Abs, 0, 0))
	assert.Equal(t, 1.0, Partial1(Abs, 0.68, 0.68))
	assert.Equal(t, -1.0, Partial1(Abs, -0.68, 0.68))
	assert.True(t, math.IsNaN(Partial1(Abs, math.NaN(), math.NaN())))
}

func TestRounding_FlatAndNaN(t *testing.T) {
	for _, k := range []Kind{Floor, Ceil, Trunc, Round} {
		assert.Equal(t, 0.0, Partial1(k, 1.2, Eval1(k, 1.2)), k.String())
		assert.Equal(t, 0.0, Partial1(k, -3, Eval1(k, -3)), k.String())
		assert.True(t, math.IsNaN(Partial1(k, math.NaN(), math.NaN())), k.String())
	}
	assert.Equal(t, 1.0, Eval1(Floor, 1.2))
	assert.Equal(t, 2.0, Eval1(Ceil, 1.9))
	assert.Equal(t, -2.0, Eval1(Trunc, -2.7))
	assert.Equal(t, 3.0, Eval1(Round, 2.5))
}

func TestFmod_TruncatedQuotient(t *testing.T) {
	f := Eval2(Fmod, 2.7, 1.3)
	assert.InDelta(t, math.Mod(2.7, 1.3), f, 1e-15)
	da, db := Partial2(Fmod, 2.7, 1.3, f)
	assert.Equal(t, 1.0, da)
	assert.Equal(t, -2.0, db)
}

func TestPow_ZeroBase(t *testing.T) {
	da, db := Partial2(Pow, 0, 3, 0)
	assert.Equal(t, 0.0, da)
	assert.Equal(t, 0.0, db)

	da, db = Partial2(Pow, 0, math.NaN(), math.NaN())
	assert.True(t, math.IsNaN(da))
	assert.True(t, math.IsNaN(db))
}

func TestFdim_Values(t *testing.T) {
	assert.Equal(t, 2.0, Eval2(Fdim, 5, 3))
	assert.Equal(t, 0.0, Eval2(Fdim, 3, 5))
	assert.True(t, math.IsNaN(Eval2(Fdim, math.NaN(), 1)))
}

func TestLogSumExp_Stable(t *testing.T) {
	assert.InDelta(t, 1000+math.Log(2), Eval2(LogSumExp, 1000, 1000), 1e-9)
	assert.Equal(t, 3.0, Eval2(LogSumExp, math.Inf(-1), 3))
	da, db := Partial2(LogSumExp, 1000, 1000, 0)
	assert.InDelta(t, 0.5, da, 1e-12)
	assert.InDelta(t, 0.5, db, 1e-12)
}

func TestLogSumExp_Infinities(t *testing.T) {
	inf := math.Inf(1)
	assert.Equal(t, inf, Eval2(LogSumExp, inf, inf))
	assert.Equal(t, inf, Eval2(LogSumExp, inf, 2))

	da, db := Partial2(LogSumExp, inf, inf, inf)
	assert.Equal(t, 0.5, da)
	assert.Equal(t, 0.5, db)

	da, db = Partial2(LogSumExp, inf, 2, inf)
	assert.Equal(t, 1.0, da)
	assert.Equal(t, 0.0, db)
}

func TestInvLogit_Extremes(t *testing.T) {
	assert.Equal(t, 1.0, Eval1(InvLogit, 800))
	assert.Equal(t, 0.0, Eval1(InvLogit, -800))
	assert.InDelta(t, 800.0, Eval1(Log1pExp, 800), 1e-9)
}

func TestNaN_Propagates(t *testing.T) {
	nan := math.NaN()
	for _, k := range Unary() {
		assert.True(t, math.IsNaN(Eval1(k, nan)), k.String())
	}
	for _, k := range Binary() {
		f := Eval2(k, nan, 1)
		assert.True(t, math.IsNaN(f), k.String())
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "sin", Sin.String())
	assert.Equal(t, "log_sum_exp", LogSumExp.String())
	assert.Equal(t, "precomputed", Precomputed.String())
	assert.Equal(t, "Kind(250)", Kind(250).String())
}

func TestKind_Classes(t *testing.T) {
	for _, k := range Unary() {
		require.True(t, k.IsUnary(), k.String())
		require.False(t, k.IsBinary(), k.String())
		require.NotNil(t, unaryRules[k].eval, k.String())
		require.NotNil(t, unaryRules[k].d, k.String())
		require.NotEmpty(t, kindNames[k])
	}
	for _, k := range Binary() {
		require.True(t, k.IsBinary(), k.String())
		require.NotNil(t, binaryRules[k].eval, k.String())
	}
	assert.False(t, Leaf.IsUnary())
	assert.False(t, Sum.IsBinary())
}

func TestRuleDispatch_PanicsOnWrongArity(t *testing.T) {
	assert.Panics(t, func() { Eval1(Add, 1) })
	assert.Panics(t, func() { Eval2(Sin, 1, 2) })
	assert.Panics(t, func() { Partial1(Sum, 1, 1) })
}

package autodiff_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/parallel"
)

// quadratic is f(x) = x0² * x1 + exp(x1).
func quadratic(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
	return s.Add(s.Mul(s.Square(x[0]), x[1]), s.Exp(x[1]))
}

func TestGradientOf(t *testing.T) {
	s := autodiff.NewStack()

	fx, grad := autodiff.GradientOf(s, quadratic, []float64{3, 0.5})

	assert.InDelta(t, 4.5+math.Exp(0.5), fx, tol)
	assert.InDelta(t, 3.0, grad[0], tol)
	assert.InDelta(t, 9+math.Exp(0.5), grad[1], tol)
	assert.Equal(t, 0, s.Tape().Len(), "scope must be recovered")
}

func TestJacobianOf(t *testing.T) {
	s := autodiff.NewStack()
	f := func(s *autodiff.Stack, x []autodiff.Var) []autodiff.Var {
		return []autodiff.Var{s.Mul(x[0], x[1]), s.Add(x[0], x[1]), s.FMul(17, x[0])}
	}

	fx, jac := autodiff.JacobianOf(s, f, []float64{2, 3})

	assert.Equal(t, []float64{6, 5, 34}, fx)
	assert.Equal(t, [][]float64{{3, 2}, {1, 1}, {17, 0}}, jac)
	assert.True(t, s.EmptyNested())
}

func TestFiniteDiffHessian(t *testing.T) {
	s := autodiff.NewStack()
	x := []float64{3, 0.5}

	fx, grad, hess := autodiff.FiniteDiffHessian(s, quadratic, x)

	assert.InDelta(t, 4.5+math.Exp(0.5), fx, tol)
	assert.InDelta(t, 3.0, grad[0], tol)

	want := [][]float64{
		{2 * x[1], 2 * x[0]},
		{2 * x[0], math.Exp(x[1])},
	}
	for i := range want {
		for j := range want[i] {
			assert.InDelta(t, want[i][j], hess[i][j], 1e-8, "H[%d][%d]", i, j)
		}
	}
	assert.Equal(t, hess[0][1], hess[1][0])
	assert.Equal(t, 0, s.Tape().Len())
}

func TestGradientOf_InsideOuterScope(t *testing.T) {
	s := autodiff.NewStack()
	keep := s.NewVar(1)

	for range 10 {
		autodiff.GradientOf(s, quadratic, []float64{1, 1})
	}

	assert.Equal(t, 1.0, keep.Val())
	assert.Equal(t, 1, s.Tape().Len())
}

func TestBatchGradient(t *testing.T) {
	points := make([][]float64, 37)
	for i := range points {
		points[i] = []float64{float64(i) / 10, 1 - float64(i)/50}
	}
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

	fx, grads, err := autodiff.BatchGradient(context.Background(), quadratic, points, cfg)
	require.NoError(t, err)
	require.Len(t, fx, len(points))

	s := autodiff.NewStack()
	for i, p := range points {
		wantFx, wantGrad := autodiff.GradientOf(s, quadratic, p)
		assert.Equal(t, wantFx, fx[i], "point %d", i)
		assert.Equal(t, wantGrad, grads[i], "point %d", i)
	}
}

func TestBatchGradient_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points := [][]float64{{1, 2}, {3, 4}}
	_, _, err := autodiff.BatchGradient(ctx, quadratic, points, parallel.Config{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// cyclic is f(x) = sum x_i² x_{i+1 mod n}.
func cyclic(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
	terms := make([]autodiff.Var, len(x))
	for i := range x {
		terms[i] = s.Mul(s.Square(x[i]), x[(i+1)%len(x)])
	}
	return s.Sum(terms)
}

func TestParallelHessian_MatchesSequential(t *testing.T) {
	x := []float64{0.3, -1.2, 2, 0.7, -0.4, 1.1}
	cfg := parallel.Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}

	var freed atomic.Int32
	observe := autodiff.WithObserver(func(autodiff.Stats) { freed.Add(1) })
	fx, grad, hess := autodiff.ParallelHessian(cyclic, x, cfg, observe)

	wantFx, wantGrad, wantHess := autodiff.FiniteDiffHessian(autodiff.NewStack(), cyclic, x)
	assert.Equal(t, wantFx, fx)
	assert.Equal(t, wantGrad, grad)
	assert.Equal(t, wantHess, hess)
	// H[0][1] = d²/dx0dx1 of x0² x1 = 2 x0.
	assert.InDelta(t, 2*x[0], hess[0][1], 1e-8)
	// One stack for the gradient plus one per chunk of two rows.
	assert.Equal(t, int32(4), freed.Load())
}

func TestParallelHessian_Sequential(t *testing.T) {
	fx, _, hess := autodiff.ParallelHessian(quadratic, []float64{3, 0.5}, parallel.Config{})

	assert.InDelta(t, 4.5+math.Exp(0.5), fx, tol)
	assert.InDelta(t, math.Exp(0.5), hess[1][1], 1e-8)
}

func TestWithObserver_ReportsOnFree(t *testing.T) {
	var got []autodiff.Stats
	s := autodiff.NewStack(autodiff.WithName("observed"), autodiff.WithObserver(func(st autodiff.Stats) {
		got = append(got, st)
	}))
	autodiff.GradientOf(s, quadratic, []float64{1, 2})
	s.RecoverMemory()
	assert.Empty(t, got)

	s.FreeMemory()

	require.Len(t, got, 1)
	assert.Equal(t, "observed", got[0].Name)
	assert.Equal(t, 0, got[0].Tape)
	assert.Equal(t, uint64(1), got[0].Sweeps)
	assert.Equal(t, uint64(3), got[0].Recoveries)
	assert.Equal(t, 1, got[0].Nodes.Blocks)
}

func TestBatchGradient_ObservesWorkerStacks(t *testing.T) {
	points := make([][]float64, 37)
	for i := range points {
		points[i] = []float64{float64(i), 1}
	}
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

	var (
		mu     sync.Mutex
		stacks int
		sweeps uint64
	)
	observe := autodiff.WithObserver(func(st autodiff.Stats) {
		mu.Lock()
		defer mu.Unlock()
		stacks++
		sweeps += st.Sweeps
	})
	_, _, err := autodiff.BatchGradient(context.Background(), quadratic, points, cfg, observe)

	require.NoError(t, err)
	assert.Equal(t, 4, stacks)
	assert.Equal(t, uint64(len(points)), sweeps)
}

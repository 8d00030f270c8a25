package autodiff

import "github.com/born-ml/revad/internal/parallel"

// Func is a scalar function of independent variables built on s.
type Func func(s *Stack, x []Var) Var

// VectorFunc is a vector-valued function of independent variables built on s.
type VectorFunc func(s *Stack, x []Var) []Var

// GradientOf evaluates f at x and returns f(x) and its gradient.
//
// The evaluation runs in its own nested scope, which is recovered before
// returning (also when f panics), so repeated calls do not grow the stack.
func GradientOf(s *Stack, f Func, x []float64) (fx float64, grad []float64) {
	s.Nested(func() {
		xs := s.NewVars(x)
		y := f(s, xs)
		fx = y.Val()
		grad = s.Gradient(y, xs)
	})
	return fx, grad
}

// JacobianOf evaluates f at x and returns f(x) and its Jacobian,
// J[i][j] = d f_i / d x_j, in a nested scope like GradientOf.
func JacobianOf(s *Stack, f VectorFunc, x []float64) (fx []float64, jac [][]float64) {
	s.Nested(func() {
		xs := s.NewVars(x)
		ys := f(s, xs)
		fx = Vals(ys)
		jac = s.Jacobian(ys, xs)
	})
	return fx, jac
}

// hessianStep is the finite-difference step applied to reverse-mode gradients.
const hessianStep = 1e-3

// FiniteDiffHessian returns f(x), its gradient and a Hessian obtained by
// differencing reverse-mode gradients with the fourth-order central stencil
//
//	H[i] ≈ (-g(x+2h e_i) + 8 g(x+h e_i) - 8 g(x-h e_i) + g(x-2h e_i)) / 12h
//
// The result is symmetrized. Every gradient runs in its own nested scope.
func FiniteDiffHessian(s *Stack, f Func, x []float64) (fx float64, grad []float64, hess [][]float64) {
	fx, grad = GradientOf(s, f, x)

	n := len(x)
	hess = make([][]float64, n)
	for i := range hess {
		hess[i] = make([]float64, n)
	}

	hessianRows(s, f, x, hess, 0, n)
	symmetrize(hess)
	return fx, grad, hess
}

// ParallelHessian is FiniteDiffHessian with the rows spread over workers
// according to cfg. Each chunk of rows runs on a stack of its own created
// with opts, and that stack is freed when the chunk is done.
func ParallelHessian(f Func, x []float64, cfg parallel.Config, opts ...Option) (fx float64, grad []float64, hess [][]float64) {
	s := NewStack(opts...)
	fx, grad = GradientOf(s, f, x)
	s.FreeMemory()

	n := len(x)
	hess = make([][]float64, n)
	for i := range hess {
		hess[i] = make([]float64, n)
	}
	parallel.For(n, func(lo, hi int) {
		ws := NewStack(opts...)
		defer ws.FreeMemory()
		hessianRows(ws, f, x, hess, lo, hi)
	}, cfg)
	symmetrize(hess)
	return fx, grad, hess
}

// hessianRows fills rows [lo, hi) of hess by differencing gradients of f
// around x on s.
func hessianRows(s *Stack, f Func, x []float64, hess [][]float64, lo, hi int) {
	xx := make([]float64, len(x))
	gradAt := func(i int, offset float64) []float64 {
		copy(xx, x)
		xx[i] += offset
		_, g := GradientOf(s, f, xx)
		return g
	}

	const h = hessianStep
	for i := lo; i < hi; i++ {
		p2, p1 := gradAt(i, 2*h), gradAt(i, h)
		m1, m2 := gradAt(i, -h), gradAt(i, -2*h)
		for j := range hess[i] {
			hess[i][j] = (-p2[j] + 8*p1[j] - 8*m1[j] + m2[j]) / (12 * h)
		}
	}
}

func symmetrize(hess [][]float64) {
	for i := range hess {
		for j := i + 1; j < len(hess); j++ {
			avg := 0.5 * (hess[i][j] + hess[j][i])
			hess[i][j], hess[j][i] = avg, avg
		}
	}
}

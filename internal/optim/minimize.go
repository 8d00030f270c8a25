package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/born-ml/revad/internal/autodiff"
)

// Options control a Minimize run.
type Options struct {
	MaxSteps int          // Step limit (default: 1000)
	GradTol  float64      // Stop once the gradient's max-norm is at most this
	Logger   *slog.Logger // Optional progress logger
	LogEvery int          // Steps between progress records (default: 100)
}

// Result is the outcome of a Minimize run.
type Result struct {
	X         []float64
	F         float64
	Grad      []float64
	Steps     int
	Converged bool
}

// Minimize runs opt on f starting from x0, which is not modified.
//
// Every gradient is evaluated with autodiff.GradientOf, so each step runs in
// a nested scope of s and the stack does not grow across steps.
func Minimize(ctx context.Context, s *autodiff.Stack, f autodiff.Func, x0 []float64, opt Optimizer, o Options) (Result, error) {
	if o.MaxSteps <= 0 {
		o.MaxSteps = 1000
	}
	if o.LogEvery <= 0 {
		o.LogEvery = 100
	}

	res := Result{X: append([]float64(nil), x0...)}
	for step := range o.MaxSteps + 1 {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}

		fx, grad := autodiff.GradientOf(s, f, res.X)
		res.F, res.Grad, res.Steps = fx, grad, step

		norm := maxAbs(grad)
		if math.IsNaN(fx) || math.IsInf(fx, 0) || math.IsNaN(norm) || math.IsInf(norm, 0) {
			return res, fmt.Errorf("step %d: f=%g: %w", step, fx, ErrNotFinite)
		}
		if o.Logger != nil && step%o.LogEvery == 0 {
			o.Logger.Debug("optimizer step", "step", step, "f", fx, "grad_norm", norm, "lr", opt.GetLR())
		}
		if norm <= o.GradTol {
			res.Converged = true
			return res, nil
		}
		if step == o.MaxSteps {
			break
		}
		opt.Step(res.X, grad)
	}
	return res, nil
}

// Negate returns -f, turning a maximization into a minimization.
func Negate(f autodiff.Func) autodiff.Func {
	return func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
		return s.Neg(f(s, x))
	}
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if math.IsNaN(x) {
			return x
		}
		m = max(m, math.Abs(x))
	}
	return m
}

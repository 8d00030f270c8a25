// Package gradcheck compares reverse-mode gradients with central finite
// differences.
package gradcheck

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/revad/internal/autodiff"
)

// ErrMismatch reports a reverse-mode gradient component that disagrees with
// its finite-difference estimate.
var ErrMismatch = errors.New("gradcheck: gradient mismatch")

// Settings control the finite-difference comparison.
type Settings struct {
	Step float64 // Finite-difference step.
	Tol  float64 // Allowed error, relative to 1+|numeric|.
}

// DefaultSettings returns the step and tolerance used by Check when given nil.
func DefaultSettings() Settings {
	return Settings{Step: 1e-6, Tol: 1e-5}
}

// Result holds both gradients of one check.
type Result struct {
	Fx      float64
	Reverse []float64
	Numeric []float64
	MaxErr  float64 // Largest scaled error over all components.
	Worst   int     // Component with the largest scaled error.
}

// Check evaluates f at x on s and compares its reverse-mode gradient with
// a central finite-difference gradient. Every evaluation runs in a nested
// scope, so s is left as it was found.
//
// A non-nil error wraps ErrMismatch and names the first failing component.
func Check(s *autodiff.Stack, f autodiff.Func, x []float64, set *Settings) (Result, error) {
	cfg := DefaultSettings()
	if set != nil {
		cfg = *set
	}

	fx, rev := autodiff.GradientOf(s, f, x)
	value := func(p []float64) float64 {
		var v float64
		s.Nested(func() {
			v = f(s, s.NewVars(p)).Val()
		})
		return v
	}
	num := fd.Gradient(nil, value, x, &fd.Settings{
		Formula:     fd.Central,
		Step:        cfg.Step,
		OriginKnown: true,
		OriginValue: fx,
	})

	res := Result{Fx: fx, Reverse: rev, Numeric: num}
	var first error
	for i := range rev {
		e := math.Abs(rev[i]-num[i]) / (1 + math.Abs(num[i]))
		if math.IsNaN(e) {
			e = math.Inf(1)
		}
		if e > res.MaxErr || i == 0 {
			res.MaxErr, res.Worst = e, i
		}
		if e > cfg.Tol && first == nil {
			first = fmt.Errorf("component %d: reverse %g, numeric %g: %w", i, rev[i], num[i], ErrMismatch)
		}
	}
	return res, first
}

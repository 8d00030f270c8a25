// Package optim implements first-order optimizers over scalar parameters.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize: a driver loop evaluating gradients on an autodiff stack
//
// Example usage:
//
//	s := autodiff.NewStack()
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.05})
//
//	x := []float64{1, 1}
//	res, err := optim.Minimize(ctx, s, rosenbrock, x, opt, optim.Options{MaxSteps: 2000})
package optim

import (
	"errors"
	"fmt"
)

// ErrNotFinite reports a NaN or infinite objective or gradient.
var ErrNotFinite = errors.New("optim: objective or gradient not finite")

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update parameters in place based on gradients of the objective
// being minimized.
type Optimizer interface {
	// Step applies one update to params given grad, both of the same length.
	Step(params, grad []float64)

	// Reset clears accumulated state such as momentum buffers.
	Reset()

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// checkLen panics when params and grad disagree in length.
func checkLen(params, grad []float64) {
	if len(params) != len(grad) {
		panic(fmt.Sprintf("optim: %d parameters with %d gradient components", len(params), len(grad)))
	}
}

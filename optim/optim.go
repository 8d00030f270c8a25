// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"context"

	"github.com/born-ml/revad/autodiff"
	"github.com/born-ml/revad/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// ErrNotFinite reports a NaN or infinite objective or gradient.
var ErrNotFinite = optim.ErrNotFinite

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Driver loop

// Options control a Minimize run.
type Options = optim.Options

// Result is the outcome of a Minimize run.
type Result = optim.Result

// Minimize runs opt on f starting from x0, evaluating each gradient in a
// nested scope of s. x0 is not modified.
func Minimize(ctx context.Context, s *autodiff.Stack, f autodiff.Func, x0 []float64, opt Optimizer, o Options) (Result, error) {
	return optim.Minimize(ctx, s, f, x0, opt, o)
}

// Negate returns -f, turning a maximization into a minimization.
func Negate(f autodiff.Func) autodiff.Func {
	return optim.Negate(f)
}

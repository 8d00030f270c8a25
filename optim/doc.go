// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order optimizers driven by reverse-mode
// gradients.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize: a loop that evaluates gradients on an autodiff stack
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/revad/autodiff"
//	    "github.com/born-ml/revad/optim"
//	)
//
//	func main() {
//	    s := autodiff.NewStack()
//	    rosenbrock := func(s *autodiff.Stack, v []autodiff.Var) autodiff.Var {
//	        x, y := v[0], v[1]
//	        return s.Add(s.Square(s.FSub(1, x)), s.MulF(s.Square(s.Sub(y, s.Square(x))), 100))
//	    }
//
//	    res, err := optim.Minimize(ctx, s, rosenbrock, []float64{-1, 1},
//	        optim.NewAdam(optim.AdamConfig{LR: 0.01}),
//	        optim.Options{MaxSteps: 5000, GradTol: 1e-6})
//	}
//
// Every step runs in a nested scope of the stack, so memory stays flat no
// matter how many steps are taken.
//
// # Manual Loop
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//	for range steps {
//	    _, grad := autodiff.GradientOf(s, f, x)
//	    opt.Step(x, grad)
//	}
package optim

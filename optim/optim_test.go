// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"context"
	"fmt"

	"github.com/born-ml/revad/autodiff"
	"github.com/born-ml/revad/optim"
)

func Example_minimize() {
	s := autodiff.NewStack()
	// (x-3)² + (y+1)²
	f := func(s *autodiff.Stack, v []autodiff.Var) autodiff.Var {
		return s.Add(s.Square(s.SubF(v[0], 3)), s.Square(s.AddF(v[1], 1)))
	}

	res, err := optim.Minimize(context.Background(), s, f, []float64{0, 0},
		optim.NewSGD(optim.SGDConfig{LR: 0.25}), optim.Options{GradTol: 1e-9})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.4f %.4f %t\n", res.X[0], res.X[1], res.Converged)
	// Output: 3.0000 -1.0000 true
}

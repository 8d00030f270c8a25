// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar reverse-mode automatic differentiation.
//
// Expressions are built on a Stack through Var handles. A backward pass from
// an output fills in the adjoint of every node it depends on. Nested scopes
// reclaim the memory of independent passes so that long-running loops, such
// as an optimizer or a sampler evaluating a log density repeatedly, run in
// bounded memory.
//
// Example:
//
//	import "github.com/born-ml/revad/autodiff"
//
//	func main() {
//	    s := autodiff.NewStack()
//	    x1, x2 := s.NewVar(2), s.NewVar(3)
//
//	    // y = x1*x2 + sin(x1)
//	    y := s.Add(s.Mul(x1, x2), s.Sin(x1))
//
//	    grad := s.Gradient(y, []autodiff.Var{x1, x2})
//	    fmt.Println(y.Val(), grad) // 6.909297 [2.583853 2]
//	}
//
// Misuse, such as recovering memory while a nested scope is open or using a
// handle after its scope was recovered, panics with an error wrapping one of
// the Err values below.
package autodiff

import (
	"context"
	"log/slog"

	"github.com/born-ml/revad/internal/arena"
	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/parallel"
)

// Stack is a reverse-mode differentiation context.
type Stack = autodiff.Stack

// Var is a handle to a node on a Stack.
type Var = autodiff.Var

// Option configures a Stack.
type Option = autodiff.Option

// Stats describes the memory held by a stack.
type Stats = autodiff.Stats

// Tape records node construction order.
type Tape = autodiff.Tape

// Chainer is the backward rule of a user-defined node.
type Chainer = autodiff.Chainer

// ChainFunc adapts a function to Chainer.
type ChainFunc = autodiff.ChainFunc

// Func is a scalar function of independent variables.
type Func = autodiff.Func

// VectorFunc is a vector-valued function of independent variables.
type VectorFunc = autodiff.VectorFunc

// ParallelConfig controls how BatchGradient splits its points.
type ParallelConfig = parallel.Config

// Misuse errors.
var (
	ErrNestedActive  = autodiff.ErrNestedActive
	ErrNoNested      = autodiff.ErrNoNested
	ErrStaleVar      = autodiff.ErrStaleVar
	ErrForeignVar    = autodiff.ErrForeignVar
	ErrUninitialized = autodiff.ErrUninitialized
	ErrOutsideScope  = autodiff.ErrOutsideScope
	ErrLength        = autodiff.ErrLength
	ErrExhausted     = arena.ErrExhausted
)

// NewStack creates an empty differentiation context.
func NewStack(opts ...Option) *Stack {
	return autodiff.NewStack(opts...)
}

// WithBlockShift sets arena blocks to 1<<shift elements. Shifts outside
// [1, 24] fall back to the default of 12.
func WithBlockShift(shift uint) Option {
	return autodiff.WithBlockShift(shift)
}

// WithMaxBlocks bounds every arena of a stack to n blocks.
func WithMaxBlocks(n int) Option {
	return autodiff.WithMaxBlocks(n)
}

// WithLogger sets the logger used for arena and scope events.
func WithLogger(l *slog.Logger) Option {
	return autodiff.WithLogger(l)
}

// WithName attaches a name reported in logs and metrics.
func WithName(name string) Option {
	return autodiff.WithName(name)
}

// WithObserver registers f to receive a stack's statistics whenever its
// memory is freed, including the per-worker stacks of BatchGradient and
// ParallelHessian.
func WithObserver(f func(Stats)) Option {
	return autodiff.WithObserver(f)
}

// Vals returns the values of vs.
func Vals(vs []Var) []float64 {
	return autodiff.Vals(vs)
}

// Adjs returns the adjoints of vs.
func Adjs(vs []Var) []float64 {
	return autodiff.Adjs(vs)
}

// GradientOf evaluates f at x in a nested scope of s and returns f(x) and
// its gradient.
func GradientOf(s *Stack, f Func, x []float64) (float64, []float64) {
	return autodiff.GradientOf(s, f, x)
}

// JacobianOf evaluates f at x in a nested scope of s and returns f(x) and
// its Jacobian.
func JacobianOf(s *Stack, f VectorFunc, x []float64) ([]float64, [][]float64) {
	return autodiff.JacobianOf(s, f, x)
}

// FiniteDiffHessian returns f(x), its gradient and a Hessian obtained by
// differencing gradients.
func FiniteDiffHessian(s *Stack, f Func, x []float64) (float64, []float64, [][]float64) {
	return autodiff.FiniteDiffHessian(s, f, x)
}

// ParallelHessian is FiniteDiffHessian with the rows spread over workers
// that each own a stack.
func ParallelHessian(f Func, x []float64, cfg ParallelConfig, opts ...Option) (float64, []float64, [][]float64) {
	return autodiff.ParallelHessian(f, x, cfg, opts...)
}

// DefaultParallelConfig returns worker settings based on CPU count.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// BatchGradient evaluates f and its gradient at every point, spreading the
// points over workers that each own a stack.
func BatchGradient(ctx context.Context, f Func, points [][]float64, cfg ParallelConfig, opts ...Option) ([]float64, [][]float64, error) {
	return autodiff.BatchGradient(ctx, f, points, cfg, opts...)
}

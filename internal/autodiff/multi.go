package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/revad/internal/autodiff/ops"
)

// Chainer is the backward rule of a user-defined node.
//
// Chain is called once per backward pass, after every node that depends on
// self has chained. It reads self.Adj() and must only add to the adjoints
// of the operands it captured, via AddAdj.
type Chainer interface {
	Chain(self Var)
}

// ChainFunc adapts a function to Chainer.
type ChainFunc func(self Var)

// Chain calls f(self).
func (f ChainFunc) Chain(self Var) { f(self) }

// NewCustom creates a node with value val whose backward rule is c.
// Operands captured by c must have been created on s before this call.
func (s *Stack) NewCustom(val float64, c Chainer) Var {
	id, n := s.push(val, ops.Custom, formCustom)
	n.span.Off = uint32(len(s.custom))
	s.custom = append(s.custom, c)
	return s.handle(id)
}

// multi allocates a multi-operand node and copies xs into its operand list.
func (s *Stack) multi(k ops.Kind, val float64, xs ...[]Var) (uint32, *node) {
	total := 0
	for _, x := range xs {
		total += len(x)
	}
	for _, x := range xs {
		for _, v := range x {
			s.resolve(v)
		}
	}
	span := s.operands.AllocN(total)
	ids := s.operands.Slice(span)
	j := 0
	for _, x := range xs {
		for _, v := range x {
			ids[j] = v.id
			j++
		}
	}
	id, n := s.push(val, k, formMulti)
	n.span = span
	return id, n
}

// Sum returns the sum of xs as a single node. An empty sum is a new constant 0.
func (s *Stack) Sum(xs []Var) Var {
	if len(xs) == 0 {
		return s.NewVar(0)
	}
	total := 0.0
	for _, x := range xs {
		total += s.resolve(x).val
	}
	id, _ := s.multi(ops.Sum, total, xs)
	return s.handle(id)
}

// Dot returns the inner product of xs and ys.
func (s *Stack) Dot(xs, ys []Var) Var {
	if len(xs) != len(ys) {
		panic(fmt.Errorf("dot of %d and %d operands: %w", len(xs), len(ys), ErrLength))
	}
	total := 0.0
	for i := range xs {
		total += s.resolve(xs[i]).val * s.resolve(ys[i]).val
	}
	id, _ := s.multi(ops.Dot, total, xs, ys)
	return s.handle(id)
}

// DotF returns the inner product of xs with the constants cs.
func (s *Stack) DotF(xs []Var, cs []float64) Var {
	if len(xs) != len(cs) {
		panic(fmt.Errorf("dot of %d and %d operands: %w", len(xs), len(cs), ErrLength))
	}
	total := 0.0
	for i := range xs {
		total += s.resolve(xs[i]).val * cs[i]
	}
	return s.Precomputed(total, xs, cs)
}

// DotSelf returns the sum of squares of xs.
func (s *Stack) DotSelf(xs []Var) Var {
	total := 0.0
	for _, x := range xs {
		v := s.resolve(x).val
		total += v * v
	}
	id, _ := s.multi(ops.DotSelf, total, xs)
	return s.handle(id)
}

// Precomputed creates a node with value val whose partial derivative with
// respect to operands[i] is partials[i]. The partials are copied.
func (s *Stack) Precomputed(val float64, operands []Var, partials []float64) Var {
	if len(operands) != len(partials) {
		panic(fmt.Errorf("%d operands with %d partials: %w", len(operands), len(partials), ErrLength))
	}
	pspan := s.partials.AllocN(len(partials))
	copy(s.partials.Slice(pspan), partials)
	id, n := s.multi(ops.Precomputed, val, operands)
	n.pspan = pspan
	return s.handle(id)
}

// Fma returns a*b + c computed with a single rounding.
func (s *Stack) Fma(a, b, c Var) Var {
	va, vb, vc := a.Val(), b.Val(), c.Val()
	return s.Precomputed(math.FMA(va, vb, vc), []Var{a, b, c}, []float64{vb, va, 1})
}

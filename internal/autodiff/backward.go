package autodiff

import "fmt"

// Grad runs a backward pass from out.
//
// Algorithm:
//  1. Zero the adjoint of every node created since the current scope began
//  2. Seed out's adjoint with 1
//  3. Walk the tape from out's position back to the scope start, calling
//     each node's chain rule
//
// Reverse creation order guarantees that a node chains only after every node
// depending on it has chained, so its adjoint is complete when propagated.
// Afterwards each node's adjoint holds d(out)/d(node).
//
// out must have been created in the current scope; an output from an
// enclosing scope panics with ErrOutsideScope.
func (s *Stack) Grad(out Var) {
	s.sweep(out, nil)
}

// Gradient runs a backward pass from out and returns d(out)/d(wrt[i]).
//
// The adjoints of wrt are zeroed before the pass, so inputs created in an
// enclosing scope do not carry adjoints left by earlier passes.
func (s *Stack) Gradient(out Var, wrt []Var) []float64 {
	s.sweep(out, wrt)
	return Adjs(wrt)
}

// Jacobian returns J[i][j] = d(ys[i])/d(xs[j]), one backward pass per output.
func (s *Stack) Jacobian(ys, xs []Var) [][]float64 {
	jac := make([][]float64, len(ys))
	for i, y := range ys {
		jac[i] = s.Gradient(y, xs)
	}
	return jac
}

func (s *Stack) sweep(out Var, wrt []Var) {
	n := s.resolve(out)
	tapeStart, nodeStart := s.scopeStart()
	if int(out.id) < nodeStart {
		panic(fmt.Errorf("node %d precedes scope start %d: %w", out.id, nodeStart, ErrOutsideScope))
	}

	s.zeroFrom(nodeStart)
	for _, v := range wrt {
		s.resolve(v).adj = 0
	}
	n.adj = 1

	pos := s.tape.Search(out.id)
	for i := pos; i >= tapeStart; i-- {
		id := s.tape.At(i)
		s.chain(id, s.nodes.At(id))
	}
	s.sweeps++
}

// SetZeroAllAdjoints zeroes the adjoint of every node on the stack.
func (s *Stack) SetZeroAllAdjoints() {
	s.zeroFrom(0)
}

// SetZeroAllAdjointsNested zeroes the adjoints of nodes created in the
// current nested scope. It panics with ErrNoNested outside a nested scope.
func (s *Stack) SetZeroAllAdjointsNested() {
	if len(s.scopes) == 0 {
		panic(ErrNoNested)
	}
	_, nodeStart := s.scopeStart()
	s.zeroFrom(nodeStart)
}

func (s *Stack) zeroFrom(start int) {
	for i := start; i < s.nodes.Len(); i++ {
		s.nodes.At(uint32(i)).adj = 0
	}
}

// scopeStart returns the tape position and node index where the current
// scope began; zero when no nested scope is open.
func (s *Stack) scopeStart() (tape, nodes int) {
	if len(s.scopes) == 0 {
		return 0, 0
	}
	top := s.scopes[len(s.scopes)-1]
	return top.tape, top.nodes.Index()
}

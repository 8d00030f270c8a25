package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/revad/internal/autodiff"
)

// TestNested_IndependentPasses checks that successive nested scopes do not
// interfere: d(x*x)/dx at 5 and then at 7.
func TestNested_IndependentPasses(t *testing.T) {
	s := autodiff.NewStack()

	var got []float64
	for _, v := range []float64{5, 7} {
		s.StartNested()
		x := s.NewVar(v)
		y := s.Mul(x, x)
		got = append(got, s.Gradient(y, []autodiff.Var{x})[0])
		s.RecoverMemoryNested()
	}

	assert.Equal(t, []float64{10, 14}, got)
	assert.Equal(t, 0, s.Tape().Len())
	assert.True(t, s.EmptyNested())
}

// TestNested_OuterInput differentiates nested outputs with respect to an
// input created before the scope.
func TestNested_OuterInput(t *testing.T) {
	s := autodiff.NewStack()
	x := s.NewVar(3)
	outer := s.MulF(x, 10)

	for i := range 3 {
		s.Nested(func() {
			y := s.Mul(x, x)
			assert.Equal(t, 6.0, s.Gradient(y, []autodiff.Var{x})[0], "pass %d", i)
		})
	}

	// Outer nodes survive, and a pass at the outer level still works.
	assert.Equal(t, 30.0, outer.Val())
	assert.Equal(t, 10.0, s.Gradient(outer, []autodiff.Var{x})[0])
}

// TestNested_BoundedMemory checks that a loop of nested passes reuses the
// same arena blocks.
func TestNested_BoundedMemory(t *testing.T) {
	s := autodiff.NewStack(autodiff.WithBlockShift(4))
	x := s.NewVar(0.3)

	pass := func() {
		s.Nested(func() {
			acc := x
			for range 100 {
				acc = s.Add(s.Sin(acc), s.Sum([]autodiff.Var{acc, x}))
			}
			s.Grad(acc)
		})
	}

	pass()
	first := s.Stats()
	for range 500 {
		pass()
	}
	last := s.Stats()

	assert.Equal(t, first.Nodes.Blocks, last.Nodes.Blocks)
	assert.Equal(t, first.Operands.Blocks, last.Operands.Blocks)
	assert.Equal(t, first.Bytes(), last.Bytes())
	assert.Equal(t, 1, last.Tape)
	assert.Equal(t, uint64(501), last.Recoveries)
}

// TestNested_Depth checks nesting bookkeeping.
func TestNested_Depth(t *testing.T) {
	s := autodiff.NewStack()
	assert.Equal(t, 0, s.NestedDepth())

	s.StartNested()
	s.StartNested()
	assert.Equal(t, 2, s.NestedDepth())
	assert.False(t, s.EmptyNested())

	s.RecoverMemoryNested()
	s.RecoverMemoryNested()
	assert.True(t, s.EmptyNested())
}

// TestNested_InnerScopesOnly checks that recovering an inner scope keeps the
// nodes of the enclosing one.
func TestNested_InnerScopesOnly(t *testing.T) {
	s := autodiff.NewStack()

	s.StartNested()
	a := s.NewVar(2)
	b := s.Square(a)

	s.StartNested()
	inner := s.Mul(a, b)
	assert.Equal(t, 8.0, inner.Val())
	s.RecoverMemoryNested()

	assert.Equal(t, 4.0, b.Val())
	assert.Equal(t, 4.0, s.Gradient(b, []autodiff.Var{a})[0])
	assert.ErrorIs(t, panicErr(func() { inner.Val() }), autodiff.ErrStaleVar)

	s.RecoverMemoryNested()
}

// TestNested_StaleHandles checks that handles die with their scope, also
// when the slot has been reused.
func TestNested_StaleHandles(t *testing.T) {
	s := autodiff.NewStack()

	s.StartNested()
	x := s.NewVar(1)
	s.RecoverMemoryNested()

	assert.ErrorIs(t, panicErr(func() { x.Val() }), autodiff.ErrStaleVar)

	// The new variable occupies x's old slot.
	y := s.NewVar(2)
	assert.Equal(t, 2.0, y.Val())
	assert.ErrorIs(t, panicErr(func() { x.Val() }), autodiff.ErrStaleVar)
	assert.ErrorIs(t, panicErr(func() { s.Add(x, y) }), autodiff.ErrStaleVar)

	s.RecoverMemory()
	assert.ErrorIs(t, panicErr(func() { y.Adj() }), autodiff.ErrStaleVar)
}

// TestNested_OutputOutsideScope checks that an output from an enclosing
// scope cannot be differentiated inside a nested one.
func TestNested_OutputOutsideScope(t *testing.T) {
	s := autodiff.NewStack()
	x := s.NewVar(2)
	y := s.Square(x)

	s.StartNested()
	assert.ErrorIs(t, panicErr(func() { s.Grad(y) }), autodiff.ErrOutsideScope)
	s.RecoverMemoryNested()

	assert.Equal(t, 4.0, s.Gradient(y, []autodiff.Var{x})[0])
}

// TestNested_SetZeroAdjoints checks zeroing limited to the current scope.
func TestNested_SetZeroAdjoints(t *testing.T) {
	s := autodiff.NewStack()
	x := s.NewVar(2)
	s.Grad(s.Square(x))
	require.Equal(t, 4.0, x.Adj())

	s.StartNested()
	z := s.NewVar(1)
	w := s.MulF(z, 3)
	s.Grad(w)
	require.Equal(t, 3.0, z.Adj())

	s.SetZeroAllAdjointsNested()
	assert.Equal(t, 0.0, z.Adj())
	assert.Equal(t, 4.0, x.Adj())
	s.RecoverMemoryNested()
}

// TestRecoverMemory_Misuse checks the scope preconditions of recovery.
func TestRecoverMemory_Misuse(t *testing.T) {
	s := autodiff.NewStack()

	assert.ErrorIs(t, panicErr(s.RecoverMemoryNested), autodiff.ErrNoNested)
	assert.ErrorIs(t, s.TryRecoverMemoryNested(), autodiff.ErrNoNested)

	s.StartNested()
	assert.ErrorIs(t, panicErr(s.RecoverMemory), autodiff.ErrNestedActive)
	assert.ErrorIs(t, s.TryRecoverMemory(), autodiff.ErrNestedActive)
	assert.ErrorIs(t, panicErr(s.FreeMemory), autodiff.ErrNestedActive)
	assert.Equal(t, 1, s.NestedDepth())

	require.NoError(t, s.TryRecoverMemoryNested())
	require.NoError(t, s.TryRecoverMemory())
}

// TestNested_UnwindsOnPanic checks that Nested recovers its scope, and any
// scope left open inside it, when the body panics.
func TestNested_UnwindsOnPanic(t *testing.T) {
	s := autodiff.NewStack()
	s.NewVar(1)

	assert.Panics(t, func() {
		s.Nested(func() {
			s.NewVar(2)
			s.StartNested()
			s.NewVar(3)
			panic("boom")
		})
	})

	assert.Equal(t, 0, s.NestedDepth())
	assert.Equal(t, 1, s.Tape().Len())
}

// TestFreeMemory checks that a freed stack is reusable.
func TestFreeMemory(t *testing.T) {
	s := autodiff.NewStack(autodiff.WithBlockShift(2))
	xs := s.NewVars(make([]float64, 64))
	s.Grad(s.Sum(xs))
	require.Greater(t, s.Stats().Nodes.Blocks, 1)

	s.FreeMemory()

	st := s.Stats()
	assert.Equal(t, 0, st.Tape)
	assert.Equal(t, 1, st.Nodes.Blocks)
	assert.Equal(t, 0, st.Nodes.Used)

	x := s.NewVar(4)
	y := s.Sqrt(x)
	assert.Equal(t, 0.25, s.Gradient(y, []autodiff.Var{x})[0])
}

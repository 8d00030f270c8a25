package autodiff

import "strconv"

// Var is a handle to a node on a Stack.
//
// Handles are values: copying one does not allocate and many handles may
// refer to the same node. A handle does not own its node; the node lives
// until the scope that created it is recovered, after which any use of the
// handle panics with ErrStaleVar.
//
// The zero Var is uninitialized.
type Var struct {
	s     *Stack
	id    uint32
	epoch uint64
}

// IsUninitialized reports whether v is the zero Var.
func (v Var) IsUninitialized() bool {
	return v.s == nil
}

// Stack returns the stack v belongs to, or nil for the zero Var.
func (v Var) Stack() *Stack {
	return v.s
}

// Val returns the node's value.
func (v Var) Val() float64 {
	return v.stack().resolve(v).val
}

// Adj returns the node's adjoint as left by the last backward pass.
func (v Var) Adj() float64 {
	return v.stack().resolve(v).adj
}

// AddAdj adds d to the node's adjoint.
// It is meant for Chainer implementations during a backward pass.
func (v Var) AddAdj(d float64) {
	v.stack().resolve(v).adj += d
}

// Grad runs a backward pass from v and returns the adjoints of wrt.
func (v Var) Grad(wrt []Var) []float64 {
	return v.stack().Gradient(v, wrt)
}

// String formats the value, or "uninitialized" for the zero Var.
func (v Var) String() string {
	if v.s == nil {
		return "uninitialized"
	}
	return strconv.FormatFloat(v.Val(), 'g', -1, 64)
}

func (v Var) stack() *Stack {
	if v.s == nil {
		panic(ErrUninitialized)
	}
	return v.s
}

// Add returns v + w.
func (v Var) Add(w Var) Var { return v.stack().Add(v, w) }

// Sub returns v - w.
func (v Var) Sub(w Var) Var { return v.stack().Sub(v, w) }

// Mul returns v * w.
func (v Var) Mul(w Var) Var { return v.stack().Mul(v, w) }

// Div returns v / w.
func (v Var) Div(w Var) Var { return v.stack().Div(v, w) }

// Pow returns v raised to w.
func (v Var) Pow(w Var) Var { return v.stack().Pow(v, w) }

// AddF returns v + c.
func (v Var) AddF(c float64) Var { return v.stack().AddF(v, c) }

// SubF returns v - c.
func (v Var) SubF(c float64) Var { return v.stack().SubF(v, c) }

// MulF returns v * c.
func (v Var) MulF(c float64) Var { return v.stack().MulF(v, c) }

// DivF returns v / c.
func (v Var) DivF(c float64) Var { return v.stack().DivF(v, c) }

// PowF returns v raised to c.
func (v Var) PowF(c float64) Var { return v.stack().PowF(v, c) }

// Neg returns -v.
func (v Var) Neg() Var { return v.stack().Neg(v) }

// Comparisons look at values only and never touch the graph. As with plain
// float64 comparison, a NaN operand makes every comparison false except Ne.

// Lt reports v < w.
func (v Var) Lt(w Var) bool { return v.Val() < w.Val() }

// Le reports v <= w.
func (v Var) Le(w Var) bool { return v.Val() <= w.Val() }

// Gt reports v > w.
func (v Var) Gt(w Var) bool { return v.Val() > w.Val() }

// Ge reports v >= w.
func (v Var) Ge(w Var) bool { return v.Val() >= w.Val() }

// Eq reports v == w by value.
func (v Var) Eq(w Var) bool { return v.Val() == w.Val() }

// Ne reports v != w by value.
func (v Var) Ne(w Var) bool { return v.Val() != w.Val() }

// LtF reports v < c.
func (v Var) LtF(c float64) bool { return v.Val() < c }

// LeF reports v <= c.
func (v Var) LeF(c float64) bool { return v.Val() <= c }

// GtF reports v > c.
func (v Var) GtF(c float64) bool { return v.Val() > c }

// GeF reports v >= c.
func (v Var) GeF(c float64) bool { return v.Val() >= c }

// EqF reports v == c.
func (v Var) EqF(c float64) bool { return v.Val() == c }

// NeF reports v != c.
func (v Var) NeF(c float64) bool { return v.Val() != c }

// Vals returns the values of vs.
func Vals(vs []Var) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.Val()
	}
	return out
}

// Adjs returns the adjoints of vs.
func Adjs(vs []Var) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.Adj()
	}
	return out
}

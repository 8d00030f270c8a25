package autodiff

import (
	"math"

	"github.com/born-ml/revad/internal/autodiff/ops"
)

// NewVar creates an independent variable: a leaf node with no operands.
func (s *Stack) NewVar(x float64) Var {
	id, _ := s.push(x, ops.Leaf, formLeaf)
	return s.handle(id)
}

// NewVars creates one independent variable per element of xs.
func (s *Stack) NewVars(xs []float64) []Var {
	vs := make([]Var, len(xs))
	for i, x := range xs {
		vs[i] = s.NewVar(x)
	}
	return vs
}

// Unary applies a unary operation to a.
func (s *Stack) Unary(k ops.Kind, a Var) Var {
	na := s.resolve(a)
	id, n := s.push(ops.Eval1(k, na.val), k, formUnary)
	n.a = a.id
	return s.handle(id)
}

// Binary applies a binary operation to two variables.
func (s *Stack) Binary(k ops.Kind, a, b Var) Var {
	na, nb := s.resolve(a), s.resolve(b)
	id, n := s.push(ops.Eval2(k, na.val, nb.val), k, formVV)
	n.a, n.b = a.id, b.id
	return s.handle(id)
}

// BinaryVF applies a binary operation to a variable and a constant right operand.
func (s *Stack) BinaryVF(k ops.Kind, a Var, c float64) Var {
	na := s.resolve(a)
	id, n := s.push(ops.Eval2(k, na.val, c), k, formVD)
	n.a, n.c = a.id, c
	return s.handle(id)
}

// BinaryFV applies a binary operation to a constant left operand and a variable.
func (s *Stack) BinaryFV(k ops.Kind, c float64, b Var) Var {
	nb := s.resolve(b)
	id, n := s.push(ops.Eval2(k, c, nb.val), k, formDV)
	n.b, n.c = b.id, c
	return s.handle(id)
}

// Arithmetic. The F suffix marks a constant right operand, the F prefix a
// constant left operand. Every call allocates a node, including the
// algebraically trivial ones such as AddF(a, 0).

// Add returns a + b.
func (s *Stack) Add(a, b Var) Var { return s.Binary(ops.Add, a, b) }

// AddF returns a + c.
func (s *Stack) AddF(a Var, c float64) Var { return s.BinaryVF(ops.Add, a, c) }

// FAdd returns c + b.
func (s *Stack) FAdd(c float64, b Var) Var { return s.BinaryFV(ops.Add, c, b) }

// Sub returns a - b.
func (s *Stack) Sub(a, b Var) Var { return s.Binary(ops.Sub, a, b) }

// SubF returns a - c.
func (s *Stack) SubF(a Var, c float64) Var { return s.BinaryVF(ops.Sub, a, c) }

// FSub returns c - b.
func (s *Stack) FSub(c float64, b Var) Var { return s.BinaryFV(ops.Sub, c, b) }

// Mul returns a * b.
func (s *Stack) Mul(a, b Var) Var { return s.Binary(ops.Mul, a, b) }

// MulF returns a * c.
func (s *Stack) MulF(a Var, c float64) Var { return s.BinaryVF(ops.Mul, a, c) }

// FMul returns c * b.
func (s *Stack) FMul(c float64, b Var) Var { return s.BinaryFV(ops.Mul, c, b) }

// Div returns a / b.
func (s *Stack) Div(a, b Var) Var { return s.Binary(ops.Div, a, b) }

// DivF returns a / c.
func (s *Stack) DivF(a Var, c float64) Var { return s.BinaryVF(ops.Div, a, c) }

// FDiv returns c / b.
func (s *Stack) FDiv(c float64, b Var) Var { return s.BinaryFV(ops.Div, c, b) }

// Neg returns -a.
func (s *Stack) Neg(a Var) Var { return s.Unary(ops.Neg, a) }

// Pow returns a raised to b.
func (s *Stack) Pow(a, b Var) Var { return s.Binary(ops.Pow, a, b) }

// PowF returns a raised to c. Exponents 0.5 and 2 build sqrt and square
// nodes; exponent 1 returns a itself.
func (s *Stack) PowF(a Var, c float64) Var {
	switch c {
	case 0.5:
		return s.Sqrt(a)
	case 1:
		s.resolve(a)
		return a
	case 2:
		return s.Square(a)
	}
	return s.BinaryVF(ops.Pow, a, c)
}

// FPow returns c raised to b.
func (s *Stack) FPow(c float64, b Var) Var { return s.BinaryFV(ops.Pow, c, b) }

// Atan2 returns atan2(a, b).
func (s *Stack) Atan2(a, b Var) Var { return s.Binary(ops.Atan2, a, b) }

// Atan2F returns atan2(a, c).
func (s *Stack) Atan2F(a Var, c float64) Var { return s.BinaryVF(ops.Atan2, a, c) }

// FAtan2 returns atan2(c, b).
func (s *Stack) FAtan2(c float64, b Var) Var { return s.BinaryFV(ops.Atan2, c, b) }

// Hypot returns sqrt(a² + b²).
func (s *Stack) Hypot(a, b Var) Var { return s.Binary(ops.Hypot, a, b) }

// HypotF returns sqrt(a² + c²).
func (s *Stack) HypotF(a Var, c float64) Var { return s.BinaryVF(ops.Hypot, a, c) }

// FHypot returns sqrt(c² + b²).
func (s *Stack) FHypot(c float64, b Var) Var { return s.BinaryFV(ops.Hypot, c, b) }

// Fmod returns the floating-point remainder of a / b.
func (s *Stack) Fmod(a, b Var) Var { return s.Binary(ops.Fmod, a, b) }

// FmodF returns the floating-point remainder of a / c.
func (s *Stack) FmodF(a Var, c float64) Var { return s.BinaryVF(ops.Fmod, a, c) }

// FFmod returns the floating-point remainder of c / b.
func (s *Stack) FFmod(c float64, b Var) Var { return s.BinaryFV(ops.Fmod, c, b) }

// LogSumExp returns log(exp(a) + exp(b)).
func (s *Stack) LogSumExp(a, b Var) Var { return s.Binary(ops.LogSumExp, a, b) }

// LogSumExpF returns log(exp(a) + exp(c)).
func (s *Stack) LogSumExpF(a Var, c float64) Var { return s.BinaryVF(ops.LogSumExp, a, c) }

// FLogSumExp returns log(exp(c) + exp(b)).
func (s *Stack) FLogSumExp(c float64, b Var) Var { return s.BinaryFV(ops.LogSumExp, c, b) }

// Fdim returns a - b when a > b and a new constant 0 otherwise.
// A NaN operand yields a NaN node with NaN partials.
func (s *Stack) Fdim(a, b Var) Var {
	va, vb := a.Val(), b.Val()
	if !math.IsNaN(va) && !math.IsNaN(vb) && va <= vb {
		return s.NewVar(0)
	}
	return s.Binary(ops.Fdim, a, b)
}

// FdimF returns a - c when a > c and a new constant 0 otherwise.
func (s *Stack) FdimF(a Var, c float64) Var {
	va := a.Val()
	if !math.IsNaN(va) && !math.IsNaN(c) && va <= c {
		return s.NewVar(0)
	}
	return s.BinaryVF(ops.Fdim, a, c)
}

// FFdim returns c - b when c > b and a new constant 0 otherwise.
func (s *Stack) FFdim(c float64, b Var) Var {
	vb := b.Val()
	if !math.IsNaN(c) && !math.IsNaN(vb) && c <= vb {
		return s.NewVar(0)
	}
	return s.BinaryFV(ops.Fdim, c, b)
}

// Fmax returns the larger operand without allocating: the result aliases a
// or b. Ties return b. A NaN operand is ignored; two NaN operands yield a
// new NaN node whose partials are NaN.
func (s *Stack) Fmax(a, b Var) Var {
	va, vb := a.Val(), b.Val()
	switch {
	case math.IsNaN(va):
		if math.IsNaN(vb) {
			return s.nanOf(a, b)
		}
		return b
	case math.IsNaN(vb):
		return a
	case va > vb:
		return a
	default:
		return b
	}
}

// FmaxF returns max(a, c). Ties return a; a larger c becomes a new constant.
func (s *Stack) FmaxF(a Var, c float64) Var {
	va := a.Val()
	switch {
	case math.IsNaN(va):
		if math.IsNaN(c) {
			return s.nanOf(a)
		}
		return s.NewVar(c)
	case math.IsNaN(c):
		return a
	case va >= c:
		return a
	default:
		return s.NewVar(c)
	}
}

// FFmax returns max(c, b). Ties return b.
func (s *Stack) FFmax(c float64, b Var) Var {
	vb := b.Val()
	switch {
	case math.IsNaN(c):
		if math.IsNaN(vb) {
			return s.nanOf(b)
		}
		return b
	case math.IsNaN(vb):
		return s.NewVar(c)
	case c > vb:
		return s.NewVar(c)
	default:
		return b
	}
}

// Fmin returns the smaller operand without allocating. Ties return b.
// NaN handling matches Fmax.
func (s *Stack) Fmin(a, b Var) Var {
	va, vb := a.Val(), b.Val()
	switch {
	case math.IsNaN(va):
		if math.IsNaN(vb) {
			return s.nanOf(a, b)
		}
		return b
	case math.IsNaN(vb):
		return a
	case va < vb:
		return a
	default:
		return b
	}
}

// FminF returns min(a, c). Ties return a.
func (s *Stack) FminF(a Var, c float64) Var {
	va := a.Val()
	switch {
	case math.IsNaN(va):
		if math.IsNaN(c) {
			return s.nanOf(a)
		}
		return s.NewVar(c)
	case math.IsNaN(c):
		return a
	case va <= c:
		return a
	default:
		return s.NewVar(c)
	}
}

// FFmin returns min(c, b). Ties return b.
func (s *Stack) FFmin(c float64, b Var) Var {
	vb := b.Val()
	switch {
	case math.IsNaN(c):
		if math.IsNaN(vb) {
			return s.nanOf(b)
		}
		return b
	case math.IsNaN(vb):
		return s.NewVar(c)
	case c < vb:
		return s.NewVar(c)
	default:
		return b
	}
}

// nanOf builds a NaN node depending on xs with NaN partials.
func (s *Stack) nanOf(xs ...Var) Var {
	ds := make([]float64, len(xs))
	for i := range ds {
		ds[i] = math.NaN()
	}
	return s.Precomputed(math.NaN(), xs, ds)
}

// Elementary functions.

// Abs returns |a|. The derivative at 0 is 0.
func (s *Stack) Abs(a Var) Var { return s.Unary(ops.Abs, a) }

// Fabs is Abs.
func (s *Stack) Fabs(a Var) Var { return s.Unary(ops.Abs, a) }

// Floor returns the largest integer not above a. Its derivative is 0.
func (s *Stack) Floor(a Var) Var { return s.Unary(ops.Floor, a) }

// Ceil returns the smallest integer not below a. Its derivative is 0.
func (s *Stack) Ceil(a Var) Var { return s.Unary(ops.Ceil, a) }

// Trunc returns the integer part of a. Its derivative is 0.
func (s *Stack) Trunc(a Var) Var { return s.Unary(ops.Trunc, a) }

// Round returns a rounded half away from zero. Its derivative is 0.
func (s *Stack) Round(a Var) Var { return s.Unary(ops.Round, a) }

// Sqrt returns the square root of a.
func (s *Stack) Sqrt(a Var) Var { return s.Unary(ops.Sqrt, a) }

// Cbrt returns the cube root of a.
func (s *Stack) Cbrt(a Var) Var { return s.Unary(ops.Cbrt, a) }

// Square returns a².
func (s *Stack) Square(a Var) Var { return s.Unary(ops.Square, a) }

// Exp returns e^a.
func (s *Stack) Exp(a Var) Var { return s.Unary(ops.Exp, a) }

// Exp2 returns 2^a.
func (s *Stack) Exp2(a Var) Var { return s.Unary(ops.Exp2, a) }

// Expm1 returns e^a - 1.
func (s *Stack) Expm1(a Var) Var { return s.Unary(ops.Expm1, a) }

// Log returns the natural logarithm of a.
func (s *Stack) Log(a Var) Var { return s.Unary(ops.Log, a) }

// Log2 returns the base-2 logarithm of a.
func (s *Stack) Log2(a Var) Var { return s.Unary(ops.Log2, a) }

// Log10 returns the base-10 logarithm of a.
func (s *Stack) Log10(a Var) Var { return s.Unary(ops.Log10, a) }

// Log1p returns log(1 + a).
func (s *Stack) Log1p(a Var) Var { return s.Unary(ops.Log1p, a) }

// Log1m returns log(1 - a).
func (s *Stack) Log1m(a Var) Var { return s.Unary(ops.Log1m, a) }

// Inv returns 1 / a.
func (s *Stack) Inv(a Var) Var { return s.Unary(ops.Inv, a) }

// InvSqrt returns 1 / sqrt(a).
func (s *Stack) InvSqrt(a Var) Var { return s.Unary(ops.InvSqrt, a) }

// InvSquare returns 1 / a².
func (s *Stack) InvSquare(a Var) Var { return s.Unary(ops.InvSquare, a) }

// InvLogit returns the logistic sigmoid of a.
func (s *Stack) InvLogit(a Var) Var { return s.Unary(ops.InvLogit, a) }

// Logit returns log(a / (1 - a)).
func (s *Stack) Logit(a Var) Var { return s.Unary(ops.Logit, a) }

// Log1pExp returns log(1 + e^a).
func (s *Stack) Log1pExp(a Var) Var { return s.Unary(ops.Log1pExp, a) }

// LogInvLogit returns log(inv_logit(a)).
func (s *Stack) LogInvLogit(a Var) Var { return s.Unary(ops.LogInvLogit, a) }

// Phi returns the standard normal cumulative distribution function at a.
func (s *Stack) Phi(a Var) Var { return s.Unary(ops.Phi, a) }

// Erf returns the error function of a.
func (s *Stack) Erf(a Var) Var { return s.Unary(ops.Erf, a) }

// Erfc returns the complementary error function of a.
func (s *Stack) Erfc(a Var) Var { return s.Unary(ops.Erfc, a) }

// Lgamma returns the log of the absolute gamma function of a.
func (s *Stack) Lgamma(a Var) Var { return s.Unary(ops.Lgamma, a) }

// Tgamma returns the gamma function of a.
func (s *Stack) Tgamma(a Var) Var { return s.Unary(ops.Tgamma, a) }

// Sin returns the sine of a.
func (s *Stack) Sin(a Var) Var { return s.Unary(ops.Sin, a) }

// Cos returns the cosine of a.
func (s *Stack) Cos(a Var) Var { return s.Unary(ops.Cos, a) }

// Tan returns the tangent of a.
func (s *Stack) Tan(a Var) Var { return s.Unary(ops.Tan, a) }

// Asin returns the arcsine of a.
func (s *Stack) Asin(a Var) Var { return s.Unary(ops.Asin, a) }

// Acos returns the arccosine of a.
func (s *Stack) Acos(a Var) Var { return s.Unary(ops.Acos, a) }

// Atan returns the arctangent of a.
func (s *Stack) Atan(a Var) Var { return s.Unary(ops.Atan, a) }

// Sinh returns the hyperbolic sine of a.
func (s *Stack) Sinh(a Var) Var { return s.Unary(ops.Sinh, a) }

// Cosh returns the hyperbolic cosine of a.
func (s *Stack) Cosh(a Var) Var { return s.Unary(ops.Cosh, a) }

// Tanh returns the hyperbolic tangent of a.
func (s *Stack) Tanh(a Var) Var { return s.Unary(ops.Tanh, a) }

// Asinh returns the inverse hyperbolic sine of a.
func (s *Stack) Asinh(a Var) Var { return s.Unary(ops.Asinh, a) }

// Acosh returns the inverse hyperbolic cosine of a.
func (s *Stack) Acosh(a Var) Var { return s.Unary(ops.Acosh, a) }

// Atanh returns the inverse hyperbolic tangent of a.
func (s *Stack) Atanh(a Var) Var { return s.Unary(ops.Atanh, a) }

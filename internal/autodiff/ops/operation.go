// Package ops defines the primitive operations a node can represent and their
// local derivative rules.
//
// A node's operation is a Kind tag rather than a Go type: the tape stores
// plain node records and dispatches on the tag during the backward pass.
// Each Kind has exactly one rule:
//   - unary kinds: Eval1 computes f(a), Partial1 computes df/da
//   - binary kinds: Eval2 computes f(a, b), PartialA and PartialB compute
//     df/da and df/db; Partial2 returns both
//   - multi-operand kinds (Sum, Dot, DotSelf, Precomputed) and Custom carry
//     their partials with the node and have no rule here
//
// Rules receive the operand values and the already computed result f so that
// derivatives expressible through f (exp, sqrt, tanh, ...) do not recompute it.
//
// Non-differentiable points follow fixed conventions:
//   - Abs: derivative 0 at a == 0
//   - Floor, Ceil, Trunc, Round: derivative 0 everywhere
//   - Abs and the rounding kinds return a NaN derivative for a NaN operand
//   - Pow: both partials are 0 when the base is 0
package ops

import "fmt"

// Kind identifies a primitive operation.
type Kind uint8

// Operand-free kinds.
const (
	Leaf Kind = iota // Independent variable or constant; no operands.
)

// Unary kinds.
const (
	Neg Kind = iota + 1
	Abs
	Floor
	Ceil
	Trunc
	Round
	Sqrt
	Cbrt
	Square
	Exp
	Exp2
	Expm1
	Log
	Log2
	Log10
	Log1p
	Log1m
	Inv
	InvSqrt
	InvSquare
	InvLogit
	Logit
	Log1pExp
	LogInvLogit
	Phi
	Erf
	Erfc
	Lgamma
	Tgamma
	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	Sinh
	Cosh
	Tanh
	Asinh
	Acosh
	Atanh

	lastUnary = Atanh
)

// Binary kinds.
const (
	Add Kind = lastUnary + 1 + iota
	Sub
	Mul
	Div
	Pow
	Atan2
	Hypot
	Fmod
	Fdim
	LogSumExp

	lastBinary = LogSumExp
)

// Multi-operand and user-defined kinds.
const (
	Sum Kind = lastBinary + 1 + iota
	Dot
	DotSelf
	Precomputed
	Custom

	numKinds = int(Custom) + 1
)

var kindNames = [numKinds]string{
	Leaf: "leaf",

	Neg: "neg", Abs: "abs", Floor: "floor", Ceil: "ceil", Trunc: "trunc", Round: "round",
	Sqrt: "sqrt", Cbrt: "cbrt", Square: "square",
	Exp: "exp", Exp2: "exp2", Expm1: "expm1",
	Log: "log", Log2: "log2", Log10: "log10", Log1p: "log1p", Log1m: "log1m",
	Inv: "inv", InvSqrt: "inv_sqrt", InvSquare: "inv_square",
	InvLogit: "inv_logit", Logit: "logit", Log1pExp: "log1p_exp", LogInvLogit: "log_inv_logit",
	Phi: "Phi", Erf: "erf", Erfc: "erfc", Lgamma: "lgamma", Tgamma: "tgamma",
	Sin: "sin", Cos: "cos", Tan: "tan", Asin: "asin", Acos: "acos", Atan: "atan",
	Sinh: "sinh", Cosh: "cosh", Tanh: "tanh", Asinh: "asinh", Acosh: "acosh", Atanh: "atanh",

	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Pow: "pow",
	Atan2: "atan2", Hypot: "hypot", Fmod: "fmod", Fdim: "fdim", LogSumExp: "log_sum_exp",

	Sum: "sum", Dot: "dot_product", DotSelf: "dot_self", Precomputed: "precomputed", Custom: "custom",
}

// String returns the operation name.
func (k Kind) String() string {
	if int(k) < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsUnary reports whether k has a single-operand rule.
func (k Kind) IsUnary() bool {
	return k >= Neg && k <= lastUnary
}

// IsBinary reports whether k has a two-operand rule.
func (k Kind) IsBinary() bool {
	return k >= Add && k <= lastBinary
}

// Unary returns every unary kind in declaration order.
func Unary() []Kind {
	ks := make([]Kind, 0, int(lastUnary))
	for k := Neg; k <= lastUnary; k++ {
		ks = append(ks, k)
	}
	return ks
}

// Binary returns every binary kind in declaration order.
func Binary() []Kind {
	ks := make([]Kind, 0, int(lastBinary-lastUnary))
	for k := Add; k <= lastBinary; k++ {
		ks = append(ks, k)
	}
	return ks
}

type unaryRule struct {
	eval func(a float64) float64
	// d returns df/da given the operand a and the result f.
	d func(a, f float64) float64
}

type binaryRule struct {
	eval func(a, b float64) float64
	da   func(a, b, f float64) float64
	db   func(a, b, f float64) float64
}

var unaryRules = [numKinds]unaryRule{
	Neg: negRule, Abs: absRule,
	Floor: floorRule, Ceil: ceilRule, Trunc: truncRule, Round: roundRule,
	Sqrt: sqrtRule, Cbrt: cbrtRule, Square: squareRule,
	Exp: expRule, Exp2: exp2Rule, Expm1: expm1Rule,
	Log: logRule, Log2: log2Rule, Log10: log10Rule, Log1p: log1pRule, Log1m: log1mRule,
	Inv: invRule, InvSqrt: invSqrtRule, InvSquare: invSquareRule,
	InvLogit: invLogitRule, Logit: logitRule, Log1pExp: log1pExpRule, LogInvLogit: logInvLogitRule,
	Phi: phiRule, Erf: erfRule, Erfc: erfcRule, Lgamma: lgammaRule, Tgamma: tgammaRule,
	Sin: sinRule, Cos: cosRule, Tan: tanRule, Asin: asinRule, Acos: acosRule, Atan: atanRule,
	Sinh: sinhRule, Cosh: coshRule, Tanh: tanhRule, Asinh: asinhRule, Acosh: acoshRule, Atanh: atanhRule,
}

var binaryRules = [numKinds]binaryRule{
	Add: addRule, Sub: subRule, Mul: mulRule, Div: divRule,
	Pow: powRule, Atan2: atan2Rule, Hypot: hypotRule,
	Fmod: fmodRule, Fdim: fdimRule, LogSumExp: logSumExpRule,
}

// Eval1 computes the value of unary kind k at a.
func Eval1(k Kind, a float64) float64 {
	return unary(k).eval(a)
}

// Partial1 computes df/da for unary kind k, where f = Eval1(k, a).
func Partial1(k Kind, a, f float64) float64 {
	return unary(k).d(a, f)
}

// Eval2 computes the value of binary kind k at (a, b).
func Eval2(k Kind, a, b float64) float64 {
	return binary(k).eval(a, b)
}

// PartialA computes df/da for binary kind k, where f = Eval2(k, a, b).
func PartialA(k Kind, a, b, f float64) float64 {
	return binary(k).da(a, b, f)
}

// PartialB computes df/db for binary kind k, where f = Eval2(k, a, b).
func PartialB(k Kind, a, b, f float64) float64 {
	return binary(k).db(a, b, f)
}

// Partial2 computes both partials of binary kind k.
func Partial2(k Kind, a, b, f float64) (da, db float64) {
	r := binary(k)
	return r.da(a, b, f), r.db(a, b, f)
}

func unary(k Kind) *unaryRule {
	if !k.IsUnary() {
		panic(fmt.Sprintf("ops: %s is not a unary operation", k))
	}
	return &unaryRules[k]
}

func binary(k Kind) *binaryRule {
	if !k.IsBinary() {
		panic(fmt.Sprintf("ops: %s is not a binary operation", k))
	}
	return &binaryRules[k]
}

package gradcheck

import (
	"math"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/autodiff/ops"
)

// Expression is a named scalar function with a point inside its domain.
type Expression struct {
	Name string
	F    autodiff.Func
	X    []float64
}

// unaryPoint picks a point inside k's domain, away from kinks.
func unaryPoint(k ops.Kind) float64 {
	switch k {
	case ops.Acosh:
		return 1.7
	case ops.Floor, ops.Ceil, ops.Trunc, ops.Round:
		return 1.3
	default:
		return 0.6
	}
}

// Expressions returns the built-in suite: every unary operation, every
// binary operation with variable and constant operands, the multi-operand
// nodes and a few composite models.
func Expressions() []Expression {
	var out []Expression

	for _, k := range ops.Unary() {
		out = append(out, Expression{
			Name: k.String(),
			F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.Unary(k, x[0]) },
			X:    []float64{unaryPoint(k)},
		})
	}

	const a, b = 1.9, 0.7
	for _, k := range ops.Binary() {
		out = append(out,
			Expression{
				Name: k.String() + "/vv",
				F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.Binary(k, x[0], x[1]) },
				X:    []float64{a, b},
			},
			Expression{
				Name: k.String() + "/vd",
				F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.BinaryVF(k, x[0], b) },
				X:    []float64{a},
			},
			Expression{
				Name: k.String() + "/dv",
				F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.BinaryFV(k, a, x[0]) },
				X:    []float64{b},
			},
		)
	}

	return append(out,
		Expression{
			Name: "sum",
			F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.Sum(x) },
			X:    []float64{0.3, -1.2, 2.5},
		},
		Expression{
			Name: "dot_product",
			F: func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
				return s.Dot(x[:2], x[2:])
			},
			X: []float64{0.3, -1.2, 2.5, 0.8},
		},
		Expression{
			Name: "dot_self",
			F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.DotSelf(x) },
			X:    []float64{0.3, -1.2, 2.5},
		},
		Expression{
			Name: "fma",
			F:    func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var { return s.Fma(x[0], x[1], x[2]) },
			X:    []float64{0.3, -1.2, 2.5},
		},
		Expression{
			Name: "sum_product_sine",
			F: func(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
				return s.Add(s.Mul(x[0], x[1]), s.Sin(x[0]))
			},
			X: []float64{2, 3},
		},
		Expression{
			Name: "normal_log_density",
			F:    NormalLogDensity,
			X:    []float64{0.4, -0.2, 1.3, 0.25, 0.9},
		},
		Expression{
			Name: "logistic_regression",
			F:    LogisticLogLikelihood,
			X:    []float64{0.5, -0.75, 0.1},
		},
	)
}

// NormalLogDensity returns the log density of x[2:] under a normal
// distribution with mean x[0] and log standard deviation x[1].
func NormalLogDensity(s *autodiff.Stack, x []autodiff.Var) autodiff.Var {
	mu, logSigma := x[0], x[1]
	invSigma := s.Exp(s.Neg(logSigma))

	terms := make([]autodiff.Var, 0, len(x)-2)
	for _, y := range x[2:] {
		z := s.Mul(s.Sub(y, mu), invSigma)
		terms = append(terms, s.MulF(s.Square(z), -0.5))
	}
	n := float64(len(terms))
	norm := s.FSub(-0.5*n*math.Log(2*math.Pi), s.MulF(logSigma, n))
	return s.Add(s.Sum(terms), norm)
}

// logisticData holds fixed covariates and labels for LogisticLogLikelihood.
var logisticData = struct {
	x [][]float64
	y []float64
}{
	x: [][]float64{{1, 0.2, -1}, {1, -0.5, 0.3}, {1, 1.5, 0.8}, {1, -1.1, -0.4}},
	y: []float64{1, 0, 1, 0},
}

// LogisticLogLikelihood returns the Bernoulli-logit log likelihood of a
// small fixed data set with coefficients beta.
func LogisticLogLikelihood(s *autodiff.Stack, beta []autodiff.Var) autodiff.Var {
	terms := make([]autodiff.Var, len(logisticData.y))
	for i, row := range logisticData.x {
		eta := s.DotF(beta, row)
		if logisticData.y[i] == 1 {
			terms[i] = s.LogInvLogit(eta)
		} else {
			terms[i] = s.LogInvLogit(s.Neg(eta))
		}
	}
	return s.Sum(terms)
}

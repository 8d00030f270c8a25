package ops

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Special-function rules.
//
// Backward pass:
//   - d(Phi(a))/da    = exp(-a²/2) / sqrt(2π), Phi the standard normal CDF
//   - d(erf(a))/da    = 2/sqrt(π) exp(-a²)
//   - d(erfc(a))/da   = -2/sqrt(π) exp(-a²)
//   - d(lgamma(a))/da = digamma(a)
//   - d(tgamma(a))/da = f digamma(a)

const (
	invSqrt2      = 1 / math.Sqrt2
	invSqrt2Pi    = 0.398942280401432677939946059934
	twoOverSqrtPi = 2 / 1.772453850905516027298167483341
)

var phiRule = unaryRule{
	eval: func(a float64) float64 { return 0.5 * math.Erfc(-a*invSqrt2) },
	d:    func(a, _ float64) float64 { return invSqrt2Pi * math.Exp(-0.5*a*a) },
}

var erfRule = unaryRule{
	eval: math.Erf,
	d:    func(a, _ float64) float64 { return twoOverSqrtPi * math.Exp(-a*a) },
}

var erfcRule = unaryRule{
	eval: math.Erfc,
	d:    func(a, _ float64) float64 { return -twoOverSqrtPi * math.Exp(-a*a) },
}

var lgammaRule = unaryRule{
	eval: func(a float64) float64 {
		v, _ := math.Lgamma(a)
		return v
	},
	d: func(a, _ float64) float64 { return mathext.Digamma(a) },
}

var tgammaRule = unaryRule{
	eval: math.Gamma,
	d:    func(a, f float64) float64 { return f * mathext.Digamma(a) },
}

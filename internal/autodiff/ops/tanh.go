package ops

import "math"

// Hyperbolic rules.
//
// Backward pass:
//   - d(sinh(a))/da  = cosh(a)
//   - d(cosh(a))/da  = sinh(a)
//   - d(tanh(a))/da  = 1 - f²
//   - d(asinh(a))/da = 1 / sqrt(a² + 1)
//   - d(acosh(a))/da = 1 / sqrt(a² - 1)
//   - d(atanh(a))/da = 1 / (1 - a²)

var sinhRule = unaryRule{
	eval: math.Sinh,
	d:    func(a, _ float64) float64 { return math.Cosh(a) },
}

var coshRule = unaryRule{
	eval: math.Cosh,
	d:    func(a, _ float64) float64 { return math.Sinh(a) },
}

var tanhRule = unaryRule{
	eval: math.Tanh,
	d:    func(_, f float64) float64 { return 1 - f*f },
}

var asinhRule = unaryRule{
	eval: math.Asinh,
	d:    func(a, _ float64) float64 { return 1 / math.Sqrt(a*a+1) },
}

var acoshRule = unaryRule{
	eval: math.Acosh,
	d:    func(a, _ float64) float64 { return 1 / math.Sqrt(a*a-1) },
}

var atanhRule = unaryRule{
	eval: math.Atanh,
	d:    func(a, _ float64) float64 { return 1 / (1 - a*a) },
}

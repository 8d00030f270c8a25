package ops

import "math"

// Logarithm rules.
//
// Backward pass:
//   - d(log(a))/da   = 1 / a
//   - d(log2(a))/da  = 1 / (a ln 2)
//   - d(log10(a))/da = 1 / (a ln 10)
//   - d(log1p(a))/da = 1 / (1 + a)
//   - d(log1m(a))/da = 1 / (a - 1), where log1m(a) = log(1 - a)
//
// Negative operands yield NaN values and derivatives through plain float
// arithmetic; nothing here checks the domain.

var logRule = unaryRule{
	eval: math.Log,
	d:    func(a, _ float64) float64 { return 1 / a },
}

var log2Rule = unaryRule{
	eval: math.Log2,
	d:    func(a, _ float64) float64 { return 1 / (a * math.Ln2) },
}

var log10Rule = unaryRule{
	eval: math.Log10,
	d:    func(a, _ float64) float64 { return 1 / (a * math.Ln10) },
}

var log1pRule = unaryRule{
	eval: math.Log1p,
	d:    func(a, _ float64) float64 { return 1 / (1 + a) },
}

var log1mRule = unaryRule{
	eval: func(a float64) float64 { return math.Log1p(-a) },
	d:    func(a, _ float64) float64 { return 1 / (a - 1) },
}

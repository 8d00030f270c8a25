package ops

import "math"

// Exponential rules. Each derivative is expressed through the result f.
//
// Backward pass:
//   - d(exp(a))/da   = f
//   - d(exp2(a))/da  = f * ln 2
//   - d(expm1(a))/da = f + 1

var expRule = unaryRule{
	eval: math.Exp,
	d:    func(_, f float64) float64 { return f },
}

var exp2Rule = unaryRule{
	eval: math.Exp2,
	d:    func(_, f float64) float64 { return f * math.Ln2 },
}

var expm1Rule = unaryRule{
	eval: math.Expm1,
	d:    func(_, f float64) float64 { return f + 1 },
}

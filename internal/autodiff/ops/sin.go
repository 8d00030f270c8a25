package ops

import "math"

// Trigonometric rules.
//
// Backward pass:
//   - d(sin(a))/da  = cos(a)
//   - d(cos(a))/da  = -sin(a)
//   - d(tan(a))/da  = 1 + f²
//   - d(asin(a))/da = 1 / sqrt(1 - a²)
//   - d(acos(a))/da = -1 / sqrt(1 - a²)
//   - d(atan(a))/da = 1 / (1 + a²)
//
// Binary:
//   - atan2(a, b): d/da = b / (a² + b²), d/db = -a / (a² + b²)
//   - hypot(a, b): d/da = a / f,         d/db = b / f

var sinRule = unaryRule{
	eval: math.Sin,
	d:    func(a, _ float64) float64 { return math.Cos(a) },
}

var cosRule = unaryRule{
	eval: math.Cos,
	d:    func(a, _ float64) float64 { return -math.Sin(a) },
}

var tanRule = unaryRule{
	eval: math.Tan,
	d:    func(_, f float64) float64 { return 1 + f*f },
}

var asinRule = unaryRule{
	eval: math.Asin,
	d:    func(a, _ float64) float64 { return 1 / math.Sqrt(1-a*a) },
}

var acosRule = unaryRule{
	eval: math.Acos,
	d:    func(a, _ float64) float64 { return -1 / math.Sqrt(1-a*a) },
}

var atanRule = unaryRule{
	eval: math.Atan,
	d:    func(a, _ float64) float64 { return 1 / (1 + a*a) },
}

var atan2Rule = binaryRule{
	eval: math.Atan2,
	da:   func(a, b, _ float64) float64 { return b / (a*a + b*b) },
	db:   func(a, b, _ float64) float64 { return -a / (a*a + b*b) },
}

var hypotRule = binaryRule{
	eval: math.Hypot,
	da:   func(a, _, f float64) float64 { return a / f },
	db:   func(_, b, f float64) float64 { return b / f },
}

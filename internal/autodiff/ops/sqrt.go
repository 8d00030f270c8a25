package ops

import "math"

// Power and root rules.
//
// Backward pass:
//   - d(sqrt(a))/da       = 1 / (2f)
//   - d(cbrt(a))/da       = 1 / (3f²)
//   - d(square(a))/da     = 2a
//   - d(inv(a))/da        = -1 / a²
//   - d(inv_sqrt(a))/da   = -0.5 f / a
//   - d(inv_square(a))/da = -2 / a³
//   - pow(a, b):          d/da = b f / a, d/db = f log(a)
//
// pow has zero partials when a == 0, which avoids 0/0 and log(0). A NaN
// operand makes both partials NaN, including at a zero base.

var sqrtRule = unaryRule{
	eval: math.Sqrt,
	d:    func(_, f float64) float64 { return 0.5 / f },
}

var cbrtRule = unaryRule{
	eval: math.Cbrt,
	d:    func(_, f float64) float64 { return 1 / (3 * f * f) },
}

var squareRule = unaryRule{
	eval: func(a float64) float64 { return a * a },
	d:    func(a, _ float64) float64 { return 2 * a },
}

var invRule = unaryRule{
	eval: func(a float64) float64 { return 1 / a },
	d:    func(a, _ float64) float64 { return -1 / (a * a) },
}

var invSqrtRule = unaryRule{
	eval: func(a float64) float64 { return 1 / math.Sqrt(a) },
	d:    func(a, f float64) float64 { return -0.5 * f / a },
}

var invSquareRule = unaryRule{
	eval: func(a float64) float64 { return 1 / (a * a) },
	d:    func(a, _ float64) float64 { return -2 / (a * a * a) },
}

var powRule = binaryRule{
	eval: math.Pow,
	da: func(a, b, f float64) float64 {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		if a == 0 {
			return 0
		}
		return b * f / a
	},
	db: func(a, b, f float64) float64 {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		if a == 0 {
			return 0
		}
		return math.Log(a) * f
	},
}

package ops

import "math"

// Piecewise rules.
//
// Backward pass:
//   - d(abs(a))/da = sign(a), 0 at a == 0
//   - floor, ceil, trunc, round: derivative 0 everywhere
//   - fmod(a, b):  d/da = 1, d/db = -trunc(a / b)
//   - fdim(a, b):  d/da = 1, d/db = -1 (only built when a > b)
//
// A NaN operand makes these derivatives NaN instead of the constant, so the
// NaN reaches the operand's adjoint.

var absRule = unaryRule{
	eval: math.Abs,
	d: func(a, _ float64) float64 {
		switch {
		case math.IsNaN(a):
			return math.NaN()
		case a > 0:
			return 1
		case a < 0:
			return -1
		default:
			return 0
		}
	},
}

var floorRule = unaryRule{eval: math.Floor, d: flat}

var ceilRule = unaryRule{eval: math.Ceil, d: flat}

var truncRule = unaryRule{eval: math.Trunc, d: flat}

var roundRule = unaryRule{eval: math.Round, d: flat}

var fmodRule = binaryRule{
	eval: math.Mod,
	da: func(a, b, _ float64) float64 {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return 1
	},
	db: func(a, b, _ float64) float64 {
		return -math.Trunc(a / b)
	},
}

var fdimRule = binaryRule{
	eval: func(a, b float64) float64 {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		if a > b {
			return a - b
		}
		return 0
	},
	da: func(a, b, _ float64) float64 {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return 1
	},
	db: func(a, b, _ float64) float64 {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return -1
	},
}

func flat(a, _ float64) float64 {
	if math.IsNaN(a) {
		return math.NaN()
	}
	return 0
}

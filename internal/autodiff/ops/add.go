package ops

// Arithmetic rules.
//
// Backward pass:
//   - d(a+b)/da = 1,   d(a+b)/db = 1
//   - d(a-b)/da = 1,   d(a-b)/db = -1
//   - d(a*b)/da = b,   d(a*b)/db = a
//   - d(a/b)/da = 1/b, d(a/b)/db = -(a/b)/b
//   - d(-a)/da = -1

var negRule = unaryRule{
	eval: func(a float64) float64 { return -a },
	d:    func(_, _ float64) float64 { return -1 },
}

var addRule = binaryRule{
	eval: func(a, b float64) float64 { return a + b },
	da:   one,
	db:   one,
}

var subRule = binaryRule{
	eval: func(a, b float64) float64 { return a - b },
	da:   one,
	db:   func(_, _, _ float64) float64 { return -1 },
}

var mulRule = binaryRule{
	eval: func(a, b float64) float64 { return a * b },
	da:   func(_, b, _ float64) float64 { return b },
	db:   func(a, _, _ float64) float64 { return a },
}

var divRule = binaryRule{
	eval: func(a, b float64) float64 { return a / b },
	da:   func(_, b, _ float64) float64 { return 1 / b },
	db:   func(_, b, f float64) float64 { return -f / b },
}

func one(_, _, _ float64) float64 { return 1 }

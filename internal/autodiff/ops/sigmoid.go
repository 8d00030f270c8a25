package ops

import "math"

// Logistic rules.
//
// Backward pass:
//   - d(inv_logit(a))/da     = f (1 - f)
//   - d(logit(a))/da         = 1 / (a - a²)
//   - d(log1p_exp(a))/da     = inv_logit(a)
//   - d(log_inv_logit(a))/da = inv_logit(-a)
//   - log_sum_exp(a, b):     d/da = inv_logit(a - b), d/db = inv_logit(b - a)

var invLogitRule = unaryRule{
	eval: invLogit,
	d:    func(_, f float64) float64 { return f * (1 - f) },
}

var logitRule = unaryRule{
	eval: func(a float64) float64 { return math.Log(a / (1 - a)) },
	d:    func(a, _ float64) float64 { return 1 / (a - a*a) },
}

var log1pExpRule = unaryRule{
	eval: log1pExp,
	d:    func(a, _ float64) float64 { return invLogit(a) },
}

var logInvLogitRule = unaryRule{
	eval: func(a float64) float64 { return -log1pExp(-a) },
	d:    func(a, _ float64) float64 { return invLogit(-a) },
}

var logSumExpRule = binaryRule{
	eval: logSumExp,
	da:   func(a, b, _ float64) float64 { return logSumExpShare(a, b) },
	db:   func(a, b, _ float64) float64 { return logSumExpShare(b, a) },
}

// logSumExpShare is inv_logit(a - b), split evenly when a == b so that two
// equal infinities do not produce NaN.
func logSumExpShare(a, b float64) float64 {
	if a == b {
		return 0.5
	}
	return invLogit(a - b)
}

// invLogit computes 1 / (1 + exp(-a)) without overflowing for large |a|.
func invLogit(a float64) float64 {
	if a < 0 {
		e := math.Exp(a)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(-a))
}

// log1pExp computes log(1 + exp(a)).
func log1pExp(a float64) float64 {
	if a > 0 {
		return a + math.Log1p(math.Exp(-a))
	}
	return math.Log1p(math.Exp(a))
}

func logSumExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a == b && math.IsInf(a, 1) {
		return a
	}
	hi, lo := a, b
	if b > a {
		hi, lo = b, a
	}
	return hi + math.Log1p(math.Exp(lo-hi))
}

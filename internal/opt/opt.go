// Package opt provides learning-rate schedules and the L-BFGS curvature model.
package opt

import "math"

// Schedule maps a 0-based round index to a positive step factor.
type Schedule func(round int) float64

// Constant returns a schedule that always yields factor.
func Constant(factor float64) Schedule {
	return func(int) float64 {
		return factor
	}
}

// Exponential returns factor * base^round.
func Exponential(factor, base float64) Schedule {
	return func(round int) float64 {
		return factor * math.Pow(base, float64(round))
	}
}

// Step decays factor by gamma every stepSize rounds: factor * gamma^(round/stepSize).
// A stepSize below 1 is treated as 1.
func Step(factor, gamma float64, stepSize int) Schedule {
	if stepSize < 1 {
		stepSize = 1
	}
	return func(round int) float64 {
		return factor * math.Pow(gamma, float64(round/stepSize))
	}
}

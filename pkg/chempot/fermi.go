// Package chempot solves for the chemical potential fixing a target
// occupation: a Fermi-Dirac weighting, a trapezoidal occupation integral,
// and a bisection root-finder with an append-only diagnostic trace.
package chempot

import "math"

const (
	// ZeroTemperature is the T threshold below which the weighting
	// degenerates to the zero-temperature step function.
	ZeroTemperature = 1e-12

	// ExpClamp saturates the Fermi exponent: beyond +/-ExpClamp the
	// weight is exactly 0 or 1, keeping math.Exp out of overflow.
	ExpClamp = 40.0
)

// FermiWeight is the Fermi-Dirac occupation weight f(omega, mu, T).
func FermiWeight(omega, mu, T float64) float64 {
	if T < ZeroTemperature {
		if omega-mu < 0 {
			return 1
		}
		return 0
	}
	x := (omega - mu) / T
	switch {
	case x > ExpClamp:
		return 0
	case x < -ExpClamp:
		return 1
	}
	return 1 / (math.Exp(x) + 1)
}

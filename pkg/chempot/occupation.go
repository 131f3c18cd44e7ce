package chempot

import (
	"gonum.org/v1/gonum/integrate"

	"github.com/dmftio/bethe/pkg/domain"
)

// Occupation integrates the spectral weight against the Fermi weighting:
//
//	n(mu) = integral A(omega) * f(omega, mu, T) domega
//
// using the composite trapezoid rule over the series grid. The grid must be
// strictly ascending; with fewer than two points the integral is 0.
func Occupation(a domain.Series, mu, T float64) float64 {
	if len(a) < 2 {
		return 0
	}
	x := make([]float64, len(a))
	y := make([]float64, len(a))
	for i, p := range a {
		x[i] = p.Omega
		y[i] = p.Value * FermiWeight(p.Omega, mu, T)
	}
	return integrate.Trapezoidal(x, y)
}

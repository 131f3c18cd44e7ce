// Package lattice implements the semicircular (Bethe) lattice Hilbert
// transform: the analytic continuation mapping a self-energy to the local
// Green's function, the spectral function, and a new hybridization.
package lattice

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/dmftio/bethe/pkg/domain"
)

const (
	// ImagFloor is added to Im(z) whenever Im(z) <= 0 so that the square
	// root is never evaluated exactly on its branch cut. Flooring to a
	// small positive value forces the physically retarded sheet.
	ImagFloor = 1e-20

	// SingularG is the |G| threshold below which 1/G is treated as 0.
	SingularG = 1e-30
)

// Branch identifies the analytic sheet selected by the sign of Im(z).
// The two-valued enumeration is deliberate: it encodes the physical
// retarded-vs-advanced choice and must not be reduced to a bare sign test.
type Branch int

const (
	// Retarded is selected when Im(z) > 0.
	Retarded Branch = +1
	// Advanced is selected when Im(z) <= 0. Transform floors every
	// argument onto the upper half plane first, so this sheet is never
	// chosen there; it is kept to make the two-branch choice explicit.
	Advanced Branch = -1
)

// branchOf returns the sheet for a complex argument.
func branchOf(z complex128) Branch {
	if imag(z) > 0 {
		return Retarded
	}
	return Advanced
}

// g0 evaluates the semicircular-lattice Hilbert transform at z:
//
//	g0(z) = 2*(z + (0 - i*branch)*sqrt(1 - z^2))
func g0(z complex128) complex128 {
	b := branchOf(z)
	tmp := cmplx.Sqrt(1 - z*z)
	correction := complex(0, -float64(b)) * tmp
	return 2 * (z + correction)
}

// floorImag lifts z off the real axis onto the retarded sheet.
func floorImag(z complex128) complex128 {
	if imag(z) > 0 {
		return z
	}
	return complex(real(z), ImagFloor)
}

// Result carries the series derived from one transform pass.
type Result struct {
	// GLoc is the local Green's function G(omega) = g0(omega - Sigma(omega)).
	GLoc domain.ComplexSeries
	// Spectral is A(omega) = -Im(G)/pi.
	Spectral domain.Series
	// SpectralRe is the auxiliary real-part series -Re(G)/pi.
	SpectralRe domain.Series
	// Delta is the new hybridization Im(1/G + Sigma).
	Delta domain.Series
}

// Transform applies the lattice Hilbert transform to a self-energy series.
// Near-singular |G| points are guarded (inverse treated as 0) and reported
// through hooks; they never abort the pass.
func Transform(ctx context.Context, sigma domain.ComplexSeries, hooks domain.LifecycleHooks) Result {
	res := Result{
		GLoc:       make(domain.ComplexSeries, len(sigma)),
		Spectral:   make(domain.Series, len(sigma)),
		SpectralRe: make(domain.Series, len(sigma)),
		Delta:      make(domain.Series, len(sigma)),
	}

	for i, p := range sigma {
		z := floorImag(complex(p.Omega, 0) - p.Value)
		g := g0(z)
		res.GLoc[i] = domain.CPoint{Omega: p.Omega, Value: g}
		res.Spectral[i] = domain.Point{Omega: p.Omega, Value: -imag(g) / math.Pi}
		res.SpectralRe[i] = domain.Point{Omega: p.Omega, Value: -real(g) / math.Pi}

		var inv complex128
		if cmplx.Abs(g) < SingularG {
			hooks.EmitGuard(ctx, &domain.GuardEvent{
				Stage:  "lattice",
				Index:  i,
				Omega:  p.Omega,
				Reason: "|G| below singular threshold, inverse treated as 0",
			})
		} else {
			inv = 1/g + p.Value
		}
		res.Delta[i] = domain.Point{Omega: p.Omega, Value: imag(inv)}
	}

	return res
}

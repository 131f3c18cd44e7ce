// Package sigmatrick reconstructs the self-energy and spectral function
// from solver-produced correlators and the current hybridization.
//
// Per frequency point:
//
//	sigma = F / G
//	gf    = 1 / (omega + delta - sigma)
//	a     = -Im(gf) / pi
//
// with |G| and |denominator| guarded against near-zero values.
package sigmatrick

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/dmftio/bethe/pkg/domain"
)

// SingularThreshold is the magnitude below which |G| and the reconstructed
// denominator are treated as singular.
const SingularThreshold = 1e-30

// Input is the six co-indexed real series sharing one frequency grid.
type Input struct {
	ImG, ReG     domain.Series // local Green's function correlator
	ImF, ReF     domain.Series // F-correlator
	ImDel, ReDel domain.Series // current hybridization
}

// Output is the reconstructed series. Points skipped by the denominator
// guard are absent from all three.
type Output struct {
	Spectral domain.Series // (omega, a(omega))
	ImSigma  domain.Series // (omega, Im(sigma))
	ReSigma  domain.Series // (omega, Re(sigma))
}

// Reconstruct derives the self-energy and spectral function. Any length or
// grid mismatch among the six inputs is fatal and produces no partial
// output. Guarded points are reported through hooks and processing
// continues.
func Reconstruct(ctx context.Context, in Input, hooks domain.LifecycleHooks) (Output, error) {
	if err := in.validate(); err != nil {
		return Output{}, err
	}

	n := len(in.ImG)
	out := Output{
		Spectral: make(domain.Series, 0, n),
		ImSigma:  make(domain.Series, 0, n),
		ReSigma:  make(domain.Series, 0, n),
	}

	for i := 0; i < n; i++ {
		omega := in.ImG[i].Omega
		g := complex(in.ReG[i].Value, in.ImG[i].Value)
		f := complex(in.ReF[i].Value, in.ImF[i].Value)
		del := complex(in.ReDel[i].Value, in.ImDel[i].Value)

		var sigma complex128
		if cmplx.Abs(g) < SingularThreshold {
			hooks.EmitGuard(ctx, &domain.GuardEvent{
				Stage:  "sigmatrick",
				Index:  i,
				Omega:  omega,
				Reason: "|G| below singular threshold, sigma set to 0",
			})
		} else {
			sigma = f / g
		}

		denom := complex(omega, 0) + del - sigma
		if cmplx.Abs(denom) < SingularThreshold {
			hooks.EmitGuard(ctx, &domain.GuardEvent{
				Stage:  "sigmatrick",
				Index:  i,
				Omega:  omega,
				Reason: "denominator below singular threshold, point skipped",
			})
			continue
		}

		gf := 1 / denom
		out.Spectral = append(out.Spectral, domain.Point{Omega: omega, Value: -imag(gf) / math.Pi})
		out.ImSigma = append(out.ImSigma, domain.Point{Omega: omega, Value: imag(sigma)})
		out.ReSigma = append(out.ReSigma, domain.Point{Omega: omega, Value: real(sigma)})
	}

	return out, nil
}

func (in Input) validate() error {
	n := len(in.ImG)
	series := map[string]domain.Series{
		"reG": in.ReG, "imF": in.ImF, "reF": in.ReF,
		"imDelta": in.ImDel, "reDelta": in.ReDel,
	}
	for name, s := range series {
		if len(s) != n {
			return fmt.Errorf("%w: %s has %d points, imG has %d", domain.ErrDataFormat, name, len(s), n)
		}
		if !in.ImG.GridMatches(s) {
			return fmt.Errorf("%w: %s is on a different frequency grid than imG", domain.ErrDataFormat, name)
		}
	}
	return nil
}

// Package seed provides the default initial-guess generator for the
// hybridization function.
package seed

import (
	"context"
	"fmt"

	"github.com/dmftio/bethe/pkg/domain"
)

// FlatGuess implements ports.DeltaInitializer with a wide-band-limit
// constant guess: Im Delta(omega) = -Gamma on a uniform grid, Re Delta = 0.
type FlatGuess struct {
	// Gamma is the hybridization strength of the flat band.
	Gamma float64
	// OmegaMin, OmegaMax and Points define the uniform frequency grid.
	OmegaMin, OmegaMax float64
	Points             int
}

// Seed generates the initial hybridization series.
func (g FlatGuess) Seed(_ context.Context) (domain.Series, domain.Series, error) {
	if g.Points < 2 {
		return nil, nil, fmt.Errorf("%w: seed grid needs >= 2 points, got %d",
			domain.ErrConfiguration, g.Points)
	}
	if g.OmegaMin >= g.OmegaMax {
		return nil, nil, fmt.Errorf("%w: seed grid [%g, %g] is not ordered",
			domain.ErrConfiguration, g.OmegaMin, g.OmegaMax)
	}
	if g.Gamma <= 0 {
		return nil, nil, fmt.Errorf("%w: seed gamma must be > 0, got %g",
			domain.ErrConfiguration, g.Gamma)
	}

	step := (g.OmegaMax - g.OmegaMin) / float64(g.Points-1)
	im := make(domain.Series, g.Points)
	re := make(domain.Series, g.Points)
	for i := 0; i < g.Points; i++ {
		omega := g.OmegaMin + float64(i)*step
		im[i] = domain.Point{Omega: omega, Value: -g.Gamma}
		re[i] = domain.Point{Omega: omega, Value: 0}
	}
	return im, re, nil
}

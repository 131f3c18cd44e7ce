// Package mixing combines successive hybridization estimates to stabilize
// the outer fixed-point iteration.
package mixing

import (
	"fmt"
	"strings"

	"github.com/dmftio/bethe/pkg/domain"
)

// Mixer combines the previous and newly computed hybridization series.
// Implementations must treat a nil old series (first iteration) as
// "return new unchanged". The interface is deliberately open to
// history-aware variants: a future implementation may keep prior iterates
// and residuals in its own state without changing this call contract.
type Mixer interface {
	// Name identifies the variant for logs and diagnostics.
	Name() string

	// Combine returns the series to use as the next hybridization.
	Combine(old, next domain.Series, alpha float64) (domain.Series, error)
}

// None performs no mixing: the new series is used as-is.
type None struct{}

// Name implements Mixer.
func (None) Name() string { return "none" }

// Combine implements Mixer.
func (None) Combine(_, next domain.Series, _ float64) (domain.Series, error) {
	return next, nil
}

// Linear blends alpha*new + (1-alpha)*old pointwise over the shared grid.
type Linear struct{}

// Name implements Mixer.
func (Linear) Name() string { return "linear" }

// Combine implements Mixer.
func (Linear) Combine(old, next domain.Series, alpha float64) (domain.Series, error) {
	if old == nil {
		return next, nil
	}
	if err := ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if !old.GridMatches(next) {
		return nil, fmt.Errorf("%w: previous and new hybridization are on different grids",
			domain.ErrDataFormat)
	}
	out := make(domain.Series, len(next))
	for i := range next {
		out[i] = domain.Point{
			Omega: next[i].Omega,
			Value: alpha*next[i].Value + (1-alpha)*old[i].Value,
		}
	}
	return out, nil
}

// ValidateAlpha checks the mixing parameter once at configuration time.
func ValidateAlpha(alpha float64) error {
	if alpha <= 0 || alpha > 1 {
		return fmt.Errorf("%w: mixing parameter %g outside (0, 1]", domain.ErrConfiguration, alpha)
	}
	return nil
}

// ForMethod resolves a configured method name to a Mixer.
//
// "anderson" and "broyden" are accepted for compatibility with existing
// parameter files, but both currently reduce to the same linear rule;
// neither implements the named quasi-Newton update. This is a known gap
// preserved as-is rather than silently "fixed".
func ForMethod(name string) (Mixer, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return None{}, nil
	case "linear", "anderson", "broyden":
		return Linear{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mixing method %q", domain.ErrConfiguration, name)
	}
}

package chempot

import (
	"context"
	"fmt"
	"math"

	"github.com/dmftio/bethe/pkg/domain"
)

// Params configures one bisection search. The bracket must bound a sign
// change of F(mu) = n(mu) - Target; that precondition is the caller's
// responsibility and is not re-verified here.
type Params struct {
	// Target is the occupation n* the search should reproduce.
	Target float64
	// Temperature enters the Fermi weighting; T >= 0.
	Temperature float64
	// EpsN is the occupation tolerance |F(mu)| must reach.
	EpsN float64
	// MuMin and MuMax bracket the search.
	MuMin, MuMax float64
	// MaxIter bounds the number of bisection steps.
	MaxIter int
}

// Validate checks the static configuration. Bracket ordering and tolerance
// errors are configuration errors and abort before any iteration.
func (p Params) Validate() error {
	if p.EpsN <= 0 {
		return fmt.Errorf("%w: eps_n must be > 0, got %g", domain.ErrConfiguration, p.EpsN)
	}
	if p.MuMin >= p.MuMax {
		return fmt.Errorf("%w: mu bracket [%g, %g] is not ordered", domain.ErrConfiguration, p.MuMin, p.MuMax)
	}
	if p.MaxIter < 1 {
		return fmt.Errorf("%w: max_mu_iter must be >= 1, got %d", domain.ErrConfiguration, p.MaxIter)
	}
	if p.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be >= 0, got %g", domain.ErrConfiguration, p.Temperature)
	}
	return nil
}

// Step is one entry of the bisection trace. The trace is diagnostic only;
// no later numeric decision reads it.
type Step struct {
	Iteration int     `json:"iteration"`
	Mu        float64 `json:"mu"`
	F         float64 `json:"f"`
}

// Result is the outcome of a bisection search. Converged == false after an
// exhausted iteration budget is a warning, not an error: Mu still holds the
// best estimate.
type Result struct {
	Mu         float64 `json:"mu"`
	F          float64 `json:"f"`
	Occupation float64 `json:"occupation"`
	Converged  bool    `json:"converged"`
	Trace      []Step  `json:"trace"`
}

// Bisect searches for mu such that the occupation of the spectral series a
// matches p.Target. The series must be sorted ascending in omega.
func Bisect(ctx context.Context, a domain.Series, p Params, hooks domain.LifecycleHooks) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if !a.Ascending() {
		return Result{}, fmt.Errorf("%w: spectral series is not sorted ascending", domain.ErrDataFormat)
	}

	muMin, muMax := p.MuMin, p.MuMax
	fMin := Occupation(a, muMin, p.Temperature) - p.Target
	fMax := Occupation(a, muMax, p.Temperature) - p.Target
	_ = fMax // seeded for the bracket invariant; only fMin drives the update rule

	res := Result{Mu: 0.5 * (muMin + muMax)}

	for i := 0; i < p.MaxIter; i++ {
		muMid := 0.5 * (muMin + muMax)
		occ := Occupation(a, muMid, p.Temperature)
		fMid := occ - p.Target

		res.Mu, res.F, res.Occupation = muMid, fMid, occ
		res.Trace = append(res.Trace, Step{Iteration: i, Mu: muMid, F: fMid})
		hooks.EmitBisectionStep(ctx, &domain.BisectionEvent{Iteration: i, Mu: muMid, F: fMid})

		if math.Abs(fMid) < p.EpsN {
			res.Converged = true
			break
		}

		if fMin*fMid > 0 {
			muMin, fMin = muMid, fMid
		} else {
			muMax = muMid
		}
	}

	hooks.EmitBisectionDone(ctx, &domain.MuEvent{
		Mu:         res.Mu,
		Occupation: res.Occupation,
		F:          res.F,
		Converged:  res.Converged,
		Steps:      len(res.Trace),
	})

	return res, nil
}

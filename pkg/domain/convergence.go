package domain

import "fmt"

// Convergence tracks the outer-loop convergence decision across iterations.
// Created per run, mutated by the engine each iteration, discarded at run end.
type Convergence struct {
	Iteration int     `json:"iteration"`
	MaxIter   int     `json:"max_iter"`
	EpsDelta  float64 `json:"eps_delta"`
	Converged bool    `json:"converged"`
	LastDiff  float64 `json:"last_diff"`
}

// NewConvergence validates the loop bounds and returns a fresh tracker.
func NewConvergence(maxIter int, epsDelta float64) (*Convergence, error) {
	if maxIter < 1 {
		return nil, fmt.Errorf("%w: max_iter must be >= 1, got %d", ErrConfiguration, maxIter)
	}
	if epsDelta <= 0 {
		return nil, fmt.Errorf("%w: eps_delta must be > 0, got %g", ErrConfiguration, epsDelta)
	}
	return &Convergence{MaxIter: maxIter, EpsDelta: epsDelta}, nil
}

// Check compares the previous and newly computed hybridization and records
// the outcome. The metric is the maximum pointwise |prev - next| over the
// shared grid; a grid mismatch is a fatal data error.
func (c *Convergence) Check(prev, next Series) (bool, float64, error) {
	diff, err := prev.MaxAbsDiff(next)
	if err != nil {
		return false, 0, fmt.Errorf("convergence check: %w", err)
	}
	c.Iteration++
	c.LastDiff = diff
	c.Converged = diff < c.EpsDelta
	return c.Converged, diff, nil
}

// Exhausted reports whether the iteration budget has been spent.
func (c *Convergence) Exhausted() bool {
	return c.Iteration >= c.MaxIter
}

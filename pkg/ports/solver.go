package ports

import "context"

// SolverPipeline invokes the external many-body impurity solver for one
// outer iteration. A successful Solve leaves the four correlator files
// (Im/Re of the G- and F-correlators) in the working directory.
//
// Solve blocks until the pipeline completes; cancellation is only honored
// between stages. Transient-failure retries are the adapter's contract
// (fixed attempt count, fixed inter-attempt delay), not the engine's.
type SolverPipeline interface {
	Solve(ctx context.Context, iteration int) error
}

// RealParts derives the real part of a causal series from its imaginary
// part via the external Kramers-Kronig tool: src is the two-column input
// file, dst the output.
type RealParts interface {
	Derive(ctx context.Context, src, dst string) error
}

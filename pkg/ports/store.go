package ports

import (
	"context"

	"github.com/dmftio/bethe/pkg/chempot"
	"github.com/dmftio/bethe/pkg/domain"
)

// RunStore persists run checkpoints, enabling stop-and-resume of a
// self-consistency run.
type RunStore interface {
	// Save persists the state for a given run ID.
	Save(ctx context.Context, state *domain.RunState) error

	// Load retrieves the state for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunState, error)

	// Delete removes the state for a given run ID.
	Delete(ctx context.Context, runID string) error
}

// TraceStore records per-iteration diagnostics for external observers.
// Traces are append-only and are never read back by the numeric loop.
type TraceStore interface {
	// AppendIteration records the convergence outcome of one outer iteration.
	AppendIteration(ctx context.Context, runID string, rec domain.IterationRecord) error

	// AppendBisection records the full bisection trace of one iteration.
	AppendBisection(ctx context.Context, runID string, iteration int, trace []chempot.Step) error

	// History returns the convergence records of a run, oldest first.
	History(ctx context.Context, runID string) ([]domain.IterationRecord, error)
}

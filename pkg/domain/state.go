package domain

// Phase defines the current mode of the self-consistency state machine.
type Phase string

const (
	PhaseInitializing Phase = "initializing" // No hybridization yet; seeding initial guess
	PhaseSolving      Phase = "solving"      // Normal operation, iterating
	PhaseConverged    Phase = "converged"    // Terminal: metric below eps_delta
	PhaseExhausted    Phase = "exhausted"    // Terminal: max_iter reached (warning, not error)
	PhaseFailed       Phase = "failed"       // Terminal: a fatal stage error aborted the run
)

// Terminal reports whether the phase ends the run.
func (p Phase) Terminal() bool {
	return p == PhaseConverged || p == PhaseExhausted || p == PhaseFailed
}

// IterationRecord is one entry of the per-run convergence trace.
type IterationRecord struct {
	Iteration int     `json:"iteration"`
	Metric    float64 `json:"metric"`
	Converged bool    `json:"converged"`
}

// RunState represents the current snapshot of a self-consistency run.
// It is owned exclusively by the engine while a run is active and is the
// unit persisted by run stores for resume.
type RunState struct {
	// RunID identifies the run for stores and observers.
	RunID string `json:"run_id"`

	// Phase indicates where the state machine currently is.
	Phase Phase `json:"phase"`

	// Iteration is the index of the last completed outer iteration.
	Iteration int `json:"iteration"`

	// History tracks the convergence metric of every completed iteration.
	History []IterationRecord `json:"history"`

	// Mu and Occupation carry the chemical potential diagnostic of the
	// most recent iteration.
	Mu         float64 `json:"mu"`
	Occupation float64 `json:"occupation"`
}

// NewRunState creates a clean state for a fresh run.
func NewRunState(runID string) *RunState {
	return &RunState{
		RunID: runID,
		Phase: PhaseInitializing,
	}
}

// LastMetric returns the convergence metric of the most recent iteration,
// or 0 if no iteration has completed.
func (s *RunState) LastMetric() float64 {
	if len(s.History) == 0 {
		return 0
	}
	return s.History[len(s.History)-1].Metric
}

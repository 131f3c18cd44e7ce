package domain

import (
	"context"
	"time"
)

// EventType defines the category of a diagnostics event.
type EventType string

const (
	EventIterationStart EventType = "iteration_start"
	EventIterationEnd   EventType = "iteration_end"
	EventSolverStage    EventType = "solver_stage"
	EventNumericalGuard EventType = "numerical_guard"
	EventBisectionStep  EventType = "bisection_step"
	EventBisectionDone  EventType = "bisection_done"
)

// IterationEvent reports the start or end of one outer DMFT iteration.
type IterationEvent struct {
	Iteration int     `json:"iteration"`
	Metric    float64 `json:"metric"`
	Converged bool    `json:"converged"`
}

// SolverStageEvent reports one invocation of an external solver stage.
type SolverStageEvent struct {
	Stage    string        `json:"stage"`
	Attempt  int           `json:"attempt"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// GuardEvent reports a non-fatal numerical guard: a near-zero |G| or
// denominator that caused a point to be zeroed or skipped.
type GuardEvent struct {
	Stage  string  `json:"stage"`
	Index  int     `json:"index"`
	Omega  float64 `json:"omega"`
	Reason string  `json:"reason"`
}

// BisectionEvent reports one step of the chemical-potential bisection.
type BisectionEvent struct {
	Iteration int     `json:"iteration"`
	Mu        float64 `json:"mu"`
	F         float64 `json:"f"`
}

// MuEvent reports the outcome of the chemical-potential search. A
// non-converged outcome is a warning, not an error: the engine keeps the
// best estimate.
type MuEvent struct {
	Mu         float64 `json:"mu"`
	Occupation float64 `json:"occupation"`
	F          float64 `json:"f"`
	Converged  bool    `json:"converged"`
	Steps      int     `json:"steps"`
}

// LifecycleHooks defines callbacks for loop observability. Every hook is
// optional; components must tolerate a zero-value LifecycleHooks.
//
// Hooks replace the original's module-level log handlers: diagnostics are
// pushed to an injected sink, never to package state.
type LifecycleHooks struct {
	OnIterationStart func(context.Context, *IterationEvent)
	OnIterationEnd   func(context.Context, *IterationEvent)
	OnSolverStage    func(context.Context, *SolverStageEvent)
	OnGuard          func(context.Context, *GuardEvent)
	OnBisectionStep  func(context.Context, *BisectionEvent)
	OnBisectionDone  func(context.Context, *MuEvent)
}

// EmitIterationStart invokes OnIterationStart if set.
func (h LifecycleHooks) EmitIterationStart(ctx context.Context, e *IterationEvent) {
	if h.OnIterationStart != nil {
		h.OnIterationStart(ctx, e)
	}
}

// EmitIterationEnd invokes OnIterationEnd if set.
func (h LifecycleHooks) EmitIterationEnd(ctx context.Context, e *IterationEvent) {
	if h.OnIterationEnd != nil {
		h.OnIterationEnd(ctx, e)
	}
}

// EmitSolverStage invokes OnSolverStage if set.
func (h LifecycleHooks) EmitSolverStage(ctx context.Context, e *SolverStageEvent) {
	if h.OnSolverStage != nil {
		h.OnSolverStage(ctx, e)
	}
}

// EmitGuard invokes OnGuard if set.
func (h LifecycleHooks) EmitGuard(ctx context.Context, e *GuardEvent) {
	if h.OnGuard != nil {
		h.OnGuard(ctx, e)
	}
}

// EmitBisectionStep invokes OnBisectionStep if set.
func (h LifecycleHooks) EmitBisectionStep(ctx context.Context, e *BisectionEvent) {
	if h.OnBisectionStep != nil {
		h.OnBisectionStep(ctx, e)
	}
}

// EmitBisectionDone invokes OnBisectionDone if set.
func (h LifecycleHooks) EmitBisectionDone(ctx context.Context, e *MuEvent) {
	if h.OnBisectionDone != nil {
		h.OnBisectionDone(ctx, e)
	}
}

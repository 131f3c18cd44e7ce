package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/observability"
)

func TestMetricsHooks(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := observability.NewMetrics(registry)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.EmitIterationEnd(ctx, &domain.IterationEvent{Iteration: 1, Metric: 0.25})
	hooks.EmitIterationEnd(ctx, &domain.IterationEvent{Iteration: 2, Metric: 0.01})
	hooks.EmitSolverStage(ctx, &domain.SolverStageEvent{Stage: "nrg", Attempt: 1, Duration: time.Second})
	hooks.EmitGuard(ctx, &domain.GuardEvent{Stage: "sigmatrick"})
	hooks.EmitGuard(ctx, &domain.GuardEvent{Stage: "sigmatrick"})
	hooks.EmitBisectionDone(ctx, &domain.MuEvent{Mu: 0.4, Steps: 17})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Iterations))
	assert.Equal(t, 0.01, testutil.ToFloat64(m.Convergence))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GuardEvents.WithLabelValues("sigmatrick")))

	count, err := testutil.GatherAndCount(registry,
		"bethe_solver_stage_duration_seconds", "bethe_bisection_steps")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMerge(t *testing.T) {
	var calls []string
	mk := func(name string) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnIterationStart: func(context.Context, *domain.IterationEvent) {
				calls = append(calls, name+":start")
			},
			OnGuard: func(context.Context, *domain.GuardEvent) {
				calls = append(calls, name+":guard")
			},
		}
	}
	merged := observability.Merge(mk("a"), mk("b"), domain.LifecycleHooks{})

	ctx := context.Background()
	merged.EmitIterationStart(ctx, &domain.IterationEvent{})
	merged.EmitGuard(ctx, &domain.GuardEvent{})
	// A zero-value member is tolerated and the others still fire in order.
	assert.Equal(t, []string{"a:start", "b:start", "a:guard", "b:guard"}, calls)
}

func TestZeroValueHooksAreSafe(t *testing.T) {
	var hooks domain.LifecycleHooks
	ctx := context.Background()

	assert.NotPanics(t, func() {
		hooks.EmitIterationStart(ctx, &domain.IterationEvent{})
		hooks.EmitIterationEnd(ctx, &domain.IterationEvent{})
		hooks.EmitSolverStage(ctx, &domain.SolverStageEvent{})
		hooks.EmitGuard(ctx, &domain.GuardEvent{})
		hooks.EmitBisectionStep(ctx, &domain.BisectionEvent{})
		hooks.EmitBisectionDone(ctx, &domain.MuEvent{})
	})
}

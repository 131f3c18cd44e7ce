// Package observability bridges engine lifecycle hooks to Prometheus
// collectors and structured logs.
package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmftio/bethe/pkg/domain"
)

// Metrics holds the Prometheus collectors of the loop.
type Metrics struct {
	Iterations     prometheus.Counter
	Convergence    prometheus.Gauge
	SolverDuration *prometheus.HistogramVec
	BisectionSteps prometheus.Histogram
	GuardEvents    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bethe_iterations_total",
			Help: "Total number of completed outer DMFT iterations",
		}),
		Convergence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bethe_convergence_metric",
			Help: "Latest max|Delta - Delta_prev| convergence metric",
		}),
		SolverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bethe_solver_stage_duration_seconds",
			Help: "Duration of external solver stage invocations",
		}, []string{"stage"}),
		BisectionSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bethe_bisection_steps",
			Help:    "Bisection steps taken per chemical-potential search",
			Buckets: prometheus.LinearBuckets(5, 5, 10),
		}),
		GuardEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bethe_numerical_guards_total",
			Help: "Non-fatal numerical guard events by stage",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.Iterations, m.Convergence, m.SolverDuration, m.BisectionSteps, m.GuardEvents)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIterationEnd: func(_ context.Context, e *domain.IterationEvent) {
			m.Iterations.Inc()
			m.Convergence.Set(e.Metric)
		},
		OnSolverStage: func(_ context.Context, e *domain.SolverStageEvent) {
			m.SolverDuration.WithLabelValues(e.Stage).Observe(e.Duration.Seconds())
		},
		OnGuard: func(_ context.Context, e *domain.GuardEvent) {
			m.GuardEvents.WithLabelValues(e.Stage).Inc()
		},
		OnBisectionDone: func(_ context.Context, e *domain.MuEvent) {
			m.BisectionSteps.Observe(float64(e.Steps))
		},
	}
}

// LogHooks returns lifecycle hooks that log every event through the given
// structured logger, mirroring the diagnostics contract: no guard path is
// silently dropped.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIterationStart: func(_ context.Context, e *domain.IterationEvent) {
			logger.Info("iteration start", "iteration", e.Iteration)
		},
		OnIterationEnd: func(_ context.Context, e *domain.IterationEvent) {
			logger.Info("iteration end",
				"iteration", e.Iteration, "metric", e.Metric, "converged", e.Converged)
		},
		OnSolverStage: func(_ context.Context, e *domain.SolverStageEvent) {
			logger.Debug("solver stage",
				"stage", e.Stage, "attempt", e.Attempt, "duration", e.Duration, "is_error", e.IsError)
		},
		OnGuard: func(_ context.Context, e *domain.GuardEvent) {
			logger.Warn("numerical guard",
				"stage", e.Stage, "index", e.Index, "omega", e.Omega, "reason", e.Reason)
		},
		OnBisectionStep: func(_ context.Context, e *domain.BisectionEvent) {
			logger.Debug("bisection step", "iteration", e.Iteration, "mu", e.Mu, "f", e.F)
		},
		OnBisectionDone: func(_ context.Context, e *domain.MuEvent) {
			level := slog.LevelInfo
			if !e.Converged {
				level = slog.LevelWarn
			}
			logger.Log(context.Background(), level, "bisection done",
				"mu", e.Mu, "occupation", e.Occupation, "f", e.F,
				"converged", e.Converged, "steps", e.Steps)
		},
	}
}

// Merge fans one event out to several hook sets.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIterationStart: func(ctx context.Context, e *domain.IterationEvent) {
			for _, h := range hooks {
				h.EmitIterationStart(ctx, e)
			}
		},
		OnIterationEnd: func(ctx context.Context, e *domain.IterationEvent) {
			for _, h := range hooks {
				h.EmitIterationEnd(ctx, e)
			}
		},
		OnSolverStage: func(ctx context.Context, e *domain.SolverStageEvent) {
			for _, h := range hooks {
				h.EmitSolverStage(ctx, e)
			}
		},
		OnGuard: func(ctx context.Context, e *domain.GuardEvent) {
			for _, h := range hooks {
				h.EmitGuard(ctx, e)
			}
		},
		OnBisectionStep: func(ctx context.Context, e *domain.BisectionEvent) {
			for _, h := range hooks {
				h.EmitBisectionStep(ctx, e)
			}
		},
		OnBisectionDone: func(ctx context.Context, e *domain.MuEvent) {
			for _, h := range hooks {
				h.EmitBisectionDone(ctx, e)
			}
		},
	}
}

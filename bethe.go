package bethe

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dmftio/bethe/internal/runtime"
	"github.com/dmftio/bethe/pkg/adapters/file"
	"github.com/dmftio/bethe/pkg/chempot"
	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/mixing"
	"github.com/dmftio/bethe/pkg/ports"
)

// Engine is the high-level entry point for the bethe library. It wraps the
// internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	repo        ports.SeriesRepository
	solver      ports.SolverPipeline
	runtimeOpts []runtime.Option
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithHooks(hooks))
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRepository injects a custom series repository, bypassing the default
// file repository rooted at the working directory.
func WithRepository(repo ports.SeriesRepository) Option {
	return func(e *Engine) { e.repo = repo }
}

// WithSolver sets the external impurity-solver pipeline collaborator.
func WithSolver(solver ports.SolverPipeline) Option {
	return func(e *Engine) { e.solver = solver }
}

// WithRealParts sets the Kramers-Kronig collaborator.
func WithRealParts(rp ports.RealParts) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRealParts(rp))
	}
}

// WithInitializer sets the initial-guess generator for the hybridization.
func WithInitializer(init ports.DeltaInitializer) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithInitializer(init))
	}
}

// WithMixer selects the mixing strategy and parameter.
func WithMixer(m mixing.Mixer, alpha float64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMixer(m, alpha))
	}
}

// WithLoop bounds the outer iteration (max_iter, eps_delta).
func WithLoop(maxIter int, epsDelta float64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLoop(maxIter, epsDelta))
	}
}

// WithChemPot configures the chemical-potential search.
func WithChemPot(p chempot.Params) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithChemPot(p))
	}
}

// WithRunStore enables run checkpointing for stop-and-resume.
func WithRunStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRunStore(store))
	}
}

// WithTraceStore enables external trace recording.
func WithTraceStore(store ports.TraceStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTraceStore(store))
	}
}

// New initializes a new bethe Engine over a solver working directory.
// By default it reads and writes the series files of that directory; the
// WithRepository option bypasses the filesystem entirely.
func New(workDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.repo == nil {
		absPath, err := filepath.Abs(workDir)
		if err != nil {
			return nil, err
		}
		eng.Name = filepath.Base(absPath)
		eng.repo = file.NewRepository(absPath)
	} else if workDir != "" {
		eng.Name = filepath.Base(workDir)
	}

	// Ensure the logger is initialized so we never pass nil downstream.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("workdir", eng.Name)
	}

	runtimeOpts := append([]runtime.Option{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(eng.repo, eng.solver, runtimeOpts...)

	return eng, nil
}

// Run executes the self-consistency loop until a terminal phase is reached.
func (e *Engine) Run(ctx context.Context, runID string) (*domain.RunState, error) {
	return e.runtime.Run(ctx, runID)
}

// Status returns a snapshot of the active run for observers.
func (e *Engine) Status() *domain.RunState {
	return e.runtime.Status()
}

// Repository returns the underlying series repository used by the engine.
func (e *Engine) Repository() ports.SeriesRepository {
	return e.repo
}

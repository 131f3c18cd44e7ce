// Package runtime implements the self-consistency state machine: one outer
// iteration chains the external solver, the self-energy reconstructor, the
// lattice transform, the chemical-potential search, and the mixing step,
// then decides convergence against the previous hybridization.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dmftio/bethe/pkg/adapters/file"
	"github.com/dmftio/bethe/pkg/chempot"
	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/lattice"
	"github.com/dmftio/bethe/pkg/mixing"
	"github.com/dmftio/bethe/pkg/ports"
	"github.com/dmftio/bethe/pkg/sigmatrick"
)

// Engine drives the DMFT loop. It is strictly sequential: iteration N+1
// consumes the full output of iteration N, so there is no iteration-level
// parallelism. The hybridization series and its snapshot are owned
// exclusively by the engine for the duration of an iteration.
type Engine struct {
	repo        ports.SeriesRepository
	solver      ports.SolverPipeline
	realParts   ports.RealParts
	initializer ports.DeltaInitializer
	mixer       mixing.Mixer
	alpha       float64

	maxIter  int
	epsDelta float64
	chemPot  chempot.Params

	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	runStore   ports.RunStore
	traceStore ports.TraceStore

	mu    sync.Mutex
	state *domain.RunState
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks sets the diagnostics sink.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithMixer selects the mixing strategy and parameter.
func WithMixer(m mixing.Mixer, alpha float64) Option {
	return func(e *Engine) { e.mixer, e.alpha = m, alpha }
}

// WithLoop bounds the outer iteration.
func WithLoop(maxIter int, epsDelta float64) Option {
	return func(e *Engine) { e.maxIter, e.epsDelta = maxIter, epsDelta }
}

// WithChemPot configures the chemical-potential search.
func WithChemPot(p chempot.Params) Option {
	return func(e *Engine) { e.chemPot = p }
}

// WithRealParts sets the Kramers-Kronig collaborator deriving Delta-re.dat.
func WithRealParts(rp ports.RealParts) Option {
	return func(e *Engine) { e.realParts = rp }
}

// WithInitializer sets the initial-guess generator.
func WithInitializer(init ports.DeltaInitializer) Option {
	return func(e *Engine) { e.initializer = init }
}

// WithRunStore enables run checkpointing.
func WithRunStore(store ports.RunStore) Option {
	return func(e *Engine) { e.runStore = store }
}

// WithTraceStore enables external trace recording.
func WithTraceStore(store ports.TraceStore) Option {
	return func(e *Engine) { e.traceStore = store }
}

// NewEngine creates the engine over a series repository and a solver
// pipeline.
func NewEngine(repo ports.SeriesRepository, solver ports.SolverPipeline, opts ...Option) *Engine {
	e := &Engine{
		repo:     repo,
		solver:   solver,
		mixer:    mixing.None{},
		alpha:    1,
		maxIter:  30,
		epsDelta: 1e-4,
		chemPot: chempot.Params{
			Target: 0.8, Temperature: 0.02, EpsN: 1e-4,
			MuMin: -10, MuMax: 10, MaxIter: 100,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status returns a snapshot of the active run state, or nil when idle.
// Safe for concurrent use by observers while a run is active.
func (e *Engine) Status() *domain.RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	snapshot := *e.state
	snapshot.History = append([]domain.IterationRecord(nil), e.state.History...)
	return &snapshot
}

func (e *Engine) setState(update func(*domain.RunState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	update(e.state)
}

// Run executes the loop until Converged, Exhausted, or Failed. Both
// Converged and Exhausted return a nil error together with the final state
// and full metric history; Exhausted is reported as a warning. Fatal stage
// errors move the machine to Failed and return the error.
func (e *Engine) Run(ctx context.Context, runID string) (*domain.RunState, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	state, err := e.restore(ctx, runID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()

	conv, err := domain.NewConvergence(e.maxIter, e.epsDelta)
	if err != nil {
		return state, err
	}
	conv.Iteration = state.Iteration

	for iter := state.Iteration + 1; iter <= e.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return e.fail(ctx, state, err)
		}
		e.hooks.EmitIterationStart(ctx, &domain.IterationEvent{Iteration: iter})

		converged, metric, err := e.iterate(ctx, iter, conv)
		if err != nil {
			return e.fail(ctx, state, err)
		}

		rec := domain.IterationRecord{Iteration: iter, Metric: metric, Converged: converged}
		e.setState(func(s *domain.RunState) {
			s.Phase = domain.PhaseSolving
			s.Iteration = iter
			s.History = append(s.History, rec)
		})
		e.hooks.EmitIterationEnd(ctx, &domain.IterationEvent{Iteration: iter, Metric: metric, Converged: converged})

		if e.traceStore != nil {
			if err := e.traceStore.AppendIteration(ctx, runID, rec); err != nil {
				e.logger.Warn("failed to record iteration trace", "err", err)
			}
		}

		if converged {
			e.setState(func(s *domain.RunState) { s.Phase = domain.PhaseConverged })
			e.logger.Info("hybridization converged", "iteration", iter, "metric", metric)
			break
		}
		if iter == e.maxIter {
			e.setState(func(s *domain.RunState) { s.Phase = domain.PhaseExhausted })
			e.logger.Warn("iteration budget exhausted without convergence",
				"max_iter", e.maxIter, "metric", metric)
		}
		e.checkpoint(ctx, state)
	}

	e.checkpoint(ctx, state)
	return e.Status(), nil
}

// iterate performs one outer iteration in strict sequence and returns the
// convergence outcome.
func (e *Engine) iterate(ctx context.Context, iter int, conv *domain.Convergence) (bool, float64, error) {
	// Seed the hybridization on the very first pass of a fresh directory.
	if !e.repo.Exists(file.DeltaFile) {
		if err := e.seed(ctx); err != nil {
			return false, 0, err
		}
	}

	// (a) Snapshot the current hybridization before anything overwrites it.
	if err := e.repo.Snapshot(ctx, file.DeltaFile, file.DeltaPrevFile); err != nil {
		return false, 0, err
	}
	prev, err := e.repo.Load(ctx, file.DeltaPrevFile)
	if err != nil {
		return false, 0, err
	}

	// (b) External impurity-solver pipeline.
	if err := e.solver.Solve(ctx, iter); err != nil {
		return false, 0, err
	}

	// (c) Self-energy reconstruction from the correlators.
	recon, err := e.reconstruct(ctx)
	if err != nil {
		return false, 0, err
	}

	// (d) Lattice transform: self-energy -> G_loc, A(omega), new Delta.
	transformed, err := e.transform(ctx, recon)
	if err != nil {
		return false, 0, err
	}

	// Mix previous and new hybridization, then publish it.
	mixed, err := e.mixer.Combine(prev, transformed.Delta, e.alpha)
	if err != nil {
		return false, 0, err
	}
	if err := e.repo.Store(ctx, file.DeltaFile, mixed); err != nil {
		return false, 0, err
	}
	if e.realParts != nil {
		if err := e.realParts.Derive(ctx, file.DeltaFile, file.DeltaReFile); err != nil {
			return false, 0, err
		}
	}

	// (e) Occupation diagnostic: reported, never fed back into Delta.
	muResult, err := chempot.Bisect(ctx, transformed.Spectral.Sorted(), e.chemPot, e.hooks)
	if err != nil {
		return false, 0, err
	}
	e.setState(func(s *domain.RunState) {
		s.Mu = muResult.Mu
		s.Occupation = muResult.Occupation
	})
	if e.traceStore != nil {
		if err := e.traceStore.AppendBisection(ctx, e.state.RunID, iter, muResult.Trace); err != nil {
			e.logger.Warn("failed to record bisection trace", "err", err)
		}
	}

	// (f) Convergence metric over the shared grid.
	return conv.Check(prev, mixed)
}

func (e *Engine) seed(ctx context.Context) error {
	if e.initializer == nil {
		return fmt.Errorf("%w: no hybridization present and no initializer configured",
			domain.ErrConfiguration)
	}
	e.logger.Info("no hybridization found, generating initial guess")
	im, re, err := e.initializer.Seed(ctx)
	if err != nil {
		return err
	}
	if err := e.repo.Store(ctx, file.DeltaFile, im); err != nil {
		return err
	}
	return e.repo.Store(ctx, file.DeltaReFile, re)
}

func (e *Engine) reconstruct(ctx context.Context) (sigmatrick.Output, error) {
	load := func(name string) (domain.Series, error) { return e.repo.Load(ctx, name) }

	var in sigmatrick.Input
	var err error
	if in.ImG, err = load(file.ImGFile); err != nil {
		return sigmatrick.Output{}, err
	}
	if in.ReG, err = load(file.ReGFile); err != nil {
		return sigmatrick.Output{}, err
	}
	if in.ImF, err = load(file.ImFFile); err != nil {
		return sigmatrick.Output{}, err
	}
	if in.ReF, err = load(file.ReFFile); err != nil {
		return sigmatrick.Output{}, err
	}
	if in.ImDel, err = load(file.DeltaFile); err != nil {
		return sigmatrick.Output{}, err
	}
	if in.ReDel, err = load(file.DeltaReFile); err != nil {
		return sigmatrick.Output{}, err
	}

	out, err := sigmatrick.Reconstruct(ctx, in, e.hooks)
	if err != nil {
		return sigmatrick.Output{}, err
	}

	if err := e.repo.Store(ctx, file.SelfFile, out.Spectral); err != nil {
		return sigmatrick.Output{}, err
	}
	if err := e.repo.Store(ctx, file.ImSigmaFile, out.ImSigma); err != nil {
		return sigmatrick.Output{}, err
	}
	if err := e.repo.Store(ctx, file.ReSigmaFile, out.ReSigma); err != nil {
		return sigmatrick.Output{}, err
	}
	return out, nil
}

func (e *Engine) transform(ctx context.Context, recon sigmatrick.Output) (lattice.Result, error) {
	sigma, err := domain.FromParts(recon.ReSigma, recon.ImSigma)
	if err != nil {
		return lattice.Result{}, err
	}
	res := lattice.Transform(ctx, sigma, e.hooks)

	if err := e.repo.StoreComplex(ctx, file.GLocFile, res.GLoc); err != nil {
		return lattice.Result{}, err
	}
	if err := e.repo.Store(ctx, file.ImAwFile, res.Spectral); err != nil {
		return lattice.Result{}, err
	}
	if err := e.repo.Store(ctx, file.ReAwFile, res.SpectralRe); err != nil {
		return lattice.Result{}, err
	}
	return res, nil
}

func (e *Engine) restore(ctx context.Context, runID string) (*domain.RunState, error) {
	if e.runStore != nil {
		saved, err := e.runStore.Load(ctx, runID)
		switch {
		case err == nil:
			if !saved.Phase.Terminal() {
				e.logger.Info("resuming run", "run_id", runID, "iteration", saved.Iteration)
				return saved, nil
			}
		case !errors.Is(err, domain.ErrRunNotFound):
			return nil, err
		}
	}
	return domain.NewRunState(runID), nil
}

func (e *Engine) checkpoint(ctx context.Context, state *domain.RunState) {
	if e.runStore == nil {
		return
	}
	if err := e.runStore.Save(ctx, e.Status()); err != nil {
		e.logger.Warn("failed to checkpoint run", "run_id", state.RunID, "err", err)
	}
}

func (e *Engine) fail(ctx context.Context, state *domain.RunState, cause error) (*domain.RunState, error) {
	e.setState(func(s *domain.RunState) { s.Phase = domain.PhaseFailed })
	e.checkpoint(ctx, state)
	e.logger.Error("run failed", "run_id", state.RunID, "err", cause)
	return e.Status(), cause
}

func (e *Engine) validate() error {
	if e.repo == nil {
		return fmt.Errorf("%w: series repository is required", domain.ErrConfiguration)
	}
	if e.solver == nil {
		return fmt.Errorf("%w: solver pipeline is required", domain.ErrConfiguration)
	}
	if err := mixing.ValidateAlpha(e.alpha); err != nil {
		return err
	}
	return e.chemPot.Validate()
}

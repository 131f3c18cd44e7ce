package cli

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmftio/bethe"
	"github.com/dmftio/bethe/pkg/adapters/file"
	betehttp "github.com/dmftio/bethe/pkg/adapters/http"
	"github.com/dmftio/bethe/pkg/adapters/process"
	beteredis "github.com/dmftio/bethe/pkg/adapters/redis"
	"github.com/dmftio/bethe/pkg/adapters/seed"
	"github.com/dmftio/bethe/pkg/config"
	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/mixing"
	"github.com/dmftio/bethe/pkg/observability"
	"github.com/dmftio/bethe/pkg/ports"
)

// builtEngine bundles the engine with the collaborators the CLI needs to
// reach after construction.
type builtEngine struct {
	Engine   *bethe.Engine
	RunStore ports.RunStore
	Handler  http.Handler
	traces   *beteredis.Store
}

// Close releases collaborator resources.
func (b *builtEngine) Close() {
	if b.traces != nil {
		b.traces.Close()
	}
}

// createEngine wires an engine from the configuration with standard CLI
// conventions: file repository, external solver pipeline, prometheus and
// log hooks, and optional redis trace recording.
func createEngine(cfg config.Config, opts RunOptions, logger *slog.Logger) (*builtEngine, error) {
	stages, err := cfg.Solver.PipelineStages()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	hooks := observability.Merge(observability.LogHooks(logger), metrics.Hooks())

	pipeline := process.NewPipeline(stages,
		process.WithWorkDir(cfg.Run.WorkDir),
		process.WithRetries(cfg.Solver.Retries, cfg.Solver.RetryDelay.Std()),
		process.WithLogger(logger),
		process.WithHooks(hooks),
	)

	mixer, err := mixing.ForMethod(cfg.Mixing.Method)
	if err != nil {
		return nil, err
	}

	engineOpts := []bethe.Option{
		bethe.WithLogger(logger),
		bethe.WithLifecycleHooks(hooks),
		bethe.WithSolver(pipeline),
		bethe.WithMixer(mixer, cfg.Mixing.Alpha),
		bethe.WithLoop(cfg.Run.MaxIter, cfg.Run.EpsDelta),
		bethe.WithChemPot(cfg.ChemPot.Params()),
		bethe.WithInitializer(seed.FlatGuess{
			Gamma:    cfg.Seed.Gamma,
			OmegaMin: cfg.Grid.OmegaMin,
			OmegaMax: cfg.Grid.OmegaMax,
			Points:   cfg.Grid.Points,
		}),
	}

	// The Kramers-Kronig tool is optional: without it only the imaginary
	// part of the hybridization is refreshed each iteration.
	kk := process.NewKramersKronig(cfg.Run.WorkDir)
	if cfg.Solver.KKCommand != "" {
		kk.Command = cfg.Solver.KKCommand
	}
	if kk.Available() {
		engineOpts = append(engineOpts, bethe.WithRealParts(kk))
	} else {
		logger.Warn("kk tool not found, real parts of the hybridization will not be refreshed",
			"command", kk.Command)
	}

	runStore := file.NewStore(filepath.Join(cfg.Run.WorkDir, ".bethe", "runs"))
	engineOpts = append(engineOpts, bethe.WithRunStore(runStore))

	var traces *beteredis.Store
	if cfg.Redis.Addr != "" {
		traces = beteredis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		engineOpts = append(engineOpts, bethe.WithTraceStore(traces))
	}

	engine, err := bethe.New(cfg.Run.WorkDir, engineOpts...)
	if err != nil {
		return nil, err
	}

	handlerOpts := []betehttp.Option{
		betehttp.WithGatherer(registry),
		betehttp.WithLogger(logger),
	}
	if traces != nil {
		handlerOpts = append(handlerOpts, betehttp.WithTraceStore(traces))
	}
	handler := betehttp.NewHandler(func() *domain.RunState { return engine.Status() }, handlerOpts...)

	return &builtEngine{
		Engine:   engine,
		RunStore: runStore,
		Handler:  handler,
		traces:   traces,
	}, nil
}

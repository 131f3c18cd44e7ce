// Package process invokes the external impurity-solver toolchain (ODE
// adapters, NRG solver, broadening tool, Kramers-Kronig tool) as local
// commands. It follows a strict registry pattern: only configured stages
// run, in their configured order.
package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dmftio/bethe/pkg/domain"
)

// Stage is one allow-listed pipeline command.
type Stage struct {
	// Name identifies the stage in logs and diagnostics.
	Name string
	// Command and Args are executed verbatim; no shell is involved.
	Command string
	Args    []string
	// Env entries are appended to the inherited environment.
	Env map[string]string
	// LogFile, when set, receives the combined stage output (appended).
	LogFile string
	// Expects lists files that must exist after a successful run;
	// a missing file fails the attempt even on exit code 0.
	Expects []string
}

// Pipeline implements ports.SolverPipeline by running registered stages
// sequentially. Each stage gets a fixed number of attempts with a fixed
// inter-attempt delay; a stage that exhausts its attempts fails the whole
// pipeline with domain.ErrExternalSolver.
type Pipeline struct {
	stages  []Stage
	dir     string
	retries int
	delay   time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkDir sets the working directory for all stages.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) { p.dir = dir }
}

// WithRetries sets the number of additional attempts per stage.
func WithRetries(n int, delay time.Duration) Option {
	return func(p *Pipeline) { p.retries, p.delay = n, delay }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithHooks sets the diagnostics sink for stage events.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) { p.hooks = hooks }
}

// NewPipeline creates a pipeline over the given stages.
func NewPipeline(stages []Stage, opts ...Option) *Pipeline {
	p := &Pipeline{
		stages: stages,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Solve runs every stage in order. Cancellation is honored between stages
// and propagated into the running command via exec.CommandContext.
func (p *Pipeline) Solve(ctx context.Context, iteration int) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.runStage(ctx, stage); err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, err)
		}
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage) error {
	var lastErr error
	attempts := p.retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		lastErr = p.runOnce(ctx, stage)
		p.hooks.EmitSolverStage(ctx, &domain.SolverStageEvent{
			Stage:    stage.Name,
			Attempt:  attempt,
			Duration: time.Since(start),
			IsError:  lastErr != nil,
		})
		if lastErr == nil {
			return nil
		}
		p.logger.Warn("solver stage failed",
			"stage", stage.Name, "attempt", attempt, "err", lastErr)

		if attempt < attempts {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("%w: stage %s failed after %d attempts: %v",
		domain.ErrExternalSolver, stage.Name, attempts, lastErr)
}

func (p *Pipeline) runOnce(ctx context.Context, stage Stage) error {
	cmd := exec.CommandContext(ctx, stage.Command, stage.Args...)
	cmd.Dir = p.dir
	cmd.Env = os.Environ()
	for k, v := range stage.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	out, err := cmd.CombinedOutput()
	if logErr := p.appendLog(stage.LogFile, out); logErr != nil {
		p.logger.Warn("failed to write stage log", "stage", stage.Name, "err", logErr)
	}
	if err != nil {
		return fmt.Errorf("command %q: %v", stage.Command, err)
	}

	for _, want := range stage.Expects {
		path := want
		if p.dir != "" {
			path = filepath.Join(p.dir, want)
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return fmt.Errorf("expected output %s missing after %q", want, stage.Command)
		}
	}
	return nil
}

func (p *Pipeline) appendLog(name string, out []byte) error {
	if name == "" || len(out) == 0 {
		return nil
	}
	path := name
	if p.dir != "" {
		path = filepath.Join(p.dir, name)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(out)
	return err
}

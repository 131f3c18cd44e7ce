// Package cli implements the command logic behind cmd/bethe: it turns a
// loaded configuration into a fully wired engine and drives the run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dmftio/bethe/internal/logging"
	"github.com/dmftio/bethe/internal/presentation/tui"
	"github.com/dmftio/bethe/pkg/config"
	"github.com/dmftio/bethe/pkg/domain"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	WorkDir    string // overrides run.workdir when set
	RunID      string
	Resume     bool
	Serve      bool
	Debug      bool
	LogFile    string
}

// ExecuteRun handles the 'run' command logic.
func ExecuteRun(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.WorkDir != "" {
		cfg.Run.WorkDir = opts.WorkDir
	}

	logger, closeLog, err := buildLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	if interactive() {
		tui.PrintBanner()
	}

	built, err := createEngine(cfg, opts, logger)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}
	defer built.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Serve {
		startDiagnostics(ctx, cfg.Serve.Addr, built, logger)
	}

	// A fresh run discards any stale checkpoint so iteration restarts at 1.
	if !opts.Resume && built.RunStore != nil {
		if err := built.RunStore.Delete(ctx, opts.RunID); err != nil {
			logger.Warn("failed to clear previous checkpoint", "run_id", opts.RunID, "err", err)
		}
	}

	state, runErr := built.Engine.Run(ctx, opts.RunID)
	if interactive() {
		tui.PrintSummary(os.Stdout, state)
	}
	if runErr != nil {
		return runErr
	}
	if state != nil && state.Phase == domain.PhaseExhausted {
		logger.Warn("run ended without convergence", "run_id", opts.RunID)
	}
	return nil
}

func buildLogger(opts RunOptions) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.LogFile == "" {
		return logging.New(level), func() {}, nil
	}
	f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.LogFile, err)
	}
	return logging.NewWithFile(level, f), func() { f.Close() }, nil
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func startDiagnostics(ctx context.Context, addr string, built *builtEngine, logger *slog.Logger) {
	srv := &http.Server{Addr: addr, Handler: built.Handler}
	go func() {
		logger.Info("diagnostics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("diagnostics server stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
}

package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmftio/bethe/pkg/adapters/file"
	betehttp "github.com/dmftio/bethe/pkg/adapters/http"
	beteredis "github.com/dmftio/bethe/pkg/adapters/redis"
	"github.com/dmftio/bethe/pkg/config"
	"github.com/dmftio/bethe/pkg/domain"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	ConfigPath string
	WorkDir    string
	RunID      string
	Addr       string
	Debug      bool
}

// ExecuteServe exposes diagnostics for checkpointed runs without driving a
// run itself. Status is read from the checkpoint on every request, so a
// concurrently running loop in another process is observable live.
func ExecuteServe(opts ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.WorkDir != "" {
		cfg.Run.WorkDir = opts.WorkDir
	}
	if opts.Addr != "" {
		cfg.Serve.Addr = opts.Addr
	}

	logger, closeLog, err := buildLogger(RunOptions{Debug: opts.Debug})
	if err != nil {
		return err
	}
	defer closeLog()

	runStore := file.NewStore(filepath.Join(cfg.Run.WorkDir, ".bethe", "runs"))
	status := func() *domain.RunState {
		state, err := runStore.Load(context.Background(), opts.RunID)
		if err != nil {
			return nil
		}
		return state
	}

	handlerOpts := []betehttp.Option{
		betehttp.WithGatherer(prometheus.NewRegistry()),
		betehttp.WithLogger(logger),
	}
	if cfg.Redis.Addr != "" {
		traces := beteredis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer traces.Close()
		handlerOpts = append(handlerOpts, betehttp.WithTraceStore(traces))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Serve.Addr, Handler: betehttp.NewHandler(status, handlerOpts...)}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	logger.Info("diagnostics server listening", "addr", cfg.Serve.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Package config loads and validates the run configuration.
//
// Validation happens once, at load time; every violation is a
// domain.ErrConfiguration and aborts before any iteration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmftio/bethe/pkg/chempot"
	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/mixing"
)

// Duration wraps time.Duration with YAML string parsing ("5s", "250ms").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full run configuration.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Mixing  MixingConfig  `yaml:"mixing"`
	ChemPot ChemPotConfig `yaml:"chempot"`
	Grid    GridConfig    `yaml:"grid"`
	Seed    SeedConfig    `yaml:"seed"`
	Solver  SolverConfig  `yaml:"solver"`
	Serve   ServeConfig   `yaml:"serve"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RunConfig bounds the outer self-consistency loop.
type RunConfig struct {
	WorkDir  string  `yaml:"workdir"`
	MaxIter  int     `yaml:"max_iter"`
	EpsDelta float64 `yaml:"eps_delta"`
}

// MixingConfig selects the hybridization mixing strategy.
type MixingConfig struct {
	Method string  `yaml:"method"`
	Alpha  float64 `yaml:"alpha"`
}

// ChemPotConfig configures the chemical-potential bisection.
type ChemPotConfig struct {
	Target      float64 `yaml:"n_target"`
	Temperature float64 `yaml:"temperature"`
	EpsN        float64 `yaml:"eps_n"`
	MuMin       float64 `yaml:"mu_min"`
	MuMax       float64 `yaml:"mu_max"`
	MaxIter     int     `yaml:"max_iter"`
}

// Params converts to the solver parameter set.
func (c ChemPotConfig) Params() chempot.Params {
	return chempot.Params{
		Target:      c.Target,
		Temperature: c.Temperature,
		EpsN:        c.EpsN,
		MuMin:       c.MuMin,
		MuMax:       c.MuMax,
		MaxIter:     c.MaxIter,
	}
}

// GridConfig defines the frequency grid of the initial guess.
type GridConfig struct {
	OmegaMin float64 `yaml:"omega_min"`
	OmegaMax float64 `yaml:"omega_max"`
	Points   int     `yaml:"points"`
}

// SeedConfig configures the initial hybridization guess.
type SeedConfig struct {
	Gamma float64 `yaml:"gamma"`
}

// SolverConfig describes the external solver pipeline.
type SolverConfig struct {
	Retries    int           `yaml:"retries"`
	RetryDelay Duration      `yaml:"retry_delay"`
	KKCommand  string        `yaml:"kk_command"`
	Stages     []StageConfig `yaml:"stages"`
}

// ServeConfig configures the diagnostics HTTP server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig configures the optional trace store. An empty address
// disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration used when no file is present. The
// numbers are the conventional defaults of the solver toolchain.
func Default() Config {
	return Config{
		Run:     RunConfig{WorkDir: ".", MaxIter: 30, EpsDelta: 1e-4},
		Mixing:  MixingConfig{Method: "none", Alpha: 0.1},
		ChemPot: ChemPotConfig{Target: 0.8, Temperature: 0.02, EpsN: 1e-4, MuMin: -10, MuMax: 10, MaxIter: 100},
		Grid:    GridConfig{OmegaMin: -4, OmegaMax: 4, Points: 300},
		Seed:    SeedConfig{Gamma: 0.3},
		Solver:  SolverConfig{Retries: 2, RetryDelay: Duration(5 * time.Second), KKCommand: "kk"},
		Serve:   ServeConfig{Addr: ":2112"},
	}
}

// Load reads a YAML configuration file over the defaults. A missing file
// yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every statically checkable constraint.
func (c Config) Validate() error {
	if c.Run.MaxIter < 1 {
		return fmt.Errorf("%w: run.max_iter must be >= 1, got %d", domain.ErrConfiguration, c.Run.MaxIter)
	}
	if c.Run.EpsDelta <= 0 {
		return fmt.Errorf("%w: run.eps_delta must be > 0, got %g", domain.ErrConfiguration, c.Run.EpsDelta)
	}
	if err := mixing.ValidateAlpha(c.Mixing.Alpha); err != nil {
		return err
	}
	if _, err := mixing.ForMethod(c.Mixing.Method); err != nil {
		return err
	}
	if err := c.ChemPot.Params().Validate(); err != nil {
		return err
	}
	if c.Grid.Points < 2 {
		return fmt.Errorf("%w: grid.points must be >= 2, got %d", domain.ErrConfiguration, c.Grid.Points)
	}
	if c.Grid.OmegaMin >= c.Grid.OmegaMax {
		return fmt.Errorf("%w: grid [%g, %g] is not ordered", domain.ErrConfiguration, c.Grid.OmegaMin, c.Grid.OmegaMax)
	}
	if c.Solver.Retries < 0 {
		return fmt.Errorf("%w: solver.retries must be >= 0, got %d", domain.ErrConfiguration, c.Solver.Retries)
	}
	for i, stage := range c.Solver.Stages {
		if err := stage.Validate(); err != nil {
			return fmt.Errorf("solver.stages[%d]: %w", i, err)
		}
	}
	return nil
}

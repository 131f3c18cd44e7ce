package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe/pkg/config"
	"github.com/dmftio/bethe/pkg/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bethe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, def, cfg)
	assert.Equal(t, 30, cfg.Run.MaxIter)
	assert.Equal(t, 1e-4, cfg.Run.EpsDelta)
	assert.Equal(t, 0.8, cfg.ChemPot.Target)
	assert.Equal(t, 0.02, cfg.ChemPot.Temperature)
	assert.Equal(t, 300, cfg.Grid.Points)
	assert.Equal(t, 0.3, cfg.Seed.Gamma)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
run:
  max_iter: 50
  eps_delta: 1e-6
mixing:
  method: linear
  alpha: 0.5
solver:
  retry_delay: 250ms
  stages:
    - name: nrg
      command: nrg-solver
      args: ["-p", "param.loop"]
      options:
        log_file: nrg.log
        expects: [c-imG.dat, c-reG.dat]
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Run.MaxIter)
	assert.Equal(t, 1e-6, cfg.Run.EpsDelta)
	assert.Equal(t, "linear", cfg.Mixing.Method)
	assert.Equal(t, 250*time.Millisecond, cfg.Solver.RetryDelay.Std())
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.8, cfg.ChemPot.Target)

	stages, err := cfg.Solver.PipelineStages()
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "nrg", stages[0].Name)
	assert.Equal(t, []string{"-p", "param.loop"}, stages[0].Args)
	assert.Equal(t, "nrg.log", stages[0].LogFile)
	assert.Equal(t, []string{"c-imG.dat", "c-reG.dat"}, stages[0].Expects)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "run: [broken\n")
	_, err := config.Load(path)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"max_iter", func(c *config.Config) { c.Run.MaxIter = 0 }},
		{"eps_delta", func(c *config.Config) { c.Run.EpsDelta = 0 }},
		{"alpha", func(c *config.Config) { c.Mixing.Alpha = 1.5 }},
		{"method", func(c *config.Config) { c.Mixing.Method = "newton" }},
		{"eps_n", func(c *config.Config) { c.ChemPot.EpsN = 0 }},
		{"mu bracket", func(c *config.Config) { c.ChemPot.MuMin = 11 }},
		{"grid points", func(c *config.Config) { c.Grid.Points = 1 }},
		{"grid order", func(c *config.Config) { c.Grid.OmegaMin = 5 }},
		{"retries", func(c *config.Config) { c.Solver.Retries = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %v", err)
		})
	}
}

func TestStageConfig_Validate(t *testing.T) {
	ok := config.StageConfig{Name: "nrg", Command: "nrg-solver"}
	assert.NoError(t, ok.Validate())

	noName := config.StageConfig{Command: "x"}
	assert.True(t, errors.Is(noName.Validate(), domain.ErrConfiguration))

	noCommand := config.StageConfig{Name: "x"}
	assert.True(t, errors.Is(noCommand.Validate(), domain.ErrConfiguration))
}

func TestStageConfig_UnknownOptionRejected(t *testing.T) {
	sc := config.StageConfig{
		Name:    "nrg",
		Command: "nrg-solver",
		Options: map[string]any{"log_file": "a.log", "tiemout": "5s"},
	}
	err := sc.Validate()
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.Contains(t, err.Error(), "tiemout")
}

func TestStageConfig_EnvDecode(t *testing.T) {
	sc := config.StageConfig{
		Name:    "nrg",
		Command: "nrg-solver",
		Options: map[string]any{"env": map[string]any{"OMP_NUM_THREADS": "4"}},
	}
	opts, err := sc.DecodeOptions()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OMP_NUM_THREADS": "4"}, opts.Env)
}

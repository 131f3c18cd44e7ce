package bethe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe"
	"github.com/dmftio/bethe/pkg/adapters/file"
	"github.com/dmftio/bethe/pkg/adapters/seed"
	"github.com/dmftio/bethe/pkg/domain"
)

// echoSolver writes correlators for G = -i and F = 0 on the current
// hybridization grid, the minimal well-formed solver output.
type echoSolver struct {
	repo *file.Repository
}

func (s *echoSolver) Solve(ctx context.Context, _ int) error {
	delta, err := s.repo.Load(ctx, file.DeltaFile)
	if err != nil {
		return err
	}
	write := func(name string, v float64) error {
		out := make(domain.Series, len(delta))
		for i, p := range delta {
			out[i] = domain.Point{Omega: p.Omega, Value: v}
		}
		return s.repo.Store(ctx, name, out)
	}
	for name, v := range map[string]float64{
		file.ImGFile: -1, file.ReGFile: 0, file.ImFFile: 0, file.ReFFile: 0,
	} {
		if err := write(name, v); err != nil {
			return err
		}
	}
	return nil
}

func TestEngineFacade_Run(t *testing.T) {
	dir := t.TempDir()

	eng, err := bethe.New(dir,
		bethe.WithSolver(&echoSolver{repo: file.NewRepository(dir)}),
		bethe.WithInitializer(seed.FlatGuess{Gamma: 0.3, OmegaMin: -4, OmegaMax: 4, Points: 201}),
	)
	require.NoError(t, err)

	state, err := eng.Run(context.Background(), "facade-run")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseConverged, state.Phase)

	// Status reflects the finished run.
	status := eng.Status()
	require.NotNil(t, status)
	assert.Equal(t, "facade-run", status.RunID)
	assert.Equal(t, domain.PhaseConverged, status.Phase)
}

func TestEngineFacade_CustomRepository(t *testing.T) {
	dir := t.TempDir()
	repo := file.NewRepository(dir)

	eng, err := bethe.New("",
		bethe.WithRepository(repo),
		bethe.WithSolver(&echoSolver{repo: repo}),
		bethe.WithInitializer(seed.FlatGuess{Gamma: 0.3, OmegaMin: -4, OmegaMax: 4, Points: 101}),
	)
	require.NoError(t, err)
	assert.Same(t, repo, eng.Repository())

	_, err = eng.Run(context.Background(), "custom-repo")
	require.NoError(t, err)
}

func TestEngineFacade_Hooks(t *testing.T) {
	dir := t.TempDir()

	var iterations int
	hooks := domain.LifecycleHooks{
		OnIterationEnd: func(context.Context, *domain.IterationEvent) { iterations++ },
	}

	eng, err := bethe.New(dir,
		bethe.WithSolver(&echoSolver{repo: file.NewRepository(dir)}),
		bethe.WithInitializer(seed.FlatGuess{Gamma: 0.3, OmegaMin: -4, OmegaMax: 4, Points: 101}),
		bethe.WithLifecycleHooks(hooks),
	)
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), "hooked")
	require.NoError(t, err)
	assert.Equal(t, 2, iterations)
}

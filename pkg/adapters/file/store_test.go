package file_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe/pkg/adapters/file"
	"github.com/dmftio/bethe/pkg/domain"
)

func TestStore_SaveLoad(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	state := domain.NewRunState("run-1")
	state.Phase = domain.PhaseSolving
	state.Iteration = 7
	state.Mu = 0.42
	state.History = []domain.IterationRecord{
		{Iteration: 6, Metric: 0.02},
		{Iteration: 7, Metric: 0.005},
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestStore_LoadMissing(t *testing.T) {
	store := file.NewStore(t.TempDir())
	_, err := store.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrRunNotFound))
}

func TestStore_Delete(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewRunState("run-1")))
	require.NoError(t, store.Delete(ctx, "run-1"))
	_, err := store.Load(ctx, "run-1")
	assert.True(t, errors.Is(err, domain.ErrRunNotFound))

	// Deleting a missing run is tolerated.
	assert.NoError(t, store.Delete(ctx, "run-1"))
}

func TestStore_SaveValidation(t *testing.T) {
	store := file.NewStore(t.TempDir())
	assert.Error(t, store.Save(context.Background(), nil))
	assert.Error(t, store.Save(context.Background(), &domain.RunState{}))
}

package chempot_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe/pkg/chempot"
	"github.com/dmftio/bethe/pkg/domain"
)

// uniform builds a flat spectral density of total weight 1 on [-1, 1].
func uniform(n int) domain.Series {
	out := make(domain.Series, n)
	for i := range out {
		out[i] = domain.Point{Omega: -1 + 2*float64(i)/float64(n-1), Value: 0.5}
	}
	return out
}

func TestOccupation_Monotonic(t *testing.T) {
	a := uniform(401)
	prev := -1.0
	for mu := -2.0; mu <= 2.0; mu += 0.25 {
		n := chempot.Occupation(a, mu, 0.02)
		assert.Greater(t, n, prev)
		prev = n
	}
	// Full band: occupation saturates at the total weight.
	assert.InDelta(t, 1.0, chempot.Occupation(a, 5, 0.02), 1e-6)
	assert.InDelta(t, 0.0, chempot.Occupation(a, -5, 0.02), 1e-6)
}

func TestOccupation_DegenerateSeries(t *testing.T) {
	assert.Equal(t, 0.0, chempot.Occupation(nil, 0, 0.02))
	assert.Equal(t, 0.0, chempot.Occupation(domain.Series{{Omega: 0, Value: 1}}, 0, 0.02))
}

func TestBisect_HalfFilling(t *testing.T) {
	// Symmetric flat band at n* = 0.5 puts mu at the band center.
	p := chempot.Params{
		Target: 0.5, Temperature: 0.02, EpsN: 1e-6,
		MuMin: -5, MuMax: 5, MaxIter: 100,
	}
	res, err := chempot.Bisect(context.Background(), uniform(801), p, domain.LifecycleHooks{})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.InDelta(t, 0.0, res.Mu, 1e-4)
	assert.InDelta(t, 0.5, res.Occupation, 1e-5)
	assert.NotEmpty(t, res.Trace)
	// ceil(log2(bracket/precision)) bounds the step count.
	assert.LessOrEqual(t, len(res.Trace), 100)
}

func TestBisect_OffHalfFilling(t *testing.T) {
	// n* = 0.8 on a flat band of weight 1 on [-1, 1]: at T -> 0 the
	// occupation reaches 0.8 at mu = 0.6.
	p := chempot.Params{
		Target: 0.8, Temperature: 1e-3, EpsN: 1e-6,
		MuMin: -5, MuMax: 5, MaxIter: 200,
	}
	res, err := chempot.Bisect(context.Background(), uniform(4001), p, domain.LifecycleHooks{})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.InDelta(t, 0.6, res.Mu, 5e-3)
}

func TestBisect_ExhaustionNonFatal(t *testing.T) {
	// A budget too small to reach eps_n ends without error; the result
	// carries the best estimate and Converged == false.
	p := chempot.Params{
		Target: 0.5, Temperature: 0.02, EpsN: 1e-12,
		MuMin: -5, MuMax: 5, MaxIter: 3,
	}
	res, err := chempot.Bisect(context.Background(), uniform(101), p, domain.LifecycleHooks{})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Len(t, res.Trace, 3)
	assert.False(t, math.IsNaN(res.Mu))
}

func TestBisect_TraceIsAppendOnly(t *testing.T) {
	var steps []int
	hooks := domain.LifecycleHooks{
		OnBisectionStep: func(_ context.Context, ev *domain.BisectionEvent) {
			steps = append(steps, ev.Iteration)
		},
	}
	p := chempot.Params{
		Target: 0.5, Temperature: 0.02, EpsN: 1e-6,
		MuMin: -5, MuMax: 5, MaxIter: 100,
	}
	res, err := chempot.Bisect(context.Background(), uniform(801), p, hooks)
	require.NoError(t, err)

	require.Len(t, steps, len(res.Trace))
	for i, step := range res.Trace {
		assert.Equal(t, i, step.Iteration)
		assert.Equal(t, i, steps[i])
	}
}

func TestBisect_InvalidParams(t *testing.T) {
	cases := []chempot.Params{
		{Target: 0.5, Temperature: 0.02, EpsN: 0, MuMin: -5, MuMax: 5, MaxIter: 10},
		{Target: 0.5, Temperature: 0.02, EpsN: 1e-4, MuMin: 5, MuMax: -5, MaxIter: 10},
		{Target: 0.5, Temperature: 0.02, EpsN: 1e-4, MuMin: -5, MuMax: 5, MaxIter: 0},
		{Target: 0.5, Temperature: -1, EpsN: 1e-4, MuMin: -5, MuMax: 5, MaxIter: 10},
	}
	for _, p := range cases {
		_, err := chempot.Bisect(context.Background(), uniform(11), p, domain.LifecycleHooks{})
		assert.True(t, errors.Is(err, domain.ErrConfiguration), "params %+v", p)
	}
}

func TestBisect_UnsortedSeries(t *testing.T) {
	a := domain.Series{{Omega: 1, Value: 0.5}, {Omega: -1, Value: 0.5}}
	p := chempot.Params{Target: 0.5, Temperature: 0.02, EpsN: 1e-4, MuMin: -5, MuMax: 5, MaxIter: 10}

	_, err := chempot.Bisect(context.Background(), a, p, domain.LifecycleHooks{})
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
}

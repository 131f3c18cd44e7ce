package sigmatrick_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/sigmatrick"
)

// constInput builds a three-point input with constant correlator values.
func constInput(reG, imG, reF, imF, reDel, imDel float64) sigmatrick.Input {
	omegas := []float64{-1, 0, 1}
	mk := func(v float64) domain.Series {
		out := make(domain.Series, len(omegas))
		for i, om := range omegas {
			out[i] = domain.Point{Omega: om, Value: v}
		}
		return out
	}
	return sigmatrick.Input{
		ReG: mk(reG), ImG: mk(imG),
		ReF: mk(reF), ImF: mk(imF),
		ReDel: mk(reDel), ImDel: mk(imDel),
	}
}

func TestReconstruct(t *testing.T) {
	// G = -i, F = -0.5i: sigma = F/G = 0.5 everywhere.
	in := constInput(0, -1, 0, -0.5, 0, -0.2)
	out, err := sigmatrick.Reconstruct(context.Background(), in, domain.LifecycleHooks{})
	require.NoError(t, err)

	require.Len(t, out.ImSigma, 3)
	for i := range out.ImSigma {
		assert.InDelta(t, 0.0, out.ImSigma[i].Value, 1e-15)
		assert.InDelta(t, 0.5, out.ReSigma[i].Value, 1e-15)
	}

	// At omega = 0: gf = 1/(0 + (0 - 0.2i) - 0.5) = 1/(-0.5 - 0.2i).
	gf := 1 / complex(-0.5, -0.2)
	assert.InDelta(t, -imag(gf)/math.Pi, out.Spectral[1].Value, 1e-15)
	assert.Equal(t, 0.0, out.Spectral[1].Omega)
}

func TestReconstruct_SingularG(t *testing.T) {
	// A vanishing G zeroes sigma for that point and reports a guard; the
	// point itself survives.
	in := constInput(0, 0, 0.3, 0, 0, -0.2)

	var guards []*domain.GuardEvent
	hooks := domain.LifecycleHooks{
		OnGuard: func(_ context.Context, ev *domain.GuardEvent) { guards = append(guards, ev) },
	}
	out, err := sigmatrick.Reconstruct(context.Background(), in, hooks)
	require.NoError(t, err)

	require.Len(t, guards, 3)
	assert.Equal(t, "sigmatrick", guards[0].Stage)
	require.Len(t, out.ReSigma, 3)
	for i := range out.ReSigma {
		assert.Equal(t, 0.0, out.ReSigma[i].Value)
		assert.Equal(t, 0.0, out.ImSigma[i].Value)
	}
}

func TestReconstruct_SingularDenominatorSkipsPoint(t *testing.T) {
	// At omega = 0 with Delta = 0 and sigma = 0 the denominator vanishes:
	// that row is dropped from all three outputs, the others survive.
	in := constInput(0, 0, 0, 0, 0, 0)

	var guards []*domain.GuardEvent
	hooks := domain.LifecycleHooks{
		OnGuard: func(_ context.Context, ev *domain.GuardEvent) { guards = append(guards, ev) },
	}
	out, err := sigmatrick.Reconstruct(context.Background(), in, hooks)
	require.NoError(t, err)

	require.Len(t, out.Spectral, 2)
	assert.Equal(t, -1.0, out.Spectral[0].Omega)
	assert.Equal(t, 1.0, out.Spectral[1].Omega)
	assert.Len(t, out.ImSigma, 2)
	assert.Len(t, out.ReSigma, 2)

	// 3 |G| guards plus 1 denominator guard at omega = 0.
	assert.Len(t, guards, 4)
}

func TestReconstruct_LengthMismatch(t *testing.T) {
	in := constInput(0, -1, 0, -0.5, 0, -0.2)
	in.ReF = in.ReF[:2]

	_, err := sigmatrick.Reconstruct(context.Background(), in, domain.LifecycleHooks{})
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
}

func TestReconstruct_GridMismatch(t *testing.T) {
	in := constInput(0, -1, 0, -0.5, 0, -0.2)
	in.ImDel = in.ImDel.Copy()
	in.ImDel[1].Omega = 0.25

	_, err := sigmatrick.Reconstruct(context.Background(), in, domain.LifecycleHooks{})
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
}

package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmftio/bethe/pkg/domain"
)

func TestFromParts(t *testing.T) {
	re := domain.Series{{Omega: -1, Value: 0.5}, {Omega: 0, Value: 1.0}, {Omega: 1, Value: 0.5}}
	im := domain.Series{{Omega: -1, Value: -0.1}, {Omega: 0, Value: -0.2}, {Omega: 1, Value: -0.1}}

	c, err := domain.FromParts(re, im)
	require.NoError(t, err)
	require.Len(t, c, 3)
	assert.Equal(t, complex(1.0, -0.2), c[1].Value)
	assert.Equal(t, 0.0, c[1].Omega)

	// Round trip back to parts
	assert.Equal(t, re, c.Real())
	assert.Equal(t, im, c.Imag())
}

func TestFromParts_LengthMismatch(t *testing.T) {
	re := domain.Series{{Omega: 0, Value: 1}}
	im := domain.Series{{Omega: 0, Value: 1}, {Omega: 1, Value: 2}}

	_, err := domain.FromParts(re, im)
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
}

func TestFromParts_GridMismatch(t *testing.T) {
	re := domain.Series{{Omega: 0, Value: 1}, {Omega: 1, Value: 2}}
	im := domain.Series{{Omega: 0, Value: 1}, {Omega: 1.5, Value: 2}}

	_, err := domain.FromParts(re, im)
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
}

func TestMaxAbsDiff(t *testing.T) {
	a := domain.Series{{Omega: 0, Value: 0.1}, {Omega: 1, Value: 0.2}}
	b := domain.Series{{Omega: 0, Value: 0.1}, {Omega: 1, Value: 0.25}}

	diff, err := a.MaxAbsDiff(b)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, diff, 1e-15)

	_, err = a.MaxAbsDiff(domain.Series{{Omega: 2, Value: 0}})
	assert.True(t, errors.Is(err, domain.ErrDataFormat))
}

func TestSortedAndAscending(t *testing.T) {
	s := domain.Series{{Omega: 1, Value: 2}, {Omega: -1, Value: 1}, {Omega: 0, Value: 3}}
	assert.False(t, s.Ascending())

	sorted := s.Sorted()
	assert.True(t, sorted.Ascending())
	assert.Equal(t, []float64{-1, 0, 1}, sorted.Omegas())
	// Original untouched
	assert.Equal(t, 1.0, s[0].Omega)
}

func TestCopyIndependence(t *testing.T) {
	s := domain.Series{{Omega: 0, Value: 1}}
	c := s.Copy()
	c[0].Value = 42
	assert.Equal(t, 1.0, s[0].Value)
}

package domain

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

// GridTolerance is the maximum allowed omega deviation between co-indexed
// points of series that are consumed together.
const GridTolerance = 1e-12

// Point is a single (omega, value) sample of a real frequency series.
type Point struct {
	Omega float64 `json:"omega"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of real (omega, value) pairs.
// Consumers that integrate over the grid require omega strictly ascending;
// producers are responsible for that ordering.
type Series []Point

// CPoint is a single (omega, value) sample of a complex frequency series.
type CPoint struct {
	Omega float64
	Value complex128
}

// ComplexSeries is an ordered sequence of complex (omega, value) pairs.
type ComplexSeries []CPoint

// Omegas returns the frequency grid of the series.
func (s Series) Omegas() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Omega
	}
	return out
}

// Values returns the sampled values of the series.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Copy returns an independent copy of the series. The engine uses it to
// snapshot the hybridization before overwriting it.
func (s Series) Copy() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Sorted returns a copy of the series ordered by ascending omega.
func (s Series) Sorted() Series {
	out := s.Copy()
	sort.Slice(out, func(i, j int) bool { return out[i].Omega < out[j].Omega })
	return out
}

// Ascending reports whether the frequency grid is strictly sorted ascending.
func (s Series) Ascending() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Omega <= s[i-1].Omega {
			return false
		}
	}
	return true
}

// GridMatches reports whether two series share the same frequency grid
// within GridTolerance.
func (s Series) GridMatches(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if math.Abs(s[i].Omega-other[i].Omega) > GridTolerance {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the maximum pointwise |s - other| over the shared grid.
// It returns a DataFormatError if the grids do not match.
func (s Series) MaxAbsDiff(other Series) (float64, error) {
	if !s.GridMatches(other) {
		return 0, fmt.Errorf("%w: series of length %d vs %d on different grids",
			ErrDataFormat, len(s), len(other))
	}
	max := 0.0
	for i := range s {
		if d := math.Abs(s[i].Value - other[i].Value); d > max {
			max = d
		}
	}
	return max, nil
}

// FromParts assembles a complex series from its real and imaginary parts.
// The two inputs must share one frequency grid; a mismatch in length or in
// any omega (beyond GridTolerance) is fatal.
func FromParts(re, im Series) (ComplexSeries, error) {
	if len(re) != len(im) {
		return nil, fmt.Errorf("%w: real part has %d points, imaginary part has %d",
			ErrDataFormat, len(re), len(im))
	}
	out := make(ComplexSeries, len(re))
	for i := range re {
		if math.Abs(re[i].Omega-im[i].Omega) > GridTolerance {
			return nil, fmt.Errorf("%w: omega mismatch at index %d (%g vs %g)",
				ErrDataFormat, i, re[i].Omega, im[i].Omega)
		}
		out[i] = CPoint{Omega: re[i].Omega, Value: complex(re[i].Value, im[i].Value)}
	}
	return out, nil
}

// Imag extracts the imaginary part of the series as a real series.
func (s ComplexSeries) Imag() Series {
	out := make(Series, len(s))
	for i, p := range s {
		out[i] = Point{Omega: p.Omega, Value: imag(p.Value)}
	}
	return out
}

// Real extracts the real part of the series as a real series.
func (s ComplexSeries) Real() Series {
	out := make(Series, len(s))
	for i, p := range s {
		out[i] = Point{Omega: p.Omega, Value: real(p.Value)}
	}
	return out
}

// Abs returns |value| at index i.
func (s ComplexSeries) Abs(i int) float64 {
	return cmplx.Abs(s[i].Value)
}

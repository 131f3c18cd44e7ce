package ports

import (
	"context"

	"github.com/dmftio/bethe/pkg/domain"
)

// SeriesRepository reads and writes the frequency-series files the loop
// exchanges with the external solver pipeline (Delta.dat, the correlator
// files, the reconstructor outputs). Names are relative file names within
// one working directory.
type SeriesRepository interface {
	// Load reads a two-column series file.
	// A missing or malformed file is a domain.ErrDataFormat.
	Load(ctx context.Context, name string) (domain.Series, error)

	// Store writes a two-column series file atomically.
	Store(ctx context.Context, name string, s domain.Series) error

	// StoreComplex writes a three-column (omega, re, im) series file.
	StoreComplex(ctx context.Context, name string, s domain.ComplexSeries) error

	// Snapshot captures a point-in-time copy of name under snapshotName.
	Snapshot(ctx context.Context, name, snapshotName string) error

	// Exists reports whether the named series file is present.
	Exists(name string) bool
}

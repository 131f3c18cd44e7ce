package ports

import (
	"context"

	"github.com/dmftio/bethe/pkg/domain"
)

// DeltaInitializer produces the initial-guess hybridization when no prior
// series exists. It returns the imaginary and real parts on one grid.
type DeltaInitializer interface {
	Seed(ctx context.Context) (im, re domain.Series, err error)
}

/*
Package domain contains the core domain models for the bethe self-consistency
engine.

It defines the fundamental entities of the DMFT loop, such as frequency series,
the convergence state, and the error taxonomy. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Series: an ordered sequence of (omega, value) points on a shared frequency grid.
  - ComplexSeries: the complex-valued counterpart, assembled from two real series.
  - RunState: the runtime snapshot of a self-consistency run (phase, iteration,
    per-iteration convergence records).
  - LifecycleHooks: observability callbacks emitted by the numerical stages.
*/
package domain

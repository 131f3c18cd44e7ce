package domain

import "errors"

// The failure taxonomy of the loop is a closed set. Fatal conditions are
// errors and unwind to the engine's Failed phase; near-zero guards and
// bisection exhaustion are diagnostics (see events.go), never errors.

// ErrConfiguration indicates an invalid run configuration (mixing parameter
// out of range, inverted bracket, non-positive tolerance). Raised once,
// before any iteration.
var ErrConfiguration = errors.New("invalid configuration")

// ErrDataFormat indicates a missing file, a column-count mismatch, or a
// frequency-grid mismatch between co-indexed series. Fatal for the run.
var ErrDataFormat = errors.New("data format mismatch")

// ErrExternalSolver indicates a non-zero exit or unexpected output from the
// external impurity-solver pipeline. Fatal; retries belong to the adapter.
var ErrExternalSolver = errors.New("external solver failure")

// ErrRunNotFound is returned by run stores when no checkpoint exists for
// the requested run ID.
var ErrRunNotFound = errors.New("run not found")

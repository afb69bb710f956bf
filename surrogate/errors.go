package surrogate

import "errors"

// ErrSingularDesign is returned when the mean's feature normal equations
// are singular (e.g. a Linear mean with fewer than d+1 distinct samples).
var ErrSingularDesign = errors.New("surrogate: singular design matrix")

// ErrDimensionMismatch is returned from SetSamples when an input's
// dimensionality doesn't match the configured one.
var ErrDimensionMismatch = errors.New("surrogate: dimension mismatch")

// ErrEmptySampleSet is returned by operations that require at least one
// sample.
var ErrEmptySampleSet = errors.New("surrogate: empty sample set")

// ErrNonFiniteVariance is returned when a predictive variance evaluates to
// a non-finite value.
var ErrNonFiniteVariance = errors.New("surrogate: non-finite predictive variance")

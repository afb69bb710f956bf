package bayesopt

import "github.com/pa-m/bayesopt/config"

// Parameters is bayesopt's external configuration surface, re-exported
// from package config so callers driving an Optimizer need only import
// this package.
type Parameters = config.Parameters

// DefaultParameters returns the documented defaults for the options a
// caller does not set explicitly; the kernel and mean names have no
// default and are left empty.
func DefaultParameters() Parameters { return config.DefaultParameters() }

// ObjectiveFunc is the external objective callback: f(x) for
// x in [lb,ub]^d. An error propagates unchanged, tagged with its origin.
type ObjectiveFunc func(x []float64) (float64, error)

// Package inneropt implements the bounded, derivative-free, global-then-
// local optimizer used to maximise an acquisition criterion over the unit
// hypercube: a box-constrained CMA-ES global phase followed by a Powell/
// Brent local refinement, both bounded by clamping the evaluated point.
package inneropt

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
)

// ErrInfeasiblePoint is returned by Maximize when the refined point falls
// outside [xmin,xmax] by more than a coordinate-wise tolerance - a defect
// in the caller's bounds, not a recoverable optimizer condition.
var ErrInfeasiblePoint = errors.New("inneropt: optimizer returned an infeasible point")

// GlobalLocal maximises a scorer s over a bounded box: a global CMA-ES
// pass explores broadly, then a Powell/Brent local pass polishes the best
// point found. Both phases evaluate a clamped copy of any candidate that
// strays outside the box, so Maximize always returns a feasible point.
type GlobalLocal struct {
	// GlobalIterations bounds the number of CMA-ES major iterations (each
	// one a population-sized batch of evaluations). 0 uses a dimension-
	// scaled default.
	GlobalIterations int
	// GlobalPopulation sets the CMA-ES population size; 0 uses CMA-ES's
	// own default (4+floor(3 ln d)).
	GlobalPopulation int
	// LocalXtol, LocalFtol are the Powell local phase's convergence
	// tolerances; 0 uses the teacher's defaults (1e-4).
	LocalXtol, LocalFtol float64
	// Src seeds the CMA-ES sampling distribution; nil uses the package
	// default generator, breaking the determinism-under-seed guarantee.
	Src rand.Source
}

// Maximize returns argmax_{x in [xmin,xmax]} score(x), via a bounded
// global CMA-ES pass seeded at x0 followed by a bounded Powell local
// polish.
func (g *GlobalLocal) Maximize(score func(x []float64) float64, x0, xmin, xmax []float64) ([]float64, float64, error) {
	dim := len(x0)
	negated := func(x []float64) float64 { return -score(x) }

	globalX, err := g.runGlobal(negated, x0, xmin, xmax, dim)
	if err != nil {
		return nil, 0, err
	}

	pm := NewPowellLocal()
	if g.LocalXtol > 0 {
		pm.Xtol = g.LocalXtol
	}
	if g.LocalFtol > 0 {
		pm.Ftol = g.LocalFtol
	}
	localX := pm.Minimize(negated, globalX, xmin, xmax)
	localX = clampBox(localX, xmin, xmax)

	for i, v := range localX {
		if (i < len(xmin) && v < xmin[i]-1e-9) || (i < len(xmax) && v > xmax[i]+1e-9) {
			return nil, 0, ErrInfeasiblePoint
		}
	}
	return localX, score(localX), nil
}

func (g *GlobalLocal) runGlobal(negated func([]float64) float64, x0, xmin, xmax []float64, dim int) ([]float64, error) {
	method := &cmaEsChol{
		Population: g.GlobalPopulation,
		Xmin:       xmin,
		Xmax:       xmax,
		Src:        g.Src,
	}
	settings := optimize.Settings{}
	if g.GlobalIterations > 0 {
		settings.MajorIterations = g.GlobalIterations
	} else {
		settings.MajorIterations = 10 + 5*dim
	}
	problem := optimize.Problem{
		Func: negated,
	}
	result, err := optimize.Minimize(problem, x0, &settings, method)
	if err != nil {
		return nil, err
	}
	if result == nil || result.X == nil {
		return append([]float64{}, x0...), nil
	}
	return clampBox(result.X, xmin, xmax), nil
}

func clampBox(x, xmin, xmax []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if i < len(xmin) && v < xmin[i] {
			v = xmin[i]
		}
		if i < len(xmax) && v > xmax[i] {
			v = xmax[i]
		}
		if math.IsNaN(v) {
			v = 0
			if i < len(xmin) {
				v = xmin[i]
			}
		}
		out[i] = v
	}
	return out
}

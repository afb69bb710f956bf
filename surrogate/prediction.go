package surrogate

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prediction is the scalar predictive distribution a surrogate returns at
// a query point: mean, standard deviation, degrees of freedom (+Inf for
// the Gaussian-flavoured surrogates) and a CDF/PDF oracle used directly by
// the acquisition criteria.
type Prediction struct {
	Mean float64
	Std  float64
	Nu   float64
}

// dist returns the underlying distuv distribution, Normal when Nu is
// infinite and StudentsT otherwise.
func (p Prediction) dist(src rand.Source) interface {
	CDF(float64) float64
	Prob(float64) float64
	Rand() float64
} {
	if math.IsInf(p.Nu, 1) {
		return distuv.Normal{Mu: p.Mean, Sigma: p.Std, Src: src}
	}
	return distuv.StudentsT{Mu: p.Mean, Sigma: p.Std, Nu: p.Nu, Src: src}
}

// CDF evaluates the predictive cumulative distribution at y.
func (p Prediction) CDF(y float64) float64 { return p.dist(nil).CDF(y) }

// PDF evaluates the predictive probability density at y.
func (p Prediction) PDF(y float64) float64 { return p.dist(nil).Prob(y) }

// Sample draws one value from the predictive distribution using src.
func (p Prediction) Sample(src rand.Source) float64 { return p.dist(src).Rand() }

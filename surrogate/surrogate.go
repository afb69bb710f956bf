// Package surrogate implements the non-parametric surrogate models that
// stand in for the unknown objective: Gaussian and Student-t processes over
// an incrementally growing sample set, each owning a kernel, a mean, a
// nugget and an incrementally updated Cholesky factor of the regularised
// correlation matrix.
package surrogate

import (
	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

// Surrogate is the contract shared by every process flavour (GP, GP-ML,
// GP-Normal, Student-t). The hyperparameter learner and the acquisition
// criteria interact with a surrogate exclusively through this interface.
type Surrogate interface {
	// SetSamples replaces the sample set with an initial design and fits.
	SetSamples(X [][]float64, y []float64) error
	// AddSample appends one observation without refitting; call Fit
	// afterwards, or prefer Update which does both.
	AddSample(x []float64, y float64)
	// Fit recomputes the Cholesky factor and predictive cache from
	// scratch, e.g. after a hyperparameter change.
	Fit() error
	// Update appends a new observation, attempts a rank-1 Cholesky append,
	// and falls back to a full Fit on failure.
	Update(x []float64, y float64) error
	// Predict returns the scalar predictive distribution at x.
	Predict(x []float64) (Prediction, error)
	// NegLogLikelihood returns the (possibly NIG-integrated) negative
	// marginal log-likelihood at the current hyperparameters.
	NegLogLikelihood() (float64, error)
	// HP and SetHP get/set the flat hyperparameter vector. In every
	// flavour it holds the kernel's hyperparameters only; the mean's
	// coefficient prior is not part of it.
	HP() []float64
	SetHP(theta []float64) error

	NSamples() int
	Dim() int
	X() [][]float64
	Y() []float64
	// YMin and YMax return the best/worst observed value and its index.
	YMin() (float64, int)
	YMax() (float64, int)

	Kernel() kernel.Kernel
	Mean() mean.Mean
}

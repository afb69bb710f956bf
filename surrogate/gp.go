package surrogate

import (
	"math"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

// GP is the Gaussian process with a fixed, user-supplied observation
// variance (the "noise" nugget). Its hyperparameter vector is exactly the
// kernel's.
type GP struct {
	*process
}

// NewGP builds a GP surrogate for the given kernel, mean and nugget, with
// room reserved for up to capacity samples of dimension dim.
func NewGP(k kernel.Kernel, m mean.Mean, noise float64, dim, capacity int) *GP {
	return &GP{process: newProcess(k, m, noise, dim, capacity)}
}

// SetSamples initialises the sample set from a design and fits.
func (g *GP) SetSamples(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return ErrDimensionMismatch
	}
	g.x, g.y = nil, nil
	for i := range X {
		if len(X[i]) != g.dim {
			return ErrDimensionMismatch
		}
		g.AddSample(X[i], y[i])
	}
	return g.Fit()
}

// HP returns the kernel's flattened hyperparameters.
func (g *GP) HP() []float64 { return g.kern.HP() }

// SetHP sets the kernel's flattened hyperparameters. Call Fit afterwards.
func (g *GP) SetHP(theta []float64) error { return g.kern.SetHP(theta) }

// Predict returns the Gaussian predictive distribution, Nu = +Inf.
func (g *GP) Predict(x []float64) (Prediction, error) {
	mu, v, kxx := g.predictCore(x)
	sigma2 := g.baseVariance(v, kxx)
	if sigma2 < 0 {
		sigma2 = 0
	}
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return Prediction{}, ErrNonFiniteVariance
	}
	return Prediction{Mean: mu, Std: math.Sqrt(sigma2), Nu: math.Inf(1)}, nil
}

// NegLogLikelihood returns the Gaussian marginal negative log-likelihood
// at the currently fitted hyperparameters.
func (g *GP) NegLogLikelihood() (float64, error) {
	n := g.chol.N()
	if n == 0 {
		return 0, ErrEmptySampleSet
	}
	rss := dotVec(g.w, g.w)
	return 0.5*rss + g.chol.LogDet()/2 + float64(n)/2*math.Log(2*math.Pi), nil
}

// GPML is the Gaussian process with the observation variance concentrated
// out by maximum likelihood at every Fit: Predict scales the kernel-only
// predictive variance by the profile MLE estimate of sigma^2.
type GPML struct {
	*process
	sigma2Hat float64
}

// NewGPML builds a GP-ML surrogate. The noise parameter seeds the nugget
// used while factorising K; sigma2Hat is re-estimated on every Fit.
func NewGPML(k kernel.Kernel, m mean.Mean, noise float64, dim, capacity int) *GPML {
	return &GPML{process: newProcess(k, m, noise, dim, capacity), sigma2Hat: 1}
}

func (g *GPML) SetSamples(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return ErrDimensionMismatch
	}
	g.x, g.y = nil, nil
	for i := range X {
		if len(X[i]) != g.dim {
			return ErrDimensionMismatch
		}
		g.AddSample(X[i], y[i])
	}
	return g.Fit()
}

func (g *GPML) HP() []float64              { return g.kern.HP() }
func (g *GPML) SetHP(theta []float64) error { return g.kern.SetHP(theta) }

// Fit performs the base Cholesky/GLS fit then concentrates sigma^2 out of
// the profile likelihood: sigma2Hat = RSS/n.
func (g *GPML) Fit() error {
	if err := g.process.Fit(); err != nil {
		return err
	}
	n := g.chol.N()
	rss := dotVec(g.w, g.w)
	g.sigma2Hat = rss / float64(n)
	if g.sigma2Hat <= 0 {
		g.sigma2Hat = 1e-12
	}
	return nil
}

func (g *GPML) Update(x []float64, y float64) error {
	if err := g.process.Update(x, y); err != nil {
		return err
	}
	n := g.chol.N()
	rss := dotVec(g.w, g.w)
	g.sigma2Hat = rss / float64(n)
	if g.sigma2Hat <= 0 {
		g.sigma2Hat = 1e-12
	}
	return nil
}

func (g *GPML) Predict(x []float64) (Prediction, error) {
	mu, v, kxx := g.predictCore(x)
	sigma2 := g.sigma2Hat * g.baseVariance(v, kxx)
	if sigma2 < 0 {
		sigma2 = 0
	}
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return Prediction{}, ErrNonFiniteVariance
	}
	return Prediction{Mean: mu, Std: math.Sqrt(sigma2), Nu: math.Inf(1)}, nil
}

// NegLogLikelihood returns the profile log-likelihood in theta after
// concentrating beta and sigma^2 out.
func (g *GPML) NegLogLikelihood() (float64, error) {
	n := g.chol.N()
	if n == 0 {
		return 0, ErrEmptySampleSet
	}
	rss := dotVec(g.w, g.w)
	return float64(n)/2*math.Log(2*math.Pi*rss/float64(n)) + g.chol.LogDet()/2 + float64(n)/2, nil
}

package surrogate

import (
	"math"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

// StudentT is the Normal-Inverse-Gamma surrogate: the observation scale
// sigma^2 carries an Inverse-Gamma(a0, b0) prior and is marginalised
// analytically alongside the mean coefficients' Normal prior, leaving a
// Student-t predictive distribution whose degrees of freedom grow with the
// sample count. A0=B0=0 recovers the improper Jeffreys prior on sigma^2
// (NewStudentTJef) - a parameterisation of the same model, not a separate
// flavour.
type StudentT struct {
	*process
	a0, b0 float64
}

// NewStudentT builds a Student-t NIG surrogate with InverseGamma(a0, b0)
// prior on the observation scale. noise is the unit-scale nugget folded
// into the kernel correlation matrix before scaling by sigma^2.
func NewStudentT(k kernel.Kernel, m mean.Mean, noise, a0, b0 float64, dim, capacity int) *StudentT {
	p := newProcess(k, m, noise, dim, capacity)
	p.betaSolve = func(a [][]float64, b []float64) ([]float64, error) {
		return normalPriorBetaSolve(p, a, b)
	}
	return &StudentT{process: p, a0: a0, b0: b0}
}

// NewStudentTJef builds a Student-t surrogate under the improper Jeffreys
// prior on sigma^2, p(sigma^2) proportional to 1/sigma^2 - the a0=b0=0 limit
// of the Inverse-Gamma family.
func NewStudentTJef(k kernel.Kernel, m mean.Mean, noise float64, dim, capacity int) *StudentT {
	return NewStudentT(k, m, noise, 0, 0, dim, capacity)
}

func (g *StudentT) SetSamples(X [][]float64, y []float64) error {
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

func (g *StudentT) HP() []float64              { return g.kern.HP() }
func (g *StudentT) SetHP(theta []float64) error { return g.kern.SetHP(theta) }

// posteriorScale returns a_n, b_n, the Inverse-Gamma posterior shape and
// scale for sigma^2 given the currently fitted sample set.
func (g *StudentT) posteriorScale() (an, bn float64, err error) {
	n := float64(g.chol.N())
	an = g.a0 + n/2
	m := g.mn.NFeatures()
	rss := dotVec(g.ytil, g.ytil)
	if m == 0 {
		bn = g.b0 + 0.5*rss
		return an, bn, nil
	}
	mu0 := g.mn.PriorMean()
	s0 := g.mn.PriorStd()
	var priorQuad float64
	for i := 0; i < m; i++ {
		if s0[i] > 0 {
			priorQuad += mu0[i] * mu0[i] / (s0[i] * s0[i])
		} else {
			priorQuad += mu0[i] * mu0[i] * fixedPriorPrecision
		}
	}
	// beta_n^T A beta_n, with A = aReg and beta_n = g.beta.
	abeta := make([]float64, m)
	for r := 0; r < m; r++ {
		abeta[r] = dotVec(g.aReg[r], g.beta)
	}
	betaAbeta := dotVec(g.beta, abeta)
	bn = g.b0 + 0.5*(priorQuad+rss-betaAbeta)
	if bn <= 0 {
		bn = 1e-12
	}
	return an, bn, nil
}

// Predict returns the Student-t predictive distribution, with the squared
// scale equal to b_n/a_n times the kernel and beta-uncertainty variance,
// and degrees of freedom 2*a_n.
func (g *StudentT) Predict(x []float64) (Prediction, error) {
	if g.chol.N() == 0 {
		return Prediction{}, ErrEmptySampleSet
	}
	mu, v, kxx := g.predictCore(x)
	an, bn, err := g.posteriorScale()
	if err != nil {
		return Prediction{}, err
	}
	base := g.baseVariance(v, kxx) + g.betaUncertaintyVariance(x, v)
	sigma2 := (bn / an) * base
	if sigma2 < 0 {
		sigma2 = 0
	}
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return Prediction{}, ErrNonFiniteVariance
	}
	return Prediction{Mean: mu, Std: math.Sqrt(sigma2), Nu: 2 * an}, nil
}

// NegLogLikelihood returns the negative NIG marginal log-likelihood,
// y ~ MultivariateT(Phi mu0, (b0/a0)(K+Phi Sigma0 Phi^T), 2*a0), obtained by
// whitening the likelihood with the kernel's Cholesky factor (contributing
// -0.5*log det(K)) and reducing to the standard conjugate-regression
// evidence in the whitened design F~ = L^-1 Phi:
//
//	log p(ytil) = -n/2 log(2pi) + 0.5 log det(Sigma0^-1) - 0.5 log det(A)
//	              + a0 log(b0) - a_n log(b_n) + lgamma(a_n) - lgamma(a0)
func (g *StudentT) NegLogLikelihood() (float64, error) {
	n := g.chol.N()
	if n == 0 {
		return 0, ErrEmptySampleSet
	}
	an, bn, err := g.posteriorScale()
	if err != nil {
		return 0, err
	}

	m := g.mn.NFeatures()
	var logdetSigma0Inv, logdetA float64
	if m > 0 {
		s0 := g.mn.PriorStd()
		for i := 0; i < m; i++ {
			if s0[i] > 0 {
				logdetSigma0Inv += -2 * math.Log(s0[i])
			} else {
				logdetSigma0Inv += math.Log(fixedPriorPrecision)
			}
		}
		zero := make([]float64, m)
		_, logdetA, err = solveSymPDWithLogDet(g.aReg, zero)
		if err != nil {
			return 0, err
		}
	}

	lgA, _ := math.Lgamma(an)
	var lg0 float64
	if g.a0 > 0 {
		lg0, _ = math.Lgamma(g.a0)
	}
	var a0Logb0 float64
	if g.a0 > 0 {
		a0Logb0 = g.a0 * math.Log(g.b0)
	}

	logpYtil := -float64(n)/2*math.Log(2*math.Pi) + 0.5*logdetSigma0Inv - 0.5*logdetA +
		a0Logb0 - an*math.Log(bn) + lgA - lg0

	logpY := logpYtil - 0.5*g.chol.LogDet()
	return -logpY, nil
}

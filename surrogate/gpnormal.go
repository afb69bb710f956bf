package surrogate

import (
	"math"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

// fixedPriorPrecision stands in for "this coefficient is not learned" when a
// mean's PriorStd reports 0: rather than eliminating the coefficient from
// the GLS system (a reduced-system special case for every flavour that
// touches betaSolve), it is given a very tight but finite prior, pinning it
// to PriorMean to within numerical noise.
const fixedPriorPrecision = 1e12

// GPNormal is the Gaussian process whose mean coefficients carry an
// independent Normal prior, beta_i ~ N(priorMean_i, priorStd_i^2), marginalised
// analytically alongside the kernel's Gaussian noise model. Its learnable
// hyperparameter vector holds the kernel hyperparameters only; the prior's
// (mean, std) pairs are set on the mean and are not part of it.
type GPNormal struct {
	*process
}

// NewGPNormal builds a GP-Normal surrogate. m's PriorMean/PriorStd supply
// the coefficient prior; configure them on m before calling SetSamples.
func NewGPNormal(k kernel.Kernel, m mean.Mean, noise float64, dim, capacity int) *GPNormal {
	p := newProcess(k, m, noise, dim, capacity)
	p.betaSolve = func(a [][]float64, b []float64) ([]float64, error) {
		return normalPriorBetaSolve(p, a, b)
	}
	return &GPNormal{process: p}
}

// SetSamples initialises the sample set from a design and fits.
func (g *GPNormal) SetSamples(X [][]float64, y []float64) error {
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

func (g *GPNormal) HP() []float64              { return g.kern.HP() }
func (g *GPNormal) SetHP(theta []float64) error { return g.kern.SetHP(theta) }

// Predict returns the predictive distribution with the extra variance
// contributed by integrating out the Normal-distributed beta.
func (g *GPNormal) Predict(x []float64) (Prediction, error) {
	mu, v, kxx := g.predictCore(x)
	sigma2 := g.baseVariance(v, kxx) + g.betaUncertaintyVariance(x, v)
	if sigma2 < 0 {
		sigma2 = 0
	}
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return Prediction{}, ErrNonFiniteVariance
	}
	return Prediction{Mean: mu, Std: math.Sqrt(sigma2), Nu: math.Inf(1)}, nil
}

// NegLogLikelihood returns the negative marginal log-likelihood with beta
// integrated out against its Normal prior, via the Woodbury identity on
// y ~ N(Phi mu0, K + Phi Sigma0 Phi^T):
//
//	quad   = ytil_c . ytil_c - g^T A^-1 g,  ytil_c = ytil - F~ mu0, g = F~^T ytil_c
//	logdet = log det(K) + log det(Sigma0) + log det(A)
//
// where A = Sigma0^-1 + F~^T F~ is the regularised normal matrix cached by
// betaSolve.
func (g *GPNormal) NegLogLikelihood() (float64, error) {
	n := g.chol.N()
	if n == 0 {
		return 0, ErrEmptySampleSet
	}
	m := g.mn.NFeatures()
	if m == 0 {
		rss := dotVec(g.w, g.w)
		return 0.5*rss + g.chol.LogDet()/2 + float64(n)/2*math.Log(2*math.Pi), nil
	}

	mu0 := g.mn.PriorMean()
	s0 := g.mn.PriorStd()
	ytilC := make([]float64, n)
	copy(ytilC, g.ytil)
	for k := 0; k < m; k++ {
		fk := g.ftil[k]
		for i := 0; i < n; i++ {
			ytilC[i] -= fk[i] * mu0[k]
		}
	}
	gvec := make([]float64, m)
	for k := 0; k < m; k++ {
		gvec[k] = dotVec(g.ftil[k], ytilC)
	}
	z, logdetA, err := solveSymPDWithLogDet(g.aReg, gvec)
	if err != nil {
		return 0, err
	}
	quad := dotVec(ytilC, ytilC) - dotVec(gvec, z)

	var logdetSigma0 float64
	for k := 0; k < m; k++ {
		s := s0[k]
		if s <= 0 {
			s = 1 / math.Sqrt(fixedPriorPrecision)
		}
		logdetSigma0 += 2 * math.Log(s)
	}

	logdet := g.chol.LogDet() + logdetSigma0 + logdetA
	return 0.5*quad + logdet/2 + float64(n)/2*math.Log(2*math.Pi), nil
}

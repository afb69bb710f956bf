// Package mean implements the parametric mean functions used as the prior
// trend of the surrogate processes: a feature map phi(x) whose inner
// product with a coefficient vector beta gives mu(x) = beta . phi(x).
package mean

import "fmt"

// Mean is the capability set every mean function exposes. m, the feature
// dimension, is fixed at construction; beta and its prior are mutable
// state owned by the Mean value.
type Mean interface {
	// NFeatures returns m = len(Features(x)).
	NFeatures() int
	// Features returns phi(x) in R^m.
	Features(x []float64) []float64
	// FeaturesAll returns Phi in R^{n x m}, one row per row of X.
	FeaturesAll(X [][]float64) [][]float64
	// Value returns beta . phi(x).
	Value(x []float64) float64
	// Beta returns the current coefficient vector.
	Beta() []float64
	// SetBeta sets the coefficient vector; len(beta) must equal NFeatures().
	SetBeta(beta []float64) error
	// PriorMean and PriorStd return, per coefficient, the Normal prior's
	// mean and standard deviation. A zero standard deviation marks a fixed
	// (non-learned) coefficient.
	PriorMean() []float64
	PriorStd() []float64
	// SetPrior sets the per-coefficient Normal prior (mean, std). Returns
	// an error if either slice's length does not match NFeatures().
	SetPrior(mu, sigma []float64) error
}

// ErrBetaCount is returned by SetBeta when the supplied vector has the
// wrong length.
type ErrBetaCount struct {
	Mean string
	Want int
	Got  int
}

func (e *ErrBetaCount) Error() string {
	return fmt.Sprintf("mean: %s expects %d coefficients, got %d", e.Mean, e.Want, e.Got)
}

// base implements the mutable beta/prior bookkeeping shared by every
// concrete mean; concrete types embed it and only supply Features.
type base struct {
	name      string
	beta      []float64
	priorMean []float64
	priorStd  []float64
}

func newBase(name string, m int) base {
	return base{
		name:      name,
		beta:      make([]float64, m),
		priorMean: make([]float64, m),
		priorStd:  make([]float64, m),
	}
}

func (b *base) NFeatures() int      { return len(b.beta) }
func (b *base) Beta() []float64     { return b.beta }
func (b *base) PriorMean() []float64 { return b.priorMean }
func (b *base) PriorStd() []float64  { return b.priorStd }

func (b *base) SetBeta(beta []float64) error {
	if len(beta) != len(b.beta) {
		return &ErrBetaCount{Mean: b.name, Want: len(b.beta), Got: len(beta)}
	}
	copy(b.beta, beta)
	return nil
}

// SetPrior sets the per-coefficient Normal prior (mean, std).
func (b *base) SetPrior(mu, sigma []float64) error {
	if len(mu) != len(b.beta) || len(sigma) != len(b.beta) {
		return fmt.Errorf("mean: %s prior length mismatch", b.name)
	}
	copy(b.priorMean, mu)
	copy(b.priorStd, sigma)
	return nil
}

func valueOf(m Mean, x []float64) float64 {
	phi := m.Features(x)
	beta := m.Beta()
	var s float64
	for i := range phi {
		s += phi[i] * beta[i]
	}
	return s
}

func featuresAllOf(m Mean, X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = m.Features(x)
	}
	return out
}

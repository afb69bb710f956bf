// Package criterion implements the acquisition criteria that rank
// candidate points for the next expensive evaluation: each one consumes
// only the surrogate's predictive distribution at a point plus the best
// observed value so far, and returns a score where higher is better.
package criterion

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/surrogate"
)

// Predictor is the non-owning borrow a criterion holds on the surrogate
// for the duration of one score call; surrogate.Surrogate and
// learner.Learner.Predict (bound to a surrogate) both satisfy it.
type Predictor interface {
	Predict(x []float64) (surrogate.Prediction, error)
}

// Criterion is the contract every acquisition function exposes: Score
// ranks x (higher is better) and Name returns the criterion's name.
// Criteria with iteration-dependent internal state (LowerConfidenceBound,
// Hedge) have their own Reset methods outside this interface.
type Criterion interface {
	Score(pred Predictor, x []float64, yMin float64) (float64, error)
	Name() string
}

// ExpectedImprovement is `(yMin-mu)*Phi(z) + sigma*phi(z)`, raised to the
// power P (default 1 when P==0) per the EI^p generalisation; for a
// Student-t predictive it uses the surrogate's own CDF/PDF, which already
// accounts for the degrees of freedom.
type ExpectedImprovement struct {
	// P is the exponent; P<=0 is treated as 1.
	P float64
}

func (ExpectedImprovement) Name() string { return "ei" }

func (c ExpectedImprovement) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	if p.Std <= 0 {
		if yMin-p.Mean > 0 {
			return yMin - p.Mean, nil
		}
		return 0, nil
	}
	ei := (yMin-p.Mean)*p.CDF(yMin) + p.Std*p.Std*p.PDF(yMin)
	if ei < 0 {
		ei = 0
	}
	exp := c.P
	if exp <= 0 {
		exp = 1
	}
	if exp == 1 {
		return ei, nil
	}
	return math.Pow(ei, exp), nil
}

// LowerConfidenceBound is `-(mu - beta*sigma)`: minimising mu-beta*sigma
// is cast as maximising its negation. Beta is either fixed (Anneal
// false) or grows with the iteration counter t per
// `beta_t = sqrt(2*log(t^(d/2+2)*pi^2/(3*delta)))`.
type LowerConfidenceBound struct {
	Beta   float64
	Anneal bool
	Delta  float64
	Dim    int
	t      int
}

func (c *LowerConfidenceBound) Name() string { return "lcb" }

func (c *LowerConfidenceBound) beta() float64 {
	if !c.Anneal {
		return c.Beta
	}
	delta := c.Delta
	if delta <= 0 {
		delta = 0.1
	}
	tt := float64(c.t + 1)
	exponent := float64(c.Dim)/2 + 2
	inner := math.Pow(tt, exponent) * math.Pi * math.Pi / (3 * delta)
	if inner < 1 {
		inner = 1
	}
	return math.Sqrt(2 * math.Log(inner))
}

func (c *LowerConfidenceBound) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	score := -(p.Mean - c.beta()*p.Std)
	return score, nil
}

// Advance increments the annealing iteration counter; the BO loop calls
// it once per accepted evaluation.
func (c *LowerConfidenceBound) Advance() { c.t++ }

// Reset zeroes the annealing counter.
func (c *LowerConfidenceBound) Reset() { c.t = 0 }

// ProbabilityOfImprovement is `Phi(z)` with an optional additive
// exploration offset (Epsilon) subtracted from yMin before computing z,
// the standard epsilon-greedy generalisation of POI.
type ProbabilityOfImprovement struct {
	Epsilon float64
}

func (ProbabilityOfImprovement) Name() string { return "poi" }

func (c ProbabilityOfImprovement) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	if p.Std <= 0 {
		if yMin-c.Epsilon-p.Mean > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return p.CDF(yMin - c.Epsilon), nil
}

// Thompson scores x by a single draw from the predictive distribution -
// lower is better for the objective, so the draw is negated to fit the
// higher-is-better Criterion contract.
type Thompson struct {
	Src rand.Source
}

func (Thompson) Name() string { return "thompson" }

func (c Thompson) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	return -p.Sample(c.Src), nil
}

// OptimisticSampling scores x by the better of its posterior mean and a
// single draw from the predictive distribution (the lower of the two,
// since lower objective values are better, negated) - an
// optimism-in-the-face-of-uncertainty variant of Thompson sampling.
type OptimisticSampling struct {
	Src rand.Source
}

func (OptimisticSampling) Name() string { return "optimisticsampling" }

func (c OptimisticSampling) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	optimistic := p.Sample(c.Src)
	if p.Mean < optimistic {
		optimistic = p.Mean
	}
	return -optimistic, nil
}

// AOptimality scores x purely by predictive variance, favouring the
// point that would most reduce posterior uncertainty (A-optimal design,
// ignoring the mean entirely).
type AOptimality struct{}

func (AOptimality) Name() string { return "aoptimality" }

func (AOptimality) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	return p.Std * p.Std, nil
}

// GreedyMean always exploits: score is the negated predictive mean, with
// no exploration term.
type GreedyMean struct{}

func (GreedyMean) Name() string { return "greedymean" }

func (GreedyMean) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	return -p.Mean, nil
}

// ExpectedReturn scores x by its expected improvement magnitude without
// the probability factor: `max(yMin-mu, 0)`, a cheaper, less
// uncertainty-aware relative of EI.
type ExpectedReturn struct{}

func (ExpectedReturn) Name() string { return "expectedreturn" }

func (ExpectedReturn) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	p, err := pred.Predict(x)
	if err != nil {
		return 0, err
	}
	if yMin-p.Mean > 0 {
		return yMin - p.Mean, nil
	}
	return 0, nil
}

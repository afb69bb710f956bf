// Package learner implements the three hyperparameter-learning modes a
// surrogate process can run under: a fixed point estimate, an empirical
// ML/MAP search via the bounded inner optimizer, and a step-out slice
// sampler over the posterior for full MCMC integration.
package learner

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/inneropt"
	"github.com/pa-m/bayesopt/surrogate"
)

// Mode selects how a surrogate's hyperparameters are obtained.
type Mode int

const (
	// Fixed never changes the surrogate's hyperparameters; Learn is a no-op.
	Fixed Mode = iota
	// Empirical runs a bounded search in log-theta space for the ML/MAP
	// point estimate, then refits the surrogate at the winner.
	Empirical
	// MCMC draws NSamples posterior samples via slice sampling; Predict
	// then averages predictive moments across the sample instead of using
	// a single point estimate.
	MCMC
)

// Cadence selects when Learn actually runs within the BO loop.
type Cadence int

const (
	// EveryIteration relearns on every call to ShouldLearn.
	EveryIteration Cadence = iota
	// EveryLStep relearns only every LStep iterations.
	EveryLStep
	// OnlyAtStart relearns once, at iteration 0.
	OnlyAtStart
)

// HPPrior is the per-hyperparameter log-normal prior on theta: Mu and
// Sigma are the mean and standard deviation of log(theta_i). A Sigma
// entry of 0 (or a shorter Sigma slice) marks that coordinate as
// unregularised in the MAP/posterior objective.
type HPPrior struct {
	Mu, Sigma []float64
}

func (p HPPrior) logDensity(logTheta []float64) float64 {
	var s float64
	for i, lt := range logTheta {
		if i >= len(p.Sigma) || p.Sigma[i] <= 0 {
			continue
		}
		mu := 0.0
		if i < len(p.Mu) {
			mu = p.Mu[i]
		}
		d := (lt - mu) / p.Sigma[i]
		s += -0.5*d*d - math.Log(p.Sigma[i]) - 0.5*math.Log(2*math.Pi)
	}
	return s
}

// Learner drives hyperparameter learning for a surrogate.Surrogate.
type Learner struct {
	Mode    Mode
	Cadence Cadence
	// LStep is the relearn period under EveryLStep; <= 0 defaults to 1.
	LStep int
	Prior HPPrior

	// Inner is reused, in log-theta space, for the Empirical search.
	Inner inneropt.GlobalLocal
	// LogThetaMin, LogThetaMax bound the Empirical/MCMC log-theta space
	// coordinate-wise; a zero-length slice defaults to +-10 (theta in
	// roughly [4.5e-5, 2.2e4]) for every coordinate.
	LogThetaMin, LogThetaMax []float64

	// NSamples is K, the number of retained MCMC draws; <= 0 defaults to 1.
	NSamples int
	// BurnIn is the number of discarded sweeps preceding the retained
	// samples.
	BurnIn int
	// StepOut is the slice sampler's initial step-out width in log-theta
	// space; <= 0 defaults to 1.
	StepOut float64
	Src     rand.Source

	samples [][]float64
}

// ShouldLearn reports whether Learn should run at the given (0-based)
// iteration index, per the configured Cadence.
func (l *Learner) ShouldLearn(iter int) bool {
	switch l.Cadence {
	case OnlyAtStart:
		return iter == 0
	case EveryLStep:
		step := l.LStep
		if step <= 0 {
			step = 1
		}
		return iter%step == 0
	default:
		return true
	}
}

// Learn updates proc's hyperparameters in place, per Mode. For Fixed it
// does nothing; for Empirical it leaves proc fit at the ML/MAP point; for
// MCMC it leaves proc fit at the last posterior draw and records the full
// sample set for Predict to integrate over.
func (l *Learner) Learn(proc surrogate.Surrogate) error {
	switch l.Mode {
	case Fixed:
		return nil
	case Empirical:
		return l.learnEmpirical(proc)
	case MCMC:
		return l.learnMCMC(proc)
	default:
		return fmt.Errorf("learner: unknown mode %d", l.Mode)
	}
}

// Samples returns the retained MCMC posterior draws, or nil outside MCMC
// mode or before the first Learn call.
func (l *Learner) Samples() [][]float64 { return l.samples }

// Predict returns the surrogate's predictive distribution at x. Under
// Fixed/Empirical it is proc.Predict(x) directly; under MCMC it averages
// the predictive mean and variance across every retained posterior
// sample, restoring proc's hyperparameters before returning.
func (l *Learner) Predict(proc surrogate.Surrogate, x []float64) (surrogate.Prediction, error) {
	if l.Mode != MCMC || len(l.samples) == 0 {
		return proc.Predict(x)
	}
	origHP := append([]float64{}, proc.HP()...)
	defer func() {
		proc.SetHP(origHP)
		proc.Fit()
	}()

	var meanSum, varSum float64
	k := len(l.samples)
	for _, theta := range l.samples {
		if err := proc.SetHP(theta); err != nil {
			return surrogate.Prediction{}, err
		}
		if err := proc.Fit(); err != nil {
			return surrogate.Prediction{}, err
		}
		pred, err := proc.Predict(x)
		if err != nil {
			return surrogate.Prediction{}, err
		}
		meanSum += pred.Mean
		varSum += pred.Std * pred.Std
	}
	mean := meanSum / float64(k)
	variance := varSum / float64(k)
	if variance < 0 {
		variance = 0
	}
	return surrogate.Prediction{Mean: mean, Std: math.Sqrt(variance), Nu: math.Inf(1)}, nil
}

func (l *Learner) logBounds(n int) (lo, hi []float64) {
	lo = make([]float64, n)
	hi = make([]float64, n)
	for i := 0; i < n; i++ {
		lo[i] = -10
		hi[i] = 10
		if i < len(l.LogThetaMin) {
			lo[i] = l.LogThetaMin[i]
		}
		if i < len(l.LogThetaMax) {
			hi[i] = l.LogThetaMax[i]
		}
	}
	return lo, hi
}

func safeLog(v float64) float64 {
	if v <= 0 {
		return -10
	}
	return math.Log(v)
}

func expAll(logTheta []float64) []float64 {
	theta := make([]float64, len(logTheta))
	for i, lt := range logTheta {
		theta[i] = math.Exp(lt)
	}
	return theta
}

// logPosterior fits proc at exp(logTheta) and returns -NLL + log prior
// density, or -Inf on any numerical failure (steering the search away).
func logPosterior(proc surrogate.Surrogate, prior HPPrior, logTheta []float64) float64 {
	theta := expAll(logTheta)
	if err := proc.SetHP(theta); err != nil {
		return math.Inf(-1)
	}
	if err := proc.Fit(); err != nil {
		return math.Inf(-1)
	}
	nll, err := proc.NegLogLikelihood()
	if err != nil || math.IsNaN(nll) || math.IsInf(nll, 0) {
		return math.Inf(-1)
	}
	return -nll + prior.logDensity(logTheta)
}

func (l *Learner) learnEmpirical(proc surrogate.Surrogate) error {
	theta0 := proc.HP()
	n := len(theta0)
	if n == 0 {
		return nil
	}
	logTheta0 := make([]float64, n)
	for i, v := range theta0 {
		logTheta0[i] = safeLog(v)
	}
	lo, hi := l.logBounds(n)

	score := func(logTheta []float64) float64 { return logPosterior(proc, l.Prior, logTheta) }

	inner := l.Inner
	logBest, _, err := inner.Maximize(score, logTheta0, lo, hi)
	if err != nil {
		return fmt.Errorf("learner: empirical search failed: %w", err)
	}
	if err := proc.SetHP(expAll(logBest)); err != nil {
		return fmt.Errorf("learner: %w", err)
	}
	return proc.Fit()
}

func (l *Learner) learnMCMC(proc surrogate.Surrogate) error {
	theta0 := proc.HP()
	n := len(theta0)
	if n == 0 {
		return nil
	}
	src := l.Src
	if src == nil {
		src = rand.NewSource(1)
	}
	rng := rand.New(src)

	cur := make([]float64, n)
	for i, v := range theta0 {
		cur[i] = safeLog(v)
	}
	curLP := logPosterior(proc, l.Prior, cur)

	w := l.StepOut
	if w <= 0 {
		w = 1
	}
	k := l.NSamples
	if k <= 0 {
		k = 1
	}
	burnIn := l.BurnIn
	if burnIn < 0 {
		burnIn = 0
	}

	samples := make([][]float64, 0, k)
	for iter := 0; iter < burnIn+k; iter++ {
		for d := 0; d < n; d++ {
			coordLogf := func(v float64) float64 {
				trial := append([]float64{}, cur...)
				trial[d] = v
				return logPosterior(proc, l.Prior, trial)
			}
			newV, newLP := sliceSample(rng, cur[d], curLP, w, coordLogf)
			cur[d] = newV
			curLP = newLP
		}
		if iter >= burnIn {
			samples = append(samples, expAll(cur))
		}
	}
	l.samples = samples
	if len(samples) == 0 {
		return nil
	}
	if err := proc.SetHP(samples[len(samples)-1]); err != nil {
		return err
	}
	return proc.Fit()
}

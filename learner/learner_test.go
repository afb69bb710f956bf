package learner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/inneropt"
	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
	"github.com/pa-m/bayesopt/surrogate"
)

func toyDesign() ([][]float64, []float64) {
	X := [][]float64{{0.0}, {0.2}, {0.4}, {0.6}, {0.8}, {1.0}}
	y := []float64{0.1, -0.3, 0.2, -0.1, 0.4, -0.2}
	return X, y
}

func newGP(t *testing.T) surrogate.Surrogate {
	t.Helper()
	X, y := toyDesign()
	gp := surrogate.NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gp.SetSamples(X, y))
	return gp
}

func TestShouldLearnCadences(t *testing.T) {
	l := &Learner{Cadence: OnlyAtStart}
	assert.True(t, l.ShouldLearn(0))
	assert.False(t, l.ShouldLearn(1))

	l2 := &Learner{Cadence: EveryLStep, LStep: 3}
	assert.True(t, l2.ShouldLearn(0))
	assert.False(t, l2.ShouldLearn(1))
	assert.True(t, l2.ShouldLearn(3))

	l3 := &Learner{Cadence: EveryIteration}
	assert.True(t, l3.ShouldLearn(0))
	assert.True(t, l3.ShouldLearn(5))
}

func TestFixedLearnerLeavesHPUnchanged(t *testing.T) {
	proc := newGP(t)
	before := append([]float64{}, proc.HP()...)
	l := &Learner{Mode: Fixed}
	require.NoError(t, l.Learn(proc))
	assert.Equal(t, before, proc.HP())
}

func TestEmpiricalLearnerImprovesLikelihood(t *testing.T) {
	proc := newGP(t)
	nllBefore, err := proc.NegLogLikelihood()
	require.NoError(t, err)

	l := &Learner{
		Mode: Empirical,
		Inner: inneropt.GlobalLocal{
			GlobalIterations: 30,
			GlobalPopulation: 12,
			Src:              rand.NewSource(3),
		},
	}
	require.NoError(t, l.Learn(proc))
	nllAfter, err := proc.NegLogLikelihood()
	require.NoError(t, err)
	assert.LessOrEqual(t, nllAfter, nllBefore+1e-6)
}

func TestMCMCLearnerProducesRequestedSampleCount(t *testing.T) {
	proc := newGP(t)
	l := &Learner{
		Mode:     MCMC,
		NSamples: 5,
		BurnIn:   3,
		StepOut:  1.0,
		Src:      rand.NewSource(11),
	}
	require.NoError(t, l.Learn(proc))
	assert.Len(t, l.Samples(), 5)
	for _, theta := range l.Samples() {
		assert.Len(t, theta, proc.Kernel().NHP())
		for _, v := range theta {
			assert.Greater(t, v, 0.0)
		}
	}
}

func TestMCMCPredictAveragesAcrossSamplesAndRestoresHP(t *testing.T) {
	proc := newGP(t)
	originalHP := append([]float64{}, proc.HP()...)

	l := &Learner{
		Mode:     MCMC,
		NSamples: 4,
		BurnIn:   2,
		StepOut:  1.0,
		Src:      rand.NewSource(5),
	}
	require.NoError(t, l.Learn(proc))

	pred, err := l.Predict(proc, []float64{0.5})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pred.Mean))
	assert.GreaterOrEqual(t, pred.Std, 0.0)
	assert.True(t, math.IsInf(pred.Nu, 1))

	assert.Equal(t, originalHP, proc.HP())
}

func TestFixedAndEmpiricalPredictDelegatesDirectly(t *testing.T) {
	proc := newGP(t)
	l := &Learner{Mode: Fixed}
	want, err := proc.Predict([]float64{0.3})
	require.NoError(t, err)
	got, err := l.Predict(proc, []float64{0.3})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHPPriorLogDensityIgnoresZeroSigma(t *testing.T) {
	p := HPPrior{Mu: []float64{0, 0}, Sigma: []float64{1, 0}}
	d1 := p.logDensity([]float64{0, 0})
	d2 := p.logDensity([]float64{0, 100})
	assert.Equal(t, d1, d2)
}

package surrogate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

func toyDesign() ([][]float64, []float64) {
	X := [][]float64{{0.0}, {0.5}, {1.0}}
	y := []float64{0.1, -0.4, 0.3}
	return X, y
}

func TestGPPredictExactAtTrainingPointWithZeroNoise(t *testing.T) {
	X, y := toyDesign()
	gp := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-10, 1, 8)
	require.NoError(t, gp.SetSamples(X, y))
	for i, xi := range X {
		pred, err := gp.Predict(xi)
		require.NoError(t, err)
		assert.InDelta(t, y[i], pred.Mean, 1e-4)
		assert.InDelta(t, 0, pred.Std, 1e-3)
	}
}

func TestGPPredictiveVarianceNonNegative(t *testing.T) {
	X, y := toyDesign()
	gp := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gp.SetSamples(X, y))
	for _, x := range [][]float64{{0.25}, {0.75}, {2.0}, {-1.0}} {
		pred, err := gp.Predict(x)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pred.Std, 0.0)
		assert.True(t, math.IsInf(pred.Nu, 1))
	}
}

func TestGPUpdateMatchesFullFit(t *testing.T) {
	X, y := toyDesign()
	incr := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, incr.SetSamples(X[:2], y[:2]))
	require.NoError(t, incr.Update(X[2], y[2]))

	full := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, full.SetSamples(X, y))

	for _, x := range [][]float64{{0.3}, {0.8}} {
		pi, err := incr.Predict(x)
		require.NoError(t, err)
		pf, err := full.Predict(x)
		require.NoError(t, err)
		assert.InDelta(t, pf.Mean, pi.Mean, 1e-6)
		assert.InDelta(t, pf.Std, pi.Std, 1e-6)
	}
}

func TestGPNegLogLikelihoodFinite(t *testing.T) {
	X, y := toyDesign()
	gp := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gp.SetSamples(X, y))
	nll, err := gp.NegLogLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(nll) || math.IsInf(nll, 0))
}

func TestGPMLConcentratesSigma2(t *testing.T) {
	X, y := toyDesign()
	gpml := NewGPML(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gpml.SetSamples(X, y))
	assert.Greater(t, gpml.sigma2Hat, 0.0)
	nll, err := gpml.NegLogLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(nll) || math.IsInf(nll, 0))
}

func TestSetSamplesRejectsDimensionMismatch(t *testing.T) {
	gp := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 2, 8)
	err := gp.SetSamples([][]float64{{0.1}}, []float64{0.2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

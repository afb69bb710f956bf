package surrogate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

func TestGPNormalVarianceExceedsPlainGP(t *testing.T) {
	X, y := toyDesign()

	lc := mean.NewLinearConstant(1)
	require.NoError(t, lc.SetPrior([]float64{0, 0}, []float64{1, 1}))
	gpn := NewGPNormal(kernel.NewSEIso(), lc, 1e-6, 1, 8)
	require.NoError(t, gpn.SetSamples(X, y))

	gp := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gp.SetSamples(X, y))

	x := []float64{2.5} // far outside the training range
	pn, err := gpn.Predict(x)
	require.NoError(t, err)
	pg, err := gp.Predict(x)
	require.NoError(t, err)
	assert.Greater(t, pn.Std, 0.0)
	assert.Greater(t, pn.Std, pg.Std)
}

func TestGPNormalPredictNonNegativeVariance(t *testing.T) {
	X, y := toyDesign()
	lc := mean.NewLinearConstant(1)
	require.NoError(t, lc.SetPrior([]float64{0, 0}, []float64{2, 2}))
	gpn := NewGPNormal(kernel.NewSEIso(), lc, 1e-6, 1, 8)
	require.NoError(t, gpn.SetSamples(X, y))
	for _, x := range [][]float64{{0.2}, {0.9}, {3.0}} {
		pred, err := gpn.Predict(x)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pred.Std, 0.0)
		assert.True(t, math.IsInf(pred.Nu, 1))
	}
}

func TestGPNormalFixedPriorPinsCoefficient(t *testing.T) {
	X, y := toyDesign()
	one := mean.NewOne()
	require.NoError(t, one.SetPrior([]float64{7}, []float64{0}))
	gpn := NewGPNormal(kernel.NewSEIso(), one, 1e-6, 1, 8)
	require.NoError(t, gpn.SetSamples(X, y))
	assert.InDelta(t, 7, one.Beta()[0], 1e-3)
}

func TestGPNormalNegLogLikelihoodFinite(t *testing.T) {
	X, y := toyDesign()
	lc := mean.NewLinearConstant(1)
	require.NoError(t, lc.SetPrior([]float64{0, 0}, []float64{1, 1}))
	gpn := NewGPNormal(kernel.NewSEIso(), lc, 1e-6, 1, 8)
	require.NoError(t, gpn.SetSamples(X, y))
	nll, err := gpn.NegLogLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(nll) || math.IsInf(nll, 0))
}

func TestGPNormalZeroMeanMatchesZeroFeatureCount(t *testing.T) {
	X, y := toyDesign()
	gpn := NewGPNormal(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gpn.SetSamples(X, y))
	gp := NewGP(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, gp.SetSamples(X, y))
	pn, err := gpn.Predict([]float64{0.4})
	require.NoError(t, err)
	pg, err := gp.Predict([]float64{0.4})
	require.NoError(t, err)
	assert.InDelta(t, pg.Mean, pn.Mean, 1e-9)
	assert.InDelta(t, pg.Std, pn.Std, 1e-9)
}

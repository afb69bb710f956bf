package surrogate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

func TestStudentTDegreesOfFreedomGrowWithSamples(t *testing.T) {
	X, y := toyDesign()
	st := NewStudentT(kernel.NewSEIso(), mean.NewZero(), 1e-6, 2, 1, 1, 8)
	require.NoError(t, st.SetSamples(X[:2], y[:2]))
	p2, err := st.Predict([]float64{0.3})
	require.NoError(t, err)

	st2 := NewStudentT(kernel.NewSEIso(), mean.NewZero(), 1e-6, 2, 1, 1, 8)
	require.NoError(t, st2.SetSamples(X, y))
	p3, err := st2.Predict([]float64{0.3})
	require.NoError(t, err)

	assert.Less(t, p2.Nu, p3.Nu)
	assert.False(t, math.IsInf(p2.Nu, 1))
}

func TestStudentTPredictNonNegativeVariance(t *testing.T) {
	X, y := toyDesign()
	st := NewStudentTJef(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	require.NoError(t, st.SetSamples(X, y))
	for _, x := range [][]float64{{0.2}, {0.9}, {3.0}} {
		pred, err := st.Predict(x)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pred.Std, 0.0)
		assert.False(t, math.IsInf(pred.Nu, 1))
	}
}

func TestStudentTJefIsA0B0ZeroParameterisation(t *testing.T) {
	jef := NewStudentTJef(kernel.NewSEIso(), mean.NewZero(), 1e-6, 1, 8)
	explicit := NewStudentT(kernel.NewSEIso(), mean.NewZero(), 1e-6, 0, 0, 1, 8)
	X, y := toyDesign()
	require.NoError(t, jef.SetSamples(X, y))
	require.NoError(t, explicit.SetSamples(X, y))
	pj, err := jef.Predict([]float64{0.4})
	require.NoError(t, err)
	pe, err := explicit.Predict([]float64{0.4})
	require.NoError(t, err)
	assert.InDelta(t, pe.Mean, pj.Mean, 1e-12)
	assert.InDelta(t, pe.Std, pj.Std, 1e-12)
	assert.InDelta(t, pe.Nu, pj.Nu, 1e-12)
}

func TestStudentTNegLogLikelihoodFinite(t *testing.T) {
	X, y := toyDesign()
	st := NewStudentT(kernel.NewSEIso(), mean.NewZero(), 1e-6, 2, 1, 1, 8)
	require.NoError(t, st.SetSamples(X, y))
	nll, err := st.NegLogLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(nll) || math.IsInf(nll, 0))
}

func TestStudentTWithLearnedMeanNegLogLikelihoodFinite(t *testing.T) {
	X, y := toyDesign()
	lc := mean.NewLinearConstant(1)
	require.NoError(t, lc.SetPrior([]float64{0, 0}, []float64{1, 1}))
	st := NewStudentT(kernel.NewSEIso(), lc, 1e-6, 2, 1, 1, 8)
	require.NoError(t, st.SetSamples(X, y))
	nll, err := st.NegLogLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(nll) || math.IsInf(nll, 0))
}

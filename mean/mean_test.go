package mean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroMeanIsAlwaysZero(t *testing.T) {
	z := NewZero()
	assert.Equal(t, 0, z.NFeatures())
	assert.Equal(t, 0.0, z.Value([]float64{1, 2, 3}))
}

func TestLinearMeanMatchesDotProduct(t *testing.T) {
	l := NewLinear(3)
	require.NoError(t, l.SetBeta([]float64{1, 2, 3}))
	x := []float64{0.1, 0.2, 0.3}
	want := 0.1*1 + 0.2*2 + 0.3*3
	assert.InDelta(t, want, l.Value(x), 1e-12)
}

func TestLinearConstantAppendsBiasFeature(t *testing.T) {
	lc := NewLinearConstant(2)
	require.NoError(t, lc.SetBeta([]float64{1, -1, 5}))
	x := []float64{0.4, 0.1}
	want := 0.4*1 + 0.1*(-1) + 5
	assert.InDelta(t, want, lc.Value(x), 1e-12)
}

func TestSetBetaWrongLength(t *testing.T) {
	o := NewOne()
	err := o.SetBeta([]float64{1, 2})
	require.Error(t, err)
	var betaErr *ErrBetaCount
	require.ErrorAs(t, err, &betaErr)
}

func TestFeaturesAllMatchesPerPointFeatures(t *testing.T) {
	lc := NewLinearConstant(2)
	X := [][]float64{{0.1, 0.2}, {0.5, 0.9}}
	phis := lc.FeaturesAll(X)
	require.Len(t, phis, 2)
	for i, x := range X {
		assert.Equal(t, lc.Features(x), phis[i])
	}
}

func TestParseResolvesEachMeanName(t *testing.T) {
	for _, name := range []string{"Zero", "One", "Constant", "Linear", "LinearConstant"} {
		m, err := Parse(name, 3)
		require.NoError(t, err, name)
		assert.NotNil(t, m)
	}
}

func TestParseRejectsUnknownMeanName(t *testing.T) {
	_, err := Parse("Bogus", 1)
	assert.Error(t, err)
}

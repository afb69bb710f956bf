package inneropt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// negParaboloid has its maximum of 0 at (0.3, -0.2), well inside the box.
func negParaboloid(x []float64) float64 {
	dx, dy := x[0]-0.3, x[1]+0.2
	return -(dx*dx + dy*dy)
}

func TestMaximizeFindsParaboloidPeak(t *testing.T) {
	g := &GlobalLocal{
		GlobalIterations: 40,
		GlobalPopulation: 16,
		Src:              rand.NewSource(1),
	}
	x0 := []float64{0, 0}
	xmin := []float64{-1, -1}
	xmax := []float64{1, 1}

	x, f, err := g.Maximize(negParaboloid, x0, xmin, xmax)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, x[0], 0.05)
	assert.InDelta(t, -0.2, x[1], 0.05)
	assert.InDelta(t, 0.0, f, 0.01)
}

func TestMaximizeClampsToBounds(t *testing.T) {
	// Peak lies outside the box; the returned point must still be feasible.
	peak := func(x []float64) float64 {
		dx, dy := x[0]-5, x[1]-5
		return -(dx*dx + dy*dy)
	}
	g := &GlobalLocal{
		GlobalIterations: 30,
		GlobalPopulation: 12,
		Src:              rand.NewSource(2),
	}
	x0 := []float64{0, 0}
	xmin := []float64{-1, -1}
	xmax := []float64{1, 1}

	x, _, err := g.Maximize(peak, x0, xmin, xmax)
	require.NoError(t, err)
	for i, v := range x {
		assert.GreaterOrEqual(t, v, xmin[i]-1e-6)
		assert.LessOrEqual(t, v, xmax[i]+1e-6)
	}
}

func TestMaximizeDeterministicUnderSeed(t *testing.T) {
	run := func(seed uint64) ([]float64, float64) {
		g := &GlobalLocal{
			GlobalIterations: 25,
			GlobalPopulation: 10,
			Src:              rand.NewSource(seed),
		}
		x, f, err := g.Maximize(negParaboloid, []float64{0, 0}, []float64{-1, -1}, []float64{1, 1})
		require.NoError(t, err)
		return x, f
	}
	x1, f1 := run(7)
	x2, f2 := run(7)
	assert.Equal(t, x1, x2)
	assert.Equal(t, f1, f2)
}

func TestClampBoxReplacesNaNWithBound(t *testing.T) {
	out := clampBox([]float64{math.NaN(), 5, -5}, []float64{-1, -1, -1}, []float64{1, 1, 1})
	assert.Equal(t, -1.0, out[0])
	assert.Equal(t, 1.0, out[1])
	assert.Equal(t, -1.0, out[2])
}

func TestResizeReusesCapacityAndGrows(t *testing.T) {
	buf := make([]float64, 0, 4)
	r := resize(buf, 3)
	assert.Len(t, r, 3)
	r2 := resize(buf, 10)
	assert.Len(t, r2, 10)
}

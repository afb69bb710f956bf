package surrogate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleK() *mat.SymDense {
	k := mat.NewSymDense(3, nil)
	pts := [][]float64{{0, 0}, {1, 0}, {0, 1}}
	for i := range pts {
		for j := i; j < len(pts); j++ {
			dx := pts[i][0] - pts[j][0]
			dy := pts[i][1] - pts[j][1]
			v := math.Exp(-(dx*dx + dy*dy))
			if i == j {
				v += 1e-6
			}
			k.SetSym(i, j, v)
		}
	}
	return k
}

func TestFactorizeReconstructsK(t *testing.T) {
	K := sampleK()
	c := NewGrowableCholesky(8)
	require.NoError(t, c.Factorize(K))
	n := K.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var got float64
			for kk := 0; kk <= min(i, j); kk++ {
				got += c.At(i, kk) * c.At(j, kk)
			}
			assert.InDelta(t, K.At(i, j), got, 1e-9)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestAppendMatchesFullFactorize(t *testing.T) {
	K := sampleK()
	full := NewGrowableCholesky(8)
	require.NoError(t, full.Factorize(K))

	K2 := mat.NewSymDense(2, nil)
	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			K2.SetSym(i, j, K.At(i, j))
		}
	}
	incr := NewGrowableCholesky(8)
	require.NoError(t, incr.Factorize(K2))
	kStar := []float64{K.At(2, 0), K.At(2, 1)}
	require.NoError(t, incr.Append(kStar, K.At(2, 2)))

	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			assert.InDelta(t, full.At(i, j), incr.At(i, j), 1e-9)
		}
	}
}

func TestAppendRejectsNonPositiveResidual(t *testing.T) {
	c := NewGrowableCholesky(4)
	K := mat.NewSymDense(1, []float64{1})
	require.NoError(t, c.Factorize(K))
	// kStar.kStar = kStarStar exactly zeroes the residual.
	err := c.Append([]float64{1}, 1)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestSolveRoundTrips(t *testing.T) {
	K := sampleK()
	c := NewGrowableCholesky(8)
	require.NoError(t, c.Factorize(K))
	b := []float64{0.5, -0.3, 1.2}
	x := c.Solve(b)
	for i := 0; i < 3; i++ {
		var got float64
		for j := 0; j < 3; j++ {
			got += K.At(i, j) * x[j]
		}
		assert.InDelta(t, b[i], got, 1e-7)
	}
}

func TestLogDetMatchesProductOfDiag(t *testing.T) {
	K := sampleK()
	c := NewGrowableCholesky(8)
	require.NoError(t, c.Factorize(K))
	want := 0.0
	for i := 0; i < 3; i++ {
		want += 2 * math.Log(c.Diag(i))
	}
	assert.InDelta(t, want, c.LogDet(), 1e-12)
}

func TestResetClearsFactor(t *testing.T) {
	K := sampleK()
	c := NewGrowableCholesky(8)
	require.NoError(t, c.Factorize(K))
	c.Reset()
	assert.Equal(t, 0, c.N())
}

package learner

import (
	"math"

	"golang.org/x/exp/rand"
)

// sliceSample draws one new value for a single coordinate via Neal's
// step-out/shrinkage slice sampler (Neal, 2003, fig. 3), given the
// current point x0 with log-density logf0 and a 1-D log-density logf.
// It returns the new coordinate value and its log-density, so the caller
// can thread curLP through a Gibbs sweep without recomputing it.
func sliceSample(rng *rand.Rand, x0, logf0, w float64, logf func(float64) float64) (float64, float64) {
	logY := logf0 + math.Log(rng.Float64())

	left := x0 - rng.Float64()*w
	right := left + w
	for i := 0; i < 100 && logf(left) > logY; i++ {
		left -= w
	}
	for i := 0; i < 100 && logf(right) > logY; i++ {
		right += w
	}

	for i := 0; i < 200; i++ {
		x1 := left + rng.Float64()*(right-left)
		lf := logf(x1)
		if lf > logY {
			return x1, lf
		}
		if x1 < x0 {
			left = x1
		} else {
			right = x1
		}
		if right-left < 1e-12 {
			return x0, logf0
		}
	}
	return x0, logf0
}

// Package design generates the initial sample set an optimisation run
// seeds its surrogate with, before any criterion is evaluated: n points
// in [0,1]^d spread by one of three strategies.
package design

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/rand"
)

// Method selects an initial-design generator.
type Method int

const (
	// LatinHypercube stratifies each dimension independently into n equal
	// bins, one sample per bin, then randomly permutes the bin order per
	// dimension so the joint design is not a regular grid.
	LatinHypercube Method = iota
	// Sobol uses a bit-reversed van der Corput sequence per dimension,
	// each dimension indexed with its own random odd stride and offset by
	// an independent random additive shift taken modulo 1 - a
	// direction-number-free approximation of a true Sobol sequence,
	// preserving low discrepancy and determinism under seed but not
	// matching the canonical direction numbers.
	Sobol
	// Uniform draws n points with independent uniform coordinates.
	Uniform
)

// Generate returns n points in [0,1]^d under method, seeded by src (a nil
// src is replaced by rand.NewSource(1), so the result is still
// deterministic).
func Generate(method Method, n, d int, src rand.Source) ([][]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("design: non-positive sample count %d", n)
	}
	if d <= 0 {
		return nil, fmt.Errorf("design: non-positive dimension %d", d)
	}
	if src == nil {
		src = rand.NewSource(1)
	}
	rng := rand.New(src)
	switch method {
	case LatinHypercube:
		return latinHypercube(n, d, rng), nil
	case Sobol:
		return sobolLike(n, d, rng), nil
	case Uniform:
		return uniform(n, d, rng), nil
	default:
		return nil, fmt.Errorf("design: unknown method %d", method)
	}
}

func latinHypercube(n, d int, rng *rand.Rand) [][]float64 {
	points := make([][]float64, n)
	for i := range points {
		points[i] = make([]float64, d)
	}
	for j := 0; j < d; j++ {
		perm := rng.Perm(n)
		for i := 0; i < n; i++ {
			bin := perm[i]
			points[i][j] = (float64(bin) + rng.Float64()) / float64(n)
		}
	}
	return points
}

// vanDerCorput returns the base-2 van der Corput value of i: the bits of
// i reversed around the binary point.
func vanDerCorput(i uint32) float64 {
	return float64(bits.Reverse32(i)) / 4294967296.0
}

func sobolLike(n, d int, rng *rand.Rand) [][]float64 {
	shifts := make([]float64, d)
	strides := make([]uint32, d)
	for j := 0; j < d; j++ {
		shifts[j] = rng.Float64()
		// An odd stride keeps the sequence full-period over uint32 and
		// gives each dimension a distinct low-discrepancy ordering.
		strides[j] = uint32(2*rng.Intn(1<<20) + 1)
	}
	points := make([][]float64, n)
	for i := 0; i < n; i++ {
		points[i] = make([]float64, d)
		for j := 0; j < d; j++ {
			v := vanDerCorput(uint32(i) * strides[j])
			v += shifts[j]
			v -= float64(int(v))
			points[i][j] = v
		}
	}
	return points
}

func uniform(n, d int, rng *rand.Rand) [][]float64 {
	points := make([][]float64, n)
	for i := range points {
		row := make([]float64, d)
		for j := range row {
			row[j] = rng.Float64()
		}
		points[i] = row
	}
	return points
}

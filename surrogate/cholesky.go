package surrogate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotPositiveDefinite is returned when a full factorization or a rank-1
// append would produce a non-positive diagonal entry.
var ErrNotPositiveDefinite = errors.New("surrogate: cholesky lost positive-definiteness")

// GrowableCholesky is a lower-triangular Cholesky factor L, L L^T = K, that
// can be extended one row/column at a time in O(n^2) without refactoring
// (the "rank-1 Cholesky append" from the design notes), with storage
// pre-reserved up to a fixed capacity the way the teacher's resize helpers
// in types.go avoid reallocating on every sample.
type GrowableCholesky struct {
	capacity int
	n        int
	data     []float64 // row-major dense capacity x capacity, lower part used
}

// NewGrowableCholesky allocates a factor with room for up to capacity
// samples.
func NewGrowableCholesky(capacity int) *GrowableCholesky {
	return &GrowableCholesky{capacity: capacity, data: make([]float64, capacity*capacity)}
}

// N returns the current factor size.
func (c *GrowableCholesky) N() int { return c.n }

// Reset empties the factor without releasing its backing storage.
func (c *GrowableCholesky) Reset() {
	c.n = 0
	for i := range c.data {
		c.data[i] = 0
	}
}

func (c *GrowableCholesky) at(i, j int) float64    { return c.data[i*c.capacity+j] }
func (c *GrowableCholesky) set(i, j int, v float64) { c.data[i*c.capacity+j] = v }

// At returns L[i][j] (0 above the diagonal).
func (c *GrowableCholesky) At(i, j int) float64 {
	if j > i {
		return 0
	}
	return c.at(i, j)
}

// Factorize performs a full decomposition of the symmetric K (n x n),
// discarding any previous content. It reports ErrNotPositiveDefinite if K
// is not SPD.
func (c *GrowableCholesky) Factorize(K *mat.SymDense) error {
	n := K.SymmetricDim()
	if n > c.capacity {
		return fmt.Errorf("surrogate: cholesky capacity %d exceeded by n=%d", c.capacity, n)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return ErrNotPositiveDefinite
	}
	U := chol.RawU() // K = U^T U, so L = U^T
	c.n = n
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			c.set(i, j, U.At(j, i))
		}
	}
	return nil
}

// Append extends the factor by one row/column given the new point's
// correlation to every existing sample (kStar, length N()) and its
// regularised self-correlation kStarStar = k(x,x)+noise. On failure the
// factor is left unchanged; the caller is expected to trigger a full
// Factorize refactor.
func (c *GrowableCholesky) Append(kStar []float64, kStarStar float64) error {
	n := c.n
	if n+1 > c.capacity {
		return fmt.Errorf("surrogate: cholesky capacity %d exceeded", c.capacity)
	}
	l := c.ForwardSolve(kStar)
	var sq float64
	for _, v := range l {
		sq += v * v
	}
	d2 := kStarStar - sq
	if d2 <= 0 || math.IsNaN(d2) {
		return ErrNotPositiveDefinite
	}
	d := math.Sqrt(d2)
	for j := 0; j < n; j++ {
		c.set(n, j, l[j])
	}
	c.set(n, n, d)
	c.n = n + 1
	return nil
}

// ForwardSolve solves L y = b for y.
func (c *GrowableCholesky) ForwardSolve(b []float64) []float64 {
	n := c.n
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		s := b[i]
		for j := 0; j < i; j++ {
			s -= c.at(i, j) * y[j]
		}
		y[i] = s / c.at(i, i)
	}
	return y
}

// BackSolve solves L^T y = b for y.
func (c *GrowableCholesky) BackSolve(b []float64) []float64 {
	n := c.n
	y := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < n; j++ {
			s -= c.at(j, i) * y[j]
		}
		y[i] = s / c.at(i, i)
	}
	return y
}

// Solve solves K y = b (i.e. L L^T y = b) via forward then back
// substitution.
func (c *GrowableCholesky) Solve(b []float64) []float64 {
	return c.BackSolve(c.ForwardSolve(b))
}

// LogDet returns log(det(K)) = 2 * sum(log(diag(L))).
func (c *GrowableCholesky) LogDet() float64 {
	var s float64
	for i := 0; i < c.n; i++ {
		s += math.Log(c.at(i, i))
	}
	return 2 * s
}

// Diag returns L[i][i].
func (c *GrowableCholesky) Diag(i int) float64 { return c.at(i, i) }

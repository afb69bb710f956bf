// Package kernel implements the covariance kernels used by the surrogate
// processes: atomic kernels and the Sum/Prod combinators that build a tree
// of them.
package kernel

import "fmt"

// Kernel is the capability set every atomic or composite kernel exposes.
// Composite kernels flatten their children's hyperparameters left to right,
// so a hyperparameter index always routes unambiguously to a single leaf.
type Kernel interface {
	// Eval returns k(x1,x2).
	Eval(x1, x2 []float64) float64
	// Gradient returns the partial derivative of k wrt the idx-th
	// hyperparameter of the flattened vector.
	Gradient(x1, x2 []float64, idx int) float64
	// NHP returns the number of hyperparameters, len(HP()).
	NHP() int
	// HP returns the current flattened hyperparameter vector.
	HP() []float64
	// SetHP sets the flattened hyperparameter vector. Returns an error if
	// len(theta) != NHP().
	SetHP(theta []float64) error
}

// ErrHPCount is returned by SetHP when the supplied vector has the wrong
// length.
type ErrHPCount struct {
	Kernel string
	Want   int
	Got    int
}

func (e *ErrHPCount) Error() string {
	return fmt.Sprintf("kernel: %s expects %d hyperparameters, got %d", e.Kernel, e.Want, e.Got)
}

func checkHP(name string, want int, theta []float64) error {
	if len(theta) != want {
		return &ErrHPCount{Kernel: name, Want: want, Got: len(theta)}
	}
	return nil
}

func sqDist(x1, x2 []float64) float64 {
	var s float64
	for i := range x1 {
		d := x1[i] - x2[i]
		s += d * d
	}
	return s
}

func dot(x1, x2 []float64) float64 {
	var s float64
	for i := range x1 {
		s += x1[i] * x2[i]
	}
	return s
}

// ardRadius returns the sum of squared, per-dimension length-scaled
// distances used by ARD kernels: sum((x1_i-x2_i)^2 / theta_i^2).
func ardRadius(x1, x2, theta []float64) float64 {
	var s float64
	for i := range x1 {
		d := (x1[i] - x2[i]) / theta[i]
		s += d * d
	}
	return s
}

// isoRadius is ardRadius with a single shared length-scale.
func isoRadius(x1, x2 []float64, theta float64) float64 {
	return sqDist(x1, x2) / (theta * theta)
}

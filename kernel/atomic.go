package kernel

import "math"

// Const is a constant kernel k(x1,x2) = sf2, with a single hyperparameter
// theta[0] = sf2 (the constant itself, not its log).
type Const struct {
	theta [1]float64
}

// NewConst returns a Const kernel with sf2 = 1.
func NewConst() *Const { return &Const{theta: [1]float64{1}} }

func (k *Const) Eval(x1, x2 []float64) float64 { return k.theta[0] }

func (k *Const) Gradient(x1, x2 []float64, idx int) float64 {
	if idx == 0 {
		return 1
	}
	return 0
}

func (k *Const) NHP() int         { return 1 }
func (k *Const) HP() []float64    { return k.theta[:] }
func (k *Const) SetHP(theta []float64) error {
	if err := checkHP("Const", 1, theta); err != nil {
		return err
	}
	k.theta[0] = theta[0]
	return nil
}

// Linear is the dot-product kernel k(x1,x2) = x1 . x2. It has no
// hyperparameters.
type Linear struct{}

// NewLinear returns a Linear kernel.
func NewLinear() *Linear { return &Linear{} }

func (k *Linear) Eval(x1, x2 []float64) float64                 { return dot(x1, x2) }
func (k *Linear) Gradient(x1, x2 []float64, idx int) float64    { return 0 }
func (k *Linear) NHP() int                                      { return 0 }
func (k *Linear) HP() []float64                                 { return nil }
func (k *Linear) SetHP(theta []float64) error                   { return checkHP("Linear", 0, theta) }

// LinearARD is the dot-product kernel with a per-dimension length-scale:
// k(x1,x2) = sum_i (x1_i/theta_i) * (x2_i/theta_i).
type LinearARD struct {
	theta []float64
}

// NewLinearARD returns a LinearARD kernel for a d-dimensional input, all
// length-scales initialised to 1.
func NewLinearARD(d int) *LinearARD {
	theta := make([]float64, d)
	for i := range theta {
		theta[i] = 1
	}
	return &LinearARD{theta: theta}
}

func (k *LinearARD) Eval(x1, x2 []float64) float64 {
	var s float64
	for i := range x1 {
		s += (x1[i] / k.theta[i]) * (x2[i] / k.theta[i])
	}
	return s
}

func (k *LinearARD) Gradient(x1, x2 []float64, idx int) float64 {
	// d/dtheta_idx [x1_idx x2_idx / theta_idx^2] = -2 x1_idx x2_idx / theta_idx^3
	return -2 * x1[idx] * x2[idx] / (k.theta[idx] * k.theta[idx] * k.theta[idx])
}

func (k *LinearARD) NHP() int      { return len(k.theta) }
func (k *LinearARD) HP() []float64 { return k.theta }
func (k *LinearARD) SetHP(theta []float64) error {
	if err := checkHP("LinearARD", len(k.theta), theta); err != nil {
		return err
	}
	copy(k.theta, theta)
	return nil
}

// Hamming is a kernel over categorical/discrete inputs encoded as
// float64 codes: k(x1,x2) = exp(-mismatches/theta[0]), where mismatches is
// the count of differing coordinates.
type Hamming struct {
	theta [1]float64
}

// NewHamming returns a Hamming kernel with length-scale 1.
func NewHamming() *Hamming { return &Hamming{theta: [1]float64{1}} }

func (k *Hamming) mismatches(x1, x2 []float64) float64 {
	var n float64
	for i := range x1 {
		if x1[i] != x2[i] {
			n++
		}
	}
	return n
}

func (k *Hamming) Eval(x1, x2 []float64) float64 {
	return math.Exp(-k.mismatches(x1, x2) / k.theta[0])
}

func (k *Hamming) Gradient(x1, x2 []float64, idx int) float64 {
	m := k.mismatches(x1, x2)
	return math.Exp(-m/k.theta[0]) * m / (k.theta[0] * k.theta[0])
}

func (k *Hamming) NHP() int      { return 1 }
func (k *Hamming) HP() []float64 { return k.theta[:] }
func (k *Hamming) SetHP(theta []float64) error {
	if err := checkHP("Hamming", 1, theta); err != nil {
		return err
	}
	k.theta[0] = theta[0]
	return nil
}

// Polynomial is k(x1,x2) = (x1.x2 + theta[0])^degree, degree in [1,6].
type Polynomial struct {
	degree int
	theta  [1]float64
}

// NewPolynomial returns a Polynomial kernel of the given degree (clamped to
// [1,6]) with offset 1.
func NewPolynomial(degree int) *Polynomial {
	if degree < 1 {
		degree = 1
	}
	if degree > 6 {
		degree = 6
	}
	return &Polynomial{degree: degree, theta: [1]float64{1}}
}

func (k *Polynomial) Eval(x1, x2 []float64) float64 {
	return math.Pow(dot(x1, x2)+k.theta[0], float64(k.degree))
}

func (k *Polynomial) Gradient(x1, x2 []float64, idx int) float64 {
	base := dot(x1, x2) + k.theta[0]
	return float64(k.degree) * math.Pow(base, float64(k.degree-1))
}

func (k *Polynomial) NHP() int      { return 1 }
func (k *Polynomial) HP() []float64 { return k.theta[:] }
func (k *Polynomial) SetHP(theta []float64) error {
	if err := checkHP("Polynomial", 1, theta); err != nil {
		return err
	}
	k.theta[0] = theta[0]
	return nil
}

// Degree returns the polynomial's fixed degree.
func (k *Polynomial) Degree() int { return k.degree }

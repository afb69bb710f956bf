package kernel

import "math"

// SEIso is the isotropic squared-exponential kernel
// k(x1,x2) = exp(-0.5*||x1-x2||^2/theta^2), theta = HP()[0].
type SEIso struct {
	theta [1]float64
}

// NewSEIso returns an SEIso kernel with length-scale 1.
func NewSEIso() *SEIso { return &SEIso{theta: [1]float64{1}} }

func (k *SEIso) Eval(x1, x2 []float64) float64 {
	return math.Exp(-0.5 * isoRadius(x1, x2, k.theta[0]))
}

func (k *SEIso) Gradient(x1, x2 []float64, idx int) float64 {
	r2 := isoRadius(x1, x2, k.theta[0])
	return math.Exp(-0.5*r2) * r2 / k.theta[0]
}

func (k *SEIso) NHP() int      { return 1 }
func (k *SEIso) HP() []float64 { return k.theta[:] }
func (k *SEIso) SetHP(theta []float64) error {
	if err := checkHP("SEIso", 1, theta); err != nil {
		return err
	}
	k.theta[0] = theta[0]
	return nil
}

// SEArd is the squared-exponential kernel with one length-scale per input
// dimension.
type SEArd struct {
	theta []float64
}

// NewSEArd returns an SEArd kernel for a d-dimensional input.
func NewSEArd(d int) *SEArd {
	theta := make([]float64, d)
	for i := range theta {
		theta[i] = 1
	}
	return &SEArd{theta: theta}
}

func (k *SEArd) Eval(x1, x2 []float64) float64 {
	return math.Exp(-0.5 * ardRadius(x1, x2, k.theta))
}

func (k *SEArd) Gradient(x1, x2 []float64, idx int) float64 {
	r2 := ardRadius(x1, x2, k.theta)
	d := x1[idx] - x2[idx]
	return math.Exp(-0.5*r2) * d * d / (k.theta[idx] * k.theta[idx] * k.theta[idx])
}

func (k *SEArd) NHP() int      { return len(k.theta) }
func (k *SEArd) HP() []float64 { return k.theta }
func (k *SEArd) SetHP(theta []float64) error {
	if err := checkHP("SEArd", len(k.theta), theta); err != nil {
		return err
	}
	copy(k.theta, theta)
	return nil
}

// RQIso is the isotropic rational-quadratic kernel
// k(x1,x2) = (1 + r^2/(2*alpha))^-alpha, r^2 = ||x1-x2||^2/l^2.
// HP() = [l, alpha].
type RQIso struct {
	theta [2]float64
}

// NewRQIso returns an RQIso kernel with l=1, alpha=1.
func NewRQIso() *RQIso { return &RQIso{theta: [2]float64{1, 1}} }

func (k *RQIso) r2(x1, x2 []float64) float64 {
	return isoRadius(x1, x2, k.theta[0])
}

func (k *RQIso) Eval(x1, x2 []float64) float64 {
	r2 := k.r2(x1, x2)
	alpha := k.theta[1]
	return math.Pow(1+r2/(2*alpha), -alpha)
}

func (k *RQIso) Gradient(x1, x2 []float64, idx int) float64 {
	r2 := k.r2(x1, x2)
	l, alpha := k.theta[0], k.theta[1]
	base := 1 + r2/(2*alpha)
	switch idx {
	case 0:
		return math.Pow(base, -alpha-1) * r2 / l
	case 1:
		f := math.Pow(base, -alpha)
		return f * (-math.Log(base) + r2/(2*alpha*base))
	}
	return 0
}

func (k *RQIso) NHP() int      { return 2 }
func (k *RQIso) HP() []float64 { return k.theta[:] }
func (k *RQIso) SetHP(theta []float64) error {
	if err := checkHP("RQIso", 2, theta); err != nil {
		return err
	}
	copy(k.theta[:], theta)
	return nil
}

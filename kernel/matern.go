package kernel

import "math"

// maternFamily holds the three closed forms of the Matern covariance
// function; iso kernels use a single shared length-scale, ard kernels use
// one length-scale per input dimension.
type maternFamily struct {
	nu     float64 // 1, 3 or 5, naming the half-integer order (nu/2)
	sqrtNu float64
	theta  []float64
	ard    bool
}

func newMaternFamily(nu float64, d int, ard bool) *maternFamily {
	n := 1
	if ard {
		n = d
	}
	theta := make([]float64, n)
	for i := range theta {
		theta[i] = 1
	}
	return &maternFamily{nu: nu, sqrtNu: math.Sqrt(nu), theta: theta, ard: ard}
}

// r, rPerDim returns the scaled Euclidean distance and, for ARD kernels,
// the per-dimension scaled differences used in the gradient.
func (k *maternFamily) r(x1, x2 []float64) (float64, []float64) {
	if k.ard {
		rd := make([]float64, len(x1))
		var sq float64
		for i := range x1 {
			rd[i] = (x1[i] - x2[i]) / k.theta[i]
			sq += rd[i] * rd[i]
		}
		return math.Sqrt(sq), rd
	}
	return math.Sqrt(isoRadius(x1, x2, k.theta[0])), nil
}

// value and dValue/dr evaluate the Matern closed form and its derivative
// wrt r, parameterised by sqrt(nu)*r.
func (k *maternFamily) value(r float64) float64 {
	sr := k.sqrtNu * r
	switch k.nu {
	case 1:
		return math.Exp(-sr)
	case 3:
		return (1 + sr) * math.Exp(-sr)
	case 5:
		return (1 + sr + sr*sr/3) * math.Exp(-sr)
	}
	return math.Exp(-sr)
}

func (k *maternFamily) dValueDr(r float64) float64 {
	sr := k.sqrtNu * r
	switch k.nu {
	case 1:
		return -k.sqrtNu * math.Exp(-sr)
	case 3:
		return -k.nu * r * math.Exp(-sr)
	case 5:
		return -k.nu / 3 * r * (1 + sr) * math.Exp(-sr)
	}
	return -k.sqrtNu * math.Exp(-sr)
}

func (k *maternFamily) eval(x1, x2 []float64) float64 {
	r, _ := k.r(x1, x2)
	return k.value(r)
}

// gradient wrt theta[idx]. For the iso case idx is always 0; for the ARD
// case dR/dtheta_idx = -r_idx^2/(r*theta_idx) when r>0.
func (k *maternFamily) gradient(x1, x2 []float64, idx int) float64 {
	r, rd := k.r(x1, x2)
	dv := k.dValueDr(r)
	if !k.ard {
		if r == 0 {
			return 0
		}
		dr := -r / k.theta[0]
		return dv * dr
	}
	if r == 0 {
		return 0
	}
	dr := -rd[idx] * rd[idx] / (r * k.theta[idx])
	return dv * dr
}

func (k *maternFamily) nhp() int      { return len(k.theta) }
func (k *maternFamily) hp() []float64 { return k.theta }
func (k *maternFamily) setHP(name string, theta []float64) error {
	if err := checkHP(name, len(k.theta), theta); err != nil {
		return err
	}
	copy(k.theta, theta)
	return nil
}

// Matern1Iso, Matern1Ard, Matern3Iso, Matern3Ard, Matern5Iso, Matern5Ard are
// the six Matern flavours from the half-integer family nu in {1/2,3/2,5/2},
// each either isotropic (one shared length-scale) or ARD (one per
// dimension).

type Matern1Iso struct{ f *maternFamily }

func NewMatern1Iso() *Matern1Iso { return &Matern1Iso{f: newMaternFamily(1, 1, false)} }
func (k *Matern1Iso) Eval(x1, x2 []float64) float64              { return k.f.eval(x1, x2) }
func (k *Matern1Iso) Gradient(x1, x2 []float64, idx int) float64 { return k.f.gradient(x1, x2, idx) }
func (k *Matern1Iso) NHP() int                                   { return k.f.nhp() }
func (k *Matern1Iso) HP() []float64                              { return k.f.hp() }
func (k *Matern1Iso) SetHP(theta []float64) error                { return k.f.setHP("Matern1Iso", theta) }

type Matern1Ard struct{ f *maternFamily }

func NewMatern1Ard(d int) *Matern1Ard { return &Matern1Ard{f: newMaternFamily(1, d, true)} }
func (k *Matern1Ard) Eval(x1, x2 []float64) float64              { return k.f.eval(x1, x2) }
func (k *Matern1Ard) Gradient(x1, x2 []float64, idx int) float64 { return k.f.gradient(x1, x2, idx) }
func (k *Matern1Ard) NHP() int                                   { return k.f.nhp() }
func (k *Matern1Ard) HP() []float64                              { return k.f.hp() }
func (k *Matern1Ard) SetHP(theta []float64) error                { return k.f.setHP("Matern1Ard", theta) }

type Matern3Iso struct{ f *maternFamily }

func NewMatern3Iso() *Matern3Iso { return &Matern3Iso{f: newMaternFamily(3, 1, false)} }
func (k *Matern3Iso) Eval(x1, x2 []float64) float64              { return k.f.eval(x1, x2) }
func (k *Matern3Iso) Gradient(x1, x2 []float64, idx int) float64 { return k.f.gradient(x1, x2, idx) }
func (k *Matern3Iso) NHP() int                                   { return k.f.nhp() }
func (k *Matern3Iso) HP() []float64                              { return k.f.hp() }
func (k *Matern3Iso) SetHP(theta []float64) error                { return k.f.setHP("Matern3Iso", theta) }

type Matern3Ard struct{ f *maternFamily }

func NewMatern3Ard(d int) *Matern3Ard { return &Matern3Ard{f: newMaternFamily(3, d, true)} }
func (k *Matern3Ard) Eval(x1, x2 []float64) float64              { return k.f.eval(x1, x2) }
func (k *Matern3Ard) Gradient(x1, x2 []float64, idx int) float64 { return k.f.gradient(x1, x2, idx) }
func (k *Matern3Ard) NHP() int                                   { return k.f.nhp() }
func (k *Matern3Ard) HP() []float64                              { return k.f.hp() }
func (k *Matern3Ard) SetHP(theta []float64) error                { return k.f.setHP("Matern3Ard", theta) }

type Matern5Iso struct{ f *maternFamily }

func NewMatern5Iso() *Matern5Iso { return &Matern5Iso{f: newMaternFamily(5, 1, false)} }
func (k *Matern5Iso) Eval(x1, x2 []float64) float64              { return k.f.eval(x1, x2) }
func (k *Matern5Iso) Gradient(x1, x2 []float64, idx int) float64 { return k.f.gradient(x1, x2, idx) }
func (k *Matern5Iso) NHP() int                                   { return k.f.nhp() }
func (k *Matern5Iso) HP() []float64                              { return k.f.hp() }
func (k *Matern5Iso) SetHP(theta []float64) error                { return k.f.setHP("Matern5Iso", theta) }

// Matern5Ard: the reference implementation's gradient uses sqrt(r_idx) in
// place of r_idx^2, which does not correspond to d(r^2)/dtheta_idx for any
// reading of the formula. This implementation uses the mathematically
// correct chain rule instead; see DESIGN.md.
type Matern5Ard struct{ f *maternFamily }

func NewMatern5Ard(d int) *Matern5Ard { return &Matern5Ard{f: newMaternFamily(5, d, true)} }
func (k *Matern5Ard) Eval(x1, x2 []float64) float64              { return k.f.eval(x1, x2) }
func (k *Matern5Ard) Gradient(x1, x2 []float64, idx int) float64 { return k.f.gradient(x1, x2, idx) }
func (k *Matern5Ard) NHP() int                                   { return k.f.nhp() }
func (k *Matern5Ard) HP() []float64                              { return k.f.hp() }
func (k *Matern5Ard) SetHP(theta []float64) error                { return k.f.setHP("Matern5Ard", theta) }

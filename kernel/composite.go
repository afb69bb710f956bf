package kernel

// Sum is k(x1,x2) = k1(x1,x2) + k2(x1,x2). Hyperparameters are the
// concatenation of k1's then k2's, flattened left to right.
type Sum struct {
	K1, K2 Kernel
}

// NewSum combines two kernels additively.
func NewSum(k1, k2 Kernel) *Sum { return &Sum{K1: k1, K2: k2} }

func (k *Sum) Eval(x1, x2 []float64) float64 {
	return k.K1.Eval(x1, x2) + k.K2.Eval(x1, x2)
}

func (k *Sum) Gradient(x1, x2 []float64, idx int) float64 {
	n1 := k.K1.NHP()
	if idx < n1 {
		return k.K1.Gradient(x1, x2, idx)
	}
	return k.K2.Gradient(x1, x2, idx-n1)
}

func (k *Sum) NHP() int { return k.K1.NHP() + k.K2.NHP() }

func (k *Sum) HP() []float64 {
	return append(append([]float64{}, k.K1.HP()...), k.K2.HP()...)
}

func (k *Sum) SetHP(theta []float64) error {
	if err := checkHP("Sum", k.NHP(), theta); err != nil {
		return err
	}
	n1 := k.K1.NHP()
	if err := k.K1.SetHP(theta[:n1]); err != nil {
		return err
	}
	return k.K2.SetHP(theta[n1:])
}

// Prod is k(x1,x2) = k1(x1,x2) * k2(x1,x2). Gradient wrt a hyperparameter
// owned by one child multiplies that child's gradient by the other
// child's evaluation (product rule, with the unselected factor constant).
type Prod struct {
	K1, K2 Kernel
}

// NewProd combines two kernels multiplicatively.
func NewProd(k1, k2 Kernel) *Prod { return &Prod{K1: k1, K2: k2} }

func (k *Prod) Eval(x1, x2 []float64) float64 {
	return k.K1.Eval(x1, x2) * k.K2.Eval(x1, x2)
}

func (k *Prod) Gradient(x1, x2 []float64, idx int) float64 {
	n1 := k.K1.NHP()
	if idx < n1 {
		return k.K1.Gradient(x1, x2, idx) * k.K2.Eval(x1, x2)
	}
	return k.K1.Eval(x1, x2) * k.K2.Gradient(x1, x2, idx-n1)
}

func (k *Prod) NHP() int { return k.K1.NHP() + k.K2.NHP() }

func (k *Prod) HP() []float64 {
	return append(append([]float64{}, k.K1.HP()...), k.K2.HP()...)
}

func (k *Prod) SetHP(theta []float64) error {
	if err := checkHP("Prod", k.NHP(), theta); err != nil {
		return err
	}
	n1 := k.K1.NHP()
	if err := k.K1.SetHP(theta[:n1]); err != nil {
		return err
	}
	return k.K2.SetHP(theta[n1:])
}

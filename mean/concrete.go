package mean

// Zero is mu(x) = 0 for all x: m=0, empty feature vector.
type Zero struct{ base }

// NewZero returns the zero mean.
func NewZero() *Zero { return &Zero{base: newBase("Zero", 0)} }

func (z *Zero) Features(x []float64) []float64         { return nil }
func (z *Zero) FeaturesAll(X [][]float64) [][]float64  { return featuresAllOf(z, X) }
func (z *Zero) Value(x []float64) float64              { return 0 }

// One is mu(x) = beta[0], a single constant feature phi(x)=[1].
type One struct{ base }

// NewOne returns a One mean with beta=0.
func NewOne() *One { return &One{base: newBase("One", 1)} }

func (o *One) Features(x []float64) []float64        { return []float64{1} }
func (o *One) FeaturesAll(X [][]float64) [][]float64 { return featuresAllOf(o, X) }
func (o *One) Value(x []float64) float64             { return valueOf(o, x) }

// Constant is an alias of One kept distinct so config can name it
// separately: mu(x) = beta[0] with a nameable, independently configurable
// prior.
type Constant struct{ base }

// NewConstant returns a Constant mean with beta=0.
func NewConstant() *Constant { return &Constant{base: newBase("Constant", 1)} }

func (c *Constant) Features(x []float64) []float64        { return []float64{1} }
func (c *Constant) FeaturesAll(X [][]float64) [][]float64 { return featuresAllOf(c, X) }
func (c *Constant) Value(x []float64) float64             { return valueOf(c, x) }

// Linear is mu(x) = beta . x, m = d.
type Linear struct{ base }

// NewLinear returns a Linear mean for a d-dimensional input, beta=0.
func NewLinear(d int) *Linear { return &Linear{base: newBase("Linear", d)} }

func (l *Linear) Features(x []float64) []float64 {
	phi := make([]float64, len(x))
	copy(phi, x)
	return phi
}
func (l *Linear) FeaturesAll(X [][]float64) [][]float64 { return featuresAllOf(l, X) }
func (l *Linear) Value(x []float64) float64             { return valueOf(l, x) }

// LinearConstant is mu(x) = beta[0:d].x + beta[d], m = d+1.
type LinearConstant struct{ base }

// NewLinearConstant returns a LinearConstant mean for a d-dimensional
// input, beta=0.
func NewLinearConstant(d int) *LinearConstant {
	return &LinearConstant{base: newBase("LinearConstant", d+1)}
}

func (l *LinearConstant) Features(x []float64) []float64 {
	phi := make([]float64, len(x)+1)
	copy(phi, x)
	phi[len(x)] = 1
	return phi
}
func (l *LinearConstant) FeaturesAll(X [][]float64) [][]float64 { return featuresAllOf(l, X) }
func (l *LinearConstant) Value(x []float64) float64             { return valueOf(l, x) }

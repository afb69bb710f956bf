package surrogate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/mean"
)

// process is the scaffolding shared by every surrogate flavour: sample
// set, kernel, mean, nugget, Cholesky factor and the GLS weights used to
// form the predictive mean. Concrete flavours (gp.go, gpnormal.go,
// studentt.go) embed it and only specialise the predictive-variance extra
// term, the degrees of freedom and the marginal likelihood.
type process struct {
	kern  kernel.Kernel
	mn    mean.Mean
	noise float64 // sigma_n^2, the nugget added to the correlation diagonal

	dim int
	x   [][]float64
	y   []float64

	chol *GrowableCholesky
	beta []float64   // GLS estimate of the mean coefficients
	w    []float64   // L^-1 (y - Phi^T beta), the whitened residual
	ftil [][]float64 // m x n, ftil[k] = L^-1 Phi_k, the whitened design
	aReg [][]float64 // the (possibly prior-regularised) GLS normal matrix
	bReg []float64   // the (possibly prior-regularised) GLS RHS
	ytil []float64   // L^-1 y, cached for the marginal-likelihood flavours

	// betaSolve computes the GLS mean coefficients from the normal
	// equations (a, b). It is a field rather than a method so that
	// GP-Normal and Student-t can install their own prior-regularised
	// solver without relying on embedding to dispatch back to an
	// override - a *process embedded in a flavour struct only ever calls
	// its own methods, never the outer type's.
	betaSolve func(a [][]float64, b []float64) ([]float64, error)
}

func newProcess(k kernel.Kernel, m mean.Mean, noise float64, dim, capacity int) *process {
	p := &process{
		kern:  k,
		mn:    m,
		noise: noise,
		dim:   dim,
		chol:  NewGrowableCholesky(capacity),
	}
	p.betaSolve = p.unregularizedBetaSolve
	return p
}

func (p *process) NSamples() int    { return len(p.y) }
func (p *process) Dim() int         { return p.dim }
func (p *process) X() [][]float64   { return p.x }
func (p *process) Y() []float64     { return p.y }
func (p *process) Kernel() kernel.Kernel { return p.kern }
func (p *process) Mean() mean.Mean       { return p.mn }

func (p *process) YMin() (float64, int) {
	best, idx := math.Inf(1), -1
	for i, v := range p.y {
		if v < best {
			best, idx = v, i
		}
	}
	return best, idx
}

func (p *process) YMax() (float64, int) {
	best, idx := math.Inf(-1), -1
	for i, v := range p.y {
		if v > best {
			best, idx = v, i
		}
	}
	return best, idx
}

func (p *process) AddSample(x []float64, y float64) {
	xc := append([]float64{}, x...)
	p.x = append(p.x, xc)
	p.y = append(p.y, y)
}

// buildK constructs the regularised correlation matrix K + sigma_n^2 I.
func (p *process) buildK() *mat.SymDense {
	n := len(p.x)
	K := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := p.kern.Eval(p.x[i], p.x[j])
			if i == j {
				v += p.noise
			}
			K.SetSym(i, j, v)
		}
	}
	return K
}

// Fit recomputes the Cholesky factor from scratch and refreshes the GLS
// cache. Call after SetSamples, a hyperparameter change, or when Update's
// rank-1 append has failed.
func (p *process) Fit() error {
	if len(p.x) == 0 {
		return ErrEmptySampleSet
	}
	if err := p.chol.Factorize(p.buildK()); err != nil {
		return err
	}
	return p.computeGLS()
}

// Update appends one observation, tries the O(n^2) rank-1 Cholesky
// append, and falls back to a full Fit if the append loses positive
// definiteness.
func (p *process) Update(x []float64, y float64) error {
	n := p.chol.N()
	kStar := make([]float64, n)
	for i := 0; i < n; i++ {
		kStar[i] = p.kern.Eval(x, p.x[i])
	}
	kStarStar := p.kern.Eval(x, x) + p.noise

	p.AddSample(x, y)

	if err := p.chol.Append(kStar, kStarStar); err != nil {
		if ferr := p.Fit(); ferr != nil {
			return ferr
		}
		return nil
	}
	return p.computeGLS()
}

// computeGLS solves for the generalised-least-squares mean coefficients
// beta-hat and the whitened residual w = L^-1(y - Phi^T beta-hat), the
// shared prerequisite for every flavour's predictive mean.
func (p *process) computeGLS() error {
	n := p.chol.N()
	m := p.mn.NFeatures()
	p.ytil = p.chol.ForwardSolve(p.y)
	if m > 0 {
		phi := p.mn.FeaturesAll(p.x) // n x m
		p.ftil = make([][]float64, m) // m x n, column-major by feature
		for k := 0; k < m; k++ {
			col := make([]float64, n)
			for i := 0; i < n; i++ {
				col[i] = phi[i][k]
			}
			p.ftil[k] = p.chol.ForwardSolve(col)
		}

		a := make([][]float64, m)
		b := make([]float64, m)
		for r := 0; r < m; r++ {
			a[r] = make([]float64, m)
			for c := 0; c < m; c++ {
				a[r][c] = dotVec(p.ftil[r], p.ftil[c])
			}
			b[r] = dotVec(p.ftil[r], p.ytil)
		}
		beta, err := p.betaSolve(a, b)
		if err != nil {
			return err
		}
		p.beta = beta
		if err := p.mn.SetBeta(beta); err != nil {
			return err
		}
	}

	r := make([]float64, n)
	for i := range r {
		r[i] = p.y[i] - p.mn.Value(p.x[i])
	}
	p.w = p.chol.ForwardSolve(r)
	return nil
}

// unregularizedBetaSolve is the default betaSolve: a plain GLS solve with
// no coefficient prior, used by GP and GP-ML.
func (p *process) unregularizedBetaSolve(a [][]float64, b []float64) ([]float64, error) {
	if len(b) == 0 {
		p.aReg = nil
		return nil, nil
	}
	p.aReg = a
	return solveSymPD(a, b)
}

// normalPriorBetaSolve folds an independent Normal prior on each
// coefficient, beta_i ~ N(priorMean_i, priorStd_i^2), into the GLS normal
// equations: (F~^T F~ + diag(1/s0^2)) beta = F~^T ytil + mu0/s0^2. GP-Normal
// and Student-t (whose posterior mean equation has the same form,
// independent of the NIG scale) both install this as their betaSolve.
// A prior std of 0 is treated as a very tight but finite prior rather than
// eliminating the coefficient from the system, pinning it to priorMean to
// within numerical noise without a separate reduced-system code path.
func normalPriorBetaSolve(p *process, a [][]float64, b []float64) ([]float64, error) {
	m := len(b)
	if m == 0 {
		p.aReg, p.bReg = nil, nil
		return nil, nil
	}
	mu0 := p.mn.PriorMean()
	s0 := p.mn.PriorStd()
	aReg := make([][]float64, m)
	bReg := make([]float64, m)
	for i := 0; i < m; i++ {
		aReg[i] = append([]float64{}, a[i]...)
		prec := fixedPriorPrecision
		if s0[i] > 0 {
			prec = 1 / (s0[i] * s0[i])
		}
		aReg[i][i] += prec
		bReg[i] = b[i] + mu0[i]*prec
	}
	p.aReg, p.bReg = aReg, bReg
	return solveSymPD(aReg, bReg)
}

// betaUncertaintyVariance returns (phi(x)-F~^T v)^T Sigma_post (phi(x)-F~^T
// v), the extra predictive-variance term contributed by integrating out a
// Normal/NIG-distributed beta, where Sigma_post = aReg^-1. Returns 0 when
// aReg is nil (a mean with no features). GP and GP-ML never call it.
func (p *process) betaUncertaintyVariance(x []float64, v []float64) float64 {
	if p.aReg == nil {
		return 0
	}
	fr := p.featureResidual(x, v)
	z, err := solveSymPD(p.aReg, fr)
	if err != nil {
		return 0
	}
	return dotVec(fr, z)
}

// predictCore computes the quantities shared by every flavour's Predict:
// the base predictive mean, the whitened kernel vector v = L^-1 k_*, and
// k(x,x). sigma2 = k(x,x) - v.v is the Gaussian/GP base variance before any
// flavour-specific extra term.
func (p *process) predictCore(x []float64) (muBase float64, v []float64, kxx float64) {
	n := p.chol.N()
	kStar := make([]float64, n)
	for i := 0; i < n; i++ {
		kStar[i] = p.kern.Eval(x, p.x[i])
	}
	v = p.chol.ForwardSolve(kStar)
	muBase = p.mn.Value(x) + dotVec(v, p.w)
	kxx = p.kern.Eval(x, x)
	return
}

func (p *process) baseVariance(v []float64, kxx float64) float64 {
	return kxx - dotVec(v, v)
}

// featureResidual returns phi(x) - F~^T v, where F~ = L^-1 Phi is the
// whitened design cached by computeGLS. This is the vector GP-Normal/
// Student-t need for the beta-uncertainty variance term.
func (p *process) featureResidual(x []float64, v []float64) []float64 {
	m := p.mn.NFeatures()
	if m == 0 {
		return nil
	}
	phi := p.mn.Features(x)
	out := append([]float64{}, phi...)
	for k := 0; k < m; k++ {
		out[k] -= dotVec(p.ftil[k], v)
	}
	return out
}

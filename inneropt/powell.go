// adapted from the teacher's PowellMinimizer (itself a translation of
// scipy.optimize.fmin_powell): the local phase of GlobalLocal. Bounds are
// enforced by clamping the point actually evaluated, leaving the direction
// search's own arithmetic untouched.

package inneropt

import (
	"log"
	"math"
)

// PowellLocal refines a starting point by coordinate-direction descent plus
// Brent line minimization along each direction, clamping every evaluated
// point to [Xmin,Xmax] - the local half of GlobalLocal's global-then-local
// contract.
type PowellLocal struct {
	Xtol, Ftol      float64
	MaxIter, MaxFev int
	Logger          *log.Logger
}

// NewPowellLocal returns a PowellLocal with the teacher's default
// tolerances.
func NewPowellLocal() *PowellLocal {
	return &PowellLocal{Xtol: 1e-4, Ftol: 1e-4}
}

// Minimize minimizes f starting at x0, clamping every evaluated point to
// [xmin,xmax] coordinatewise, and returns the refined point.
func (pm *PowellLocal) Minimize(f func([]float64) float64, x0, xmin, xmax []float64) []float64 {
	clamp := func(x []float64) []float64 {
		c := make([]float64, len(x))
		for i, v := range x {
			lo, hi := math.Inf(-1), math.Inf(1)
			if i < len(xmin) {
				lo = xmin[i]
			}
			if i < len(xmax) {
				hi = xmax[i]
			}
			if v < lo {
				v = lo
			}
			if v > hi {
				v = hi
			}
			c[i] = v
		}
		return c
	}
	bounded := func(x []float64) float64 { return f(clamp(x)) }
	return minimizePowell(bounded, x0, nil, pm.Xtol, pm.Ftol, pm.MaxIter, pm.MaxFev, pm.Logger)
}

// minimizePowell is the modified Powell algorithm (see fmin_powell in
// scipy.optimize): minimization of a scalar function of several variables
// without derivatives, via iterated one-dimensional line minimization along
// a direction set that is itself updated every pass.
func minimizePowell(
	f func([]float64) float64, x0 []float64, callback func([]float64),
	xtol, ftol float64,
	maxiter, maxfev int,
	disp *log.Logger) []float64 {
	type float = float64
	var (
		fval, fx, delta, fx2, bnd, t, temp float
		x1, x2, direc, direc1              []float
		bigind, warnflag                   int
	)
	abs := func(x float) float {
		if x < 0 {
			return -x
		}
		return x
	}
	fcalls := 0
	fun := func(x []float) float {
		y := f(x)
		fcalls++
		return y
	}
	x := make([]float64, len(x0))
	copy(x, x0)
	N := len(x)
	if maxiter <= 0 && maxfev <= 0 {
		maxiter = N * 1000
		maxfev = N * 1000
	} else if maxiter <= 0 {
		if maxfev == math.MaxInt64 {
			maxiter = N * 1000
		} else {
			maxiter = math.MaxInt64
		}
	} else if maxfev <= 0 {
		if maxiter == math.MaxInt64 {
			maxfev = N * 1000
		} else {
			maxfev = math.MaxInt64
		}
	}
	direc = make([]float, N*N)
	direc1 = make([]float, N)
	for i := 0; i < N; i++ {
		direc[i*N+i] = 1
	}

	fval = fun(x)
	x1, x2 = make([]float64, N), make([]float64, N)
	copy(x1, x)
	iter := 0
	ilist := make([]int, N)
	for i := range ilist {
		ilist[i] = i
	}
	for {
		fx = fval
		bigind = 0
		delta = 0.0
		for _, i := range ilist {
			direc1 = direc[i*N : i*N+N]
			fx2 = fval
			fval, x, direc1 = linesearchPowell(fun, x, direc1, xtol*100)
			if (fx2 - fval) > delta {
				delta = fx2 - fval
				bigind = i
			}
		}
		iter++
		if callback != nil {
			callback(x)
		}
		bnd = ftol*(abs(fx)+abs(fval)) + 1e-20
		if 2.0*(fx-fval) <= bnd {
			break
		}
		if fcalls >= maxfev {
			break
		}
		if iter >= maxiter {
			break
		}
		for i, xi := range x {
			direc1[i] = xi - x1[i]
			x2[i] = 2*xi - x1[i]
			x1[i] = xi
		}
		fx2 = fun(x2)

		if fx > fx2 {
			t = 2.0 * (fx + fx2 - 2.0*fval)
			temp = (fx - fval - delta)
			t *= temp * temp
			temp = fx - fx2
			t -= delta * temp * temp
			if t < 0.0 {
				fval, x, direc1 = linesearchPowell(fun, x, direc1, xtol*100)
				copy(direc[bigind*N:bigind*N+N], direc[(N-1)*N:N*N])
				copy(direc[(N-1)*N:N*N], direc1)
			}
		}
	}
	warnflag = 0
	if fcalls >= maxfev {
		warnflag = 1
		if disp != nil {
			disp.Println("Warning: maxfev reached")
		}
	} else if iter >= maxiter {
		warnflag = 2
		if disp != nil {
			disp.Println("Warning: maxiter reached")
		}
	} else if disp != nil {
		disp.Printf("Success. Current function value: %.7g Iterations: %d Function evaluations: %d", fval, iter, fcalls)
	}
	_ = warnflag
	return x
}

// linesearchPowell finds the minimum of fun(p + alpha*xi) over alpha using
// Brent's method.
func linesearchPowell(
	fun func([]float64) float64,
	p, xi []float64,
	tol float64) (float64, []float64, []float64) {
	type float = float64
	myfunc := func(alpha float) float {
		xtmp := make([]float, len(p))
		for i, p1 := range p {
			xtmp[i] = p1 + alpha*xi[i]
		}
		return fun(xtmp)
	}
	b := newBrentMiner(myfunc, tol, 500)
	b.optimize()
	alphaMin, fret := b.Xmin, b.Fval
	pPlusXi := make([]float, len(p))
	for i := range p {
		xi[i] *= alphaMin
		pPlusXi[i] = p[i] + xi[i]
	}
	return fret, pPlusXi, xi
}

type bracketer struct {
	growLimit float64
	maxIter   int
}

// bracket searches in the downhill direction from two distinct points and
// returns xa,xb,xc with f(xa) > f(xb) < f(xc).
func (b bracketer) bracket(f func(float64) float64, xa0, xb0 float64) (xa, xb, xc, fa, fb, fc float64, funcalls int) {
	var (
		tmp1, tmp2, val, denom, w, wlim, fw float64
		iter                                int
	)
	_gold := 1.618034
	_verysmallNum := 1e-21
	xa, xb = xa0, xb0
	fa, fb = f(xa), f(xb)
	if fa < fb {
		xa, xb = xb, xa
		fa, fb = fb, fa
	}
	xc = xb + _gold*(xb-xa)
	fc = f(xc)
	funcalls = 3
	iter = 0
	for fc < fb {
		tmp1 = (xb - xa) * (fb - fc)
		tmp2 = (xb - xc) * (fb - fa)
		val = tmp2 - tmp1
		if math.Abs(val) < _verysmallNum {
			denom = 2.0 * _verysmallNum
		} else {
			denom = 2.0 * val
		}
		w = xb - ((xb-xc)*tmp2-(xb-xa)*tmp1)/denom
		wlim = xb + b.growLimit*(xc-xb)
		if iter > b.maxIter {
			// Give up on this bracket rather than aborting the whole run;
			// the caller will treat the last computed triple as final.
			return xa, xb, xc, fa, fb, fc, funcalls
		}
		iter++
		if (w-xc)*(xb-w) > 0.0 {
			fw = f(w)
			funcalls++
			if fw < fc {
				xa = xb
				xb = w
				fa = fb
				fb = fw
				return xa, xb, xc, fa, fb, fc, funcalls
			} else if fw > fb {
				xc = w
				fc = fw
				return xa, xb, xc, fa, fb, fc, funcalls
			}
			w = xc + _gold*(xc-xb)
			fw = f(w)
			funcalls++
		} else if (w-wlim)*(wlim-xc) >= 0.0 {
			w = wlim
			fw = f(w)
			funcalls++
		} else if (w-wlim)*(xc-w) > 0.0 {
			fw = f(w)
			funcalls++
			if fw < fc {
				xb = xc
				xc = w
				w = xc + _gold*(xc-xb)
				fb = fc
				fc = fw
				fw = f(w)
				funcalls++
			}
		} else {
			w = xc + _gold*(xc-xb)
			fw = f(w)
			funcalls++
		}
		xa = xb
		xb = xc
		xc = w
		fa = fb
		fb = fc
		fc = fw
	}
	return xa, xb, xc, fa, fb, fc, funcalls
}

// brentMinimizer is a translation of scipy.optimize.optimize.Brent: Brent's
// 1D minimization combining golden-section and parabolic-interpolation
// steps.
type brentMinimizer struct {
	Func           func(float64) float64
	Tol            float64
	Maxiter        int
	mintol         float64
	cg             float64
	Xmin           float64
	Fval           float64
	Iter, Funcalls int
	bracketer
}

func newBrentMiner(fun func(float64) float64, tol float64, maxiter int) *brentMinimizer {
	return &brentMinimizer{
		Func:      fun,
		Tol:       tol,
		Maxiter:   maxiter,
		mintol:    1.0e-11,
		cg:        0.3819660,
		bracketer: bracketer{growLimit: 110, maxIter: 1000},
	}
}

func (bm *brentMinimizer) getBracketInfo() (float64, float64, float64, float64, float64, float64, int) {
	return bm.bracketer.bracket(bm.Func, 0, 1)
}

func (bm *brentMinimizer) optimize() {
	var (
		xa, xb, xc, fb, _mintol, _cg, x, fx, v, fv, w, fw, a, b, deltax, tol1, tol2, xmid, rat, tmp1, tmp2, p, dxTemp, u, fu float64
		funcalls, iter                                                                                                     int
	)
	f := bm.Func
	xa, xb, xc, _, fb, _, funcalls = bm.getBracketInfo()
	_mintol = bm.mintol
	_cg = bm.cg
	v, w, x = xb, xb, xb
	fx = fb
	fv, fw = fx, fx
	if xa < xc {
		a = xa
		b = xc
	} else {
		a = xc
		b = xa
	}
	deltax = 0.0
	funcalls++
	iter = 0
	for iter < bm.Maxiter {
		tol1 = bm.Tol*math.Abs(x) + _mintol
		tol2 = 2.0 * tol1
		xmid = 0.5 * (a + b)
		if math.Abs(x-xmid) < (tol2 - 0.5*(b-a)) {
			break
		}
		if math.Abs(deltax) <= tol1 {
			if x >= xmid {
				deltax = a - x
			} else {
				deltax = b - x
			}
			rat = _cg * deltax
		} else {
			tmp1 = (x - w) * (fx - fv)
			tmp2 = (x - v) * (fx - fw)
			p = (x-v)*tmp2 - (x-w)*tmp1
			tmp2 = 2.0 * (tmp2 - tmp1)
			if tmp2 > 0.0 {
				p = -p
			}
			tmp2 = math.Abs(tmp2)
			dxTemp = deltax
			deltax = rat
			if (p > tmp2*(a-x)) && (p < tmp2*(b-x)) &&
				(math.Abs(p) < math.Abs(0.5*tmp2*dxTemp)) {
				rat = p * 1.0 / tmp2
				u = x + rat
				if (u-a) < tol2 || (b-u) < tol2 {
					if xmid-x >= 0 {
						rat = tol1
					} else {
						rat = -tol1
					}
				}
			} else {
				if x >= xmid {
					deltax = a - x
				} else {
					deltax = b - x
				}
				rat = _cg * deltax
			}
		}
		if math.Abs(rat) < tol1 {
			if rat >= 0 {
				u = x + tol1
			} else {
				u = x - tol1
			}
		} else {
			u = x + rat
		}
		fu = f(u)
		funcalls++

		if fu > fx {
			if u < x {
				a = u
			} else {
				b = u
			}
			if (fu <= fw) || (w == x) {
				v = w
				w = u
				fv = fw
				fw = fu
			} else if (fu <= fv) || (v == x) || (v == w) {
				v = u
				fv = fu
			}
		} else {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v = w
			w = x
			x = u
			fv = fw
			fw = fx
			fx = fu
		}
		iter++
	}
	bm.Xmin, bm.Fval, bm.Iter, bm.Funcalls = x, fx, iter, funcalls
}

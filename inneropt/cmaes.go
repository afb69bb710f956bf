// adapted from gonum.org/v1/gonum/optimize/cmaes.go for the bounded global
// phase of GlobalLocal: bounds are enforced by ensureBounds, folding
// infeasible samples back towards the current distribution mean instead of
// rejecting them outright.

// Copyright ©2017 The Gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
/* BSD license for code copied from gonum/optimize/cmaes.go (all except sendTask,ensureBounds)
Copyright ©2013 The Gonum Authors. All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:
    * Redistributions of source code must retain the above copyright
      notice, this list of conditions and the following disclaimer.
    * Redistributions in binary form must reproduce the above copyright
      notice, this list of conditions and the following disclaimer in the
      documentation and/or other materials provided with the distribution.
    * Neither the name of the gonum project nor the names of its authors and
      contributors may be used to endorse or promote products derived from this
      software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND
ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

package inneropt

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// cmaEsChol is the global phase of GlobalLocal: box-constrained CMA-ES with
// a Cholesky-factored covariance, driven through gonum's optimize.Method
// protocol so GlobalLocal.Maximize can hand it straight to optimize.Minimize.
type cmaEsChol struct {
	InitStepSize float64
	Population   int
	InitCholesky *mat.Cholesky
	StopLogDet   float64
	ForgetBest   bool
	Src          rand.Source

	Xmin, Xmax []float64

	dim                 int
	pop                 int
	weights             []float64
	muEff               float64
	cc, cs, c1, cmu, ds float64
	eChi                float64

	xs *mat.Dense
	fs []float64

	invSigma float64
	pc, ps   []float64
	mean     []float64
	chol     mat.Cholesky

	bestX     []float64
	bestF     float64

	sentIdx     int
	receivedIdx int
	operation   chan<- optimize.Task
	updateErr   error
}

var (
	_ optimize.Statuser = (*cmaEsChol)(nil)
	_ optimize.Method   = (*cmaEsChol)(nil)
)

func (cma *cmaEsChol) Needs() struct{ Gradient, Hessian bool } {
	return struct{ Gradient, Hessian bool }{false, false}
}

func (cma *cmaEsChol) Uses(has optimize.Available) (optimize.Available, error) {
	return optimize.Available{}, nil
}

func (cma *cmaEsChol) methodConverged() optimize.Status {
	sd := cma.StopLogDet
	switch {
	case math.IsNaN(sd):
		return optimize.NotTerminated
	case sd == 0:
		sd = float64(cma.dim) * -36.8413614879 // ln(1e-16)
	}
	if cma.chol.LogDet() < sd {
		return optimize.MethodConverge
	}
	return optimize.NotTerminated
}

func (cma *cmaEsChol) Status() (optimize.Status, error) {
	if cma.updateErr != nil {
		return optimize.Failure, cma.updateErr
	}
	return cma.methodConverged(), nil
}

func (cma *cmaEsChol) Init(dim, tasks int) int {
	if dim <= 0 {
		panic(nonpositiveDimension)
	}
	if tasks < 0 {
		panic(negativeTasks)
	}

	cma.dim = dim
	cma.pop = cma.Population
	n := float64(dim)
	if cma.pop == 0 {
		cma.pop = 4 + int(3*math.Log(n))
	} else if cma.pop < 0 {
		panic("inneropt: negative population size")
	}
	mu := cma.pop / 2
	cma.weights = resize(cma.weights, mu)
	for i := range cma.weights {
		v := math.Log(float64(mu)+0.5) - math.Log(float64(i)+1)
		cma.weights[i] = v
	}
	floats.Scale(1/floats.Sum(cma.weights), cma.weights)
	cma.muEff = 0
	for _, v := range cma.weights {
		cma.muEff += v * v
	}
	cma.muEff = 1 / cma.muEff

	cma.cc = (4 + cma.muEff/n) / (n + 4 + 2*cma.muEff/n)
	cma.cs = (cma.muEff + 2) / (n + cma.muEff + 5)
	cma.c1 = 2 / ((n+1.3)*(n+1.3) + cma.muEff)
	cma.cmu = math.Min(1-cma.c1, 2*(cma.muEff-2+1/cma.muEff)/((n+2)*(n+2)+cma.muEff))
	cma.ds = 1 + 2*math.Max(0, math.Sqrt((cma.muEff-1)/(n+1))-1) + cma.cs
	cma.eChi = math.Sqrt(n) * (1 - 1.0/(4*n) + 1/(21*n*n))

	cma.xs = mat.NewDense(cma.pop, dim, nil)
	cma.fs = resize(cma.fs, cma.pop)

	cma.invSigma = 1 / cma.InitStepSize
	if cma.InitStepSize == 0 {
		cma.invSigma = 10.0 / 3
	} else if cma.InitStepSize < 0 {
		panic("inneropt: negative initial step size")
	}
	cma.pc = resize(cma.pc, dim)
	for i := range cma.pc {
		cma.pc[i] = 0
	}
	cma.ps = resize(cma.ps, dim)
	for i := range cma.ps {
		cma.ps[i] = 0
	}
	cma.mean = resize(cma.mean, dim)

	if cma.InitCholesky != nil {
		if cma.InitCholesky.SymmetricDim() != dim {
			panic("inneropt: incorrect InitCholesky size")
		}
		cma.chol.Clone(cma.InitCholesky)
	} else {
		b := mat.NewDiagDense(dim, nil)
		for i := 0; i < dim; i++ {
			b.SetDiag(i, 1)
		}
		var chol mat.Cholesky
		ok := chol.Factorize(b)
		if !ok {
			panic("inneropt: bad cholesky, shouldn't happen")
		}
		cma.chol = chol
	}

	cma.bestX = resize(cma.bestX, dim)
	cma.bestF = math.Inf(1)

	cma.sentIdx = 0
	cma.receivedIdx = 0
	cma.operation = nil
	cma.updateErr = nil
	t := min(tasks, cma.pop)
	return t
}

func (cma *cmaEsChol) sendInitTasks(tasks []optimize.Task) {
	for i, task := range tasks {
		cma.sendTask(i, task)
	}
	cma.sentIdx = len(tasks)
}

// ensureBounds folds an infeasible coordinate back towards the
// distribution's current mean instead of clamping it flush to the
// boundary, when every coordinate is already out of bounds (the clamp
// would otherwise collapse the whole sample onto a single corner).
func (cma *cmaEsChol) ensureBounds(x []float64) {
	nBounded := 0
	for i := range x {
		if (i < len(cma.Xmin) && x[i] <= cma.Xmin[i]) || (i < len(cma.Xmax) && x[i] >= cma.Xmax[i]) {
			nBounded++
		}
	}
	for i := range x {
		if i < len(cma.Xmin) && x[i] < cma.Xmin[i] {
			if nBounded < len(x) {
				x[i] = cma.Xmin[i]
			} else {
				for x[i] < cma.Xmin[i] {
					x[i] = (x[i] + cma.mean[i]) / 2
				}
			}
		}
		if i < len(cma.Xmax) && x[i] > cma.Xmax[i] {
			if nBounded < len(x) {
				x[i] = cma.Xmax[i]
			} else {
				for x[i] > cma.Xmax[i] {
					x[i] = (x[i] + cma.mean[i]) / 2
				}
			}
		}
	}
}

func (cma *cmaEsChol) sendTask(idx int, task optimize.Task) {
	task.ID = idx
	task.Op = optimize.FuncEvaluation
	distmv.NormalRand(cma.xs.RawRowView(idx), cma.mean, &cma.chol, cma.Src)
	cma.ensureBounds(cma.xs.RawRowView(idx))
	copy(task.X, cma.xs.RawRowView(idx))
	cma.operation <- task
}

func (cma *cmaEsChol) bestIdx() int {
	best := -1
	bestVal := math.Inf(1)
	for i, v := range cma.fs {
		if math.IsNaN(v) {
			continue
		}
		if v <= bestVal {
			best = i
			bestVal = v
		}
	}
	return best
}

func (cma *cmaEsChol) findBestAndUpdateTask(task optimize.Task) optimize.Task {
	best := cma.bestIdx()
	bestF := math.NaN()
	bestX := cma.xs.RawRowView(0)
	if best != -1 {
		bestF = cma.fs[best]
		bestX = cma.xs.RawRowView(best)
	}
	if cma.ForgetBest {
		task.F = bestF
		copy(task.X, bestX)
	} else {
		if bestF < cma.bestF {
			cma.bestF = bestF
			copy(cma.bestX, bestX)
		}
		task.F = cma.bestF
		copy(task.X, cma.bestX)
	}
	return task
}

func (cma *cmaEsChol) Run(operations chan<- optimize.Task, results <-chan optimize.Task, tasks []optimize.Task) {
	copy(cma.mean, tasks[0].X)
	cma.operation = operations
	cma.sendInitTasks(tasks)

Loop:
	for {
		result := <-results
		switch result.Op {
		default:
			panic("inneropt: unknown operation")
		case optimize.PostIteration:
			break Loop
		case optimize.MajorIteration:
			cma.sendInitTasks(tasks)
		case optimize.FuncEvaluation:
			cma.receivedIdx++
			cma.fs[result.ID] = result.F
			switch {
			case cma.sentIdx < cma.pop:
				cma.sendTask(cma.sentIdx, result)
				cma.sentIdx++
			case cma.receivedIdx < cma.pop:
				continue Loop
			default:
				if cma.receivedIdx != cma.pop {
					panic("inneropt: bad logic")
				}
				cma.receivedIdx = 0
				cma.sentIdx = 0

				task := cma.findBestAndUpdateTask(result)
				err := cma.update()
				for i := range cma.fs {
					cma.fs[i] = math.NaN()
					cma.xs.Set(i, 0, math.NaN())
				}
				switch {
				case err != nil:
					cma.updateErr = err
					task.Op = optimize.MethodDone
				case cma.methodConverged() != optimize.NotTerminated:
					task.Op = optimize.MethodDone
				default:
					task.Op = optimize.MajorIteration
					task.ID = -1
				}
				operations <- task
			}
		}
	}

	for task := range results {
		switch task.Op {
		case optimize.MajorIteration:
		case optimize.FuncEvaluation:
			cma.fs[task.ID] = task.F
		default:
			panic("inneropt: unknown operation")
		}
	}
	if !cma.ForgetBest {
		best := cma.bestIdx()
		if best != -1 && cma.fs[best] < cma.bestF {
			task := tasks[0]
			task.F = cma.fs[best]
			copy(task.X, cma.xs.RawRowView(best))
			task.Op = optimize.MajorIteration
			task.ID = -1
			operations <- task
		}
	}
	close(operations)
}

func (cma *cmaEsChol) update() error {
	ftmp := make([]float64, cma.pop)
	copy(ftmp, cma.fs)
	indexes := make([]int, cma.pop)
	for i := range indexes {
		indexes[i] = i
	}
	sort.Sort(bestSorter{F: ftmp, Idx: indexes})

	meanOld := make([]float64, len(cma.mean))
	copy(meanOld, cma.mean)

	for i := range cma.mean {
		cma.mean[i] = 0
	}
	for i, w := range cma.weights {
		idx := indexes[i]
		floats.AddScaled(cma.mean, w, cma.xs.RawRowView(idx))
	}
	cma.ensureBounds(cma.mean)
	meanDiff := make([]float64, len(cma.mean))
	floats.SubTo(meanDiff, cma.mean, meanOld)

	floats.Scale(1-cma.cc, cma.pc)
	scaleC := math.Sqrt(cma.cc*(2-cma.cc)*cma.muEff) * cma.invSigma
	floats.AddScaled(cma.pc, scaleC, meanDiff)

	floats.Scale(1-cma.cs, cma.ps)
	tmp := make([]float64, cma.dim)
	tmpVec := mat.NewVecDense(cma.dim, tmp)
	diffVec := mat.NewVecDense(cma.dim, meanDiff)
	err := tmpVec.SolveVec(cma.chol.RawU().T(), diffVec)
	if err != nil {
		return err
	}
	scaleS := math.Sqrt(cma.cs*(2-cma.cs)*cma.muEff) * cma.invSigma
	floats.AddScaled(cma.ps, scaleS, tmp)

	scaleChol := 1 - cma.c1 - cma.cmu
	if scaleChol == 0 {
		scaleChol = math.SmallestNonzeroFloat64
	}
	cma.chol.Scale(scaleChol, &cma.chol)
	cma.chol.SymRankOne(&cma.chol, cma.c1, mat.NewVecDense(cma.dim, cma.pc))
	for i, w := range cma.weights {
		idx := indexes[i]
		floats.SubTo(tmp, cma.xs.RawRowView(idx), meanOld)
		cma.chol.SymRankOne(&cma.chol, cma.cmu*w*cma.invSigma, tmpVec)
	}

	normPs := floats.Norm(cma.ps, 2)
	cma.invSigma /= math.Exp(cma.cs / cma.ds * (normPs/cma.eChi - 1))
	return nil
}

type bestSorter struct {
	F   []float64
	Idx []int
}

func (b bestSorter) Len() int      { return len(b.F) }
func (b bestSorter) Less(i, j int) bool { return b.F[i] < b.F[j] }
func (b bestSorter) Swap(i, j int) {
	b.F[i], b.F[j] = b.F[j], b.F[i]
	b.Idx[i], b.Idx[j] = b.Idx[j], b.Idx[i]
}

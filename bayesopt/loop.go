// Package bayesopt drives the Bayesian-optimisation loop: it owns the
// surrogate and criterion, maps between the objective's bounds and the
// unit hypercube the rest of the module works in, and advances through
// Uninitialised -> Initialised -> Running -> Finished exactly as
// configured.
package bayesopt

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/criterion"
	"github.com/pa-m/bayesopt/design"
	"github.com/pa-m/bayesopt/inneropt"
	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/learner"
	"github.com/pa-m/bayesopt/mean"
	"github.com/pa-m/bayesopt/surrogate"
)

// Phase is one state of the optimisation state machine.
type Phase int

const (
	Uninitialised Phase = iota
	Initialised
	Running
	Finished
)

func (p Phase) String() string {
	switch p {
	case Uninitialised:
		return "Uninitialised"
	case Initialised:
		return "Initialised"
	case Running:
		return "Running"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Optimizer is one Bayesian-optimisation run: surrogate, criterion,
// hyperparameter learner and inner optimizer bound together by the loop
// in loop.go's Step.
type Optimizer struct {
	params    Parameters
	objective ObjectiveFunc
	lb, ub    []float64
	dim       int

	proc    surrogate.Surrogate
	crit    criterion.Criterion
	hedge   *criterion.Hedge
	lrn     *learner.Learner
	inner   inneropt.GlobalLocal
	src     rand.Source

	phase Phase
	iter  int
	// counterStuck counts consecutive Steps without an improvement over
	// bestY; it resets to 0 on improvement or on a forced jump. Step
	// triggers an unconditional uniform restart once it reaches
	// params.ForceJump, mirroring the "stuck" restart rather than a
	// purely periodic one.
	counterStuck int
	yPrev        float64
	bestX        []float64
	bestY        float64
}

// NewOptimizer validates params against dim and wires up the surrogate,
// criterion and learner the configuration names, without evaluating the
// objective or generating any samples - that happens in Initialize. The
// RNG source is derived from params.RandomSeed; Restore instead threads a
// recovered source through newOptimizer directly so every stochastic
// component (criterion, Hedge, learner, inner optimizer) continues
// drawing from one stream across a save/restore boundary.
func NewOptimizer(params Parameters, objective ObjectiveFunc, lb, ub []float64) (*Optimizer, error) {
	return newOptimizer(params, objective, lb, ub, params.Src())
}

func newOptimizer(params Parameters, objective ObjectiveFunc, lb, ub []float64, src rand.Source) (*Optimizer, error) {
	dim := len(lb)
	if dim == 0 || len(ub) != dim {
		return nil, &ConfigError{Msg: fmt.Sprintf("lb/ub length mismatch (%d vs %d)", len(lb), len(ub))}
	}
	if objective == nil {
		return nil, &ConfigError{Msg: "objective must not be nil"}
	}
	if err := params.Validate(dim); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	k, err := params.BuildKernel(dim)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	m, err := params.BuildMean(dim)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	crit, err := params.BuildCriterion(dim, src)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	mode, err := params.LearnerMode()
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	capacity := params.NInitSamples + params.NIterations
	proc, err := buildSurrogate(params, k, m, dim, capacity)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	lrn := &learner.Learner{
		Mode:    mode,
		Cadence: learner.OnlyAtStart,
		Inner:   inneropt.GlobalLocal{Src: src},
		NSamples: 10,
		BurnIn:   50,
		StepOut:  1,
		Src:      src,
	}
	if params.NIterRelearn > 0 {
		lrn.Cadence = learner.EveryLStep
		lrn.LStep = params.NIterRelearn
	}

	o := &Optimizer{
		params:    params,
		objective: objective,
		lb:        append([]float64{}, lb...),
		ub:        append([]float64{}, ub...),
		dim:       dim,
		proc:      proc,
		crit:      crit,
		lrn:       lrn,
		inner:     inneropt.GlobalLocal{Src: src},
		src:       src,
		phase:     Uninitialised,
		bestY:     0,
	}
	if h, ok := crit.(*criterion.Hedge); ok {
		o.hedge = h
	}
	return o, nil
}

// buildSurrogate constructs the configured surrogate flavour. The BO
// loop, not package config, owns this construction: config only parses
// names, per the boundary-parsing rule applied throughout this module.
func buildSurrogate(p Parameters, k kernel.Kernel, m mean.Mean, dim, capacity int) (surrogate.Surrogate, error) {
	switch strings.ToLower(p.SurrName) {
	case "gp":
		return surrogate.NewGP(k, m, p.Noise, dim, capacity), nil
	case "gp-ml", "gpml":
		return surrogate.NewGPML(k, m, p.Noise, dim, capacity), nil
	case "gp-normal", "gpnormal":
		return surrogate.NewGPNormal(k, m, p.Noise, dim, capacity), nil
	case "studentt-jef", "studenttjef":
		return surrogate.NewStudentTJef(k, m, p.Noise, dim, capacity), nil
	case "studentt-nig", "studenttnig":
		return surrogate.NewStudentT(k, m, p.Noise, p.Alpha, p.Beta, dim, capacity), nil
	}
	return nil, fmt.Errorf("bayesopt: unknown surr_name %q", p.SurrName)
}

// Phase returns the current state machine phase.
func (o *Optimizer) Phase() Phase { return o.phase }

// CurrentIteration returns the number of completed Step calls.
func (o *Optimizer) CurrentIteration() int { return o.iter }

// Best returns the best point found so far (in objective-space
// coordinates) and its value.
func (o *Optimizer) Best() ([]float64, float64) {
	return append([]float64{}, o.bestX...), o.bestY
}

func scaleToBounds(xUnit, lb, ub []float64) []float64 {
	out := make([]float64, len(xUnit))
	for i, v := range xUnit {
		out[i] = lb[i] + v*(ub[i]-lb[i])
	}
	return out
}

func scaleToUnit(x, lb, ub []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		span := ub[i] - lb[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - lb[i]) / span
	}
	return out
}

// Initialize generates the initial design, evaluates the objective on
// it, fits the surrogate, and transitions Uninitialised -> Initialised.
// Calling it more than once, or after Step has run, is a state error.
func (o *Optimizer) Initialize() error {
	if o.phase != Uninitialised {
		return &StateError{Msg: fmt.Sprintf("Initialize called in phase %s", o.phase)}
	}
	points, err := design.Generate(o.params.InitMethod, o.params.NInitSamples, o.dim, o.src)
	if err != nil {
		return &ConfigError{Msg: err.Error()}
	}
	y := make([]float64, len(points))
	for i, xUnit := range points {
		v, err := o.objective(scaleToBounds(xUnit, o.lb, o.ub))
		if err != nil {
			return wrapObjective(err)
		}
		y[i] = v
	}
	if err := o.proc.SetSamples(points, y); err != nil {
		return &NumericalError{Op: "SetSamples", Err: err}
	}
	if o.lrn.Mode != learner.Fixed {
		if err := o.lrn.Learn(o.proc); err != nil {
			return &NumericalError{Op: "Learn", Err: err}
		}
	}
	yMin, idx := o.proc.YMin()
	o.bestX = scaleToBounds(points[idx], o.lb, o.ub)
	o.bestY = yMin
	o.yPrev = yMin
	o.phase = Initialised
	return nil
}

// Step performs one iteration: optional hyperparameter relearn,
// criterion proposal, reachability fallback, objective evaluation,
// surrogate update, best-point bookkeeping. It transitions
// Initialised/Running -> Running, and -> Finished once n_iterations is
// reached.
func (o *Optimizer) Step() error {
	if o.phase != Initialised && o.phase != Running {
		return &StateError{Msg: fmt.Sprintf("Step called in phase %s", o.phase)}
	}
	if o.iter >= o.params.NIterations {
		o.phase = Finished
		return nil
	}

	nextIter := o.iter + 1
	if o.lrn.Mode != learner.Fixed && o.lrn.ShouldLearn(nextIter) {
		if err := o.lrn.Learn(o.proc); err != nil {
			return &NumericalError{Op: "Learn", Err: err}
		}
	}

	yMin, _ := o.proc.YMin()

	forceJump := o.params.ForceJump
	stuckTooLong := forceJump > 0 && o.counterStuck >= forceJump

	var xUnit []float64
	if stuckTooLong {
		xUnit = o.uniformPoint()
		o.counterStuck = 0
	} else if o.params.Epsilon > 0 && rand.New(o.src).Float64() < o.params.Epsilon {
		xUnit = o.uniformPoint()
	} else {
		proposed, err := o.propose(yMin)
		if err != nil {
			xUnit = o.uniformFallback(forceJump)
		} else {
			xUnit = proposed
		}
	}

	x := scaleToBounds(xUnit, o.lb, o.ub)
	yVal, err := o.objective(x)
	if err != nil {
		return wrapObjective(err)
	}
	if err := o.proc.Update(xUnit, yVal); err != nil {
		return &NumericalError{Op: "Update", Err: err}
	}
	if lcb, ok := o.crit.(*criterion.LowerConfidenceBound); ok {
		lcb.Advance()
	}

	const improvementTol = 1e-12
	if yVal < o.bestY-improvementTol {
		o.bestX = x
		o.bestY = yVal
		o.counterStuck = 0
	} else {
		o.counterStuck++
	}
	o.yPrev = yVal
	o.iter = nextIter
	if o.iter >= o.params.NIterations {
		o.phase = Finished
	} else {
		o.phase = Running
	}
	return nil
}

// Run advances Step until Finished.
func (o *Optimizer) Run() error {
	if o.phase == Uninitialised {
		if err := o.Initialize(); err != nil {
			return err
		}
	}
	for o.phase != Finished {
		if err := o.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (o *Optimizer) propose(yMin float64) ([]float64, error) {
	x0 := make([]float64, o.dim)
	for i := range x0 {
		x0[i] = 0.5
	}
	lo := make([]float64, o.dim)
	hi := make([]float64, o.dim)
	for i := range hi {
		hi[i] = 1
	}
	if o.hedge != nil {
		return o.hedge.Propose(o.proc, &o.inner, x0, lo, hi, yMin)
	}
	crit := o.crit
	x, _, err := o.inner.Maximize(func(x []float64) float64 {
		s, serr := crit.Score(o.proc, x, yMin)
		if serr != nil {
			return negInf
		}
		return s
	}, x0, lo, hi)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// uniformFallback is the error-handling policy's "re-sample uniformly"
// recovery from a proposal the inner optimizer could not produce. A
// fresh uniform draw in [0,1]^d is always feasible by construction, so
// forceJump never actually exhausts here; it is accepted as a parameter
// for symmetry with the counterStuck-driven restart in Step, which uses
// the same budget to mean "consecutive non-improving iterations".
func (o *Optimizer) uniformFallback(forceJump int) []float64 {
	return o.uniformPoint()
}

func (o *Optimizer) uniformPoint() []float64 {
	rng := rand.New(o.src)
	x := make([]float64, o.dim)
	for i := range x {
		x[i] = rng.Float64()
	}
	return x
}

const negInf = -1e300

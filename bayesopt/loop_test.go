package bayesopt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-m/bayesopt/learner"
)

// sphere is a trivial, deterministic 2D objective with a known minimum at
// (0.2, -0.1); small enough to optimise in a handful of iterations without
// running the full default n_iterations budget.
func sphere(x []float64) (float64, error) {
	dx, dy := x[0]-0.2, x[1]+0.1
	return dx*dx + dy*dy, nil
}

func sphereParams() Parameters {
	p := DefaultParameters()
	p.Kernel.Name = "SEIso"
	p.Mean.Name = "Zero"
	p.NInitSamples = 5
	p.NIterations = 8
	p.RandomSeed = 7
	return p
}

func TestOptimizerRequiresInitializeBeforeStep(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	err = o.Step()
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestOptimizerRejectsDoubleInitialize(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())
	err = o.Initialize()
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestOptimizerRejectsMismatchedBounds(t *testing.T) {
	_, err := NewOptimizer(sphereParams(), sphere, []float64{-1}, []float64{1, 1})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestOptimizerRunConvergesTowardMinimum(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Run())
	assert.Equal(t, Finished, o.Phase())
	assert.Equal(t, o.params.NIterations, o.CurrentIteration())

	_, bestY := o.Best()
	assert.Less(t, bestY, 1.0)
}

func TestOptimizerStepPastFinishedIsNoop(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Run())
	iterBefore := o.CurrentIteration()
	require.NoError(t, o.Step())
	assert.Equal(t, iterBefore, o.CurrentIteration())
	assert.Equal(t, Finished, o.Phase())
}

func TestOptimizerPropagatesObjectiveError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(x []float64) (float64, error) { return 0, boom }
	o, err := NewOptimizer(sphereParams(), failing, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	err = o.Initialize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestOptimizerHyperparameterRelearnCadenceUsesConfiguredLStep(t *testing.T) {
	p := sphereParams()
	p.SCType = "ML"
	p.NIterRelearn = 2
	p.NIterations = 6
	o, err := NewOptimizer(p, sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())

	require.Equal(t, learner.EveryLStep, o.lrn.Cadence)
	require.Equal(t, p.NIterRelearn, o.lrn.LStep)

	for i := 0; i < p.NIterations; i++ {
		require.NoError(t, o.Step())
	}
	assert.Equal(t, p.NIterations, o.CurrentIteration())
}

func TestScaleRoundTripsBoundsToUnitAndBack(t *testing.T) {
	lb := []float64{-2, 0, 10}
	ub := []float64{3, 1, 20}
	x := []float64{-0.5, 0.25, 17}
	unit := scaleToUnit(x, lb, ub)
	for _, v := range unit {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	back := scaleToBounds(unit, lb, ub)
	for i := range x {
		assert.InDelta(t, x[i], back[i], 1e-12)
	}
}

func TestOptimizerCounterStuckTriggersRestart(t *testing.T) {
	// A constant objective never improves, so counterStuck should climb
	// to ForceJump and reset on the forced uniform restart.
	constant := func(x []float64) (float64, error) { return 1.0, nil }
	p := sphereParams()
	p.ForceJump = 3
	p.NIterations = 10
	o, err := NewOptimizer(p, constant, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())
	for i := 0; i < p.NIterations; i++ {
		require.NoError(t, o.Step())
		// counterStuck is checked against ForceJump at the start of the
		// next Step, so it may reach (but never exceed) ForceJump itself
		// before that check fires and resets it.
		assert.LessOrEqual(t, o.counterStuck, p.ForceJump)
	}
}

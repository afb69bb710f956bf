package bayesopt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRestoreRoundTripPreservesProgress(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())
	for i := 0; i < 3; i++ {
		require.NoError(t, o.Step())
	}

	var buf bytes.Buffer
	require.NoError(t, o.Save(&buf))

	restored, err := Restore(&buf, sphere)
	require.NoError(t, err)

	assert.Equal(t, o.Phase(), restored.Phase())
	assert.Equal(t, o.CurrentIteration(), restored.CurrentIteration())
	assert.Equal(t, o.proc.NSamples(), restored.proc.NSamples())
	assert.Equal(t, o.proc.HP(), restored.proc.HP())

	wantX, wantY := o.Best()
	gotX, gotY := restored.Best()
	assert.Equal(t, wantX, gotX)
	assert.Equal(t, wantY, gotY)
}

func TestSaveRestoreSaveIsIdempotentOnContent(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())
	require.NoError(t, o.Step())

	var buf1 bytes.Buffer
	require.NoError(t, o.Save(&buf1))

	restored, err := Restore(bytes.NewReader(buf1.Bytes()), sphere)
	require.NoError(t, err)

	var buf2 bytes.Buffer
	require.NoError(t, restored.Save(&buf2))

	restored2, err := Restore(bytes.NewReader(buf2.Bytes()), sphere)
	require.NoError(t, err)
	assert.Equal(t, restored.proc.X(), restored2.proc.X())
	assert.Equal(t, restored.proc.Y(), restored2.proc.Y())
	assert.Equal(t, restored.proc.HP(), restored2.proc.HP())
}

func TestRestoreRejectsWrongVersion(t *testing.T) {
	_, err := Restore(bytes.NewReader([]byte("format_version=999\n")), sphere)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestRestoreRejectsMalformedBounds(t *testing.T) {
	_, err := Restore(bytes.NewReader([]byte("format_version=1\nlb=\nub=\n")), sphere)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestSaveProducesCommentableKeyValueLines(t *testing.T) {
	o, err := NewOptimizer(sphereParams(), sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())

	var buf bytes.Buffer
	require.NoError(t, o.Save(&buf))
	assert.Contains(t, buf.String(), "format_version=1\n")
	assert.Contains(t, buf.String(), "params.surr_name=")
}

func TestRestoreThreadsRecoveredSourceIntoEveryStochasticComponent(t *testing.T) {
	p := sphereParams()
	p.CritName = "Hedge(ei,lcb,thompson)"
	o, err := NewOptimizer(p, sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())
	require.NoError(t, o.Step())

	var buf bytes.Buffer
	require.NoError(t, o.Save(&buf))
	restored, err := Restore(&buf, sphere)
	require.NoError(t, err)

	// Every stochastic component must share the one recovered source,
	// not a freshly reseeded one local to its own constructor call.
	assert.Same(t, restored.src, restored.inner.Src)
	assert.Same(t, restored.src, restored.lrn.Src)
	assert.Same(t, restored.src, restored.lrn.Inner.Src)
	require.NotNil(t, restored.hedge)
	assert.Same(t, restored.src, restored.hedge.Src)
}

func TestRestoredOptimizerCanResumeStepping(t *testing.T) {
	p := sphereParams()
	o, err := NewOptimizer(p, sphere, []float64{-1, -1}, []float64{1, 1})
	require.NoError(t, err)
	require.NoError(t, o.Initialize())
	for i := 0; i < 2; i++ {
		require.NoError(t, o.Step())
	}

	var buf bytes.Buffer
	require.NoError(t, o.Save(&buf))
	restored, err := Restore(&buf, sphere)
	require.NoError(t, err)

	for restored.Phase() != Finished {
		require.NoError(t, restored.Step())
	}
	assert.Equal(t, p.NIterations, restored.CurrentIteration())
}

package net

import (
	"bytes"
	"encoding/gob"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/FlavioCFOliveira/nntrain/internal/activations"
	"github.com/FlavioCFOliveira/nntrain/internal/layer"
	"github.com/FlavioCFOliveira/nntrain/internal/loss"
)

func dense(t *testing.T, rng *layer.RNG, in, out int, act activations.Activation) *layer.Dense {
	t.Helper()
	d, err := layer.NewDense(in, out, act, rng)
	require.NoError(t, err)
	return d
}

func testNetwork(t *testing.T) *Network {
	t.Helper()
	rng := layer.NewRNG(42)
	n, err := New(loss.MSE{},
		dense(t, rng, 3, 5, activations.Tanh{}),
		dense(t, rng, 5, 4, activations.Sigmoid{}),
		dense(t, rng, 4, 2, activations.Identity{}),
	)
	require.NoError(t, err)
	return n
}

func TestNewValidation(t *testing.T) {
	rng := layer.NewRNG(1)

	_, err := New(loss.MSE{})
	assert.ErrorIs(t, err, ErrNoLayers)

	_, err = New(nil, dense(t, rng, 2, 2, activations.Tanh{}))
	assert.ErrorIs(t, err, ErrNilComponent)

	_, err = New(loss.MSE{}, dense(t, rng, 2, 3, activations.Tanh{}), dense(t, rng, 4, 1, activations.Tanh{}))
	assert.ErrorIs(t, err, ErrWidthMismatch)

	shared := dense(t, rng, 2, 2, activations.Tanh{})
	_, err = New(loss.MSE{}, shared, shared)
	assert.ErrorIs(t, err, ErrDuplicateLayer)
}

func TestForwardWidth(t *testing.T) {
	n := testNetwork(t)

	out, err := n.Forward([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Len(t, out, n.OutSize())
	assert.Equal(t, 2, n.OutSize())
	assert.Equal(t, 3, n.InSize())

	_, err = n.Forward([]float64{0.1, 0.2})
	assert.ErrorIs(t, err, ErrInputWidth)

	_, _, err = n.Backward([]float64{0.1, 0.2, 0.3, 0.4}, []float64{0, 0})
	assert.ErrorIs(t, err, ErrInputWidth)

	_, _, err = n.Backward([]float64{0.1, 0.2, 0.3}, []float64{0})
	assert.ErrorIs(t, err, ErrTargetWidth)
}

func TestShapeInvariant(t *testing.T) {
	rng := layer.NewRNG(9)
	drop, err := layer.NewDropout(6, 0.3, rng)
	require.NoError(t, err)
	n, err := New(loss.MSE{},
		dense(t, rng, 2, 6, activations.Tanh{}),
		drop,
		dense(t, rng, 6, 1, activations.Identity{}),
	)
	require.NoError(t, err)

	weights := n.Weights()
	for i := 0; i < 20; i++ {
		x := []float64{rng.Uniform(-1, 1), rng.Uniform(-1, 1)}
		inErr, grads, err := n.Backward(x, []float64{rng.Uniform(-1, 1)})
		require.NoError(t, err)
		assert.Len(t, inErr, 2)
		require.True(t, weights.SameShape(grads), "gradient pack differs from weight pack at call %d", i)
		assert.Empty(t, grads[1])
	}
	assert.Equal(t, 6*3+1*7, n.ParamCount())
}

func rebuild(t *testing.T, p Pack, acts []activations.Activation) *Network {
	layers := make([]layer.Layer, len(p))
	for i := range p {
		d, err := layer.NewDenseFromWeights(p[i], acts[i])
		require.NoError(t, err)
		layers[i] = d
	}
	n, err := New(loss.MSE{}, layers...)
	require.NoError(t, err)
	return n
}

func TestBackwardGradientCheck(t *testing.T) {
	n := testNetwork(t)
	acts := []activations.Activation{activations.Tanh{}, activations.Sigmoid{}, activations.Identity{}}

	// Spread weights beyond the tiny initial range
	rng := layer.NewRNG(5)
	delta := n.ZerosLike()
	flat := delta.Flatten()
	for i := range flat {
		flat[i] = rng.Uniform(-1, 1)
	}
	require.NoError(t, delta.Unflatten(flat))
	require.NoError(t, n.Update(delta))

	x := []float64{0.4, -0.9, 0.25}
	target := []float64{0.3, -0.2}

	inErr, grads, err := n.Backward(x, target)
	require.NoError(t, err)

	base := n.Weights()
	cost := func(p []float64) float64 {
		probe := base.ZerosLike()
		if err := probe.Unflatten(p); err != nil {
			panic(err)
		}
		c, err := rebuild(t, probe, acts).Cost(x, target)
		if err != nil {
			panic(err)
		}
		return c
	}
	numeric := fd.Gradient(nil, cost, base.Flatten(), &fd.Settings{Formula: fd.Central, Step: 1e-5})
	analytic := grads.Flatten()
	require.Len(t, analytic, len(numeric))
	for k := range numeric {
		assert.InDelta(t, numeric[k], analytic[k], 1e-6*math.Max(1, math.Abs(numeric[k])), "param %d", k)
	}

	costAtInput := func(in []float64) float64 {
		c, err := rebuild(t, base, acts).Cost(in, target)
		if err != nil {
			panic(err)
		}
		return c
	}
	numericIn := fd.Gradient(nil, costAtInput, x, &fd.Settings{Formula: fd.Central, Step: 1e-5})
	for i := range numericIn {
		assert.InDelta(t, numericIn[i], inErr[i], 1e-6, "input %d", i)
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	n := testNetwork(t)
	p := n.Weights()

	flat := p.Flatten()
	require.Len(t, flat, n.ParamCount())

	// Order is layer, then neuron, then weight index
	assert.Equal(t, p[0][0][0], flat[0])
	assert.Equal(t, p[0][0][3], flat[3])
	assert.Equal(t, p[0][1][0], flat[4])
	assert.Equal(t, p[1][0][0], flat[5*4])

	back := p.ZerosLike()
	require.NoError(t, back.Unflatten(flat))
	assert.Equal(t, p, back)

	assert.ErrorIs(t, back.Unflatten(flat[1:]), ErrPackLength)
}

func TestInferenceRestoresModes(t *testing.T) {
	rng := layer.NewRNG(4)
	d1, err := layer.NewDropout(3, 0.5, rng)
	require.NoError(t, err)
	d2, err := layer.NewDropout(3, 0.5, rng)
	require.NoError(t, err)
	n, err := New(loss.MSE{}, dense(t, rng, 2, 3, activations.Tanh{}), d1, d2)
	require.NoError(t, err)

	assert.True(t, n.Training())
	d2.SetTraining(false)

	restore := n.Inference()
	assert.False(t, n.Training())
	assert.False(t, d1.IsTraining())
	restore()

	assert.True(t, d1.IsTraining())
	assert.False(t, d2.IsTraining())

	n.SetTraining(false)
	assert.False(t, n.Training())
}

func TestUpdate(t *testing.T) {
	n := testNetwork(t)
	before := n.Weights()

	delta := n.ZerosLike()
	delta[1][2][3] = 0.5
	require.NoError(t, n.Update(delta))

	after := n.Weights()
	assert.InDelta(t, before[1][2][3]+0.5, after[1][2][3], 1e-15)
	assert.Equal(t, before[0], after[0])

	bad := n.ZerosLike()[:2]
	assert.ErrorIs(t, n.Update(bad), ErrShapeMismatch)

	ragged := n.ZerosLike()
	ragged[2][0] = ragged[2][0][:1]
	assert.ErrorIs(t, n.Update(ragged), ErrShapeMismatch)
}

func TestPackArithmetic(t *testing.T) {
	a := Pack{layer.Weights{{1, 2}, {3, 4}}, layer.Weights{}}
	b := a.Clone()
	b.Scale(-2)
	a.Add(b)
	assert.Equal(t, Pack{layer.Weights{{-1, -2}, {-3, -4}}, layer.Weights{}}, a)
	assert.Equal(t, 4, a.Len())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := layer.NewRNG(3)
	drop, err := layer.NewDropout(4, 0.25, rng, layer.WithValue(0.5))
	require.NoError(t, err)
	n, err := New(loss.NewHuber(0.7),
		dense(t, rng, 2, 4, activations.NewLeakyReLU(0.05)),
		drop,
		dense(t, rng, 4, 1, activations.Sigmoid{}),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, n.Encode(&buf))

	loaded, err := Decode(&buf, layer.NewRNG(3))
	require.NoError(t, err)
	assert.Equal(t, n.Weights(), loaded.Weights())
	assert.Equal(t, loss.NewHuber(0.7), loaded.Loss())

	n.SetTraining(false)
	loaded.SetTraining(false)
	x := []float64{0.3, -0.8}
	want, err := n.Forward(x)
	require.NoError(t, err)
	got, err := loaded.Forward(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-15)

	reDrop, ok := loaded.Layers()[1].(*layer.Dropout)
	require.True(t, ok)
	assert.Equal(t, 0.25, reDrop.Probability())
	assert.Equal(t, 0.5, reDrop.Value())
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	for _, h := range []header{
		{Version: formatVersion, Loss: "MSE", NumLayers: -1},
		{Version: formatVersion, Loss: "MSE", NumLayers: 0},
		{Version: formatVersion + 1, Loss: "MSE", NumLayers: 1},
	} {
		var buf bytes.Buffer
		require.NoError(t, gob.NewEncoder(&buf).Encode(h))

		_, err := Decode(&buf, nil)
		assert.ErrorIs(t, err, ErrFormat, "header %+v", h)
	}

	// A count larger than the layers present fails on the missing layer
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(header{Version: formatVersion, Loss: "MSE", NumLayers: 1 << 30}))
	_, err := Decode(&buf, nil)
	assert.Error(t, err)
}

func TestDecodeDropoutNeedsSource(t *testing.T) {
	drop, err := layer.NewDropout(2, 0.5, layer.NewRNG(1))
	require.NoError(t, err)
	n, err := New(loss.MSE{}, dense(t, layer.NewRNG(1), 3, 2, activations.Tanh{}), drop)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, n.Encode(&buf))
	_, err = Decode(&buf, nil)
	assert.ErrorIs(t, err, layer.ErrNilSource)
}

func TestSaveLoad(t *testing.T) {
	n := testNetwork(t)
	path := filepath.Join(t.TempDir(), "net.gob")

	require.NoError(t, n.Save(path))
	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, n.Weights(), loaded.Weights())

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"), nil)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	n := testNetwork(t)

	var buf bytes.Buffer
	n.Summary(&buf)
	assert.Contains(t, buf.String(), "Dense_0")
	assert.Contains(t, buf.String(), "Total params: 54")
}

// Package net composes layers and a loss into a trainable network.
package net

import (
	"fmt"
	"io"
	"reflect"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/layer"
	"github.com/FlavioCFOliveira/nntrain/internal/loss"
)

var (
	// ErrNoLayers is returned when a network is built without layers.
	ErrNoLayers = errors.New("net: no layers")

	// ErrNilComponent is returned for a nil layer or loss.
	ErrNilComponent = errors.New("net: nil layer or loss")

	// ErrWidthMismatch is returned when adjacent layers disagree on width.
	ErrWidthMismatch = errors.New("net: adjacent layer widths differ")

	// ErrDuplicateLayer is returned when one layer instance appears twice.
	ErrDuplicateLayer = errors.New("net: layer used twice")

	// ErrInputWidth is returned for an input vector of the wrong length.
	ErrInputWidth = errors.New("net: input width mismatch")

	// ErrTargetWidth is returned for a target vector of the wrong length.
	ErrTargetWidth = errors.New("net: target width mismatch")

	// ErrShapeMismatch is returned when a pack does not mirror the network's weights.
	ErrShapeMismatch = errors.New("net: pack shape mismatch")
)

// Network is an ordered chain of layers scored by a loss.
// A Network is not safe for concurrent use: layers cache forward state.
type Network struct {
	layers []layer.Layer
	loss   loss.Loss

	// Zeroed pack mirroring the layer weight shapes
	shape Pack
}

// New creates a network from layers applied in order.
// Adjacent widths are checked here and never again per call.
func New(l loss.Loss, layers ...layer.Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if l == nil {
		return nil, errors.Wrap(ErrNilComponent, "loss")
	}

	seen := make(map[layer.Layer]int, len(layers))
	for i, cur := range layers {
		if cur == nil {
			return nil, errors.Wrapf(ErrNilComponent, "layer %d", i)
		}
		if reflect.TypeOf(cur).Comparable() {
			if j, ok := seen[cur]; ok {
				return nil, errors.Wrapf(ErrDuplicateLayer, "layers %d and %d", j, i)
			}
			seen[cur] = i
		}
		if i > 0 && layers[i-1].OutSize() != cur.InSize() {
			return nil, errors.Wrapf(ErrWidthMismatch, "layer %d outputs %d, layer %d takes %d",
				i-1, layers[i-1].OutSize(), i, cur.InSize())
		}
	}

	n := &Network{
		layers: append([]layer.Layer(nil), layers...),
		loss:   l,
	}
	n.shape = n.Weights().ZerosLike()
	return n, nil
}

// Forward performs a forward pass through all layers.
func (n *Network) Forward(x []float64) ([]float64, error) {
	if len(x) != n.InSize() {
		return nil, errors.Wrapf(ErrInputWidth, "got %d, want %d", len(x), n.InSize())
	}

	curr := x
	for _, l := range n.layers {
		curr = l.Forward(curr)
	}
	return curr, nil
}

// Backward runs a forward pass for x, seeds the error with the loss derivative against t and
// propagates it through the layers in reverse order. It returns dLoss/dInput and the gradient
// pack in layer order.
func (n *Network) Backward(x, t []float64) ([]float64, Pack, error) {
	if len(x) != n.InSize() {
		return nil, nil, errors.Wrapf(ErrInputWidth, "got %d, want %d", len(x), n.InSize())
	}
	if len(t) != n.OutSize() {
		return nil, nil, errors.Wrapf(ErrTargetWidth, "got %d, want %d", len(t), n.OutSize())
	}

	// Cache each layer's input for its backward step
	inputs := make([][]float64, len(n.layers))
	curr := x
	for i, l := range n.layers {
		inputs[i] = curr
		curr = l.Forward(curr)
	}

	errVec := make([]float64, len(curr))
	loss.Gradient(n.loss, curr, t, errVec)

	grads := make(Pack, len(n.layers))
	for i := len(n.layers) - 1; i >= 0; i-- {
		errVec, grads[i] = n.layers[i].Backward(inputs[i], errVec)
	}
	return errVec, grads, nil
}

// Cost returns the summed loss of the network's prediction for x against t.
func (n *Network) Cost(x, t []float64) (float64, error) {
	if len(t) != n.OutSize() {
		return 0, errors.Wrapf(ErrTargetWidth, "got %d, want %d", len(t), n.OutSize())
	}
	y, err := n.Forward(x)
	if err != nil {
		return 0, err
	}
	return loss.Total(n.loss, y, t), nil
}

// Update adds g[i] into layer i. g must mirror Weights exactly.
func (n *Network) Update(g Pack) error {
	if !n.shape.SameShape(g) {
		return ErrShapeMismatch
	}
	for i, l := range n.layers {
		l.Update(g[i])
	}
	return nil
}

// Weights returns a snapshot of every layer's weights in layer order.
func (n *Network) Weights() Pack {
	p := make(Pack, len(n.layers))
	for i, l := range n.layers {
		p[i] = l.Weights()
	}
	return p
}

// ZerosLike returns a zeroed pack shaped like Weights.
func (n *Network) ZerosLike() Pack {
	return n.shape.Clone()
}

// ParamCount returns the number of scalar parameters, biases included.
func (n *Network) ParamCount() int {
	return n.shape.Len()
}

// moder is a layer that behaves differently in training and inference.
type moder interface {
	SetTraining(bool)
	IsTraining() bool
}

// SetTraining switches every layer that distinguishes training from inference.
func (n *Network) SetTraining(training bool) {
	for _, l := range n.layers {
		if m, ok := l.(moder); ok {
			m.SetTraining(training)
		}
	}
}

// Training reports whether any layer is in training mode.
func (n *Network) Training() bool {
	for _, l := range n.layers {
		if m, ok := l.(moder); ok && m.IsTraining() {
			return true
		}
	}
	return false
}

// Inference puts every layer in inference mode and returns a function that restores the mode
// each layer had before the call.
func (n *Network) Inference() (restore func()) {
	prev := make(map[int]bool)
	for i, l := range n.layers {
		if m, ok := l.(moder); ok {
			prev[i] = m.IsTraining()
			m.SetTraining(false)
		}
	}
	return func() {
		for i, training := range prev {
			n.layers[i].(moder).SetTraining(training)
		}
	}
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// Loss returns the network's loss function.
func (n *Network) Loss() loss.Loss {
	return n.loss
}

// InSize returns the width of the first layer's input.
func (n *Network) InSize() int {
	return n.layers[0].InSize()
}

// OutSize returns the width of the last layer's output.
func (n *Network) OutSize() int {
	return n.layers[len(n.layers)-1].OutSize()
}

// Summary writes a table of the network architecture.
func (n *Network) Summary(w io.Writer) {
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, "=================================================================")

	for i, l := range n.layers {
		lType := fmt.Sprintf("%T", l)
		// Extract simple type name
		for j := len(lType) - 1; j >= 0; j-- {
			if lType[j] == '.' {
				lType = lType[j+1:]
				break
			}
		}

		outShape := fmt.Sprintf("(%d)", l.OutSize())
		fmt.Fprintf(w, "%-25s %-20s %-10d\n", fmt.Sprintf("%s_%d", lType, i), outShape, n.shape[i].Len())
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", n.ParamCount())
	fmt.Fprintln(w, "_________________________________________________________________")
}

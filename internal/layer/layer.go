// Package layer provides the differentiable building blocks of a network.
package layer

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/activations"
)

var (
	// ErrZeroWidth is returned when a layer is built with no inputs or no outputs.
	ErrZeroWidth = errors.New("layer: zero width")

	// ErrRaggedWeights is returned when weight rows do not all have the same length.
	ErrRaggedWeights = errors.New("layer: ragged weight matrix")

	// ErrNilSource is returned when a layer that draws random numbers is given no Source.
	ErrNilSource = errors.New("layer: nil random source")

	// ErrBackwardBeforeForward is the panic value of Backward on a layer that never ran Forward.
	ErrBackwardBeforeForward = errors.New("layer: backward called before forward")
)

// Layer is a neural network layer.
//
// Forward and Backward return freshly allocated slices. Backward relies on state cached by
// the most recent Forward, so a layer instance must appear at most once in a network.
type Layer interface {
	InSize() int
	OutSize() int

	// Forward computes the layer output for an input of width InSize.
	Forward(x []float64) []float64

	// Backward takes the input of the last Forward and dLoss/dOutput, and returns
	// dLoss/dInput together with a gradient shaped like Weights.
	Backward(x, outErr []float64) ([]float64, Weights)

	// Update adds delta, shaped like Weights, into the parameters in place.
	Update(delta Weights)

	// Weights returns a snapshot of the parameters.
	Weights() Weights
}

// Dense is a fully connected layer.
// Row j of the weight matrix holds the bias of output j followed by its input weights.
type Dense struct {
	weights Weights
	act     activations.Activation
	outSize int
	inSize  int

	// Pre-activations of the last forward pass
	preActBuf []float64
	primed    bool
}

// NewDense creates a dense layer with weights drawn uniformly from
// [-0.2/(in+1), 0.2/(in+1)).
func NewDense(in, out int, act activations.Activation, rng Source) (*Dense, error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Wrapf(ErrZeroWidth, "dense %dx%d", in, out)
	}
	if rng == nil {
		return nil, errors.Wrap(ErrNilSource, "dense")
	}

	width := 0.2 / float64(in+1)
	weights := NewWeights(in, out)
	for _, row := range weights {
		for i := range row {
			row[i] = rng.Float64()*2*width - width
		}
	}

	return newDense(weights, act), nil
}

// NewDenseFromWeights creates a dense layer owning a copy of w.
func NewDenseFromWeights(w Weights, act activations.Activation) (*Dense, error) {
	if len(w) == 0 || len(w[0]) < 2 {
		return nil, errors.Wrap(ErrZeroWidth, "dense from weights")
	}
	for j, row := range w {
		if len(row) != len(w[0]) {
			return nil, errors.Wrapf(ErrRaggedWeights, "row %d has %d entries, want %d", j, len(row), len(w[0]))
		}
	}
	return newDense(w.Clone(), act), nil
}

func newDense(w Weights, act activations.Activation) *Dense {
	return &Dense{
		weights:   w,
		act:       act,
		outSize:   len(w),
		inSize:    len(w[0]) - 1,
		preActBuf: make([]float64, len(w)),
	}
}

// Forward computes act(b_j + sum_i w_ji * x_i) for every output j.
func (d *Dense) Forward(x []float64) []float64 {
	if len(x) != d.inSize {
		panic("dense: input width mismatch")
	}

	output := make([]float64, d.outSize)
	for o, row := range d.weights {
		sum := row[0]
		for i, xi := range x {
			sum += row[i+1] * xi
		}
		d.preActBuf[o] = sum
		output[o] = d.act.Activate(sum)
	}
	d.primed = true

	return output
}

// Backward performs backpropagation through the dense layer.
func (d *Dense) Backward(x, outErr []float64) ([]float64, Weights) {
	if !d.primed {
		panic(ErrBackwardBeforeForward)
	}
	if len(x) != d.inSize || len(outErr) != d.outSize {
		panic("dense: backward width mismatch")
	}

	gradIn := make([]float64, d.inSize)
	gradient := make(Weights, d.outSize)
	for o, row := range d.weights {
		// dz = dL/d(output) * act'(z)
		dz := outErr[o] * d.act.Derivative(d.preActBuf[o])

		g := make([]float64, d.inSize+1)
		g[0] = dz
		for i, xi := range x {
			g[i+1] = dz * xi
			gradIn[i] += dz * row[i+1]
		}
		gradient[o] = g
	}

	return gradIn, gradient
}

// Update adds delta into the weights in place.
func (d *Dense) Update(delta Weights) {
	d.weights.Add(delta)
}

// Weights returns a copy of the weight matrix.
func (d *Dense) Weights() Weights {
	return d.weights.Clone()
}

// SetWeight sets the weight from input i to output j.
func (d *Dense) SetWeight(j, i int, val float64) {
	d.weights[j][i+1] = val
}

// SetBias sets the bias of output j.
func (d *Dense) SetBias(j int, val float64) {
	d.weights[j][0] = val
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}

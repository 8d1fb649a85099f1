package layer

import "github.com/pkg/errors"

// ErrInvalidProbability is returned for a dropout probability outside [0, 1].
var ErrInvalidProbability = errors.New("layer: dropout probability outside [0, 1]")

// Dropout randomly replaces inputs with a fixed value.
// During training each unit draws u from the layer's Source on every Forward call and is
// replaced when u < p. Outputs are not rescaled. During inference inputs pass through.
type Dropout struct {
	// Probability of dropping a unit
	p float64

	// Value substituted for dropped units
	value float64

	// Training mode
	training bool

	size int
	rng  Source
}

// DropoutOption configures a Dropout layer.
type DropoutOption func(*Dropout)

// WithValue sets the value written to dropped units (default 0).
func WithValue(v float64) DropoutOption {
	return func(d *Dropout) {
		d.value = v
	}
}

// NewDropout creates a dropout layer of the given width.
// rng is advanced once per unit on every training-mode Forward.
func NewDropout(size int, p float64, rng Source, opts ...DropoutOption) (*Dropout, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrZeroWidth, "dropout %d", size)
	}
	if p < 0 || p > 1 {
		return nil, errors.Wrapf(ErrInvalidProbability, "p=%v", p)
	}
	if rng == nil {
		return nil, errors.Wrap(ErrNilSource, "dropout")
	}

	d := &Dropout{
		p:        p,
		training: true,
		size:     size,
		rng:      rng,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// SetTraining sets whether the layer should be in training or inference mode.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// IsTraining returns whether the layer is in training mode.
func (d *Dropout) IsTraining() bool {
	return d.training
}

// Forward performs a forward pass through the dropout layer.
func (d *Dropout) Forward(x []float64) []float64 {
	if len(x) != d.size {
		panic("dropout: input width mismatch")
	}

	output := make([]float64, d.size)
	if !d.training {
		copy(output, x)
		return output
	}

	for i, xi := range x {
		if d.rng.Float64() >= d.p {
			output[i] = xi
		} else {
			output[i] = d.value
		}
	}
	return output
}

// Backward passes the error through unchanged. Dropout has no parameters, so the gradient is
// empty.
func (d *Dropout) Backward(x, outErr []float64) ([]float64, Weights) {
	if len(outErr) != d.size {
		panic("dropout: backward width mismatch")
	}
	return append([]float64(nil), outErr...), Weights{}
}

// Update is a no-op; the only valid delta is empty.
func (d *Dropout) Update(delta Weights) {
	if len(delta) != 0 {
		panic("dropout: non-empty delta")
	}
}

// Weights returns an empty matrix.
func (d *Dropout) Weights() Weights {
	return Weights{}
}

// InSize returns the layer width.
func (d *Dropout) InSize() int {
	return d.size
}

// OutSize returns the layer width.
func (d *Dropout) OutSize() int {
	return d.size
}

// Probability returns the drop probability.
func (d *Dropout) Probability() float64 {
	return d.p
}

// Value returns the value substituted for dropped units.
func (d *Dropout) Value() float64 {
	return d.value
}

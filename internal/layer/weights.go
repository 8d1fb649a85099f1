package layer

// Weights is a layer weight matrix: one row per output unit, each row holding the bias at
// index 0 followed by one weight per input. Gradients and update deltas share this shape.
// A layer without trainable parameters uses an empty Weights.
type Weights [][]float64

// NewWeights allocates a zeroed out x (in+1) matrix.
func NewWeights(in, out int) Weights {
	w := make(Weights, out)
	for j := range w {
		w[j] = make([]float64, in+1)
	}
	return w
}

// Clone returns a deep copy.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	c := make(Weights, len(w))
	for j, row := range w {
		c[j] = append([]float64(nil), row...)
	}
	return c
}

// ZerosLike returns a zeroed matrix with the same shape as w.
func (w Weights) ZerosLike() Weights {
	z := make(Weights, len(w))
	for j, row := range w {
		z[j] = make([]float64, len(row))
	}
	return z
}

// SameShape reports whether w and other have identical row counts and row lengths.
func (w Weights) SameShape(other Weights) bool {
	if len(w) != len(other) {
		return false
	}
	for j := range w {
		if len(w[j]) != len(other[j]) {
			return false
		}
	}
	return true
}

// Len returns the number of scalars in w.
func (w Weights) Len() int {
	n := 0
	for _, row := range w {
		n += len(row)
	}
	return n
}

// Add adds other into w elementwise. Shapes must match.
func (w Weights) Add(other Weights) {
	if !w.SameShape(other) {
		panic("layer: weights shape mismatch")
	}
	for j, row := range w {
		src := other[j]
		for i := range row {
			row[i] += src[i]
		}
	}
}

// Scale multiplies every entry of w by f.
func (w Weights) Scale(f float64) {
	for _, row := range w {
		for i := range row {
			row[i] *= f
		}
	}
}

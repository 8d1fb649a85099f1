package net

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/layer"
)

// ErrPackLength is returned when a flat vector does not match a pack's parameter count.
var ErrPackLength = errors.New("net: flat vector length mismatch")

// Pack holds one weight-shaped matrix per layer, in layer order. Both weight snapshots and
// gradients use it.
type Pack []layer.Weights

// Clone returns a deep copy.
func (p Pack) Clone() Pack {
	c := make(Pack, len(p))
	for i, w := range p {
		c[i] = w.Clone()
	}
	return c
}

// ZerosLike returns a zeroed pack with the same shape as p.
func (p Pack) ZerosLike() Pack {
	z := make(Pack, len(p))
	for i, w := range p {
		z[i] = w.ZerosLike()
	}
	return z
}

// SameShape reports whether p and other mirror each other layer by layer.
func (p Pack) SameShape(other Pack) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].SameShape(other[i]) {
			return false
		}
	}
	return true
}

// Len returns the number of scalars in p.
func (p Pack) Len() int {
	n := 0
	for _, w := range p {
		n += w.Len()
	}
	return n
}

// Add adds other into p elementwise. Shapes must match.
func (p Pack) Add(other Pack) {
	if len(p) != len(other) {
		panic("net: pack length mismatch")
	}
	for i := range p {
		p[i].Add(other[i])
	}
}

// Scale multiplies every entry of p by f.
func (p Pack) Scale(f float64) {
	for _, w := range p {
		w.Scale(f)
	}
}

// Flatten returns the entries of p as one vector, ordered by layer, then neuron, then weight
// index. Unflatten is its inverse.
func (p Pack) Flatten() []float64 {
	return p.FlattenTo(make([]float64, 0, p.Len()))
}

// FlattenTo appends the flattened entries of p to dst.
func (p Pack) FlattenTo(dst []float64) []float64 {
	for _, w := range p {
		for _, row := range w {
			dst = append(dst, row...)
		}
	}
	return dst
}

// Unflatten overwrites the entries of p from vec, in Flatten order.
func (p Pack) Unflatten(vec []float64) error {
	if len(vec) != p.Len() {
		return errors.Wrapf(ErrPackLength, "got %d, want %d", len(vec), p.Len())
	}
	k := 0
	for _, w := range p {
		for _, row := range w {
			k += copy(row, vec[k:])
		}
	}
	return nil
}

// Package data provides training datasets.
package data

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmpty is returned for a dataset without samples.
	ErrEmpty = errors.New("data: empty dataset")

	// ErrLength is returned when inputs and targets differ in count.
	ErrLength = errors.New("data: inputs and targets differ in length")

	// ErrWidth is returned when a sample does not have the expected width.
	ErrWidth = errors.New("data: sample width mismatch")
)

// Dataset is a finite, ordered, revisitable sequence of (input, target) pairs.
// Len must stay fixed while a trainer walks it.
type Dataset interface {
	Len() int
	Sample(i int) (x, t []float64)
}

// Shuffler permutes n indices, as rand.Shuffle does.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Set is an in-memory dataset.
type Set struct {
	Inputs  [][]float64
	Targets [][]float64
}

// New creates a set from parallel input and target slices.
func New(inputs, targets [][]float64) (*Set, error) {
	if len(inputs) != len(targets) {
		return nil, errors.Wrapf(ErrLength, "%d inputs, %d targets", len(inputs), len(targets))
	}
	return &Set{Inputs: inputs, Targets: targets}, nil
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Inputs)
}

// Sample returns the i-th pair.
func (s *Set) Sample(i int) ([]float64, []float64) {
	return s.Inputs[i], s.Targets[i]
}

// Shuffle permutes the samples in place, keeping pairs together.
func (s *Set) Shuffle(rng Shuffler) {
	rng.Shuffle(len(s.Inputs), func(i, j int) {
		s.Inputs[i], s.Inputs[j] = s.Inputs[j], s.Inputs[i]
		s.Targets[i], s.Targets[j] = s.Targets[j], s.Targets[i]
	})
}

// Check verifies that d is non-empty and that every sample has the given widths.
func Check(d Dataset, inSize, outSize int) error {
	if d == nil || d.Len() == 0 {
		return ErrEmpty
	}
	for i := 0; i < d.Len(); i++ {
		x, t := d.Sample(i)
		if len(x) != inSize {
			return errors.Wrapf(ErrWidth, "sample %d input has %d values, want %d", i, len(x), inSize)
		}
		if len(t) != outSize {
			return errors.Wrapf(ErrWidth, "sample %d target has %d values, want %d", i, len(t), outSize)
		}
	}
	return nil
}

package layer

import "math/rand"

// Source supplies uniform draws in [0, 1).
// Stochastic layers and weight initialisers take a Source so callers control determinism.
type Source interface {
	Float64() float64
}

// RNG is a seedable Source. Successive draws advance its state, so two layers sharing one
// RNG observe interleaved values.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a generator with a fixed seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform value in [0, 1).
func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

// Uniform returns a uniform value in [lo, hi).
func (g *RNG) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.r.Float64()
}

// Shuffle permutes n elements with swap, as rand.Shuffle does.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}

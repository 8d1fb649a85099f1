package opt

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CurvatureEpsilon is the smallest |yᵀs| accepted into a History. Pairs at or below it would
// make rho = 1/(yᵀs) blow up and are skipped.
const CurvatureEpsilon = 1e-12

// Pair is one L-BFGS history entry: S is the parameter difference and Y the gradient
// difference between two successive commits.
type Pair struct {
	S, Y []float64
	rho  float64
}

// Rho returns 1/(yᵀs).
func (p Pair) Rho() float64 {
	return p.rho
}

// History is a FIFO of curvature pairs, oldest first.
// Push may leave it one entry over capacity until Evict is called.
type History struct {
	size  int
	pairs []Pair
}

// NewHistory creates a history that keeps at most size pairs after Evict.
func NewHistory(size int) *History {
	return &History{size: size}
}

// Push appends a pair unless its curvature yᵀs is degenerate; it reports whether the pair
// was kept. s and y are retained, not copied.
func (h *History) Push(s, y []float64) bool {
	if len(s) != len(y) {
		panic("opt: history pair length mismatch")
	}
	ys := floats.Dot(y, s)
	if math.IsNaN(ys) || math.IsInf(ys, 0) || math.Abs(ys) <= CurvatureEpsilon {
		return false
	}
	h.pairs = append(h.pairs, Pair{S: s, Y: y, rho: 1 / ys})
	return true
}

// Evict drops the oldest pairs beyond capacity.
func (h *History) Evict() {
	if extra := len(h.pairs) - h.size; extra > 0 {
		copy(h.pairs, h.pairs[extra:])
		for i := len(h.pairs) - extra; i < len(h.pairs); i++ {
			h.pairs[i] = Pair{}
		}
		h.pairs = h.pairs[:len(h.pairs)-extra]
	}
}

// Len returns the number of stored pairs.
func (h *History) Len() int {
	return len(h.pairs)
}

// Cap returns the capacity enforced by Evict.
func (h *History) Cap() int {
	return h.size
}

// Pairs returns the stored pairs, oldest first. The slice must not be modified.
func (h *History) Pairs() []Pair {
	return h.pairs
}

// Reset drops every pair.
func (h *History) Reset() {
	h.pairs = nil
}

// Direction stores B·g in dst and returns it, where B is the identity corrected by every
// pair from oldest to newest with the BFGS inverse update
//
//	B ← (I − ρ s yᵀ) B (I − ρ y sᵀ) + ρ s sᵀ
//
// It runs the two-loop recursion in O(len·n). dst may be nil or alias g.
func (h *History) Direction(dst, g []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(g))
	}
	q := dst
	copy(q, g)

	alpha := make([]float64, len(h.pairs))
	for i := len(h.pairs) - 1; i >= 0; i-- {
		p := h.pairs[i]
		alpha[i] = p.rho * floats.Dot(p.S, q)
		floats.AddScaled(q, -alpha[i], p.Y)
	}

	for i, p := range h.pairs {
		beta := p.rho * floats.Dot(p.Y, q)
		floats.AddScaled(q, alpha[i]-beta, p.S)
	}
	return q
}

// InverseHessian builds the dense n×n matrix B used by Direction. n must be positive.
func (h *History) InverseHessian(n int) *mat.Dense {
	b := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		b.Set(i, i, 1)
	}

	for _, p := range h.pairs {
		s := mat.NewVecDense(n, p.S)
		y := mat.NewVecDense(n, p.Y)

		// left = I − ρ s yᵀ; the right factor is its transpose
		left := mat.NewDense(n, n, nil)
		left.Outer(-p.rho, s, y)
		for i := 0; i < n; i++ {
			left.Set(i, i, left.At(i, i)+1)
		}

		var tmp, next, ss mat.Dense
		tmp.Mul(left, b)
		next.Mul(&tmp, left.T())
		ss.Outer(p.rho, s, s)
		next.Add(&next, &ss)
		b = &next
	}
	return b
}

// DenseDirection computes B·g through the explicit matrix. It matches Direction up to
// rounding and costs O(len·n³); use it only for small parameter counts.
func (h *History) DenseDirection(dst, g []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(g))
	}
	if len(g) == 0 {
		return dst
	}
	b := h.InverseHessian(len(g))

	var r mat.VecDense
	r.MulVec(b, mat.NewVecDense(len(g), append([]float64(nil), g...)))
	for i := range dst {
		dst[i] = r.AtVec(i)
	}
	return dst
}

// LBFGS turns successive (weights, gradient) snapshots into quasi-Newton directions.
// It is not safe for concurrent use.
type LBFGS struct {
	history *History
	dense   bool

	prevWeights  []float64
	prevGradient []float64
}

// NewLBFGS creates an L-BFGS state keeping historySize pairs. With dense set, directions are
// computed through the explicit inverse-Hessian matrix instead of the two-loop recursion.
func NewLBFGS(historySize int, dense bool) *LBFGS {
	return &LBFGS{history: NewHistory(historySize), dense: dense}
}

// Direction records the pair formed with the previous call, returns B·g and evicts the
// oldest pairs beyond capacity. weights and g are copied; the first call returns g.
func (l *LBFGS) Direction(weights, g []float64) []float64 {
	weights = append([]float64(nil), weights...)
	g = append([]float64(nil), g...)

	if l.prevWeights != nil {
		s := make([]float64, len(weights))
		y := make([]float64, len(g))
		floats.SubTo(s, weights, l.prevWeights)
		floats.SubTo(y, g, l.prevGradient)
		l.history.Push(s, y)
	}

	var dir []float64
	if l.dense {
		dir = l.history.DenseDirection(nil, g)
	} else {
		dir = l.history.Direction(nil, g)
	}

	l.history.Evict()
	l.prevWeights = weights
	l.prevGradient = g
	return dir
}

// History returns the curvature pairs.
func (l *LBFGS) History() *History {
	return l.history
}

// Reset forgets every pair and the previous snapshot.
func (l *LBFGS) Reset() {
	l.history.Reset()
	l.prevWeights = nil
	l.prevGradient = nil
}

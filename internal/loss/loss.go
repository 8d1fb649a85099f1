// Package loss provides scalar loss functions and their derivatives.
package loss

import "math"

// Loss is a per-output loss with derivative.
// Both methods are pure functions of a single prediction/target pair; a network applies them
// elementwise over its output vector.
type Loss interface {
	// Forward computes the loss of prediction y against target t.
	Forward(y, t float64) float64

	// Backward computes dLoss/dy.
	Backward(y, t float64) float64
}

// Total sums the loss over a prediction vector.
func Total(l Loss, yPred, yTrue []float64) float64 {
	if len(yPred) != len(yTrue) {
		panic("loss: prediction and target must have same length")
	}

	var sum float64
	for i := range yPred {
		sum += l.Forward(yPred[i], yTrue[i])
	}
	return sum
}

// Gradient stores dLoss/dy for every output in grad.
func Gradient(l Loss, yPred, yTrue, grad []float64) {
	n := len(yPred)
	if n != len(yTrue) || n != len(grad) {
		panic("loss: slices must have same length")
	}

	for i := 0; i < n; i++ {
		grad[i] = l.Backward(yPred[i], yTrue[i])
	}
}

// MSE is the squared error loss (y - t)^2 / 2.
// The half makes the derivative exactly y - t.
type MSE struct{}

// Forward computes (y - t)^2 / 2
func (MSE) Forward(y, t float64) float64 {
	d := y - t
	return d * d / 2
}

// Backward computes y - t
func (MSE) Backward(y, t float64) float64 {
	return y - t
}

// CrossEntropyEpsilon bounds predictions away from 0 and 1 before taking logarithms.
const CrossEntropyEpsilon = 1e-12

// CrossEntropy is the binary cross entropy for outputs in (0, 1).
// Predictions outside [eps, 1-eps] are clamped so neither method returns Inf or NaN.
type CrossEntropy struct{}

func clamp(y float64) float64 {
	switch {
	case y < CrossEntropyEpsilon:
		return CrossEntropyEpsilon
	case y > 1-CrossEntropyEpsilon:
		return 1 - CrossEntropyEpsilon
	default:
		return y
	}
}

// Forward computes -t*log(y) - (1-t)*log(1-y)
func (CrossEntropy) Forward(y, t float64) float64 {
	y = clamp(y)
	return -t*math.Log(y) - (1-t)*math.Log(1-y)
}

// Backward computes (y - t) / (y * (1 - y))
func (CrossEntropy) Backward(y, t float64) float64 {
	y = clamp(y)
	return (y - t) / (y * (1 - y))
}

// Huber loss for robust regression.
type Huber struct {
	Delta float64 // Threshold for quadratic/linear transition
}

// NewHuber creates a Huber loss with the given delta.
func NewHuber(delta float64) *Huber {
	return &Huber{Delta: delta}
}

// Forward computes the Huber loss of a single output.
func (h Huber) Forward(y, t float64) float64 {
	diff := math.Abs(y - t)
	if diff <= h.Delta {
		return 0.5 * diff * diff
	}
	return h.Delta * (diff - 0.5*h.Delta)
}

// Backward computes the Huber gradient of a single output.
func (h Huber) Backward(y, t float64) float64 {
	diff := y - t
	if math.Abs(diff) <= h.Delta {
		return diff
	}
	return h.Delta * math.Copysign(1, diff)
}

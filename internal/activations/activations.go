// Package activations provides the scalar activation functions used by dense layers.
package activations

import "math"

// Activation is an activation function with derivative.
// Implementations must be pure: both methods depend only on x.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// Identity is the linear activation f(x) = x.
type Identity struct{}

// Activate returns x unchanged.
func (Identity) Activate(x float64) float64 {
	return x
}

// Derivative always returns 1.
func (Identity) Derivative(float64) float64 {
	return 1
}

// Sigmoid activation function.
type Sigmoid struct{}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes 1 / (1 + exp(-x))
func (Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (Tanh) Derivative(x float64) float64 {
	tanhX := math.Tanh(x)
	return 1 - tanhX*tanhX
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if x > 0, else 0
func (ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// LeakyReLU keeps a small slope for negative inputs.
type LeakyReLU struct {
	Alpha float64 // Slope for x <= 0
}

// NewLeakyReLU creates a LeakyReLU with the given alpha value.
func NewLeakyReLU(alpha float64) *LeakyReLU {
	return &LeakyReLU{Alpha: alpha}
}

// Activate computes x if x > 0, else alpha*x
func (l *LeakyReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return l.Alpha * x
}

// Derivative returns 1 if x > 0, else alpha
func (l *LeakyReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return l.Alpha
}

// Name returns the registry name of a known activation, or "" for a custom one.
func Name(act Activation) string {
	switch act.(type) {
	case Identity, *Identity:
		return "Identity"
	case Sigmoid, *Sigmoid:
		return "Sigmoid"
	case Tanh, *Tanh:
		return "Tanh"
	case ReLU, *ReLU:
		return "ReLU"
	case *LeakyReLU:
		return "LeakyReLU"
	default:
		return ""
	}
}

// ByName returns the activation registered under name.
// param is only used by parameterised activations (LeakyReLU's alpha).
func ByName(name string, param float64) (Activation, bool) {
	switch name {
	case "Identity":
		return Identity{}, true
	case "Sigmoid":
		return Sigmoid{}, true
	case "Tanh":
		return Tanh{}, true
	case "ReLU":
		return ReLU{}, true
	case "LeakyReLU":
		return NewLeakyReLU(param), true
	default:
		return nil, false
	}
}

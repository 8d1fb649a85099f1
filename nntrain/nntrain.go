// Package nntrain trains small feed-forward networks with mini-batch gradient descent or
// L-BFGS.
package nntrain

import (
	"github.com/FlavioCFOliveira/nntrain/internal/activations"
	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/layer"
	"github.com/FlavioCFOliveira/nntrain/internal/loss"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
	"github.com/FlavioCFOliveira/nntrain/internal/opt"
	"github.com/FlavioCFOliveira/nntrain/internal/train"
)

// Re-export common types and functions for easier access
type (
	Network     = net.Network
	Layer       = layer.Layer
	Loss        = loss.Loss
	Activation  = activations.Activation
	Schedule    = opt.Schedule
	Dataset     = data.Dataset
	Set         = data.Set
	Config      = train.Config
	LBFGSConfig = train.LBFGSConfig
	RNG         = layer.RNG
)

// New builds a network from layers whose widths chain.
func New(l Loss, layers ...Layer) (*Network, error) {
	return net.New(l, layers...)
}

// NewRNG returns a seeded source for weight initialisation and dropout.
func NewRNG(seed int64) *RNG {
	return layer.NewRNG(seed)
}

// Activations
var (
	Identity = activations.Identity{}
	Sigmoid  = activations.Sigmoid{}
	Tanh     = activations.Tanh{}
	ReLU     = activations.ReLU{}
)

func LeakyReLU(alpha float64) Activation {
	return activations.NewLeakyReLU(alpha)
}

// Layers
func Dense(in, out int, act Activation, rng layer.Source) (*layer.Dense, error) {
	return layer.NewDense(in, out, act, rng)
}

func Dropout(size int, p float64, rng layer.Source, opts ...layer.DropoutOption) (*layer.Dropout, error) {
	return layer.NewDropout(size, p, rng, opts...)
}

// DropoutValue sets the value substituted for dropped activations.
func DropoutValue(v float64) layer.DropoutOption {
	return layer.WithValue(v)
}

// Losses
var (
	MSE          = loss.MSE{}
	CrossEntropy = loss.CrossEntropy{}
)

func Huber(delta float64) Loss {
	return loss.NewHuber(delta)
}

// Schedules
func Constant(factor float64) Schedule {
	return opt.Constant(factor)
}

func Exponential(factor, base float64) Schedule {
	return opt.Exponential(factor, base)
}

func Step(factor, gamma float64, stepSize int) Schedule {
	return opt.Step(factor, gamma, stepSize)
}

// Trainers
func NewBatch(cfg Config) (*train.Batch, error) {
	return train.NewBatch(cfg)
}

func NewLBFGS(cfg LBFGSConfig) (*train.LBFGS, error) {
	return train.NewLBFGS(cfg)
}

// Data
func NewSet(inputs, targets [][]float64) (*Set, error) {
	return data.New(inputs, targets)
}

func LoadCSV(filename string, labelCols []int, hasHeader bool) (*Set, error) {
	return data.LoadCSV(filename, labelCols, hasHeader)
}

// Evaluate returns the mean per-sample loss of n over d.
func Evaluate(n *Network, d Dataset) (float64, error) {
	return train.Evaluate(n, d)
}

// Model persistence
func Load(filename string, rng layer.Source) (*Network, error) {
	return net.Load(filename, rng)
}

package train

import (
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
	"github.com/FlavioCFOliveira/nntrain/internal/opt"
)

// LBFGS is a quasi-Newton trainer built on the batch loop.
//
// The loop accumulates and averages gradients with a constant step of 1. Every finalised
// update is then replaced by -Schedule(round)·B·g, where g is the averaged (and L2-decayed)
// gradient and B the L-BFGS inverse-Hessian estimate built from previous commits.
type LBFGS struct {
	cfg     LBFGSConfig
	state   *opt.LBFGS
	onRound RoundFunc
	onBatch BatchFunc
}

// NewLBFGS creates an L-BFGS trainer.
func NewLBFGS(cfg LBFGSConfig) (*LBFGS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LBFGS{
		cfg:   cfg,
		state: opt.NewLBFGS(cfg.History, cfg.Dense),
	}, nil
}

// OnRound sets the per-round callback.
func (t *LBFGS) OnRound(f RoundFunc) {
	t.onRound = f
}

// OnBatch sets the per-commit callback.
func (t *LBFGS) OnBatch(f BatchFunc) {
	t.onBatch = f
}

// History returns the curvature pairs of the current or last Train call.
func (t *LBFGS) History() *opt.History {
	return t.state.History()
}

// Train runs every round over d, starting from an empty history.
func (t *LBFGS) Train(n *net.Network, d data.Dataset) error {
	t.state.Reset()

	l := &loop{
		cfg:      t.cfg.Config,
		schedule: opt.Constant(1),
		onRound:  t.onRound,
		onBatch:  t.onBatch,
		hook: func(round int, update net.Pack) error {
			g := update.Flatten()
			floats.Scale(-1, g)

			dir := t.state.Direction(n.Weights().Flatten(), g)
			floats.Scale(-t.cfg.Schedule(round), dir)
			return update.Unflatten(dir)
		},
	}
	return l.run(n, d)
}

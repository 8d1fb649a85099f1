package train

import (
	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
)

// Batch is a mini-batch gradient descent trainer.
//
// Each round walks the dataset in order, sums BatchSize sample gradients, scales the sum by
// -Schedule(round)/BatchSize, applies L2 decay and commits it to the network. Samples are
// never shuffled here; reorder the dataset from a round callback if needed.
type Batch struct {
	cfg     Config
	onRound RoundFunc
	onBatch BatchFunc
}

// NewBatch creates a batch trainer.
func NewBatch(cfg Config) (*Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Batch{cfg: cfg}, nil
}

// OnRound sets the per-round callback.
func (b *Batch) OnRound(f RoundFunc) {
	b.onRound = f
}

// OnBatch sets the per-commit callback.
func (b *Batch) OnBatch(f BatchFunc) {
	b.onBatch = f
}

// Train runs every round over d. Weights committed before an error are kept.
func (b *Batch) Train(n *net.Network, d data.Dataset) error {
	l := &loop{
		cfg:      b.cfg,
		schedule: b.cfg.Schedule,
		onRound:  b.onRound,
		onBatch:  b.onBatch,
	}
	return l.run(n, d)
}

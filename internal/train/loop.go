package train

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
	"github.com/FlavioCFOliveira/nntrain/internal/opt"
)

// ErrEmptyDataset is returned when training on a dataset without samples.
var ErrEmptyDataset = data.ErrEmpty

// RoundFunc is called after every round with its 0-based index.
type RoundFunc func(round int)

// BatchFunc is called after every commit with a batch counter that runs across rounds.
type BatchFunc func(batch int)

// commitHook may rewrite a finalised update before it is committed.
type commitHook func(round int, update net.Pack) error

// loop is the batch-accumulation core shared by the trainers.
type loop struct {
	cfg      Config
	schedule opt.Schedule
	onRound  RoundFunc
	onBatch  BatchFunc
	hook     commitHook
}

func (l *loop) run(n *net.Network, d data.Dataset) error {
	if err := data.Check(d, n.InSize(), n.OutSize()); err != nil {
		return errors.Wrap(err, "train")
	}

	size := d.Len()
	batch := 0
	for round := 0; round < l.cfg.Rounds; round++ {
		step := l.schedule(round)
		sum := n.ZerosLike()
		pending := 0

		for i := 0; i < size; i++ {
			x, t := d.Sample(i)
			_, g, err := n.Backward(x, t)
			if err != nil {
				return errors.Wrapf(err, "round %d sample %d", round, i)
			}
			sum.Add(g)
			pending++

			if pending == l.cfg.BatchSize {
				if err := l.commit(n, sum, round, step, size); err != nil {
					return err
				}
				l.batchDone(batch)
				batch++
				sum = n.ZerosLike()
				pending = 0
			}
		}

		// A short trailing batch is still divided by the full batch size
		if pending > 0 {
			if err := l.commit(n, sum, round, step, size); err != nil {
				return err
			}
			l.batchDone(batch)
			batch++
		}

		if l.onRound != nil {
			l.onRound(round)
		}
	}
	return nil
}

func (l *loop) batchDone(batch int) {
	if l.onBatch != nil {
		l.onBatch(batch)
	}
}

// commit turns a gradient sum into a descent update, applies weight decay and the hook, and
// hands the result to the network.
func (l *loop) commit(n *net.Network, sum net.Pack, round int, step float64, size int) error {
	sum.Scale(-step / float64(l.cfg.BatchSize))

	if l.cfg.L2 > 0 {
		decay := l.cfg.L2 / float64(size)
		for li, w := range n.Weights() {
			for j, row := range w {
				// Index 0 is the bias
				for i := 1; i < len(row); i++ {
					sum[li][j][i] -= row[i] * decay
				}
			}
		}
	}

	if l.hook != nil {
		if err := l.hook(round, sum); err != nil {
			return errors.Wrapf(err, "round %d", round)
		}
	}
	return n.Update(sum)
}

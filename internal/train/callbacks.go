package train

import (
	"log"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
)

// Evaluate returns the mean per-sample loss of n over d.
// Layers run in inference mode and get their previous mode back, so evaluation neither varies
// with dropout nor advances any layer's random source.
func Evaluate(n *net.Network, d data.Dataset) (float64, error) {
	if d == nil || d.Len() == 0 {
		return 0, ErrEmptyDataset
	}

	restore := n.Inference()
	defer restore()

	costs := make([]float64, d.Len())
	for i := range costs {
		x, t := d.Sample(i)
		c, err := n.Cost(x, t)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		costs[i] = c
	}
	return stat.Mean(costs, nil), nil
}

// Logger logs the evaluation error of a network every Interval rounds.
type Logger struct {
	Out      *log.Logger
	Network  *net.Network
	Data     data.Dataset
	Interval int
}

// Round is a RoundFunc.
func (c Logger) Round(round int) {
	if c.Interval <= 0 || round%c.Interval != 0 {
		return
	}

	out := c.Out
	if out == nil {
		out = log.Default()
	}

	e, err := Evaluate(c.Network, c.Data)
	if err != nil {
		out.Printf("round %d: evaluate: %v", round, err)
		return
	}
	out.Printf("round %d: error = %.6f", round, e)
}

// Recorder keeps the evaluation error after every round.
type Recorder struct {
	Network *net.Network
	Data    data.Dataset

	Errors []float64
	Err    error
}

// Round is a RoundFunc. The first evaluation failure is kept in Err.
func (h *Recorder) Round(round int) {
	e, err := Evaluate(h.Network, h.Data)
	if err != nil {
		if h.Err == nil {
			h.Err = errors.Wrapf(err, "round %d", round)
		}
		return
	}
	h.Errors = append(h.Errors, e)
}

// Chain calls every non-nil RoundFunc in order.
func Chain(fs ...RoundFunc) RoundFunc {
	return func(round int) {
		for _, f := range fs {
			if f != nil {
				f(round)
			}
		}
	}
}

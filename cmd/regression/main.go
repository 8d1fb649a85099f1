package main

import (
	"flag"
	"log"
	"strconv"
	"strings"

	"github.com/FlavioCFOliveira/nntrain/internal/activations"
	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/layer"
	"github.com/FlavioCFOliveira/nntrain/internal/loss"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
	"github.com/FlavioCFOliveira/nntrain/internal/opt"
	"github.com/FlavioCFOliveira/nntrain/internal/train"
)

// Regression on a CSV file, or on a synthetic y = x² set when no file is given.
func main() {
	path := flag.String("data", "", "CSV file; empty generates y = x²")
	labels := flag.String("labels", "-1", "comma-separated target columns; -1 is the last column")
	header := flag.Bool("header", true, "skip the first CSV row")
	method := flag.String("method", "lbfgs", "trainer: batch or lbfgs")
	hidden := flag.Int("hidden", 8, "hidden units")
	dropout := flag.Float64("dropout", 0, "dropout probability after the hidden layer")
	huber := flag.Float64("huber", 0, "use Huber loss with this delta instead of MSE")
	rounds := flag.Int("rounds", 300, "passes over the training set")
	batchSize := flag.Int("batch", 16, "samples per commit")
	lr := flag.Float64("lr", 0.05, "step factor")
	gamma := flag.Float64("gamma", 0.5, "step decay factor")
	stepSize := flag.Int("step", 100, "rounds between step decays")
	l2 := flag.Float64("l2", 0, "weight decay factor")
	history := flag.Int("history", 5, "L-BFGS history size")
	split := flag.Float64("split", 0.8, "training fraction")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	log.SetFlags(0)
	rng := layer.NewRNG(*seed)

	set, err := loadSet(*path, *labels, *header, rng)
	if err != nil {
		log.Fatal(err)
	}
	set.Normalize()
	set.Shuffle(rng)
	trainSet, testSet := set.Split(*split)
	log.Printf("Samples: %d train, %d test", trainSet.Len(), testSet.Len())

	in, out := len(set.Inputs[0]), len(set.Targets[0])
	network, dropLayer, err := build(in, *hidden, out, *dropout, *huber, rng)
	if err != nil {
		log.Fatal(err)
	}
	network.Summary(log.Writer())

	cfg := train.Config{
		Schedule:  opt.Step(*lr, *gamma, *stepSize),
		BatchSize: *batchSize,
		Rounds:    *rounds,
		L2:        *l2,
	}
	logger := train.Logger{Network: network, Data: testSet, Interval: *rounds / 10}

	onRound := func(round int) {
		logger.Round(round)
		trainSet.Shuffle(rng)
	}

	switch *method {
	case "batch":
		t, err := train.NewBatch(cfg)
		if err != nil {
			log.Fatal(err)
		}
		t.OnRound(onRound)
		err = t.Train(network, trainSet)
		if err != nil {
			log.Fatal(err)
		}
	case "lbfgs":
		t, err := train.NewLBFGS(train.LBFGSConfig{Config: cfg, History: *history})
		if err != nil {
			log.Fatal(err)
		}
		t.OnRound(onRound)
		err = t.Train(network, trainSet)
		if err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown method %q", *method)
	}

	if dropLayer != nil {
		log.Printf("Dropout %.2f is disabled during evaluation", dropLayer.Probability())
	}
	for _, part := range []struct {
		name string
		set  *data.Set
	}{{"train", trainSet}, {"test", testSet}} {
		if part.set.Len() == 0 {
			continue
		}
		e, err := train.Evaluate(network, part.set)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Final %s error: %.6f", part.name, e)
	}
}

func loadSet(path, labels string, header bool, rng *layer.RNG) (*data.Set, error) {
	if path == "" {
		s := &data.Set{}
		for i := 0; i < 200; i++ {
			x := rng.Uniform(-1, 1)
			s.Inputs = append(s.Inputs, []float64{x})
			s.Targets = append(s.Targets, []float64{x * x})
		}
		return s, nil
	}

	cols, err := parseColumns(path, labels, header)
	if err != nil {
		return nil, err
	}
	return data.LoadCSV(path, cols, header)
}

// parseColumns resolves negative indices against the column count of the file.
func parseColumns(path, labels string, header bool) ([]int, error) {
	probe, err := data.LoadCSV(path, nil, header)
	if err != nil {
		return nil, err
	}
	numCols := len(probe.Inputs[0])

	var cols []int
	for _, f := range strings.Split(labels, ",") {
		c, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		if c < 0 {
			c += numCols
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func build(in, hidden, out int, p, huber float64, rng *layer.RNG) (*net.Network, *layer.Dropout, error) {
	l1, err := layer.NewDense(in, hidden, activations.Tanh{}, rng)
	if err != nil {
		return nil, nil, err
	}
	l2, err := layer.NewDense(hidden, out, activations.Identity{}, rng)
	if err != nil {
		return nil, nil, err
	}

	var lf loss.Loss = loss.MSE{}
	if huber > 0 {
		lf = loss.NewHuber(huber)
	}

	if p == 0 {
		n, err := net.New(lf, l1, l2)
		return n, nil, err
	}

	drop, err := layer.NewDropout(hidden, p, rng)
	if err != nil {
		return nil, nil, err
	}
	n, err := net.New(lf, l1, drop, l2)
	return n, drop, err
}

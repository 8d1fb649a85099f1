package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/FlavioCFOliveira/nntrain/internal/activations"
	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/layer"
	"github.com/FlavioCFOliveira/nntrain/internal/loss"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
	"github.com/FlavioCFOliveira/nntrain/internal/opt"
	"github.com/FlavioCFOliveira/nntrain/internal/train"
)

type trainer interface {
	OnRound(train.RoundFunc)
	Train(n *net.Network, d data.Dataset) error
}

func main() {
	method := flag.String("method", "batch", "trainer: batch or lbfgs")
	rounds := flag.Int("rounds", 2000, "passes over the dataset")
	batchSize := flag.Int("batch", 4, "samples per commit")
	lr := flag.Float64("lr", 0.1, "initial step factor")
	decay := flag.Float64("decay", 1, "per-round exponential decay of the step factor")
	l2 := flag.Float64("l2", 0, "weight decay factor")
	history := flag.Int("history", 5, "L-BFGS history size")
	hidden := flag.Int("hidden", 4, "hidden units")
	seed := flag.Int64("seed", 42, "random seed")
	csvPath := flag.String("csv", "", "write per-round errors to this CSV file")
	savePath := flag.String("save", "xor_network.gob", "save the trained network here; empty to skip")
	interval := flag.Int("log", 200, "log the error every n rounds")
	flag.Parse()

	log.SetFlags(0)
	log.Println("=== XOR Training Example ===")
	log.Printf("Network architecture: 2-%d-1 (tanh, identity), MSE", *hidden)

	rng := layer.NewRNG(*seed)
	l1, err := layer.NewDense(2, *hidden, activations.Tanh{}, rng)
	if err != nil {
		log.Fatal(err)
	}
	l2Layer, err := layer.NewDense(*hidden, 1, activations.Identity{}, rng)
	if err != nil {
		log.Fatal(err)
	}
	network, err := net.New(loss.MSE{}, l1, l2Layer)
	if err != nil {
		log.Fatal(err)
	}

	d, err := data.New(
		[][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float64{{0}, {1}, {1}, {0}},
	)
	if err != nil {
		log.Fatal(err)
	}

	cfg := train.Config{
		Schedule:  opt.Exponential(*lr, *decay),
		BatchSize: *batchSize,
		Rounds:    *rounds,
		L2:        *l2,
	}

	var t trainer
	switch *method {
	case "batch":
		t, err = train.NewBatch(cfg)
	case "lbfgs":
		t, err = train.NewLBFGS(train.LBFGSConfig{Config: cfg, History: *history})
	default:
		log.Fatalf("unknown method %q", *method)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Trainer: %s, lr %g, decay %g, batch %d, rounds %d", *method, *lr, *decay, *batchSize, *rounds)

	callbacks := []train.RoundFunc{
		train.Logger{Network: network, Data: d, Interval: *interval}.Round,
	}
	var csvLogger *train.CSVLogger
	if *csvPath != "" {
		csvLogger = train.NewCSVLogger(*csvPath, false, network, d)
		if err := csvLogger.Open(); err != nil {
			log.Fatal(err)
		}
		callbacks = append(callbacks, csvLogger.Round)
	}
	t.OnRound(train.Chain(callbacks...))

	if err := t.Train(network, d); err != nil {
		log.Fatal(err)
	}
	if csvLogger != nil {
		if err := csvLogger.Close(); err != nil {
			log.Fatal(err)
		}
	}

	final, err := train.Evaluate(network, d)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Final error: %.6f", final)

	log.Println("Testing trained network:")
	for i := 0; i < d.Len(); i++ {
		x, target := d.Sample(i)
		pred, err := network.Forward(x)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Input: %v, Predicted: %.4f, Target: %v", x, pred[0], target[0])
	}

	if *savePath == "" {
		return
	}
	if err := network.Save(*savePath); err != nil {
		log.Fatalf("Error saving network: %v", err)
	}
	loaded, err := net.Load(*savePath, layer.NewRNG(*seed))
	if err != nil {
		log.Fatalf("Error loading network: %v", err)
	}

	for i := 0; i < d.Len(); i++ {
		x, _ := d.Sample(i)
		want, _ := network.Forward(x)
		got, err := loaded.Forward(x)
		if err != nil {
			log.Fatal(err)
		}
		if math.Abs(want[0]-got[0]) > 1e-12 {
			log.Printf("FAILURE: loaded network predicts %.6f for %v, want %.6f", got[0], x, want[0])
			os.Exit(1)
		}
	}
	log.Printf("Network saved to %s and verified after reload", *savePath)
}

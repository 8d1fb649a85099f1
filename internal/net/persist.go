package net

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/activations"
	"github.com/FlavioCFOliveira/nntrain/internal/layer"
	"github.com/FlavioCFOliveira/nntrain/internal/loss"
)

// ErrUnsupported is returned when a network holds a layer, activation or loss that has no
// serialised form.
var ErrUnsupported = errors.New("net: unsupported component")

// ErrFormat is returned when a saved network has a malformed header.
var ErrFormat = errors.New("net: malformed network file")

const formatVersion = 1

// header is the first gob value of a saved network.
type header struct {
	Version    int
	Loss       string
	HuberDelta float64
	NumLayers  int
}

// LayerConfig holds the configuration needed to reconstruct a layer.
type LayerConfig struct {
	Type string

	// Dense layers
	Activation string
	ActParam   float64
	Weights    layer.Weights

	// Dropout layers
	Size        int
	Probability float64
	Value       float64
}

// ExtractLayerConfig extracts the configuration from a layer.
func ExtractLayerConfig(l layer.Layer) (LayerConfig, error) {
	switch v := l.(type) {
	case *layer.Dense:
		name := activations.Name(v.Activation())
		if name == "" {
			return LayerConfig{}, errors.Wrapf(ErrUnsupported, "activation %T", v.Activation())
		}
		cfg := LayerConfig{Type: "Dense", Activation: name, Weights: v.Weights()}
		if lr, ok := v.Activation().(*activations.LeakyReLU); ok {
			cfg.ActParam = lr.Alpha
		}
		return cfg, nil
	case *layer.Dropout:
		return LayerConfig{
			Type:        "Dropout",
			Size:        v.InSize(),
			Probability: v.Probability(),
			Value:       v.Value(),
		}, nil
	default:
		return LayerConfig{}, errors.Wrapf(ErrUnsupported, "layer %T", l)
	}
}

// CreateLayer creates a new layer from the configuration.
// rng feeds stochastic layers; it may be nil when the network has none.
func (c *LayerConfig) CreateLayer(rng layer.Source) (layer.Layer, error) {
	switch c.Type {
	case "Dense":
		act, ok := activations.ByName(c.Activation, c.ActParam)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupported, "activation %q", c.Activation)
		}
		return layer.NewDenseFromWeights(c.Weights, act)
	case "Dropout":
		return layer.NewDropout(c.Size, c.Probability, rng, layer.WithValue(c.Value))
	default:
		return nil, errors.Wrapf(ErrUnsupported, "layer type %q", c.Type)
	}
}

func lossName(l loss.Loss) (string, float64, error) {
	switch v := l.(type) {
	case loss.MSE:
		return "MSE", 0, nil
	case loss.CrossEntropy:
		return "CrossEntropy", 0, nil
	case *loss.Huber:
		return "Huber", v.Delta, nil
	case loss.Huber:
		return "Huber", v.Delta, nil
	default:
		return "", 0, errors.Wrapf(ErrUnsupported, "loss %T", l)
	}
}

func lossByName(name string, delta float64) (loss.Loss, error) {
	switch name {
	case "MSE":
		return loss.MSE{}, nil
	case "CrossEntropy":
		return loss.CrossEntropy{}, nil
	case "Huber":
		return loss.NewHuber(delta), nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "loss %q", name)
	}
}

// Encode writes the network to an io.Writer using gob encoding.
func (n *Network) Encode(w io.Writer) error {
	name, delta, err := lossName(n.loss)
	if err != nil {
		return err
	}

	configs := make([]LayerConfig, len(n.layers))
	for i, l := range n.layers {
		if configs[i], err = ExtractLayerConfig(l); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
	}

	encoder := gob.NewEncoder(w)
	h := header{Version: formatVersion, Loss: name, HuberDelta: delta, NumLayers: len(configs)}
	if err := encoder.Encode(h); err != nil {
		return errors.Wrap(err, "failed to encode header")
	}
	for i := range configs {
		if err := encoder.Encode(configs[i]); err != nil {
			return errors.Wrapf(err, "failed to encode layer %d", i)
		}
	}
	return nil
}

// Decode reads a network written by Encode.
// rng is handed to every reconstructed dropout layer.
func Decode(r io.Reader, rng layer.Source) (*Network, error) {
	decoder := gob.NewDecoder(r)

	var h header
	if err := decoder.Decode(&h); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if h.Version != formatVersion {
		return nil, errors.Wrapf(ErrFormat, "unknown format version %d", h.Version)
	}
	if h.NumLayers <= 0 {
		return nil, errors.Wrapf(ErrFormat, "header declares %d layers", h.NumLayers)
	}

	lf, err := lossByName(h.Loss, h.HuberDelta)
	if err != nil {
		return nil, err
	}

	// NumLayers is untrusted; grow only as layers decode
	var layers []layer.Layer
	for i := 0; i < h.NumLayers; i++ {
		var cfg LayerConfig
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to read layer %d", i)
		}
		l, err := cfg.CreateLayer(rng)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create layer %d", i)
		}
		layers = append(layers, l)
	}

	return New(lf, layers...)
}

// Save saves the network to a file using gob encoding.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := n.Encode(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load loads a network from a file.
func Load(filename string, rng layer.Source) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return Decode(file, rng)
}

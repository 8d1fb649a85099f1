// Package train drives mini-batch gradient descent and L-BFGS over a network.
package train

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/opt"
)

// ErrConfig is returned for an invalid trainer configuration.
var ErrConfig = errors.New("train: invalid config")

// Config holds the settings shared by every trainer.
type Config struct {
	// Schedule gives the step factor of each round.
	Schedule opt.Schedule

	// BatchSize is the number of samples whose gradients are summed per commit.
	BatchSize int

	// Rounds is the number of passes over the dataset.
	Rounds int

	// L2 is the weight-decay factor; 0 disables it. Biases are never decayed.
	L2 float64
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Schedule == nil:
		return errors.Wrap(ErrConfig, "nil schedule")
	case c.BatchSize < 1:
		return errors.Wrapf(ErrConfig, "batch size %d", c.BatchSize)
	case c.Rounds < 0:
		return errors.Wrapf(ErrConfig, "rounds %d", c.Rounds)
	case c.L2 < 0:
		return errors.Wrapf(ErrConfig, "l2 %v", c.L2)
	}
	return nil
}

// LBFGSConfig extends Config with the quasi-Newton settings.
type LBFGSConfig struct {
	Config

	// History is the number of curvature pairs kept between commits.
	History int

	// Dense computes directions through the explicit inverse-Hessian matrix. It is only
	// practical for small parameter counts.
	Dense bool
}

// Validate reports the first invalid field.
func (c LBFGSConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.History < 1 {
		return errors.Wrapf(ErrConfig, "history size %d", c.History)
	}
	return nil
}

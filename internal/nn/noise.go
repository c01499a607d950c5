package nn

import (
	"math/rand"

	"github.com/born-ml/nfcde/internal/tensor"
)

// GaussianNoise adds zero-mean Gaussian noise with a fixed standard deviation.
//
// The noise is applied only in ModeTrain; in ModeInfer the input is
// returned unchanged, so inference is deterministic.
type GaussianNoise struct {
	stddev float64
	rng    *rand.Rand
}

// NewGaussianNoise creates a noise layer drawing from rng.
func NewGaussianNoise(stddev float64, rng *rand.Rand) *GaussianNoise {
	return &GaussianNoise{stddev: stddev, rng: rng}
}

// Stddev returns the noise standard deviation.
func (g *GaussianNoise) Stddev() float64 {
	return g.stddev
}

// Forward returns input + N(0, stddev²) in ModeTrain and input otherwise.
func (g *GaussianNoise) Forward(input *tensor.Tensor, mode Mode) *tensor.Tensor {
	if !mode.Training() || g.stddev == 0 {
		return input
	}
	noise := Normal(input.Shape(), g.stddev, g.rng, input.Backend())
	return input.Add(noise)
}

// Parameters returns nil (noise has no trainable parameters).
func (g *GaussianNoise) Parameters() []*Parameter {
	return nil
}

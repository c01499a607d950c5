package estimator

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/tensor"
)

// NetworkConfig describes the dense network that produces distribution
// parameters.
type NetworkConfig struct {
	InputDims   int
	HiddenSizes []int
	Activation  string
	// OutputSize is the width of the final linear layer.
	OutputSize int
	// XNoiseStd > 0 prepends a GaussianNoise layer.
	XNoiseStd float64
	// Variational selects DenseVariational layers when non-nil.
	Variational *VariationalOptions
}

// VariationalOptions configures the layers of a Bayesian network.
type VariationalOptions struct {
	Posterior nn.PosteriorConfig
	Prior     nn.PriorConfig
	KLWeight  float64
	KLExact   bool
}

// BuildDenseLayers returns the network layers in order: an optional input
// noise layer, one layer per hidden size and a linear output layer of
// OutputSize units.
func BuildDenseLayers(cfg NetworkConfig, rng *rand.Rand, backend tensor.Backend) ([]nn.Module, error) {
	var layers []nn.Module
	if cfg.XNoiseStd > 0 {
		layers = append(layers, nn.NewGaussianNoise(cfg.XNoiseStd, rng))
	}

	in := cfg.InputDims
	for i, width := range cfg.HiddenSizes {
		layer, err := denseLayer(cfg, in, width, cfg.Activation, rng, backend)
		if err != nil {
			return nil, fmt.Errorf("hidden layer %d: %w", i, err)
		}
		layers = append(layers, layer)
		in = width
	}

	output, err := denseLayer(cfg, in, cfg.OutputSize, "linear", rng, backend)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	return append(layers, output), nil
}

func denseLayer(cfg NetworkConfig, in, out int, activation string, rng *rand.Rand, backend tensor.Backend) (nn.Module, error) {
	if cfg.Variational == nil {
		d, err := nn.NewDense(in, out, activation, rng, backend)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	d, err := nn.NewDenseVariational(nn.VariationalConfig{
		InFeatures:  in,
		OutFeatures: out,
		Activation:  activation,
		Posterior:   cfg.Variational.Posterior,
		Prior:       cfg.Variational.Prior,
		KLWeight:    cfg.Variational.KLWeight,
		KLExact:     cfg.Variational.KLExact,
	}, rng, backend)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// outputWidth returns the number of units of the last layer that has them.
func outputWidth(layers []nn.Module) int {
	for i := len(layers) - 1; i >= 0; i-- {
		if l, ok := layers[i].(interface{ OutFeatures() int }); ok {
			return l.OutFeatures()
		}
	}
	return 0
}

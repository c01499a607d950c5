package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros(shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return t
}

// Normal draws every element from N(0, stddev²).
func Normal(shape tensor.Shape, stddev float64, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	t := tensor.Randn(shape, rng, backend)
	data := t.Data()
	for i := range data {
		data[i] *= stddev
	}
	return t
}

// Zeros creates a tensor filled with zeros.
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape, backend tensor.Backend) *tensor.Tensor {
	return tensor.Zeros(shape, backend)
}

// Package nn implements the neural network modules used to produce
// distribution parameters.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Dense: Fully connected layer with a named activation
//   - GaussianNoise: Additive input noise, active only in ModeTrain
//   - DenseVariational: Bayesian dense layer with a mean-field posterior
//   - Sequential: Container for stacking layers
//
// Every Forward call receives an explicit Mode instead of reading a global
// learning-phase flag.
package nn

import "github.com/born-ml/nfcde/internal/tensor"

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.MustDense(1, 16, "tanh", rng, backend),
//	    nn.MustDense(16, 8, "linear", rng, backend),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	// Stochastic modules consult mode to decide whether to inject noise.
	Forward(input *tensor.Tensor, mode Mode) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter
}

// Regularizer is implemented by modules that contribute a loss term of their
// own, such as the KL divergence of a variational layer.
type Regularizer interface {
	// KL returns the weighted KL term of the most recent Forward call,
	// or nil if Forward has not been called yet.
	KL() *tensor.Tensor
}

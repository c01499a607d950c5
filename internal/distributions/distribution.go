// Package distributions implements the output distributions of the density
// estimators and the layers that build them from network parameters.
//
// Two layers are provided:
//   - MeanFieldLayer: independent Gaussians, one per output dimension
//   - FlowLayer: a Gaussian base pushed through a chain of normalizing flows
//
// Distributions are batched over the leading axis of their parameters: a
// parameter tensor [N, P] yields N distributions over points of shape [dims].
// Log-densities are differentiable whenever the parameters live on an
// autodiff backend.
package distributions

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/born-ml/nfcde/internal/tensor"
)

// ErrShapeMismatch indicates points whose shape is incompatible with the
// batch or event shape of a distribution.
var ErrShapeMismatch = errors.New("distributions: shape mismatch")

// Distribution is a batch of distributions over [dims]-shaped events.
type Distribution interface {
	// LogProb returns the log-density of y [N, dims] (or a single point
	// [1, dims] broadcast over the batch), shape [N].
	LogProb(y *tensor.Tensor) (*tensor.Tensor, error)

	// Prob returns exp(LogProb(y)).
	Prob(y *tensor.Tensor) (*tensor.Tensor, error)

	// BatchShape returns [N].
	BatchShape() tensor.Shape

	// EventShape returns [dims].
	EventShape() tensor.Shape

	// Backend returns the backend the parameters live on.
	Backend() tensor.Backend
}

// Sampler is implemented by distributions that can draw samples.
type Sampler interface {
	// Sample draws one event per batch member, shape [N, dims].
	Sample(rng *rand.Rand) (*tensor.Tensor, error)
}

// Moments is implemented by distributions with closed-form moments.
type Moments interface {
	Mean() *tensor.Tensor
	Stddev() *tensor.Tensor
}

// Layer turns a flat parameter tensor into a distribution.
type Layer interface {
	// ParamSize returns the trailing size the parameter tensor must have.
	ParamSize() int

	// Distribution builds a batch of distributions from params [N, ParamSize()].
	Distribution(params *tensor.Tensor) (Distribution, error)

	// ToTensor presents a distribution built by this layer as a tensor.
	ToTensor(d Distribution) (*tensor.Tensor, error)
}

// checkPoints validates y against an event size and batch size, and rebinds
// it to backend so the computation is recorded with the parameters.
func checkPoints(y *tensor.Tensor, batch, dims int, backend tensor.Backend) (*tensor.Tensor, error) {
	shape := y.Shape()
	if len(shape) != 2 || shape[1] != dims {
		return nil, fmt.Errorf("%w: points %v, want [N, %d]", ErrShapeMismatch, shape, dims)
	}
	if rows := shape[0]; rows != 1 && batch != 1 && rows != batch {
		return nil, fmt.Errorf("%w: %d points for a batch of %d", ErrShapeMismatch, rows, batch)
	}
	return y.WithBackend(backend), nil
}

// expandRows broadcasts a [1, ...] or [N] result to batch rows.
func expandRows(t *tensor.Tensor, batch int) *tensor.Tensor {
	shape := t.Shape()
	if shape[0] >= batch {
		return t
	}
	full := shape.Clone()
	full[0] = batch
	return t.Add(tensor.Zeros(full, t.Backend()))
}

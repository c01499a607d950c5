package distributions

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/nfcde/internal/flows"
	"github.com/born-ml/nfcde/internal/tensor"
)

// Transformed is a base normal pushed through a chain of flows.
//
// The chain maps output space to the base space, so
//
//	log p(y) = log p_base(z) + ldj,  (z, ldj) = chain.Transform(y)
type Transformed struct {
	base  *Normal
	chain *flows.Chain
	batch int
}

// NewTransformed creates a transformed distribution with batch size batch.
// The base batch must be 1 or batch.
func NewTransformed(base *Normal, chain *flows.Chain, batch int) (*Transformed, error) {
	if base.batch != 1 && base.batch != batch {
		return nil, fmt.Errorf("%w: base batch %d, want %d", ErrShapeMismatch, base.batch, batch)
	}
	return &Transformed{base: base, chain: chain, batch: batch}, nil
}

// Base returns the base distribution.
func (t *Transformed) Base() *Normal {
	return t.base
}

// Chain returns the bijector chain.
func (t *Transformed) Chain() *flows.Chain {
	return t.chain
}

// LogProb evaluates the change-of-variables log-density, shape [N].
func (t *Transformed) LogProb(y *tensor.Tensor) (*tensor.Tensor, error) {
	y, err := checkPoints(y, t.batch, t.base.dims, t.Backend())
	if err != nil {
		return nil, err
	}

	z, ldj := t.chain.Transform(y)
	lp, err := t.base.LogProb(z)
	if err != nil {
		return nil, fmt.Errorf("base log prob: %w", err)
	}
	return expandRows(lp.Add(ldj), t.batch), nil
}

// Prob returns exp(LogProb(y)).
func (t *Transformed) Prob(y *tensor.Tensor) (*tensor.Tensor, error) {
	lp, err := t.LogProb(y)
	if err != nil {
		return nil, err
	}
	return lp.Exp(), nil
}

// Sample draws base samples and maps them through the inverse chain.
// It fails with flows.ErrNotInvertible if a bijector has no inverse.
// Samples are not differentiable.
func (t *Transformed) Sample(rng *rand.Rand) (*tensor.Tensor, error) {
	if !t.chain.Invertible() {
		return nil, fmt.Errorf("sample: %w", flows.ErrNotInvertible)
	}
	z := t.base.sampleRows(rng, t.batch)
	return t.chain.Inverse(z)
}

// BatchShape returns [N].
func (t *Transformed) BatchShape() tensor.Shape {
	return tensor.Shape{t.batch}
}

// EventShape returns [dims].
func (t *Transformed) EventShape() tensor.Shape {
	return t.base.EventShape()
}

// Backend returns the backend of the base parameters.
func (t *Transformed) Backend() tensor.Backend {
	return t.base.Backend()
}

package flows

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Chain is an ordered composition of bijectors.
//
// Bijectors are stored in the reverse of the user-specified flow order. The
// density direction walks them in stored order (output space toward the
// base), so sampling, which inverts them from the last stored to the first,
// applies the flows to base samples in the order the user wrote.
type Chain struct {
	bijectors []Bijector
}

// NewChain composes bijectors in the given (stored) order.
func NewChain(bijectors ...Bijector) *Chain {
	return &Chain{bijectors: bijectors}
}

// Bijectors returns the bijectors in stored order.
func (c *Chain) Bijectors() []Bijector {
	return c.bijectors
}

// Len returns the number of bijectors.
func (c *Chain) Len() int {
	return len(c.bijectors)
}

// Names returns the flow names in stored order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.bijectors))
	for i, b := range c.bijectors {
		names[i] = b.Name()
	}
	return names
}

// Transform maps y to the base space and accumulates the log-determinant
// Jacobian of every step. ldj has shape [N] (or [1] for an empty chain
// applied to a single point, which broadcasts).
func (c *Chain) Transform(y *tensor.Tensor) (z, ldj *tensor.Tensor) {
	z = y
	ldj = tensor.Zeros(tensor.Shape{rowsOf(y)}, y.Backend())
	for _, b := range c.bijectors {
		ldj = ldj.Add(b.ForwardLogDetJacobian(z))
		z = b.Forward(z)
	}
	return z, ldj
}

// Invertible reports whether every bijector implements Inverter.
func (c *Chain) Invertible() bool {
	for _, b := range c.bijectors {
		if _, ok := b.(Inverter); !ok {
			return false
		}
	}
	return true
}

// Inverse maps base-space points z back to output space.
// It fails with ErrNotInvertible if any bijector lacks an inverse.
func (c *Chain) Inverse(z *tensor.Tensor) (*tensor.Tensor, error) {
	y := z
	for i := len(c.bijectors) - 1; i >= 0; i-- {
		inv, ok := c.bijectors[i].(Inverter)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotInvertible, c.bijectors[i].Name())
		}
		y = inv.Inverse(y)
	}
	return y, nil
}

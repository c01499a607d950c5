// Package flows implements the normalizing-flow bijectors and the logic that
// slices a flat parameter tensor into a chain of them.
//
// Every bijector is parametrized per example: its parameters come from a
// [N, paramSize] slice of the network output, and it maps a batch of points
// [N, dims] (or a single broadcast point [1, dims]) in output space toward the
// base distribution. This is the density direction:
//
//	log p(y) = log p_base(F(y)) + log|det ∂F/∂y|
//
// Sampling runs the other way and needs every bijector in the chain to
// implement Inverter.
package flows

import "github.com/born-ml/nfcde/internal/tensor"

// Bijector is an invertible, differentiable transform with a computable
// log-determinant Jacobian.
type Bijector interface {
	// Name returns the registry name of the flow family.
	Name() string

	// Forward maps output-space points y [N, dims] toward the base space.
	Forward(y *tensor.Tensor) *tensor.Tensor

	// ForwardLogDetJacobian returns log|det ∂Forward/∂y| per example, shape [N].
	ForwardLogDetJacobian(y *tensor.Tensor) *tensor.Tensor
}

// Inverter is implemented by bijectors that can map base-space points back
// to output space. The result is not differentiable.
type Inverter interface {
	Inverse(z *tensor.Tensor) *tensor.Tensor
}

// Factory builds a bijector from its [N, paramSize] parameter slice.
// For flows with zero parameters, params is nil.
type Factory func(params *tensor.Tensor, dims int) (Bijector, error)

// Spec describes a flow family.
type Spec struct {
	// Name is the registry key.
	Name string
	// ParamSize returns the number of parameters for a given dimensionality.
	ParamSize func(dims int) int
	// Factory builds a bijector from a parameter slice.
	Factory Factory
}

// checkParams validates the shape of a parameter slice handed to a factory.
func checkParams(name string, params *tensor.Tensor, want int) error {
	if params == nil {
		if want == 0 {
			return nil
		}
		return &ParamSizeMismatchError{Where: name, Want: want, Got: 0}
	}
	shape := params.Shape()
	if len(shape) != 2 {
		return &ParamSizeMismatchError{Where: name, Want: want, Got: shape.Last()}
	}
	if shape[1] != want {
		return &ParamSizeMismatchError{Where: name, Want: want, Got: shape[1]}
	}
	return nil
}

// rowsOf returns the batch size of a 2-D tensor.
func rowsOf(t *tensor.Tensor) int {
	return t.Shape()[0]
}

// squeeze turns a [N, 1] column into a [N] vector.
func squeeze(col *tensor.Tensor) *tensor.Tensor {
	return col.SumDim(-1, false)
}

// dot returns the per-row inner product of a and b as a [N, 1] column.
func dot(a, b *tensor.Tensor) *tensor.Tensor {
	return a.Mul(b).SumDim(-1, true)
}

// row returns row i of a [N, D] buffer, or row 0 when the tensor is broadcast.
func row(data []float64, rows, cols, i int) []float64 {
	if rows == 1 {
		i = 0
	}
	return data[i*cols : (i+1)*cols]
}

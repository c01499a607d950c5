package ops

import (
	"math"

	"github.com/born-ml/nfcde/internal/tensor"
)

// AddScalarOp represents output = x + c for a constant c.
// The gradient passes through unchanged.
type AddScalarOp struct {
	unaryOp
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{unaryOp{input, output}}
}

// Backward returns outputGrad.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// MulScalarOp represents output = x * c for a constant c.
type MulScalarOp struct {
	unaryOp
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{unaryOp: unaryOp{input, output}, scalar: scalar}
}

// Backward returns outputGrad * c.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// ExpOp represents the exponential operation: y = exp(x).
//
// Backward pass:
//   - d(exp(x))/dx = exp(x) = y
//   - grad_input = grad_output * output
type ExpOp struct {
	unaryOp
}

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input, output}}
}

// Backward computes input gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp represents element-wise natural logarithm.
//
// Backward:
//
//	∂L/∂input = ∂L/∂output / input
type LogOp struct {
	unaryOp
}

// NewLogOp creates a new log operation.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{unaryOp{input, output}}
}

// Backward computes the gradient with respect to input.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// SqrtOp represents y = sqrt(x).
//
// Backward:
//
//	∂L/∂x = ∂L/∂y / (2 * y)
type SqrtOp struct {
	unaryOp
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(input, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{unaryOp{input, output}}
}

// Backward computes the gradient with respect to input.
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := elementwise(outputGrad, op.output, op.output, func(g, y, _ float64) float64 {
		return g / (2 * y)
	})
	return []*tensor.RawTensor{grad}
}

// TanhOp represents y = tanh(x).
//
// Backward:
//
//	∂L/∂x = ∂L/∂y * (1 - y²)
type TanhOp struct {
	unaryOp
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input, output}}
}

// Backward computes the gradient with respect to input.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := elementwise(outputGrad, op.output, op.output, func(g, y, _ float64) float64 {
		return g * (1 - y*y)
	})
	return []*tensor.RawTensor{grad}
}

// SigmoidOp represents y = σ(x).
//
// Backward:
//
//	∂L/∂x = ∂L/∂y * y * (1 - y)
type SigmoidOp struct {
	unaryOp
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unaryOp{input, output}}
}

// Backward computes the gradient with respect to input.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := elementwise(outputGrad, op.output, op.output, func(g, y, _ float64) float64 {
		return g * y * (1 - y)
	})
	return []*tensor.RawTensor{grad}
}

// ReLUOp represents y = max(0, x).
// The gradient is 1 where x > 0 and 0 elsewhere.
type ReLUOp struct {
	unaryOp
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{unaryOp{input, output}}
}

// Backward computes the gradient with respect to input.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := elementwise(outputGrad, op.input, op.input, func(g, x, _ float64) float64 {
		if x > 0 {
			return g
		}
		return 0
	})
	return []*tensor.RawTensor{grad}
}

// SoftplusOp represents y = log(1 + exp(x)).
//
// Backward:
//
//	∂L/∂x = ∂L/∂y * σ(x)
type SoftplusOp struct {
	unaryOp
}

// NewSoftplusOp creates a new SoftplusOp.
func NewSoftplusOp(input, output *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{unaryOp{input, output}}
}

// Backward computes the gradient with respect to input.
func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := elementwise(outputGrad, op.input, op.input, func(g, x, _ float64) float64 {
		if x >= 0 {
			return g / (1 + math.Exp(-x))
		}
		e := math.Exp(x)
		return g * e / (1 + e)
	})
	return []*tensor.RawTensor{grad}
}

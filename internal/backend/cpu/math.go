package cpu

import (
	"math"

	"github.com/born-ml/nfcde/internal/parallel"
	"github.com/born-ml/nfcde/internal/tensor"
)

// unary applies fn to every element of x into a fresh tensor.
func (cpu *CPUBackend) unary(x *tensor.RawTensor, fn func(float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape())
	out, in := result.Data(), x.Data()
	parallel.For(len(out), func(i int) {
		out[i] = fn(in[i])
	}, cpu.parallel)
	return result
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 { return v + scalar })
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 { return v * scalar })
}

// Exp computes e^x element-wise.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Exp)
}

// Log computes the natural logarithm element-wise.
// Non-positive inputs produce -Inf/NaN as math.Log does.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Log)
}

// Sqrt computes the square root element-wise.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Sqrt)
}

// Tanh computes the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Tanh)
}

// Sigmoid computes σ(x) = 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, Sigmoid)
}

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 { return math.Max(v, 0) })
}

// Softplus computes log(1 + exp(x)) element-wise.
func (cpu *CPUBackend) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, Softplus)
}

// Sigmoid is the scalar logistic function. It never overflows.
func Sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

// Softplus is the scalar log(1 + exp(v)), evaluated as
// max(v, 0) + log1p(exp(-|v|)) so large inputs do not overflow.
func Softplus(v float64) float64 {
	return math.Max(v, 0) + math.Log1p(math.Exp(-math.Abs(v)))
}

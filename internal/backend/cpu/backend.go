// Package cpu implements the CPU backend: plain Go loops for element-wise
// work and gonum for dense linear algebra.
package cpu

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/parallel"
	"github.com/born-ml/nfcde/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
// It never modifies its inputs. Element-wise loops over large tensors are
// split across goroutines.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with NumPy-style broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with NumPy-style broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with NumPy-style broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float64) float64 { return x / y })
}

// binary applies fn element-wise, broadcasting a and b to a common shape.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, fn func(x, y float64) float64) *tensor.RawTensor {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := tensor.MustRaw(outShape)
	out := result.Data()
	aData, bData := a.Data(), b.Data()

	// Fast path: identical shapes need no index mapping.
	if a.Shape().Equal(b.Shape()) {
		parallel.For(len(out), func(i int) {
			out[i] = fn(aData[i], bData[i])
		}, cpu.parallel)
		return result
	}

	outStrides := outShape.ComputeStrides()
	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)
	parallel.For(len(out), func(i int) {
		ai := tensor.BroadcastIndex(i, outStrides, aStrides)
		bi := tensor.BroadcastIndex(i, outStrides, bStrides)
		out[i] = fn(aData[ai], bData[bi])
	}, cpu.parallel)

	return result
}

package autodiff_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/nfcde/internal/autodiff"
	"github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numericalGradient computes df/dx for every element of x by central differences.
func numericalGradient(f func(*tensor.Tensor) float64, x *tensor.Tensor, epsilon float64) []float64 {
	data := x.Data()
	grad := make([]float64, len(data))
	for i := range data {
		orig := data[i]
		data[i] = orig + epsilon
		plus := f(x)
		data[i] = orig - epsilon
		minus := f(x)
		data[i] = orig
		grad[i] = (plus - minus) / (2 * epsilon)
	}
	return grad
}

// checkGradient compares autodiff and numerical gradients of a scalar function.
func checkGradient(t *testing.T, f func(*tensor.Tensor) *tensor.Tensor, x *tensor.Tensor) {
	t.Helper()

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	xd := x.WithBackend(backend)
	grads := autodiff.Backward(f(xd), backend)
	require.Contains(t, grads, xd.Raw())

	plain := cpu.New()
	numerical := numericalGradient(func(v *tensor.Tensor) float64 {
		return f(v.WithBackend(plain)).Item()
	}, x, 1e-6)

	assert.InDeltaSlice(t, numerical, grads[xd.Raw()].Data(), 1e-5)
}

// TestGradientCheck_ElementWise checks every element-wise op against finite differences.
func TestGradientCheck_ElementWise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name string
		f    func(*tensor.Tensor) *tensor.Tensor
	}{
		{"exp", func(x *tensor.Tensor) *tensor.Tensor { return x.Exp().Sum() }},
		{"log", func(x *tensor.Tensor) *tensor.Tensor { return x.Square().AddScalar(1).Log().Sum() }},
		{"sqrt", func(x *tensor.Tensor) *tensor.Tensor { return x.Square().AddScalar(0.5).Sqrt().Sum() }},
		{"tanh", func(x *tensor.Tensor) *tensor.Tensor { return x.Tanh().Sum() }},
		{"sigmoid", func(x *tensor.Tensor) *tensor.Tensor { return x.Sigmoid().Sum() }},
		{"softplus", func(x *tensor.Tensor) *tensor.Tensor { return x.MulScalar(3).Softplus().Sum() }},
		{"div", func(x *tensor.Tensor) *tensor.Tensor { return x.Div(x.Square().AddScalar(2)).Sum() }},
		{"sub", func(x *tensor.Tensor) *tensor.Tensor { return x.Exp().Sub(x.Square()).Sum() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := tensor.Randn(tensor.Shape{3, 2}, rng, cpu.New())
			checkGradient(t, tt.f, x)
		})
	}
}

// TestGradientCheck_Shapes checks reductions, slicing and broadcasting.
func TestGradientCheck_Shapes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	backend := cpu.New()
	col := tensor.Randn(tensor.Shape{1, 4}, rng, backend)
	w := tensor.Randn(tensor.Shape{4, 3}, rng, backend)

	tests := []struct {
		name string
		f    func(*tensor.Tensor) *tensor.Tensor
	}{
		{"sumdim", func(x *tensor.Tensor) *tensor.Tensor {
			return x.SumDim(-1, false).Square().Sum()
		}},
		{"sumdim keep", func(x *tensor.Tensor) *tensor.Tensor {
			return x.Mul(x.SumDim(0, true)).Sum()
		}},
		{"narrow", func(x *tensor.Tensor) *tensor.Tensor {
			return x.Narrow(1, 1, 2).Exp().Sum()
		}},
		{"cat", func(x *tensor.Tensor) *tensor.Tensor {
			return tensor.Cat([]*tensor.Tensor{x.Narrow(1, 2, 2), x.Tanh()}, 1).Square().Sum()
		}},
		{"broadcast", func(x *tensor.Tensor) *tensor.Tensor {
			return x.Mul(col.WithBackend(x.Backend())).Sum()
		}},
		{"matmul", func(x *tensor.Tensor) *tensor.Tensor {
			return x.MatMul(w.WithBackend(x.Backend())).Tanh().Sum()
		}},
		{"transpose", func(x *tensor.Tensor) *tensor.Tensor {
			return x.T().MatMul(x).Sum()
		}},
		{"reshape", func(x *tensor.Tensor) *tensor.Tensor {
			return x.Reshape(2, 6).SumDim(1, false).Exp().Sum()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := tensor.Randn(tensor.Shape{3, 4}, rng, backend)
			checkGradient(t, tt.f, x)
		})
	}
}

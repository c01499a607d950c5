package cpu

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
//
// The product is computed by gonum's BLAS-backed mat.Dense directly over the
// tensors' row-major buffers.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := tensor.MustRaw(tensor.Shape{m, n})

	// mat.NewDense wraps the slices without copying; a and b are only read.
	am := mat.NewDense(m, k, a.Data())
	bm := mat.NewDense(k, n, b.Data())
	cm := mat.NewDense(m, n, result.Data())
	cm.Mul(am, bm)

	return result
}

// Transpose swaps the two axes of a 2-D tensor.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got shape %v", shape))
	}

	rows, cols := shape[0], shape[1]
	result := tensor.MustRaw(tensor.Shape{cols, rows})
	src, dst := x.Data(), result.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}

package ops

import "github.com/born-ml/nfcde/internal/tensor"

// SumOp represents a full reduction: output = sum(x), a scalar.
// Each input element receives the scalar output gradient.
type SumOp struct {
	unaryOp
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{unaryOp{input, output}}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := outputGrad.Data()[0]
	grad := tensor.MustRaw(op.input.Shape())
	data := grad.Data()
	for i := range data {
		data[i] = g
	}
	return []*tensor.RawTensor{grad}
}

// SumDimOp represents a reduction sum operation along a dimension: output = sum(x, dim).
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape)
//
// If keepDim=false, grad_y is first viewed with the reduced dimension as size 1.
type SumDimOp struct {
	unaryOp
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{unaryOp: unaryOp{x, output}, dim: dim, keepDim: keepDim}
}

// Backward computes input gradients for sum reduction.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := outputGrad
	if !op.keepDim {
		kept := op.input.Shape().Clone()
		kept[op.dim] = 1
		grad = grad.View(kept)
	}
	return []*tensor.RawTensor{broadcastTo(grad, op.input.Shape())}
}

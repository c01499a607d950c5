package ops

import "github.com/born-ml/nfcde/internal/tensor"

// ReshapeOp represents a reshape. The gradient is reshaped back.
type ReshapeOp struct {
	unaryOp
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unaryOp{input, output}}
}

// Backward reshapes outputGrad to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// TransposeOp represents a 2-D transpose. The gradient is transposed back.
type TransposeOp struct {
	unaryOp
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.RawTensor) *TransposeOp {
	return &TransposeOp{unaryOp{input, output}}
}

// Backward transposes outputGrad.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad)}
}

// NarrowOp represents slicing [start, start+length) along dim.
//
// Backward scatters the gradient into a zero tensor of the input shape;
// elements outside the slice receive zero gradient.
type NarrowOp struct {
	unaryOp
	dim, start int
}

// NewNarrowOp creates a new NarrowOp.
func NewNarrowOp(input, output *tensor.RawTensor, dim, start int) *NarrowOp {
	return &NarrowOp{unaryOp: unaryOp{input, output}, dim: dim, start: start}
}

// Backward computes the gradient with respect to input.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	grad := tensor.MustRaw(shape)

	outer, size, inner := splitAt(shape, op.dim)
	length := outputGrad.Shape()[op.dim]
	src, dst := outputGrad.Data(), grad.Data()
	for o := 0; o < outer; o++ {
		to := (o*size + op.start) * inner
		copy(dst[to:to+length*inner], src[o*length*inner:(o+1)*length*inner])
	}

	return []*tensor.RawTensor{grad}
}

// CatOp represents concatenation along dim.
// Backward slices the output gradient back into one piece per input.
type CatOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{inputs: inputs, output: output, dim: dim}
}

// Backward computes the gradient for every input.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = backend.Narrow(outputGrad, op.dim, offset, size)
		offset += size
	}
	return grads
}

// Inputs returns the concatenated tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

// Output returns the concatenation.
func (op *CatOp) Output() *tensor.RawTensor {
	return op.output
}

// splitAt factors shape into (product before dim, shape[dim], product after dim).
func splitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i, d := range shape {
		switch {
		case i < dim:
			outer *= d
		case i > dim:
			inner *= d
		}
	}
	return outer, shape[dim], inner
}

package cpu

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/tensor"
	"gonum.org/v1/gonum/floats"
)

// Sum reduces all elements to a scalar (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(tensor.Shape{})
	result.Data()[0] = floats.Sum(x.Data())
	return result
}

// SumDim sums along dimension dim.
//
// With keepDim the reduced dimension stays as size 1:
//
//	[10, 3] → SumDim(1, true)  → [10, 1]
//	[10, 3] → SumDim(1, false) → [10]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumdim: invalid dimension %d for shape %v", dim, shape))
	}

	result := tensor.MustRaw(reducedShape(shape, dim, keepDim))
	out := result.Data()
	data := x.Data()

	// View x as [outer, size, inner] and reduce the middle axis.
	outer, size, inner := splitAt(shape, dim)
	for o := 0; o < outer; o++ {
		for s := 0; s < size; s++ {
			base := (o*size + s) * inner
			for i := 0; i < inner; i++ {
				out[o*inner+i] += data[base+i]
			}
		}
	}

	return result
}

// reducedShape returns shape with dim reduced away (or kept as 1).
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	return out
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

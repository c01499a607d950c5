package cpu

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Reshape returns a copy of x with a new shape.
// The new shape must have the same number of elements.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if shape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			x.Shape(), x.NumElements(), shape, shape.NumElements()))
	}
	result := tensor.MustRaw(shape)
	copy(result.Data(), x.Data())
	return result
}

// Narrow returns the slice [start, start+length) of x along dim.
//
// Example:
//
//	x: [32, 6] → Narrow(x, 1, 2, 2) → [32, 2] (columns 2 and 3)
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("narrow: invalid dimension %d for shape %v", dim, shape))
	}
	if start < 0 || length < 1 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d of %v",
			start, start+length, dim, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := tensor.MustRaw(outShape)

	outer, size, inner := splitAt(shape, dim)
	src, dst := x.Data(), result.Data()
	for o := 0; o < outer; o++ {
		from := (o*size + start) * inner
		copy(dst[o*length*inner:(o+1)*length*inner], src[from:from+length*inner])
	}

	return result
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}

	first := tensors[0].Shape()
	if dim < 0 || dim >= len(first) {
		panic(fmt.Sprintf("cat: invalid dimension %d for shape %v", dim, first))
	}

	outShape := first.Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		s := t.Shape()
		if len(s) != len(first) {
			panic(fmt.Sprintf("cat: rank mismatch %v vs %v", first, s))
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				panic(fmt.Sprintf("cat: shape mismatch %v vs %v at dimension %d", first, s, d))
			}
		}
		outShape[dim] += s[dim]
	}

	result := tensor.MustRaw(outShape)
	dst := result.Data()
	outer, outSize, inner := splitAt(outShape, dim)

	offset := 0
	for _, t := range tensors {
		size := t.Shape()[dim]
		src := t.Data()
		for o := 0; o < outer; o++ {
			to := (o*outSize + offset) * inner
			copy(dst[to:to+size*inner], src[o*size*inner:(o+1)*size*inner])
		}
		offset += size
	}

	return result
}

package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1 // Scalar has 1 element
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Last returns the trailing dimension, or 1 for scalars.
func (s Shape) Last() int {
	if len(s) == 0 {
		return 1
	}
	return s[len(s)-1]
}

// ComputeStrides calculates row-major strides for the shape.
// stride[i] is the product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Shapes are compared from the right; two dimensions are compatible when they
// are equal or one of them is 1. Missing leading dimensions count as 1.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(5)    + (3, 5) → (3, 5)
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, error) {
	rank := max(len(a), len(b))
	result := make(Shape, rank)

	for i := 0; i < rank; i++ {
		aDim := dimFromRight(a, i)
		bDim := dimFromRight(b, i)

		switch {
		case aDim == bDim, bDim == 1:
			result[rank-1-i] = aDim
		case aDim == 1:
			result[rank-1-i] = bDim
		default:
			return nil, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, rank-1-i, aDim, bDim)
		}
	}

	return result, nil
}

// BroadcastStrides returns strides that read a tensor of shape src as if it
// had shape dst. Broadcast dimensions get stride 0.
//
// src must be broadcast-compatible with dst (see BroadcastShapes).
func BroadcastStrides(src, dst Shape) []int {
	srcStrides := src.ComputeStrides()
	strides := make([]int, len(dst))
	offset := len(dst) - len(src)
	for d := range dst {
		sd := d - offset
		if sd < 0 || src[sd] == 1 {
			continue
		}
		strides[d] = srcStrides[sd]
	}
	return strides
}

// BroadcastIndex maps the flat index i of a tensor with shape dst (and
// row-major strides dstStrides) to the flat index of the source whose
// broadcast strides are srcStrides.
func BroadcastIndex(i int, dstStrides, srcStrides []int) int {
	idx := 0
	for d, stride := range dstStrides {
		coord := i / stride
		i %= stride
		idx += coord * srcStrides[d]
	}
	return idx
}

func dimFromRight(s Shape, i int) int {
	j := len(s) - 1 - i
	if j < 0 {
		return 1
	}
	return s[j]
}

package tensor

import "fmt"

// RawTensor is the untyped storage behind a Tensor: a contiguous, row-major
// float64 buffer together with its shape.
//
// Backends consume and produce RawTensors; the autodiff tape keys gradients by
// *RawTensor, so a RawTensor's identity matters and backends must never
// mutate their inputs.
type RawTensor struct {
	shape  Shape
	stride []int
	data   []float64
}

// NewRaw creates a zero-filled raw tensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	return &RawTensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   make([]float64, shape.NumElements()),
	}, nil
}

// MustRaw is like NewRaw but panics on an invalid shape.
// Backends use it where an invalid shape is a programming error.
func MustRaw(shape Shape) *RawTensor {
	raw, err := NewRaw(shape)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return raw
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the row-major strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// Data returns the underlying buffer (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float64, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		data:   data,
	}
}

// View returns a raw tensor with a new shape that shares this tensor's buffer.
// The new shape must have the same number of elements.
func (r *RawTensor) View(shape Shape) *RawTensor {
	if shape.NumElements() != len(r.data) {
		panic(fmt.Sprintf("view: cannot view %v as %v", r.shape, shape))
	}
	return &RawTensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   r.data,
	}
}

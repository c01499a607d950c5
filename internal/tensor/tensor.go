package tensor

import "fmt"

// Tensor is a float64 tensor bound to a computation backend.
// It provides the high-level API over a RawTensor; every operation is
// dispatched to the backend, so a tensor created on an autodiff backend is
// differentiable.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
//	result := t.Add(t)
type Tensor struct {
	raw     *RawTensor
	backend Backend
}

// New creates a Tensor from a RawTensor and backend.
func New(raw *RawTensor, b Backend) *Tensor {
	return &Tensor{
		raw:     raw,
		backend: b,
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, b Backend) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data)

	return New(raw, b), nil
}

// FromRows creates a 2-D tensor [len(rows), len(rows[0])] from row slices.
// All rows must have the same length.
func FromRows(rows [][]float64, b Backend) (*Tensor, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("from rows: no rows")
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("from rows: row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}

	return FromSlice(data, Shape{len(rows), cols}, b)
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
// Used by backend implementations and the autodiff tape.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor) Backend() Backend {
	return t.backend
}

// WithBackend returns a tensor over the same storage dispatching to b.
// Gradients recorded on b flow back to this tensor's RawTensor.
func (t *Tensor) WithBackend(b Backend) *Tensor {
	return New(t.raw, b)
}

// Data returns the tensor's data (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.raw.Data()
}

// Item returns the value of a single-element tensor.
// Panics if the tensor has more than one element.
func (t *Tensor) Item() float64 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
//
// Example:
//
//	t := tensor.Zeros(Shape{3, 4}, backend)
//	value := t.At(1, 2) // Row 1, column 2
func (t *Tensor) At(indices ...int) float64 {
	return t.Data()[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.Data()[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}

	offset := 0
	strides := t.raw.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Rows copies a 2-D tensor into row slices.
func (t *Tensor) Rows() [][]float64 {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Rows() only works for 2D tensors, got shape %v", shape))
	}

	data := t.Data()
	rows := make([][]float64, shape[0])
	for i := range rows {
		rows[i] = append([]float64(nil), data[i*shape[1]:(i+1)*shape[1]]...)
	}
	return rows
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v on %s", t.Shape(), t.backend.Name())
}

// Clone creates a deep copy of the tensor on the same backend.
func (t *Tensor) Clone() *Tensor {
	return New(t.raw.Clone(), t.backend)
}

// Detach returns a copy of the tensor that the autodiff tape cannot trace
// back to this one.
//
// Example:
//
//	target := targetNet.Forward(input).Detach() // No gradients into targetNet
func (t *Tensor) Detach() *Tensor {
	return t.Clone()
}

package tensor

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Ones(Shape{3, 1}, backend)
//	b := tensor.Ones(Shape{3, 5}, backend)
//	c := a.Add(b) // Shape: [3, 5] (broadcasted)
func (t *Tensor) Add(other *Tensor) *Tensor {
	return New(t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	return New(t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return New(t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor) Div(other *Tensor) *Tensor {
	return New(t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul performs matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	return New(t.backend.MatMul(t.raw, other.raw), t.backend)
}

// AddScalar adds a scalar to every element.
func (t *Tensor) AddScalar(scalar float64) *Tensor {
	return New(t.backend.AddScalar(t.raw, scalar), t.backend)
}

// SubScalar subtracts a scalar from every element.
func (t *Tensor) SubScalar(scalar float64) *Tensor {
	return t.AddScalar(-scalar)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor) MulScalar(scalar float64) *Tensor {
	return New(t.backend.MulScalar(t.raw, scalar), t.backend)
}

// DivScalar divides every element by a scalar.
func (t *Tensor) DivScalar(scalar float64) *Tensor {
	return t.MulScalar(1 / scalar)
}

// Neg negates every element.
func (t *Tensor) Neg() *Tensor {
	return t.MulScalar(-1)
}

// Square computes x² element-wise.
func (t *Tensor) Square() *Tensor {
	return t.Mul(t)
}

// Exp computes e^x element-wise.
func (t *Tensor) Exp() *Tensor {
	return New(t.backend.Exp(t.raw), t.backend)
}

// Log computes the natural logarithm element-wise.
func (t *Tensor) Log() *Tensor {
	return New(t.backend.Log(t.raw), t.backend)
}

// Sqrt computes the square root element-wise.
func (t *Tensor) Sqrt() *Tensor {
	return New(t.backend.Sqrt(t.raw), t.backend)
}

// Tanh computes the hyperbolic tangent element-wise.
func (t *Tensor) Tanh() *Tensor {
	return New(t.backend.Tanh(t.raw), t.backend)
}

// Sigmoid computes 1 / (1 + e^-x) element-wise.
func (t *Tensor) Sigmoid() *Tensor {
	return New(t.backend.Sigmoid(t.raw), t.backend)
}

// ReLU computes max(0, x) element-wise.
func (t *Tensor) ReLU() *Tensor {
	return New(t.backend.ReLU(t.raw), t.backend)
}

// Softplus computes log(1 + e^x) element-wise.
func (t *Tensor) Softplus() *Tensor {
	return New(t.backend.Softplus(t.raw), t.backend)
}

// Sum reduces all elements to a scalar tensor (shape []).
func (t *Tensor) Sum() *Tensor {
	return New(t.backend.Sum(t.raw), t.backend)
}

// SumDim sums along a dimension. Negative dims count from the end.
//
// Example:
//
//	t := tensor.Ones(Shape{10, 3}, backend)
//	t.SumDim(-1, false) // Shape: [10]
//	t.SumDim(-1, true)  // Shape: [10, 1]
func (t *Tensor) SumDim(dim int, keepDim bool) *Tensor {
	return New(t.backend.SumDim(t.raw, t.normDim(dim), keepDim), t.backend)
}

// Mean returns the mean of all elements as a scalar tensor.
func (t *Tensor) Mean() *Tensor {
	return t.Sum().DivScalar(float64(t.NumElements()))
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor) Reshape(newShape ...int) *Tensor {
	return New(t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// T transposes a 2-D tensor.
// Panics if the tensor is not 2D.
func (t *Tensor) T() *Tensor {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return New(t.backend.Transpose(t.raw), t.backend)
}

// Narrow returns the slice [start, start+length) along dim.
// Negative dims count from the end.
//
// Example:
//
//	params := tensor.Zeros(Shape{10, 7}, backend)
//	loc := params.Narrow(-1, 0, 3) // Shape: [10, 3]
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	return New(t.backend.Narrow(t.raw, t.normDim(dim), start, length), t.backend)
}

// Cat concatenates tensors along a dimension.
// All tensors must share the first tensor's backend.
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}

	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}

	first := tensors[0]
	return New(first.backend.Cat(raws, first.normDim(dim)), first.backend)
}

func (t *Tensor) normDim(dim int) int {
	if dim < 0 {
		return len(t.Shape()) + dim
	}
	return dim
}
